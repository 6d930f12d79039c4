package server

import (
	"log"
	"sync"
	"time"
)

// levelTask is the handle for one room's running clock. Pause, reset,
// delete and finalize all cancel through this single handle, so a replaced
// or cancelled task can never mutate the room again.
type levelTask struct {
	stop chan struct{}
	once sync.Once
}

func newLevelTask() *levelTask {
	return &levelTask{stop: make(chan struct{})}
}

func (t *levelTask) cancel() {
	t.once.Do(func() {
		close(t.stop)
	})
}

// startTimer starts or resumes the room's round clock. Dealer only. A fresh
// round starts at duration*60-1 seconds; a paused one resumes where it
// stopped.
func (s *Server) startTimer(sess *Session, roomID string) error {
	var (
		task  *levelTask
		blind string
	)
	_, err := s.registry.Update(roomID, func(room *Room) error {
		if room.DealerID != sess.Nickname {
			return ErrUnauthorized
		}
		if room.Timer.task != nil {
			return ErrTimerRunning
		}
		if room.Timer.Remaining < 0 {
			room.Timer.Remaining = room.DurationMinutes*60 - 1
		}
		room.Status = statusPlaying
		room.Blind = blindLadder[room.Timer.Level]
		blind = room.Blind
		task = newLevelTask()
		room.Timer.task = task
		return nil
	})
	if err != nil {
		return err
	}
	s.hub.Broadcast(roomID, event{"type": "blind", "blind": blind})
	s.hub.Broadcast(roomID, event{"type": "status", "status": statusPlaying})
	go s.runClock(roomID, task)
	return nil
}

// pauseTimer cancels the clock but keeps the remaining seconds, so a later
// start resumes at the pause point. Dealer only.
func (s *Server) pauseTimer(sess *Session, roomID string) error {
	_, err := s.registry.Update(roomID, func(room *Room) error {
		if room.DealerID != sess.Nickname {
			return ErrUnauthorized
		}
		if room.Timer.task != nil {
			room.Timer.task.cancel()
			room.Timer.task = nil
		}
		room.Status = statusBreak
		return nil
	})
	if err != nil {
		return err
	}
	s.hub.Broadcast(roomID, event{"type": "status", "status": statusBreak})
	return nil
}

// resetTimer cancels the clock and discards all timer state. Dealer only.
func (s *Server) resetTimer(sess *Session, roomID string) error {
	_, err := s.registry.Update(roomID, func(room *Room) error {
		if room.DealerID != sess.Nickname {
			return ErrUnauthorized
		}
		if room.Timer.task != nil {
			room.Timer.task.cancel()
		}
		room.Timer = TimerState{Remaining: -1}
		return nil
	})
	return err
}

// closeRoom marks the room no longer joinable ahead of finalization without
// touching the clock. Dealer only.
func (s *Server) closeRoom(sess *Session, roomID string) error {
	_, err := s.registry.Update(roomID, func(room *Room) error {
		if room.DealerID != sess.Nickname {
			return ErrUnauthorized
		}
		room.Status = statusClosed
		return nil
	})
	if err != nil {
		return err
	}
	s.hub.Broadcast(roomID, event{"type": "status", "status": statusClosed})
	return nil
}

func (s *Server) runClock(roomID string, task *levelTask) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-task.stop:
			return
		case <-ticker.C:
			if !s.clockTick(roomID, task) {
				return
			}
		}
	}
}

// clockTick advances the room's clock by one second under the registry
// lock: emit the current time, decrement, and on expiry either roll to the
// next blind level or close the room when the ladder is exhausted. Returns
// false when the task should stop.
func (s *Server) clockTick(roomID string, task *levelTask) bool {
	var (
		events []event
		cont   = true
	)
	_, err := s.registry.Update(roomID, func(room *Room) error {
		if room.Timer.task != task {
			// cancelled or replaced between ticks
			cont = false
			return nil
		}
		events = append(events, event{"type": "timer", "time": formatClock(room.Timer.Remaining)})
		room.Timer.Remaining--
		if room.Timer.Remaining >= 0 {
			return nil
		}
		if room.Timer.Level < len(blindLadder)-1 {
			room.Timer.Level++
			room.Timer.Remaining = room.DurationMinutes*60 - 1
			room.Blind = blindLadder[room.Timer.Level]
			events = append(events, event{"type": "blind", "blind": room.Blind})
		} else {
			task.cancel()
			room.Timer.task = nil
			room.Timer.Remaining = -1
			room.Status = statusClosed
			events = append(events, event{"type": "status", "status": statusClosed})
			cont = false
		}
		return nil
	})
	if err != nil {
		log.Printf("clock tick failed room_id=%s error=%v", roomID, err)
		return false
	}
	for _, ev := range events {
		s.hub.Broadcast(roomID, ev)
	}
	return cont
}
