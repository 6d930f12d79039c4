package server

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Registry owns all live rooms. The mutex is the single serialization point
// for room state: every mutation runs to completion inside Update before the
// next command's read can begin.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom registers a fresh room for the dealer. Table numbers are unique
// across live rooms.
func (r *Registry) CreateRoom(spec RoomSpec, dealer string) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.TableNo == spec.TableNo {
			return nil, ErrTableInUse
		}
	}
	room := &Room{
		ID:              "room:" + uuid.NewString(),
		TableNo:         spec.TableNo,
		DealerID:        dealer,
		Name:            spec.Name,
		EntryLimit:      spec.EntryLimit,
		TicketAmount:    spec.TicketAmount,
		TicketType:      spec.TicketType,
		DurationMinutes: spec.DurationMinutes,
		Blind:           spec.Blind,
		Ante:            spec.Ante,
		Status:          statusWaiting,
		Playing:         make(map[string]string),
		Sitout:          make(map[string]string),
		Timer:           TimerState{Remaining: -1},
	}
	r.rooms[room.ID] = room
	return room, nil
}

func (r *Registry) Get(id string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	return room, ok
}

// Update mutates one room under the registry lock. The callback must not
// block; charge and persistence calls happen outside.
func (r *Registry) Update(id string, update func(room *Room) error) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if err := update(room); err != nil {
		return nil, err
	}
	return room, nil
}

// Delete removes a room and cancels its clock task. Idempotent.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return
	}
	if room.Timer.task != nil {
		room.Timer.task.cancel()
		room.Timer.task = nil
	}
	delete(r.rooms, id)
}

// List snapshots all live rooms for broadcast, ordered by table number.
func (r *Registry) List() []RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]RoomSummary, 0, len(r.rooms))
	for _, room := range r.rooms {
		list = append(list, RoomSummary{
			ID:           room.ID,
			TableNo:      room.TableNo,
			Name:         room.Name,
			DealerID:     room.DealerID,
			Entry:        room.Entry,
			EntryLimit:   room.EntryLimit,
			TicketAmount: room.TicketAmount,
			TicketType:   room.TicketType,
			Blind:        room.Blind,
			Ante:         room.Ante,
			Status:       room.Status,
			Players:      len(room.Playing),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].TableNo < list[j].TableNo
	})
	return list
}
