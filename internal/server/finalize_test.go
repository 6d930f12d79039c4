package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itmustbemimic/jenesis/internal/config"
	"github.com/itmustbemimic/jenesis/internal/db"
	"github.com/itmustbemimic/jenesis/internal/docstore"
)

type stubHistory struct {
	records []db.UserGame
	err     error
}

func (s *stubHistory) InsertResults(records []db.UserGame) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, records...)
	return nil
}

type stubDocs struct {
	record *docstore.GameRecord
	err    error
}

func (s *stubDocs) PutGame(record docstore.GameRecord) error {
	if s.err != nil {
		return s.err
	}
	s.record = &record
	return nil
}

func finalizeFixture(t *testing.T, history HistoryStore, docs GameDocStore) (*Server, *Room) {
	t.Helper()
	s := New(history, docs, &stubCharger{}, config.Default())
	s.tick = time.Hour
	room := mustRoom(t, s, RoomSpec{TableNo: 1, EntryLimit: 9, DurationMinutes: 1}, "dealer")
	ctx := context.Background()
	for i, nick := range []string{"A", "B", "C", "D"} {
		if _, err := s.takeSeat(ctx, session(nick), room.ID, i, false); err != nil {
			t.Fatalf("seat %s: %v", nick, err)
		}
	}
	if _, err := s.sitOut(room.ID, "D", -1); err != nil {
		t.Fatalf("sitout D: %v", err)
	}
	return s, room
}

func podium() Placements {
	return Placements{First: "uuid-A", Second: "uuid-B", Third: "uuid-C", PrizeType: "gold"}
}

func TestFinishGameNonDealerRejected(t *testing.T) {
	history := &stubHistory{}
	docs := &stubDocs{}
	s, room := finalizeFixture(t, history, docs)

	entry, playing, sitout := room.Entry, len(room.Playing), len(room.Sitout)
	_, err := s.finishGame(session("A"), room.ID, podium())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, ok := s.registry.Get(room.ID); !ok {
		t.Fatal("rejected finish removed the room")
	}
	if room.Entry != entry || len(room.Playing) != playing || len(room.Sitout) != sitout {
		t.Fatal("rejected finish mutated the room")
	}
	if history.records != nil || docs.record != nil {
		t.Fatal("rejected finish reached the stores")
	}
}

func TestFinishGameRecords(t *testing.T) {
	history := &stubHistory{}
	docs := &stubDocs{}
	s, room := finalizeFixture(t, history, docs)

	result, err := s.finishGame(dealerSession(), room.ID, podium())
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, ok := s.registry.Get(room.ID); ok {
		t.Fatal("expected room torn down")
	}

	if docs.record == nil {
		t.Fatal("expected aggregate game record")
	}
	roster := docs.record.UserList.Data()
	if len(roster) != 4 {
		t.Fatalf("expected full roster of 4, got %v", roster)
	}
	if roster["D"] != "uuid-D" {
		t.Fatalf("sitout player missing from roster: %v", roster)
	}
	if docs.record.User1st != "uuid-A" || docs.record.GameID != room.ID {
		t.Fatalf("unexpected game record %+v", docs.record)
	}

	if len(history.records) != 4 {
		t.Fatalf("expected 4 history rows, got %d", len(history.records))
	}
	byUUID := make(map[string]db.UserGame)
	for _, rec := range history.records {
		byUUID[rec.UserUUID] = rec
	}
	first := byUUID["uuid-A"]
	if first.Place != 1 || first.Point != 3 || first.PrizeAmount != 4 || first.PrizeType != "gold" {
		t.Fatalf("unexpected winner row %+v", first)
	}
	if second := byUUID["uuid-B"]; second.Place != 2 || second.Point != 0 || second.PrizeAmount != 2 {
		t.Fatalf("unexpected runner-up row %+v", second)
	}
	if third := byUUID["uuid-C"]; third.Place != 3 || third.PrizeAmount != 1 {
		t.Fatalf("unexpected third row %+v", third)
	}
	if other := byUUID["uuid-D"]; other.Place != 0 || other.Point != 0 || other.PrizeAmount != 0 {
		t.Fatalf("unexpected participation row %+v", other)
	}
	if result.GameID != room.ID {
		t.Fatalf("unexpected result id %s", result.GameID)
	}
}

func TestFinishGameConfigurableScoring(t *testing.T) {
	history := &stubHistory{}
	cfg := config.Default()
	cfg.PointsFirst, cfg.PointsSecond, cfg.PointsThird = 1, 0, 0
	cfg.PrizeFirst, cfg.PrizeSecond, cfg.PrizeThird = 10, 5, 2
	s := New(history, nil, &stubCharger{}, cfg)
	room := mustRoom(t, s, RoomSpec{TableNo: 1, EntryLimit: 9}, "dealer")
	ctx := context.Background()
	for i, nick := range []string{"A", "B", "C"} {
		if _, err := s.takeSeat(ctx, session(nick), room.ID, i, false); err != nil {
			t.Fatalf("seat %s: %v", nick, err)
		}
	}

	if _, err := s.finishGame(dealerSession(), room.ID, podium()); err != nil {
		t.Fatalf("finish: %v", err)
	}
	for _, rec := range history.records {
		switch rec.UserUUID {
		case "uuid-A":
			if rec.Point != 1 || rec.PrizeAmount != 10 {
				t.Fatalf("unexpected winner row %+v", rec)
			}
		case "uuid-B":
			if rec.Point != 0 || rec.PrizeAmount != 5 {
				t.Fatalf("unexpected runner-up row %+v", rec)
			}
		}
	}
}

func TestFinishGamePartialFailure(t *testing.T) {
	history := &stubHistory{}
	docs := &stubDocs{err: errors.New("document write refused")}
	s, room := finalizeFixture(t, history, docs)

	result, err := s.finishGame(dealerSession(), room.ID, podium())
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if result == nil {
		t.Fatal("partial failure must still expose the computed result")
	}
	if len(history.records) != 4 {
		t.Fatalf("history write should have landed, got %d rows", len(history.records))
	}
	if _, ok := s.registry.Get(room.ID); ok {
		t.Fatal("room must be torn down even when a write fails")
	}
}

func TestFinishGameCancelsClock(t *testing.T) {
	s, room := finalizeFixture(t, &stubHistory{}, &stubDocs{})
	if err := s.startTimer(dealerSession(), room.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	task := room.Timer.task

	if _, err := s.finishGame(dealerSession(), room.ID, podium()); err != nil {
		t.Fatalf("finish: %v", err)
	}
	select {
	case <-task.stop:
	default:
		t.Fatal("expected the clock task cancelled before persistence")
	}
}

func TestFinishGameGuestExcluded(t *testing.T) {
	history := &stubHistory{}
	docs := &stubDocs{}
	s := New(history, docs, &stubCharger{}, config.Default())
	room := mustRoom(t, s, RoomSpec{TableNo: 1, EntryLimit: 9}, "dealer")
	ctx := context.Background()
	for i, nick := range []string{"A", "B", "C"} {
		if _, err := s.takeSeat(ctx, session(nick), room.ID, i, false); err != nil {
			t.Fatalf("seat %s: %v", nick, err)
		}
	}
	if _, err := s.takeSeat(ctx, session("G"), room.ID, 5, true); err != nil {
		t.Fatalf("guest seat: %v", err)
	}

	if _, err := s.finishGame(dealerSession(), room.ID, podium()); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if len(history.records) != 3 {
		t.Fatalf("guest must not get a history row, got %d rows", len(history.records))
	}
	if _, ok := docs.record.UserList.Data()["G"]; ok {
		t.Fatal("guest must not appear in the roster document")
	}
}
