package server

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/thoas/go-funk"
	"gorm.io/datatypes"

	"github.com/itmustbemimic/jenesis/internal/db"
	"github.com/itmustbemimic/jenesis/internal/docstore"
)

// FinalizeResult is the transient outcome of one finish call: the aggregate
// document and the per-participant rows that were written.
type FinalizeResult struct {
	GameID   string
	Document docstore.GameRecord
	Records  []db.UserGame
}

// finishGame records the game's results and tears the room down. Dealer
// only. The clock is cancelled and the room removed before the writes go
// out, so no tick can interleave with persistence; the two store writes are
// independent and a failure of one never hides the other's success.
func (s *Server) finishGame(sess *Session, roomID string, placements Placements) (*FinalizeResult, error) {
	var roster map[string]string
	_, err := s.registry.Update(roomID, func(room *Room) error {
		if room.DealerID != sess.Nickname {
			return ErrUnauthorized
		}
		if room.Timer.task != nil {
			room.Timer.task.cancel()
			room.Timer.task = nil
		}
		roster = make(map[string]string, len(room.Playing)+len(room.Sitout))
		for nick, id := range room.Playing {
			roster[nick] = id
		}
		for nick, id := range room.Sitout {
			roster[nick] = id
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.registry.Delete(roomID)

	now := time.Now().UTC().Format(time.RFC3339)
	result := &FinalizeResult{
		GameID: roomID,
		Document: docstore.GameRecord{
			GameID:    roomID,
			GameDate:  now,
			User1st:   placements.First,
			User2nd:   placements.Second,
			User3rd:   placements.Third,
			PrizeType: placements.PrizeType,
			UserList:  datatypes.NewJSONType(roster),
		},
		Records: s.buildRecords(roomID, now, placements, roster),
	}

	var errs []error
	if s.docs != nil {
		if err := s.docs.PutGame(result.Document); err != nil {
			log.Printf("game record write failed game_id=%s error=%v", roomID, err)
			errs = append(errs, fmt.Errorf("game record: %v", err))
		}
	}
	if s.history != nil {
		if err := s.history.InsertResults(result.Records); err != nil {
			log.Printf("history write failed game_id=%s error=%v", roomID, err)
			errs = append(errs, fmt.Errorf("history rows: %v", err))
		}
	}
	if len(errs) > 0 {
		return result, fmt.Errorf("%w: %v", ErrPersistence, errors.Join(errs...))
	}
	return result, nil
}

// buildRecords computes one history row per distinct participant: the
// podium takes the configured point/prize values by rank, everyone else
// gets a zero-point participation row.
func (s *Server) buildRecords(gameID, date string, placements Placements, roster map[string]string) []db.UserGame {
	row := func(userUUID string, place, point, amount int) db.UserGame {
		return db.UserGame{
			UserUUID:    userUUID,
			GameID:      gameID,
			GameDate:    date,
			Place:       place,
			Point:       point,
			PrizeType:   placements.PrizeType,
			PrizeAmount: amount,
		}
	}
	records := []db.UserGame{
		row(placements.First, 1, s.cfg.PointsFirst, s.cfg.PrizeFirst),
		row(placements.Second, 2, s.cfg.PointsSecond, s.cfg.PrizeSecond),
		row(placements.Third, 3, s.cfg.PointsThird, s.cfg.PrizeThird),
	}
	podium := []string{placements.First, placements.Second, placements.Third}
	for _, userUUID := range roster {
		if funk.ContainsString(podium, userUUID) {
			continue
		}
		records = append(records, row(userUUID, 0, 0, 0))
	}
	return records
}
