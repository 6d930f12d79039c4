package server

import (
	"context"
	"fmt"
	"log"
)

// takeSeat reserves a chair for the session's identity. The reservation and
// the entry counter are applied under the registry lock before the charge
// call goes out, so a second request for the same chair sees SeatOccupied
// while the first charge is still in flight. A failed charge compensates by
// releasing the chair and decrementing the counter.
func (s *Server) takeSeat(ctx context.Context, sess *Session, roomID string, chair int, guest bool) (*Room, error) {
	if chair < 0 || chair >= seatCount {
		return nil, ErrBadChair
	}

	var (
		occ        *Occupant
		needCharge bool
		newEntrant bool
		ticketType string
		amount     int
	)
	room, err := s.registry.Update(roomID, func(room *Room) error {
		dealer := room.DealerID == sess.Nickname
		dealerExempt := dealer && !s.cfg.DealerSeatCounted
		if room.Entry >= room.EntryLimit && !dealerExempt {
			return ErrCapacityExceeded
		}
		if existing := room.Seats[chair]; existing != nil && existing.Nickname != sess.Nickname {
			return ErrSeatOccupied
		}

		occ = &Occupant{Nickname: sess.Nickname, UUID: sess.UUID, Guest: guest}
		for i, o := range room.Seats {
			if o != nil && o.Nickname == sess.Nickname {
				room.Seats[i] = nil
			}
		}
		room.Seats[chair] = occ

		_, playing := room.Playing[sess.Nickname]
		switch {
		case dealerExempt:
			// the dealer holds a chair without consuming an entry
		case !guest && playing:
			// moving chairs, already paid and counted
		default:
			room.Entry++
			newEntrant = true
			needCharge = !dealer
			ticketType = room.TicketType
			amount = room.TicketAmount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if needCharge && s.charger != nil {
		if err := s.charger.Charge(ctx, sess.UUID, ticketType, amount); err != nil {
			log.Printf("charge failed room_id=%s user=%s error=%v", roomID, sess.Nickname, err)
			_, _ = s.registry.Update(roomID, func(room *Room) error {
				if room.Seats[chair] == occ {
					room.Seats[chair] = nil
				}
				room.Entry--
				return nil
			})
			return nil, fmt.Errorf("%w: %v", ErrChargeFailed, err)
		}
	}

	if newEntrant && !guest {
		room, err = s.registry.Update(roomID, func(room *Room) error {
			room.Playing[sess.Nickname] = sess.UUID
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return room, nil
}

// sitOut moves a seated player to the sitout roster and frees the chair.
// The target is a nickname, or a chair index resolved to its occupant.
// Guests are only ever cleared from the chair; they are not tracked.
func (s *Server) sitOut(roomID, nickname string, chair int) (*Room, error) {
	return s.registry.Update(roomID, func(room *Room) error {
		target := nickname
		if target == "" {
			if chair < 0 || chair >= seatCount || room.Seats[chair] == nil {
				return ErrNotOccupied
			}
			if room.Seats[chair].Guest {
				room.Seats[chair] = nil
				return nil
			}
			target = room.Seats[chair].Nickname
		}
		userUUID, ok := room.Playing[target]
		if !ok {
			return ErrNotOccupied
		}
		room.Sitout[target] = userUUID
		delete(room.Playing, target)
		for i, o := range room.Seats {
			if o != nil && !o.Guest && o.Nickname == target {
				room.Seats[i] = nil
			}
		}
		return nil
	})
}
