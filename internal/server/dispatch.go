package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// envelope is the client->server command frame.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type authLevel int

const (
	// any authenticated connection
	authMember authLevel = iota
	// admin role required
	authAdmin
)

// commandAuth is the single authorization table applied before any command
// reaches the core. Dealer authority is a per-room property and is checked
// by the core operations themselves.
var commandAuth = map[string]authLevel{
	"listRooms":  authMember,
	"createRoom": authAdmin,
	"joinRoom":   authMember,
	"takeSeat":   authMember,
	"sitOut":     authAdmin,
	"startTimer": authMember,
	"pauseTimer": authMember,
	"resetTimer": authMember,
	"closeRoom":  authMember,
	"finishGame": authMember,
}

func (s *Server) authorize(sess *Session, level authLevel) bool {
	switch level {
	case authAdmin:
		return hasAnyRole(sess.Roles, []string{roleAdmin})
	default:
		return hasAnyRole(sess.Roles, s.cfg.PermittedRoles)
	}
}

func (s *Server) handleCommand(c *client, env envelope) {
	reply, err := s.dispatch(c, env)
	if err != nil {
		s.hub.Send(c.conn, event{"type": "error", "command": env.Type, "msg": err.Error()})
		return
	}
	if reply != nil {
		s.hub.Send(c.conn, reply)
	}
}

// dispatch routes one command to the core and returns the structured reply
// for the issuing connection. Group notifications go out through the hub as
// side effects.
func (s *Server) dispatch(c *client, env envelope) (any, error) {
	level, ok := commandAuth[env.Type]
	if !ok {
		return nil, fmt.Errorf("unknown command %q", env.Type)
	}
	if !s.authorize(c.sess, level) {
		return nil, ErrUnauthorized
	}

	switch env.Type {
	case "listRooms":
		return event{"type": "roomList", "rooms": s.registry.List()}, nil

	case "createRoom":
		var spec RoomSpec
		if err := decodeData(env.Data, &spec); err != nil {
			return nil, err
		}
		room, err := s.registry.CreateRoom(spec, c.sess.Nickname)
		if err != nil {
			return nil, err
		}
		log.Printf("room created room_id=%s table_no=%d dealer=%s", room.ID, room.TableNo, room.DealerID)
		s.moveToRoom(c, room.ID)
		s.hub.BroadcastLobby(event{"type": "roomList", "rooms": s.registry.List()})
		return event{"type": "roomCreated", "roomId": room.ID, "name": room.Name}, nil

	case "joinRoom":
		var req struct {
			RoomID string `json:"game_id"`
		}
		if err := decodeData(env.Data, &req); err != nil {
			return nil, err
		}
		room, ok := s.registry.Get(req.RoomID)
		if !ok {
			return nil, ErrRoomNotFound
		}
		s.moveToRoom(c, room.ID)
		return event{"type": "roomJoined", "roomId": room.ID, "name": room.Name}, nil

	case "takeSeat":
		var req struct {
			RoomID string `json:"game_id"`
			Chair  int    `json:"chair"`
			Guest  bool   `json:"guest"`
		}
		if err := decodeData(env.Data, &req); err != nil {
			return nil, err
		}
		roomID := req.RoomID
		if roomID == "" {
			roomID = c.sess.RoomID
		}
		room, err := s.takeSeat(context.Background(), c.sess, roomID, req.Chair, req.Guest)
		if err != nil {
			return nil, err
		}
		s.moveToRoom(c, room.ID)
		s.hub.Broadcast(room.ID, event{"type": "memberUpdate", "msg": c.sess.Nickname + " joined the game"})
		s.hub.BroadcastLobby(event{"type": "roomList", "rooms": s.registry.List()})
		return event{"type": "seatTaken", "roomId": room.ID, "name": room.Name}, nil

	case "sitOut":
		var req struct {
			Nickname string `json:"nickname"`
			Chair    *int   `json:"chair"`
		}
		if err := decodeData(env.Data, &req); err != nil {
			return nil, err
		}
		chair := -1
		if req.Chair != nil {
			chair = *req.Chair
		}
		room, err := s.sitOut(c.sess.RoomID, req.Nickname, chair)
		if err != nil {
			return nil, err
		}
		s.hub.Broadcast(room.ID, event{"type": "memberUpdate", "msg": req.Nickname + " sitout"})
		return nil, nil

	case "startTimer":
		return nil, s.startTimer(c.sess, c.sess.RoomID)
	case "pauseTimer":
		return nil, s.pauseTimer(c.sess, c.sess.RoomID)
	case "resetTimer":
		return nil, s.resetTimer(c.sess, c.sess.RoomID)
	case "closeRoom":
		return nil, s.closeRoom(c.sess, c.sess.RoomID)

	case "finishGame":
		var placements Placements
		if err := decodeData(env.Data, &placements); err != nil {
			return nil, err
		}
		roomID := c.sess.RoomID
		result, err := s.finishGame(c.sess, roomID, placements)
		if err != nil {
			return nil, err
		}
		log.Printf("game finished game_id=%s records=%d", result.GameID, len(result.Records))
		s.hub.Broadcast(roomID, event{"type": "finished", "gameId": result.GameID})
		s.hub.BroadcastLobby(event{"type": "roomList", "rooms": s.registry.List()})
		c.sess.RoomID = ""
		return event{"type": "finished", "gameId": result.GameID, "msg": "game recorded"}, nil
	}
	return nil, errors.New("unreachable")
}

// moveToRoom switches the connection's notification group and current room.
func (s *Server) moveToRoom(c *client, roomID string) {
	if c.sess.RoomID == roomID {
		return
	}
	if c.sess.RoomID != "" {
		s.hub.Leave(c.sess.RoomID, c.conn)
	}
	c.sess.RoomID = roomID
	s.hub.Join(roomID, c.conn)
}

func decodeData(data json.RawMessage, dest any) error {
	if len(data) == 0 {
		return errors.New("missing command data")
	}
	return json.Unmarshal(data, dest)
}
