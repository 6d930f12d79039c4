package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

type event map[string]any

// wsHub tracks every live connection: all of them in the lobby group for
// room-list broadcasts, plus one group per room for member notifications.
type wsHub struct {
	mu    sync.Mutex
	lobby map[*websocket.Conn]struct{}
	rooms map[string]map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		lobby: make(map[*websocket.Conn]struct{}),
		rooms: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (h *wsHub) Add(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lobby[conn] = struct{}{}
}

func (h *wsHub) Join(roomID string, conn *websocket.Conn) {
	if conn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[roomID]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.rooms[roomID] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Leave(roomID string, conn *websocket.Conn) {
	if conn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if group := h.rooms[roomID]; group != nil {
		delete(group, conn)
		if len(group) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *wsHub) Remove(roomID string, conn *websocket.Conn) {
	if conn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.lobby, conn)
	if roomID != "" {
		if group := h.rooms[roomID]; group != nil {
			delete(group, conn)
			if len(group) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	_ = conn.Close()
}

func (h *wsHub) Send(conn *websocket.Conn, payload any) {
	if conn == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func (h *wsHub) Broadcast(roomID string, payload any) {
	h.mu.Lock()
	group := h.rooms[roomID]
	conns := make([]*websocket.Conn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(roomID, conn)
		}
	}
}

func (h *wsHub) BroadcastLobby(payload any) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.lobby))
	for conn := range h.lobby {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove("", conn)
		}
	}
}

// client binds one websocket connection to its session. All command
// handling for the connection runs on its single reader goroutine.
type client struct {
	conn *websocket.Conn
	sess *Session
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	claims, err := decodeClaims(r.URL.Query().Get("token"), s.cfg.JWTSecret)
	if err != nil {
		log.Printf("ws rejected remote=%s error=%v", r.RemoteAddr, err)
		s.hub.Send(conn, event{"type": "error", "command": "connect", "msg": "authentication failed"})
		_ = conn.Close()
		return
	}
	if !hasAnyRole(claims.Roles, s.cfg.PermittedRoles) {
		log.Printf("ws rejected remote=%s user=%s reason=missing_role", r.RemoteAddr, claims.Nickname)
		s.hub.Send(conn, event{"type": "error", "command": "connect", "msg": "role not permitted"})
		_ = conn.Close()
		return
	}

	c := &client{
		conn: conn,
		sess: &Session{Nickname: claims.Nickname, UUID: claims.UUID, Roles: claims.Roles},
	}
	log.Printf("ws connected remote=%s user=%s", r.RemoteAddr, claims.Nickname)
	s.hub.Add(conn)
	s.hub.Send(conn, event{"type": "roomList", "rooms": s.registry.List()})
	go s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer func() {
		s.hub.Remove(c.sess.RoomID, c.conn)
		log.Printf("ws disconnected user=%s", c.sess.Nickname)
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.hub.Send(c.conn, event{"type": "error", "command": "", "msg": "malformed command"})
			continue
		}
		s.handleCommand(c, env)
	}
}
