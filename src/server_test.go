package game

import (
	"encoding/json"
	"testing"

	"gridfire-server/config"
)

func TestLeaveRemovesPlayerAndIsIdempotent(t *testing.T) {
	s, room := newTestServer(t, openLayout)
	c := newTestClient("c1", "test_room")
	s.handleJoin(c, JoinPayload{Username: "alice"})

	s.mu.Lock()
	s.leaveLocked(c)
	if len(room.players) != 0 {
		t.Fatalf("player still present after leave")
	}
	// A second leave for the same connection is a no-op.
	s.leaveLocked(c)
	s.mu.Unlock()
}

func TestLeaveForNeverJoinedClient(t *testing.T) {
	s, room := newTestServer(t, openLayout)
	c := newTestClient("ghost", "test_room")

	s.mu.Lock()
	s.leaveLocked(c)
	s.mu.Unlock()
	if len(room.players) != 0 {
		t.Fatalf("leave of a never-joined client created state")
	}
}

func TestBroadcastStateSnapshot(t *testing.T) {
	s, room := newTestServer(t, openLayout)
	c := newTestClient("c1", "test_room")
	s.clients["c1"] = c
	addTestPlayer(room, "c1", 128, 128)
	addTestBot(room, "drone", 256, 256)
	addTestBullet(room, "c1", 140, 128, 0, 10)

	s.mu.Lock()
	s.broadcastState(room)
	s.mu.Unlock()

	var msg struct {
		Type    string       `json:"type"`
		Payload StatePayload `json:"payload"`
	}
	select {
	case raw := <-c.send:
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("bad state message: %v", err)
		}
	default:
		t.Fatalf("no state message queued")
	}

	if msg.Type != "state" {
		t.Fatalf("type = %q, want state", msg.Type)
	}
	if msg.Payload.PlayerCount != 1 {
		t.Fatalf("playerCount = %d, want 1", msg.Payload.PlayerCount)
	}
	if len(msg.Payload.Players) != 1 || len(msg.Payload.Bots) != 1 || len(msg.Payload.Bullets) != 1 {
		t.Fatalf("snapshot sizes: %d players, %d bots, %d bullets",
			len(msg.Payload.Players), len(msg.Payload.Bots), len(msg.Payload.Bullets))
	}
	if p := msg.Payload.Players["c1"]; p == nil || p.HP != config.PlayerMaxHP {
		t.Fatalf("player snapshot missing or wrong: %+v", p)
	}
}

func TestBroadcastSkipsOtherRooms(t *testing.T) {
	s, room := newTestServer(t, openLayout)
	inRoom := newTestClient("in", "test_room")
	elsewhere := newTestClient("out", "another_room")
	s.clients["in"] = inRoom
	s.clients["out"] = elsewhere

	s.mu.Lock()
	s.broadcastToRoom(room, "killfeed", KillfeedPayload{Killer: "a", Victim: "b"})
	s.mu.Unlock()

	if len(inRoom.send) != 1 {
		t.Fatalf("in-room client got %d messages, want 1", len(inRoom.send))
	}
	if len(elsewhere.send) != 0 {
		t.Fatalf("out-of-room client got %d messages, want 0", len(elsewhere.send))
	}
}

func TestSendMessageNilClient(t *testing.T) {
	s, _ := newTestServer(t, openLayout)
	// Entities without a live connection must not crash sends.
	s.sendMessage(nil, "died", DiedPayload{Killer: "x"})
}

func TestHandleClientMessageDispatch(t *testing.T) {
	s, room := newTestServer(t, openLayout)
	c := newTestClient("c1", "test_room")

	join, _ := json.Marshal(map[string]interface{}{
		"type":    "join",
		"payload": JoinPayload{Username: "alice"},
	})
	s.handleClientMessage(c, join)
	if len(room.players) != 1 {
		t.Fatalf("join message did not create a player")
	}

	input, _ := json.Marshal(map[string]interface{}{
		"type":    "input",
		"payload": InputPayload{Keys: KeyState{W: true}, Angle: 0},
	})
	before := room.players["c1"].Pos
	s.handleClientMessage(c, input)
	if room.players["c1"].Pos == before {
		t.Fatalf("input message did not move the player")
	}

	shoot, _ := json.Marshal(map[string]string{"type": "shoot"})
	s.handleClientMessage(c, shoot)
	if len(room.bullets) != 1 {
		t.Fatalf("shoot message did not spawn a bullet")
	}

	// Unknown types and malformed payloads are dropped silently.
	s.handleClientMessage(c, []byte(`{"type":"warp","payload":{}}`))
	s.handleClientMessage(c, []byte(`{"type":"input","payload":"not-an-object"}`))
	s.handleClientMessage(c, []byte(`not json at all`))
}
