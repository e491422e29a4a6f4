package game

import (
	"testing"
	"time"

	"golang.org/x/time/rate"

	"gridfire-server/config"
	"gridfire-server/src/api"
)

// openLayout is an 8x8 world with no interior walls, so movement and bullet
// tests control collisions explicitly.
var openLayout = []string{
	"........",
	"........",
	"........",
	"........",
	"........",
	"........",
	"........",
	"........",
}

// newTestServer builds a server with a single room over the given layout.
func newTestServer(t *testing.T, layout []string) (*GameServer, *RoomState) {
	t.Helper()
	room := newRoom("test_room", NewWorldMap(layout, config.CellSize))
	s := &GameServer{
		rooms:      map[string]*RoomState{"test_room": room},
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 1),
		unregister: make(chan *Client, 1),
		store:      api.NewMemoryStore(),
		now:        time.Now,
	}
	return s, room
}

// newTestServerWithRooms builds a server the way production does, with the
// configured rooms and their bots.
func newTestServerWithRooms(t *testing.T) *GameServer {
	t.Helper()
	s := &GameServer{
		rooms:      make(map[string]*RoomState),
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 1),
		unregister: make(chan *Client, 1),
		store:      api.NewMemoryStore(),
		now:        time.Now,
	}
	s.createRooms()
	return s
}

func newTestClient(playerID, roomID string) *Client {
	return &Client{
		playerID: playerID,
		roomID:   roomID,
		send:     make(chan []byte, 32),
	}
}

// addTestPlayer places a ready-to-play entity in the room without going
// through the join message path.
func addTestPlayer(room *RoomState, id string, x, y float64) *PlayerState {
	p := &PlayerState{
		ID:          id,
		Username:    id,
		Pos:         Point{X: x, Y: y},
		HP:          config.PlayerMaxHP,
		MaxHP:       config.PlayerMaxHP,
		Ammo:        config.ClipSize,
		fireLimiter: rate.NewLimiter(rate.Every(config.MinShotInterval), 1),
	}
	room.players[id] = p
	return p
}

func addTestBot(room *RoomState, id string, x, y float64) *BotState {
	b := &BotState{
		ID:       id,
		Username: id,
		Pos:      Point{X: x, Y: y},
		HP:       config.BotMaxHP,
		MaxHP:    config.BotMaxHP,
	}
	room.bots[id] = b
	return b
}

func addTestBullet(room *RoomState, owner string, x, y, angle float64, life int) *Bullet {
	b := &Bullet{
		ID:      "bullet-" + owner,
		OwnerID: owner,
		Pos:     Point{X: x, Y: y},
		Angle:   angle,
		Speed:   config.BulletSpeed,
		Damage:  config.BulletDamage,
		Life:    life,
	}
	room.bullets = append(room.bullets, b)
	return b
}
