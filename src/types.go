package game

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"gridfire-server/src/api"
)

// 1. Data Structures

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// KeyState mirrors the movement keys held down on the client.
type KeyState struct {
	W bool `json:"w"`
	S bool `json:"s"`
	A bool `json:"a"`
	D bool `json:"d"`
}

// PlayerState is the authoritative record of a human-controlled entity.
// The ID is the connection identifier; a duplicate join on the same
// connection overwrites this record rather than creating a second one.
type PlayerState struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Pos       Point   `json:"pos"`
	Angle     float64 `json:"angle"`
	HP        int     `json:"hp"`
	MaxHP     int     `json:"maxHp"`
	Kills     int     `json:"kills"`
	Deaths    int     `json:"deaths"`
	Ammo      int     `json:"ammo"`
	Reloading bool    `json:"reloading"`

	RespawnAt    time.Time `json:"-"`
	ReloadEndsAt time.Time `json:"-"`

	fireLimiter *rate.Limiter
	Client      *Client `json:"-"`
}

// IsDead reports whether the player is inert: no movement, no firing,
// no further damage until respawn resets HP.
func (p *PlayerState) IsDead() bool { return p.HP <= 0 }

// BotState is the authoritative record of an AI-controlled entity. Bots are
// never removed; dead bots respawn in place after a randomized delay.
type BotState struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Pos      Point   `json:"pos"`
	Angle    float64 `json:"angle"`
	HP       int     `json:"hp"`
	MaxHP    int     `json:"maxHp"`
	Kills    int     `json:"kills"`
	Deaths   int     `json:"deaths"`

	TargetAngle   float64 `json:"-"`
	DecisionTimer int     `json:"-"`
	FireTimer     int     `json:"-"`
}

func (b *BotState) IsDead() bool { return b.HP <= 0 }

// Bullet is an in-flight projectile. Created only by a fire action,
// destroyed on wall impact, entity impact, or lifetime expiry.
type Bullet struct {
	ID      string  `json:"id"`
	OwnerID string  `json:"ownerId"`
	Pos     Point   `json:"pos"`
	Angle   float64 `json:"angle"`
	Speed   float64 `json:"speed"`
	Damage  int     `json:"damage"`
	Life    int     `json:"life"` // remaining ticks
}

// RoomState is an isolated world instance with its own entities and bullets.
type RoomState struct {
	ID      string
	world   *WorldMap
	players map[string]*PlayerState
	bots    map[string]*BotState
	bullets []*Bullet
}

// Client is one WebSocket connection. Its playerID doubles as the entity ID
// once the client joins.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	playerID string
	roomID   string
}

// GameServer owns all rooms and connected clients. A single mutex guards the
// room state: the tick loop holds it for a full pass, connection handlers
// lock it around individual mutations.
type GameServer struct {
	mu         sync.Mutex
	rooms      map[string]*RoomState
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	store      api.UserStore

	now func() time.Time
}

// 2. Wire payloads. Messages travel as {"type": ..., "payload": ...}
// JSON envelopes in both directions.

type JoinPayload struct {
	Username string `json:"username"`
}

type InputPayload struct {
	Keys  KeyState `json:"keys"`
	Angle float64  `json:"angle"`
}

type InitPayload struct {
	ID       string   `json:"id"`
	Room     string   `json:"room"`
	Map      []string `json:"map"`
	CellSize float64  `json:"cellSize"`
	Fps      int      `json:"fps"`
}

type StatePayload struct {
	Players     map[string]*PlayerState `json:"players"`
	Bots        map[string]*BotState    `json:"bots"`
	Bullets     []*Bullet               `json:"bullets"`
	PlayerCount int                     `json:"playerCount"`
}

type DiedPayload struct {
	Killer string `json:"killer"`
}

type KillfeedPayload struct {
	Killer string `json:"killer"`
	Victim string `json:"victim"`
}

type ReloadingPayload struct {
	Reloading bool `json:"reloading"`
}
