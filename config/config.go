package config

import "time"

// Simulation tick.
const (
	TickRate     = 60
	TickInterval = time.Second / TickRate
)

// World grid. Coordinates map to cells with floor(coordinate / CellSize);
// anything outside the grid counts as blocked.
const (
	CellSize   = 64.0
	GridWidth  = 16
	GridHeight = 16
)

// DefaultLayout is the fixed world layout, one string per grid row.
// '#' cells block movement and bullets, '.' cells are open.
var DefaultLayout = []string{
	"################",
	"#..............#",
	"#..............#",
	"#...##....##...#",
	"#...##....##...#",
	"#..............#",
	"#......##......#",
	"#......##......#",
	"#......##......#",
	"#......##......#",
	"#..............#",
	"#...##....##...#",
	"#...##....##...#",
	"#..............#",
	"#..............#",
	"################",
}

// Entity health maxima.
const (
	PlayerMaxHP = 150
	BotMaxHP    = 100
)

// Movement, world units per tick.
const (
	PlayerSpeed = 6.0
	BotSpeed    = 2.5
)

// Bullet profile.
const (
	BulletSpeed  = 20.0 // world units per tick
	BulletDamage = 25
	BulletLife   = 60 // ticks
	HitRadius    = 30.0
)

// Respawn behavior. Human players respawn after a fixed delay; dead bots
// roll BotRespawnChance once per tick instead.
const (
	RespawnDelay     = 3000 * time.Millisecond
	BotRespawnChance = 0.02
)

// Weapon clip model.
const (
	ClipSize        = 30
	ReloadDuration  = 1500 * time.Millisecond
	MinShotInterval = 150 * time.Millisecond
)

// Bot AI cadence. Timers are in ticks.
const (
	BotDecisionMinTicks = 30
	BotDecisionMaxTicks = 90
	BotFireMinTicks     = 36
	BotFireMaxTicks     = 138
	BotTurnFactor       = 0.1
	BotFireJitter       = 0.12 // radians
)

// Usernames.
const (
	UsernameMaxLen  = 20
	DefaultUsername = "anon"
)

// Room IDs.
const (
	RoomAlphaID = "arena_alpha"
	RoomBetaID  = "arena_beta"
)

// DefaultRoomID is the room clients are assigned to when none is requested.
const DefaultRoomID = RoomAlphaID

// AvailableRooms lists all rooms the server runs.
var AvailableRooms = []string{RoomAlphaID, RoomBetaID}

// BotsPerRoom is the number of AI entities spawned into each room at startup.
const BotsPerRoom = 4
