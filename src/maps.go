package game

import (
	"fmt"
	"log"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"gridfire-server/config"
)

// WorldMap is an immutable grid of blocked/open cells, shared read-only by
// all simulation logic.
type WorldMap struct {
	rows     []string
	blocked  [][]bool
	gridW    int
	gridH    int
	cellSize float64
}

// NewWorldMap parses a layout into a WorldMap. '#' marks a blocked cell,
// anything else is open. All rows must have equal length.
func NewWorldMap(rows []string, cellSize float64) *WorldMap {
	m := &WorldMap{
		rows:     rows,
		gridH:    len(rows),
		cellSize: cellSize,
	}
	if m.gridH > 0 {
		m.gridW = len(rows[0])
	}
	m.blocked = make([][]bool, m.gridH)
	for y, row := range rows {
		m.blocked[y] = make([]bool, m.gridW)
		for x := 0; x < m.gridW && x < len(row); x++ {
			m.blocked[y][x] = row[x] == '#'
		}
	}
	return m
}

// DefaultWorldMap builds the fixed layout every room uses.
func DefaultWorldMap() *WorldMap {
	return NewWorldMap(config.DefaultLayout, config.CellSize)
}

// IsBlocked resolves world coordinates to a grid cell and reports whether
// movement into that cell is disallowed. Out-of-bounds counts as blocked.
func (m *WorldMap) IsBlocked(x, y float64) bool {
	cx := int(math.Floor(x / m.cellSize))
	cy := int(math.Floor(y / m.cellSize))
	if cx < 0 || cx >= m.gridW || cy < 0 || cy >= m.gridH {
		return true
	}
	return m.blocked[cy][cx]
}

// Rows returns the raw layout for the init payload.
func (m *WorldMap) Rows() []string { return m.rows }

// Width returns the world width in coordinate units.
func (m *WorldMap) Width() float64 { return float64(m.gridW) * m.cellSize }

// Height returns the world height in coordinate units.
func (m *WorldMap) Height() float64 { return float64(m.gridH) * m.cellSize }

// RandomSpawn picks the center of a random open cell.
func (m *WorldMap) RandomSpawn() Point {
	for {
		cx := rand.Intn(m.gridW)
		cy := rand.Intn(m.gridH)
		if !m.blocked[cy][cx] {
			return Point{
				X: (float64(cx) + 0.5) * m.cellSize,
				Y: (float64(cy) + 0.5) * m.cellSize,
			}
		}
	}
}

// newRoom creates an empty room over the given world.
func newRoom(id string, world *WorldMap) *RoomState {
	return &RoomState{
		ID:      id,
		world:   world,
		players: make(map[string]*PlayerState),
		bots:    make(map[string]*BotState),
		bullets: make([]*Bullet, 0, 64),
	}
}

// createRooms initializes every configured room and populates its bots.
func (s *GameServer) createRooms() {
	for _, id := range config.AvailableRooms {
		room := newRoom(id, DefaultWorldMap())
		s.instantiateBots(room)
		s.rooms[id] = room
	}
	log.Printf("Created %d rooms.", len(s.rooms))
}

// instantiateBots fills a room with its AI entities.
func (s *GameServer) instantiateBots(room *RoomState) {
	for i := 0; i < config.BotsPerRoom; i++ {
		bot := &BotState{
			ID:            uuid.New().String(),
			Username:      fmt.Sprintf("drone-%d", i+1),
			Pos:           room.world.RandomSpawn(),
			Angle:         rand.Float64() * 2 * math.Pi,
			HP:            config.BotMaxHP,
			MaxHP:         config.BotMaxHP,
			DecisionTimer: randTicks(config.BotDecisionMinTicks, config.BotDecisionMaxTicks),
			FireTimer:     randTicks(config.BotFireMinTicks, config.BotFireMaxTicks),
		}
		bot.TargetAngle = bot.Angle
		room.bots[bot.ID] = bot
	}
}
