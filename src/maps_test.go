package game

import (
	"testing"

	"gridfire-server/config"
)

func TestIsBlockedMapsCoordinatesToCells(t *testing.T) {
	m := NewWorldMap([]string{
		"####",
		"#..#",
		"#.##",
		"####",
	}, 64)

	cases := []struct {
		name string
		x, y float64
		want bool
	}{
		{"open cell center", 96, 96, false},
		{"wall cell center", 32, 32, true},
		{"open cell edge", 64, 64, false},
		{"wall right of open", 160, 160, true},
		{"negative x", -1, 96, true},
		{"negative y", 96, -1, true},
		{"past right edge", 256, 96, true},
		{"past bottom edge", 96, 256, true},
	}
	for _, tc := range cases {
		if got := m.IsBlocked(tc.x, tc.y); got != tc.want {
			t.Errorf("%s: IsBlocked(%v, %v) = %v, want %v", tc.name, tc.x, tc.y, got, tc.want)
		}
	}
}

func TestWorldMapDimensions(t *testing.T) {
	m := DefaultWorldMap()
	if m.Width() != float64(config.GridWidth)*config.CellSize {
		t.Fatalf("Width() = %v, want %v", m.Width(), float64(config.GridWidth)*config.CellSize)
	}
	if m.Height() != float64(config.GridHeight)*config.CellSize {
		t.Fatalf("Height() = %v, want %v", m.Height(), float64(config.GridHeight)*config.CellSize)
	}
	if len(m.Rows()) != config.GridHeight {
		t.Fatalf("Rows() has %d rows, want %d", len(m.Rows()), config.GridHeight)
	}
}

func TestRandomSpawnAlwaysLandsOnOpenCell(t *testing.T) {
	m := DefaultWorldMap()
	for i := 0; i < 200; i++ {
		p := m.RandomSpawn()
		if m.IsBlocked(p.X, p.Y) {
			t.Fatalf("RandomSpawn returned blocked position (%v, %v)", p.X, p.Y)
		}
	}
}

func TestCreateRoomsPopulatesBots(t *testing.T) {
	s := newTestServerWithRooms(t)
	if len(s.rooms) != len(config.AvailableRooms) {
		t.Fatalf("created %d rooms, want %d", len(s.rooms), len(config.AvailableRooms))
	}
	for _, id := range config.AvailableRooms {
		room, ok := s.rooms[id]
		if !ok {
			t.Fatalf("room %q missing", id)
		}
		if len(room.bots) != config.BotsPerRoom {
			t.Fatalf("room %q has %d bots, want %d", id, len(room.bots), config.BotsPerRoom)
		}
		for _, bot := range room.bots {
			if bot.HP != config.BotMaxHP {
				t.Fatalf("bot %s spawned with HP %d, want %d", bot.ID, bot.HP, config.BotMaxHP)
			}
		}
	}
}
