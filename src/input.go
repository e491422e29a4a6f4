package game

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"gridfire-server/config"
)

// handleJoin creates (or overwrites, on a duplicate join) the entity for
// this connection. Persisted kill/death counts are fetched before the lock
// is taken so the store never stalls the simulation.
func (s *GameServer) handleJoin(c *Client, in JoinPayload) {
	username := sanitizeUsername(in.Username)

	kills, deaths := 0, 0
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if rec, err := s.store.Get(ctx, username); err == nil && rec != nil {
		kills, deaths = rec.Kills, rec.Deaths
	}

	s.mu.Lock()
	room, ok := s.rooms[c.roomID]
	if !ok {
		s.mu.Unlock()
		log.Printf("Client %s: join for unknown room %q", c.playerID, c.roomID)
		return
	}
	player := &PlayerState{
		ID:          c.playerID,
		Username:    username,
		Pos:         room.world.RandomSpawn(),
		HP:          config.PlayerMaxHP,
		MaxHP:       config.PlayerMaxHP,
		Kills:       kills,
		Deaths:      deaths,
		Ammo:        config.ClipSize,
		fireLimiter: rate.NewLimiter(rate.Every(config.MinShotInterval), 1),
		Client:      c,
	}
	room.players[c.playerID] = player
	s.mu.Unlock()

	s.sendMessage(c, "init", InitPayload{
		ID:       c.playerID,
		Room:     room.ID,
		Map:      room.world.Rows(),
		CellSize: config.CellSize,
		Fps:      config.TickRate,
	})
	log.Printf("Player %s (%s) joined room %s.", username, c.playerID, room.ID)
}

// sanitizeUsername bounds the display name to 1..UsernameMaxLen characters,
// defaulting when absent.
func sanitizeUsername(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return config.DefaultUsername
	}
	runes := []rune(name)
	if len(runes) > config.UsernameMaxLen {
		return string(runes[:config.UsernameMaxLen])
	}
	return name
}

// handleInput applies a movement/aim intent. The whole displacement commits
// only if the destination cell is open; rejected moves leave the position
// unchanged, no sliding.
func (s *GameServer) handleInput(c *Client, in InputPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[c.roomID]
	if !ok {
		return
	}
	player, ok := room.players[c.playerID]
	if !ok || player.IsDead() {
		return
	}

	player.Angle = in.Angle

	var dx, dy float64
	if in.Keys.W {
		dx += math.Cos(player.Angle) * config.PlayerSpeed
		dy += math.Sin(player.Angle) * config.PlayerSpeed
	}
	if in.Keys.S {
		dx -= math.Cos(player.Angle) * config.PlayerSpeed
		dy -= math.Sin(player.Angle) * config.PlayerSpeed
	}
	if in.Keys.A {
		dx += math.Cos(player.Angle-math.Pi/2) * config.PlayerSpeed
		dy += math.Sin(player.Angle-math.Pi/2) * config.PlayerSpeed
	}
	if in.Keys.D {
		dx += math.Cos(player.Angle+math.Pi/2) * config.PlayerSpeed
		dy += math.Sin(player.Angle+math.Pi/2) * config.PlayerSpeed
	}
	if dx == 0 && dy == 0 {
		return
	}

	nx, ny := player.Pos.X+dx, player.Pos.Y+dy
	if room.world.IsBlocked(nx, ny) {
		return
	}
	player.Pos.X, player.Pos.Y = nx, ny
}

// handleFire spawns a bullet for the player, subject to the clip rules:
// no firing while dead or reloading, an empty clip starts a reload instead,
// and shots are rate-limited to the minimum inter-shot interval.
func (s *GameServer) handleFire(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[c.roomID]
	if !ok {
		return
	}
	player, ok := room.players[c.playerID]
	if !ok || player.IsDead() || player.Reloading {
		return
	}
	if player.Ammo <= 0 {
		s.startReload(player)
		return
	}
	if !player.fireLimiter.Allow() {
		return
	}

	player.Ammo--
	room.bullets = append(room.bullets, &Bullet{
		ID:      uuid.New().String(),
		OwnerID: player.ID,
		Pos:     player.Pos,
		Angle:   player.Angle,
		Speed:   config.BulletSpeed,
		Damage:  config.BulletDamage,
		Life:    config.BulletLife,
	})
}

// handleReload starts an explicit reload.
func (s *GameServer) handleReload(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[c.roomID]
	if !ok {
		return
	}
	player, ok := room.players[c.playerID]
	if !ok || player.IsDead() {
		return
	}
	s.startReload(player)
}

// startReload marks the player as reloading for the fixed duration. No-op
// when a reload is already running or the clip is full. Caller holds s.mu.
func (s *GameServer) startReload(player *PlayerState) {
	if player.Reloading || player.Ammo >= config.ClipSize {
		return
	}
	player.Reloading = true
	player.ReloadEndsAt = s.now().Add(config.ReloadDuration)
	s.sendMessage(player.Client, "reloading", ReloadingPayload{Reloading: true})
}

// finishReloads completes any reload whose deadline has passed. A player
// removed mid-reload simply disappears with their deadline; nothing to
// cancel. Caller holds s.mu.
func (s *GameServer) finishReloads(room *RoomState) {
	now := s.now()
	for _, player := range room.players {
		if !player.Reloading || now.Before(player.ReloadEndsAt) {
			continue
		}
		player.Ammo = config.ClipSize
		player.Reloading = false
		player.ReloadEndsAt = time.Time{}
		s.sendMessage(player.Client, "reloading", ReloadingPayload{Reloading: false})
	}
}
