package game

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"gridfire-server/config"
)

// hitTarget is one live entity eligible for bullet hits this pass.
// Exactly one of player/bot is set.
type hitTarget struct {
	id     string
	player *PlayerState
	bot    *BotState
}

func (t *hitTarget) pos() Point {
	if t.player != nil {
		return t.player.Pos
	}
	return t.bot.Pos
}

func (t *hitTarget) dead() bool {
	if t.player != nil {
		return t.player.IsDead()
	}
	return t.bot.IsDead()
}

// collectTargets gathers the living entities of a room, sorted by id so the
// tie-break among multiple in-radius candidates is deterministic.
func collectTargets(room *RoomState) []*hitTarget {
	targets := make([]*hitTarget, 0, len(room.players)+len(room.bots))
	for id, player := range room.players {
		if player.IsDead() {
			continue
		}
		targets = append(targets, &hitTarget{id: id, player: player})
	}
	for id, bot := range room.bots {
		if bot.IsDead() {
			continue
		}
		targets = append(targets, &hitTarget{id: id, bot: bot})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })
	return targets
}

// advanceBullets resolves every bullet in the room: move, then lifetime
// check, then wall/bounds check, then the damage check. Expiry and wall
// impact take precedence over damage. The slice is compacted in place so
// removals never skip the next element.
func (s *GameServer) advanceBullets(room *RoomState) {
	targets := collectTargets(room)

	n := 0
	for _, b := range room.bullets {
		b.Pos.X += math.Cos(b.Angle) * b.Speed
		b.Pos.Y += math.Sin(b.Angle) * b.Speed
		b.Life--

		if b.Life <= 0 {
			continue
		}
		if room.world.IsBlocked(b.Pos.X, b.Pos.Y) {
			continue
		}
		if s.resolveHit(room, b, targets) {
			continue
		}
		room.bullets[n] = b
		n++
	}
	room.bullets = room.bullets[:n]
}

// resolveHit damages the first in-radius target that is not the bullet's
// owner, in sorted-id order. At most one entity is struck per bullet.
func (s *GameServer) resolveHit(room *RoomState, b *Bullet, targets []*hitTarget) bool {
	for _, t := range targets {
		if t.id == b.OwnerID || t.dead() {
			continue
		}
		p := t.pos()
		dx := p.X - b.Pos.X
		dy := p.Y - b.Pos.Y
		if dx*dx+dy*dy > config.HitRadius*config.HitRadius {
			continue
		}
		if t.player != nil {
			s.damagePlayer(room, t.player, b)
		} else {
			s.damageBot(room, t.bot, b)
		}
		return true
	}
	return false
}

func (s *GameServer) damagePlayer(room *RoomState, victim *PlayerState, b *Bullet) {
	victim.HP -= b.Damage
	if victim.HP > 0 {
		return
	}
	victim.HP = 0
	victim.Deaths++
	victim.RespawnAt = s.now().Add(config.RespawnDelay)
	victim.Reloading = false
	victim.ReloadEndsAt = time.Time{}

	killer := s.creditKill(room, b.OwnerID)
	go s.persistDeath(victim.Username)

	s.sendMessage(victim.Client, "died", DiedPayload{Killer: killer})
	s.broadcastToRoom(room, "killfeed", KillfeedPayload{Killer: killer, Victim: victim.Username})
	killsTotal.Inc()
}

func (s *GameServer) damageBot(room *RoomState, victim *BotState, b *Bullet) {
	victim.HP -= b.Damage
	if victim.HP > 0 {
		return
	}
	victim.HP = 0
	victim.Deaths++

	killer := s.creditKill(room, b.OwnerID)
	s.broadcastToRoom(room, "killfeed", KillfeedPayload{Killer: killer, Victim: victim.Username})
	killsTotal.Inc()
}

// creditKill resolves the bullet's owner to a player or bot record,
// increments its kill counter, and returns its display name. Human kills
// are persisted fire-and-forget; the tick never waits for the store.
func (s *GameServer) creditKill(room *RoomState, ownerID string) string {
	if player, ok := room.players[ownerID]; ok {
		player.Kills++
		go s.persistKill(player.Username)
		return player.Username
	}
	if bot, ok := room.bots[ownerID]; ok {
		bot.Kills++
		return bot.Username
	}
	// Owner disconnected between firing and impact.
	return "unknown"
}

func (s *GameServer) persistKill(username string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.IncrementKills(ctx, username); err != nil {
		log.Printf("Kill count persist for %s failed: %v", username, err)
	}
}

func (s *GameServer) persistDeath(username string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.IncrementDeaths(ctx, username); err != nil {
		log.Printf("Death count persist for %s failed: %v", username, err)
	}
}

// handleRespawns revives players whose respawn deadline has passed: health
// back to maximum, relocated to an open cell, clip refilled. A disconnected
// player's deadline vanished with the entity, so there is nothing to guard.
// Caller holds s.mu.
func (s *GameServer) handleRespawns(room *RoomState) {
	now := s.now()
	for _, player := range room.players {
		if player.RespawnAt.IsZero() || now.Before(player.RespawnAt) {
			continue
		}
		player.HP = player.MaxHP
		player.Pos = room.world.RandomSpawn()
		player.Ammo = config.ClipSize
		player.Reloading = false
		player.RespawnAt = time.Time{}
	}
}
