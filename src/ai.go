package game

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"gridfire-server/config"
)

// updateBots runs the per-tick AI decision procedure for every bot in the
// room. Dead bots only roll their respawn check. Caller holds s.mu.
func (s *GameServer) updateBots(room *RoomState) {
	for _, bot := range room.bots {
		if bot.IsDead() {
			if rand.Float64() < config.BotRespawnChance {
				s.respawnBot(room, bot)
			}
			continue
		}

		bot.DecisionTimer--
		if bot.DecisionTimer <= 0 {
			bot.TargetAngle = rand.Float64() * 2 * math.Pi
			bot.DecisionTimer = randTicks(config.BotDecisionMinTicks, config.BotDecisionMaxTicks)
		}

		// Ease the heading toward the target instead of snapping, so the
		// bot turns smoothly over several ticks.
		bot.Angle += angleDelta(bot.TargetAngle, bot.Angle) * config.BotTurnFactor

		nx := bot.Pos.X + math.Cos(bot.Angle)*config.BotSpeed
		ny := bot.Pos.Y + math.Sin(bot.Angle)*config.BotSpeed
		if room.world.IsBlocked(nx, ny) {
			// Reverse the target heading; the easing above walks the bot
			// away from the obstacle over the next ticks.
			bot.TargetAngle += math.Pi
		} else {
			bot.Pos.X, bot.Pos.Y = nx, ny
		}

		bot.FireTimer--
		if bot.FireTimer <= 0 {
			s.botFire(room, bot)
			bot.FireTimer = randTicks(config.BotFireMinTicks, config.BotFireMaxTicks)
		}
	}
}

// botFire spawns a bullet with a small angular jitter so bots are not
// perfectly accurate.
func (s *GameServer) botFire(room *RoomState, bot *BotState) {
	jitter := (rand.Float64()*2 - 1) * config.BotFireJitter
	room.bullets = append(room.bullets, &Bullet{
		ID:      uuid.New().String(),
		OwnerID: bot.ID,
		Pos:     bot.Pos,
		Angle:   bot.Angle + jitter,
		Speed:   config.BulletSpeed,
		Damage:  config.BulletDamage,
		Life:    config.BulletLife,
	})
}

// respawnBot resets a dead bot in place: full health, a fresh random
// position, and fresh timers.
func (s *GameServer) respawnBot(room *RoomState, bot *BotState) {
	bot.HP = bot.MaxHP
	bot.Pos = room.world.RandomSpawn()
	bot.Angle = rand.Float64() * 2 * math.Pi
	bot.TargetAngle = bot.Angle
	bot.DecisionTimer = randTicks(config.BotDecisionMinTicks, config.BotDecisionMaxTicks)
	bot.FireTimer = randTicks(config.BotFireMinTicks, config.BotFireMaxTicks)
}

// randTicks returns a uniform tick count in [min, max].
func randTicks(min, max int) int {
	return min + rand.Intn(max-min+1)
}

// angleDelta returns the shortest signed rotation from current to target,
// normalized to [-pi, pi].
func angleDelta(target, current float64) float64 {
	d := math.Mod(target-current, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
