package engine

import (
	"math"
	"time"

	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/config"
)

// PartySnapshot is the slice of a player profile the outcome calculation
// needs: the rest of the profile stays behind the storage layer.
type PartySnapshot struct {
	TownHallLevel int
	Trophies      int
}

// ComputeOutcome converts the final destruction state into stars, loot,
// trophy deltas and the shield grant. It is pure; the session manager
// persists its side effects exactly once.
func ComputeOutcome(b *battle.Battle, attacker, defender PartySnapshot, cfg *config.CombatConfig) *battle.Result {
	refreshDestruction(b)

	stars := starsFor(b, cfg)
	b.StarsEarned = stars

	loot := b.LootAvailable.Scale(lootPercent(cfg, stars))
	if b.TownHallDestroyed {
		loot = loot.Scale(1 + cfg.TownHallLootBonus)
	}
	if b.IsRevenge {
		loot = loot.Scale(1 + cfg.RevengeLootBonus)
	}
	b.LootClaimed = loot

	atkDelta, defDelta := trophyDeltas(cfg, attacker, defender, stars > 0)

	lost := make(map[string]int)
	for _, t := range b.Troops {
		if t.State == battle.TroopDead {
			lost[t.Type]++
		}
	}

	return &battle.Result{
		BattleID:            b.ID,
		AttackerID:          b.AttackerID,
		DefenderID:          b.DefenderID,
		Destruction:         b.Destruction,
		Stars:               stars,
		TownHallDestroyed:   b.TownHallDestroyed,
		IsConquest:          b.Destruction >= 100,
		IsRevenge:           b.IsRevenge,
		Loot:                loot,
		AttackerTrophyDelta: atkDelta,
		DefenderTrophyDelta: defDelta,
		AttackerTrophies:    clampTotal(attacker.Trophies + atkDelta),
		DefenderTrophies:    clampTotal(defender.Trophies + defDelta),
		ShieldGranted:       shieldFor(cfg, stars),
		TroopsLost:          lost,
	}
}

// starsFor picks the highest satisfied destruction threshold, with a floor
// of one star when the town hall fell.
func starsFor(b *battle.Battle, cfg *config.CombatConfig) int {
	stars := 0
	for _, th := range cfg.StarThresholds {
		if b.Destruction >= th.Destruction && th.Stars > stars {
			stars = th.Stars
		}
	}
	if b.TownHallDestroyed && stars < 1 {
		stars = 1
	}
	return stars
}

func lootPercent(cfg *config.CombatConfig, stars int) float64 {
	if stars < 0 {
		return 0
	}
	if stars >= len(cfg.LootPercentByStar) {
		stars = len(cfg.LootPercentByStar) - 1
	}
	return cfg.LootPercentByStar[stars]
}

// trophyDeltas applies the town-hall-difference multiplier asymmetrically:
// attacking upward scales both the winner's gain and the loser's loss up,
// attacking downward scales them down (base^delta with a negative delta).
func trophyDeltas(cfg *config.CombatConfig, attacker, defender PartySnapshot, attackerWon bool) (atk, def int) {
	delta := defender.TownHallLevel - attacker.TownHallLevel
	mult := math.Pow(cfg.TrophyBase, float64(delta))

	if attackerWon {
		atk = int(math.Round(float64(cfg.TrophyWin) * mult))
		def = -int(math.Round(float64(cfg.TrophyLoss) * mult))
		return atk, def
	}
	inv := 1 / mult
	atk = -int(math.Round(float64(cfg.TrophyLoss) * inv))
	def = int(math.Round(float64(cfg.TrophyWin) * inv))
	return atk, def
}

func clampTotal(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func shieldFor(cfg *config.CombatConfig, stars int) time.Duration {
	if stars < 0 || len(cfg.ShieldHours) == 0 {
		return 0
	}
	if stars >= len(cfg.ShieldHours) {
		stars = len(cfg.ShieldHours) - 1
	}
	return time.Duration(cfg.ShieldHours[stars]) * time.Hour
}
