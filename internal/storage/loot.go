package storage

import (
	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/config"
)

// LootAvailable computes how much of a defender's stored resources an
// attacker can raid: a configured percentage of each resource, capped.
func LootAvailable(p *PlayerProfile, cfg *config.CombatConfig) battle.Resources {
	return battle.Resources{
		Gold:       capLoot(int64(float64(p.Gold)*cfg.LootStealPercent), cfg.LootCap),
		Elixir:     capLoot(int64(float64(p.Elixir)*cfg.LootStealPercent), cfg.LootCap),
		DarkElixir: capLoot(int64(float64(p.DarkElixir)*cfg.LootStealPercent), cfg.LootCap),
	}
}

func capLoot(v, max int64) int64 {
	if v > max {
		return max
	}
	return v
}
