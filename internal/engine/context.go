package engine

import (
	"time"

	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/config"
)

// rageBuff is the per-troop buff computed for one tick. When several rage
// effects overlap a troop, the one with the strongest damage boost wins.
type rageBuff struct {
	damage float64
	speed  float64
}

// tickContext carries the per-tick working state: the battle aggregate, the
// balance tables and the buff/flag sets recomputed from scratch every tick.
type tickContext struct {
	b      *battle.Battle
	tables *config.Balance
	now    time.Time
	dt     float64

	rage   map[string]rageBuff // troop ID -> strongest rage buff
	frozen map[string]bool     // building ID -> skip defense AI this tick
	jump   map[string]bool     // troop ID -> treat walls as non-candidates
}

func newTickContext(b *battle.Battle, tables *config.Balance, now time.Time) *tickContext {
	return &tickContext{
		b:      b,
		tables: tables,
		now:    now,
		dt:     tables.Combat.TickDuration().Seconds(),
		rage:   make(map[string]rageBuff),
		frozen: make(map[string]bool),
		jump:   make(map[string]bool),
	}
}

func (tc *tickContext) rageFor(troopID string) (damage, speed float64) {
	if buff, ok := tc.rage[troopID]; ok {
		return buff.damage, buff.speed
	}
	return 1, 1
}
