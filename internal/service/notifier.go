package service

import "github.com/ravenfort/siegecraft/internal/battle"

// Notifier receives battle events for delivery to visualization and
// networking layers. Implementations must not retain or mutate the
// aggregates they receive; the manager hands them defensive copies.
type Notifier interface {
	BattleStarted(b *battle.Battle)
	TroopDeployed(battleID string, t battle.Troop)
	SpellDeployed(battleID string, s battle.SpellCast)
	TickProcessed(b *battle.Battle)
	BattleEnded(b *battle.Battle, res *battle.Result)
}

// NopNotifier discards every event. Used by tests and headless runs.
type NopNotifier struct{}

func (NopNotifier) BattleStarted(*battle.Battle)               {}
func (NopNotifier) TroopDeployed(string, battle.Troop)         {}
func (NopNotifier) SpellDeployed(string, battle.SpellCast)     {}
func (NopNotifier) TickProcessed(*battle.Battle)               {}
func (NopNotifier) BattleEnded(*battle.Battle, *battle.Result) {}
