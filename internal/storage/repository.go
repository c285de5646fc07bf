package storage

import (
	"github.com/ravenfort/siegecraft/internal/battle"
)

// Repository is the player/profile store consumed by the battle core. The
// simulation itself is never persisted; only profiles and their deltas are.
type Repository interface {
	GetProfileByUUID(uuid string) (*PlayerProfile, error)
	SaveProfile(p *PlayerProfile) error

	// ConsumeTroop and ConsumeSpell decrement one unit from the player's
	// persistent inventory, failing without mutation when none are left.
	ConsumeTroop(uuid, troopType string) error
	ConsumeSpell(uuid, spellType string) error

	// ApplyBattleOutcome persists the side effects of a finished battle:
	// loot transfer, trophy updates, shield grant, defense-log append and
	// revenge entry. Called exactly once per battle.
	ApplyBattleOutcome(res *battle.Result) error

	GetTopPlayers(limit int) ([]PlayerProfile, error)
}
