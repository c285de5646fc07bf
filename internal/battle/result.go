package battle

import "time"

// Result is the durable outcome of a finished battle, computed exactly once
// on the transition into the ended phase.
type Result struct {
	BattleID            string        `json:"battle_id"`
	AttackerID          string        `json:"attacker_id"`
	DefenderID          string        `json:"defender_id"`
	Destruction         int           `json:"destruction"`
	Stars               int           `json:"stars"`
	TownHallDestroyed   bool          `json:"town_hall_destroyed"`
	IsConquest          bool          `json:"is_conquest"`
	IsRevenge           bool          `json:"is_revenge"`
	Loot                Resources     `json:"loot"`
	AttackerTrophyDelta int           `json:"attacker_trophy_delta"`
	DefenderTrophyDelta int           `json:"defender_trophy_delta"`
	AttackerTrophies    int           `json:"attacker_trophies"`
	DefenderTrophies    int           `json:"defender_trophies"`
	ShieldGranted       time.Duration `json:"shield_granted"`

	TroopsLost map[string]int `json:"troops_lost"`
}
