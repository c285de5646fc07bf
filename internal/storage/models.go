package storage

import (
	"time"

	"gorm.io/gorm"
)

// PlayerProfile stores a player's village, army and ladder standing. The
// battle core reads it as an attacker/defender snapshot and writes back
// loot, trophy and shield deltas when a battle ends.
type PlayerProfile struct {
	gorm.Model
	PlayerUUID    string `json:"player_uuid" gorm:"uniqueIndex"`
	PlayerName    string `json:"player_name"`
	TownHallLevel int    `json:"town_hall_level"`

	Gold       int64 `json:"gold"`
	Elixir     int64 `json:"elixir"`
	DarkElixir int64 `json:"dark_elixir"`

	Trophies     int       `json:"trophies"`
	BestTrophies int       `json:"best_trophies"`
	ShieldUntil  time.Time `json:"shield_until"`

	// Research holds the names of completed research. Army and Spells map
	// deployable type -> count. All three are small and read whole, so they
	// are serialized JSON columns rather than join tables.
	Research []string       `json:"research" gorm:"serializer:json"`
	Army     map[string]int `json:"army" gorm:"serializer:json"`
	Spells   map[string]int `json:"spells" gorm:"serializer:json"`

	// TroopLevels and SpellLevels record the upgrade level per type.
	// Missing entries mean level 1.
	TroopLevels map[string]int `json:"troop_levels" gorm:"serializer:json"`
	SpellLevels map[string]int `json:"spell_levels" gorm:"serializer:json"`

	Buildings   []BuildingRecord  `json:"buildings" gorm:"foreignKey:ProfileID"`
	DefenseLog  []DefenseLogEntry `json:"defense_log" gorm:"foreignKey:ProfileID"`
	RevengeList []RevengeEntry    `json:"revenge_list" gorm:"foreignKey:ProfileID"`
}

func (PlayerProfile) TableName() string { return "player_profiles" }

// clone deep-copies the profile. Collapsed snapshot loads hand the result
// to independent callers, so no two of them may share mutable state.
func (p *PlayerProfile) clone() *PlayerProfile {
	cp := *p
	cp.Research = append([]string(nil), p.Research...)
	cp.Army = copyCounts(p.Army)
	cp.Spells = copyCounts(p.Spells)
	cp.TroopLevels = copyCounts(p.TroopLevels)
	cp.SpellLevels = copyCounts(p.SpellLevels)
	cp.Buildings = append([]BuildingRecord(nil), p.Buildings...)
	cp.DefenseLog = append([]DefenseLogEntry(nil), p.DefenseLog...)
	cp.RevengeList = append([]RevengeEntry(nil), p.RevengeList...)
	return &cp
}

func copyCounts(src map[string]int) map[string]int {
	if src == nil {
		return nil
	}
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// ResearchSet returns the completed research as a lookup set.
func (p *PlayerProfile) ResearchSet() map[string]bool {
	set := make(map[string]bool, len(p.Research))
	for _, r := range p.Research {
		set[r] = true
	}
	return set
}

// Shielded reports whether the profile is protected at the given instant.
func (p *PlayerProfile) Shielded(now time.Time) bool {
	return p.ShieldUntil.After(now)
}

// BuildingRecord is one placed building in a player's village layout.
type BuildingRecord struct {
	gorm.Model
	ProfileID    uint    `json:"-" gorm:"index"`
	BuildingType string  `json:"building_type"`
	Level        int     `json:"level"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
}

func (BuildingRecord) TableName() string { return "village_buildings" }

// DefenseLogEntry records one attack suffered by a defender. The log is
// bounded; the oldest entries are trimmed when the cap is exceeded.
type DefenseLogEntry struct {
	gorm.Model
	ProfileID    uint   `json:"-" gorm:"index"`
	AttackerUUID string `json:"attacker_uuid"`
	Destruction  int    `json:"destruction"`
	Stars        int    `json:"stars"`
	LootGold     int64  `json:"loot_gold"`
	LootElixir   int64  `json:"loot_elixir"`
	LootDark     int64  `json:"loot_dark"`
	WasRevenge   bool   `json:"was_revenge"`
}

func (DefenseLogEntry) TableName() string { return "defense_log" }

// RevengeEntry lets a defender strike back at a prior attacker, bypassing
// the attacker's shield until the entry expires or is used.
type RevengeEntry struct {
	gorm.Model
	ProfileID    uint      `json:"-" gorm:"index"`
	AttackerUUID string    `json:"attacker_uuid"`
	ExpiresAt    time.Time `json:"expires_at"`
	Used         bool      `json:"used"`
}

func (RevengeEntry) TableName() string { return "revenge_entries" }
