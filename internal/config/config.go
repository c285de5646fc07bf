package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ravenfort/siegecraft/internal/battle"
)

// TroopLevel holds the per-level stats of a troop type.
type TroopLevel struct {
	HitPoints            float64 `json:"hit_points"`
	DPS                  float64 `json:"dps"`
	MoveSpeed            float64 `json:"move_speed"`
	AttackRange          float64 `json:"attack_range"`
	SplashRadius         float64 `json:"splash_radius"`
	WallDamageMultiplier float64 `json:"wall_damage_multiplier"`
}

// TroopDef describes one troop type and its level table.
type TroopDef struct {
	Name       string                  `json:"name"`
	Preference battle.TargetPreference `json:"preferred_target"`
	Domain     battle.TargetDomain     `json:"domain"`
	Levels     []TroopLevel            `json:"levels"`
}

// Level returns the stats for a 1-based level, or nil when unknown.
func (d *TroopDef) Level(lvl int) *TroopLevel {
	if d == nil || lvl < 1 || lvl > len(d.Levels) {
		return nil
	}
	return &d.Levels[lvl-1]
}

// Spell parameter structs, one per kind. Exactly one is set on each spell
// level; the non-nil pointer tags the kind.

type LightningParams struct {
	TotalDamage float64 `json:"total_damage"`
	Strikes     int     `json:"strikes"`
}

type EarthquakeParams struct {
	DamagePercent  float64 `json:"damage_percent"`
	WallMultiplier float64 `json:"wall_multiplier"`
}

type HealParams struct {
	HealPerSecond float64 `json:"heal_per_second"`
	Duration      float64 `json:"duration_seconds"`
}

type RageParams struct {
	DamageBoost float64 `json:"damage_boost"`
	SpeedBoost  float64 `json:"speed_boost"`
	Duration    float64 `json:"duration_seconds"`
}

type FreezeParams struct {
	Duration float64 `json:"duration_seconds"`
}

type JumpParams struct {
	Duration float64 `json:"duration_seconds"`
}

// SpellLevel carries the radius plus the kind-specific parameters for one
// spell level.
type SpellLevel struct {
	Radius     float64           `json:"radius"`
	Lightning  *LightningParams  `json:"lightning,omitempty"`
	Earthquake *EarthquakeParams `json:"earthquake,omitempty"`
	Heal       *HealParams       `json:"heal,omitempty"`
	Rage       *RageParams       `json:"rage,omitempty"`
	Freeze     *FreezeParams     `json:"freeze,omitempty"`
	Jump       *JumpParams       `json:"jump,omitempty"`
}

// Instant reports whether the level describes an apply-once spell.
func (l *SpellLevel) Instant() bool {
	return l.Lightning != nil || l.Earthquake != nil
}

// DurationSeconds returns the effect duration for duration spells, 0 for
// instant ones.
func (l *SpellLevel) DurationSeconds() float64 {
	switch {
	case l.Heal != nil:
		return l.Heal.Duration
	case l.Rage != nil:
		return l.Rage.Duration
	case l.Freeze != nil:
		return l.Freeze.Duration
	case l.Jump != nil:
		return l.Jump.Duration
	}
	return 0
}

// Duration returns the effect duration as a time.Duration.
func (l *SpellLevel) Duration() time.Duration {
	return time.Duration(l.DurationSeconds() * float64(time.Second))
}

// SpellDef describes one spell type and its level table.
type SpellDef struct {
	Name   string       `json:"name"`
	Levels []SpellLevel `json:"levels"`
}

// Level returns the stats for a 1-based level, or nil when unknown.
func (d *SpellDef) Level(lvl int) *SpellLevel {
	if d == nil || lvl < 1 || lvl > len(d.Levels) {
		return nil
	}
	return &d.Levels[lvl-1]
}

// BuildingLevel holds the per-level stats of a building type. A zero Damage
// means the building never retaliates.
type BuildingLevel struct {
	HitPoints    float64 `json:"hit_points"`
	Damage       float64 `json:"damage"`
	AttackSpeed  float64 `json:"attack_speed"`
	AttackRange  float64 `json:"attack_range"`
	SplashRadius float64 `json:"splash_radius"`
}

// BuildingDef describes one building type.
type BuildingDef struct {
	Name             string                  `json:"name"`
	Category         battle.BuildingCategory `json:"category"`
	Targets          battle.TargetDomain     `json:"targets,omitempty"`
	RequiredResearch string                  `json:"required_research,omitempty"`
	Downgradable     bool                    `json:"downgradable,omitempty"`
	Levels           []BuildingLevel         `json:"levels"`
}

// Level returns the stats for a 1-based level, or nil when unknown.
func (d *BuildingDef) Level(lvl int) *BuildingLevel {
	if d == nil || lvl < 1 || lvl > len(d.Levels) {
		return nil
	}
	return &d.Levels[lvl-1]
}

// ResearchPerk describes what a completed research grants the defender.
type ResearchPerk struct {
	DamageMultiplier float64 `json:"damage_multiplier,omitempty"`
	RangeMultiplier  float64 `json:"range_multiplier,omitempty"`
	WallHPBonus      float64 `json:"wall_hp_bonus,omitempty"`
}

// StarThreshold maps a minimum destruction percentage to a star count.
type StarThreshold struct {
	Destruction int `json:"destruction"`
	Stars       int `json:"stars"`
}

// CombatConfig carries the arena and outcome tuning knobs.
type CombatConfig struct {
	GridSize     int `json:"grid_size"`
	DeployBorder int `json:"deploy_border"`

	ScoutSeconds  int `json:"scout_seconds"`
	BattleSeconds int `json:"battle_seconds"`
	TickMillis    int `json:"tick_millis"`

	AttackIntervalSeconds float64 `json:"attack_interval_seconds"`
	SplashFactor          float64 `json:"splash_factor"`

	StarThresholds    []StarThreshold `json:"star_thresholds"`
	LootPercentByStar []float64       `json:"loot_percent_by_star"`
	TownHallLootBonus float64         `json:"town_hall_loot_bonus"`
	RevengeLootBonus  float64         `json:"revenge_loot_bonus"`

	LootStealPercent float64 `json:"loot_steal_percent"`
	LootCap          int64   `json:"loot_cap"`

	TrophyBase    float64 `json:"trophy_base"`
	TrophyWin     int     `json:"trophy_win"`
	TrophyLoss    int     `json:"trophy_loss"`
	ShieldHours   []int   `json:"shield_hours_by_star"`
	DefenseLogMax int     `json:"defense_log_max"`
	RevengeHours  int     `json:"revenge_hours"`

	ResultRetentionSeconds int `json:"result_retention_seconds"`
	OrphanGraceSeconds     int `json:"orphan_grace_seconds"`
	SweepSeconds           int `json:"sweep_seconds"`
}

// TickDuration returns the scheduler period.
func (c *CombatConfig) TickDuration() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

// SeedBuilding places one building in a seeded demo layout.
type SeedBuilding struct {
	Type  string  `json:"type"`
	Level int     `json:"level"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// SeedProfile describes a player profile seeded into an empty database.
type SeedProfile struct {
	PlayerUUID    string         `json:"player_uuid"`
	PlayerName    string         `json:"player_name"`
	TownHallLevel int            `json:"town_hall_level"`
	Gold          int64          `json:"gold"`
	Elixir        int64          `json:"elixir"`
	DarkElixir    int64          `json:"dark_elixir"`
	Trophies      int            `json:"trophies"`
	Research      []string       `json:"research"`
	Army          map[string]int `json:"army"`
	Spells        map[string]int `json:"spells"`
	TroopLevels   map[string]int `json:"troop_levels"`
	SpellLevels   map[string]int `json:"spell_levels"`
	Buildings     []SeedBuilding `json:"buildings"`
}

type rawConfig struct {
	Troops    []TroopDef              `json:"troop_list"`
	Spells    []SpellDef              `json:"spell_list"`
	Buildings []BuildingDef           `json:"building_list"`
	Research  map[string]ResearchPerk `json:"research_perks"`
	Combat    CombatConfig            `json:"combat"`
	Profiles  []SeedProfile           `json:"seed_profiles"`
	Server    *struct {
		Address string `json:"address"`
	} `json:"server"`
}

// Balance is the loaded, validated balance table set plus server settings.
// Type-name lookups are case-insensitive.
type Balance struct {
	ServerAddress string

	troops    map[string]*TroopDef
	spells    map[string]*SpellDef
	buildings map[string]*BuildingDef

	ResearchPerks map[string]ResearchPerk
	Combat        CombatConfig
	Profiles      []SeedProfile
}

// Troop returns the troop definition for a type name, or nil.
func (b *Balance) Troop(name string) *TroopDef { return b.troops[strings.ToLower(name)] }

// Spell returns the spell definition for a type name, or nil.
func (b *Balance) Spell(name string) *SpellDef { return b.spells[strings.ToLower(name)] }

// Building returns the building definition for a type name, or nil.
func (b *Balance) Building(name string) *BuildingDef { return b.buildings[strings.ToLower(name)] }

// WallHPMultiplier folds the wall HP bonuses of every completed research
// into a single multiplier.
func (b *Balance) WallHPMultiplier(research map[string]bool) float64 {
	m := 1.0
	for name, done := range research {
		if !done {
			continue
		}
		if perk, ok := b.ResearchPerks[name]; ok && perk.WallHPBonus > 0 {
			m *= 1 + perk.WallHPBonus
		}
	}
	return m
}

// DefensePerks folds the damage and range bonuses of every completed
// research into a pair of multipliers for defense buildings.
func (b *Balance) DefensePerks(research map[string]bool) (damage, rng float64) {
	damage, rng = 1.0, 1.0
	for name, done := range research {
		if !done {
			continue
		}
		perk, ok := b.ResearchPerks[name]
		if !ok {
			continue
		}
		if perk.DamageMultiplier > 0 {
			damage *= perk.DamageMultiplier
		}
		if perk.RangeMultiplier > 0 {
			rng *= perk.RangeMultiplier
		}
	}
	return damage, rng
}

// LoadBalance reads and validates the balance configuration at path.
func LoadBalance(path string) (*Balance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return buildBalance(path, &rc)
}

// NewBalance assembles a Balance from already-parsed definitions, applying
// the same validation and defaults as LoadBalance.
func NewBalance(troops []TroopDef, spells []SpellDef, buildings []BuildingDef, perks map[string]ResearchPerk, combat CombatConfig) (*Balance, error) {
	rc := &rawConfig{Troops: troops, Spells: spells, Buildings: buildings, Research: perks, Combat: combat}
	return buildBalance("(inline)", rc)
}

func buildBalance(path string, rc *rawConfig) (*Balance, error) {
	if len(rc.Troops) == 0 {
		return nil, fmt.Errorf("config file %s: troop_list is empty", path)
	}
	if len(rc.Buildings) == 0 {
		return nil, fmt.Errorf("config file %s: building_list is empty", path)
	}

	b := &Balance{
		troops:        make(map[string]*TroopDef, len(rc.Troops)),
		spells:        make(map[string]*SpellDef, len(rc.Spells)),
		buildings:     make(map[string]*BuildingDef, len(rc.Buildings)),
		ResearchPerks: rc.Research,
		Combat:        rc.Combat,
		Profiles:      rc.Profiles,
	}
	if b.ResearchPerks == nil {
		b.ResearchPerks = map[string]ResearchPerk{}
	}

	for i := range rc.Troops {
		t := &rc.Troops[i]
		if t.Name == "" {
			return nil, fmt.Errorf("config file %s: troop entry missing 'name'", path)
		}
		if len(t.Levels) == 0 {
			return nil, fmt.Errorf("config file %s: troop '%s' has no levels", path, t.Name)
		}
		if t.Preference == "" {
			t.Preference = battle.PreferAny
		}
		if t.Domain == "" {
			t.Domain = battle.DomainGround
		}
		key := strings.ToLower(t.Name)
		if _, dup := b.troops[key]; dup {
			return nil, fmt.Errorf("config file %s: duplicate troop '%s'", path, t.Name)
		}
		b.troops[key] = t
	}

	for i := range rc.Spells {
		s := &rc.Spells[i]
		if s.Name == "" {
			return nil, fmt.Errorf("config file %s: spell entry missing 'name'", path)
		}
		for li := range s.Levels {
			lvl := &s.Levels[li]
			n := 0
			for _, set := range []bool{
				lvl.Lightning != nil, lvl.Earthquake != nil, lvl.Heal != nil,
				lvl.Rage != nil, lvl.Freeze != nil, lvl.Jump != nil,
			} {
				if set {
					n++
				}
			}
			if n != 1 {
				return nil, fmt.Errorf("config file %s: spell '%s' level %d must set exactly one effect", path, s.Name, li+1)
			}
			if !lvl.Instant() && lvl.DurationSeconds() <= 0 {
				return nil, fmt.Errorf("config file %s: spell '%s' level %d needs a positive duration", path, s.Name, li+1)
			}
		}
		key := strings.ToLower(s.Name)
		if _, dup := b.spells[key]; dup {
			return nil, fmt.Errorf("config file %s: duplicate spell '%s'", path, s.Name)
		}
		b.spells[key] = s
	}

	for i := range rc.Buildings {
		bd := &rc.Buildings[i]
		if bd.Name == "" {
			return nil, fmt.Errorf("config file %s: building entry missing 'name'", path)
		}
		if len(bd.Levels) == 0 {
			return nil, fmt.Errorf("config file %s: building '%s' has no levels", path, bd.Name)
		}
		if bd.Category == "" {
			bd.Category = battle.CategoryOther
		}
		key := strings.ToLower(bd.Name)
		if _, dup := b.buildings[key]; dup {
			return nil, fmt.Errorf("config file %s: duplicate building '%s'", path, bd.Name)
		}
		b.buildings[key] = bd
	}

	applyCombatDefaults(&b.Combat)

	b.ServerAddress = ":8080"
	if rc.Server != nil && rc.Server.Address != "" {
		b.ServerAddress = rc.Server.Address
	}
	return b, nil
}

func applyCombatDefaults(c *CombatConfig) {
	if c.GridSize == 0 {
		c.GridSize = 40
	}
	if c.DeployBorder == 0 {
		c.DeployBorder = 2
	}
	if c.ScoutSeconds == 0 {
		c.ScoutSeconds = 30
	}
	if c.BattleSeconds == 0 {
		c.BattleSeconds = 180
	}
	if c.TickMillis == 0 {
		c.TickMillis = 100
	}
	if c.AttackIntervalSeconds == 0 {
		c.AttackIntervalSeconds = 1
	}
	if c.SplashFactor == 0 {
		c.SplashFactor = 0.5
	}
	if len(c.StarThresholds) == 0 {
		c.StarThresholds = []StarThreshold{
			{Destruction: 50, Stars: 1},
			{Destruction: 75, Stars: 2},
			{Destruction: 100, Stars: 3},
		}
	}
	if len(c.LootPercentByStar) == 0 {
		c.LootPercentByStar = []float64{0, 0.5, 0.75, 1.0}
	}
	if c.TownHallLootBonus == 0 {
		c.TownHallLootBonus = 0.2
	}
	if c.RevengeLootBonus == 0 {
		c.RevengeLootBonus = 0.25
	}
	if c.LootStealPercent == 0 {
		c.LootStealPercent = 0.2
	}
	if c.LootCap == 0 {
		c.LootCap = 500000
	}
	if c.TrophyBase == 0 {
		c.TrophyBase = 1.1
	}
	if c.TrophyWin == 0 {
		c.TrophyWin = 30
	}
	if c.TrophyLoss == 0 {
		c.TrophyLoss = 20
	}
	if len(c.ShieldHours) == 0 {
		c.ShieldHours = []int{0, 8, 12, 16}
	}
	if c.DefenseLogMax == 0 {
		c.DefenseLogMax = 50
	}
	if c.RevengeHours == 0 {
		c.RevengeHours = 72
	}
	if c.ResultRetentionSeconds == 0 {
		c.ResultRetentionSeconds = 300
	}
	if c.OrphanGraceSeconds == 0 {
		c.OrphanGraceSeconds = 60
	}
	if c.SweepSeconds == 0 {
		c.SweepSeconds = 5
	}
}
