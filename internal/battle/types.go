package battle

import (
	"math"
	"time"
)

// Phase describes where a battle is in its lifecycle. Phases only advance
// (scout -> deploy -> battle -> ended), never regress.
type Phase string

const (
	PhaseScout  Phase = "scout"
	PhaseDeploy Phase = "deploy"
	PhaseBattle Phase = "battle"
	PhaseEnded  Phase = "ended"
)

// TroopState is the per-tick state of a deployed troop. Dead troops stay in
// the battle's troop list for result accounting.
type TroopState string

const (
	TroopMoving    TroopState = "moving"
	TroopAttacking TroopState = "attacking"
	TroopDead      TroopState = "dead"
)

// BuildingCategory groups building types for troop target preferences.
type BuildingCategory string

const (
	CategoryDefense  BuildingCategory = "defense"
	CategoryResource BuildingCategory = "resource"
	CategoryWall     BuildingCategory = "wall"
	CategoryOther    BuildingCategory = "other"
)

// TargetPreference is a troop's preferred building category.
type TargetPreference string

const (
	PreferAny       TargetPreference = "any"
	PreferDefenses  TargetPreference = "defenses"
	PreferResources TargetPreference = "resources"
	PreferWalls     TargetPreference = "walls"
)

// TargetDomain describes whether an entity lives on (or can hit) the ground,
// the air, or both. Troops occupy exactly one domain; defense buildings
// declare which domains they can shoot at.
type TargetDomain string

const (
	DomainGround TargetDomain = "ground"
	DomainAir    TargetDomain = "air"
	DomainBoth   TargetDomain = "both"
)

// CanHit reports whether a building shooting at domain d can hit a troop
// living in domain t.
func (d TargetDomain) CanHit(t TargetDomain) bool {
	return d == DomainBoth || d == t
}

// BuildingTownHall is the building type whose destruction forces at least
// one star.
const BuildingTownHall = "TownHall"

// Vec is a 2D position on the arena grid.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between two positions.
func (v Vec) Dist(o Vec) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// StepToward returns the position reached by moving at most step units from
// v toward o along the straight line between them.
func (v Vec) StepToward(o Vec, step float64) Vec {
	d := v.Dist(o)
	if d <= step || d == 0 {
		return o
	}
	f := step / d
	return Vec{X: v.X + (o.X-v.X)*f, Y: v.Y + (o.Y-v.Y)*f}
}

// Resources is the gold/elixir/dark-elixir triplet used for loot accounting.
type Resources struct {
	Gold       int64 `json:"gold"`
	Elixir     int64 `json:"elixir"`
	DarkElixir int64 `json:"dark_elixir"`
}

// Scale multiplies every component by f and floors the result.
func (r Resources) Scale(f float64) Resources {
	return Resources{
		Gold:       int64(math.Floor(float64(r.Gold) * f)),
		Elixir:     int64(math.Floor(float64(r.Elixir) * f)),
		DarkElixir: int64(math.Floor(float64(r.DarkElixir) * f)),
	}
}

// Add returns the component-wise sum.
func (r Resources) Add(o Resources) Resources {
	return Resources{Gold: r.Gold + o.Gold, Elixir: r.Elixir + o.Elixir, DarkElixir: r.DarkElixir + o.DarkElixir}
}

// IsZero reports whether all components are zero.
func (r Resources) IsZero() bool {
	return r.Gold == 0 && r.Elixir == 0 && r.DarkElixir == 0
}

// Troop is one deployed attacking unit. Created on deploy and mutated by the
// engine every tick; never removed from the battle.
type Troop struct {
	ID           string       `json:"id"`
	Type         string       `json:"type"`
	Level        int          `json:"level"`
	Position     Vec          `json:"position"`
	State        TroopState   `json:"state"`
	CurrentHP    float64      `json:"current_hp"`
	MaxHP        float64      `json:"max_hp"`
	Domain       TargetDomain `json:"domain"`
	TargetID     string       `json:"target_id,omitempty"`
	DeployedAt   time.Time    `json:"deployed_at"`
	LastAttackAt time.Time    `json:"last_attack_at"`
}

// Alive reports whether the troop can still act.
func (t *Troop) Alive() bool { return t.State != TroopDead }

// BuildingTarget is one building of the defender's layout, built once from
// the defender snapshot at battle start and mutated only by damage.
type BuildingTarget struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	Level         int              `json:"level"`
	Position      Vec              `json:"position"`
	CurrentHP     float64          `json:"current_hp"`
	MaxHP         float64          `json:"max_hp"`
	IsDestroyed   bool             `json:"is_destroyed"`
	Category      BuildingCategory `json:"category"`
	WasDowngraded bool             `json:"was_downgraded,omitempty"`
	LastAttackAt  time.Time        `json:"last_attack_at"`
}

// SpellCast records one spell deployment in order, instant or not.
type SpellCast struct {
	Type     string    `json:"type"`
	Level    int       `json:"level"`
	Position Vec       `json:"position"`
	CastAt   time.Time `json:"cast_at"`
}

// ActiveSpellEffect is a duration spell currently affecting the arena.
// Removed once now >= StartTime + Duration.
type ActiveSpellEffect struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Level     int           `json:"level"`
	Position  Vec           `json:"position"`
	Radius    float64       `json:"radius"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// ExpiredAt reports whether the effect has run out at the given instant.
func (e *ActiveSpellEffect) ExpiredAt(now time.Time) bool {
	return !now.Before(e.StartTime.Add(e.Duration))
}

// Battle is the aggregate for one attack. It is owned by the session manager
// for its lifetime and mutated only inside tick processing or deploy/end
// calls. Troops, buildings, active effects and the defender research
// snapshot are first-class fields so the engine never needs side-channel
// lookups.
type Battle struct {
	ID         string `json:"id"`
	AttackerID string `json:"attacker_id"`
	DefenderID string `json:"defender_id"`

	Phase        Phase     `json:"phase"`
	StartedAt    time.Time `json:"started_at"`
	ScoutEndsAt  time.Time `json:"scout_ends_at"`
	EndsAt       time.Time `json:"ends_at"`
	EndedAt      time.Time `json:"ended_at"`

	Troops        []*Troop             `json:"troops"`
	Spells        []SpellCast          `json:"spells"`
	Buildings     []*BuildingTarget    `json:"buildings"`
	ActiveEffects []*ActiveSpellEffect `json:"active_effects"`

	RemainingTroops map[string]int `json:"remaining_troops"`
	RemainingSpells map[string]int `json:"remaining_spells"`

	Destruction       int       `json:"destruction"`
	StarsEarned       int       `json:"stars_earned"`
	TownHallDestroyed bool      `json:"town_hall_destroyed"`
	LootAvailable     Resources `json:"loot_available"`
	LootClaimed       Resources `json:"loot_claimed"`
	IsRevenge         bool      `json:"is_revenge"`

	// Defender snapshot data the engine needs every tick.
	DefenderResearch map[string]bool `json:"-"`
	AttackerTHLevel  int             `json:"attacker_th_level"`
	DefenderTHLevel  int             `json:"defender_th_level"`

	// Attacker snapshot: the level each troop/spell type deploys at,
	// captured at battle start so mid-battle upgrades cannot leak in.
	TroopLevels map[string]int `json:"-"`
	SpellLevels map[string]int `json:"-"`
}

// LivingTroops counts troops that are not dead.
func (b *Battle) LivingTroops() int {
	n := 0
	for _, t := range b.Troops {
		if t.Alive() {
			n++
		}
	}
	return n
}

// AllBuildingsDestroyed reports whether nothing is left standing.
func (b *Battle) AllBuildingsDestroyed() bool {
	for _, bt := range b.Buildings {
		if !bt.IsDestroyed {
			return false
		}
	}
	return len(b.Buildings) > 0
}

// Clone returns a deep copy for read-only presentation. The engine and the
// session manager always work on the original.
func (b *Battle) Clone() *Battle {
	cp := *b
	cp.Troops = make([]*Troop, len(b.Troops))
	for i, t := range b.Troops {
		tc := *t
		cp.Troops[i] = &tc
	}
	cp.Buildings = make([]*BuildingTarget, len(b.Buildings))
	for i, bt := range b.Buildings {
		bc := *bt
		cp.Buildings[i] = &bc
	}
	cp.ActiveEffects = make([]*ActiveSpellEffect, len(b.ActiveEffects))
	for i, e := range b.ActiveEffects {
		ec := *e
		cp.ActiveEffects[i] = &ec
	}
	cp.Spells = append([]SpellCast(nil), b.Spells...)
	cp.RemainingTroops = make(map[string]int, len(b.RemainingTroops))
	for k, v := range b.RemainingTroops {
		cp.RemainingTroops[k] = v
	}
	cp.RemainingSpells = make(map[string]int, len(b.RemainingSpells))
	for k, v := range b.RemainingSpells {
		cp.RemainingSpells[k] = v
	}
	cp.DefenderResearch = make(map[string]bool, len(b.DefenderResearch))
	for k, v := range b.DefenderResearch {
		cp.DefenderResearch[k] = v
	}
	return &cp
}
