package engine

import (
	"testing"
	"time"

	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/config"
)

func testTables(t *testing.T) *config.Balance {
	t.Helper()
	tables, err := config.NewBalance(
		[]config.TroopDef{
			{Name: "Barbarian", Preference: battle.PreferAny, Domain: battle.DomainGround, Levels: []config.TroopLevel{
				{HitPoints: 100, DPS: 50, MoveSpeed: 2, AttackRange: 0.5},
			}},
			{Name: "Giant", Preference: battle.PreferDefenses, Domain: battle.DomainGround, Levels: []config.TroopLevel{
				{HitPoints: 300, DPS: 10, MoveSpeed: 1, AttackRange: 1},
			}},
			{Name: "Dragon", Preference: battle.PreferAny, Domain: battle.DomainAir, Levels: []config.TroopLevel{
				{HitPoints: 500, DPS: 100, MoveSpeed: 1.5, AttackRange: 3, SplashRadius: 1},
			}},
			{Name: "WallBreaker", Preference: battle.PreferWalls, Domain: battle.DomainGround, Levels: []config.TroopLevel{
				{HitPoints: 20, DPS: 12, MoveSpeed: 2, AttackRange: 0.5, WallDamageMultiplier: 40},
			}},
		},
		[]config.SpellDef{
			{Name: "Lightning", Levels: []config.SpellLevel{
				{Radius: 2, Lightning: &config.LightningParams{TotalDamage: 300, Strikes: 6}},
			}},
			{Name: "Earthquake", Levels: []config.SpellLevel{
				{Radius: 3.5, Earthquake: &config.EarthquakeParams{DamagePercent: 0.25, WallMultiplier: 4}},
			}},
			{Name: "Heal", Levels: []config.SpellLevel{
				{Radius: 4, Heal: &config.HealParams{HealPerSecond: 50, Duration: 10}},
			}},
			{Name: "Rage", Levels: []config.SpellLevel{
				{Radius: 5, Rage: &config.RageParams{DamageBoost: 1.3, SpeedBoost: 1.2, Duration: 5}},
			}},
			{Name: "Freeze", Levels: []config.SpellLevel{
				{Radius: 3.5, Freeze: &config.FreezeParams{Duration: 4}},
			}},
			{Name: "Jump", Levels: []config.SpellLevel{
				{Radius: 3.5, Jump: &config.JumpParams{Duration: 20}},
			}},
		},
		[]config.BuildingDef{
			{Name: "TownHall", Category: battle.CategoryOther, Levels: []config.BuildingLevel{{HitPoints: 1000}}},
			{Name: "Cannon", Category: battle.CategoryDefense, Targets: battle.DomainGround, Levels: []config.BuildingLevel{
				{HitPoints: 400, Damage: 10, AttackSpeed: 1, AttackRange: 9},
			}},
			{Name: "ArcherTower", Category: battle.CategoryDefense, Targets: battle.DomainBoth, Levels: []config.BuildingLevel{
				{HitPoints: 400, Damage: 10, AttackSpeed: 1, AttackRange: 9},
			}},
			{Name: "WizardTower", Category: battle.CategoryDefense, Targets: battle.DomainBoth, Levels: []config.BuildingLevel{
				{HitPoints: 620, Damage: 11, AttackSpeed: 1, AttackRange: 7, SplashRadius: 1},
			}},
			{Name: "Farm", Category: battle.CategoryResource, Downgradable: true, Levels: []config.BuildingLevel{{HitPoints: 200}}},
			{Name: "GoldMine", Category: battle.CategoryResource, Levels: []config.BuildingLevel{{HitPoints: 400}}},
			{Name: "Wall", Category: battle.CategoryWall, Levels: []config.BuildingLevel{{HitPoints: 100}}},
		},
		nil,
		config.CombatConfig{},
	)
	if err != nil {
		t.Fatalf("failed to build test tables: %v", err)
	}
	return tables
}

func testBattle(buildings ...*battle.BuildingTarget) *battle.Battle {
	return &battle.Battle{
		ID:               "b1",
		AttackerID:       "p1",
		DefenderID:       "p2",
		Phase:            battle.PhaseBattle,
		EndsAt:           time.Now().Add(time.Hour),
		Buildings:        buildings,
		RemainingTroops:  map[string]int{},
		RemainingSpells:  map[string]int{},
		DefenderResearch: map[string]bool{},
	}
}

func mkBuilding(id, typ string, cat battle.BuildingCategory, hp float64, pos battle.Vec) *battle.BuildingTarget {
	return &battle.BuildingTarget{ID: id, Type: typ, Level: 1, Position: pos, CurrentHP: hp, MaxHP: hp, Category: cat}
}

func mkTroop(id, typ string, hp float64, pos battle.Vec) *battle.Troop {
	domain := battle.DomainGround
	if typ == "Dragon" {
		domain = battle.DomainAir
	}
	return &battle.Troop{ID: id, Type: typ, Level: 1, Position: pos, State: battle.TroopMoving, CurrentHP: hp, MaxHP: hp, Domain: domain}
}

// run advances n ticks at the configured period, asserting the core
// invariants after every step.
func run(t *testing.T, b *battle.Battle, tables *config.Balance, start time.Time, n int) (ended bool, endTick int) {
	t.Helper()
	lastDestruction := b.Destruction
	for i := 0; i < n; i++ {
		now := start.Add(time.Duration(i) * tables.Combat.TickDuration())
		if Tick(b, tables, now) {
			return true, i
		}
		if b.Destruction < lastDestruction {
			t.Fatalf("destruction decreased from %d to %d at tick %d", lastDestruction, b.Destruction, i)
		}
		lastDestruction = b.Destruction
		for _, tr := range b.Troops {
			if tr.CurrentHP < 0 {
				t.Fatalf("troop %s HP went negative: %f", tr.ID, tr.CurrentHP)
			}
		}
		for _, bt := range b.Buildings {
			if bt.CurrentHP < 0 {
				t.Fatalf("building %s HP went negative: %f", bt.ID, bt.CurrentHP)
			}
		}
	}
	return false, n
}

func TestLoneTroopDestroysTownHall(t *testing.T) {
	tables := testTables(t)
	th := mkBuilding("th", "TownHall", battle.CategoryOther, 1000, battle.Vec{X: 20, Y: 20})
	b := testBattle(th)
	b.Troops = append(b.Troops, mkTroop("t1", "Barbarian", 100, battle.Vec{X: 20, Y: 20.4}))

	start := time.Now()
	ended, _ := run(t, b, tables, start, 300)
	if !ended {
		t.Fatalf("expected battle to end once everything was destroyed")
	}
	if !b.TownHallDestroyed {
		t.Fatalf("expected town hall destroyed")
	}
	if !th.IsDestroyed {
		t.Fatalf("expected town hall target marked destroyed")
	}
	if b.Destruction != 100 {
		t.Fatalf("expected destruction 100, got %d", b.Destruction)
	}
}

func TestGiantPrefersDefensesOverCloserResource(t *testing.T) {
	tables := testTables(t)
	mine := mkBuilding("mine", "GoldMine", battle.CategoryResource, 400, battle.Vec{X: 11, Y: 10})
	cannon := mkBuilding("cannon", "Cannon", battle.CategoryDefense, 400, battle.Vec{X: 30, Y: 10})
	b := testBattle(mine, cannon)
	giant := mkTroop("g1", "Giant", 300, battle.Vec{X: 10, Y: 10})
	b.Troops = append(b.Troops, giant)

	Tick(b, tables, time.Now())
	if giant.TargetID != "cannon" {
		t.Fatalf("expected giant to target the cannon, got %q", giant.TargetID)
	}
}

func TestPreferenceFallsBackWhenNoMatch(t *testing.T) {
	tables := testTables(t)
	mine := mkBuilding("mine", "GoldMine", battle.CategoryResource, 400, battle.Vec{X: 12, Y: 10})
	b := testBattle(mine)
	giant := mkTroop("g1", "Giant", 300, battle.Vec{X: 10, Y: 10})
	b.Troops = append(b.Troops, giant)

	Tick(b, tables, time.Now())
	if giant.TargetID != "mine" {
		t.Fatalf("expected fallback to nearest building, got %q", giant.TargetID)
	}
}

func TestJumpEffectIgnoresWalls(t *testing.T) {
	tables := testTables(t)
	wall := mkBuilding("wall", "Wall", battle.CategoryWall, 100, battle.Vec{X: 10.5, Y: 10})
	th := mkBuilding("th", "TownHall", battle.CategoryOther, 1000, battle.Vec{X: 14, Y: 10})
	b := testBattle(wall, th)
	barb := mkTroop("t1", "Barbarian", 100, battle.Vec{X: 10, Y: 10})
	b.Troops = append(b.Troops, barb)

	now := time.Now()
	b.ActiveEffects = append(b.ActiveEffects, &battle.ActiveSpellEffect{
		ID: "e1", Type: "Jump", Level: 1, Position: barb.Position, Radius: 3.5,
		StartTime: now, Duration: 20 * time.Second,
	})
	Tick(b, tables, now)
	if barb.TargetID != "th" {
		t.Fatalf("expected wall to be skipped under jump, got target %q", barb.TargetID)
	}

	// Once the effect expires the wall is a candidate again.
	later := now.Add(25 * time.Second)
	Tick(b, tables, later)
	if barb.TargetID == "th" {
		t.Fatalf("expected wall to be targetable after jump expired")
	}
}

func TestLightningDealsExactDamage(t *testing.T) {
	tables := testTables(t)
	mine := mkBuilding("mine", "GoldMine", battle.CategoryResource, 400, battle.Vec{X: 20, Y: 20})
	b := testBattle(mine)

	ApplyInstantSpell(b, tables, "Lightning", 1, battle.Vec{X: 20, Y: 21})
	if mine.CurrentHP != 100 {
		t.Fatalf("expected 400-300=100 HP, got %f", mine.CurrentHP)
	}
	if mine.IsDestroyed {
		t.Fatalf("building should survive at 100 HP")
	}
}

func TestLightningDowngradesFarm(t *testing.T) {
	tables := testTables(t)
	farm := mkBuilding("farm", "Farm", battle.CategoryResource, 200, battle.Vec{X: 20, Y: 20})
	b := testBattle(farm)

	ApplyInstantSpell(b, tables, "Lightning", 1, battle.Vec{X: 20, Y: 20})
	if farm.IsDestroyed {
		t.Fatalf("farms are downgraded, never destroyed")
	}
	if farm.CurrentHP != 1 || !farm.WasDowngraded {
		t.Fatalf("expected downgraded farm at 1 HP, got hp=%f downgraded=%v", farm.CurrentHP, farm.WasDowngraded)
	}
}

func TestEarthquakeFloorsBuildingsAndLevelsWalls(t *testing.T) {
	tables := testTables(t)
	// 25% of 200 = 50 damage to the mine; the wall takes 25%*4 = 100% of max.
	mine := mkBuilding("mine", "GoldMine", battle.CategoryResource, 400, battle.Vec{X: 20, Y: 20})
	mine.CurrentHP = 40
	wall := mkBuilding("wall", "Wall", battle.CategoryWall, 100, battle.Vec{X: 21, Y: 20})
	b := testBattle(mine, wall)

	ApplyInstantSpell(b, tables, "Earthquake", 1, battle.Vec{X: 20, Y: 20})
	if mine.CurrentHP != 1 || mine.IsDestroyed {
		t.Fatalf("expected mine floored at 1 HP, got hp=%f destroyed=%v", mine.CurrentHP, mine.IsDestroyed)
	}
	if !wall.IsDestroyed {
		t.Fatalf("expected wall levelled by earthquake")
	}
}

func TestRageBoostsDamageAndSpeedThenExpires(t *testing.T) {
	tables := testTables(t)
	now := time.Now()

	// Damage: raged barbarian in range hits for 50*1.3 = 65.
	th := mkBuilding("th", "TownHall", battle.CategoryOther, 1000, battle.Vec{X: 20, Y: 20})
	b := testBattle(th)
	barb := mkTroop("t1", "Barbarian", 100, battle.Vec{X: 20, Y: 20.4})
	b.Troops = append(b.Troops, barb)
	b.ActiveEffects = append(b.ActiveEffects, &battle.ActiveSpellEffect{
		ID: "rage", Type: "Rage", Level: 1, Position: barb.Position, Radius: 5,
		StartTime: now, Duration: 5 * time.Second,
	})
	Tick(b, tables, now)
	if got := 1000 - th.CurrentHP; !almostEqual(got, 65) {
		t.Fatalf("expected raged hit of 65, got %f", got)
	}

	// Speed: raged troop covers moveSpeed*1.2*dt per tick.
	far := mkBuilding("far", "TownHall", battle.CategoryOther, 1000, battle.Vec{X: 39, Y: 20})
	b2 := testBattle(far)
	runner := mkTroop("t2", "Barbarian", 100, battle.Vec{X: 10, Y: 20})
	b2.Troops = append(b2.Troops, runner)
	b2.ActiveEffects = append(b2.ActiveEffects, &battle.ActiveSpellEffect{
		ID: "rage2", Type: "Rage", Level: 1, Position: runner.Position, Radius: 5,
		StartTime: now, Duration: 5 * time.Second,
	})
	Tick(b2, tables, now)
	wantStep := 2.0 * 1.2 * tables.Combat.TickDuration().Seconds()
	if got := runner.Position.X - 10; !almostEqual(got, wantStep) {
		t.Fatalf("expected raged step %f, got %f", wantStep, got)
	}

	// After expiry the next hit reverts to baseline damage.
	afterExpiry := now.Add(6 * time.Second)
	before := th.CurrentHP
	Tick(b, tables, afterExpiry)
	if got := before - th.CurrentHP; !almostEqual(got, 50) {
		t.Fatalf("expected baseline hit of 50 after rage expired, got %f", got)
	}
}

func TestHealRestoresCappedHP(t *testing.T) {
	tables := testTables(t)
	now := time.Now()
	th := mkBuilding("th", "TownHall", battle.CategoryOther, 1000, battle.Vec{X: 39, Y: 39})
	b := testBattle(th)
	hurt := mkTroop("t1", "Barbarian", 100, battle.Vec{X: 10, Y: 10})
	hurt.CurrentHP = 99
	b.Troops = append(b.Troops, hurt)
	b.ActiveEffects = append(b.ActiveEffects, &battle.ActiveSpellEffect{
		ID: "heal", Type: "Heal", Level: 1, Position: hurt.Position, Radius: 4,
		StartTime: now, Duration: 10 * time.Second,
	})

	Tick(b, tables, now)
	if hurt.CurrentHP != 100 {
		t.Fatalf("expected heal capped at max HP, got %f", hurt.CurrentHP)
	}
}

func TestFreezeGatesDefenseAI(t *testing.T) {
	tables := testTables(t)
	now := time.Now()
	cannon := mkBuilding("cannon", "Cannon", battle.CategoryDefense, 400, battle.Vec{X: 20, Y: 20})
	b := testBattle(cannon)
	barb := mkTroop("t1", "Barbarian", 100, battle.Vec{X: 22, Y: 20})
	b.Troops = append(b.Troops, barb)
	b.ActiveEffects = append(b.ActiveEffects, &battle.ActiveSpellEffect{
		ID: "frz", Type: "Freeze", Level: 1, Position: cannon.Position, Radius: 3.5,
		StartTime: now, Duration: 4 * time.Second,
	})

	Tick(b, tables, now)
	if barb.CurrentHP != 100 {
		t.Fatalf("frozen cannon must not fire, troop HP=%f", barb.CurrentHP)
	}

	Tick(b, tables, now.Add(5*time.Second))
	if barb.CurrentHP >= 100 {
		t.Fatalf("expected cannon to fire after freeze expired, troop HP=%f", barb.CurrentHP)
	}
}

func TestGroundOnlyDefenseCannotHitAir(t *testing.T) {
	tables := testTables(t)
	now := time.Now()
	cannon := mkBuilding("cannon", "Cannon", battle.CategoryDefense, 400, battle.Vec{X: 20, Y: 20})
	tower := mkBuilding("tower", "ArcherTower", battle.CategoryDefense, 400, battle.Vec{X: 20, Y: 24})
	b := testBattle(cannon, tower)
	drake := mkTroop("d1", "Dragon", 500, battle.Vec{X: 20, Y: 22})
	b.Troops = append(b.Troops, drake)

	Tick(b, tables, now)
	// Only the archer tower (targets both) may hit the dragon.
	if got := 500 - drake.CurrentHP; got != 10 {
		t.Fatalf("expected exactly one tower hit of 10, got %f", got)
	}
}

func TestDefenseResearchGate(t *testing.T) {
	tables, err := config.NewBalance(
		[]config.TroopDef{{Name: "Barbarian", Levels: []config.TroopLevel{{HitPoints: 100, DPS: 1, MoveSpeed: 1, AttackRange: 0.5}}}},
		nil,
		[]config.BuildingDef{
			{Name: "Mortar", Category: battle.CategoryDefense, Targets: battle.DomainGround, RequiredResearch: "siegeworks", Levels: []config.BuildingLevel{
				{HitPoints: 400, Damage: 20, AttackSpeed: 1, AttackRange: 9},
			}},
		},
		nil,
		config.CombatConfig{},
	)
	if err != nil {
		t.Fatalf("failed to build tables: %v", err)
	}
	now := time.Now()
	mortar := mkBuilding("m", "Mortar", battle.CategoryDefense, 400, battle.Vec{X: 20, Y: 20})
	b := testBattle(mortar)
	barb := mkTroop("t1", "Barbarian", 100, battle.Vec{X: 22, Y: 20})
	b.Troops = append(b.Troops, barb)

	Tick(b, tables, now)
	if barb.CurrentHP != 100 {
		t.Fatalf("unresearched mortar must stay inactive, troop HP=%f", barb.CurrentHP)
	}

	b.DefenderResearch["siegeworks"] = true
	Tick(b, tables, now.Add(time.Second))
	if barb.CurrentHP >= 100 {
		t.Fatalf("researched mortar should fire, troop HP=%f", barb.CurrentHP)
	}
}

func TestTroopSplashHitsNeighborsAtHalf(t *testing.T) {
	tables := testTables(t)
	mine1 := mkBuilding("mine1", "GoldMine", battle.CategoryResource, 400, battle.Vec{X: 20, Y: 20})
	mine2 := mkBuilding("mine2", "GoldMine", battle.CategoryResource, 400, battle.Vec{X: 20.6, Y: 20})
	mine3 := mkBuilding("mine3", "GoldMine", battle.CategoryResource, 400, battle.Vec{X: 25, Y: 20})
	b := testBattle(mine1, mine2, mine3)
	drake := mkTroop("d1", "Dragon", 500, battle.Vec{X: 20, Y: 18})
	b.Troops = append(b.Troops, drake)

	Tick(b, tables, time.Now())
	if drake.TargetID != "mine1" {
		t.Fatalf("expected nearest mine targeted, got %q", drake.TargetID)
	}
	// Direct hit of 100; the mine next to the target takes half.
	if got := 400 - mine1.CurrentHP; !almostEqual(got, 100) {
		t.Fatalf("expected direct hit of 100, got %f", got)
	}
	if got := 400 - mine2.CurrentHP; !almostEqual(got, 50) {
		t.Fatalf("expected splash of 50 on the neighbor, got %f", got)
	}
	if mine3.CurrentHP != 400 {
		t.Fatalf("buildings outside the splash radius must be untouched, got %f", mine3.CurrentHP)
	}
}

func TestWallMultiplierAppliesOnlyToWalls(t *testing.T) {
	tables := testTables(t)

	// Against a wall the multiplier turns 12 damage into 480: one hit levels it.
	wall := mkBuilding("wall", "Wall", battle.CategoryWall, 100, battle.Vec{X: 20, Y: 20})
	b := testBattle(wall)
	breaker := mkTroop("wb1", "WallBreaker", 20, battle.Vec{X: 20, Y: 20.4})
	b.Troops = append(b.Troops, breaker)
	Tick(b, tables, time.Now())
	if !wall.IsDestroyed {
		t.Fatalf("expected the wall levelled in one multiplied hit, got HP %f", wall.CurrentHP)
	}

	// Against anything else the same troop hits for its plain damage.
	mine := mkBuilding("mine", "GoldMine", battle.CategoryResource, 400, battle.Vec{X: 20, Y: 20})
	b2 := testBattle(mine)
	b2.Troops = append(b2.Troops, mkTroop("wb2", "WallBreaker", 20, battle.Vec{X: 20, Y: 20.4}))
	Tick(b2, tables, time.Now())
	if got := 400 - mine.CurrentHP; !almostEqual(got, 12) {
		t.Fatalf("expected unmultiplied hit of 12 on a non-wall, got %f", got)
	}
}

func TestDefenseSplashHitsGroupedTroops(t *testing.T) {
	tables := testTables(t)
	tower := mkBuilding("wt", "WizardTower", battle.CategoryDefense, 620, battle.Vec{X: 20, Y: 20})
	b := testBattle(tower)
	near := mkTroop("t1", "Barbarian", 100, battle.Vec{X: 20, Y: 22})
	buddy := mkTroop("t2", "Barbarian", 100, battle.Vec{X: 20.3, Y: 22})
	loner := mkTroop("t3", "Barbarian", 100, battle.Vec{X: 20, Y: 26})
	b.Troops = append(b.Troops, near, buddy, loner)

	Tick(b, tables, time.Now())
	// The nearest troop takes the full shot, the one bunched next to it
	// takes half, and the straggler out of splash range takes nothing.
	if got := 100 - near.CurrentHP; !almostEqual(got, 11) {
		t.Fatalf("expected full tower hit of 11, got %f", got)
	}
	if got := 100 - buddy.CurrentHP; !almostEqual(got, 5.5) {
		t.Fatalf("expected splash of 5.5 on the bunched troop, got %f", got)
	}
	if loner.CurrentHP != 100 {
		t.Fatalf("troops outside the splash radius must be untouched, got %f", loner.CurrentHP)
	}
}

func TestBattleEndsWhenArmySpent(t *testing.T) {
	tables := testTables(t)
	cannon := mkBuilding("cannon", "Cannon", battle.CategoryDefense, 400, battle.Vec{X: 20, Y: 20})
	b := testBattle(cannon)
	dead := mkTroop("t1", "Barbarian", 100, battle.Vec{X: 5, Y: 5})
	dead.State = battle.TroopDead
	dead.CurrentHP = 0
	b.Troops = append(b.Troops, dead)

	if !Tick(b, tables, time.Now()) {
		t.Fatalf("expected termination with all troops dead and none remaining")
	}
}

func TestWallClockTermination(t *testing.T) {
	tables := testTables(t)
	cannon := mkBuilding("cannon", "Cannon", battle.CategoryDefense, 400, battle.Vec{X: 20, Y: 20})
	b := testBattle(cannon)
	b.RemainingTroops["Barbarian"] = 5
	b.EndsAt = time.Now().Add(-time.Second)

	if !Tick(b, tables, time.Now()) {
		t.Fatalf("expected termination once wall clock passed endsAt")
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
