package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/constants"
	"github.com/ravenfort/siegecraft/internal/logging"
	"github.com/ravenfort/siegecraft/internal/storage"
)

// StartBattleOptions carries the optional battle-start flags.
type StartBattleOptions struct {
	IsRevenge bool
}

// StartBattle validates both parties, builds the battle aggregate from the
// attacker and defender snapshots and registers it in the scout phase.
func (m *Manager) StartBattle(attackerID, defenderID string, opts StartBattleOptions) (*battle.Battle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attackerBusy(attackerID) {
		return nil, battle.ErrAlreadyInBattle
	}
	attacker, err := m.repo.GetProfileByUUID(attackerID)
	if err != nil {
		return nil, err
	}
	defender, err := m.repo.GetProfileByUUID(defenderID)
	if err != nil {
		return nil, err
	}

	deployable := 0
	for _, n := range attacker.Army {
		deployable += n
	}
	if deployable == 0 {
		return nil, battle.ErrNoArmy
	}
	now := m.now()
	if defender.Shielded(now) && !opts.IsRevenge {
		return nil, battle.ErrDefenderShielded
	}

	b := &battle.Battle{
		ID:               uuid.NewString(),
		AttackerID:       attackerID,
		DefenderID:       defenderID,
		Phase:            battle.PhaseScout,
		StartedAt:        now,
		ScoutEndsAt:      now.Add(time.Duration(m.tables.Combat.ScoutSeconds) * time.Second),
		EndsAt:           now.Add(time.Duration(m.tables.Combat.ScoutSeconds+m.tables.Combat.BattleSeconds) * time.Second),
		RemainingTroops:  copyCounts(attacker.Army),
		RemainingSpells:  copyCounts(attacker.Spells),
		LootAvailable:    storage.LootAvailable(defender, &m.tables.Combat),
		IsRevenge:        opts.IsRevenge,
		DefenderResearch: defender.ResearchSet(),
		AttackerTHLevel:  attacker.TownHallLevel,
		DefenderTHLevel:  defender.TownHallLevel,
		TroopLevels:      copyCounts(attacker.TroopLevels),
		SpellLevels:      copyCounts(attacker.SpellLevels),
	}
	b.Buildings = m.buildTargets(b, defender)

	m.battles[b.ID] = b
	logging.Info("battle started", logging.Fields{constants.LogFieldBattleID: b.ID, constants.LogFieldPlayer: attackerID, "defender": defenderID, "revenge": opts.IsRevenge})
	m.notifier.BattleStarted(b.Clone())
	return b.Clone(), nil
}

// buildTargets converts the defender's village layout into the battle's
// building-target list. Wall HP picks up the defender's research bonus.
// Buildings with no balance entry are skipped rather than aborting the
// battle.
func (m *Manager) buildTargets(b *battle.Battle, defender *storage.PlayerProfile) []*battle.BuildingTarget {
	wallMult := m.tables.WallHPMultiplier(b.DefenderResearch)
	targets := make([]*battle.BuildingTarget, 0, len(defender.Buildings))
	for _, rec := range defender.Buildings {
		def := m.tables.Building(rec.BuildingType)
		lvl := def.Level(rec.Level)
		if lvl == nil {
			logging.Error("skipping building with missing level data", nil, logging.Fields{constants.LogFieldBattleID: b.ID, "type": rec.BuildingType, "level": rec.Level})
			continue
		}
		hp := lvl.HitPoints
		if def.Category == battle.CategoryWall {
			hp *= wallMult
		}
		targets = append(targets, &battle.BuildingTarget{
			ID:        uuid.NewString(),
			Type:      def.Name,
			Level:     rec.Level,
			Position:  battle.Vec{X: rec.X, Y: rec.Y},
			CurrentHP: hp,
			MaxHP:     hp,
			Category:  def.Category,
		})
	}
	return targets
}

func copyCounts(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
