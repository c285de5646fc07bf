package service

import (
	"github.com/google/uuid"

	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/constants"
	"github.com/ravenfort/siegecraft/internal/engine"
	"github.com/ravenfort/siegecraft/internal/logging"
)

// DeployTroop places one troop on the arena border. Every precondition is
// checked before anything mutates; a failed deploy leaves the battle, the
// inventory and the registry untouched.
func (m *Manager) DeployTroop(battleID, callerID, troopType string, x, y int) (*battle.Troop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.deployable(battleID, callerID)
	if err != nil {
		return nil, err
	}
	def := m.tables.Troop(troopType)
	if def == nil {
		return nil, battle.ErrInvalidTroopType
	}
	if !m.onDeployBorder(x, y) {
		return nil, battle.ErrInvalidPosition
	}
	if b.RemainingTroops[def.Name] <= 0 {
		return nil, battle.ErrNoTroopsAvailable
	}
	level := troopLevel(b.TroopLevels, def.Name)
	lvl := def.Level(level)
	if lvl == nil {
		return nil, battle.ErrInvalidTroopType
	}

	// Consume from the persistent inventory before touching the battle so
	// a storage failure mutates nothing here.
	if err := m.repo.ConsumeTroop(callerID, def.Name); err != nil {
		return nil, err
	}

	b.RemainingTroops[def.Name]--
	if b.RemainingTroops[def.Name] == 0 {
		delete(b.RemainingTroops, def.Name)
	}

	t := &battle.Troop{
		ID:         uuid.NewString(),
		Type:       def.Name,
		Level:      level,
		Position:   battle.Vec{X: float64(x), Y: float64(y)},
		State:      battle.TroopMoving,
		CurrentHP:  lvl.HitPoints,
		MaxHP:      lvl.HitPoints,
		Domain:     def.Domain,
		DeployedAt: m.now(),
	}
	b.Troops = append(b.Troops, t)
	m.enterBattlePhase(b)
	logging.Info("troop deployed", logging.Fields{
		constants.LogFieldBattleID: b.ID,
		constants.LogFieldPlayer:   callerID,
		constants.LogFieldTroop:    def.Name,
	})

	cp := *t
	m.notifier.TroopDeployed(b.ID, cp)
	return &cp, nil
}

// DeploySpell casts a spell anywhere inside the grid. Instant spells apply
// immediately; duration spells join the active-effect list.
func (m *Manager) DeploySpell(battleID, callerID, spellType string, x, y int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.deployable(battleID, callerID)
	if err != nil {
		return err
	}
	def := m.tables.Spell(spellType)
	if def == nil {
		return battle.ErrInvalidSpellType
	}
	n := m.tables.Combat.GridSize
	if x < 0 || x >= n || y < 0 || y >= n {
		return battle.ErrInvalidPosition
	}
	if b.RemainingSpells[def.Name] <= 0 {
		return battle.ErrNoSpellsAvailable
	}
	level := troopLevel(b.SpellLevels, def.Name)
	lvl := def.Level(level)
	if lvl == nil {
		return battle.ErrInvalidSpellType
	}

	if err := m.repo.ConsumeSpell(callerID, def.Name); err != nil {
		return err
	}

	b.RemainingSpells[def.Name]--
	if b.RemainingSpells[def.Name] == 0 {
		delete(b.RemainingSpells, def.Name)
	}

	now := m.now()
	pos := battle.Vec{X: float64(x), Y: float64(y)}
	cast := battle.SpellCast{Type: def.Name, Level: level, Position: pos, CastAt: now}
	b.Spells = append(b.Spells, cast)

	if lvl.Instant() {
		engine.ApplyInstantSpell(b, m.tables, def.Name, level, pos)
	} else {
		b.ActiveEffects = append(b.ActiveEffects, &battle.ActiveSpellEffect{
			ID:        uuid.NewString(),
			Type:      def.Name,
			Level:     level,
			Position:  pos,
			Radius:    lvl.Radius,
			StartTime: now,
			Duration:  lvl.Duration(),
		})
	}
	m.enterBattlePhase(b)
	logging.Info("spell deployed", logging.Fields{
		constants.LogFieldBattleID: b.ID,
		constants.LogFieldPlayer:   callerID,
		constants.LogFieldSpell:    def.Name,
	})
	m.notifier.SpellDeployed(b.ID, cast)
	return nil
}

// deployable runs the shared deploy preconditions: the battle exists, the
// caller owns it, it has not ended, and the scout window is over.
func (m *Manager) deployable(battleID, callerID string) (*battle.Battle, error) {
	b, ok := m.battles[battleID]
	if !ok {
		return nil, battle.ErrBattleNotFound
	}
	if b.AttackerID != callerID {
		return nil, battle.ErrNotYourBattle
	}
	if b.Phase == battle.PhaseEnded {
		return nil, battle.ErrBattleEnded
	}
	now := m.now()
	if now.Before(b.ScoutEndsAt) {
		return nil, battle.ErrScoutPhase
	}
	if !now.Before(b.EndsAt) {
		return nil, battle.ErrBattleEnded
	}
	return b, nil
}

// enterBattlePhase advances scout -> deploy -> battle once anything has
// been deployed. Phases never regress.
func (m *Manager) enterBattlePhase(b *battle.Battle) {
	if b.Phase == battle.PhaseScout {
		b.Phase = battle.PhaseDeploy
	}
	if b.Phase == battle.PhaseDeploy && (len(b.Troops) > 0 || len(b.Spells) > 0) {
		b.Phase = battle.PhaseBattle
	}
}

// onDeployBorder accepts only cells in the outer border ring of the grid.
func (m *Manager) onDeployBorder(x, y int) bool {
	n := m.tables.Combat.GridSize
	border := m.tables.Combat.DeployBorder
	if x < 0 || x >= n || y < 0 || y >= n {
		return false
	}
	return x < border || x >= n-border || y < border || y >= n-border
}

// troopLevel resolves the snapshot level for a type, defaulting to 1.
func troopLevel(levels map[string]int, name string) int {
	if lvl, ok := levels[name]; ok && lvl > 0 {
		return lvl
	}
	return 1
}
