package service

import (
	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/constants"
	"github.com/ravenfort/siegecraft/internal/engine"
	"github.com/ravenfort/siegecraft/internal/logging"
)

// EndBattle terminates a battle and returns its result. It is idempotent:
// only the call that performs the transition into the ended phase gets the
// result; later calls return nil with no further side effects.
func (m *Manager) EndBattle(battleID string) (*battle.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.battles[battleID]
	if !ok {
		return nil, battle.ErrBattleNotFound
	}
	if b.Phase == battle.PhaseEnded {
		return nil, nil
	}
	return m.endLocked(b), nil
}

// endLocked runs the outcome calculation exactly once, flips the phase to
// ended and persists the side effects. Callers hold the manager mutex.
func (m *Manager) endLocked(b *battle.Battle) *battle.Result {
	var attacker, defender engine.PartySnapshot
	attacker.TownHallLevel = b.AttackerTHLevel
	defender.TownHallLevel = b.DefenderTHLevel

	if p, err := m.repo.GetProfileByUUID(b.AttackerID); err == nil {
		attacker.Trophies = p.Trophies
	}
	if p, err := m.repo.GetProfileByUUID(b.DefenderID); err == nil {
		defender.Trophies = p.Trophies
	}

	res := engine.ComputeOutcome(b, attacker, defender, &m.tables.Combat)
	b.Phase = battle.PhaseEnded
	b.EndedAt = m.now()
	m.results[b.ID] = res

	if err := m.repo.ApplyBattleOutcome(res); err != nil {
		logging.Error("failed to persist battle outcome", err, logging.Fields{constants.LogFieldBattleID: b.ID})
	}
	logging.Info("battle ended", logging.Fields{
		constants.LogFieldBattleID: b.ID,
		"destruction": res.Destruction,
		"stars":       res.Stars,
		"conquest":    res.IsConquest,
	})
	m.notifier.BattleEnded(b.Clone(), res)
	return res
}
