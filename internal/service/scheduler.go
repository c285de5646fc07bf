package service

import (
	"time"

	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/constants"
	"github.com/ravenfort/siegecraft/internal/engine"
	"github.com/ravenfort/siegecraft/internal/logging"
)

// SimulateTick advances one battle by one simulation step. It is invoked by
// the scheduler; calling it on an ended battle is a no-op.
func (m *Manager) SimulateTick(battleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[battleID]
	if !ok {
		return
	}
	m.tickLocked(b)
}

// TickAll advances every registered battle in stable ID order.
func (m *Manager) TickAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.sortedIDs() {
		m.tickLocked(m.battles[id])
	}
}

func (m *Manager) tickLocked(b *battle.Battle) {
	if b.Phase == battle.PhaseEnded {
		return
	}
	if engine.Tick(b, m.tables, m.now()) {
		m.endLocked(b)
		return
	}
	if b.Phase == battle.PhaseBattle {
		m.notifier.TickProcessed(b.Clone())
	}
}

// Sweep force-terminates battles whose callers went away and drops ended
// battles once their retention grace expires. It runs on a much slower
// cadence than the tick loop.
func (m *Manager) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	orphanGrace := time.Duration(m.tables.Combat.OrphanGraceSeconds) * time.Second
	retention := time.Duration(m.tables.Combat.ResultRetentionSeconds) * time.Second

	for _, id := range m.sortedIDs() {
		b := m.battles[id]
		if b.Phase != battle.PhaseEnded {
			if now.After(b.EndsAt.Add(orphanGrace)) {
				logging.Info("force-ending orphaned battle", logging.Fields{constants.LogFieldBattleID: b.ID})
				m.endLocked(b)
			}
			continue
		}
		if now.After(b.EndedAt.Add(retention)) {
			delete(m.battles, id)
			delete(m.results, id)
		}
	}
}

// Run drives the tick loop and the sweep until stop is closed. The battle
// period comes from config (100 ms by default).
func (m *Manager) Run(stop <-chan struct{}) {
	tick := time.NewTicker(m.tables.Combat.TickDuration())
	sweep := time.NewTicker(time.Duration(m.tables.Combat.SweepSeconds) * time.Second)
	defer tick.Stop()
	defer sweep.Stop()
	for {
		select {
		case <-tick.C:
			m.TickAll()
		case <-sweep.C:
			m.Sweep()
		case <-stop:
			return
		}
	}
}
