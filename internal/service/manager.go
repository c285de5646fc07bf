package service

import (
	"sort"
	"sync"
	"time"

	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/config"
	"github.com/ravenfort/siegecraft/internal/storage"
)

// Manager owns the battle registry and the public battle contract. All
// mutation funnels through its mutex: deploy calls and the tick loop touch
// one battle at a time, so ordering within a tick is deterministic by call
// order.
type Manager struct {
	mu       sync.Mutex
	battles  map[string]*battle.Battle
	results  map[string]*battle.Result
	repo     storage.Repository
	tables   *config.Balance
	notifier Notifier

	// now is swappable so tests can drive the clock.
	now func() time.Time
}

// NewManager wires the session manager with its collaborators.
func NewManager(repo storage.Repository, tables *config.Balance, notifier Notifier) *Manager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Manager{
		battles:  make(map[string]*battle.Battle),
		results:  make(map[string]*battle.Result),
		repo:     repo,
		tables:   tables,
		notifier: notifier,
		now:      time.Now,
	}
}

// GetBattleState returns a read-only snapshot of a battle, or nil when the
// battle is unknown or already swept away.
func (m *Manager) GetBattleState(battleID string) *battle.Battle {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[battleID]
	if !ok {
		return nil
	}
	return b.Clone()
}

// Result returns the retained outcome of an ended battle, or nil.
func (m *Manager) Result(battleID string) *battle.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results[battleID]
}

// ActiveBattles reports how many battles are currently registered.
func (m *Manager) ActiveBattles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.battles)
}

// sortedIDs returns the registry keys in stable order so the tick loop
// always advances battles in the same sequence.
func (m *Manager) sortedIDs() []string {
	ids := make([]string, 0, len(m.battles))
	for id := range m.battles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// attackerBusy reports whether the player already has an unfinished battle.
func (m *Manager) attackerBusy(playerUUID string) bool {
	for _, b := range m.battles {
		if b.AttackerID == playerUUID && b.Phase != battle.PhaseEnded {
			return true
		}
	}
	return false
}
