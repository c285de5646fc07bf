package storage

import (
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/config"
)

type sqliteRepository struct {
	db  *gorm.DB
	cfg config.CombatConfig

	// loads collapses concurrent snapshot reads for the same player so a
	// burst of battle starts against one defender hits the DB once.
	loads singleflight.Group
}

func NewSQLiteRepository(db *gorm.DB, cfg config.CombatConfig) Repository {
	return &sqliteRepository{db: db, cfg: cfg}
}

func (r *sqliteRepository) GetProfileByUUID(uuid string) (*PlayerProfile, error) {
	v, err, _ := r.loads.Do(uuid, func() (interface{}, error) {
		var p PlayerProfile
		err := r.db.Preload("Buildings").Preload("DefenseLog").Preload("RevengeList").
			Where("player_uuid = ?", uuid).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, battle.ErrPlayerNotFound
		}
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	// Collapsed callers each get their own copy: one caller mutating its
	// snapshot must never be visible to another.
	return v.(*PlayerProfile).clone(), nil
}

func (r *sqliteRepository) SaveProfile(p *PlayerProfile) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(p).Error
}

func (r *sqliteRepository) ConsumeTroop(uuid, troopType string) error {
	return r.consume(uuid, troopType, true)
}

func (r *sqliteRepository) ConsumeSpell(uuid, spellType string) error {
	return r.consume(uuid, spellType, false)
}

func (r *sqliteRepository) consume(uuid, typ string, troop bool) error {
	p, err := r.GetProfileByUUID(uuid)
	if err != nil {
		return err
	}
	inv := p.Army
	notLeft := battle.ErrNoTroopsAvailable
	if !troop {
		inv = p.Spells
		notLeft = battle.ErrNoSpellsAvailable
	}
	if inv[typ] <= 0 {
		return notLeft
	}
	inv[typ]--
	if inv[typ] == 0 {
		delete(inv, typ)
	}
	return r.SaveProfile(p)
}

func (r *sqliteRepository) ApplyBattleOutcome(res *battle.Result) error {
	attacker, err := r.GetProfileByUUID(res.AttackerID)
	if err != nil {
		return err
	}
	defender, err := r.GetProfileByUUID(res.DefenderID)
	if err != nil {
		return err
	}
	now := time.Now()

	attacker.Gold += res.Loot.Gold
	attacker.Elixir += res.Loot.Elixir
	attacker.DarkElixir += res.Loot.DarkElixir
	attacker.Trophies = clampTrophies(attacker.Trophies + res.AttackerTrophyDelta)
	if attacker.Trophies > attacker.BestTrophies {
		attacker.BestTrophies = attacker.Trophies
	}

	defender.Gold = clampResource(defender.Gold - res.Loot.Gold)
	defender.Elixir = clampResource(defender.Elixir - res.Loot.Elixir)
	defender.DarkElixir = clampResource(defender.DarkElixir - res.Loot.DarkElixir)
	defender.Trophies = clampTrophies(defender.Trophies + res.DefenderTrophyDelta)
	if defender.Trophies > defender.BestTrophies {
		defender.BestTrophies = defender.Trophies
	}
	if res.ShieldGranted > 0 {
		defender.ShieldUntil = now.Add(res.ShieldGranted)
	}

	defender.DefenseLog = append(defender.DefenseLog, DefenseLogEntry{
		ProfileID:    defender.ID,
		AttackerUUID: res.AttackerID,
		Destruction:  res.Destruction,
		Stars:        res.Stars,
		LootGold:     res.Loot.Gold,
		LootElixir:   res.Loot.Elixir,
		LootDark:     res.Loot.DarkElixir,
		WasRevenge:   res.IsRevenge,
	})
	if overflow := len(defender.DefenseLog) - r.cfg.DefenseLogMax; overflow > 0 {
		trimmed := defender.DefenseLog[:overflow]
		defender.DefenseLog = defender.DefenseLog[overflow:]
		for i := range trimmed {
			if trimmed[i].ID != 0 {
				r.db.Delete(&trimmed[i])
			}
		}
	}

	defender.RevengeList = append(defender.RevengeList, RevengeEntry{
		ProfileID:    defender.ID,
		AttackerUUID: res.AttackerID,
		ExpiresAt:    now.Add(time.Duration(r.cfg.RevengeHours) * time.Hour),
	})

	if err := r.SaveProfile(attacker); err != nil {
		return err
	}
	return r.SaveProfile(defender)
}

func (r *sqliteRepository) GetTopPlayers(limit int) ([]PlayerProfile, error) {
	var players []PlayerProfile
	if err := r.db.Order("trophies desc").Limit(limit).Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

func clampTrophies(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampResource(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
