package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ravenfort/siegecraft/internal/config"
	"github.com/ravenfort/siegecraft/internal/logging"
)

// OpenAndMigrate opens the sqlite database, keeps the schema current via
// AutoMigrate and seeds demo profiles from config when the table is empty.
func OpenAndMigrate(dataSourceName string, profiles []config.SeedProfile) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&PlayerProfile{}, &BuildingRecord{}, &DefenseLogEntry{}, &RevengeEntry{}); err != nil {
		return nil, err
	}
	seedProfiles(db, profiles)
	return db, nil
}

func seedProfiles(db *gorm.DB, profiles []config.SeedProfile) {
	var count int64
	db.Model(&PlayerProfile{}).Count(&count)
	if count > 0 || len(profiles) == 0 {
		return
	}
	for _, sp := range profiles {
		p := PlayerProfile{
			PlayerUUID:    sp.PlayerUUID,
			PlayerName:    sp.PlayerName,
			TownHallLevel: sp.TownHallLevel,
			Gold:          sp.Gold,
			Elixir:        sp.Elixir,
			DarkElixir:    sp.DarkElixir,
			Trophies:      sp.Trophies,
			BestTrophies:  sp.Trophies,
			Research:      sp.Research,
			Army:          sp.Army,
			Spells:        sp.Spells,
			TroopLevels:   sp.TroopLevels,
			SpellLevels:   sp.SpellLevels,
		}
		for _, sb := range sp.Buildings {
			p.Buildings = append(p.Buildings, BuildingRecord{
				BuildingType: sb.Type,
				Level:        sb.Level,
				X:            sb.X,
				Y:            sb.Y,
			})
		}
		if err := db.Create(&p).Error; err != nil {
			logging.Error("failed to seed player profile", err, logging.Fields{"player_uuid": sp.PlayerUUID})
			continue
		}
		logging.Info("player profile seeded", logging.Fields{"player_uuid": sp.PlayerUUID})
	}
}
