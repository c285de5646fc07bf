package main

import (
	"os"

	"github.com/gin-gonic/gin"

	"github.com/ravenfort/siegecraft/internal/api"
	"github.com/ravenfort/siegecraft/internal/config"
	"github.com/ravenfort/siegecraft/internal/constants"
	"github.com/ravenfort/siegecraft/internal/logging"
	"github.com/ravenfort/siegecraft/internal/service"
	"github.com/ravenfort/siegecraft/internal/storage"
)

func main() {
	// Balance tables are required. Path may be provided via SIEGECRAFT_CONFIG
	// or defaults to ./siegecraft_config.json in the working directory.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = "./siegecraft_config.json"
	}
	tables, err := config.LoadBalance(configPath)
	if err != nil {
		logging.Fatal("Missing or invalid siegecraft configuration", err, logging.Fields{"config_path": configPath, "hint": "create a siegecraft_config.json with 'troop_list', 'spell_list' and 'building_list' arrays plus optional 'combat', 'research_perks', 'seed_profiles' and 'server.address'"})
	}

	dbPath := os.Getenv(constants.EnvDBPath)
	if dbPath == "" {
		dbPath = "./data/siegecraft.db"
	}
	db, err := storage.OpenAndMigrate(dbPath, tables.Profiles)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}

	repo := storage.NewSQLiteRepository(db, tables.Combat)
	hub := api.NewHub()
	mgr := service.NewManager(repo, tables, hub)

	// Single cooperative scheduler: one loop advances every active battle at
	// the fixed tick period and runs the orphan/retention sweep.
	stop := make(chan struct{})
	go mgr.Run(stop)
	defer close(stop)

	handler := api.NewBattleHandler(mgr, repo)
	router := gin.Default()

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.POST(constants.RouteBattles, handler.StartBattle)
		apiRoutes.GET(constants.RouteBattleByID, handler.GetBattle)
		apiRoutes.POST(constants.RouteBattleTroops, handler.DeployTroop)
		apiRoutes.POST(constants.RouteBattleSpells, handler.DeploySpell)
		apiRoutes.POST(constants.RouteBattleEnd, handler.EndBattle)
		apiRoutes.GET(constants.RouteBattleWatch, hub.Watch)
		apiRoutes.GET(constants.RoutePlayerByID, handler.GetPlayer)
		apiRoutes.GET(constants.RouteLeaderboard, handler.ListLeaderboard)
		apiRoutes.GET(constants.RouteVersion, api.Version)
	}

	addr := tables.ServerAddress
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}
