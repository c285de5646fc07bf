package constants

// Centralized constants for env keys, routes, JSON keys and log fields.
const (
	// Environment variable keys
	EnvConfigPath = "SIEGECRAFT_CONFIG"
	EnvDBPath     = "SIEGECRAFT_DB"
)

// Routes used by the backend router
const (
	RouteAPIPrefix    = "/api"
	RouteBattles      = "/battles"
	RouteBattleByID   = "/battles/:battleID"
	RouteBattleTroops = "/battles/:battleID/troops"
	RouteBattleSpells = "/battles/:battleID/spells"
	RouteBattleEnd    = "/battles/:battleID/end"
	RouteBattleWatch  = "/battles/:battleID/watch"
	RoutePlayerByID   = "/players/:playerUUID"
	RouteLeaderboard  = "/leaderboard"
	RouteVersion      = "/version"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyCode    = "code"
	JSONKeyMessage = "message"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest         = "Invalid request"
	ErrBattleNotFound         = "Battle not found"
	ErrFailedFetchLeaderboard = "Failed to fetch leaderboard"
)

// Logging field names
const (
	LogFieldBattleID = "battle_id"
	LogFieldPlayer   = "player_uuid"
	LogFieldAddr     = "addr"
	LogFieldTroop    = "troop_type"
	LogFieldSpell    = "spell_type"
)
