package battle

// Error is a tagged, caller-facing failure. The code is stable and machine
// readable; operations that return one mutate no state.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

var (
	ErrBattleNotFound    = &Error{Code: "BATTLE_NOT_FOUND", Message: "battle not found"}
	ErrNotYourBattle     = &Error{Code: "NOT_YOUR_BATTLE", Message: "caller does not own this battle"}
	ErrScoutPhase        = &Error{Code: "SCOUT_PHASE", Message: "cannot deploy during the scout window"}
	ErrBattleEnded       = &Error{Code: "BATTLE_ENDED", Message: "battle has already ended"}
	ErrInvalidTroopType  = &Error{Code: "INVALID_TROOP_TYPE", Message: "unknown troop type"}
	ErrInvalidSpellType  = &Error{Code: "INVALID_SPELL_TYPE", Message: "unknown spell type"}
	ErrInvalidPosition   = &Error{Code: "INVALID_DEPLOY_POSITION", Message: "deploy position must be an integer grid cell on the outer border"}
	ErrNoTroopsAvailable = &Error{Code: "NO_TROOPS_AVAILABLE", Message: "no troops of that type left to deploy"}
	ErrNoSpellsAvailable = &Error{Code: "NO_SPELLS_AVAILABLE", Message: "no spells of that type left to deploy"}
	ErrAlreadyInBattle   = &Error{Code: "ALREADY_IN_BATTLE", Message: "attacker is already in a battle"}
	ErrDefenderShielded  = &Error{Code: "DEFENDER_SHIELDED", Message: "defender is protected by a shield"}
	ErrNoArmy            = &Error{Code: "NO_ARMY", Message: "attacker has no deployable troops"}
	ErrPlayerNotFound    = &Error{Code: "PLAYER_NOT_FOUND", Message: "player profile not found"}
)
