package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ravenfort/siegecraft/internal/battle"
	"github.com/ravenfort/siegecraft/internal/constants"
	"github.com/ravenfort/siegecraft/internal/service"
	"github.com/ravenfort/siegecraft/internal/storage"
)

// BattleHandler groups the HTTP handlers for the battle contract.
type BattleHandler struct {
	mgr  *service.Manager
	repo storage.Repository
}

// NewBattleHandler creates a BattleHandler backed by the session manager
// and the profile store.
func NewBattleHandler(mgr *service.Manager, repo storage.Repository) *BattleHandler {
	return &BattleHandler{mgr: mgr, repo: repo}
}

// writeError maps a tagged battle error to an HTTP status, keeping the code
// in the payload so clients can branch on it.
func writeError(c *gin.Context, err error) {
	be, ok := err.(*battle.Error)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: err.Error()})
		return
	}
	status := http.StatusBadRequest
	switch be {
	case battle.ErrBattleNotFound, battle.ErrPlayerNotFound:
		status = http.StatusNotFound
	case battle.ErrNotYourBattle:
		status = http.StatusForbidden
	case battle.ErrScoutPhase, battle.ErrBattleEnded, battle.ErrAlreadyInBattle,
		battle.ErrDefenderShielded, battle.ErrNoTroopsAvailable, battle.ErrNoSpellsAvailable,
		battle.ErrNoArmy:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{constants.JSONKeyError: be.Message, constants.JSONKeyCode: be.Code})
}
