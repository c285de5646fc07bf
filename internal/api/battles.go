package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ravenfort/siegecraft/internal/constants"
	"github.com/ravenfort/siegecraft/internal/service"
)

type StartBattleRequest struct {
	AttackerID string `json:"attacker_id" binding:"required"`
	DefenderID string `json:"defender_id" binding:"required"`
	IsRevenge  bool   `json:"is_revenge"`
}

// StartBattle validates the parties and registers a new battle in the scout
// phase.
func (h *BattleHandler) StartBattle(c *gin.Context) {
	var req StartBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	b, err := h.mgr.StartBattle(req.AttackerID, req.DefenderID, service.StartBattleOptions{IsRevenge: req.IsRevenge})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"battle_id": b.ID, "battle": b})
}

type DeployTroopRequest struct {
	PlayerID  string `json:"player_id" binding:"required"`
	TroopType string `json:"troop_type" binding:"required"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

// DeployTroop places one troop on the arena border.
func (h *BattleHandler) DeployTroop(c *gin.Context) {
	battleID := c.Param("battleID")
	var req DeployTroopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	t, err := h.mgr.DeployTroop(battleID, req.PlayerID, req.TroopType, req.X, req.Y)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"troop": t})
}

type DeploySpellRequest struct {
	PlayerID  string `json:"player_id" binding:"required"`
	SpellType string `json:"spell_type" binding:"required"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

// DeploySpell casts a spell at a grid cell.
func (h *BattleHandler) DeploySpell(c *gin.Context) {
	battleID := c.Param("battleID")
	var req DeploySpellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if err := h.mgr.DeploySpell(battleID, req.PlayerID, req.SpellType, req.X, req.Y); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Spell deployed"})
}

// EndBattle terminates a battle. The first call returns the computed
// result; later calls return an empty body.
func (h *BattleHandler) EndBattle(c *gin.Context) {
	battleID := c.Param("battleID")
	res, err := h.mgr.EndBattle(battleID)
	if err != nil {
		writeError(c, err)
		return
	}
	if res == nil {
		c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Battle already ended"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}

// GetBattle returns a read-only snapshot of the battle, including exact
// per-building HP for presentation layers.
func (h *BattleHandler) GetBattle(c *gin.Context) {
	battleID := c.Param("battleID")
	b := h.mgr.GetBattleState(battleID)
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
		return
	}
	resp := gin.H{"battle": b}
	if res := h.mgr.Result(battleID); res != nil {
		resp["result"] = res
	}
	c.JSON(http.StatusOK, resp)
}

// GetPlayer returns a player profile.
func (h *BattleHandler) GetPlayer(c *gin.Context) {
	p, err := h.repo.GetProfileByUUID(c.Param("playerUUID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": p})
}

// ListLeaderboard returns the top players by trophies.
func (h *BattleHandler) ListLeaderboard(c *gin.Context) {
	players, err := h.repo.GetTopPlayers(20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLeaderboard})
		return
	}
	c.JSON(http.StatusOK, gin.H{"players": players})
}
