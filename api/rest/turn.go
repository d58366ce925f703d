package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aoisora/srpg-server/game/session"
)

// TurnHandler advances a character's game turn.
type TurnHandler struct {
	db       *gorm.DB
	sessions *session.Manager
}

// NewTurnHandler creates a new TurnHandler.
func NewTurnHandler(db *gorm.DB, sessions *session.Manager) *TurnHandler {
	return &TurnHandler{db: db, sessions: sessions}
}

// Advance handles POST /api/characters/:id/turn. Each call ticks every
// temporary effect down by one turn and reports the ones that expired.
func (h *TurnHandler) Advance(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	res := s.AdvanceTurn()
	c.JSON(http.StatusOK, gin.H{
		"turn":           res.Turn,
		"expired":        res.Expired,
		"active_effects": s.ActiveEffects(),
	})
}

// Effects handles GET /api/characters/:id/effects.
func (h *TurnHandler) Effects(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"effects": s.ActiveEffects()})
}
