package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aoisora/srpg-server/cache"
	"github.com/aoisora/srpg-server/game/session"
	"github.com/aoisora/srpg-server/model"
)

// SaveHandler handles save-game REST endpoints.
type SaveHandler struct {
	db       *gorm.DB
	cache    cache.Cache
	sessions *session.Manager
}

// NewSaveHandler creates a new SaveHandler.
func NewSaveHandler(db *gorm.DB, c cache.Cache, sessions *session.Manager) *SaveHandler {
	return &SaveHandler{db: db, cache: c, sessions: sessions}
}

// Save handles POST /api/characters/:id/save.
func (h *SaveHandler) Save(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	if err := h.sessions.Save(c.Request.Context(), s); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "saved"})
}

// Get handles GET /api/characters/:id/save. It serves the latest
// persisted snapshot, preferring the cache mirror over the DB row.
func (h *SaveHandler) Get(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}

	mirror, err := h.cache.HGetAll(c.Request.Context(), fmt.Sprintf("save:%d", s.CharID))
	if err == nil && mirror["inventory"] != "" && mirror["equipment"] != "" {
		c.JSON(http.StatusOK, gin.H{
			"inventory": json.RawMessage(mirror["inventory"]),
			"equipment": json.RawMessage(mirror["equipment"]),
			"source":    "cache",
		})
		return
	}

	var save model.SaveGame
	if err := h.db.Where("char_id = ?", s.CharID).First(&save).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no save found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"version":   save.Version,
		"inventory": json.RawMessage(save.Inventory),
		"equipment": json.RawMessage(save.Equipment),
		"source":    "db",
	})
}
