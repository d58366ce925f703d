package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aoisora/srpg-server/game/session"
	mw "github.com/aoisora/srpg-server/middleware"
	"github.com/aoisora/srpg-server/model"
)

// charSession resolves the :id route param, verifies the character
// belongs to the authenticated account, and loads its game session.
// On failure it writes the error response and returns ok=false.
func charSession(c *gin.Context, db *gorm.DB, sessions *session.Manager) (*session.Session, bool) {
	accountID := mw.GetAccountID(c)
	charID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}

	var char model.Character
	if err := db.Where("id = ? AND account_id = ?", charID, accountID).First(&char).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		return nil, false
	}

	s, err := sessions.Load(c.Request.Context(), charID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return nil, false
	}
	return s, true
}
