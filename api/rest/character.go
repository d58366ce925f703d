package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aoisora/srpg-server/config"
	"github.com/aoisora/srpg-server/game/session"
	mw "github.com/aoisora/srpg-server/middleware"
	"github.com/aoisora/srpg-server/model"
)

const maxCharacters = 3

var validJobs = map[string]bool{
	"warrior": true,
	"mage":    true,
	"archer":  true,
	"cleric":  true,
}

// CharacterHandler handles character REST endpoints.
type CharacterHandler struct {
	db       *gorm.DB
	sessions *session.Manager
	game     config.GameConfig
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(db *gorm.DB, sessions *session.Manager, game config.GameConfig) *CharacterHandler {
	return &CharacterHandler{db: db, sessions: sessions, game: game}
}

// List handles GET /api/characters.
func (h *CharacterHandler) List(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	var chars []model.Character
	if err := h.db.Where("account_id = ?", accountID).Find(&chars).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"characters": chars})
}

type createCharacterRequest struct {
	Name string `json:"name" binding:"required,min=1,max=32"`
	Job  string `json:"job"  binding:"required"`
}

// Create handles POST /api/characters.
func (h *CharacterHandler) Create(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	var req createCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !validJobs[req.Job] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job"})
		return
	}

	var existing []model.Character
	if err := h.db.Select("id").Where("account_id = ?", accountID).Find(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if len(existing) >= maxCharacters {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max characters reached"})
		return
	}

	char := &model.Character{
		AccountID: accountID,
		Name:      req.Name,
		Job:       req.Job,
		Level:     1,
		HP:        h.game.StartingHP, MaxHP: h.game.StartingHP,
		MP: h.game.StartingMP, MaxMP: h.game.StartingMP,
		Attack: 10, Defense: 5, Speed: 10, Accuracy: 95, Evasion: 5,
	}

	if err := h.db.Create(char).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "character name already taken"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, char)
}

// Get handles GET /api/characters/:id. The response combines the stored
// row with the live session's equipment bonuses and active effects.
func (h *CharacterHandler) Get(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"character":       s.Character(),
		"turn":            s.Turn(),
		"equipment_stats": s.AppliedStats(),
		"active_effects":  s.ActiveEffects(),
	})
}

type deleteCharacterRequest struct {
	Password string `json:"password" binding:"required"`
}

// Delete handles DELETE /api/characters/:id.
func (h *CharacterHandler) Delete(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	charID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req deleteCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		return
	}

	// Verify the account password.
	var acc model.Account
	if err := h.db.First(&acc, accountID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
		return
	}

	// Delete only if the character belongs to this account.
	result := h.db.Where("id = ? AND account_id = ?", charID, accountID).Delete(&model.Character{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		return
	}

	// Drop the save row and any loaded session; the row is gone, so a
	// best-effort save during eviction failing is expected.
	h.db.Where("char_id = ?", charID).Delete(&model.SaveGame{})
	_ = h.sessions.Evict(c.Request.Context(), charID)

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
