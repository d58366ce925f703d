package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aoisora/srpg-server/audit"
	"github.com/aoisora/srpg-server/game/item"
	"github.com/aoisora/srpg-server/game/session"
	mw "github.com/aoisora/srpg-server/middleware"
	"github.com/aoisora/srpg-server/resource"
)

// EquipmentHandler handles equipment REST endpoints.
type EquipmentHandler struct {
	db       *gorm.DB
	sessions *session.Manager
	catalog  *resource.Catalog
	audit    *audit.Service
}

// NewEquipmentHandler creates a new EquipmentHandler.
func NewEquipmentHandler(db *gorm.DB, sessions *session.Manager, catalog *resource.Catalog, auditSvc *audit.Service) *EquipmentHandler {
	return &EquipmentHandler{db: db, sessions: sessions, catalog: catalog, audit: auditSvc}
}

func (h *EquipmentHandler) log(c *gin.Context, s *session.Session, action string, req, resp interface{}) {
	if h.audit == nil {
		return
	}
	accountID := mw.GetAccountID(c)
	h.audit.Log(audit.AuditEntry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &accountID,
		CharID:    &s.CharID,
		Action:    action,
		Request:   req,
		Response:  resp,
		IP:        c.ClientIP(),
	})
}

// Get handles GET /api/characters/:id/equipment.
func (h *EquipmentHandler) Get(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	set := s.Equipped()
	slots := make(map[item.Slot]*item.Equipment, len(item.Slots))
	for _, slot := range item.Slots {
		slots[slot] = set.Get(slot)
	}
	c.JSON(http.StatusOK, gin.H{
		"slots":         slots,
		"applied_stats": s.AppliedStats(),
	})
}

type equipRequest struct {
	ItemID string `json:"item_id" binding:"required"`
	Slot   string `json:"slot"    binding:"required"`
}

// Equip handles POST /api/characters/:id/equipment/equip.
// The item must already be in the character's inventory.
func (h *EquipmentHandler) Equip(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	var req equipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot := item.Slot(req.Slot)
	if !slot.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return
	}
	facet := h.catalog.Equipment(req.ItemID)
	if facet == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item is not equippable"})
		return
	}

	eq := *facet
	res := s.Equip(&eq, slot)
	h.log(c, s, "equipment.equip", req, res)
	if !res.Success {
		c.JSON(http.StatusConflict, res)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":        res,
		"applied_stats": s.AppliedStats(),
	})
}

type unequipRequest struct {
	Slot string `json:"slot" binding:"required"`
}

// Unequip handles POST /api/characters/:id/equipment/unequip.
func (h *EquipmentHandler) Unequip(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	var req unequipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot := item.Slot(req.Slot)
	if !slot.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return
	}

	res := s.Unequip(slot)
	h.log(c, s, "equipment.unequip", req, res)
	if !res.Success {
		c.JSON(http.StatusConflict, res)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":        res,
		"applied_stats": s.AppliedStats(),
	})
}

// Requirements handles GET /api/characters/:id/equipment/requirements?item_id=X.
// It reports whether the character could equip the item without changing anything.
func (h *EquipmentHandler) Requirements(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	itemID := c.Query("item_id")
	facet := h.catalog.Equipment(itemID)
	if facet == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item is not equippable"})
		return
	}

	check := s.CheckRequirements(facet)
	c.JSON(http.StatusOK, check)
}
