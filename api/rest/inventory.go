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

// InventoryHandler handles inventory REST endpoints.
type InventoryHandler struct {
	db       *gorm.DB
	sessions *session.Manager
	catalog  *resource.Catalog
	audit    *audit.Service
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(db *gorm.DB, sessions *session.Manager, catalog *resource.Catalog, auditSvc *audit.Service) *InventoryHandler {
	return &InventoryHandler{db: db, sessions: sessions, catalog: catalog, audit: auditSvc}
}

func (h *InventoryHandler) log(c *gin.Context, s *session.Session, action string, req, resp interface{}, errMsg string) {
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
		Error:     errMsg,
		IP:        c.ClientIP(),
	})
}

// occupied filters the fixed slot array down to the slots holding items.
func occupied(slots []item.InventorySlot) []item.InventorySlot {
	out := make([]item.InventorySlot, 0, len(slots))
	for _, s := range slots {
		if !s.Empty() {
			out = append(out, s)
		}
	}
	return out
}

// List handles GET /api/characters/:id/inventory.
func (h *InventoryHandler) List(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	used, max, gold := s.InventoryStatus()
	c.JSON(http.StatusOK, gin.H{
		"items":      occupied(s.Items()),
		"used_slots": used,
		"max_slots":  max,
		"gold":       gold,
	})
}

type addItemRequest struct {
	ItemID   string `json:"item_id"  binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// AddItem handles POST /api/characters/:id/inventory/items.
func (h *InventoryHandler) AddItem(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	def, ok := h.catalog.Definition(req.ItemID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown item"})
		return
	}

	res := s.AddItem(def.Base, req.Quantity)
	h.log(c, s, "inventory.add", req, res, "")
	if !res.Success {
		c.JSON(http.StatusConflict, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

type removeItemRequest struct {
	ItemID   string `json:"item_id"  binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// RemoveItem handles DELETE /api/characters/:id/inventory/items.
func (h *InventoryHandler) RemoveItem(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	var req removeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := s.RemoveItem(req.ItemID, req.Quantity)
	h.log(c, s, "inventory.remove", req, res, "")
	if !res.Success {
		c.JSON(http.StatusConflict, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

type useItemRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	TargetID int64  `json:"target_id"`
}

// UseItem handles POST /api/characters/:id/inventory/use.
// Items are always used on the session's own character. A target_id, if
// sent, must match; anything else would apply effects to one character
// while tracking them under another.
func (h *InventoryHandler) UseItem(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	var req useItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TargetID != 0 && req.TargetID != s.CharID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target must be the session's own character"})
		return
	}

	res := s.UseItem(req.ItemID)
	h.log(c, s, "inventory.use", req, res, "")
	if !res.Success {
		c.JSON(http.StatusConflict, res)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":    res,
		"character": s.Character(),
	})
}

type sortRequest struct {
	Key string `json:"key" binding:"required"`
}

// Sort handles POST /api/characters/:id/inventory/sort.
func (h *InventoryHandler) Sort(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := item.SortKey(req.Key)
	if !s.SortItems(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": occupied(s.Items())})
}

type goldRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// AdjustGold handles POST /api/characters/:id/inventory/gold.
// A positive amount earns gold, a negative amount spends it.
func (h *InventoryHandler) AdjustGold(c *gin.Context) {
	s, ok := charSession(c, h.db, h.sessions)
	if !ok {
		return
	}
	var req goldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var done bool
	if req.Amount > 0 {
		done = s.AddGold(req.Amount)
	} else {
		done = s.SpendGold(-req.Amount)
	}
	h.log(c, s, "inventory.gold", req, gin.H{"ok": done}, "")
	if !done {
		c.JSON(http.StatusConflict, gin.H{"error": "not enough gold"})
		return
	}
	_, _, gold := s.InventoryStatus()
	c.JSON(http.StatusOK, gin.H{"gold": gold})
}
