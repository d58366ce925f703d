package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aoisora/srpg-server/resource"
)

// ItemHandler serves the loaded item catalog.
type ItemHandler struct {
	catalog *resource.Catalog
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(catalog *resource.Catalog) *ItemHandler {
	return &ItemHandler{catalog: catalog}
}

// List handles GET /api/items.
func (h *ItemHandler) List(c *gin.Context) {
	defs := h.catalog.All()
	c.JSON(http.StatusOK, gin.H{"items": defs, "count": len(defs)})
}

// Get handles GET /api/items/:item_id. The validation result recorded
// when the catalog loaded is included so tooling can inspect repairs.
func (h *ItemHandler) Get(c *gin.Context) {
	id := c.Param("item_id")
	def, ok := h.catalog.Definition(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown item"})
		return
	}
	resp := gin.H{"item": def}
	if res, ok := h.catalog.Results()[id]; ok {
		resp["validation"] = res
	}
	c.JSON(http.StatusOK, resp)
}
