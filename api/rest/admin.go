package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aoisora/srpg-server/game/session"
	"github.com/aoisora/srpg-server/model"
	"github.com/aoisora/srpg-server/scheduler"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	db       *gorm.DB
	sessions *session.Manager
	sched    *scheduler.Scheduler
	logger   *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(db *gorm.DB, sessions *session.Manager, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, sessions: sessions, sched: sched, logger: logger}
}

// Metrics returns server health metrics.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active_sessions": h.sessions.Count(),
		"scheduler_tasks": h.sched.Tasks(),
	})
}

// ListSessions returns a snapshot of every loaded character session.
// GET /api/admin/sessions
func (h *AdminHandler) ListSessions(c *gin.Context) {
	type sessionInfo struct {
		CharID    int64  `json:"char_id"`
		AccountID int64  `json:"account_id"`
		Name      string `json:"name"`
		Turn      int64  `json:"turn"`
	}
	all := h.sessions.All()
	result := make([]sessionInfo, 0, len(all))
	for _, s := range all {
		ch := s.Character()
		result = append(result, sessionInfo{
			CharID:    s.CharID,
			AccountID: s.AccountID,
			Name:      ch.Name,
			Turn:      s.Turn(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": result, "count": len(result)})
}

// ForceSave persists every loaded session immediately.
// POST /api/admin/save
func (h *AdminHandler) ForceSave(c *gin.Context) {
	h.sessions.SaveAll(c.Request.Context())
	h.logger.Info("admin forced save-all")
	c.JSON(http.StatusOK, gin.H{"ok": true, "saved": h.sessions.Count()})
}

// BanAccount bans or unbans a player account.
// POST /api/admin/accounts/:id/ban
func (h *AdminHandler) BanAccount(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Ban bool `json:"ban"`
	}
	_ = c.ShouldBindJSON(&req)

	status := model.AccountActive
	if req.Ban {
		status = model.AccountBanned
	}
	result := h.db.Model(&model.Account{}).Where("id = ?", accountID).Update("status", status)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	// Evict the banned account's sessions so its state is flushed.
	if req.Ban {
		for _, s := range h.sessions.All() {
			if s.AccountID == accountID {
				if err := h.sessions.Evict(c.Request.Context(), s.CharID); err != nil {
					h.logger.Warn("evict on ban failed", zap.Int64("char_id", s.CharID), zap.Error(err))
				}
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
}

// ListSchedulerTasks returns every registered ticker task with its run counters.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.Tasks()})
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// WARNING: if adminKey is empty all admin endpoints are disabled (503) so the
// server cannot be accidentally deployed without protection. Set a non-empty
// server.admin_key in config to enable admin routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if key != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
