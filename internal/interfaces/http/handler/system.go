package handler

import (
	"time"

	"github.com/gin-gonic/gin"
)

// dbPinger reports database liveness
type dbPinger interface {
	Ping() error
}

// SystemHandler handles system-level HTTP requests
type SystemHandler struct {
	BaseHandler
	db dbPinger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db dbPinger) *SystemHandler {
	return &SystemHandler{db: db}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", h.Ping)
	rg.GET("/health", h.Health)
}

// Ping handles GET /ping
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, gin.H{
		"message":   "pong",
		"timestamp": time.Now().Unix(),
	})
}

// Health handles GET /health. The check fails when the database is
// unreachable so load balancers stop routing to this instance.
func (h *SystemHandler) Health(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		h.InternalError(c, "Database is unreachable")
		return
	}
	h.Success(c, gin.H{"status": "healthy"})
}
