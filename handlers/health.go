package handlers

import (
	"net/http"

	"vtcland/services/session"
	"vtcland/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Status   func() utils.HealthStatus
	Sessions *session.Manager
}

func NewHealthHandler(status func() utils.HealthStatus, sessions *session.Manager) *HealthHandler {
	return &HealthHandler{Status: status, Sessions: sessions}
}

// Health reports the dependency status; 503 when a dependency is down.
func (h *HealthHandler) Health(c *gin.Context) {
	st := h.Status()
	code := http.StatusOK
	status := "ok"
	if !st.Healthy() {
		code = http.StatusServiceUnavailable
		status = "degraded"
	}
	c.JSON(code, gin.H{
		"status":   status,
		"message":  "Hi, I'm VTCElite",
		"checks":   st,
		"sessions": h.Sessions.Len(),
	})
}
