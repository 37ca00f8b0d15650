package handlers

import (
	"errors"
	"net/http"

	"vtcland/services/dialogue"
	"vtcland/services/session"
	"vtcland/services/verification"
	"vtcland/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler exposes dialogue sessions over HTTP.
type ChatHandler struct {
	Sessions *session.Manager
	Engine   *dialogue.Engine
	Logger   *zap.Logger
}

func NewChatHandler(sessions *session.Manager, engine *dialogue.Engine, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Sessions: sessions, Engine: engine, Logger: logger}
}

type guardRequest struct {
	Token string `json:"token" binding:"required"`
}

type replyRequest struct {
	Text string `json:"text" binding:"max=1000"`
}

type createRequest struct {
	GuardToken string `json:"guardToken"`
}

// CreateSession opens a dialogue and returns its first state. A guard token
// sent along arms the guard right away; if it is rejected the session is
// still created and the client can retry through ArmGuard.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req createRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid session request", err.Error())
			return
		}
	}

	logger := getLogger(c, h.Logger)
	s := h.Sessions.Create()
	logger.Debug("Chat session created", zap.String("session", s.ID), zap.String("ip", c.ClientIP()))
	if req.GuardToken != "" {
		if err := h.Engine.ArmGuard(c.Request.Context(), s, req.GuardToken); err != nil {
			logger.Info("Guard token rejected at session start", zap.String("session", s.ID), zap.Error(err))
		}
	}
	c.JSON(http.StatusCreated, h.Engine.Snapshot(s))
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Engine.Snapshot(s))
}

// ArmGuard receives the anti-robot widget token for a session.
func (h *ChatHandler) ArmGuard(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	var req guardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid guard request", err.Error())
		return
	}
	if err := h.Engine.ArmGuard(c.Request.Context(), s, req.Token); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guardArmed": true})
}

// Reply feeds one user message to the session.
func (h *ChatHandler) Reply(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid reply", err.Error())
		return
	}
	turn, err := h.Engine.Reply(c.Request.Context(), s, req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, turn)
}

func (h *ChatHandler) Back(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	turn, err := h.Engine.Back(c.Request.Context(), s)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, turn)
}

func (h *ChatHandler) CloseSession(c *gin.Context) {
	if err := h.Sessions.Close(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) lookup(c *gin.Context) (*dialogue.Session, bool) {
	s, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return s, true
}

func (h *ChatHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Session not found", "")
	case errors.Is(err, dialogue.ErrBusy):
		utils.JSONError(c, http.StatusConflict, "A reply is already being processed", "")
	case errors.Is(err, dialogue.ErrCannotGoBack):
		utils.JSONError(c, http.StatusConflict, "Cannot go back from this step", "")
	case errors.Is(err, dialogue.ErrSessionClosed):
		utils.JSONError(c, http.StatusGone, "Session is closed", "")
	case errors.Is(err, verification.ErrGuardRejected):
		utils.JSONError(c, http.StatusForbidden, "Human verification failed", err.Error())
	default:
		getLogger(c, h.Logger).Error("Chat request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
	}
}
