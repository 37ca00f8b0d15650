package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups the endpoint handlers registered by routes.
type HandlerBundle struct {
	// Chat endpoints
	CreateSession gin.HandlerFunc
	GetSession    gin.HandlerFunc
	ArmGuard      gin.HandlerFunc
	Reply         gin.HandlerFunc
	Back          gin.HandlerFunc
	CloseSession  gin.HandlerFunc

	// Health endpoint
	Health gin.HandlerFunc
}

// NewHandlerBundle wires a chat handler and a health handler into a bundle.
func NewHandlerBundle(chat *ChatHandler, health *HealthHandler) *HandlerBundle {
	return &HandlerBundle{
		CreateSession: chat.CreateSession,
		GetSession:    chat.GetSession,
		ArmGuard:      chat.ArmGuard,
		Reply:         chat.Reply,
		Back:          chat.Back,
		CloseSession:  chat.CloseSession,
		Health:        health.Health,
	}
}
