// Package handler exposes the read-only observer API: token issue, a
// listing of open meetings, and a websocket live feed of logged entries.
package handler

import (
	"net/http"

	"meetgogo/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler wires the observer endpoints to the storage service.
type Handler struct {
	Storage *storage.Service
	Secret  []byte
}

func NewHandler(s *storage.Service, secret []byte) *Handler {
	return &Handler{Storage: s, Secret: secret}
}

// ListMeetings returns the currently open sessions across all rooms.
func (h *Handler) ListMeetings(c *gin.Context) {
	if _, err := h.observerFromRequest(c); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	meetings, err := h.Storage.OpenSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list meetings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meetings": meetings})
}
