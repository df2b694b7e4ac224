package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

// generateJWT issues a token carrying the observer's anonymous id.
func (h *Handler) generateJWT(observerID string) (string, error) {
	claims := jwt.MapClaims{
		"observer_id": observerID,
		"exp":         time.Now().Add(time.Hour * 72).Unix(),
		"iss":         "meetgogo-service",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.Secret)
}

// validateAndGetObserverID checks the token signature and expiry and
// extracts the observer id.
func (h *Handler) validateAndGetObserverID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.Secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	observerID, ok := claims["observer_id"].(string)
	if !ok || observerID == "" {
		return "", fmt.Errorf("token missing observer_id")
	}
	return observerID, nil
}

// observerFromRequest extracts and validates the bearer token.
func (h *Handler) observerFromRequest(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("authorization token missing")
	}
	return h.validateAndGetObserverID(strings.TrimPrefix(authHeader, "Bearer "))
}

// GetToken creates an observer id and returns a JWT for it.
func (h *Handler) GetToken(c *gin.Context) {
	observerUUID, _ := uuid.NewRandom()
	observerID := observerUUID.String()

	token, err := h.generateJWT(observerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "observer_id": observerID})
}
