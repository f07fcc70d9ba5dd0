package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/venue-pos-api/internal/presentation/http/middleware"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// requireUser writes a 401 and returns false when no user is signed in.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return uuid.Nil, false
	}
	return *userID, true
}

// pathID parses the uuid path parameter name, writing a 400 on failure.
func pathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}
