package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderUser carries the authenticated user identity injected by the
	// auth proxy in front of this service.
	HeaderUser = "X-User-ID"

	contextUserIDKey = "user_id"
)

func (s *Server) UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUser))
		if userID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(contextUserIDKey)
}
