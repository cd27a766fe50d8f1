package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const adminTokenHeader = "X-Admin-Token"

// adminAuth guards staff-only routes. An empty configured token disables
// the check, which is only acceptable in local development.
func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := s.config.Admin.Token
		if token == "" {
			c.Next()
			return
		}
		got := c.GetHeader(adminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			return
		}
		c.Next()
	}
}
