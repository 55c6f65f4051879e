package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const AdminTokenHeader = "X-Admin-Token"

// AdminAuth guards operator routes. With an empty token the routes are disabled.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(AdminTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			logrus.Infof("AdminAuth: rejected %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "valid '" + AdminTokenHeader + "' header is required"})
			return
		}
		c.Next()
	}
}
