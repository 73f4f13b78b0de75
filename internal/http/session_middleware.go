package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"auth-service/internal/service"
)

const sessionTokenKey = "session_token"

// RequireSessionCookie corta con 400 si falta el cookie de sesion. No valida
// el token: eso queda para el servicio.
func RequireSessionCookie() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || strings.TrimSpace(token) == "" {
			abortWithError(c, service.ErrMissingToken)
			return
		}
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}

// GetSessionToken obtiene el token guardado por RequireSessionCookie.
func GetSessionToken(c *gin.Context) (string, bool) {
	val, ok := c.Get(sessionTokenKey)
	if !ok {
		return "", false
	}
	token, ok := val.(string)
	return token, ok
}
