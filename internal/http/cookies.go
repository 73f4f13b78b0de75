package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookieName es el nombre del cookie que lleva el token de sesion.
const SessionCookieName = "jwt"

type cookieConfig struct {
	secure bool
	maxAge time.Duration
}

func (cfg cookieConfig) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(cfg.maxAge.Seconds()), "/", "", cfg.secure, true)
}

func (cfg cookieConfig) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", cfg.secure, true)
}
