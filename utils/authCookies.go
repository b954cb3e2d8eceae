package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie holding the sealed session id.
const SessionCookieName = "clinic.sid"

// SetSessionCookie writes an HttpOnly, SameSite=Lax session cookie. secure
// is off only for local development over plain http.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(ttl.Seconds()), "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}

// SessionCookie returns the raw cookie value, "" when absent.
func SessionCookie(c *gin.Context) string {
	v, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return v
}
