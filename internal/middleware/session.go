package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"farmstore/internal/session"
)

const (
	SessionCookie = "farm_session"
	SessionHeader = "X-Session-ID"
	sessionKey    = "session"
	cookieMaxAge  = 60 * 60 * 24 * 30
)

// Shopper resolves the caller's session from the X-Session-ID header or the
// farm_session cookie, issuing a new one when neither holds a valid id.
func Shopper(manager *session.Manager, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(SessionHeader))
		if id == "" {
			id, _ = c.Cookie(SessionCookie)
		}

		if !session.ValidID(id) {
			if id != "" {
				log.Println("[SESSION] [WARN] ignoring malformed session id")
			}
			id = session.NewID()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, cookieMaxAge, "/", "", secureCookie, true)
		c.Header(SessionHeader, id)

		c.Set(sessionKey, manager.Get(c.Request.Context(), id))
		c.Next()
	}
}

// CurrentSession returns the session set by Shopper.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
