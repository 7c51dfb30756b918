package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionContextKey = "pos_session_id"

// Session ensures every request carries a session id cookie, minting one on
// the first visit. The id is random; the cart and flash messages live
// server-side under it.
func Session(cookieName string, maxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || sid == "" {
			sid = uuid.New().String()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     cookieName,
				Value:    sid,
				Path:     "/",
				MaxAge:   maxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(sessionContextKey, sid)
		c.Next()
	}
}

// SessionID returns the session id set by the Session middleware.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}
