package http

import (
	"net/http"
	"time"
)

const (
	refreshCookieName = "refreshToken"
	refreshCookiePath = "/api/v1/auth"
)

// SessionCookies writes and clears the refresh-token cookie. The access token
// is never placed in a cookie.
type SessionCookies struct {
	secure bool
	now    func() time.Time
}

// NewSessionCookies returns a cookie writer. secure controls the Secure flag.
func NewSessionCookies(secure bool) *SessionCookies {
	return &SessionCookies{secure: secure, now: time.Now}
}

// Set stores token in the refresh cookie until expiresAt.
func (c *SessionCookies) Set(w http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(c.now()).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		Expires:  expiresAt.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Clear expires the refresh cookie in the browser.
func (c *SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// refreshTokenFromRequest returns the refresh cookie value, or "" when absent.
func refreshTokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
