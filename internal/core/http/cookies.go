package http

import (
	"net/http"
	"strings"
	"time"
)

// CookieConfig describes the session cookie. The cookie carries the opaque
// session token and nothing else; it is always HTTP-only so scripts cannot
// read it.
type CookieConfig struct {
	Name     string
	Domain   string
	SameSite string
	Secure   bool
	TTL      time.Duration
}

// ParseSameSite maps a config string to the http constant, defaulting to Lax.
func ParseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Session builds the cookie carrying the session token.
func (c CookieConfig) Session(token string) *http.Cookie {
	ck := &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: ParseSameSite(c.SameSite),
	}
	if strings.TrimSpace(c.Domain) != "" {
		ck.Domain = c.Domain
	}
	if c.TTL > 0 {
		ck.Expires = time.Now().Add(c.TTL).UTC()
		ck.MaxAge = int(c.TTL.Seconds())
	}
	return ck
}

// Deletion builds an expired cookie that clears the session cookie on the
// client.
func (c CookieConfig) Deletion() *http.Cookie {
	ck := &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: ParseSameSite(c.SameSite),
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
	}
	if strings.TrimSpace(c.Domain) != "" {
		ck.Domain = c.Domain
	}
	return ck
}

// sessionToken extracts the opaque token from the request cookie. Missing
// cookie means an anonymous request, which the authorize middleware rejects.
func sessionToken(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
