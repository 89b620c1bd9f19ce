// internal/session/cookie.go
package session

import (
	"net/http"
	"time"
)

// CookieName is the only cookie the gateway reads or writes.
const CookieName = "fauna-token"

// TokenFromRequest returns the fauna-token value carried by r, or "" when the
// request has no Cookie header or the header has no such key.
func TokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// TokenFromHeader parses a raw Cookie header value.
func TokenFromHeader(raw string) string {
	if raw == "" {
		return ""
	}
	r := &http.Request{Header: http.Header{"Cookie": {raw}}}
	return TokenFromRequest(r)
}

// Codec builds the outbound cookie instructions. Secure is set when the
// gateway runs in production.
type Codec struct {
	Secure bool
}

// Set carries a freshly issued secret to the browser. No Expires or Max-Age,
// so the cookie lives for the browser session.
func (c Codec) Set(secret string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    secret,
		HttpOnly: true,
		Secure:   c.Secure,
	}
}

// Clear overwrites the cookie with an empty value that already expired.
func (c Codec) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   c.Secure,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	}
}

// IsClear reports whether ck is a clear instruction for the session cookie.
func IsClear(ck *http.Cookie) bool {
	return ck != nil && ck.Name == CookieName && ck.Value == "" && ck.MaxAge < 0
}
