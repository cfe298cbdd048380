package security

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

func GetCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetAuthCookies writes the access/refresh pair as HTTP-only secure cookies.
func SetAuthCookies(w http.ResponseWriter, access, refresh string, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, authCookie(AccessTokenCookie, access, accessTTL))
	http.SetCookie(w, authCookie(RefreshTokenCookie, refresh, refreshTTL))
}

// ClearAuthCookies expires both credential transports.
func ClearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, authCookie(AccessTokenCookie, "", -time.Hour))
	http.SetCookie(w, authCookie(RefreshTokenCookie, "", -time.Hour))
}

func authCookie(name, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	} else {
		c.MaxAge = -1
	}
	return c
}
