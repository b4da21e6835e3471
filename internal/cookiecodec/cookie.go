package cookiecodec

import (
	"net/http"
	"time"
)

// Cookie names used by the emulated platform
const (
	SessionCookie     = "StaticWebAppsAuthCookie"
	AuthContextCookie = "StaticWebAppsAuthContextCookie"
)

// SessionExpiry is the fixed lifetime of an issued session cookie
const SessionExpiry = 8 * time.Hour

// AuthContext is the payload of the auth-context cookie: the login nonce and
// where to send the browser once the callback completes.
type AuthContext struct {
	AuthNonce            string `json:"authNonce"`
	PostLoginRedirectURI string `json:"postLoginRedirectUri,omitempty"`
}

// NewSessionCookie builds the session cookie carrying an encoded principal
func NewSessionCookie(value, domain string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Domain:   domain,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(SessionExpiry),
	}
}

// NewAuthContextCookie builds the short-lived cookie set when a login begins
func NewAuthContextCookie(value, domain string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     AuthContextCookie,
		Value:    value,
		Domain:   domain,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(10 * time.Minute / time.Second),
	}
}

// Jar accumulates cookies to set and to delete while a request is being
// handled, then applies them to the response in one place.
type Jar struct {
	cookies []*http.Cookie
}

// AddSet schedules a cookie to be sent with the response
func (j *Jar) AddSet(c *http.Cookie) {
	j.cookies = append(j.cookies, c)
}

// AddDelete schedules removal of a cookie by name
func (j *Jar) AddDelete(name string) {
	j.cookies = append(j.cookies, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// Cookies returns everything scheduled so far, in insertion order
func (j *Jar) Cookies() []*http.Cookie {
	return j.cookies
}

// Apply writes all scheduled Set-Cookie headers to the response
func (j *Jar) Apply(w http.ResponseWriter) {
	for _, c := range j.cookies {
		http.SetCookie(w, c)
	}
}
