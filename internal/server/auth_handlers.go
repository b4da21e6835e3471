package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/localweb/auth-front/internal/claims"
	"github.com/localweb/auth-front/internal/config"
	"github.com/localweb/auth-front/internal/cookiecodec"
	"github.com/localweb/auth-front/internal/crypto"
	"github.com/localweb/auth-front/internal/idp"
	jsonwriter "github.com/localweb/auth-front/internal/json"
	"github.com/localweb/auth-front/internal/log"
	"github.com/localweb/auth-front/internal/roles"
	"github.com/localweb/auth-front/internal/urlutil"
)

// AuthHandlers provides the platform auth HTTP handlers with dependency injection
type AuthHandlers struct {
	cfg        *config.Config
	registry   *idp.Registry
	codec      *cookiecodec.Codec
	augmentor  *roles.Augmentor
	httpClient *http.Client
}

// NewAuthHandlers creates new auth handlers. The registry is injected so
// tests can point providers at fake endpoints.
func NewAuthHandlers(cfg *config.Config, registry *idp.Registry, codec *cookiecodec.Codec) *AuthHandlers {
	h := &AuthHandlers{
		cfg:        cfg,
		registry:   registry,
		codec:      codec,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	if cfg.RolesSource != "" {
		h.augmentor = roles.New(cfg.Addr(), cfg.RolesSource)
	}
	return h
}

// LoginHandler begins a login: it mints the nonce, sets the auth-context
// cookie, and redirects the browser to the provider's authorization endpoint.
func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("provider")
	descriptor, ok := h.registry.Lookup(providerID)
	if !ok {
		http.Error(w, fmt.Sprintf("Provider '%s' not found", providerID), http.StatusBadRequest)
		return
	}

	creds, _ := h.cfg.Provider(providerID)
	if !creds.Configured() {
		http.Error(w, fmt.Sprintf("Provider '%s' is not configured", providerID), http.StatusBadRequest)
		return
	}

	nonce, err := crypto.NewNonce()
	if err != nil {
		log.LogError("Failed to mint login nonce: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	authCtx := cookiecodec.AuthContext{
		AuthNonce:            nonce,
		PostLoginRedirectURI: r.URL.Query().Get("post_login_redirect_uri"),
	}
	encoded, err := h.codec.Encode(authCtx)
	if err != nil {
		log.LogError("Failed to encode auth context: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	jar := &cookiecodec.Jar{}
	jar.AddSet(cookiecodec.NewAuthContextCookie(encoded, h.cfg.Host, h.cfg.SecureCookies()))
	jar.Apply(w)

	query := url.Values{}
	query.Set("client_id", creds.ID())
	query.Set("redirect_uri", h.callbackURL(providerID))
	query.Set("response_type", "code")
	query.Set("scope", strings.Join(descriptor.Scopes, " "))
	query.Set("state", crypto.HashState(nonce))
	if descriptor.ExchangeStyle == idp.ExchangeBasicVerifier {
		// Plain-text PKCE challenge matching the fixed verifier sent on exchange
		query.Set("code_challenge", "challenge")
		query.Set("code_challenge_method", "plain")
	}

	log.LogInfoWithFields("auth", "Login started", map[string]any{
		"provider": providerID,
	})

	http.Redirect(w, r, descriptor.AuthorizeEndpoint.URL()+"?"+query.Encode(), http.StatusFound)
}

// CallbackHandler completes the authorization-code handshake. Validation runs
// strictly before any outbound call: provider, cookie signature, state/nonce
// binding, nonce expiry, provider configuration. Any failure short-circuits;
// the auth-context cookie is scheduled for deletion on every terminal path
// that saw one.
func (h *AuthHandlers) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("provider")
	descriptor, ok := h.registry.Lookup(providerID)
	if !ok {
		http.Error(w, fmt.Sprintf("Provider '%s' not found", providerID), http.StatusBadRequest)
		return
	}

	cookie, err := r.Cookie(cookiecodec.AuthContextCookie)
	if err != nil {
		http.Error(w, "Invalid login request", http.StatusUnauthorized)
		return
	}

	var authCtx cookiecodec.AuthContext
	if err := h.codec.Decode(cookie.Value, &authCtx); err != nil {
		log.LogWarnWithFields("auth", "Auth context cookie failed validation", map[string]any{
			"provider": providerID,
			"error":    err.Error(),
		})
		h.failCallback(w, "Invalid login request", http.StatusUnauthorized)
		return
	}

	if authCtx.AuthNonce == "" || crypto.HashState(authCtx.AuthNonce) != r.URL.Query().Get("state") {
		h.failCallback(w, "Invalid login request", http.StatusUnauthorized)
		return
	}

	if crypto.NonceExpired(authCtx.AuthNonce) {
		h.failCallback(w, "Login timed out. Please try again.", http.StatusUnauthorized)
		return
	}

	creds, _ := h.cfg.Provider(providerID)
	if !creds.Configured() {
		h.failCallback(w, fmt.Sprintf("Provider '%s' is not configured", providerID), http.StatusBadRequest)
		return
	}

	// Validation passed: run the handshake. Upstream failures do not fail the
	// callback; they just mean no session is established.
	ctx := r.Context()
	var principal *claims.ClientPrincipal

	token, err := idp.ExchangeCode(ctx, h.httpClient, descriptor, creds, r.URL.Query().Get("code"), h.callbackURL(providerID))
	if err != nil {
		log.LogErrorWithFields("auth", "Token exchange failed", map[string]any{
			"provider": providerID,
			"error":    err.Error(),
		})
	} else {
		profile, err := idp.FetchUserInfo(ctx, h.httpClient, descriptor, token)
		if err != nil {
			log.LogErrorWithFields("auth", "User info fetch failed", map[string]any{
				"provider": providerID,
				"error":    err.Error(),
			})
		} else {
			principal = claims.Normalize(profile, descriptor, creds.ID())
			if principal == nil {
				log.LogErrorWithFields("auth", "Claims normalization produced no principal", map[string]any{
					"provider": providerID,
				})
			}
		}
	}

	if principal != nil && h.augmentor.Enabled() {
		if err := h.augmentor.Augment(ctx, principal); err != nil {
			// Best effort: the principal keeps its default roles. Logged so
			// misconfigured roles sources are observable.
			log.LogWarnWithFields("roles", "Role augmentation failed", map[string]any{
				"provider": providerID,
				"error":    err.Error(),
			})
		}
	}

	jar := &cookiecodec.Jar{}
	jar.AddDelete(cookiecodec.AuthContextCookie)

	if principal != nil {
		encoded, err := h.codec.Encode(principal)
		if err != nil {
			log.LogError("Failed to encode session cookie: %v", err)
		} else {
			jar.AddSet(cookiecodec.NewSessionCookie(encoded, h.cfg.Host, h.cfg.SecureCookies()))
			log.LogInfoWithFields("auth", "Session established", map[string]any{
				"provider": providerID,
				"user":     principal.UserDetails,
			})
		}
	}

	jar.Apply(w)

	location := authCtx.PostLoginRedirectURI
	if location == "" {
		location = "/"
	}
	http.Redirect(w, r, location, http.StatusFound)
}

// MeHandler reports the principal carried by the session cookie, or null
func (h *AuthHandlers) MeHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{"clientPrincipal": nil}

	if cookie, err := r.Cookie(cookiecodec.SessionCookie); err == nil {
		var principal claims.ClientPrincipal
		if err := h.codec.Decode(cookie.Value, &principal); err == nil {
			response["clientPrincipal"] = &principal
		} else {
			log.LogDebugWithFields("auth", "Session cookie failed validation", map[string]any{
				"error": err.Error(),
			})
		}
	}

	_ = jsonwriter.Write(w, response)
}

// LogoutHandler deletes the session cookie and redirects
func (h *AuthHandlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	jar := &cookiecodec.Jar{}
	jar.AddDelete(cookiecodec.SessionCookie)
	jar.Apply(w)

	location := r.URL.Query().Get("post_logout_redirect_uri")
	if location == "" {
		location = "/"
	}
	http.Redirect(w, r, location, http.StatusFound)
}

// failCallback writes a terminal validation error. The auth-context cookie is
// deleted so a stale login transaction cannot be replayed.
func (h *AuthHandlers) failCallback(w http.ResponseWriter, message string, status int) {
	jar := &cookiecodec.Jar{}
	jar.AddDelete(cookiecodec.AuthContextCookie)
	jar.Apply(w)
	http.Error(w, message, status)
}

// callbackURL is the redirect URI registered with providers for this emulator
func (h *AuthHandlers) callbackURL(providerID string) string {
	return urlutil.MustJoinPath(h.cfg.BaseURL(), ".auth", "login", providerID, "callback")
}
