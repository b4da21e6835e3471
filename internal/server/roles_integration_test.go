package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localweb/auth-front/internal/claims"
	"github.com/localweb/auth-front/internal/config"
	"github.com/localweb/auth-front/internal/cookiecodec"
	"github.com/localweb/auth-front/internal/crypto"
)

// rolesEnv wires a test env whose configured API port points at a fake roles
// source, so the callback's augmentation call loops back into the test.
func rolesEnv(t *testing.T, rolesHandler http.HandlerFunc) *testEnv {
	t.Helper()

	rolesServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/roles" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		rolesHandler(w, r)
	}))
	t.Cleanup(rolesServer.Close)

	addr := rolesServer.Listener.Addr().(*net.TCPAddr)

	return newTestEnv(t, func(cfg *config.Config) {
		cfg.Port = addr.Port
		cfg.RolesSource = "/api/roles"
	})
}

func TestCallback_RoleAugmentationSuccess(t *testing.T) {
	env := rolesEnv(t, func(w http.ResponseWriter, r *http.Request) {
		var posted claims.ClientPrincipal
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		assert.Equal(t, "alice", posted.UserDetails)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"roles": []string{"admin"}})
	})

	nonce := freshNonce(t)
	rec := env.callback(t, "github", env.authContextCookie(t, nonce, ""), crypto.HashState(nonce))

	require.Equal(t, http.StatusFound, rec.Code)

	session := findCookie(rec.Result().Cookies(), cookiecodec.SessionCookie)
	require.NotNil(t, session)

	var principal claims.ClientPrincipal
	require.NoError(t, env.codec.Decode(session.Value, &principal))
	assert.Equal(t, []string{"authenticated", "anonymous", "admin"}, principal.UserRoles)
}

func TestCallback_RoleAugmentationFailureIsSwallowed(t *testing.T) {
	env := rolesEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	nonce := freshNonce(t)
	rec := env.callback(t, "github", env.authContextCookie(t, nonce, "/app"), crypto.HashState(nonce))

	// The failure does not alter the outcome: session established with the
	// default role set only.
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/app", rec.Header().Get("Location"))

	session := findCookie(rec.Result().Cookies(), cookiecodec.SessionCookie)
	require.NotNil(t, session)

	var principal claims.ClientPrincipal
	require.NoError(t, env.codec.Decode(session.Value, &principal))
	assert.Equal(t, []string{"authenticated", "anonymous"}, principal.UserRoles)
}
