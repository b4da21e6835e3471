package roles

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localweb/auth-front/internal/claims"
)

func testPrincipal() *claims.ClientPrincipal {
	return &claims.ClientPrincipal{
		IdentityProvider: "github",
		UserDetails:      "alice",
		UserRoles:        claims.DefaultRoles(),
	}
}

// rolesServer starts a fake roles source and returns the augmentor pointed at
// it through a localhost address, exercising the loopback substitution.
func rolesServer(t *testing.T, handler http.HandlerFunc) *Augmentor {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	_, port, err := net.SplitHostPort(server.Listener.Addr().String())
	require.NoError(t, err)

	return New("localhost:"+port, "/api/roles")
}

func TestAugment_AppendsRoles(t *testing.T) {
	var gotBody claims.ClientPrincipal
	augmentor := rolesServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/roles", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"roles": []string{"admin"}})
	})

	principal := testPrincipal()
	require.NoError(t, augmentor.Augment(context.Background(), principal))

	assert.Equal(t, []string{"authenticated", "anonymous", "admin"}, principal.UserRoles)
	assert.Equal(t, "alice", gotBody.UserDetails, "principal is posted as-is")
}

func TestAugment_DuplicateRolesKept(t *testing.T) {
	augmentor := rolesServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"roles": []string{"authenticated", "admin", "admin"}})
	})

	principal := testPrincipal()
	require.NoError(t, augmentor.Augment(context.Background(), principal))

	assert.Equal(t, []string{"authenticated", "anonymous", "authenticated", "admin", "admin"}, principal.UserRoles)
}

func TestAugment_NetworkErrorLeavesRoles(t *testing.T) {
	// Port from a closed listener: connection refused
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	augmentor := New("localhost:"+strconv.Itoa(port), "/api/roles")

	principal := testPrincipal()
	assert.Error(t, augmentor.Augment(context.Background(), principal))
	assert.Equal(t, []string{"authenticated", "anonymous"}, principal.UserRoles)
}

func TestAugment_Non200(t *testing.T) {
	augmentor := rolesServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	principal := testPrincipal()
	err := augmentor.Augment(context.Background(), principal)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, []string{"authenticated", "anonymous"}, principal.UserRoles)
}

func TestAugment_NonJSONResponse(t *testing.T) {
	augmentor := rolesServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	principal := testPrincipal()
	assert.Error(t, augmentor.Augment(context.Background(), principal))
	assert.Equal(t, []string{"authenticated", "anonymous"}, principal.UserRoles)
}

func TestEnabled(t *testing.T) {
	assert.True(t, New("localhost:4280", "/api/roles").Enabled())
	assert.False(t, New("localhost:4280", "").Enabled())

	var nilAugmentor *Augmentor
	assert.False(t, nilAugmentor.Enabled())
}
