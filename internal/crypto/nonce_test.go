package crypto

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNonce_Format(t *testing.T) {
	nonce, err := NewNonce()
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Za-z0-9_-]+\.\d+$`, nonce)
}

func TestHashState_Deterministic(t *testing.T) {
	assert.Equal(t, HashState("nonce-a"), HashState("nonce-a"))
	assert.NotEqual(t, HashState("nonce-a"), HashState("nonce-b"))
	assert.Len(t, HashState("nonce-a"), 64, "lowercase hex sha256")
}

func TestNonceExpired(t *testing.T) {
	stamp := func(d time.Duration) string {
		return "random." + strconv.FormatInt(time.Now().Add(d).UnixMilli(), 10)
	}

	tests := []struct {
		name    string
		nonce   string
		expired bool
	}{
		{name: "fresh", nonce: stamp(0), expired: false},
		{name: "almost_expired", nonce: stamp(-9 * time.Minute), expired: false},
		{name: "expired", nonce: stamp(-11 * time.Minute), expired: true},
		{name: "no_timestamp", nonce: "random", expired: true},
		{name: "garbage_timestamp", nonce: "random.xyz", expired: true},
		{name: "empty", nonce: "", expired: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, NonceExpired(tt.nonce))
		})
	}
}

func TestNewNonce_NotExpired(t *testing.T) {
	nonce, err := NewNonce()
	require.NoError(t, err)
	assert.False(t, NonceExpired(nonce))
}
