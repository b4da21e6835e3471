package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NonceExpiry is how long a login nonce remains valid. A callback arriving
// after this window is rejected even if the state parameter matches.
const NonceExpiry = 10 * time.Minute

// NewNonce mints a login nonce: a random token with the mint time embedded,
// so expiry can be judged without server-side state.
// Format: <random>.<unix-millis>.
func NewNonce() (string, error) {
	token, err := GenerateSecureToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return token + "." + millis, nil
}

// HashState derives the OAuth state parameter from a nonce. The callback
// handler recomputes this hash and compares it against the state echoed back
// by the provider, binding the callback to the login attempt that minted the
// nonce.
func HashState(nonce string) string {
	sum := sha256.Sum256([]byte(nonce))
	return hex.EncodeToString(sum[:])
}

// NonceExpired reports whether the timestamp embedded in the nonce is older
// than NonceExpiry. Malformed nonces count as expired.
func NonceExpired(nonce string) bool {
	return nonceExpiredAt(nonce, time.Now())
}

func nonceExpiredAt(nonce string, now time.Time) bool {
	idx := strings.LastIndex(nonce, ".")
	if idx < 0 {
		return true
	}
	millis, err := strconv.ParseInt(nonce[idx+1:], 10, 64)
	if err != nil {
		return true
	}
	minted := time.UnixMilli(millis)
	return now.Sub(minted) > NonceExpiry
}
