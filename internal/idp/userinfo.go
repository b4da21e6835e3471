package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// userAgent is sent on every user-info request. Some providers reject
// requests without one.
const userAgent = "auth-front-emulator"

// FetchUserInfo retrieves the authenticated user's raw profile. Providers
// with an introspection endpoint are queried with a Bearer token; a provider
// whose token is a self-contained identity token has its payload decoded
// directly instead.
func FetchUserInfo(
	ctx context.Context,
	httpClient *http.Client,
	d *Descriptor,
	token *oauth2.Token,
) (map[string]any, error) {
	if d.DecodeToken {
		return decodeTokenClaims(token.AccessToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.UserEndpoint.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info endpoint returned status %d", resp.StatusCode)
	}

	var profile map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return profile, nil
}

// decodeTokenClaims extracts the claim set from an identity token without
// signature verification. The token was just obtained over TLS directly from
// the provider's token endpoint, which is the emulator's trust anchor.
func decodeTokenClaims(raw string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("failed to decode identity token: %w", err)
	}
	return map[string]any(claims), nil
}
