package roles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/localweb/auth-front/internal/claims"
	"github.com/localweb/auth-front/internal/urlutil"
)

// Augmentor posts a freshly normalized principal to the configured roles
// source on the emulator's own API surface and merges returned role names
// into the principal. Augmentation is best-effort: the caller logs and
// ignores any error.
type Augmentor struct {
	httpClient *http.Client
	apiAddr    string
	path       string
}

// New creates an augmentor targeting path on the given host:port
func New(apiAddr, path string) *Augmentor {
	return &Augmentor{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiAddr:    apiAddr,
		path:       path,
	}
}

// Enabled reports whether a roles source is configured
func (a *Augmentor) Enabled() bool {
	return a != nil && a.path != ""
}

// Augment posts the principal to the roles source and appends returned role
// names in place. Roles are never deduplicated or removed.
func (a *Augmentor) Augment(ctx context.Context, principal *claims.ClientPrincipal) error {
	body, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("failed to marshal principal: %w", err)
	}

	// localhost is rewritten to the loopback IP so the call cannot be
	// misrouted by inconsistent localhost resolution in embedded setups.
	endpoint := "http://" + urlutil.ResolveLoopback(a.apiAddr) + a.path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build roles request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("roles request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("roles source returned status %d", resp.StatusCode)
	}

	var result struct {
		Roles []string `json:"roles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode roles response: %w", err)
	}

	principal.UserRoles = append(principal.UserRoles, result.Roles...)
	return nil
}
