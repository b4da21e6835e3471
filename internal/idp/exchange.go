package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/localweb/auth-front/internal/config"
	"github.com/localweb/auth-front/internal/log"
)

// fixedCodeVerifier is sent on the Basic-auth exchange style. The emulator
// always starts the authorization request with this plain-text challenge, so
// the verifier is a constant.
const fixedCodeVerifier = "challenge"

// ExchangeCode exchanges an authorization code for a token at the provider's
// token endpoint, applying the descriptor's request shaping.
func ExchangeCode(
	ctx context.Context,
	httpClient *http.Client,
	d *Descriptor,
	creds config.ProviderCredentials,
	code string,
	redirectURI string,
) (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", redirectURI)

	switch d.ExchangeStyle {
	case ExchangeBasicVerifier:
		form.Set("code_verifier", fixedCodeVerifier)
	default:
		form.Set("client_id", creds.ID())
		form.Set("client_secret", creds.Secret())
	}

	endpoint := d.TokenEndpoint
	if d.TenantInPath {
		endpoint.Path = strings.Replace(endpoint.Path, "{tenant}", tenantFromIssuer(creds.Issuer), 1)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if d.ExchangeStyle == ExchangeBasicVerifier {
		req.SetBasicAuth(creds.ID(), creds.Secret())
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.LogErrorWithFields("idp", "Token endpoint returned an error", map[string]any{
			"provider": d.ID,
			"status":   resp.StatusCode,
		})
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	return parseTokenResponse(body, d.TokenField)
}

// parseTokenResponse decodes a token-endpoint JSON body and selects the field
// the descriptor names as the usable token.
func parseTokenResponse(body []byte, tokenField string) (*oauth2.Token, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
		IDToken     string `json:"id_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
		Scope       string `json:"scope"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	value := resp.AccessToken
	if tokenField == "id_token" {
		value = resp.IDToken
	}
	if value == "" {
		return nil, fmt.Errorf("token response missing %s", tokenField)
	}

	token := &oauth2.Token{
		AccessToken: value,
		TokenType:   resp.TokenType,
	}
	if resp.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	return token, nil
}

// tenantFromIssuer extracts the tenant segment of a configured issuer URL
// such as https://login.microsoftonline.com/<tenant>/v2.0. Falls back to the
// multi-tenant "common" endpoint when the issuer is absent or unparseable.
func tenantFromIssuer(issuer string) string {
	u, err := url.Parse(issuer)
	if err != nil {
		return "common"
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "common"
	}
	return segments[0]
}
