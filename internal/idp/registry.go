package idp

// Endpoint is one half of a provider's HTTP surface. Host carries the scheme
// so tests can point a descriptor at a local fake server.
type Endpoint struct {
	Host string
	Path string
}

// URL joins the endpoint into a full URL
func (e Endpoint) URL() string {
	return e.Host + e.Path
}

// ExchangeStyle selects how the token request is authenticated
type ExchangeStyle int

const (
	// ExchangeBodyCredentials sends client_id/client_secret in the form body
	ExchangeBodyCredentials ExchangeStyle = iota
	// ExchangeBasicVerifier sends a Basic Authorization header built from the
	// key/secret pair plus a fixed code_verifier, and no credentials in the body
	ExchangeBasicVerifier
)

// Descriptor is the static definition of one supported provider, including
// the quirks that would otherwise end up as scattered conditionals: which
// token-response field holds the usable token, whether the user profile is
// decoded from the token itself, whether the token path embeds a tenant, and
// whether raw profile fields are replayed as namespaced claims.
type Descriptor struct {
	ID     string
	Issuer string

	AuthorizeEndpoint Endpoint
	TokenEndpoint     Endpoint
	UserEndpoint      Endpoint

	Scopes []string

	// TokenField names the token-response field carrying the usable token.
	// Most providers return it as access_token; google names it id_token.
	TokenField string

	ExchangeStyle ExchangeStyle

	// TenantInPath marks a token path containing a {tenant} placeholder,
	// filled from the configured issuer URL.
	TenantInPath bool

	// DecodeToken marks a provider with no introspection endpoint: the token
	// is a self-contained identity token and the profile is its payload.
	DecodeToken bool

	// RawClaimNamespace, when set, replays every raw profile field as a
	// namespaced claim (e.g. urn:github:login).
	RawClaimNamespace string
}

// Registry is the fixed set of supported providers
type Registry struct {
	providers map[string]*Descriptor
}

// NewRegistry builds the default provider table
func NewRegistry() *Registry {
	r := &Registry{providers: map[string]*Descriptor{}}
	for _, d := range []*Descriptor{
		{
			ID:                "github",
			Issuer:            "https://github.com/login/oauth",
			AuthorizeEndpoint: Endpoint{Host: "https://github.com", Path: "/login/oauth/authorize"},
			TokenEndpoint:     Endpoint{Host: "https://github.com", Path: "/login/oauth/access_token"},
			UserEndpoint:      Endpoint{Host: "https://api.github.com", Path: "/user"},
			Scopes:            []string{"read:user"},
			TokenField:        "access_token",
			RawClaimNamespace: "urn:github",
		},
		{
			ID:                "google",
			Issuer:            "https://accounts.google.com",
			AuthorizeEndpoint: Endpoint{Host: "https://accounts.google.com", Path: "/o/oauth2/v2/auth"},
			TokenEndpoint:     Endpoint{Host: "https://oauth2.googleapis.com", Path: "/token"},
			Scopes:            []string{"openid", "profile", "email"},
			TokenField:        "id_token",
			DecodeToken:       true,
		},
		{
			ID:                "aad",
			Issuer:            "https://login.microsoftonline.com/common/v2.0",
			AuthorizeEndpoint: Endpoint{Host: "https://login.microsoftonline.com", Path: "/common/oauth2/v2.0/authorize"},
			TokenEndpoint:     Endpoint{Host: "https://login.microsoftonline.com", Path: "/{tenant}/oauth2/v2.0/token"},
			UserEndpoint:      Endpoint{Host: "https://graph.microsoft.com", Path: "/oidc/userinfo"},
			Scopes:            []string{"openid", "profile", "email"},
			TokenField:        "access_token",
			TenantInPath:      true,
		},
		{
			ID:                "twitter",
			Issuer:            "https://twitter.com",
			AuthorizeEndpoint: Endpoint{Host: "https://twitter.com", Path: "/i/oauth2/authorize"},
			TokenEndpoint:     Endpoint{Host: "https://api.twitter.com", Path: "/2/oauth2/token"},
			UserEndpoint:      Endpoint{Host: "https://api.twitter.com", Path: "/2/users/me"},
			Scopes:            []string{"users.read", "tweet.read"},
			TokenField:        "access_token",
			ExchangeStyle:     ExchangeBasicVerifier,
		},
		{
			ID:                "facebook",
			Issuer:            "https://facebook.com",
			AuthorizeEndpoint: Endpoint{Host: "https://www.facebook.com", Path: "/v11.0/dialog/oauth"},
			TokenEndpoint:     Endpoint{Host: "https://graph.facebook.com", Path: "/v11.0/oauth/access_token"},
			UserEndpoint:      Endpoint{Host: "https://graph.facebook.com", Path: "/me"},
			Scopes:            []string{"email", "public_profile"},
			TokenField:        "access_token",
		},
	} {
		r.providers[d.ID] = d
	}
	return r
}

// Lookup returns the descriptor for a provider identifier
func (r *Registry) Lookup(id string) (*Descriptor, bool) {
	d, ok := r.providers[id]
	return d, ok
}

// Register adds or replaces a descriptor. Tests use this to point providers
// at local fake endpoints.
func (r *Registry) Register(d *Descriptor) {
	r.providers[d.ID] = d
}

// Supported lists the provider identifiers in the registry
func (r *Registry) Supported() []string {
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}
