package claims

// Claim is a typed key/value fact about the authenticated user, following
// identity-token claim conventions.
type Claim struct {
	Typ string `json:"typ"`
	Val string `json:"val"`
}

// Standard claim types. The long forms follow the WS-identity claim URIs the
// emulated platform emits.
const (
	ClaimEmailAddress   = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
	ClaimGivenName      = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/givenname"
	ClaimSurname        = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/surname"
	ClaimNameIdentifier = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
)

// Default roles every authenticated principal starts with
var defaultRoles = []string{"authenticated", "anonymous"}

// ClientPrincipal is the normalized identity record issued to the rest of
// the emulated platform. It lives only for the duration of one callback; its
// sole durable trace is the encrypted session cookie.
type ClientPrincipal struct {
	IdentityProvider string   `json:"identityProvider"`
	UserDetails      string   `json:"userDetails"`
	Claims           []Claim  `json:"claims"`
	UserRoles        []string `json:"userRoles"`
}

// DefaultRoles returns a fresh copy of the seed role set
func DefaultRoles() []string {
	roles := make([]string, len(defaultRoles))
	copy(roles, defaultRoles)
	return roles
}
