package claims

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/localweb/auth-front/internal/idp"
)

// Normalize maps a raw provider profile into a ClientPrincipal. Providers
// disagree on field names, so every extraction has documented fallbacks.
// Returns nil when the profile is absent or carries none of the identifying
// fields.
func Normalize(profile map[string]any, d *idp.Descriptor, clientID string) *ClientPrincipal {
	if profile == nil {
		return nil
	}

	userDetails := firstOf(
		field(profile, "login"),
		field(profile, "email"),
		nested(profile, "data", "username"),
	)
	name := firstOf(
		field(profile, "name"),
		nested(profile, "data", "name"),
	)
	nameID := firstOf(
		field(profile, "id"),
		field(profile, "sub"),
		nested(profile, "data", "id"),
	)

	p := &ClientPrincipal{
		IdentityProvider: d.ID,
		UserDetails:      userDetails,
		UserRoles:        DefaultRoles(),
	}

	add := func(typ, val string) {
		if val != "" {
			p.Claims = append(p.Claims, Claim{Typ: typ, Val: val})
		}
	}

	add(ClaimEmailAddress, userDetails)
	add("name", name)
	add("picture", field(profile, "picture"))
	add(ClaimGivenName, field(profile, "given_name"))
	add(ClaimSurname, field(profile, "family_name"))
	add(ClaimNameIdentifier, nameID)
	add("email_verified", field(profile, "email_verified"))

	// Always emitted: issuer from the static registry, authorized party and
	// audience from the configured client identifier.
	p.Claims = append(p.Claims,
		Claim{Typ: "iss", Val: d.Issuer},
		Claim{Typ: "azp", Val: clientID},
		Claim{Typ: "aud", Val: clientID},
	)

	// Replay raw profile fields as namespaced claims so downstream consumers
	// keep access to provider-native data.
	if d.RawClaimNamespace != "" {
		keys := make([]string, 0, len(profile))
		for k := range profile {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p.Claims = append(p.Claims, Claim{
				Typ: d.RawClaimNamespace + ":" + k,
				Val: stringify(profile[k]),
			})
		}
	}

	return p
}

// firstOf returns the first non-empty value
func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// field reads a top-level profile field as a string
func field(profile map[string]any, key string) string {
	return stringify(profile[key])
}

// nested reads a field from an embedded object, e.g. twitter's data wrapper
func nested(profile map[string]any, outer, key string) string {
	inner, ok := profile[outer].(map[string]any)
	if !ok {
		return ""
	}
	return stringify(inner[key])
}

// stringify renders a decoded JSON value as the platform's claim string.
// Numeric identifiers must not pick up an exponent or trailing zeros.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
