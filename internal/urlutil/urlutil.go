package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// JoinPath safely joins URL paths, handling trailing and leading slashes correctly
func JoinPath(base string, paths ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	allPaths := append([]string{u.Path}, paths...)
	u.Path = path.Join(allPaths...)

	if len(paths) > 0 && strings.HasSuffix(paths[len(paths)-1], "/") {
		u.Path += "/"
	}

	return u.String(), nil
}

// MustJoinPath is like JoinPath but panics on error (for use with known-good URLs)
func MustJoinPath(base string, paths ...string) string {
	result, err := JoinPath(base, paths...)
	if err != nil {
		panic(err)
	}
	return result
}

// ResolveLoopback rewrites a "localhost" host to the loopback IP. Some embedded
// environments resolve localhost inconsistently (IPv6 vs IPv4), which breaks
// calls to the emulator's own API surface.
func ResolveLoopback(host string) string {
	hostname, port, found := strings.Cut(host, ":")
	if !strings.EqualFold(hostname, "localhost") {
		return host
	}
	if found {
		return "127.0.0.1:" + port
	}
	return "127.0.0.1"
}
