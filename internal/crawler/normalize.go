package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotAbsoluteURL is returned by NormalizeURL for relative or schemeless input.
var ErrNotAbsoluteURL = errors.New("not an absolute URL")

// defaultPorts maps a scheme to the port a browser leaves out of its host.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

// NormalizeURL returns raw with its fragment removed, its scheme and host
// lowercased and a default port dropped, the form a browser reports.
// Path, query and trailing slashes are kept, so near-duplicates differing
// only in those survive.
// It fails when raw is not a parseable absolute address.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("normalize %q: %w", raw, err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("normalize %q: %w", raw, ErrNotAbsoluteURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = CanonicalHost(u)
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// CanonicalHost returns u's host lowercased, without the scheme's default port.
func CanonicalHost(u *url.URL) string {
	host := strings.ToLower(u.Host)
	if port, ok := defaultPorts[strings.ToLower(u.Scheme)]; ok {
		host = strings.TrimSuffix(host, ":"+port)
	}
	return host
}

// IsAllowed reports whether candidate belongs to the crawl scope: its
// canonical host (including a non-default port) equals originHost and its
// escaped path starts with prefix. originHost is expected in CanonicalHost
// form. The prefix match is a raw string match, so "/docs" also admits
// "/docsarchive/x". Unparseable input is never allowed.
func IsAllowed(candidate, originHost, prefix string) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	if u.Host == "" || CanonicalHost(u) != strings.ToLower(originHost) {
		return false
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return strings.HasPrefix(path, prefix)
}
