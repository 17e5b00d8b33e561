package proxybackend

import "net/url"

// RewriteLocation rewrites a Location header value that points at the
// proxy target back to penguinAuthority, so redirects issued by the
// origin keep the browser pointed at Penguin rather than leaking the
// upstream's own host. A malformed or third-party Location is returned
// unchanged; the caller logs and ignores that case.
func RewriteLocation(location string, target Target, penguinScheme, penguinAuthority string) (string, bool) {
	u, err := url.Parse(location)
	if err != nil {
		return location, false
	}

	if u.Host == "" {
		return location, true
	}

	if u.Host != target.Authority {
		return location, true
	}

	u.Scheme = penguinScheme
	u.Host = penguinAuthority
	return u.String(), true
}
