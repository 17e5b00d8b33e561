// Package fileserver implements Penguin's static-file backend: resolving a
// request against an ordered mount list, guarding against path traversal,
// serving files (with single-range support) and directory listings, and
// handing HTML bodies through the injector.
package fileserver

import "strings"

// Mount maps a URI path prefix to a filesystem directory.
type Mount struct {
	URIPath string
	FSPath  string
}

// NormalizeURIPath normalizes a mount or control-plane URI path: it is
// made to start with "/" and, unless it is exactly "/", made to not end
// with "/".
func NormalizeURIPath(p string) string {
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if p != "/" {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}

// Match finds the mount whose URIPath is the longest prefix of requestPath,
// implementing the "most-specific mount wins" law. It returns the matching
// mount, the request's subpath relative to that mount's URIPath, and
// whether a match was found.
func Match(mounts []Mount, requestPath string) (m Mount, subpath string, ok bool) {
	bestLen := -1

	for _, candidate := range mounts {
		if !isPrefixMatch(candidate.URIPath, requestPath) {
			continue
		}
		if len(candidate.URIPath) > bestLen {
			bestLen = len(candidate.URIPath)
			m = candidate
			ok = true
		}
	}

	if !ok {
		return Mount{}, "", false
	}

	subpath = strings.TrimPrefix(requestPath, m.URIPath)
	if !strings.HasPrefix(subpath, "/") {
		subpath = "/" + subpath
	}

	return m, subpath, true
}

func isPrefixMatch(mountPath, requestPath string) bool {
	if mountPath == "/" {
		return true
	}
	if requestPath == mountPath {
		return true
	}
	return strings.HasPrefix(requestPath, mountPath+"/")
}
