package proxybackend

import (
	"net/http"

	"github.com/penguindev/penguin/internal/encoding"
)

// AdjustRequest rewrites an inbound request so it can be forwarded to
// target: scheme and authority are replaced, the Host header (if any)
// follows the target authority, and Accept-Encoding is filtered down to
// the codings the response pipeline can round-trip.
func AdjustRequest(r *http.Request, target Target) {
	r.URL.Scheme = target.Scheme
	r.URL.Host = target.Authority
	r.RequestURI = ""

	if r.Host != "" {
		r.Host = target.Authority
	}

	if ae := r.Header.Get("Accept-Encoding"); ae != "" {
		if filtered := encoding.Filter(ae); filtered != "" {
			r.Header.Set("Accept-Encoding", filtered)
		} else {
			r.Header.Del("Accept-Encoding")
		}
	}
}
