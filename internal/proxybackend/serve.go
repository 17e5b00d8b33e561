package proxybackend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/penguindev/penguin/internal/action"
	"github.com/penguindev/penguin/internal/broadcast"
	"github.com/penguindev/penguin/internal/plog"
)

// sniffPrefixLen is how much of the response body is peeked before
// deciding whether to treat it as HTML. Non-HTML bodies are streamed
// straight through after this prefix is re-stitched onto the front of the
// stream, so a large binary download is never buffered in memory.
const sniffPrefixLen = 512

// Server forwards requests to a configured upstream origin and transforms
// HTML responses on the way back.
type Server struct {
	Target      Target
	ControlPath string
	Client      *http.Client
	Actions     *broadcast.Broadcaster[action.Action]
	Log         *plog.Logger

	// ctx bounds the re-availability poller's lifetime. It must be tied
	// to the server's own lifetime, not to any individual request: a
	// request's context is canceled by net/http the instant ServeHTTP
	// returns, which would kill a just-started poller goroutine before
	// it ever sleeps or probes.
	ctx context.Context

	poller *Poller
	warn   *warnOnce
}

// NewServer returns a Server with a client timed out the way a dev proxy
// should be: long enough for a slow upstream, short enough that a hung
// connection still surfaces a gateway error. ctx bounds the lifetime of
// the background re-availability poller; it should be the server's own
// lifetime context, not a per-request context.
func NewServer(ctx context.Context, target Target, controlPath string, actions *broadcast.Broadcaster[action.Action], log *plog.Logger) *Server {
	client := &http.Client{Timeout: 30 * time.Second}

	s := &Server{
		Target:      target,
		ControlPath: controlPath,
		Client:      client,
		Actions:     actions,
		Log:         log,
		ctx:         ctx,
	}
	s.poller = NewPoller(target, client, actions, log)
	s.warn = newWarnOnce(log)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// AdjustRequest rewrites r.Host to the upstream authority, so Penguin's
	// own authority has to be captured first for Location rewriting.
	penguinAuthority := r.Host

	AdjustRequest(r, s.Target)

	resp, err := s.Client.Do(r)
	if err != nil {
		status := http.StatusBadGateway
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			status = http.StatusGatewayTimeout
		}

		writeGatewayError(w, status, s.Target, s.ControlPath, err)
		s.poller.StartIfNotRunning(s.ctx)
		return
	}
	defer resp.Body.Close()

	penguinScheme := "http"
	if r.TLS != nil {
		penguinScheme = "https"
	}

	if loc := resp.Header.Get("Location"); loc != "" {
		if rewritten, ok := RewriteLocation(loc, s.Target, penguinScheme, penguinAuthority); ok {
			resp.Header.Set("Location", rewritten)
		} else {
			s.warn.warnf("location:"+loc, "proxybackend: malformed Location header %q, leaving unchanged", loc)
		}
	}

	if r.Method == http.MethodHead || resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotModified {
		copyHeader(w.Header(), resp.Header)
		w.WriteHeader(resp.StatusCode)
		return
	}

	prefix := make([]byte, sniffPrefixLen)
	n, err := io.ReadFull(resp.Body, prefix)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeGatewayError(w, http.StatusBadGateway, s.Target, s.ControlPath, err)
		s.poller.StartIfNotRunning(s.ctx)
		return
	}
	prefix = prefix[:n]

	if !looksHTML(resp.Header.Get("Content-Type"), prefix, s.warn, r.URL.RequestURI()) {
		copyHeader(w.Header(), resp.Header)
		w.WriteHeader(resp.StatusCode)
		io.Copy(w, io.MultiReader(bytes.NewReader(prefix), resp.Body))
		return
	}

	rest, err := io.ReadAll(resp.Body)
	if err != nil {
		writeGatewayError(w, http.StatusBadGateway, s.Target, s.ControlPath, err)
		s.poller.StartIfNotRunning(s.ctx)
		return
	}

	body := append(prefix, rest...)
	body = AdjustResponse(resp, body, s.ControlPath, s.warn)

	copyHeader(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	w.Write(body)
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
