package penguin

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	penguinaction "github.com/penguindev/penguin/internal/action"
	"github.com/penguindev/penguin/internal/broadcast"
	"github.com/penguindev/penguin/internal/fileserver"
	"github.com/penguindev/penguin/internal/inject"
	"github.com/penguindev/penguin/internal/plog"
	"github.com/penguindev/penguin/internal/proxybackend"
	"github.com/penguindev/penguin/internal/wsconn"
)

// ServerHeader is the value of every response's Server header.
const ServerHeader = "Penguin v" + Version

// router is the top-level HTTP handler: it chooses the control, file, or
// proxy backend for each request and catches handler panics at the
// request boundary.
type router struct {
	controlPath string
	actions     *broadcast.Broadcaster[penguinaction.Action]
	files       *fileserver.Server
	proxy       *proxybackend.Server
	log         *plog.Logger
}

func (rt *router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer rt.recoverPanic(w)

	w.Header().Set("Server", ServerHeader)

	if isUnderControlPath(r.URL.Path, rt.controlPath) {
		rt.serveControl(w, r)
		return
	}

	if rt.files != nil {
		if _, _, ok := fileserver.Match(rt.files.Mounts, r.URL.Path); ok {
			rt.files.ServeHTTP(w, r)
			return
		}
	}

	if rt.proxy != nil {
		rt.proxy.ServeHTTP(w, r)
		return
	}

	http.NotFound(w, r)
}

func (rt *router) recoverPanic(w http.ResponseWriter) {
	rec := recover()
	if rec == nil {
		return
	}

	msg := "internal server error"
	if s, ok := rec.(string); ok {
		msg = s
	} else if err, ok := rec.(error); ok {
		msg = err.Error()
	}

	rt.log.Errorf("penguin: handler panic: %v", rec)
	http.Error(w, msg, http.StatusInternalServerError)
}

// isUnderControlPath reports whether requestPath is the control path
// itself or any path under it. The control path always wins over a mount
// whose prefix happens to overlap it (see the Open Question in the
// design notes).
func isUnderControlPath(requestPath, controlPath string) bool {
	if requestPath == controlPath {
		return true
	}
	return strings.HasPrefix(requestPath, controlPath+"/")
}

func (rt *router) serveControl(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		sub := rt.actions.Subscribe()
		wsconn.Serve(w, r, sub, rt.log)
		return
	}

	remainder := strings.TrimPrefix(r.URL.Path, rt.controlPath)

	switch {
	case r.Method == http.MethodGet && remainder == "/client.js":
		body := inject.ClientJS(rt.controlPath)
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		w.WriteHeader(http.StatusOK)
		w.Write(body)

	case r.Method == http.MethodPost && remainder == "/reload":
		rt.actions.Publish(penguinaction.NewReload())
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodPost && remainder == "/message":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		if !utf8.Valid(body) {
			http.Error(w, "message body must be UTF-8", http.StatusBadRequest)
			return
		}
		rt.actions.Publish(penguinaction.NewMessage(string(body)))
		w.WriteHeader(http.StatusOK)

	default:
		http.Error(w, fmt.Sprintf("unsupported control request: %s %s", r.Method, r.URL.Path), http.StatusBadRequest)
	}
}
