// Package wsconn runs one WebSocket control-plane session: it mirrors
// published actions to the browser as text frames and watches for the
// peer closing or misbehaving, per the control-plane's session loop.
package wsconn

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/penguindev/penguin/internal/action"
	"github.com/penguindev/penguin/internal/broadcast"
	"github.com/penguindev/penguin/internal/plog"
)

// Upgrader upgrades an HTTP connection to WebSocket. CheckOrigin always
// allows: Penguin is a local dev tool, not a public service, the same
// posture air's own WebSocket() takes.
var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin:      func(*http.Request) bool { return true },
}

// Serve upgrades r to a WebSocket and runs its session loop until the peer
// disconnects, an unrecoverable frame error occurs, or ctx is canceled. It
// always returns after the connection is closed.
func Serve(w http.ResponseWriter, r *http.Request, sub *broadcast.Subscriber[action.Action], log *plog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("wsconn: upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	defer sub.Close()

	runSession(r.Context(), conn, sub, log)
}

type frame struct {
	messageType int
	data        []byte
	err         error
}

// runSession is the concurrent select described in the control-plane
// session design: one source is the next action from sub, the other is
// the next frame read from the peer.
func runSession(ctx context.Context, conn *websocket.Conn, sub *broadcast.Subscriber[action.Action], log *plog.Logger) {
	frames := make(chan frame, 1)
	go readLoop(conn, frames)

	actions := make(chan actionResult, 1)
	go actionLoop(ctx, sub, actions)

	for {
		select {
		case f := <-frames:
			if !handleFrame(conn, f, log) {
				return
			}
			go readLoop(conn, frames)

		case a := <-actions:
			if !handleAction(conn, a, log) {
				return
			}
			go actionLoop(ctx, sub, actions)
		}
	}
}

func readLoop(conn *websocket.Conn, out chan<- frame) {
	mt, data, err := conn.ReadMessage()
	out <- frame{messageType: mt, data: data, err: err}
}

type actionResult struct {
	value  action.Action
	lagged bool
	missed int
	err    error
}

func actionLoop(ctx context.Context, sub *broadcast.Subscriber[action.Action], out chan<- actionResult) {
	v, lagged, n, err := sub.Recv(ctx)
	out <- actionResult{value: v, lagged: lagged, missed: n, err: err}
}

// handleFrame processes one frame received from the peer. It returns false
// when the session should end.
func handleFrame(conn *websocket.Conn, f frame, log *plog.Logger) bool {
	if f.err != nil {
		if isExpectedCloseErr(f.err) {
			return false
		}

		log.Warnf("wsconn: frame read error: %v", f.err)
		return false
	}

	switch f.messageType {
	case websocket.CloseMessage:
		return false
	case websocket.PingMessage:
		// gorilla/websocket auto-queues the pong reply; nothing to do
		// beyond continuing to read.
		return true
	default:
		return true
	}
}

// isExpectedCloseErr reports whether err is one of the close variants the
// session treats as an ordinary end rather than a logged failure: a clean
// close handshake, EOF, or the connection being reset without a closing
// handshake — routine on a browser tab reload or navigation.
func isExpectedCloseErr(err error) bool {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return true
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	if errors.Is(err, net.ErrClosed) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	// gorilla/websocket doesn't expose a typed "connection reset" error on
	// all platforms; fall back to the message it wraps underneath.
	return strings.Contains(err.Error(), "connection reset by peer")
}

// handleAction processes one action received from the broadcast channel.
// It returns false when the session should end.
func handleAction(conn *websocket.Conn, a actionResult, log *plog.Logger) bool {
	if a.err != nil {
		return false
	}

	if a.lagged {
		log.Warnf("wsconn: session lagged, dropped %d action(s)", a.missed)
		return true
	}

	var text string
	switch a.value.Kind {
	case action.Reload:
		text = "reload"
	case action.Message:
		text = "message\n" + a.value.Text
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		log.Warnf("wsconn: write failed, ending session: %v", err)
		return false
	}

	return true
}
