package penguin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	penguinaction "github.com/penguindev/penguin/internal/action"
	"github.com/penguindev/penguin/internal/broadcast"
	"github.com/penguindev/penguin/internal/fileserver"
	"github.com/penguindev/penguin/internal/plog"
)

func newTestRouter(t *testing.T) (*router, *broadcast.Broadcaster[penguinaction.Action]) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html><body>hi</body></html>"), 0o644))

	actions := broadcast.New[penguinaction.Action](8)
	rt := &router{
		controlPath: DefaultControlPath,
		actions:     actions,
		files: &fileserver.Server{
			Mounts:      []fileserver.Mount{{URIPath: "/", FSPath: dir}},
			ControlPath: DefaultControlPath,
			Log:         plog.Default(),
		},
		log: plog.Default(),
	}

	return rt, actions
}

func TestRouterServesFilesAndInjectsScript(t *testing.T) {
	rt, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), DefaultControlPath)
	assert.Equal(t, ServerHeader, rec.Header().Get("Server"))
}

func TestRouterControlPathWinsOverFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, strings.TrimPrefix(DefaultControlPath, "/")), 0o755))

	actions := broadcast.New[penguinaction.Action](8)
	rt := &router{
		controlPath: DefaultControlPath,
		actions:     actions,
		files: &fileserver.Server{
			Mounts:      []fileserver.Mount{{URIPath: "/", FSPath: dir}},
			ControlPath: DefaultControlPath,
			Log:         plog.Default(),
		},
		log: plog.Default(),
	}

	req := httptest.NewRequest(http.MethodPost, DefaultControlPath+"/reload", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterReloadPublishesAction(t *testing.T) {
	rt, actions := newTestRouter(t)
	sub := actions.Subscribe()

	req := httptest.NewRequest(http.MethodPost, DefaultControlPath+"/reload", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, lagged, _, err := sub.Recv(ctx)
	require.NoError(t, err)
	assert.False(t, lagged)
	assert.Equal(t, penguinaction.Reload, v.Kind)
}

func TestRouterMessagePublishesAction(t *testing.T) {
	rt, actions := newTestRouter(t)
	sub := actions.Subscribe()

	req := httptest.NewRequest(http.MethodPost, DefaultControlPath+"/message", strings.NewReader("hello"))
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, _, _, err := sub.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, penguinaction.Message, v.Kind)
	assert.Equal(t, "hello", v.Text)
}

func TestRouterMessageRejectsInvalidUTF8(t *testing.T) {
	rt, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, DefaultControlPath+"/message", strings.NewReader("\xff\xfe"))
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterServesClientJS(t *testing.T) {
	rt, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, DefaultControlPath+"/client.js", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), DefaultControlPath)
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")
}

func TestRouterUnknownControlRequestIsBadRequest(t *testing.T) {
	rt, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, DefaultControlPath+"/nonsense", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterFallsBackTo404WithNoBackends(t *testing.T) {
	rt := &router{
		controlPath: DefaultControlPath,
		actions:     broadcast.New[penguinaction.Action](8),
		log:         plog.Default(),
	}

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterRecoversFromPanic(t *testing.T) {
	rt := &router{log: plog.Default()}
	rec := httptest.NewRecorder()

	func() {
		defer rt.recoverPanic(rec)
		panic("boom")
	}()

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")
}
