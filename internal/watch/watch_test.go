package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/penguindev/penguin/internal/action"
	"github.com/penguindev/penguin/internal/broadcast"
	"github.com/penguindev/penguin/internal/plog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherPublishesReloadOnWrite(t *testing.T) {
	dir := t.TempDir()

	actions := broadcast.New[action.Action](4)
	sub := actions.Subscribe()

	log := plog.New(io.Discard, "", plog.LevelError+1)
	w, err := New([]string{dir}, actions, log)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte("hi"), 0o644))

	ctxRecv, cancelRecv := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelRecv()

	v, lagged, _, err := sub.Recv(ctxRecv)
	require.NoError(t, err)
	assert.False(t, lagged)
	assert.Equal(t, action.NewReload(), v)
}
