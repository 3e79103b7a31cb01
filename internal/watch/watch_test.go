package watch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/internal/jsonl"
	"github.com/mesh-intelligence/larder/internal/memory"
	"github.com/mesh-intelligence/larder/pkg/types"
)

func TestDiff(t *testing.T) {
	prev := map[string]string{"a": "1", "b": "2", "c": "3"}
	next := map[string]string{"a": "1", "b": "20", "d": "4"}

	assert.Equal(t, []Change{
		{Op: Updated, Key: "b", Old: "2", New: "20"},
		{Op: Removed, Key: "c", Old: "3"},
		{Op: Added, Key: "d", New: "4"},
	}, Diff(prev, next))

	assert.Empty(t, Diff(prev, prev))
	assert.Empty(t, Diff(nil, nil))
}

func TestSnapshot(t *testing.T) {
	b := memory.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendMemory}))
	defer b.Detach()

	require.NoError(t, b.SetItem("x", `1`))
	require.NoError(t, b.SetItem("y", `"two"`))

	snap, err := Snapshot(b)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x": `1`, "y": `"two"`}, snap)
}

func TestSnapshot_ReloadsCachingBackends(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendJSONL, DataDir: dir}

	reader := jsonl.NewBackend()
	require.NoError(t, reader.Attach(cfg))
	defer reader.Detach()
	writer := jsonl.NewBackend()
	require.NoError(t, writer.Attach(cfg))
	defer writer.Detach()

	require.NoError(t, writer.SetItem("k", `true`))

	snap, err := Snapshot(reader)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k": `true`}, snap)
}

func TestWatcher_Run(t *testing.T) {
	if testing.Short() {
		t.Skip("filesystem watcher round trip")
	}
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendJSONL, DataDir: dir, Scope: "watched"}

	reader := jsonl.NewBackend()
	require.NoError(t, reader.Attach(cfg))
	defer reader.Detach()
	writer := jsonl.NewBackend()
	require.NoError(t, writer.Attach(cfg))
	defer writer.Detach()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prev := map[string]string{}
	changes := make(chan []Change, 8)
	w := &Watcher{Path: reader.Path(), Debounce: 20 * time.Millisecond}

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() error {
			next, err := Snapshot(reader)
			if err != nil {
				return err
			}
			if diff := Diff(prev, next); len(diff) > 0 {
				changes <- diff
			}
			prev = next
			return nil
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, writer.SetItem("mood", `"孤独"`))

	select {
	case got := <-changes:
		assert.Equal(t, []Change{{Op: Added, Key: "mood", New: `"孤独"`}}, got)
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	cancel()
	assert.NoError(t, <-done)
}
