//go:build unix

package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andresmejia3/gestureprep/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairLockDirs(t *testing.T) {
	parent := t.TempDir()
	other := t.TempDir()

	dirs, err := pairLockDirs(filepath.Join(parent, "BMP"), filepath.Join(parent, "PGM"))
	require.NoError(t, err)
	assert.Equal(t, []string{parent}, dirs, "siblings share one lock")

	dirs, err = pairLockDirs(filepath.Join(other, "b"), filepath.Join(parent, "a"))
	require.NoError(t, err)
	assert.Len(t, dirs, 2)
	assert.True(t, dirs[0] < dirs[1], "locks are taken in a fixed order")
}

func TestSyncExplicitPairWaitsForLock(t *testing.T) {
	parent := t.TempDir()
	a := filepath.Join(parent, "BMP")
	b := filepath.Join(parent, "PGM")
	touch(t, a, "one", "two")
	touch(t, b, "two")

	held, err := dataset.Lock(parent)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, _, err := execute(t, "", "sync", "--a", a, "--b", b, "--yes")
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("sync finished while the pair was locked: %v", err)
	case <-time.After(200 * time.Millisecond):
	}
	_, err = os.Stat(filepath.Join(a, "one"))
	assert.NoError(t, err, "nothing may be deleted while locked")

	require.NoError(t, held.Unlock())
	require.NoError(t, <-done)
	_, err = os.Stat(filepath.Join(a, "one"))
	assert.True(t, os.IsNotExist(err))
}
