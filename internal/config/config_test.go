package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []int{128, 64, 32}, cfg.Tiers)
	assert.Len(t, cfg.Classes, 50)
	assert.Equal(t, "linear", cfg.Kernel)
	assert.Equal(t, "BMP", cfg.DisplayDir)
	assert.Equal(t, "PGM", cfg.ProcessDir)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gestureprep.yaml")
	content := `
root: /data/PX50Gestures
classes: [A, B, bak0]
tiers: [96, 48]
kernel: lanczos
workers: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/PX50Gestures", cfg.Root)
	assert.Equal(t, []string{"A", "B", "bak0"}, cfg.Classes)
	assert.Equal(t, []int{96, 48}, cfg.Tiers)
	assert.Equal(t, "lanczos", cfg.Kernel)
	assert.Equal(t, 4, cfg.Workers)
	// Untouched keys keep their defaults.
	assert.Equal(t, "PGM", cfg.ProcessDir)

	layout := cfg.Layout()
	assert.Equal(t, filepath.Join("/data/PX50Gestures", "A", "PGM"), layout.ProcessPath("A"))
}

func TestLoadWorkers(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "Absent keeps default", content: "kernel: box\n", want: 1},
		{name: "Zero means one per CPU", content: "workers: 0\n", want: 0},
		{name: "Explicit count", content: "workers: 8\n", want: 8},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("w%d.yaml", i))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Workers)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	typo := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte("tierz: [1]\n"), 0644))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tiers: not-a-list\n"), 0644))

	tests := []struct {
		name string
		path string
	}{
		{name: "Missing file", path: filepath.Join(dir, "missing.yaml")},
		{name: "Unknown key", path: typo},
		{name: "Wrong type", path: bad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			assert.Error(t, err)
		})
	}
}
