package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/hexspiral/internal/config"
	"github.com/gravitas-games/hexspiral/internal/persistence"
)

func TestRunDemo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runDemo(&out, nil))
	assert.Equal(t, "You input 5. This is (-1, 1, 0) in cube coords, or 5 converted back to spiral coords\n", out.String())

	out.Reset()
	require.NoError(t, runDemo(&out, []string{"45"}))
	assert.Contains(t, out.String(), "(4, 0, -4)")

	assert.Error(t, runDemo(&out, []string{"-3"}))
}

func TestRunExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spiral.db")
	var out bytes.Buffer
	require.NoError(t, runExport(&out, config.Default(), []string{"-radius", "20", "-db", path}))
	assert.Contains(t, out.String(), "exported 1,261 cells (21 rings)")

	db, err := persistence.Open(path)
	require.NoError(t, err)
	defer db.Close()
	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 1261, n)
}

func TestRunExportRejectsRadius(t *testing.T) {
	cfg := config.Default()
	cfg.Limits.MaxRing = 3
	var out bytes.Buffer
	assert.Error(t, runExport(&out, cfg, []string{"-radius", "4", "-db", filepath.Join(t.TempDir(), "x.db")}))
}
