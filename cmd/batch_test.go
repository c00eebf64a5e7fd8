package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBatchData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nvda.md"), []byte("| Metric | FY2025 |\n|---|---|\n| Revenue | $130.5B |\n"), 0o644))

	origDataDir := batchDataDir
	batchDataDir = dir
	t.Cleanup(func() { batchDataDir = origDataDir })

	data := loadBatchData("NVDA")
	require.NotNil(t, data)
	assert.Equal(t, "$130.5B", data.Fields["Revenue"])
}

func TestLoadBatchData_MissingFile(t *testing.T) {
	origDataDir := batchDataDir
	batchDataDir = t.TempDir()
	t.Cleanup(func() { batchDataDir = origDataDir })

	data := loadBatchData("NVDA")
	assert.True(t, data.Empty())
}

func TestLoadBatchData_NoDirConfigured(t *testing.T) {
	origDataDir := batchDataDir
	batchDataDir = ""
	t.Cleanup(func() { batchDataDir = origDataDir })

	assert.True(t, loadBatchData("NVDA").Empty())
}
