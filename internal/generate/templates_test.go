package generate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplates(t *testing.T) {
	tmpl := DefaultTemplates()
	assert.NotEmpty(t, tmpl.System)
	assert.Contains(t, tmpl.BusinessInstructions, "Overview, Products/Services")
	assert.Contains(t, tmpl.MDAInstructions, "Liquidity and Capital Resources")
}

func TestLoadTemplates_EmptyPath(t *testing.T) {
	tmpl, err := LoadTemplates("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplates(), tmpl)
}

func TestLoadTemplates_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("system: custom system prompt\n"), 0o644))

	tmpl, err := LoadTemplates(path)
	require.NoError(t, err)
	assert.Equal(t, "custom system prompt", tmpl.System)
	assert.Equal(t, DefaultTemplates().MDAInstructions, tmpl.MDAInstructions)
}

func TestLoadTemplates_MissingFile(t *testing.T) {
	_, err := LoadTemplates(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadTemplates_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("system: [unclosed"), 0o644))

	_, err := LoadTemplates(path)
	require.Error(t, err)
}
