package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	var c Config
	c.Normalize()
	assert.Equal(t, "@mockable", c.Annotation)
	assert.Equal(t, "scan", c.Parser)
	assert.Greater(t, c.Concurrency, 0)

	c = Config{Annotation: "@mock", Parser: "other", Concurrency: 3}
	c.Normalize()
	assert.Equal(t, "@mock", c.Annotation)
	assert.Equal(t, "other", c.Parser)
	assert.Equal(t, 3, c.Concurrency)
}

func TestLoadFileList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "files.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a/one.swift\n- b/two.swift\n"), 0o644))

	files, err := LoadFileList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one.swift", "b/two.swift"}, files)

	_, err = LoadFileList(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte("UserID: UserID()\nScore: \"0.0\"\n"), 0o644))

	defaults, err := LoadDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"UserID": "UserID()", "Score": "0.0"}, defaults)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- not\n- a map\n"), 0o644))
	_, err = LoadDefaults(bad)
	assert.Error(t, err)
}
