package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("home")
	cfg.Database.File = "books.db"
	cfg.Log.Level = "debug"

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "home", got.Profile.Name)
	assert.Equal(t, "books.db", got.Database.File)
	assert.Equal(t, "debug", got.Log.Level)
}

func TestDefaults(t *testing.T) {
	cfg := Default("home")

	assert.Equal(t, "home", cfg.Profile.Name)
	assert.Equal(t, "tally.db", cfg.Database.File)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	assert.Error(t, err)
}
