package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/labeldb/internal/errors"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestLoad_INI(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "scripts/config.ini", `
[Paths]
dataset_root = datasets/roadsigns
database_path = data/roadsigns.db

[Output]
box_width = 5
`)

	s, err := Load(fs, "scripts/config.ini")
	require.NoError(t, err)

	assert.Equal(t, "datasets/roadsigns", s.Paths.DatasetRoot)
	assert.Equal(t, "data/roadsigns.db", s.Paths.DatabasePath)
	assert.Equal(t, 5, s.Output.BoxWidth)
	assert.Equal(t, "assets/class_distribution.png", s.Output.ChartPath)
	assert.Equal(t, "assets/bounding_box_example.png", s.Output.ShowcasePath)
	assert.Equal(t, "#FF0000", s.Output.BoxColor)
	assert.Equal(t, "info", s.Logging.Level)
	assert.NoError(t, s.RequireDatabase())
}

func TestLoad_CaseInsensitiveKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "c.ini", "[PATHS]\nDATASET_ROOT = /data/set\n")

	s, err := Load(fs, "c.ini")
	require.NoError(t, err)
	assert.Equal(t, "/data/set", s.Paths.DatasetRoot)
}

func TestLoad_YAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "config.yaml", `
paths:
  dataset_root: ds
  database_path: db.sqlite
logging:
  level: debug
`)

	s, err := Load(fs, "config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "ds", s.Paths.DatasetRoot)
	assert.Equal(t, "db.sqlite", s.Paths.DatabasePath)
	assert.Equal(t, "debug", s.Logging.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "c.ini", "[Paths]\ndataset_root = ds\ndatabase_path = a.db\n")
	t.Setenv("LABELDB_PATHS_DATABASE_PATH", "b.db")

	s, err := Load(fs, "c.ini")
	require.NoError(t, err)
	assert.Equal(t, "b.db", s.Paths.DatabasePath)
}

func TestLoad_MissingDatasetRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "c.ini", "[Paths]\ndatabase_path = a.db\n")

	_, err := Load(fs, "c.ini")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingKey))
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	assert.Contains(t, err.Error(), "Paths.dataset_root")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nope.ini")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestRequireDatabase(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "c.ini", "[Paths]\ndataset_root = ds\n")

	s, err := Load(fs, "c.ini")
	require.NoError(t, err)

	err = s.RequireDatabase()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingKey))
	assert.Contains(t, err.Error(), "Paths.database_path")
}
