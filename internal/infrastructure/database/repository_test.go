package database

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/wordbook/internal/entity"
	"github.com/eslsoft/wordbook/internal/infrastructure/config"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewEntryRepository_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "words.json")
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.DriverJSON, Path: path}}

	repo, cleanup, err := NewEntryRepository(context.Background(), cfg, newTestLogger())
	require.NoError(t, err)
	defer cleanup()

	entries := []entity.Entry{{English: "cat", Japanese: "猫"}}
	require.NoError(t, repo.Save(context.Background(), entries))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"japanese": "猫"`)
}

func TestNewEntryRepository_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "words.db")
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.DriverSQLite, Path: path}}
	ctx := context.Background()

	repo, cleanup, err := NewEntryRepository(ctx, cfg, newTestLogger())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, []entity.Entry{{English: "dog", Japanese: "犬", Example: "A dog barked."}}))
	cleanup()

	reopened, cleanup, err := NewEntryRepository(ctx, cfg, newTestLogger())
	require.NoError(t, err)
	defer cleanup()
	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.Entry{{English: "dog", Japanese: "犬", Example: "A dog barked."}}, got)
}

func TestNewEntryRepository_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "mysql"}}
	_, _, err := NewEntryRepository(context.Background(), cfg, newTestLogger())
	require.Error(t, err)
}
