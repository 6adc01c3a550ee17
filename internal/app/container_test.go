package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_JSONStorage(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "words.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"english":"cat","japanese":"猫"}]`), 0o644))
	t.Setenv("WORDBOOK_STORAGE_PATH", path)
	t.Setenv("WORDBOOK_DICTIONARY_ENABLED", "false")
	t.Setenv("WORDBOOK_LOG_LEVEL", "error")

	c, cleanup, err := Initialize(context.Background())
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, 1, c.Store.Len())
	assert.Nil(t, c.Lookup)
	assert.NotNil(t, c.Server)

	editor := c.NewEditor()
	defer editor.Close()
	require.NoError(t, editor.Select(0))
	assert.Equal(t, "cat", editor.Draft().English)
}

func TestInitialize_MalformedFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "words.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"english":"cat"}`), 0o644))
	t.Setenv("WORDBOOK_STORAGE_PATH", path)

	_, _, err := Initialize(context.Background())
	require.Error(t, err)

	raw, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, `{"english":"cat"}`, string(raw), "unreadable data is left untouched")
}
