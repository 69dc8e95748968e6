package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		c, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		require.NoError(t, err)
		require.Equal(t, Default(), c)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		c, err := Load(write(t, `{"logLevel": "debug", "search": {"algorithm": "minimax", "depth": 3, "budgetMs": 250}}`))
		require.NoError(t, err)
		require.Equal(t, zerolog.DebugLevel, c.Level())
		require.Equal(t, "minimax", c.Search.Algorithm)
		require.Equal(t, 3, c.Search.Depth)
		require.Equal(t, 250*time.Millisecond, c.Search.Budget())
		require.Equal(t, Default().Addr, c.Addr)
		require.Equal(t, Default().Experiment.Games, c.Experiment.Games)
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := Load(write(t, `{"search": `))
		require.Error(t, err)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := Load(write(t, `{"search": {"algorithm": "mcts"}}`))
		require.ErrorContains(t, err, "mcts")
	})

	t.Run("negative depth", func(t *testing.T) {
		_, err := Load(write(t, `{"search": {"depth": -1}}`))
		require.Error(t, err)
	})
}

func TestSearchOptions(t *testing.T) {
	options, err := Default().Search.Options()
	require.NoError(t, err)
	require.Len(t, options, 2)

	_, err = Search{Algorithm: "unknown"}.Options()
	require.Error(t, err)
}
