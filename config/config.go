// Package config loads the settings of the gamesearch command from a JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"gamesearch/player"
)

type Search struct {
	Algorithm  string `json:"algorithm"`
	Depth      int    `json:"depth"`
	BudgetMs   int64  `json:"budgetMs"`
	OrderMoves bool   `json:"orderMoves"`
	Tracking   bool   `json:"tracking"`
}

func (s Search) Budget() time.Duration {
	return time.Duration(s.BudgetMs) * time.Millisecond
}

// Options maps the search settings to player options.
func (s Search) Options() ([]player.Option, error) {
	algorithm, err := player.ParseAlgorithm(s.Algorithm)
	if err != nil {
		return nil, err
	}
	options := []player.Option{player.WithAlgorithm(algorithm)}
	if s.OrderMoves {
		options = append(options, player.WithMoveOrdering())
	}
	if s.Tracking {
		options = append(options, player.WithTracking())
	}
	return options, nil
}

type Config struct {
	LogLevel string `json:"logLevel"`
	// Game is the game played, served or solved: "tictactoe" or "tilepuzzle".
	Game      string `json:"game"`
	Addr      string `json:"addr"`
	// Opponent is the URL of a served agent playing the second role. Empty means a random player.
	Opponent  string `json:"opponent"`
	StorePath string `json:"storePath"`
	Search    Search `json:"search"`

	Solve struct {
		Method   string   `json:"method"`
		Limit    int      `json:"limit"`
		Scramble []string `json:"scramble"`
	} `json:"solve"`

	Experiment struct {
		Name    string `json:"name"`
		Games   int    `json:"games"`
		BaseDir string `json:"baseDir"`
	} `json:"experiment"`
}

func Default() Config {
	c := Config{
		LogLevel:  "info",
		Game:      "tictactoe",
		Addr:      "localhost:8080",
		StorePath: "games.db",
		Search: Search{
			Algorithm:  "alphabeta",
			Depth:      9,
			OrderMoves: true,
		},
	}
	c.Solve.Method = "best"
	c.Solve.Limit = 10000
	c.Solve.Scramble = []string{"left", "up", "up", "left", "down", "right"}
	c.Experiment.Name = "strength"
	c.Experiment.Games = 10
	c.Experiment.BaseDir = "results"
	return c
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := player.ParseAlgorithm(c.Search.Algorithm); err != nil {
		return err
	}
	if c.Search.Depth < 0 || c.Search.BudgetMs < 0 {
		return errors.New("search depth and budget must not be negative")
	}
	return nil
}

func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
