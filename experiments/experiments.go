// Package experiments plays tic-tac-toe match-ups between search configurations and writes the
// results as CSV files.
package experiments

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gamesearch/engine"
	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/games/tictactoe"
	"gamesearch/player"
)

const (
	NumGames   = 10 // Per match up
	TimeBudget = 10 * time.Millisecond
)

// Baseline plays the move with the best immediate heuristic value.
var Baseline = metrics.AgentConfig{ID: 0, Algorithm: "heuristic", Depth: 1}

var searchConfigs = []metrics.AgentConfig{
	{ID: 1, Algorithm: "minimax", Depth: 2},
	{ID: 2, Algorithm: "alphabeta", Depth: 2},
	{ID: 3, Algorithm: "alphabeta", Depth: 4, OrderMoves: true},
	{ID: 4, Algorithm: "alphabeta", Depth: 9, Budget: TimeBudget, OrderMoves: true},
}

type MatchUp [2]metrics.AgentConfig

// SearchConfigs returns the search configurations the experiments compare.
func SearchConfigs() []metrics.AgentConfig {
	return append([]metrics.AgentConfig{}, searchConfigs...)
}

// RunStrengthExperiment pairs every search configuration against the baseline.
func RunStrengthExperiment(ctx context.Context, baseDir string, games int) (string, error) {
	matchUps := []MatchUp{}
	for _, config := range searchConfigs {
		matchUps = append(matchUps, MatchUp{Baseline, config})
	}
	return runExperiment(ctx, baseDir, "strength", append(searchConfigs, Baseline), matchUps, games)
}

// RunOrderingExperiment plays alpha-beta with and without move ordering against itself, so
// that the positions searched per move can be compared.
func RunOrderingExperiment(ctx context.Context, baseDir string, games int) (string, error) {
	configs := []metrics.AgentConfig{
		{ID: 1, Algorithm: "alphabeta", Depth: 6},
		{ID: 2, Algorithm: "alphabeta", Depth: 6, OrderMoves: true},
	}
	matchUps := []MatchUp{{configs[0], configs[0]}, {configs[1], configs[1]}}
	return runExperiment(ctx, baseDir, "ordering", configs, matchUps, games)
}

// runExperiment plays games games per match up, alternating which configuration moves first,
// and returns the directory the results were written to.
func runExperiment(ctx context.Context, baseDir, name string, configs []metrics.AgentConfig, matchUps []MatchUp, games int) (string, error) {
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", name)

	for mi, matchUp := range matchUps {
		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(matchUps), matchUp[0], matchUp[1])

		for i := 0; i < games; i++ {
			first, second := matchUp[0], matchUp[1]
			if i%2 == 1 {
				first, second = second, first
			}

			gameMetric, moveMetrics, err := runGame(ctx, first, second)
			if err != nil {
				return "", fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     first.ID,
				Agent2:     second.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d with outcome: %s", mi+1, len(matchUps), i+1, gameMetric.Outcome())
		}
	}

	log.Info().Msgf("completed %s experiment", name)

	writer, err := metrics.NewWriter(baseDir, name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored %s results in %s", name, writer.Dir())
	return writer.Dir(), nil
}

// runGame plays one game with first as X and second as O.
func runGame(ctx context.Context, first, second metrics.AgentConfig) (metrics.GameMetric, []metrics.MoveMetric, error) {
	state := tictactoe.New()
	roster := engine.NewRoster()
	for role, config := range []metrics.AgentConfig{first, second} {
		agent, err := NewAgent(config)
		if err != nil {
			return metrics.GameMetric{}, nil, err
		}
		if err := roster.Bind(game.Role(role), agent, state); err != nil {
			return metrics.GameMetric{}, nil, err
		}
	}
	e := engine.NewLocalEngine(state, roster, engine.WithMetrics(metrics.NewCollector()))
	return e.Run(ctx)
}

// NewAgent builds a tracked tic-tac-toe player for config.
func NewAgent(config metrics.AgentConfig) (*player.Player, error) {
	algorithm, err := player.ParseAlgorithm(config.Algorithm)
	if err != nil {
		return nil, err
	}
	options := []player.Option{
		player.WithName(fmt.Sprintf("agent%d", config.ID)),
		player.WithAlgorithm(algorithm),
		player.WithDepth(config.Depth),
		player.WithBudget(config.Budget),
		player.WithTracking(),
	}
	if config.OrderMoves {
		options = append(options, player.WithMoveOrdering())
	}
	return player.NewPlayer(tictactoe.Lines{}, options...), nil
}
