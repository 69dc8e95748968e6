package experiments

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"gamesearch/engine"
	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/games/tictactoe"
	"gamesearch/player"
)

type Throughput struct {
	Config metrics.AgentConfig
	player.Stats
}

// selfMatch binds a separate agent built from config to every role of state.
func selfMatch(config metrics.AgentConfig, state game.State) (*engine.Roster, []*player.Player, error) {
	roster := engine.NewRoster()
	agents := make([]*player.Player, 0, state.NumRoles())
	for role := 0; role < state.NumRoles(); role++ {
		agent, err := NewAgent(config)
		if err != nil {
			return nil, nil, err
		}
		if err := roster.Bind(game.Role(role), agent, state); err != nil {
			return nil, nil, err
		}
		agents = append(agents, agent)
	}
	return roster, agents, nil
}

// RunThroughputExperiment plays each configuration against itself and reports how many
// positions it searched per millisecond.
func RunThroughputExperiment(ctx context.Context, configs []metrics.AgentConfig, games int) ([]Throughput, error) {
	results := make([]Throughput, 0, len(configs))
	for _, config := range configs {
		var stats player.Stats
		for i := 0; i < games; i++ {
			state := tictactoe.New()
			roster, agents, err := selfMatch(config, state)
			if err != nil {
				return nil, err
			}
			if _, _, err := engine.NewLocalEngine(state, roster).Run(ctx); err != nil {
				return nil, fmt.Errorf("agent %d game %d: %w", config.ID, i+1, err)
			}
			for _, agent := range agents {
				stats = stats.Add(agent.Stats())
			}
		}
		log.Info().Msgf("agent %d searched %.1f positions/ms over %d requests", config.ID, stats.PerformanceRatio(), stats.Requests)
		results = append(results, Throughput{Config: config, Stats: stats})
	}
	return results, nil
}
