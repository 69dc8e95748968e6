package network

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/patrikeh/go-deep/training"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"gamesearch/engine"
	"gamesearch/game"
	"gamesearch/player"
)

// explorer samples moves from a softmax over the values the evaluator gives them, so that
// self-play visits more than the currently preferred line.
type explorer struct {
	evaluator   *Evaluator
	temperature float64

	mu  sync.Mutex
	rng *rand.Rand
}

var _ player.Agent = &explorer{}

func (x *explorer) Name() string {
	return "explorer"
}

func (x *explorer) CanPlay(state game.State) bool {
	return x.evaluator.CanPlay(state)
}

func (x *explorer) Evaluate(ctx context.Context, state game.State, move game.Move, roles game.Roles, _ int, _ time.Duration) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return x.evaluator.Heuristic(state, move, roles), nil
}

func (x *explorer) SelectMove(ctx context.Context, state game.State, roles game.Roles, _ int, _ time.Duration) (game.Move, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return nil, nil
	}
	values := make([]float64, len(moves))
	for i, move := range moves {
		values[i] = x.evaluator.Heuristic(state, move, roles)
	}
	x.mu.Lock()
	sampled := x.rng.Float64()
	x.mu.Unlock()
	return moves[sample(adjustTemperature(values, x.temperature), sampled)], nil
}

// adjustTemperature turns values into move probabilities. Lower temperatures favour the best
// moves more strongly.
func adjustTemperature(values []float64, temperature float64) []float64 {
	best := math.Inf(-1)
	for _, v := range values {
		best = math.Max(best, v)
	}
	sum := 0.0
	policy := make([]float64, len(values))
	for i, v := range values {
		policy[i] = math.Exp((v - best) / temperature)
		sum += policy[i]
	}
	// Normalize
	for i := range policy {
		policy[i] /= sum
	}
	return policy
}

func sample(policy []float64, sampled float64) int {
	cumulative := 0.0
	for i, prob := range policy {
		cumulative += prob
		if sampled < cumulative {
			return i
		}
	}
	return len(policy) - 1 // Fallback in case of rounding errors
}

// selfPlayRoster binds a separate explorer to every role so that each one searches for its own
// role only. The explorers share the evaluator.
func selfPlayRoster(e *Evaluator, state game.State, rng *rand.Rand) (*engine.Roster, error) {
	roster := engine.NewRoster()
	for role := 0; role < state.NumRoles(); role++ {
		agent := &explorer{evaluator: e, temperature: 0.5, rng: rand.New(rand.NewSource(rng.Uint64()))}
		if err := roster.Bind(game.Role(role), agent, state); err != nil {
			return nil, err
		}
	}
	return roster, nil
}

// SelfPlay plays games games of the evaluator against itself, training it after every game on
// that game's positions. It returns the samples it trained on.
func SelfPlay(ctx context.Context, e *Evaluator, newGame func() game.State, games, iterations int, seed uint64) (training.Examples, error) {
	rng := rand.New(rand.NewSource(seed))
	all := training.Examples{}
	for i := 0; i < games; i++ {
		state := newGame()
		roster, err := selfPlayRoster(e, state, rng)
		if err != nil {
			return nil, err
		}
		if _, _, err := engine.NewLocalEngine(state, roster).Run(ctx); err != nil {
			return nil, fmt.Errorf("self-play game %d: %w", i+1, err)
		}

		samples, err := SamplesFromGame(state, e.featurizer)
		if err != nil {
			return nil, fmt.Errorf("self-play game %d: %w", i+1, err)
		}
		e.Train(samples, iterations)
		all = append(all, samples...)
		log.Debug().Msgf("self-play game %d of %d trained on %d positions", i+1, games, len(samples))
	}
	return all, nil
}
