package player

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"gamesearch/game"
)

// Random plays uniformly random legal moves.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Name() string {
	return "random"
}

func (r *Random) CanPlay(game.State) bool {
	return true
}

func (r *Random) Evaluate(ctx context.Context, _ game.State, _ game.Move, _ game.Roles, _ int, _ time.Duration) (float64, error) {
	return 0, ctx.Err()
}

func (r *Random) SelectMove(ctx context.Context, state game.State, _ game.Roles, _ int, _ time.Duration) (game.Move, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return game.RandomLegalMove(state, r.rng), nil
}
