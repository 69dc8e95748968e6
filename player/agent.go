package player

import (
	"context"
	"errors"
	"time"

	"gamesearch/game"
)

var (
	// ErrCannotPlayGame is returned when an agent is bound to a game it does not support.
	ErrCannotPlayGame = errors.New("agent cannot play this game")
	// ErrRemoteUnavailable is returned when a remote agent could not be reached or timed out.
	ErrRemoteUnavailable = errors.New("remote agent unavailable")
)

// Agent decides moves for the roles it is bound to.
type Agent interface {
	Name() string
	CanPlay(state game.State) bool
	// Evaluate scores move played on state for roles.
	Evaluate(ctx context.Context, state game.State, move game.Move, roles game.Roles, depth int, budget time.Duration) (float64, error)
	// SelectMove returns a nil move and a nil error when state has no legal move.
	SelectMove(ctx context.Context, state game.State, roles game.Roles, depth int, budget time.Duration) (game.Move, error)
}
