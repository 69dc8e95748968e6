package engine

import (
	"context"
	"errors"

	"gamesearch/experiments/metrics"
)

const MaxMoves = 10000

var (
	ErrGameOver = errors.New("game is over")
	ErrNoAgent  = errors.New("no agent bound to role")
	ErrNoStore  = errors.New("engine has no store")
)

type Engine interface {
	// Run plays the game till it is over or a max number of moves is reached
	Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error)
}
