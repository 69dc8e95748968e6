package player

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"gamesearch/game"
	"gamesearch/searcher"
)

type Algorithm int

const (
	HeuristicOnly Algorithm = iota
	Minimax
	AlphaBeta
)

func (a Algorithm) String() string {
	switch a {
	case HeuristicOnly:
		return "heuristic"
	case Minimax:
		return "minimax"
	case AlphaBeta:
		return "alphabeta"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "heuristic", "none":
		return HeuristicOnly, nil
	case "minimax":
		return Minimax, nil
	case "alphabeta", "alpha-beta":
		return AlphaBeta, nil
	default:
		return 0, fmt.Errorf("unknown search algorithm %q", name)
	}
}

type Option func(p *Player)

func WithAlgorithm(algorithm Algorithm) Option {
	return func(p *Player) {
		p.algorithm = algorithm
	}
}

// WithDepth makes the player search depth plies whatever depth callers ask for.
func WithDepth(depth int) Option {
	return func(p *Player) {
		if depth > 0 {
			p.depth = depth
		}
	}
}

// WithBudget bounds every search of the player by budget whatever budget callers ask for.
func WithBudget(budget time.Duration) Option {
	return func(p *Player) {
		if budget > 0 {
			p.budget = budget
		}
	}
}

// WithMoveOrdering orders moves by heuristic before descending. Only alpha-beta uses it.
func WithMoveOrdering() Option {
	return func(p *Player) {
		p.orderMoves = true
	}
}

func WithTracking() Option {
	return func(p *Player) {
		p.tracker = newTracker()
	}
}

func WithName(name string) Option {
	return func(p *Player) {
		if name != "" {
			p.name = name
		}
	}
}

// Player is an Agent that searches with an Evaluator. It is also an Evaluator itself, so it
// can be served remotely or used inside another search.
type Player struct {
	name       string
	evaluator  searcher.Evaluator
	algorithm  Algorithm
	depth      int
	budget     time.Duration
	orderMoves bool
	tracker    tracker
}

func NewPlayer(evaluator searcher.Evaluator, options ...Option) *Player {
	if evaluator == nil {
		panic("evaluator must not be nil")
	}
	p := &Player{ // Default values
		name:      "player",
		evaluator: evaluator,
		algorithm: AlphaBeta,
		tracker:   newNoTracker(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *Player) Name() string {
	return p.name
}

func (p *Player) Algorithm() Algorithm {
	return p.algorithm
}

func (p *Player) CanPlay(state game.State) bool {
	return searcher.CanPlay(p.evaluator, state)
}

func (p *Player) Heuristic(state game.State, move game.Move, roles game.Roles) float64 {
	return p.evaluator.Heuristic(state, move, roles)
}

func (p *Player) ShouldPrune(state game.State, move game.Move, roles game.Roles) bool {
	return searcher.ShouldPrune(p.evaluator, state, move, roles)
}

// Stats is zero unless the player was built WithTracking.
func (p *Player) Stats() Stats {
	return p.tracker.stats()
}

func (p *Player) ResetStats() {
	p.tracker.reset()
}

func (p *Player) levels(depth int) int {
	if p.depth > 0 {
		return p.depth
	}
	return depth
}

func (p *Player) timeBudget(budget time.Duration) time.Duration {
	if p.budget > 0 {
		return p.budget
	}
	return budget
}

func (p *Player) search(roles game.Roles) searcher.Search {
	return searcher.Search{Evaluator: p.evaluator, Roles: roles, OrderMoves: p.orderMoves}
}

// Evaluate scores move with the player's algorithm. A positive budget bounds the search in time.
// Running out of time or cancelling ctx during the search yields the value found so far, not an
// error.
func (p *Player) Evaluate(ctx context.Context, state game.State, move game.Move, roles game.Roles, depth int, budget time.Duration) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	budget = p.timeBudget(budget)
	start := time.Now()
	monitor := searcher.NewMonitor()
	stop := context.AfterFunc(ctx, monitor.Disable)
	defer stop()
	if budget > 0 {
		monitor.DisableLater(budget)
		defer monitor.Stop()
	}

	value, err := p.evaluateMonitored(state, move, roles, depth, monitor)
	if err != nil {
		return 0, err
	}
	p.tracker.record(time.Since(start), monitor.NodeCount())
	return value, nil
}

func (p *Player) evaluateMonitored(state game.State, move game.Move, roles game.Roles, depth int, monitor *searcher.Monitor) (float64, error) {
	search := p.search(roles)
	switch p.algorithm {
	case Minimax:
		return search.MinimaxMonitored(state, move, p.levels(depth), monitor)
	case AlphaBeta:
		return search.AlphaBetaMonitored(state, move, p.levels(depth), math.Inf(-1), math.Inf(1), monitor)
	default:
		monitor.Increment()
		return p.evaluator.Heuristic(state, move, roles), nil
	}
}
