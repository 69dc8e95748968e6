package searcher

import (
	"math"
	"time"

	"gamesearch/game"
)

// cutoff is checked on entry to every recursive call. leaf is called for every heuristic value
// used in place of a deeper search.
type cutoff interface {
	stop() bool
	leaf()
}

type depthOnly struct{}

func (depthOnly) stop() bool { return false }
func (depthOnly) leaf()      {}

type monitored struct {
	monitor *Monitor
}

func (c monitored) stop() bool { return c.monitor.Disabled() }
func (c monitored) leaf()      { c.monitor.Increment() }

type deadline time.Time

func (c deadline) stop() bool { return !time.Now().Before(time.Time(c)) }
func (c deadline) leaf()      {}

// Search holds what stays fixed across one search: the evaluator, the roles the search
// maximizes for and whether alpha-beta orders moves before descending.
//
// Each method scores move played on state, looking depth plies ahead. A node is maximizing when
// the role to move after the move is one of Roles. Errors come only from the game model.
type Search struct {
	Evaluator  Evaluator
	Roles      game.Roles
	OrderMoves bool
}

func (s Search) Minimax(state game.State, move game.Move, depth int) (float64, error) {
	return s.minimax(state, move, depth, depthOnly{})
}

// MinimaxMonitored stops descending as soon as monitor is disabled and counts every leaf on it.
func (s Search) MinimaxMonitored(state game.State, move game.Move, depth int, monitor *Monitor) (float64, error) {
	return s.minimax(state, move, depth, monitored{monitor})
}

// MinimaxUntil stops descending once the deadline has passed.
func (s Search) MinimaxUntil(state game.State, move game.Move, depth int, until time.Time) (float64, error) {
	return s.minimax(state, move, depth, deadline(until))
}

func (s Search) AlphaBeta(state game.State, move game.Move, depth int, alpha, beta float64) (float64, error) {
	return s.alphaBeta(state, move, depth, alpha, beta, depthOnly{})
}

func (s Search) AlphaBetaMonitored(state game.State, move game.Move, depth int, alpha, beta float64, monitor *Monitor) (float64, error) {
	return s.alphaBeta(state, move, depth, alpha, beta, monitored{monitor})
}

func (s Search) AlphaBetaUntil(state game.State, move game.Move, depth int, alpha, beta float64, until time.Time) (float64, error) {
	return s.alphaBeta(state, move, depth, alpha, beta, deadline(until))
}

func (s Search) heuristic(state game.State, move game.Move, c cutoff) float64 {
	c.leaf()
	return s.Evaluator.Heuristic(state, move, s.Roles)
}

// expand returns the child reached by move and its candidate moves. An empty candidate list
// means the child is a leaf.
func (s Search) expand(state game.State, move game.Move) (game.State, []game.Move, bool, error) {
	child, err := state.SpawnChild(move)
	if err != nil {
		return nil, nil, false, err
	}
	return child, child.LegalMoves(), s.Roles.Contains(child.NextRole()), nil
}

func (s Search) minimax(state game.State, move game.Move, depth int, c cutoff) (float64, error) {
	if depth <= 0 || c.stop() {
		return s.heuristic(state, move, c), nil
	}
	child, moves, maximizing, err := s.expand(state, move)
	if err != nil {
		return 0, err
	}
	if len(moves) == 0 {
		return s.heuristic(state, move, c), nil
	}

	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	for _, m := range moves {
		var value float64
		if ShouldPrune(s.Evaluator, child, m, s.Roles) {
			value = s.heuristic(child, m, c)
		} else if value, err = s.minimax(child, m, depth-1, c); err != nil {
			return 0, err
		}
		if (maximizing && value > best) || (!maximizing && value < best) {
			best = value
		}
	}
	return best, nil
}

func (s Search) alphaBeta(state game.State, move game.Move, depth int, alpha, beta float64, c cutoff) (float64, error) {
	if depth <= 0 || alpha >= beta || c.stop() {
		return s.heuristic(state, move, c), nil
	}
	child, moves, maximizing, err := s.expand(state, move)
	if err != nil {
		return 0, err
	}
	if len(moves) == 0 {
		return s.heuristic(state, move, c), nil
	}
	if s.OrderMoves {
		moves = orderMoves(child, moves, s.Evaluator, s.Roles, maximizing)
	}

	for i := 0; i < len(moves) && alpha < beta; i++ {
		var value float64
		if ShouldPrune(s.Evaluator, child, moves[i], s.Roles) {
			value = s.heuristic(child, moves[i], c)
		} else if value, err = s.alphaBeta(child, moves[i], depth-1, alpha, beta, c); err != nil {
			return 0, err
		}
		if maximizing {
			alpha = math.Max(alpha, value)
		} else {
			beta = math.Min(beta, value)
		}
	}
	if maximizing {
		return alpha, nil
	}
	return beta, nil
}
