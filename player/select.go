package player

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gamesearch/game"
	"gamesearch/searcher"
)

// SelectMove picks the legal move of state with the greatest value for roles.
//
// Without a budget every move is evaluated in legal move order and the first of equally valued
// moves wins. With a budget every move is evaluated in its own goroutine on its own copy of
// state, all sharing one monitor that is disabled when the budget runs out; the earliest
// reported of equally valued moves wins. Cancelling ctx disables the monitor as well. All
// goroutines have returned when SelectMove returns.
func (p *Player) SelectMove(ctx context.Context, state game.State, roles game.Roles, depth int, budget time.Duration) (game.Move, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return nil, nil
	}

	budget = p.timeBudget(budget)
	start := time.Now()
	monitor := searcher.NewMonitor()
	stop := context.AfterFunc(ctx, monitor.Disable)
	defer stop()

	var best game.Move
	var err error
	if budget <= 0 {
		best, err = p.selectSequential(state, moves, roles, depth, monitor)
	} else {
		best, err = p.selectParallel(state, moves, roles, depth, budget, monitor)
	}
	if err != nil {
		return nil, err
	}

	took := time.Since(start)
	p.tracker.record(took, monitor.NodeCount())
	log.Debug().Msgf("%s selected %+v for roles %v after %d positions in %s", p.name, best, roles, monitor.NodeCount(), took)
	return best, nil
}

func (p *Player) selectSequential(state game.State, moves []game.Move, roles game.Roles, depth int, monitor *searcher.Monitor) (game.Move, error) {
	var best game.Move
	var bestValue float64
	for _, move := range moves {
		value, err := p.evaluateMonitored(state, move, roles, depth, monitor)
		if err != nil {
			return nil, err
		}
		if best == nil || value > bestValue {
			best, bestValue = move, value
		}
	}
	return best, nil
}

func (p *Player) selectParallel(state game.State, moves []game.Move, roles game.Roles, depth int, budget time.Duration, monitor *searcher.Monitor) (game.Move, error) {
	monitor.DisableLater(budget)
	defer monitor.Stop()

	copies := make([]game.State, len(moves))
	for i := range moves {
		copies[i] = state.Clone()
	}

	var sel selection
	var g errgroup.Group
	for i, move := range moves {
		i, move := i, move
		g.Go(func() error {
			value, err := p.evaluateMonitored(copies[i], move, roles, depth, monitor)
			if err != nil {
				monitor.Disable()
				return err
			}
			sel.report(move, value)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sel.best, nil
}

// selection keeps the best reported move. Only a strictly greater value replaces it.
type selection struct {
	mu    sync.Mutex
	best  game.Move
	value float64
}

func (s *selection) report(move game.Move, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.best == nil || value > s.value {
		s.best, s.value = move, value
	}
}
