package searcher

import (
	"cmp"
	"math"

	"golang.org/x/exp/slices"

	"gamesearch/game"
)

// The puzzle searches look for a state that roles have won, ignoring whose turn it is. They
// return nil when no such state was found within the limits. The monitor may be nil.

// DepthFirst searches at most moves plies deep and returns the first won state found on the
// current path, which is not necessarily the closest one.
func DepthFirst(state game.State, roles game.Roles, moves int, monitor *Monitor) (game.State, error) {
	return depthFirst(state, roles, moves, nil, monitor)
}

// DepthFirstOrdered tries the moves of every node best first according to e.
func DepthFirstOrdered(state game.State, roles game.Roles, moves int, e Evaluator, monitor *Monitor) (game.State, error) {
	return depthFirst(state, roles, moves, e, monitor)
}

func depthFirst(state game.State, roles game.Roles, moves int, e Evaluator, monitor *Monitor) (game.State, error) {
	if monitor != nil {
		monitor.Increment()
	}
	if game.CheckForWin(state, roles) == 1 {
		return state, nil
	}
	if moves <= 0 || (monitor != nil && monitor.Disabled()) {
		return nil, nil
	}

	candidates := state.LegalMoves()
	if e != nil {
		candidates = orderMoves(state, candidates, e, roles, true)
	}
	for _, move := range candidates {
		child, err := state.SpawnChild(move)
		if err != nil {
			return nil, err
		}
		found, err := depthFirst(child, roles, moves-1, e, monitor)
		if err != nil || found != nil {
			return found, err
		}
	}
	return nil, nil
}

// BreadthFirst expands the search level by level, so a found state is reached with the fewest
// moves. Every level is kept in memory at once, and memory grows with the branching factor to
// the power of moves. The monitor is checked for every frontier state and its level hook fires
// after each expanded level.
func BreadthFirst(state game.State, roles game.Roles, moves int, monitor *Monitor) (game.State, error) {
	frontier := []game.State{state}
	for level := 0; len(frontier) > 0; level++ {
		for _, s := range frontier {
			if monitor != nil {
				monitor.Increment()
				if monitor.Disabled() {
					return nil, nil
				}
			}
			if game.CheckForWin(s, roles) == 1 {
				return s, nil
			}
		}
		if level >= moves {
			return nil, nil
		}

		next := make([]game.State, 0, len(frontier))
		for _, s := range frontier {
			if monitor != nil && monitor.Disabled() {
				return nil, nil
			}
			for _, move := range s.LegalMoves() {
				child, err := s.SpawnChild(move)
				if err != nil {
					return nil, err
				}
				next = append(next, child)
			}
		}
		if monitor != nil {
			monitor.levelDone(level + 1)
		}
		frontier = next
	}
	return nil, nil
}

type candidate struct {
	state game.State
	value float64
}

// BestFirst always expands the open state with the highest heuristic value, scoring a child
// with e.Heuristic(parent, move, roles). States already queued or expanded are recognized by
// hash and skipped. maxNodes bounds both the number of expansions and the size of the open list.
//
// The result relies on equal states scoring equally; an inconsistent heuristic makes the search
// wander but never fails it.
func BestFirst(state game.State, roles game.Roles, maxNodes int, e Evaluator, monitor *Monitor) (game.State, error) {
	open := []candidate{{state: state, value: math.Inf(-1)}}
	seen := map[game.StateHash]struct{}{state.Hash(): {}}

	for len(open) > 0 && maxNodes > 0 {
		current := open[len(open)-1]
		if game.CheckForWin(current.state, roles) == 1 {
			return current.state, nil
		}
		open = open[:len(open)-1]
		maxNodes--
		if monitor != nil {
			monitor.Increment()
			if monitor.Disabled() {
				return nil, nil
			}
		}

		for _, move := range current.state.LegalMoves() {
			if len(open) >= maxNodes {
				break
			}
			child, err := current.state.SpawnChild(move)
			if err != nil {
				return nil, err
			}
			hash := child.Hash()
			if _, ok := seen[hash]; ok {
				continue
			}
			seen[hash] = struct{}{}

			value := e.Heuristic(current.state, move, roles)
			at, _ := slices.BinarySearchFunc(open, value, func(c candidate, v float64) int {
				return cmp.Compare(c.value, v)
			})
			open = slices.Insert(open, at, candidate{state: child, value: value})
		}
	}
	return nil, nil
}
