package searcher

import "gamesearch/game"

// OrderMoves returns the legal moves of state sorted by heuristic value, best first for roles
// when descending. Moves with equal values keep their legal move order.
func OrderMoves(state game.State, e Evaluator, roles game.Roles, descending bool) []game.Move {
	return orderMoves(state, state.LegalMoves(), e, roles, descending)
}

// orderMoves scores every move exactly once.
func orderMoves(state game.State, moves []game.Move, e Evaluator, roles game.Roles, descending bool) []game.Move {
	sorted := make([]game.Move, 0, len(moves))
	values := make([]float64, 0, len(moves))
	for _, move := range moves {
		value := e.Heuristic(state, move, roles)
		at := len(sorted)
		for i, v := range values {
			if (descending && value > v) || (!descending && value < v) {
				at = i
				break
			}
		}
		sorted = append(sorted, nil)
		copy(sorted[at+1:], sorted[at:])
		sorted[at] = move
		values = append(values, 0)
		copy(values[at+1:], values[at:])
		values[at] = value
	}
	return sorted
}
