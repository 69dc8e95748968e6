package searcher

import "gamesearch/game"

// Evaluator scores the state reached by playing move on state, from the perspective of roles.
// Higher is better for roles. Heuristic must not modify state, and states with equal hashes must
// score equally for the same move and roles.
type Evaluator interface {
	Heuristic(state game.State, move game.Move, roles game.Roles) float64
}

// Pruner is implemented by evaluators that cut branches: when ShouldPrune returns true the
// branch is scored with Heuristic whatever the remaining depth.
type Pruner interface {
	ShouldPrune(state game.State, move game.Move, roles game.Roles) bool
}

// Supporter is implemented by evaluators that only handle some games.
type Supporter interface {
	CanPlay(state game.State) bool
}

type HeuristicFunc func(state game.State, move game.Move, roles game.Roles) float64

func (f HeuristicFunc) Heuristic(state game.State, move game.Move, roles game.Roles) float64 {
	return f(state, move, roles)
}

func ShouldPrune(e Evaluator, state game.State, move game.Move, roles game.Roles) bool {
	if p, ok := e.(Pruner); ok {
		return p.ShouldPrune(state, move, roles)
	}
	return false
}

func CanPlay(e Evaluator, state game.State) bool {
	if s, ok := e.(Supporter); ok {
		return s.CanPlay(state)
	}
	return true
}
