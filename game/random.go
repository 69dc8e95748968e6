package game

import "golang.org/x/exp/rand"

// RandomLegalMove returns nil when the state has no legal move.
func RandomLegalMove(state State, rng *rand.Rand) Move {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return nil
	}
	if rng == nil {
		return moves[rand.Intn(len(moves))]
	}
	return moves[rng.Intn(len(moves))]
}
