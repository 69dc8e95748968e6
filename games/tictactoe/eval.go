package tictactoe

import (
	"encoding/json"
	"fmt"
	"strings"

	"gamesearch/game"
)

// Outcome scores only decided positions: +1 win, -1 loss, 0 for draws and undecided positions.
type Outcome struct{}

func (Outcome) Heuristic(state game.State, move game.Move, roles game.Roles) float64 {
	b, ok := after(state, move)
	if !ok {
		return 0
	}
	return outcome(b, roles)
}

func (Outcome) CanPlay(state game.State) bool {
	_, ok := boardOf(state)
	return ok
}

func outcome(b *Board, roles game.Roles) float64 {
	winners, decided := b.Winners()
	if !decided || len(winners) == 0 {
		return 0
	}
	if winners.Intersects(roles) {
		return 1
	}
	return -1
}

// Lines adds to Outcome a count of marks on lines still open to one side, so that undecided
// positions are told apart.
type Lines struct{}

const lineWin = 100

func (Lines) Heuristic(state game.State, move game.Move, roles game.Roles) float64 {
	b, ok := after(state, move)
	if !ok {
		return 0
	}
	if _, decided := b.Winners(); decided {
		return lineWin * outcome(b, roles)
	}

	score := 0.0
	for _, line := range lines {
		ours, theirs := 0, 0
		for _, cell := range line {
			owner, taken := b.At(cell)
			switch {
			case !taken:
			case roles.Contains(owner):
				ours++
			default:
				theirs++
			}
		}
		if theirs == 0 {
			score += float64(ours)
		}
		if ours == 0 {
			score -= float64(theirs)
		}
	}
	return score
}

func (Lines) CanPlay(state game.State) bool {
	_, ok := boardOf(state)
	return ok
}

type Codec struct{}

func (Codec) Name() string {
	return Name
}

// Setup is the board the history started from, as accepted by FromCells, or nil for the
// empty board.
func (Codec) Setup(state game.State) (json.RawMessage, error) {
	initial, err := game.Initial(state)
	if err != nil {
		return nil, err
	}
	b, ok := boardOf(initial)
	if !ok {
		return nil, fmt.Errorf("not a %s state", Name)
	}
	if b.placed == 0 {
		return nil, nil
	}
	return json.Marshal(strings.ReplaceAll(b.String(), "/", ""))
}

func (Codec) New(setup json.RawMessage) (game.State, error) {
	if len(setup) == 0 {
		return New(), nil
	}
	var cells string
	if err := json.Unmarshal(setup, &cells); err != nil {
		return nil, err
	}
	return FromCells(cells)
}

func (Codec) EncodeMove(move game.Move) ([]byte, error) {
	return json.Marshal(move)
}

func (Codec) DecodeMove(data []byte) (game.Move, error) {
	var move Move
	err := json.Unmarshal(data, &move)
	return move, err
}

// Features encodes the position after a move as seen from roles: one input per cell (+1 ours,
// -1 theirs, 0 empty) and one for the side to move.
type Features struct{}

func (Features) Size() int {
	return 10
}

func (Features) Features(state game.State, move game.Move, roles game.Roles) []float64 {
	features := make([]float64, 10)
	b, ok := after(state, move)
	if !ok {
		return features
	}
	return encode(b, roles, features)
}

func (Features) CanPlay(state game.State) bool {
	_, ok := boardOf(state)
	return ok
}

// Position encodes state itself, without playing a move.
func (Features) Position(state game.State, roles game.Roles) []float64 {
	features := make([]float64, 10)
	b, ok := boardOf(state)
	if !ok {
		return features
	}
	return encode(b, roles, features)
}

func encode(b *Board, roles game.Roles, features []float64) []float64 {
	for cell := range b.cells {
		if owner, taken := b.At(cell); taken {
			if roles.Contains(owner) {
				features[cell] = 1
			} else {
				features[cell] = -1
			}
		}
	}
	if roles.Contains(b.NextRole()) {
		features[9] = 1
	} else {
		features[9] = -1
	}
	return features
}
