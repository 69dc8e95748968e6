// Package tictactoe is a 3x3 noughts and crosses domain. Role 0 plays first.
package tictactoe

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"gamesearch/game"
)

const Name = "tictactoe"

const empty = -1

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

type Move struct {
	Player game.Role `json:"player"`
	Cell   int       `json:"cell"`
}

func (m Move) Role() game.Role {
	return m.Player
}

type Board struct {
	cells  [9]game.Role
	turn   game.Role
	placed int
}

func NewBoard() *Board {
	b := &Board{}
	for i := range b.cells {
		b.cells[i] = empty
	}
	return b
}

// New returns an empty game with role 0 to move.
func New() *game.Game {
	return game.New(NewBoard())
}

// FromCells builds a position from a 9 character string of 'X', 'O' and '.', row by row. The
// side to move is derived from the number of marks.
func FromCells(cells string) (*game.Game, error) {
	if len(cells) != 9 {
		return nil, fmt.Errorf("expected 9 cells, got %d", len(cells))
	}
	b := NewBoard()
	for i, c := range cells {
		switch c {
		case 'X':
			b.cells[i] = 0
			b.placed++
		case 'O':
			b.cells[i] = 1
			b.placed++
		case '.':
		default:
			return nil, fmt.Errorf("invalid cell %q", c)
		}
	}
	b.turn = game.Role(b.placed % 2)
	return game.New(b), nil
}

func (b *Board) At(cell int) (game.Role, bool) {
	return b.cells[cell], b.cells[cell] != empty
}

func (b *Board) NumRoles() int {
	return 2
}

func (b *Board) LegalMoves() []game.Move {
	if _, decided := b.Winners(); decided {
		return nil
	}
	moves := make([]game.Move, 0, 9-b.placed)
	for i, owner := range b.cells {
		if owner == empty {
			moves = append(moves, Move{Player: b.turn, Cell: i})
		}
	}
	return moves
}

func (b *Board) Play(m game.Move) error {
	move, ok := m.(Move)
	if !ok {
		return fmt.Errorf("%w: not a tic-tac-toe move", game.ErrMoveRejected)
	}
	if move.Cell < 0 || move.Cell >= len(b.cells) || b.cells[move.Cell] != empty {
		return fmt.Errorf("%w: cell %d is not free", game.ErrMoveRejected, move.Cell)
	}
	b.cells[move.Cell] = move.Player
	b.turn = 1 - move.Player
	b.placed++
	return nil
}

func (b *Board) Undo(m game.Move) error {
	move, ok := m.(Move)
	if !ok || move.Cell < 0 || move.Cell >= len(b.cells) || b.cells[move.Cell] != move.Player {
		return fmt.Errorf("cannot undo %+v", m)
	}
	b.cells[move.Cell] = empty
	b.turn = move.Player
	b.placed--
	return nil
}

func (b *Board) NextRole() game.Role {
	return b.turn
}

func (b *Board) Winners() (game.Roles, bool) {
	for _, line := range lines {
		owner := b.cells[line[0]]
		if owner != empty && owner == b.cells[line[1]] && owner == b.cells[line[2]] {
			return game.Roles{owner}, true
		}
	}
	if b.placed == len(b.cells) {
		return game.Roles{}, true
	}
	return nil, false
}

func (b *Board) Hash() game.StateHash {
	hasher := fnv.New64a()
	for _, owner := range b.cells {
		binary.Write(hasher, binary.LittleEndian, int8(owner))
	}
	binary.Write(hasher, binary.LittleEndian, int8(b.turn))
	return game.StateHash(hasher.Sum64())
}

func (b *Board) Clone() game.Rules {
	c := *b
	return &c
}

func (b *Board) String() string {
	out := make([]byte, 0, 12)
	for i, owner := range b.cells {
		switch owner {
		case 0:
			out = append(out, 'X')
		case 1:
			out = append(out, 'O')
		default:
			out = append(out, '.')
		}
		if i%3 == 2 && i < 8 {
			out = append(out, '/')
		}
	}
	return string(out)
}

// boardOf returns the board behind a state built by this package.
func boardOf(state game.State) (*Board, bool) {
	g, ok := state.(*game.Game)
	if !ok {
		return nil, false
	}
	b, ok := g.Rules().(*Board)
	return b, ok
}

// after returns a copy of the board of state with move played on it.
func after(state game.State, move game.Move) (*Board, bool) {
	b, ok := boardOf(state)
	if !ok {
		return nil, false
	}
	next := b.Clone().(*Board)
	if err := next.Play(move); err != nil {
		return nil, false
	}
	return next, true
}
