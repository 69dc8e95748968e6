// Package tilepuzzle is the single player 8-tile sliding puzzle. The only role is 0, and it wins
// once the tiles read 1..8 with the blank in the last cell.
package tilepuzzle

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"

	"gamesearch/game"
)

const Name = "tilepuzzle"

const (
	size  = 3
	cells = size * size
	blank = 0
)

type Direction string

// The direction names the way the blank moves.
const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

var directions = []Direction{Up, Down, Left, Right}

var opposite = map[Direction]Direction{Up: Down, Down: Up, Left: Right, Right: Left}

type Move struct {
	Dir Direction `json:"dir"`
}

func (Move) Role() game.Role {
	return 0
}

type Puzzle struct {
	tiles [cells]int
	empty int
}

func Solved() *Puzzle {
	p := &Puzzle{}
	for i := 0; i < cells-1; i++ {
		p.tiles[i] = i + 1
	}
	p.tiles[cells-1] = blank
	p.empty = cells - 1
	return p
}

// New returns the solved puzzle with dirs played on it.
func New(dirs ...Direction) (*game.Game, error) {
	p := Solved()
	for _, dir := range dirs {
		if err := p.Play(Move{Dir: dir}); err != nil {
			return nil, err
		}
	}
	return game.New(p), nil
}

// FromTiles builds a puzzle from a row by row layout where 0 is the blank.
func FromTiles(tiles [cells]int) (*game.Game, error) {
	p := &Puzzle{tiles: tiles, empty: -1}
	seen := [cells]bool{}
	for i, tile := range tiles {
		if tile < 0 || tile >= cells || seen[tile] {
			return nil, fmt.Errorf("invalid tile layout %v", tiles)
		}
		seen[tile] = true
		if tile == blank {
			p.empty = i
		}
	}
	return game.New(p), nil
}

func (p *Puzzle) NumRoles() int {
	return 1
}

func (p *Puzzle) target(dir Direction) (int, bool) {
	row, col := p.empty/size, p.empty%size
	switch dir {
	case Up:
		row--
	case Down:
		row++
	case Left:
		col--
	case Right:
		col++
	default:
		return 0, false
	}
	if row < 0 || row >= size || col < 0 || col >= size {
		return 0, false
	}
	return row*size + col, true
}

func (p *Puzzle) LegalMoves() []game.Move {
	moves := make([]game.Move, 0, len(directions))
	for _, dir := range directions {
		if _, ok := p.target(dir); ok {
			moves = append(moves, Move{Dir: dir})
		}
	}
	return moves
}

func (p *Puzzle) Play(m game.Move) error {
	move, ok := m.(Move)
	if !ok {
		return fmt.Errorf("%w: not a tile puzzle move", game.ErrMoveRejected)
	}
	to, ok := p.target(move.Dir)
	if !ok {
		return fmt.Errorf("%w: blank cannot move %s", game.ErrMoveRejected, move.Dir)
	}
	p.tiles[p.empty], p.tiles[to] = p.tiles[to], p.tiles[p.empty]
	p.empty = to
	return nil
}

func (p *Puzzle) Undo(m game.Move) error {
	move, ok := m.(Move)
	if !ok {
		return fmt.Errorf("cannot undo %+v", m)
	}
	return p.Play(Move{Dir: opposite[move.Dir]})
}

func (p *Puzzle) NextRole() game.Role {
	return 0
}

func (p *Puzzle) solved() bool {
	for i := 0; i < cells-1; i++ {
		if p.tiles[i] != i+1 {
			return false
		}
	}
	return true
}

// GameOver ends the game on the solved position even though the blank can still move.
func (p *Puzzle) GameOver() bool {
	return p.solved()
}

func (p *Puzzle) Winners() (game.Roles, bool) {
	if p.solved() {
		return game.Roles{0}, true
	}
	return nil, false
}

func (p *Puzzle) Hash() game.StateHash {
	hasher := fnv.New64a()
	for _, tile := range p.tiles {
		binary.Write(hasher, binary.LittleEndian, int8(tile))
	}
	return game.StateHash(hasher.Sum64())
}

func (p *Puzzle) Clone() game.Rules {
	c := *p
	return &c
}

// Distance is the sum of the Manhattan distances of every tile to its home cell.
func (p *Puzzle) Distance() int {
	total := 0
	for i, tile := range p.tiles {
		if tile == blank {
			continue
		}
		home := tile - 1
		total += abs(i/size-home/size) + abs(i%size-home%size)
	}
	return total
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Manhattan rates the position after a move by its negated distance to the solution.
type Manhattan struct{}

func (Manhattan) Heuristic(state game.State, move game.Move, _ game.Roles) float64 {
	g, ok := state.(*game.Game)
	if !ok {
		return 0
	}
	p, ok := g.Rules().(*Puzzle)
	if !ok {
		return 0
	}
	next := p.Clone().(*Puzzle)
	if err := next.Play(move); err != nil {
		return 0
	}
	return -float64(next.Distance())
}

func (Manhattan) CanPlay(state game.State) bool {
	g, ok := state.(*game.Game)
	if !ok {
		return false
	}
	_, ok = g.Rules().(*Puzzle)
	return ok
}

type Codec struct{}

func (Codec) Name() string {
	return Name
}

// Setup is the tile layout the history started from, nil for the solved layout.
func (Codec) Setup(state game.State) (json.RawMessage, error) {
	initial, err := game.Initial(state)
	if err != nil {
		return nil, err
	}
	g, ok := initial.(*game.Game)
	if !ok {
		return nil, fmt.Errorf("not a %s state", Name)
	}
	p, ok := g.Rules().(*Puzzle)
	if !ok {
		return nil, fmt.Errorf("not a %s state", Name)
	}
	if p.solved() {
		return nil, nil
	}
	return json.Marshal(p.tiles)
}

func (Codec) New(setup json.RawMessage) (game.State, error) {
	if len(setup) == 0 {
		return game.New(Solved()), nil
	}
	var tiles [cells]int
	if err := json.Unmarshal(setup, &tiles); err != nil {
		return nil, err
	}
	return FromTiles(tiles)
}

func (Codec) EncodeMove(move game.Move) ([]byte, error) {
	return json.Marshal(move)
}

func (Codec) DecodeMove(data []byte) (game.Move, error) {
	var move Move
	if err := json.Unmarshal(data, &move); err != nil {
		return nil, err
	}
	if _, ok := opposite[move.Dir]; !ok {
		return nil, fmt.Errorf("unknown direction %q", move.Dir)
	}
	return move, nil
}
