package game

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// Rules is what a domain implements to become a State. Game adds the legal move cache, the
// history and redo lists and the legality check on top of it.
//
// Play must leave the rules untouched when it returns an error. Undo receives the last played
// move and must be the exact inverse of Play; domains that cannot undo return an error.
type Rules interface {
	NumRoles() int
	LegalMoves() []Move
	Play(move Move) error
	Undo(move Move) error
	NextRole() Role
	Winners() (Roles, bool)
	Hash() StateHash
	Clone() Rules
}

// LegalityChecker may be implemented by Rules whose move space is too large to enumerate.
type LegalityChecker interface {
	IsLegal(move Move) bool
}

// TerminalDetector may be implemented by Rules that end the game while moves remain.
type TerminalDetector interface {
	GameOver() bool
}

type Game struct {
	rules   Rules
	legal   []Move
	cached  bool
	history []Move
	redo    []Move
}

func New(rules Rules) *Game {
	if rules == nil {
		panic("rules must not be nil")
	}
	return &Game{rules: rules}
}

// Rules exposes the domain state, mostly for evaluators. Mutating it directly bypasses the
// history and the legal move cache.
func (g *Game) Rules() Rules {
	return g.rules
}

func (g *Game) NumRoles() int {
	return g.rules.NumRoles()
}

func (g *Game) legalMoves() []Move {
	if !g.cached {
		g.legal = g.rules.LegalMoves()
		if g.legal == nil {
			g.legal = []Move{}
		}
		g.cached = true
	}
	return g.legal
}

func (g *Game) invalidate() {
	g.legal = nil
	g.cached = false
}

func (g *Game) LegalMoves() []Move {
	return slices.Clone(g.legalMoves())
}

func (g *Game) LegalMovesFor(role Role) []Move {
	moves := []Move{}
	for _, move := range g.legalMoves() {
		if move.Role() == role {
			moves = append(moves, move)
		}
	}
	return moves
}

func (g *Game) IsLegal(move Move) bool {
	if move == nil {
		return false
	}
	if checker, ok := g.rules.(LegalityChecker); ok {
		return checker.IsLegal(move)
	}
	return slices.Contains(g.legalMoves(), move)
}

// Apply plays a legal move. A new forward move clears the redo list.
func (g *Game) Apply(move Move) error {
	if !g.IsLegal(move) {
		return rejected(move, ErrIllegalMove)
	}
	if err := g.rules.Play(move); err != nil {
		if !errors.Is(err, ErrMoveRejected) {
			err = fmt.Errorf("%w: %w", ErrMoveRejected, err)
		}
		return rejected(move, err)
	}
	g.history = append(g.history, move)
	g.redo = nil
	g.invalidate()
	return nil
}

func (g *Game) UndoLast() error {
	if len(g.history) == 0 {
		return ErrNoHistory
	}
	last := g.history[len(g.history)-1]
	if err := g.rules.Undo(last); err != nil {
		return fmt.Errorf("%w: %w", ErrNoHistory, err)
	}
	g.history = g.history[:len(g.history)-1]
	g.redo = append(g.redo, last)
	g.invalidate()
	return nil
}

// Undo takes back the last n moves. Either all n moves are undone or none.
func (g *Game) Undo(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrBadCount, n)
	}
	if n > len(g.history) {
		return fmt.Errorf("%w: %d moves requested, %d played", ErrNoHistory, n, len(g.history))
	}
	for i := 0; i < n; i++ {
		if err := g.UndoLast(); err != nil {
			for ; i > 0; i-- {
				if redoErr := g.Redo(); redoErr != nil {
					return errors.Join(err, redoErr)
				}
			}
			return err
		}
	}
	return nil
}

func (g *Game) Redo() error {
	if len(g.redo) == 0 {
		return ErrNoRedo
	}
	move := g.redo[len(g.redo)-1]
	if err := g.rules.Play(move); err != nil {
		return fmt.Errorf("%w: %w", ErrNoRedo, rejected(move, err))
	}
	g.redo = g.redo[:len(g.redo)-1]
	g.history = append(g.history, move)
	g.invalidate()
	return nil
}

func (g *Game) NextRole() Role {
	return g.rules.NextRole()
}

func (g *Game) Winners() (Roles, bool) {
	return g.rules.Winners()
}

func (g *Game) GameOver() bool {
	if detector, ok := g.rules.(TerminalDetector); ok {
		return detector.GameOver()
	}
	return len(g.legalMoves()) == 0
}

// Result scores a finished game for role with CheckForWin.
func (g *Game) Result(role Role) (float64, error) {
	if !g.GameOver() {
		return 0, ErrNotFinished
	}
	return CheckForWin(g, Roles{role}), nil
}

func (g *Game) SpawnChild(move Move) (State, error) {
	child := g.clone()
	if err := child.Apply(move); err != nil {
		return nil, err
	}
	return child, nil
}

func (g *Game) Clone() State {
	return g.clone()
}

func (g *Game) clone() *Game {
	return &Game{
		rules:   g.rules.Clone(),
		legal:   slices.Clone(g.legal),
		cached:  g.cached,
		history: slices.Clone(g.history),
		redo:    slices.Clone(g.redo),
	}
}

func (g *Game) Hash() StateHash {
	return g.rules.Hash()
}

func (g *Game) History() []Move {
	return slices.Clone(g.history)
}

func (g *Game) RedoList() []Move {
	return slices.Clone(g.redo)
}

// CheckForWin returns +1 when one of roles is among the winners, -1 when there are winners but
// none of them is in roles, and 0 otherwise. An undecided game and a drawn game both score 0;
// domains that need to tell them apart call Winners.
func CheckForWin(state State, roles Roles) float64 {
	winners, decided := state.Winners()
	if !decided || len(winners) == 0 {
		return 0
	}
	if winners.Intersects(roles) {
		return 1
	}
	return -1
}
