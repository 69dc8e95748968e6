package game

import "github.com/samber/lo"

// Role is a seat in the game, an index in [0, NumRoles). It identifies a seat, not the agent
// sitting in it.
type Role int

// Roles is the set of roles a search is performed for.
type Roles []Role

func (r Roles) Contains(role Role) bool {
	return lo.Contains(r, role)
}

// Intersects reports whether any role of r is in other.
func (r Roles) Intersects(other Roles) bool {
	return lo.SomeBy(r, other.Contains)
}

func (r Roles) Ints() []int {
	return lo.Map(r, func(role Role, _ int) int { return int(role) })
}

func RolesOf(ints ...int) Roles {
	return lo.Map(ints, func(i int, _ int) Role { return Role(i) })
}

// Move is an immutable description of a move. Implementations must be comparable values so that
// two moves are equal iff their role and payload match.
type Move interface {
	Role() Role
}

type StateHash uint64

// State is the contract a game domain plugs into the searcher. A State is owned by one goroutine
// at a time; concurrent exploration works on copies obtained from Clone or SpawnChild.
type State interface {
	NumRoles() int

	// LegalMoves is computed lazily and cached until the next mutation. It never returns nil
	// for a state without moves, only an empty slice, and the caller owns the returned slice.
	LegalMoves() []Move
	LegalMovesFor(role Role) []Move
	IsLegal(move Move) bool

	Apply(move Move) error
	UndoLast() error
	Undo(n int) error
	Redo() error

	// NextRole is meaningful only while the game is not over.
	NextRole() Role
	// Winners returns decided=false while the outcome is unknown. A decided empty set is a draw.
	Winners() (winners Roles, decided bool)
	GameOver() bool
	Result(role Role) (float64, error)

	SpawnChild(move Move) (State, error)
	Clone() State
	Hash() StateHash

	History() []Move
	RedoList() []Move
}
