package remote

import (
	"encoding/json"

	"gamesearch/game"
)

// request is the body of every POST route. Move is absent for the routes that take none.
type request struct {
	Record   game.Record     `json:"record"`
	Move     json.RawMessage `json:"move,omitempty"`
	Roles    []int           `json:"roles"`
	Depth    int             `json:"depth"`
	BudgetMs int64           `json:"budgetMs"`
}

type nameResponse struct {
	Name string `json:"name"`
}

type boolResponse struct {
	OK bool `json:"ok"`
}

type valueResponse struct {
	Value float64 `json:"value"`
}

// moveResponse carries a null move when the position has no legal move.
type moveResponse struct {
	Move json.RawMessage `json:"move"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Illegal bool   `json:"illegal,omitempty"`
}

// Puzzle search methods accepted by the solve stream.
const (
	DepthFirst   = "dfs"
	BreadthFirst = "bfs"
	BestFirst    = "best"
)

type SolveRequest struct {
	Record game.Record `json:"record"`
	Roles  []int       `json:"roles"`
	Method string      `json:"method"`
	// Limit is the depth for dfs and bfs and the node budget for best.
	Limit int `json:"limit"`
}

const (
	levelMessage  = "level"
	resultMessage = "result"
	errorMessage  = "error"
)

// SolveMessage is streamed by the solve route: one "level" message per completed breadth-first
// level, then a single "result" or "error" message.
type SolveMessage struct {
	Type   string            `json:"type"`
	Level  int               `json:"level,omitempty"`
	Nodes  int64             `json:"nodes"`
	Solved bool              `json:"solved,omitempty"`
	Moves  []json.RawMessage `json:"moves,omitempty"`
	Error  string            `json:"error,omitempty"`
}
