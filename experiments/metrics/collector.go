package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"gamesearch/game"
)

type SearchMetric struct {
	Duration  time.Duration
	Positions int64
}

type MoveMetric struct {
	Step  int
	Role  int
	Agent string
	Move  string
	SearchMetric
}

type GameMetric struct {
	Winners    []int
	Decided    bool
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalMoves int
}

// NewGameMetric summarizes a finished (or abandoned) game.
func NewGameMetric(state game.State, start time.Time, moves int) GameMetric {
	winners, decided := state.Winners()
	end := time.Now()
	return GameMetric{
		Winners:    winners.Ints(),
		Decided:    decided,
		StartTime:  start,
		EndTime:    end,
		Duration:   end.Sub(start),
		TotalMoves: moves,
	}
}

// Outcome is "draw", "undecided" or the winning roles joined by "+".
func (g GameMetric) Outcome() string {
	if !g.Decided {
		return "undecided"
	}
	if len(g.Winners) == 0 {
		return "draw"
	}
	return strings.Join(lo.Map(g.Winners, func(role int, _ int) string {
		return strconv.Itoa(role)
	}), "+")
}

type Collector interface {
	Start(step int, role game.Role, agent string)
	AddPositions(n int64)
	Complete(move game.Move) MoveMetric
}

type collector struct {
	step      int
	role      game.Role
	agent     string
	startTime time.Time
	positions atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(step int, role game.Role, agent string) {
	m.step = step
	m.role = role
	m.agent = agent
	m.startTime = time.Now()
	m.positions.Store(0)
}

func (m *collector) AddPositions(n int64) {
	m.positions.Add(n)
}

func (m *collector) Complete(move game.Move) MoveMetric {
	return MoveMetric{
		Step:  m.step,
		Role:  int(m.role),
		Agent: m.agent,
		Move:  fmt.Sprintf("%+v", move),
		SearchMetric: SearchMetric{
			Duration:  time.Since(m.startTime),
			Positions: m.positions.Load(),
		},
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(int, game.Role, string)   {}
func (m *dummyCollector) AddPositions(int64)             {}
func (m *dummyCollector) Complete(game.Move) MoveMetric { return MoveMetric{} }
