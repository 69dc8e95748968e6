package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/player"
	"gamesearch/store"
)

type Option func(e *LocalEngine)

// WithDepth is the depth passed to agents on every request.
func WithDepth(depth int) Option {
	return func(e *LocalEngine) {
		e.depth = depth
	}
}

// WithBudget bounds every move search. Zero means depth only.
func WithBudget(budget time.Duration) Option {
	return func(e *LocalEngine) {
		e.budget = budget
	}
}

func WithMaxMoves(maxMoves int) Option {
	return func(e *LocalEngine) {
		if maxMoves > 0 {
			e.maxMoves = maxMoves
		}
	}
}

// WithStore saves the game to db when Run finishes and makes Save available.
func WithStore(db store.Store, codec game.Codec) Option {
	return func(e *LocalEngine) {
		e.db = db
		e.codec = codec
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(e *LocalEngine) {
		e.metrics = collector
	}
}

func WithSeed(seed uint64) Option {
	return func(e *LocalEngine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// statsReporter is implemented by agents that count the positions they search.
type statsReporter interface {
	Stats() player.Stats
}

// LocalEngine drives one game between the agents of a roster. It is not safe for concurrent use.
type LocalEngine struct {
	ID       uuid.UUID
	state    game.State
	roster   *Roster
	depth    int
	budget   time.Duration
	maxMoves int
	db       store.Store
	codec    game.Codec
	metrics  metrics.Collector
	rng      *rand.Rand
	step     int
}

var _ Engine = &LocalEngine{}

func NewLocalEngine(state game.State, roster *Roster, options ...Option) *LocalEngine {
	e := &LocalEngine{ // Default values
		ID:       uuid.New(),
		state:    state,
		roster:   roster,
		depth:    1,
		maxMoves: MaxMoves,
		metrics:  metrics.NewDummyCollector(),
		rng:      rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		step:     len(state.History()),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Load rebuilds the game saved under id and continues it with the same id.
func Load(db store.Store, codec game.Codec, id uuid.UUID, roster *Roster, options ...Option) (*LocalEngine, error) {
	entry, err := store.LoadRecord(db, codec.Name(), id)
	if err != nil {
		return nil, err
	}
	state, err := game.Decode(codec, entry.Record)
	if err != nil {
		return nil, fmt.Errorf("failed to decode game %s: %w", id, err)
	}
	e := NewLocalEngine(state, roster, append([]Option{WithStore(db, codec)}, options...)...)
	e.ID = id
	return e, nil
}

func (e *LocalEngine) State() game.State {
	return e.state
}

func (e *LocalEngine) Roster() *Roster {
	return e.roster
}

func (e *LocalEngine) agentFor(role game.Role) (player.Agent, game.Roles, error) {
	agent, ok := e.roster.Agent(role)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrNoAgent, role)
	}
	return agent, e.roster.RolesOf(agent), nil
}

func positions(agent player.Agent) int64 {
	if reporter, ok := agent.(statsReporter); ok {
		return reporter.Stats().Positions
	}
	return 0
}

// Step asks the agent of the next role for a move and plays it. Agents search a copy of the
// game, so a misbehaving agent cannot corrupt it.
func (e *LocalEngine) Step(ctx context.Context) (metrics.MoveMetric, error) {
	if e.state.GameOver() {
		return metrics.MoveMetric{}, ErrGameOver
	}
	role := e.state.NextRole()
	agent, roles, err := e.agentFor(role)
	if err != nil {
		return metrics.MoveMetric{}, err
	}

	e.step++
	e.metrics.Start(e.step, role, agent.Name())
	before := positions(agent)
	move, err := agent.SelectMove(ctx, e.state.Clone(), roles, e.depth, e.budget)
	if err != nil {
		e.step--
		return metrics.MoveMetric{}, fmt.Errorf("%s failed to select a move: %w", agent.Name(), err)
	}
	if move == nil {
		e.step--
		return metrics.MoveMetric{}, fmt.Errorf("%w: no legal move for role %d", ErrGameOver, role)
	}
	if err := e.state.Apply(move); err != nil {
		e.step--
		return metrics.MoveMetric{}, fmt.Errorf("%s selected a move that cannot be played: %w", agent.Name(), err)
	}
	e.metrics.AddPositions(positions(agent) - before)

	metric := e.metrics.Complete(move)
	log.Info().Msgf("step %d: %s played %+v for role %d", e.step, agent.Name(), move, role)
	return metric, nil
}

// Run plays until the game is over, MaxMoves moves were played or ctx is done. The game is
// saved if the engine has a store, whatever the outcome.
func (e *LocalEngine) Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error) {
	start := time.Now()
	moves := []metrics.MoveMetric{}
	log.Info().Msgf("game %s: role %d is starting", e.ID, e.state.NextRole())

	var err error
	for !e.state.GameOver() && len(moves) < e.maxMoves {
		if err = ctx.Err(); err != nil {
			break
		}
		var metric metrics.MoveMetric
		metric, err = e.Step(ctx)
		if err != nil {
			break
		}
		moves = append(moves, metric)
	}

	gameMetric := metrics.NewGameMetric(e.state, start, len(moves))
	if e.state.GameOver() {
		log.Info().Msgf("game %s is over after %d moves: %s", e.ID, len(moves), gameMetric.Outcome())
	} else if err == nil {
		log.Info().Msgf("game %s stopped after %d moves without a winner", e.ID, len(moves))
	}

	if e.db != nil {
		if saveErr := e.Save(); saveErr != nil {
			log.Warn().Err(saveErr).Msgf("failed to save game %s", e.ID)
			if err == nil {
				err = saveErr
			}
		}
	}
	return gameMetric, moves, err
}

// Evaluate asks the agent of the next role to score move.
func (e *LocalEngine) Evaluate(ctx context.Context, move game.Move) (float64, error) {
	agent, roles, err := e.agentFor(e.state.NextRole())
	if err != nil {
		return 0, err
	}
	return agent.Evaluate(ctx, e.state.Clone(), move, roles, e.depth, e.budget)
}

// RandomLegalMove returns a random legal move without playing it.
func (e *LocalEngine) RandomLegalMove() (game.Move, error) {
	move := game.RandomLegalMove(e.state, e.rng)
	if move == nil {
		return nil, ErrGameOver
	}
	return move, nil
}

// PlayRandomMove plays a random legal move and returns it.
func (e *LocalEngine) PlayRandomMove() (game.Move, error) {
	move, err := e.RandomLegalMove()
	if err != nil {
		return nil, err
	}
	if err := e.state.Apply(move); err != nil {
		return nil, err
	}
	e.step++
	return move, nil
}

func (e *LocalEngine) Undo(n int) error {
	if err := e.state.Undo(n); err != nil {
		return err
	}
	e.step -= n
	return nil
}

func (e *LocalEngine) Redo() error {
	if err := e.state.Redo(); err != nil {
		return err
	}
	e.step++
	return nil
}

func (e *LocalEngine) History() []game.Move {
	return e.state.History()
}

func (e *LocalEngine) RedoList() []game.Move {
	return e.state.RedoList()
}

func (e *LocalEngine) Save() error {
	if e.db == nil {
		return ErrNoStore
	}
	record, err := game.Encode(e.codec, e.state)
	if err != nil {
		return fmt.Errorf("failed to encode game %s: %w", e.ID, err)
	}
	return store.SaveRecord(e.db, e.ID, record)
}
