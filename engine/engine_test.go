package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/games/tictactoe"
	"gamesearch/games/tilepuzzle"
	"gamesearch/player"
	"gamesearch/store"
)

func bound(t *testing.T, state game.State, agents ...player.Agent) *Roster {
	t.Helper()
	roster := NewRoster()
	for role, agent := range agents {
		require.NoError(t, roster.Bind(game.Role(role), agent, state))
	}
	return roster
}

// rolesSpy plays randomly and remembers the roles of every request.
type rolesSpy struct {
	*player.Random
	roles []game.Roles
}

func (s *rolesSpy) SelectMove(ctx context.Context, state game.State, roles game.Roles, depth int, budget time.Duration) (game.Move, error) {
	s.roles = append(s.roles, roles)
	return s.Random.SelectMove(ctx, state, roles, depth, budget)
}

func TestRoster(t *testing.T) {
	state := tictactoe.New()

	t.Run("refuses agents that cannot play", func(t *testing.T) {
		roster := NewRoster()
		p := player.NewPlayer(tilepuzzle.Manhattan{})
		err := roster.Bind(0, p, state)
		require.ErrorIs(t, err, player.ErrCannotPlayGame)
		_, ok := roster.Agent(0)
		require.False(t, ok)
	})

	t.Run("refuses roles out of range", func(t *testing.T) {
		roster := NewRoster()
		require.Error(t, roster.Bind(2, player.NewRandom(1), state))
		require.Error(t, roster.Bind(-1, player.NewRandom(1), state))
	})

	t.Run("one agent for several roles", func(t *testing.T) {
		random := player.NewRandom(1)
		other := player.NewRandom(2)
		roster := bound(t, state, random, random)
		require.Equal(t, game.Roles{0, 1}, roster.RolesOf(random))
		require.Empty(t, roster.RolesOf(other))

		roster.Unbind(1)
		require.Equal(t, game.Roles{0}, roster.RolesOf(random))
		require.Equal(t, game.Roles{0}, roster.Roles())
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("random game", func(t *testing.T) {
		state := tictactoe.New()
		random := player.NewRandom(7)
		e := NewLocalEngine(state, bound(t, state, random, random))

		gameMetric, moves, err := e.Run(ctx)
		require.NoError(t, err)
		require.True(t, state.GameOver())
		require.True(t, gameMetric.Decided)
		require.Equal(t, len(state.History()), gameMetric.TotalMoves)
		require.Len(t, moves, gameMetric.TotalMoves)
		for i, move := range moves {
			require.Equal(t, i+1, move.Step)
			require.Equal(t, i%2, move.Role)
			require.Equal(t, "random", move.Agent)
		}
	})

	t.Run("searching player never loses", func(t *testing.T) {
		for seed := uint64(0); seed < 3; seed++ {
			state := tictactoe.New()
			p := player.NewPlayer(tictactoe.Outcome{}, player.WithName("alphabeta"))
			e := NewLocalEngine(state, bound(t, state, p, player.NewRandom(seed)), WithDepth(9))

			gameMetric, _, err := e.Run(ctx)
			require.NoError(t, err)
			require.True(t, gameMetric.Decided)
			require.NotContains(t, gameMetric.Winners, 1)
		}
	})

	t.Run("stops after max moves", func(t *testing.T) {
		state := tictactoe.New()
		random := player.NewRandom(1)
		e := NewLocalEngine(state, bound(t, state, random, random), WithMaxMoves(3))

		gameMetric, moves, err := e.Run(ctx)
		require.NoError(t, err)
		require.Len(t, moves, 3)
		require.False(t, gameMetric.Decided)
		require.Equal(t, "undecided", gameMetric.Outcome())
	})

	t.Run("cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		state := tictactoe.New()
		random := player.NewRandom(1)
		e := NewLocalEngine(state, bound(t, state, random, random))

		_, moves, err := e.Run(cancelled)
		require.ErrorIs(t, err, context.Canceled)
		require.Empty(t, moves)
	})

	t.Run("collects positions", func(t *testing.T) {
		state, err := tictactoe.FromCells("XX.OO....")
		require.NoError(t, err)
		p := player.NewPlayer(tictactoe.Outcome{}, player.WithTracking())
		e := NewLocalEngine(state, bound(t, state, p, player.NewRandom(1)), WithDepth(2), WithMetrics(metrics.NewCollector()))

		metric, err := e.Step(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, metric.Step)
		require.Equal(t, p.Stats().Positions, metric.Positions)
		require.Positive(t, metric.Positions)
		require.Equal(t, []game.Move{tictactoe.Move{Player: 0, Cell: 2}}, state.History()[4:])
	})
}

func TestStep(t *testing.T) {
	ctx := context.Background()

	t.Run("roles of the mover", func(t *testing.T) {
		state := tictactoe.New()
		first := &rolesSpy{Random: player.NewRandom(1)}
		second := &rolesSpy{Random: player.NewRandom(2)}
		e := NewLocalEngine(state, bound(t, state, first, second), WithMaxMoves(4))

		_, _, err := e.Run(ctx)
		require.NoError(t, err)
		require.Equal(t, []game.Roles{{0}, {0}}, first.roles)
		require.Equal(t, []game.Roles{{1}, {1}}, second.roles)
	})

	t.Run("one agent searches for all its roles", func(t *testing.T) {
		state := tictactoe.New()
		spy := &rolesSpy{Random: player.NewRandom(1)}
		_, err := NewLocalEngine(state, bound(t, state, spy, spy)).Step(ctx)
		require.NoError(t, err)
		require.Equal(t, []game.Roles{{0, 1}}, spy.roles)
	})

	t.Run("no agent", func(t *testing.T) {
		state := tictactoe.New()
		roster := NewRoster()
		require.NoError(t, roster.Bind(1, player.NewRandom(1), state))
		_, err := NewLocalEngine(state, roster).Step(ctx)
		require.ErrorIs(t, err, ErrNoAgent)
		require.Empty(t, state.History())
	})

	t.Run("game over", func(t *testing.T) {
		state, err := tictactoe.FromCells("XXXOO....")
		require.NoError(t, err)
		random := player.NewRandom(1)
		_, err = NewLocalEngine(state, bound(t, state, random, random)).Step(ctx)
		require.ErrorIs(t, err, ErrGameOver)
	})
}

func TestDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("evaluate", func(t *testing.T) {
		state, err := tictactoe.FromCells("XX.OO....")
		require.NoError(t, err)
		p := player.NewPlayer(tictactoe.Outcome{})
		e := NewLocalEngine(state, bound(t, state, p, p), WithDepth(3))

		value, err := e.Evaluate(ctx, tictactoe.Move{Player: 0, Cell: 2})
		require.NoError(t, err)
		require.Equal(t, 1.0, value)
		require.Len(t, state.History(), 4)
	})

	t.Run("random move undo and redo", func(t *testing.T) {
		state := tictactoe.New()
		e := NewLocalEngine(state, NewRoster(), WithSeed(3))

		proposed, err := e.RandomLegalMove()
		require.NoError(t, err)
		require.Empty(t, e.History())
		require.Contains(t, state.LegalMoves(), proposed)

		first, err := e.PlayRandomMove()
		require.NoError(t, err)
		second, err := e.PlayRandomMove()
		require.NoError(t, err)
		require.Equal(t, []game.Move{first, second}, e.History())

		require.NoError(t, e.Undo(2))
		require.Empty(t, e.History())
		require.Equal(t, []game.Move{second, first}, e.RedoList())

		require.NoError(t, e.Redo())
		require.Equal(t, []game.Move{first}, e.History())
		require.ErrorIs(t, e.Undo(2), game.ErrNoHistory)
		require.ErrorIs(t, e.Undo(-1), game.ErrBadCount)

		require.NoError(t, e.Roster().Bind(1, player.NewRandom(1), state))
		metric, err := e.Step(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, metric.Step)
	})

	t.Run("no random move when the game is over", func(t *testing.T) {
		state, err := tictactoe.FromCells("XXXOO....")
		require.NoError(t, err)
		_, err = NewLocalEngine(state, NewRoster()).RandomLegalMove()
		require.ErrorIs(t, err, ErrGameOver)
	})

	t.Run("save without store", func(t *testing.T) {
		e := NewLocalEngine(tictactoe.New(), NewRoster())
		require.ErrorIs(t, e.Save(), ErrNoStore)
	})

	t.Run("save and load", func(t *testing.T) {
		db := store.NewMemStore()
		state := tictactoe.New()
		random := player.NewRandom(5)
		e := NewLocalEngine(state, bound(t, state, random, random), WithStore(db, tictactoe.Codec{}), WithMaxMoves(4))

		_, _, err := e.Run(ctx)
		require.NoError(t, err)
		require.NoError(t, e.Undo(1))
		require.NoError(t, e.Save())

		loaded, err := Load(db, tictactoe.Codec{}, e.ID, e.Roster())
		require.NoError(t, err)
		require.Equal(t, e.ID, loaded.ID)
		require.Equal(t, e.History(), loaded.History())
		require.Equal(t, e.RedoList(), loaded.RedoList())
		require.Equal(t, state.Hash(), loaded.State().Hash())

		metric, err := loaded.Step(ctx)
		require.NoError(t, err)
		require.Equal(t, 4, metric.Step)
	})

	t.Run("run saves the game", func(t *testing.T) {
		db := store.NewMemStore()
		state := tictactoe.New()
		random := player.NewRandom(9)
		e := NewLocalEngine(state, bound(t, state, random, random), WithStore(db, tictactoe.Codec{}))

		_, _, err := e.Run(ctx)
		require.NoError(t, err)
		entry, err := store.LoadRecord(db, tictactoe.Name, e.ID)
		require.NoError(t, err)
		require.Len(t, entry.Record.History, len(state.History()))
	})
}
