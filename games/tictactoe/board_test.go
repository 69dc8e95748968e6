package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gamesearch/game"
	"gamesearch/games/tilepuzzle"
)

func TestFromCells(t *testing.T) {
	t.Run("side to move follows the marks", func(t *testing.T) {
		state, err := FromCells("XO.X.....")
		require.NoError(t, err)
		require.Equal(t, game.Role(1), state.NextRole())
		require.Equal(t, "XO./X../...", state.Rules().(*Board).String())
		require.Len(t, state.LegalMoves(), 6)
	})

	t.Run("invalid layouts", func(t *testing.T) {
		_, err := FromCells("XO")
		require.Error(t, err)
		_, err = FromCells("XO.Z.....")
		require.Error(t, err)
	})

	t.Run("decided board", func(t *testing.T) {
		state, err := FromCells("XXXOO....")
		require.NoError(t, err)
		winners, decided := state.Winners()
		require.True(t, decided)
		require.Equal(t, game.Roles{0}, winners)
		require.True(t, state.GameOver())
	})
}

func TestEvaluators(t *testing.T) {
	state := New()
	roles := game.Roles{0}

	t.Run("outcome scores decided positions only", func(t *testing.T) {
		near, err := FromCells("XX.OO....")
		require.NoError(t, err)
		require.Equal(t, 1.0, Outcome{}.Heuristic(near, Move{Player: 0, Cell: 2}, roles))
		require.Equal(t, -1.0, Outcome{}.Heuristic(near, Move{Player: 0, Cell: 2}, game.Roles{1}))
		require.Equal(t, 0.0, Outcome{}.Heuristic(near, Move{Player: 0, Cell: 8}, roles))
		require.Equal(t, 0.0, Outcome{}.Heuristic(near, Move{Player: 0, Cell: 0}, roles), "Illegal move")
	})

	t.Run("lines prefer the centre over corners over edges", func(t *testing.T) {
		center := Lines{}.Heuristic(state, Move{Player: 0, Cell: 4}, roles)
		corner := Lines{}.Heuristic(state, Move{Player: 0, Cell: 0}, roles)
		edge := Lines{}.Heuristic(state, Move{Player: 0, Cell: 1}, roles)
		require.Equal(t, 4.0, center)
		require.Equal(t, 3.0, corner)
		require.Equal(t, 2.0, edge)
		require.Equal(t, -4.0, Lines{}.Heuristic(state, Move{Player: 0, Cell: 4}, game.Roles{1}))
	})

	t.Run("lines score wins above any position", func(t *testing.T) {
		near, err := FromCells("XX.OO....")
		require.NoError(t, err)
		require.Equal(t, float64(lineWin), Lines{}.Heuristic(near, Move{Player: 0, Cell: 2}, roles))
	})

	t.Run("evaluators do not modify the state", func(t *testing.T) {
		hash := state.Hash()
		Lines{}.Heuristic(state, Move{Player: 0, Cell: 4}, roles)
		Outcome{}.Heuristic(state, Move{Player: 0, Cell: 4}, roles)
		Features{}.Features(state, Move{Player: 0, Cell: 4}, roles)
		require.Equal(t, hash, state.Hash())
		require.Empty(t, state.History())
	})

	t.Run("only tic-tac-toe", func(t *testing.T) {
		puzzle, err := tilepuzzle.New(tilepuzzle.Left)
		require.NoError(t, err)
		require.True(t, Lines{}.CanPlay(state))
		require.False(t, Lines{}.CanPlay(puzzle))
		require.False(t, Outcome{}.CanPlay(puzzle))
		require.False(t, Features{}.CanPlay(puzzle))
	})
}

func TestFeatures(t *testing.T) {
	state, err := FromCells("X...O....")
	require.NoError(t, err)

	features := Features{}.Features(state, Move{Player: 0, Cell: 8}, game.Roles{0})
	require.Equal(t, []float64{1, 0, 0, 0, -1, 0, 0, 0, 1, -1}, features)

	position := Features{}.Position(state, game.Roles{1})
	require.Equal(t, []float64{-1, 0, 0, 0, 1, 0, 0, 0, 0, -1}, position)
}

func TestCodec(t *testing.T) {
	data, err := Codec{}.EncodeMove(Move{Player: 1, Cell: 7})
	require.NoError(t, err)
	require.JSONEq(t, `{"player": 1, "cell": 7}`, string(data))

	setup, err := Codec{}.Setup(New())
	require.NoError(t, err)
	require.Nil(t, setup)
}
