package tilepuzzle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gamesearch/game"
)

func puzzleOf(state game.State) *Puzzle {
	return state.(*game.Game).Rules().(*Puzzle)
}

func TestNew(t *testing.T) {
	t.Run("scramble has no history", func(t *testing.T) {
		state, err := New(Left, Up)
		require.NoError(t, err)
		require.Empty(t, state.History())
		require.False(t, state.GameOver())
		require.Equal(t, 2, puzzleOf(state).Distance())
	})

	t.Run("blank cannot leave the board", func(t *testing.T) {
		_, err := New(Right)
		require.ErrorIs(t, err, game.ErrMoveRejected)
	})

	t.Run("solved puzzle is over but has moves", func(t *testing.T) {
		state := game.New(Solved())
		require.True(t, state.GameOver())
		require.Equal(t, []game.Move{Move{Dir: Up}, Move{Dir: Left}}, state.LegalMoves())
		result, err := state.Result(0)
		require.NoError(t, err)
		require.Equal(t, 1.0, result)
	})
}

func TestFromTiles(t *testing.T) {
	state, err := FromTiles([cells]int{1, 2, 3, 4, 5, 6, 7, 0, 8})
	require.NoError(t, err)
	require.NoError(t, state.Apply(Move{Dir: Right}))
	require.True(t, state.GameOver())

	_, err = FromTiles([cells]int{1, 1, 3, 4, 5, 6, 7, 0, 8})
	require.Error(t, err)
	_, err = FromTiles([cells]int{1, 2, 3, 4, 5, 6, 7, 9, 8})
	require.Error(t, err)
}

func TestUndo(t *testing.T) {
	state, err := New(Left, Up)
	require.NoError(t, err)
	hash := state.Hash()
	require.NoError(t, state.Apply(Move{Dir: Left}))
	require.NoError(t, state.Apply(Move{Dir: Up}))
	require.NoError(t, state.Undo(2))
	require.Equal(t, hash, state.Hash())
}

func TestManhattan(t *testing.T) {
	state, err := New(Left, Up)
	require.NoError(t, err)
	require.Equal(t, -1.0, Manhattan{}.Heuristic(state, Move{Dir: Down}, nil))
	require.Equal(t, -3.0, Manhattan{}.Heuristic(state, Move{Dir: Up}, nil))
	require.True(t, Manhattan{}.CanPlay(state))
}

func TestCodec(t *testing.T) {
	_, err := Codec{}.DecodeMove([]byte(`{"dir": "sideways"}`))
	require.Error(t, err)

	move, err := Codec{}.DecodeMove([]byte(`{"dir": "up"}`))
	require.NoError(t, err)
	require.Equal(t, Move{Dir: Up}, move)

	setup, err := Codec{}.Setup(game.New(Solved()))
	require.NoError(t, err)
	require.Nil(t, setup)
}
