package remote

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"gamesearch/game"
	"gamesearch/games/tictactoe"
	"gamesearch/games/tilepuzzle"
	"gamesearch/player"
)

func serve(t *testing.T, codec game.Codec, agent Evaluator) *Client {
	t.Helper()
	server := httptest.NewServer(NewServer(codec, agent).Handler())
	t.Cleanup(server.Close)
	return NewClient(server.URL, codec)
}

func position(t *testing.T, cells string) game.State {
	t.Helper()
	state, err := tictactoe.FromCells(cells)
	require.NoError(t, err)
	return state
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	client := serve(t, tictactoe.Codec{}, player.NewPlayer(tictactoe.Outcome{}, player.WithName("outcome")))
	state := position(t, "XX.OO....")
	win := tictactoe.Move{Player: 0, Cell: 2}

	t.Run("name", func(t *testing.T) {
		require.Equal(t, "outcome", client.Name())
	})

	t.Run("can play", func(t *testing.T) {
		require.True(t, client.CanPlay(state))

		puzzle, err := tilepuzzle.New(tilepuzzle.Left)
		require.NoError(t, err)
		other := NewClient(client.baseURL, tilepuzzle.Codec{})
		ok, err := other.CheckCanPlay(ctx, puzzle)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("heuristic and prune", func(t *testing.T) {
		value, err := client.Heuristic(ctx, state, win, game.Roles{0})
		require.NoError(t, err)
		require.Equal(t, 1.0, value)

		value, err = client.Heuristic(ctx, state, tictactoe.Move{Player: 0, Cell: 8}, game.Roles{0})
		require.NoError(t, err)
		require.Equal(t, 0.0, value)

		prune, err := client.ShouldPrune(ctx, state, win, game.Roles{0})
		require.NoError(t, err)
		require.False(t, prune)
	})

	t.Run("evaluate", func(t *testing.T) {
		value, err := client.Evaluate(ctx, state, tictactoe.Move{Player: 0, Cell: 8}, game.Roles{0}, 3, 0)
		require.NoError(t, err)
		require.Equal(t, -1.0, value, "O completes its row")
	})

	t.Run("select move", func(t *testing.T) {
		move, err := client.SelectMove(ctx, state, game.Roles{0}, 3, 0)
		require.NoError(t, err)
		require.Equal(t, win, move)
		require.Len(t, state.History(), 4, "The request carries a copy")
	})

	t.Run("no legal move", func(t *testing.T) {
		move, err := client.SelectMove(ctx, position(t, "XOXXOOOXX"), game.Roles{0}, 3, 0)
		require.NoError(t, err)
		require.Nil(t, move)
	})

	t.Run("illegal move is rejected", func(t *testing.T) {
		illegal := tictactoe.Move{Player: 0, Cell: 0}
		_, err := client.Evaluate(ctx, state, illegal, game.Roles{0}, 3, 0)
		require.ErrorIs(t, err, game.ErrIllegalMove)
		require.ErrorIs(t, err, game.ErrMoveRejected)
		require.NotErrorIs(t, err, player.ErrRemoteUnavailable)

		var moveErr *game.MoveError
		require.ErrorAs(t, err, &moveErr)
		require.Equal(t, illegal, moveErr.Move)
	})
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(NewServer(tictactoe.Codec{}, player.NewPlayer(tictactoe.Outcome{})).Handler())
	server.Close()
	client := NewClient(server.URL, tictactoe.Codec{})
	state := tictactoe.New()

	_, err := client.SelectMove(ctx, state, game.Roles{0}, 1, 0)
	require.ErrorIs(t, err, player.ErrRemoteUnavailable)
	_, err = client.Heuristic(ctx, state, tictactoe.Move{Player: 0, Cell: 4}, game.Roles{0})
	require.ErrorIs(t, err, player.ErrRemoteUnavailable)
	_, err = client.CheckCanPlay(ctx, state)
	require.ErrorIs(t, err, player.ErrRemoteUnavailable)
	require.False(t, client.CanPlay(state))
	require.Contains(t, client.Name(), server.URL)
}

func TestSolve(t *testing.T) {
	ctx := context.Background()
	client := serve(t, tilepuzzle.Codec{}, player.NewPlayer(tilepuzzle.Manhattan{}))

	t.Run("breadth first streams levels", func(t *testing.T) {
		start, err := tilepuzzle.New(tilepuzzle.Left, tilepuzzle.Up)
		require.NoError(t, err)
		levels := []int{}
		moves, err := client.Solve(ctx, start, game.Roles{0}, BreadthFirst, 6, func(level int, nodes int64) {
			levels = append(levels, level)
			require.Positive(t, nodes)
		})
		require.NoError(t, err)
		require.Equal(t, []int{1, 2}, levels)
		require.Len(t, moves, 2)

		for _, move := range moves {
			require.NoError(t, start.Apply(move))
		}
		require.True(t, start.GameOver())
	})

	t.Run("best first", func(t *testing.T) {
		start, err := tilepuzzle.New(tilepuzzle.Left, tilepuzzle.Up, tilepuzzle.Left)
		require.NoError(t, err)
		moves, err := client.Solve(ctx, start, game.Roles{0}, BestFirst, 100, nil)
		require.NoError(t, err)
		for _, move := range moves {
			require.NoError(t, start.Apply(move))
		}
		require.True(t, start.GameOver())
	})

	t.Run("not found", func(t *testing.T) {
		start, err := tilepuzzle.New(tilepuzzle.Left, tilepuzzle.Up)
		require.NoError(t, err)
		moves, err := client.Solve(ctx, start, game.Roles{0}, DepthFirst, 1, nil)
		require.NoError(t, err)
		require.Nil(t, moves)
	})

	t.Run("unknown method", func(t *testing.T) {
		start, err := tilepuzzle.New(tilepuzzle.Left)
		require.NoError(t, err)
		_, err = client.Solve(ctx, start, game.Roles{0}, "astar", 3, nil)
		require.ErrorContains(t, err, "unknown solve method")
	})
}
