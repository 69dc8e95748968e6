package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"gamesearch/game"
	"gamesearch/games/tilepuzzle"
)

func scrambled(t *testing.T, dirs ...tilepuzzle.Direction) game.State {
	t.Helper()
	state, err := tilepuzzle.New(dirs...)
	require.NoError(t, err)
	return state
}

func requireSolved(t *testing.T, state game.State) {
	t.Helper()
	require.NotNil(t, state)
	winners, decided := state.Winners()
	require.True(t, decided)
	require.True(t, winners.Contains(0))
}

func TestDepthFirst(t *testing.T) {
	t.Run("finds the two move solution", func(t *testing.T) {
		start := scrambled(t, tilepuzzle.Left, tilepuzzle.Up)
		found, err := DepthFirst(start, game.Roles{0}, 2, nil)
		require.NoError(t, err)
		requireSolved(t, found)
		require.Len(t, found.History(), 2)
		require.Empty(t, start.History(), "Search works on copies")
	})

	t.Run("one move is not enough", func(t *testing.T) {
		start := scrambled(t, tilepuzzle.Left, tilepuzzle.Up)
		found, err := DepthFirst(start, game.Roles{0}, 1, nil)
		require.NoError(t, err)
		require.Nil(t, found)
	})

	t.Run("ordered search follows the heuristic", func(t *testing.T) {
		start := scrambled(t, tilepuzzle.Left, tilepuzzle.Up, tilepuzzle.Left)
		monitor := NewMonitor()
		found, err := DepthFirstOrdered(start, game.Roles{0}, 3, tilepuzzle.Manhattan{}, monitor)
		require.NoError(t, err)
		requireSolved(t, found)
		require.Equal(t, []game.Move{
			tilepuzzle.Move{Dir: tilepuzzle.Right},
			tilepuzzle.Move{Dir: tilepuzzle.Down},
			tilepuzzle.Move{Dir: tilepuzzle.Right},
		}, found.History())
		require.EqualValues(t, 4, monitor.NodeCount(), "Best moves first lead straight to the solution")
	})

	t.Run("disabled monitor stops the search", func(t *testing.T) {
		start := scrambled(t, tilepuzzle.Left, tilepuzzle.Up)
		monitor := NewMonitor()
		monitor.Disable()
		found, err := DepthFirst(start, game.Roles{0}, 5, monitor)
		require.NoError(t, err)
		require.Nil(t, found)
		require.EqualValues(t, 1, monitor.NodeCount())
	})
}

func TestBreadthFirst(t *testing.T) {
	t.Run("finds the shortest solution and reports each level", func(t *testing.T) {
		start := scrambled(t, tilepuzzle.Left, tilepuzzle.Up)
		monitor := NewMonitor()
		levels := []int{}
		monitor.OnLevel(func(level int, _ int64) { levels = append(levels, level) })

		found, err := BreadthFirst(start, game.Roles{0}, 6, monitor)
		require.NoError(t, err)
		requireSolved(t, found)
		require.Len(t, found.History(), 2)
		require.Equal(t, []int{1, 2}, levels)
	})

	t.Run("gives up after the move limit", func(t *testing.T) {
		start := scrambled(t, tilepuzzle.Left, tilepuzzle.Up)
		found, err := BreadthFirst(start, game.Roles{0}, 1, nil)
		require.NoError(t, err)
		require.Nil(t, found)
	})

	t.Run("already solved start is returned", func(t *testing.T) {
		start := scrambled(t)
		found, err := BreadthFirst(start, game.Roles{0}, 0, nil)
		require.NoError(t, err)
		require.Same(t, start, found)
	})
}

func TestBestFirst(t *testing.T) {
	dirs := []tilepuzzle.Direction{
		tilepuzzle.Left, tilepuzzle.Up, tilepuzzle.Left, tilepuzzle.Up, tilepuzzle.Right, tilepuzzle.Down,
	}

	t.Run("solves a scrambled puzzle", func(t *testing.T) {
		start := scrambled(t, dirs...)
		monitor := NewMonitor()
		found, err := BestFirst(start, game.Roles{0}, 2000, tilepuzzle.Manhattan{}, monitor)
		require.NoError(t, err)
		requireSolved(t, found)
		require.True(t, found.GameOver())
		require.Positive(t, monitor.NodeCount())
	})

	t.Run("node budget bounds the search", func(t *testing.T) {
		start := scrambled(t, dirs...)
		monitor := NewMonitor()
		found, err := BestFirst(start, game.Roles{0}, 1, tilepuzzle.Manhattan{}, monitor)
		require.NoError(t, err)
		require.Nil(t, found)
		require.EqualValues(t, 1, monitor.NodeCount())
	})

	t.Run("inconsistent heuristic does not break the search", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		noisy := HeuristicFunc(func(game.State, game.Move, game.Roles) float64 {
			return rng.Float64()
		})
		start := scrambled(t, dirs...)

		require.NotPanics(t, func() {
			found, err := BestFirst(start, game.Roles{0}, 300, noisy, nil)
			require.NoError(t, err)
			if found != nil {
				requireSolved(t, found)
			}
		})
	})
}
