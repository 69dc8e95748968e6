// Package network scores moves with a small neural network trained on finished games.
package network

import (
	"sync"

	"github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"

	"gamesearch/game"
	"gamesearch/searcher"
)

// Featurizer encodes positions of one game as network inputs.
type Featurizer interface {
	Size() int
	// Features encodes the position reached by playing move on state.
	Features(state game.State, move game.Move, roles game.Roles) []float64
	Position(state game.State, roles game.Roles) []float64
}

const learningRate = 0.01

// Evaluator is a searcher.Evaluator backed by a regression network with one output. The network
// keeps activations between calls, so every use is serialized.
type Evaluator struct {
	mu         sync.Mutex
	network    *deep.Neural
	featurizer Featurizer
}

var _ searcher.Evaluator = &Evaluator{}

func NewEvaluator(featurizer Featurizer, hidden ...int) *Evaluator {
	layout := append(append([]int{}, hidden...), 1)
	return &Evaluator{
		network: deep.NewNeural(&deep.Config{
			Inputs:     featurizer.Size(),
			Layout:     layout,
			Activation: deep.ActivationReLU,
			Mode:       deep.ModeRegression,
			Weight:     deep.NewNormal(0.0, 0.1),
			Bias:       true,
		}),
		featurizer: featurizer,
	}
}

func (e *Evaluator) Heuristic(state game.State, move game.Move, roles game.Roles) float64 {
	features := e.featurizer.Features(state, move, roles)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.network.Predict(features)[0]
}

func (e *Evaluator) CanPlay(state game.State) bool {
	if s, ok := e.featurizer.(searcher.Supporter); ok {
		return s.CanPlay(state)
	}
	return true
}

// Value predicts the outcome of state for roles without playing a move.
func (e *Evaluator) Value(state game.State, roles game.Roles) float64 {
	features := e.featurizer.Position(state, roles)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.network.Predict(features)[0]
}

// Train runs iterations passes of stochastic gradient descent over samples.
func (e *Evaluator) Train(samples training.Examples, iterations int) {
	if len(samples) == 0 || iterations <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	trainer := training.NewTrainer(training.NewSGD(learningRate, 0.5, 0.0, false), 0)
	trainer.Train(e.network, samples, nil, iterations)
}

func (e *Evaluator) Weights() [][][]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.network.Dump().Weights
}

// ApplyWeights loads weights previously returned by Weights of a network with the same layout.
func (e *Evaluator) ApplyWeights(weights [][][]float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.network.ApplyWeights(weights)
}

// SamplesFromGame labels every position of a finished game, for every role, with the final
// result for that role: +1 won, -1 lost and 0 drawn.
func SamplesFromGame(state game.State, featurizer Featurizer) (training.Examples, error) {
	if !state.GameOver() {
		return nil, game.ErrNotFinished
	}
	position, err := game.Initial(state)
	if err != nil {
		return nil, err
	}

	samples := training.Examples{}
	for _, move := range state.History() {
		if err := position.Apply(move); err != nil {
			return nil, err
		}
		for role := 0; role < state.NumRoles(); role++ {
			roles := game.Roles{game.Role(role)}
			samples = append(samples, training.Example{
				Input:    featurizer.Position(position, roles),
				Response: []float64{game.CheckForWin(state, roles)},
			})
		}
	}
	return samples, nil
}
