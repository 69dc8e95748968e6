package game

import (
	"encoding/json"
	"fmt"
)

// Codec serializes the moves of one domain. EncodeMove must produce valid JSON.
type Codec interface {
	Name() string
	// Setup describes the position the history of state was played from, nil for the
	// standard initial position.
	Setup(state State) (json.RawMessage, error)
	// New returns the position described by setup, the standard initial position for nil.
	New(setup json.RawMessage) (State, error)
	EncodeMove(move Move) ([]byte, error)
	DecodeMove(data []byte) (Move, error)
}

// Record is the serialized form of a State: the starting position, the moves played from it and
// the moves waiting to be redone.
type Record struct {
	Game    string            `json:"game"`
	Setup   json.RawMessage   `json:"setup,omitempty"`
	History []json.RawMessage `json:"history"`
	Redo    []json.RawMessage `json:"redo,omitempty"`
}

func Encode(codec Codec, state State) (Record, error) {
	setup, err := codec.Setup(state)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode setup: %w", err)
	}
	history, err := EncodeMoves(codec, state.History())
	if err != nil {
		return Record{}, err
	}
	redo, err := EncodeMoves(codec, state.RedoList())
	if err != nil {
		return Record{}, err
	}
	return Record{Game: codec.Name(), Setup: setup, History: history, Redo: redo}, nil
}

// Decode rebuilds a state by replaying the recorded history on the recorded setup. The
// redo list is restored by playing the redo moves and taking them back.
func Decode(codec Codec, record Record) (State, error) {
	if record.Game != codec.Name() {
		return nil, fmt.Errorf("record of game %q cannot be decoded as %q", record.Game, codec.Name())
	}
	history, err := DecodeMoves(codec, record.History)
	if err != nil {
		return nil, err
	}
	redo, err := DecodeMoves(codec, record.Redo)
	if err != nil {
		return nil, err
	}

	state, err := codec.New(record.Setup)
	if err != nil {
		return nil, fmt.Errorf("failed to set up %s: %w", record.Game, err)
	}
	for i, move := range history {
		if err := state.Apply(move); err != nil {
			return nil, fmt.Errorf("failed to replay move %d: %w", i, err)
		}
	}
	for i := len(redo) - 1; i >= 0; i-- {
		if err := state.Apply(redo[i]); err != nil {
			return nil, fmt.Errorf("failed to restore redo move %d: %w", i, err)
		}
	}
	if err := state.Undo(len(redo)); err != nil {
		return nil, fmt.Errorf("failed to restore redo list: %w", err)
	}
	return state, nil
}

func EncodeMoves(codec Codec, moves []Move) ([]json.RawMessage, error) {
	encoded := make([]json.RawMessage, 0, len(moves))
	for _, move := range moves {
		data, err := codec.EncodeMove(move)
		if err != nil {
			return nil, fmt.Errorf("failed to encode move %+v: %w", move, err)
		}
		encoded = append(encoded, data)
	}
	return encoded, nil
}

func DecodeMoves(codec Codec, encoded []json.RawMessage) ([]Move, error) {
	moves := make([]Move, 0, len(encoded))
	for _, data := range encoded {
		move, err := codec.DecodeMove(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode move %s: %w", data, err)
		}
		moves = append(moves, move)
	}
	return moves, nil
}

// Initial returns a copy of state with its whole history taken back.
func Initial(state State) (State, error) {
	initial := state.Clone()
	if err := initial.Undo(len(initial.History())); err != nil {
		return nil, err
	}
	return initial, nil
}
