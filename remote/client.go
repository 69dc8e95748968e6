package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"gamesearch/game"
	"gamesearch/player"
)

// Client uses an agent served by a Server. Transport failures, timeouts, server errors and
// malformed replies are reported as player.ErrRemoteUnavailable. A move the server rejects is a
// *game.MoveError wrapping game.ErrIllegalMove or game.ErrMoveRejected.
type Client struct {
	baseURL string
	codec   game.Codec
	http    *http.Client

	nameOnce sync.Once
	name     string
}

var _ player.Agent = &Client{}

func NewClient(baseURL string, codec game.Codec) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		codec:   codec,
		http:    &http.Client{},
	}
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", player.ErrRemoteUnavailable, fmt.Sprintf(format, args...))
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", player.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		switch {
		case resp.StatusCode == http.StatusUnprocessableEntity && e.Illegal:
			return fmt.Errorf("%w: remote: %s", game.ErrIllegalMove, e.Error)
		case resp.StatusCode == http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: remote: %s", game.ErrMoveRejected, e.Error)
		case resp.StatusCode >= http.StatusInternalServerError:
			return unavailable("%s %s: %s %s", req.Method, req.URL.Path, resp.Status, e.Error)
		default:
			return fmt.Errorf("%s %s: %s %s", req.Method, req.URL.Path, resp.Status, e.Error)
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return unavailable("malformed response to %s: %v", req.URL.Path, err)
	}
	return nil
}

func withMove(move game.Move, err error) error {
	if errors.Is(err, game.ErrMoveRejected) {
		return &game.MoveError{Move: move, Err: err}
	}
	return err
}

func (c *Client) post(ctx context.Context, path string, body request, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) request(state game.State, move game.Move, roles game.Roles, depth int, budget time.Duration) (request, error) {
	record, err := game.Encode(c.codec, state)
	if err != nil {
		return request{}, err
	}
	req := request{Record: record, Roles: roles.Ints(), Depth: depth, BudgetMs: budget.Milliseconds()}
	if move != nil {
		if req.Move, err = c.codec.EncodeMove(move); err != nil {
			return request{}, err
		}
	}
	return req, nil
}

// Name asks the server once and falls back to the server address when it cannot be reached.
func (c *Client) Name() string {
	c.nameOnce.Do(func() {
		c.name = "remote " + c.baseURL
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/name", nil)
		if err != nil {
			return
		}
		var resp nameResponse
		if err := c.do(req, &resp); err != nil {
			log.Warn().Err(err).Msg("failed to get remote agent name")
			return
		}
		c.name = resp.Name
	})
	return c.name
}

func (c *Client) CheckCanPlay(ctx context.Context, state game.State) (bool, error) {
	req, err := c.request(state, nil, nil, 0, 0)
	if err != nil {
		return false, err
	}
	var resp boolResponse
	if err := c.post(ctx, "/canplay", req, &resp); err != nil {
		return false, err
	}
	return resp.OK, nil
}

// CanPlay is false when the server cannot be reached.
func (c *Client) CanPlay(state game.State) bool {
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	ok, err := c.CheckCanPlay(ctx, state)
	if err != nil {
		log.Warn().Err(err).Msg("failed to ask remote agent")
		return false
	}
	return ok
}

func (c *Client) Heuristic(ctx context.Context, state game.State, move game.Move, roles game.Roles) (float64, error) {
	req, err := c.request(state, move, roles, 0, 0)
	if err != nil {
		return 0, err
	}
	var resp valueResponse
	if err := c.post(ctx, "/heuristic", req, &resp); err != nil {
		return 0, withMove(move, err)
	}
	return resp.Value, nil
}

func (c *Client) ShouldPrune(ctx context.Context, state game.State, move game.Move, roles game.Roles) (bool, error) {
	req, err := c.request(state, move, roles, 0, 0)
	if err != nil {
		return false, err
	}
	var resp boolResponse
	if err := c.post(ctx, "/prune", req, &resp); err != nil {
		return false, withMove(move, err)
	}
	return resp.OK, nil
}

func (c *Client) Evaluate(ctx context.Context, state game.State, move game.Move, roles game.Roles, depth int, budget time.Duration) (float64, error) {
	req, err := c.request(state, move, roles, depth, budget)
	if err != nil {
		return 0, err
	}
	var resp valueResponse
	if err := c.post(ctx, "/evaluate", req, &resp); err != nil {
		return 0, withMove(move, err)
	}
	return resp.Value, nil
}

func (c *Client) SelectMove(ctx context.Context, state game.State, roles game.Roles, depth int, budget time.Duration) (game.Move, error) {
	req, err := c.request(state, nil, roles, depth, budget)
	if err != nil {
		return nil, err
	}
	var resp moveResponse
	if err := c.post(ctx, "/selectmove", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Move) == 0 || string(resp.Move) == "null" {
		return nil, nil
	}
	move, err := c.codec.DecodeMove(resp.Move)
	if err != nil {
		return nil, unavailable("malformed move %s: %v", resp.Move, err)
	}
	return move, nil
}

// Solve runs a puzzle search on the server and returns the moves leading from state to a won
// position, or nil when none was found. onLevel, if not nil, receives breadth-first progress.
// Cancelling ctx closes the connection, which stops the search on the server.
func (c *Client) Solve(ctx context.Context, state game.State, roles game.Roles, method string, limit int, onLevel func(level int, nodes int64)) ([]game.Move, error) {
	record, err := game.Encode(c.codec, state)
	if err != nil {
		return nil, err
	}

	url := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/solve"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", player.ErrRemoteUnavailable, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := conn.WriteJSON(SolveRequest{Record: record, Roles: roles.Ints(), Method: method, Limit: limit}); err != nil {
		return nil, fmt.Errorf("%w: %w", player.ErrRemoteUnavailable, err)
	}
	for {
		var msg SolveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %w", player.ErrRemoteUnavailable, err)
		}
		switch msg.Type {
		case levelMessage:
			if onLevel != nil {
				onLevel(msg.Level, msg.Nodes)
			}
		case resultMessage:
			if !msg.Solved {
				return nil, nil
			}
			return game.DecodeMoves(c.codec, msg.Moves)
		case errorMessage:
			return nil, fmt.Errorf("solve failed: %s", msg.Error)
		default:
			return nil, unavailable("unexpected solve message %q", msg.Type)
		}
	}
}
