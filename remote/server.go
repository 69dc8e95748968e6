// Package remote serves an agent over HTTP and lets other processes use it as a player.Agent.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"gamesearch/game"
	"gamesearch/player"
	"gamesearch/searcher"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Evaluator is what a Server exposes: an agent that can also score single moves.
type Evaluator interface {
	player.Agent
	searcher.Evaluator
}

type Server struct {
	codec    game.Codec
	agent    Evaluator
	router   *mux.Router
	upgrader websocket.Upgrader
}

func NewServer(codec game.Codec, agent Evaluator) *Server {
	s := &Server{codec: codec, agent: agent, router: mux.NewRouter()}
	s.router.HandleFunc("/name", s.name).Methods(http.MethodGet)
	s.router.HandleFunc("/canplay", s.canPlay).Methods(http.MethodPost)
	s.router.HandleFunc("/heuristic", s.heuristic).Methods(http.MethodPost)
	s.router.HandleFunc("/prune", s.prune).Methods(http.MethodPost)
	s.router.HandleFunc("/evaluate", s.evaluate).Methods(http.MethodPost)
	s.router.HandleFunc("/selectmove", s.selectMove).Methods(http.MethodPost)
	s.router.HandleFunc("/solve", s.solve).Methods(http.MethodGet)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}
	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("server shutdown")
		}
	})
	defer stop()

	log.Info().Msgf("serving %s for %s on %s", s.agent.Name(), s.codec.Name(), addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Illegal: errors.Is(err, game.ErrIllegalMove)})
}

type decoded struct {
	state  game.State
	move   game.Move
	roles  game.Roles
	depth  int
	budget time.Duration
}

func (s *Server) decode(r *http.Request, withMove bool) (decoded, error) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return decoded{}, fmt.Errorf("malformed request: %w", err)
	}
	state, err := game.Decode(s.codec, req.Record)
	if err != nil {
		return decoded{}, err
	}
	d := decoded{
		state:  state,
		roles:  game.RolesOf(req.Roles...),
		depth:  req.Depth,
		budget: time.Duration(req.BudgetMs) * time.Millisecond,
	}
	if withMove {
		if d.move, err = s.codec.DecodeMove(req.Move); err != nil {
			return decoded{}, fmt.Errorf("malformed move: %w", err)
		}
	}
	return d, nil
}

func statusOf(err error) int {
	if errors.Is(err, game.ErrMoveRejected) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) name(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, nameResponse{Name: s.agent.Name()})
}

// canPlay answers false for records of another game instead of failing.
func (s *Server) canPlay(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Record.Game != s.codec.Name() {
		writeJSON(w, http.StatusOK, boolResponse{OK: false})
		return
	}
	state, err := game.Decode(s.codec, req.Record)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, boolResponse{OK: s.agent.CanPlay(state)})
}

func (s *Server) heuristic(w http.ResponseWriter, r *http.Request) {
	d, err := s.decode(r, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, valueResponse{Value: s.agent.Heuristic(d.state, d.move, d.roles)})
}

func (s *Server) prune(w http.ResponseWriter, r *http.Request) {
	d, err := s.decode(r, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, boolResponse{OK: searcher.ShouldPrune(s.agent, d.state, d.move, d.roles)})
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	d, err := s.decode(r, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	value, err := s.agent.Evaluate(r.Context(), d.state, d.move, d.roles, d.depth, d.budget)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, valueResponse{Value: value})
}

func (s *Server) selectMove(w http.ResponseWriter, r *http.Request) {
	d, err := s.decode(r, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	move, err := s.agent.SelectMove(r.Context(), d.state, d.roles, d.depth, d.budget)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	var resp moveResponse
	if move != nil {
		if resp.Move, err = s.codec.EncodeMove(move); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// solve runs one puzzle search per connection. The client sends a SolveRequest, then receives
// progress and the result. Closing the connection stops the search.
func (s *Server) solve(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to upgrade solve connection")
		return
	}

	var req SolveRequest
	conn.SetReadDeadline(time.Now().Add(pongWait))
	if err := conn.ReadJSON(&req); err != nil {
		log.Warn().Err(err).Msg("failed to read solve request")
		conn.Close()
		return
	}

	monitor := searcher.NewMonitor()
	outgoing := make(chan SolveMessage)
	ended := make(chan struct{})
	written := make(chan struct{})
	go connReader(conn, monitor, ended)
	go func() {
		defer close(written)
		connWriter(conn, outgoing, ended)
	}()

	send := func(msg SolveMessage) {
		select {
		case outgoing <- msg:
		case <-ended:
		}
	}
	monitor.OnLevel(func(level int, nodes int64) {
		send(SolveMessage{Type: levelMessage, Level: level, Nodes: nodes})
	})

	send(s.runSolve(req, monitor))
	close(outgoing)
	<-written
}

func (s *Server) runSolve(req SolveRequest, monitor *searcher.Monitor) SolveMessage {
	fail := func(err error) SolveMessage {
		return SolveMessage{Type: errorMessage, Nodes: monitor.NodeCount(), Error: err.Error()}
	}
	state, err := game.Decode(s.codec, req.Record)
	if err != nil {
		return fail(err)
	}
	roles := game.RolesOf(req.Roles...)

	var found game.State
	switch req.Method {
	case DepthFirst:
		found, err = searcher.DepthFirstOrdered(state, roles, req.Limit, s.agent, monitor)
	case BreadthFirst:
		found, err = searcher.BreadthFirst(state, roles, req.Limit, monitor)
	case BestFirst:
		found, err = searcher.BestFirst(state, roles, req.Limit, s.agent, monitor)
	default:
		err = fmt.Errorf("unknown solve method %q", req.Method)
	}
	if err != nil {
		return fail(err)
	}

	result := SolveMessage{Type: resultMessage, Nodes: monitor.NodeCount()}
	if found == nil {
		return result
	}
	result.Solved = true
	if result.Moves, err = game.EncodeMoves(s.codec, found.History()[len(state.History()):]); err != nil {
		return fail(err)
	}
	log.Info().Msgf("solved %s with %s in %d moves after %d nodes", req.Record.Game, req.Method, len(result.Moves), result.Nodes)
	return result
}

// connReader only watches the connection: any message or error after the request ends it.
func connReader(conn *websocket.Conn, monitor *searcher.Monitor, ended chan<- struct{}) {
	defer func() {
		monitor.Disable()
		close(ended)
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Debug().Err(err).Msg("solve connection ended")
			return
		}
	}
}

func connWriter(conn *websocket.Conn, outgoing <-chan SolveMessage, ended <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		conn.Close()
		ticker.Stop()
	}()

	for {
		select {
		case <-ended:
			return
		case msg, ok := <-outgoing:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel has been closed
				message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				if err := conn.WriteMessage(websocket.CloseMessage, message); err != nil {
					log.Debug().Err(err).Msg("failed to close solve connection")
				}
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Warn().Err(err).Msg("failed to write solve message")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
