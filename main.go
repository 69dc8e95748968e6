package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gamesearch/config"
	"gamesearch/engine"
	"gamesearch/experiments"
	"gamesearch/game"
	"gamesearch/games/tictactoe"
	"gamesearch/games/tilepuzzle"
	"gamesearch/player"
	"gamesearch/remote"
	"gamesearch/searcher"
	"gamesearch/store"
)

func main() {
	configPath := flag.String("config", "gamesearch.json", "Path of the JSON config file")
	mode := flag.String("mode", "play", "One of play, serve, solve or experiment")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch *mode {
	case "play":
		err = play(ctx, cfg)
	case "serve":
		err = serve(ctx, cfg)
	case "solve":
		err = solve(ctx, cfg)
	case "experiment":
		err = experiment(ctx, cfg)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", *mode)
	}
}

type domain struct {
	codec     game.Codec
	evaluator searcher.Evaluator
	start     func() (game.State, error)
}

func domainOf(cfg config.Config) (domain, error) {
	switch cfg.Game {
	case tictactoe.Name:
		return domain{
			codec:     tictactoe.Codec{},
			evaluator: tictactoe.Lines{},
			start:     func() (game.State, error) { return tictactoe.New(), nil },
		}, nil
	case tilepuzzle.Name:
		return domain{
			codec:     tilepuzzle.Codec{},
			evaluator: tilepuzzle.Manhattan{},
			start: func() (game.State, error) {
				dirs := make([]tilepuzzle.Direction, 0, len(cfg.Solve.Scramble))
				for _, dir := range cfg.Solve.Scramble {
					dirs = append(dirs, tilepuzzle.Direction(strings.ToLower(dir)))
				}
				return tilepuzzle.New(dirs...)
			},
		}, nil
	default:
		return domain{}, fmt.Errorf("unknown game %q", cfg.Game)
	}
}

func newPlayer(cfg config.Config, d domain) (*player.Player, error) {
	options, err := cfg.Search.Options()
	if err != nil {
		return nil, err
	}
	return player.NewPlayer(d.evaluator, append(options, player.WithName(cfg.Search.Algorithm))...), nil
}

// play pits the configured player against the opponent and saves the game.
func play(ctx context.Context, cfg config.Config) error {
	d, err := domainOf(cfg)
	if err != nil {
		return err
	}
	state, err := d.start()
	if err != nil {
		return err
	}
	p, err := newPlayer(cfg, d)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer db.Close()

	roster := engine.NewRoster()
	if err := roster.Bind(0, p, state); err != nil {
		return err
	}
	if state.NumRoles() > 1 {
		var opponent player.Agent = player.NewRandom(0)
		if cfg.Opponent != "" {
			opponent = remote.NewClient(cfg.Opponent, d.codec)
		}
		if err := roster.Bind(1, opponent, state); err != nil {
			return err
		}
	}

	e := engine.NewLocalEngine(state, roster,
		engine.WithDepth(cfg.Search.Depth),
		engine.WithBudget(cfg.Search.Budget()),
		engine.WithStore(db, d.codec),
	)
	gameMetric, _, err := e.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().Msgf("game %s: %s after %d moves in %s", e.ID, gameMetric.Outcome(), gameMetric.TotalMoves, gameMetric.Duration)
	return nil
}

func serve(ctx context.Context, cfg config.Config) error {
	d, err := domainOf(cfg)
	if err != nil {
		return err
	}
	p, err := newPlayer(cfg, d)
	if err != nil {
		return err
	}
	return remote.NewServer(d.codec, p).ListenAndServe(ctx, cfg.Addr)
}

// solve searches the configured scramble for a solution.
func solve(ctx context.Context, cfg config.Config) error {
	cfg.Game = tilepuzzle.Name
	d, err := domainOf(cfg)
	if err != nil {
		return err
	}
	state, err := d.start()
	if err != nil {
		return err
	}

	monitor := searcher.NewMonitor()
	defer context.AfterFunc(ctx, monitor.Disable)()
	monitor.OnLevel(func(level int, nodes int64) {
		log.Info().Msgf("level %d done after %d nodes", level, nodes)
	})

	roles := game.Roles{0}
	var found game.State
	switch cfg.Solve.Method {
	case remote.DepthFirst:
		found, err = searcher.DepthFirstOrdered(state, roles, cfg.Solve.Limit, d.evaluator, monitor)
	case remote.BreadthFirst:
		found, err = searcher.BreadthFirst(state, roles, cfg.Solve.Limit, monitor)
	case remote.BestFirst:
		found, err = searcher.BestFirst(state, roles, cfg.Solve.Limit, d.evaluator, monitor)
	default:
		err = fmt.Errorf("unknown solve method %q", cfg.Solve.Method)
	}
	if err != nil {
		return err
	}
	if found == nil {
		log.Info().Msgf("no solution found after %d nodes", monitor.NodeCount())
		return nil
	}
	log.Info().Msgf("solved in %d moves after %d nodes: %v", len(found.History()), monitor.NodeCount(), found.History())
	return nil
}

func experiment(ctx context.Context, cfg config.Config) error {
	var dir string
	var err error
	switch cfg.Experiment.Name {
	case "strength":
		dir, err = experiments.RunStrengthExperiment(ctx, cfg.Experiment.BaseDir, cfg.Experiment.Games)
	case "ordering":
		dir, err = experiments.RunOrderingExperiment(ctx, cfg.Experiment.BaseDir, cfg.Experiment.Games)
	case "throughput":
		_, err = experiments.RunThroughputExperiment(ctx, experiments.SearchConfigs(), cfg.Experiment.Games)
		return err
	default:
		return fmt.Errorf("unknown experiment %q", cfg.Experiment.Name)
	}
	if err != nil {
		return err
	}
	log.Info().Msgf("results written to %s", dir)
	return nil
}
