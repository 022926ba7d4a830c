package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reading-quiz-service/internal/app"
	"reading-quiz-service/internal/config"
	"reading-quiz-service/internal/generation"
	"reading-quiz-service/internal/infra/memory"
	pgstore "reading-quiz-service/internal/infra/postgres"
	infraredis "reading-quiz-service/internal/infra/redis"
	"reading-quiz-service/internal/infra/sqlite"
	"reading-quiz-service/internal/logger"
	"reading-quiz-service/internal/store"
	transport "reading-quiz-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// services is everything runServer wires together.
type services struct {
	quizzes  *app.QuizService
	sessions *app.SessionService
	closers  []io.Closer
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}

type closeFunc func()

func (f closeFunc) Close() error {
	f()
	return nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)

	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	router := transport.NewRouter(svc.quizzes, svc.sessions, transport.RouterOptions{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: 90 * time.Second,
	})
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Str("store", cfg.Store.Driver).Msg("starting reading quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	svc := &services{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		svc.closers = append(svc.closers, redisClient)
	}

	backend, err := buildBackend(ctx, cfg, redisClient, svc)
	if err != nil {
		svc.Close()
		return nil, err
	}
	keys := store.KeysFor(cfg.Store.Namespace)
	archive := store.NewArchive(backend, keys.Quizzes)
	submissions := store.NewSubmissions(backend, keys.Submissions)

	gemini, err := generation.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.closers = append(svc.closers, gemini)

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Session.TTL, 2*time.Hour)

	var quizRepo app.QuizRepository
	var sessionRepo app.SessionRepository
	if redisClient != nil {
		quizRepo = infraredis.NewQuizRepository(redisClient, archive, quizTTL)
		sessionRepo = infraredis.NewSessionStore(redisClient, sessionTTL)
	} else {
		quizRepo = memory.NewQuizRepository(archive, quizTTL)
		sessions := memory.NewSessionStore(sessionTTL)
		go sessions.RunJanitor(ctx, time.Minute)
		sessionRepo = sessions
	}

	svc.quizzes = app.NewQuizService(gemini, archive, submissions, cfg.Server.PublicURL)
	svc.sessions = app.NewSessionService(sessionRepo, quizRepo, svc.quizzes)
	return svc, nil
}

func buildBackend(ctx context.Context, cfg config.Config, redisClient *redis.Client, svc *services) (store.Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Warn().Msg("memory store: the archive is lost on restart")
		return memory.NewBackend(), nil
	case config.DriverSQLite:
		b, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		svc.closers = append(svc.closers, b)
		return b, nil
	case config.DriverRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("store driver redis needs redis.addr")
		}
		return infraredis.NewBackend(redisClient), nil
	case config.DriverPostgres:
		if err := runMigrations(ctx, cfg.Postgres.URL); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		svc.closers = append(svc.closers, closeFunc(pool.Close))
		return pgstore.NewBackend(pool), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
