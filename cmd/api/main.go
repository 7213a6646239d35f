package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/fittrack/internal/api"
	"example.com/fittrack/internal/auth"
	"example.com/fittrack/internal/config"
	"example.com/fittrack/internal/publish"
	"example.com/fittrack/internal/store"
	"example.com/fittrack/internal/telemetry"
	httptransport "example.com/fittrack/internal/transport/http"
	"example.com/fittrack/internal/upload"
	"example.com/fittrack/internal/workout"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, cleanup, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer cleanup()

	profileStore := store.Open(ctx, repo, cfg.Username)

	stream := telemetry.NewStream(
		telemetry.WithInterval(cfg.SampleInterval),
		telemetry.WithStopTimeout(cfg.StreamStopTimeout),
	)

	var trackerOpts []workout.Option
	var publisher *publish.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = publish.NewPublisher(cfg.KafkaBrokers, cfg.EventsTopic)
		defer publisher.Close()
		trackerOpts = append(trackerOpts, workout.WithPublisher(publisher))
	}
	tracker := workout.NewTracker(stream, profileStore, trackerOpts...)

	var uploader api.Uploader
	if token := cfg.UploadToken(); token != "" {
		uploader = upload.NewClient(cfg.UploadBaseURL, token)
	} else {
		log.Printf("no upload credential configured, /v1/workouts/{id}/upload disabled")
	}

	var eventPublisher api.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}

	handler := api.NewHandler(profileStore, tracker, stream, uploader, eventPublisher)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Basic request logger
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("%s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:     cfg.HTTPAddress,
		ReadTimeout: 5 * time.Second,
		// WriteTimeout stays zero: /v1/workout/live holds the connection open.
		IdleTimeout: 60 * time.Second,
	}, authMiddleware.Wrap(logger(mux)))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("fittrack listening on %s (user=%s, storage=%s)", cfg.HTTPAddress, cfg.Username, cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	// Finalize and persist any workout still recording before the process exits.
	if _, active := tracker.Active(); active {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := tracker.Stop(stopCtx); err != nil {
			log.Printf("failed to finalize in-flight workout: %v", err)
		}
		stopCancel()
	}
	stream.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// openRepository selects the profile repository per config. The returned
// cleanup releases any backing pool.
func openRepository(ctx context.Context, cfg config.Config) (store.ProfileRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		repo := store.NewPostgresRepository(pool, cfg.Username)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil
	default:
		return store.NewFileRepository(cfg.DataFile), func() {}, nil
	}
}
