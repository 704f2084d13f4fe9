package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/skni-kod/kolo-rest-api/api"
	"github.com/skni-kod/kolo-rest-api/auth"
	"github.com/skni-kod/kolo-rest-api/config"
	"github.com/skni-kod/kolo-rest-api/database"
	"github.com/skni-kod/kolo-rest-api/models"
	"github.com/skni-kod/kolo-rest-api/services"
	"github.com/skni-kod/kolo-rest-api/storage"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogger(cfg)
	log.Info().Str("dbType", cfg.DBType).Msg("Initializing app...")

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if cfg.GenerateModels {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if cfg.GenerateColumnReport {
		log.Info().Msg("Generating column mismatch report...")
		if err := models.GenerateColumnMismatchReportStandalone(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		return
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var store storage.Storage

	g, gctx := errgroup.WithContext(startupCtx)
	g.Go(func() error {
		return cfg.ResolveSecrets(gctx, nil)
	})
	g.Go(func() error {
		s, err := newStorage(gctx, cfg)
		if err != nil {
			return err
		}
		store = s
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Error initializing dependencies")
	}

	var github *services.GithubClient
	if cfg.GithubEnabled() {
		github = services.NewGithubClient(cfg.GithubClientID, cfg.GithubClientSecret, cfg.GithubRedirectURL)
	} else {
		log.Info().Msg("GitHub login disabled, GITHUB_CLIENT_ID or GITHUB_CLIENT_SECRET is not set")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       cfg.AuthSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	})

	server, err := api.NewServer(api.ServerOptions{
		Config:   cfg,
		Database: database.New(db),
		JWT:      jwtService,
		Github:   github,
		Storage:  store,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	errChannel := make(chan error)
	defer close(errChannel)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// newStorage picks S3 when a bucket is configured and the local media folder otherwise.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.S3Bucket != "" {
		log.Info().Str("bucket", cfg.S3Bucket).Msg("Storing media in S3")
		return storage.NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicURL)
	}
	log.Info().Str("root", cfg.MediaRoot).Msg("Storing media on local disk")
	return storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
