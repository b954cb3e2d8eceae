package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ClinicDesk/cache"
	"ClinicDesk/config"
	"ClinicDesk/database"
	"ClinicDesk/logger"
	"ClinicDesk/models"
	"ClinicDesk/routes"
	"ClinicDesk/store"
	"ClinicDesk/utils"
	"ClinicDesk/ws"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinicdesk",
		Short: "Dental clinic patient management API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func importCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy JSON collection files into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), from)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "directory holding <collection>.json files")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

// backend is the opened store plus the Redis pieces when Redis is configured.
type backend struct {
	driver store.Driver
	cache  *cache.Cache
	redis  *redis.Client
}

func (b *backend) Close(log zerolog.Logger) {
	if err := b.driver.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close store")
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}
}

// openBackend selects the file or Postgres driver and, with REDIS_URL set,
// decorates it with the Redis cache and locks.
func openBackend(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (*backend, error) {
	var driver store.Driver
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.InitDB(ctx, cfg.DBURL, cfg.IsDev(), log)
		if err != nil {
			return nil, err
		}
		driver = store.NewPostgresDriver(db)
	default:
		fd, err := store.NewFileDriver(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		driver = fd
	}
	log.Info().Str("driver", cfg.StoreDriver).Msg("store opened")

	b := &backend{driver: driver}
	if !cfg.RedisEnabled() {
		return b, nil
	}

	client, err := database.NewRedisClient(ctx, database.DefaultRedisConfig(cfg.RedisURL), log)
	if err != nil {
		driver.Close()
		return nil, err
	}
	c, err := cache.NewCache(client)
	if err != nil {
		client.Close()
		driver.Close()
		return nil, err
	}
	b.redis = client
	b.cache = c
	b.driver = store.NewRedisDriver(driver, c, database.NewLocker(client, log), log)
	return b, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("development")
		bootLog.Error().Err(err).Msg("failed to load configuration")
		return err
	}
	log := logger.New(cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open store")
		return err
	}
	defer b.Close(log)

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	var mailer utils.Mailer
	if cfg.MailEnabled() {
		mailer = utils.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	}

	handler, err := routes.SetupRoutes(routes.Dependencies{
		Config: cfg,
		Driver: b.driver,
		Cache:  b.cache,
		Hub:    hub,
		Mailer: mailer,
		Log:    log,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to set up routes")
		return err
	}

	srv := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	serveErr := make(chan error, 1)

	go func() {
		defer wg.Done()
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if b.redis != nil {
		database.LogPoolStats(b.redis, log)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		log.Error().Err(err).Msg("server failed")
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	log.Info().Msg("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	cancel()

	wg.Wait()
	log.Info().Msg("server exited gracefully")
	return nil
}

// runImport copies every collection found in dir into the configured store
// and drops the Redis copies so readers see the imported data.
func runImport(ctx context.Context, dir string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env)
	if ctx == nil {
		ctx = context.Background()
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("import source %q is not a directory", dir)
	}
	src, err := store.NewFileDriver(dir)
	if err != nil {
		return err
	}
	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close(log)

	copied, err := store.Copy(ctx, src, b.driver, models.AllCollections)
	if err != nil {
		log.Error().Err(err).Strs("copied", copied).Msg("import failed")
		return err
	}
	if rd, ok := b.driver.(*store.RedisDriver); ok {
		if err := rd.Flush(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to flush collection cache")
		}
	}
	log.Info().Strs("collections", copied).Str("from", dir).Msg("import finished")
	return nil
}
