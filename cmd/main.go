package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bayworx/event-management-system-sub001/cmd/buildCFG"
	"github.com/bayworx/event-management-system-sub001/internal/api/api"
	"github.com/bayworx/event-management-system-sub001/internal/auth"
	rabbitReader "github.com/bayworx/event-management-system-sub001/internal/consumerWorker"
	"github.com/bayworx/event-management-system-sub001/internal/importer"
	"github.com/bayworx/event-management-system-sub001/internal/mailer"
	"github.com/bayworx/event-management-system-sub001/internal/outbox"
	"github.com/bayworx/event-management-system-sub001/internal/rabbit"
	"github.com/bayworx/event-management-system-sub001/internal/repo"
	"github.com/bayworx/event-management-system-sub001/internal/service"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

const defaultOutboxQueue = "events.async"

func main() {
	zlog.Init()
	log := zlog.Logger

	cfg := config.New()
	if err := cfg.Load("config.yaml", ".env", ""); err != nil {
		log.Fatal().Msgf("failed to load configuration: %v", err)
	}
	zerolog.SetGlobalLevel(buildCFG.BuildLogLevel(cfg))

	serverCfg := buildCFG.BuildServerConfig(cfg, &log)
	storageCfg := buildCFG.BuildStorageConfig(cfg)
	outboxCfg := buildCFG.BuildOutboxConfig(cfg, defaultOutboxQueue)

	jwtCfg, err := buildCFG.BuildJWTConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build JWT config")
	}
	tokens, err := auth.NewTokenManager(jwtCfg.Secret, jwtCfg.TTL, jwtCfg.Issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token manager")
	}

	masterDSN, slaveDSNs, poolOptions, err := buildCFG.BuildDBConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build DB config")
	}
	db, err := dbpg.New(masterDSN, slaveDSNs, poolOptions)
	if err != nil {
		log.Fatal().Msgf("failed to connect to DB: %v", err)
	}
	log.Info().Msg("Database connected successfully")

	repository, err := repo.NewRepository(db, &log)
	if err != nil {
		log.Fatal().Msgf("failed to initialize repository: %v", err)
	}
	migrationPath := storageCfg.MigrationsDir
	if !filepath.IsAbs(migrationPath) {
		cwd, err := os.Getwd()
		if err != nil {
			log.Fatal().Err(err).Msg("cannot get working directory")
		}
		migrationPath = filepath.Join(cwd, migrationPath)
	}
	if err := repository.MigrateUp(migrationPath); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	tokens.SetAdminLookup(func(ctx context.Context, id int64) (bool, error) {
		admin, err := repository.GetAdministratorByID(ctx, id)
		if errors.Is(err, repo.ErrAdministratorNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return admin.IsActive, nil
	})

	rabbitCfg, err := buildCFG.BuildRabbitConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load RabbitMQ config")
	}
	rmq, err := rabbit.NewRabbit(rabbitCfg)
	if err != nil {
		log.Fatal().Msgf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rmq.Close()

	workerCtx, cancelWorkers := context.WithCancel(context.Background())

	relay := outbox.NewRelay(repository, rmq, outboxCfg, &log)
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		relay.Run(workerCtx)
	}()

	mail := mailer.New(buildCFG.BuildSMTPConfig(cfg), &log)
	imports := importer.New(repository, storageCfg.Dir, &log)

	reader := rabbitReader.NewReader(rmq, &log)
	rabbitReader.RegisterHandlers(reader, repository, mail, imports, &log)
	reader.Start(workerCtx)

	serviceInstance := service.NewService(repository, &log, tokens, service.Config{
		OutboxQueue:    outboxCfg.Queue,
		StorageDir:     storageCfg.Dir,
		MaxUploadBytes: storageCfg.MaxUploadBytes,
	})
	app := api.NewRouters(&api.Routers{
		Service:      serviceInstance,
		Tokens:       tokens,
		MaxBodyBytes: serverCfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              ":" + serverCfg.Port,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting server on %s", serverCfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		log.Info().Msgf("Received signal %s. Initiating shutdown...", sig)
	case err := <-serverErrChan:
		log.Error().Msgf("Server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Msgf("Error shutting down server: %v", err)
	}

	cancelWorkers()
	reader.Stop()
	<-relayDone

	log.Info().Msg("Shutdown complete")
}
