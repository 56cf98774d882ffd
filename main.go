package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whenwin/config"
	"whenwin/handler"
	"whenwin/model"
	"whenwin/repo"
	"whenwin/session"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "whenwin.yaml", "path to the YAML config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Error loading config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := repo.NewFirestoreConnector(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating Firestore connector")
	}
	defer store.Close()

	auth, err := repo.NewAuthConnector(ctx, store, cfg.Firebase.WebAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating auth connector")
	}

	location := model.Location{City: cfg.DefaultCity, State: cfg.DefaultState}
	ctrl := session.NewController(auth, store, store, location, config.Categories())

	var seed []model.Event
	if cfg.SeedEvents {
		seed = config.StarterEvents()
	}
	if err := ctrl.Start(ctx, seed); err != nil {
		log.Fatal().Err(err).Msg("Error starting session controller")
	}
	defer ctrl.Close()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler.NewServer(ctrl, auth),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down server")
		}
	}()

	log.Info().Str("addr", cfg.Listen).Msg("Listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Error serving HTTP")
	}
	log.Info().Msg("Server stopped")
}
