package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"syncnote/syncnote/broker"
	"syncnote/syncnote/config"
	"syncnote/syncnote/services"
	"syncnote/syncnote/session"
	"syncnote/syncnote/store"
)

func main() {
	cfg := config.Load()
	config.SetupLogger(cfg)

	st, err := store.Setup(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to initialize tree store")
	}
	defer st.Close()
	log.Info().Str("backend", cfg.StoreBackend).Msg("tree store ready")

	// The broker is optional: without it the client still works, entity
	// events are simply not published.
	producer, err := broker.Connect(cfg.NATSURL)
	if err != nil {
		log.Warn().Err(err).Msg("broker unavailable, entity events disabled")
		producer = nil
	} else {
		defer producer.Close()
	}

	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpirationHours, producer)
	services.AuthServiceInstance = authService

	noteService := services.NewNoteService(producer)
	services.NoteServiceInstance = noteService

	shareService := services.NewShareService(noteService, producer)
	services.ShareServiceInstance = shareService

	services.SharedViewServiceInstance = services.NewSharedViewService(noteService, authService)
	services.CategoryServiceInstance = services.NewCategoryService()
	services.ActivityServiceInstance = services.NewActivityService()

	// Session persistence is optional as well; a failed redis connection
	// just means no remembered login.
	cache, err := session.NewRedisCache(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Warn().Err(err).Msg("session cache unavailable")
	} else {
		defer cache.Close()
		manager := session.NewManager(cache)
		if manager.IsLoggedIn(context.Background()) {
			log.Info().Str("username", manager.CurrentUsername(context.Background())).Msg("restored session")
		}
	}

	log.Info().Msg("syncnote core ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
}
