package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jtimer/backend/internal/config"
	"jtimer/backend/internal/db"
	"jtimer/backend/internal/handler"
	"jtimer/backend/internal/middleware"
	"jtimer/backend/internal/repository"
	"jtimer/backend/internal/router"
	"jtimer/backend/internal/service"
	"jtimer/backend/internal/spotify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, db.MigrationSource(cfg.MigrationsDir)); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge, err := service.NewTokenBridge(service.BridgeConfig{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURI:  cfg.Spotify.RedirectURI,
		AccountsURL:  cfg.Spotify.AccountsURL,
		ClientURL:    cfg.ClientURL,
		StateSecret:  cfg.StateSecret,
	})
	if errors.Is(err, service.ErrBridgeNotConfigured) {
		log.Printf("spotify credentials missing, playback sync disabled")
	} else if err != nil {
		log.Fatalf("token bridge: %v", err)
	}

	player := spotify.NewPlayer(bridge, spotify.PlayerConfig{APIURL: cfg.Spotify.APIURL})
	go player.Run(ctx)

	store := repository.NewSettingsRepository(database)
	controller := service.NewSessionController(
		ctx,
		store,
		service.NewClockTicker(time.Second),
		service.NewBellAlarm(os.Stdout, cfg.AlarmRings, time.Second),
		player,
	)
	defer controller.Close()
	tasks := service.NewTaskService(ctx, store)

	origins := middleware.NewOriginPolicy(cfg.CORSOrigins)
	engine := router.New(bridge, router.Handlers{
		Auth:     handler.NewAuthHandler(bridge),
		Session:  handler.NewSessionHandler(controller),
		Tasks:    handler.NewTaskHandler(tasks),
		Playback: handler.NewPlaybackHandler(player),
		Events:   handler.NewEventsHandler(controller, origins),
	}, origins)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: engine}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("backend listening on :%s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("run server: %v", err)
	}
}
