package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MajesticSpiral/safety-app/internal/auth"
	"github.com/MajesticSpiral/safety-app/internal/config"
	"github.com/MajesticSpiral/safety-app/internal/httpapi"
	"github.com/MajesticSpiral/safety-app/internal/obs"
	"github.com/MajesticSpiral/safety-app/internal/store/pg"
	"github.com/MajesticSpiral/safety-app/internal/stream"
)

var version = "1.0.0"

func main() {
	log.SetFlags(0)

	// Missing .env is fine; deployments set real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()

	store, err := pg.Open(cfg.DatabaseURL, cfg.Visibility)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	tokens, err := auth.NewTokens(cfg.JWTSecret,
		auth.WithIssuer(cfg.JWTIssuer),
		auth.WithTTL(cfg.JWTTTL),
	)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}
	authSvc, err := auth.NewService(store, tokens)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: store.DB()}, version,
		authSvc, store, store, stream.New(),
		httpapi.WithCORSOrigins(cfg.CORSOrigins),
		httpapi.WithRateLimit(cfg.RateBurst, cfg.RatePerSec),
		httpapi.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// No WriteTimeout: /events holds its response open.
		IdleTimeout: 60 * time.Second,
	}

	log.Printf("Starting safety-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
