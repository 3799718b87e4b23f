package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"reminders-lite/internal/auth"
	"reminders-lite/internal/config"
	"reminders-lite/internal/server"
	"reminders-lite/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.SecretFallback {
		log.Printf("WARNING: SECRET is not set; signing tokens with the built-in default secret")
	}

	gin.SetMode(cfg.GinMode)
	st, err := store.NewWithOptions(store.Options{Path: cfg.DatabasePath})
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	now := time.Now().UnixMilli()
	for _, u := range cfg.SeedUsers {
		if _, created, err := st.GetOrCreateUser(ctx, u.Email, u.Password, now); err != nil {
			log.Fatalf("seed user %s: %v", u.Email, err)
		} else if created {
			log.Printf("seeded user %s", u.Email)
		}
	}

	tokenCfg := auth.TokenConfig{
		Secret: cfg.Secret,
		Expiry: cfg.TokenExpiry,
		Issuer: "reminders-lite",
	}

	router := server.NewRouter(server.Deps{Store: st, TokenConfig: tokenCfg, LoginRateLimit: cfg.LoginRateLimit})
	log.Printf("listening on %s", fmt.Sprintf(":%d", cfg.Port))
	if err := server.Run(ctx, cfg, router); err != nil {
		log.Fatal(err)
	}
}
