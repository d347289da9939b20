package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/luc4spas/erp-joy-maker/internal/auth"
	"github.com/luc4spas/erp-joy-maker/internal/config"
	"github.com/luc4spas/erp-joy-maker/internal/server"
)

var (
	port       = flag.Int("port", 0, "server port (config.toml wins when it sets port)")
	devMode    = flag.Bool("dev", false, "development mode")
	dataDir    = flag.String("dataDir", "", "data directory (overrides the config file)")
	issueToken = flag.String("issue-token", "", "print a bearer token for this user id and exit")
)

func main() {
	flag.Parse()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.WithError(err).Warn("failed to load config, using defaults")
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.Log.Level).Warn("unknown log level, keeping info")
	}

	if *issueToken != "" {
		if err := printToken(cfg, *issueToken); err != nil {
			log.WithError(err).Fatal("failed to issue token")
		}
		return
	}

	if info.FromFile {
		log.WithField("path", info.Path).Info("config loaded")
	}

	ctx := context.Background()
	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to start")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		log.WithField("addr", addr).Info("fechamento listening")
		if err := srv.Run(addr); err != nil {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("failed to shut down cleanly")
	}
}

func printToken(cfg *config.AppConfig, userID string) error {
	signer, err := auth.NewSigner(cfg.Auth.JWTSecret, auth.DefaultTTL)
	if err != nil {
		return err
	}
	token, err := signer.GenerateToken(userID, "", "owner")
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
