// fechamento-pull fetches the latest POS export from the SFTP drop and records it as a closing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/luc4spas/erp-joy-maker/internal/config"
	"github.com/luc4spas/erp-joy-maker/internal/importer"
	"github.com/luc4spas/erp-joy-maker/internal/server"
	"github.com/luc4spas/erp-joy-maker/internal/source"
)

var (
	userID  = flag.String("user", "local", "tenant that owns the closing")
	file    = flag.String("file", "", "remote file to import (default: newest spreadsheet in remote_dir)")
	preview = flag.Bool("preview", false, "compute the closing without saving it")
)

func main() {
	flag.Parse()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.WithError(err).Fatal("pull failed")
	}
}

func run(ctx context.Context, cfg *config.AppConfig) error {
	key, err := os.ReadFile(cfg.SFTP.KeyPath)
	if err != nil {
		return fmt.Errorf("failed to read sftp key: %w", err)
	}

	client, err := source.New(source.Config{
		Username:   cfg.SFTP.Username,
		PrivateKey: string(key),
		HostKey:    cfg.SFTP.HostKey,
		Server:     cfg.SFTP.Server,
		Timeout:    30 * time.Second,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	remote := *file
	if remote == "" {
		remote, err = client.Latest(cfg.SFTP.RemoteDir)
		if err != nil {
			return err
		}
	}

	data, err := client.Download(remote)
	if err != nil {
		return err
	}

	st, err := server.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	coordinator, err := server.NewCoordinator(ctx, cfg, st)
	if err != nil {
		return err
	}

	report, err := coordinator.Run(ctx, importer.ImportOptions{
		UserID:      *userID,
		Filename:    path.Base(remote),
		Data:        data,
		SaveClosing: !*preview,
	})
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", remote, err)
	}

	batch := report.Result.Batch
	entry := log.WithFields(log.Fields{
		"file":      remote,
		"trattoria": batch.Trattoria.TotalGeneral,
		"japa":      batch.Japa.TotalGeneral,
	})
	if report.Closing != nil {
		entry = entry.WithField("date", report.Closing.Date)
	}
	entry.Info("closing imported")
	return nil
}
