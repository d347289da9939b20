package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/luc4spas/erp-joy-maker/internal/parser"
)

func TestDefaultConfig_PolicyIsValid(t *testing.T) {
	t.Parallel()

	p, err := DefaultConfig().Policy()
	if err != nil {
		t.Fatalf("default policy: %v", err)
	}
	if p.WeekStart != time.Monday || p.PoolPercent != 8 || p.WaiterPercent != 4.75 {
		t.Fatalf("unexpected default policy: %+v", p)
	}
}

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, info, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.FromFile {
		t.Fatalf("missing file should not be reported as loaded")
	}
	if cfg.Database.Driver != "sqlite3" || cfg.Server.Port != 20262 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile_ParsesSections(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9000

[rateio]
week_start = "domingo"
pool_percent = 10
waiter_percent = 4.75
kitchen_percent = 2.75
admin_percent = 0.5

[ingest.columns]
table = ["Comanda"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, info, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !info.FromFile || !info.PortSpecified || cfg.Server.Port != 9000 {
		t.Fatalf("server section not applied: %+v %+v", info, cfg.Server)
	}

	p, err := cfg.Policy()
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	if p.WeekStart != time.Sunday || p.PoolPercent != 10 || p.CommissionRate != 0.08 {
		t.Fatalf("rateio section not applied: %+v", p)
	}

	aliases := cfg.ColumnAliases()
	if aliases[0].Field != parser.FieldTable || aliases[0].Default != "Comanda" || len(aliases[0].Accepted) != 1 {
		t.Fatalf("ingest override not applied: %+v", aliases[0])
	}
	if aliases[1].Default != "valor" {
		t.Fatalf("untouched fields should keep defaults: %+v", aliases[1])
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"DATABASE_URL":    "postgres://u:p@localhost/fechamento",
		"JWT_SECRET":      "s3cret",
		"FECHAMENTO_PORT": "8081",
		"ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"R2_BUCKET":       "planilhas",
	}
	cfg := DefaultConfig()
	portSet := applyEnv(cfg, func(k string) string { return env[k] })

	if !portSet || cfg.Server.Port != 8081 {
		t.Fatalf("port override not applied: %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "pgx" || cfg.Database.DSN != env["DATABASE_URL"] {
		t.Fatalf("database override not applied: %+v", cfg.Database)
	}
	if cfg.Auth.JWTSecret != "s3cret" || cfg.Storage.Bucket != "planilhas" {
		t.Fatalf("secret overrides not applied: %+v %+v", cfg.Auth, cfg.Storage)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins not split: %v", cfg.Server.AllowedOrigins)
	}
}

func TestPolicy_RejectsUnknownWeekStart(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Rateio.WeekStart = "wednesday"
	if _, err := cfg.Policy(); err == nil {
		t.Fatalf("want error for unsupported week start")
	}
}
