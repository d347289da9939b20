package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/luc4spas/erp-joy-maker/internal/parser"
	"github.com/luc4spas/erp-joy-maker/internal/rateio"
)

// AppConfig application configuration
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Log      LogConfig      `toml:"log"`
	Ingest   IngestConfig   `toml:"ingest"`
	Rateio   RateioConfig   `toml:"rateio"`
	Storage  StorageConfig  `toml:"storage"`
	SFTP     SFTPConfig     `toml:"sftp"`
}

// ServerConfig HTTP server
type ServerConfig struct {
	Port           int      `toml:"port"`
	DevMode        bool     `toml:"dev_mode"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// DataConfig local data directory
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// DatabaseConfig driver "sqlite3" uses data_dir/fechamento.db when dsn is empty
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// AuthConfig bearer token validation
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// LogConfig logrus level name
type LogConfig struct {
	Level string `toml:"level"`
}

// IngestConfig per-field header spellings replacing the built-in lists
type IngestConfig struct {
	Columns map[string][]string `toml:"columns"`
}

// RateioConfig weekly commission distribution
type RateioConfig struct {
	WeekStart         string  `toml:"week_start"`
	CommissionRate    float64 `toml:"commission_rate"`
	ServiceChargeRate float64 `toml:"service_charge_rate"`
	PoolPercent       float64 `toml:"pool_percent"`
	WaiterPercent     float64 `toml:"waiter_percent"`
	KitchenPercent    float64 `toml:"kitchen_percent"`
	AdminPercent      float64 `toml:"admin_percent"`
}

// StorageConfig S3-compatible bucket for uploaded spreadsheets; empty bucket disables archiving
type StorageConfig struct {
	Endpoint  string `toml:"endpoint"`
	Bucket    string `toml:"bucket"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	BaseURL   string `toml:"base_url"`
}

// SFTPConfig POS export drop used by fechamento-pull
type SFTPConfig struct {
	Server    string `toml:"server"`
	Username  string `toml:"username"`
	KeyPath   string `toml:"key_path"`
	HostKey   string `toml:"host_key"`
	RemoteDir string `toml:"remote_dir"`
}

// LoadConfigInfo metadata about how the configuration was loaded
type LoadConfigInfo struct {
	Path          string
	FromFile      bool
	PortSpecified bool
}

// DefaultConfig built-in configuration
func DefaultConfig() *AppConfig {
	p := rateio.DefaultPolicy()
	return &AppConfig{
		Server: ServerConfig{
			Port:           20262,
			DevMode:        false,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
		},
		Log: LogConfig{
			Level: "info",
		},
		Rateio: RateioConfig{
			WeekStart:         "monday",
			CommissionRate:    p.CommissionRate,
			ServiceChargeRate: p.ServiceChargeRate,
			PoolPercent:       p.PoolPercent,
			WaiterPercent:     p.WaiterPercent,
			KitchenPercent:    p.KitchenPercent,
			AdminPercent:      p.AdminPercent,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir directory of the running executable
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo loads config.toml next to the executable, then applies environment overrides
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return LoadFile(filepath.Join(exeDir, "config.toml"))
}

// LoadFile loads the given TOML file; a missing file yields the defaults
func LoadFile(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FromFile = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, info, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if applyEnv(cfg, os.Getenv) {
		info.PortSpecified = true
	}
	return cfg, info, nil
}

// applyEnv overrides file values with the hosted-deployment variables; reports whether the port was set
func applyEnv(cfg *AppConfig, getenv func(string) string) bool {
	portSet := false
	if v := getenv("FECHAMENTO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
			portSet = true
		}
	}
	if v := getenv("FECHAMENTO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := getenv("DATABASE_URL"); v != "" {
		cfg.Database.Driver = "pgx"
		cfg.Database.DSN = v
	}
	if v := getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := getenv("R2_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := getenv("R2_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := getenv("R2_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := getenv("R2_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := getenv("R2_PUBLIC_URL"); v != "" {
		cfg.Storage.BaseURL = v
	}
	if v := getenv("SFTP_SERVER"); v != "" {
		cfg.SFTP.Server = v
	}
	if v := getenv("SFTP_USERNAME"); v != "" {
		cfg.SFTP.Username = v
	}
	if v := getenv("SFTP_KEY_PATH"); v != "" {
		cfg.SFTP.KeyPath = v
	}
	return portSet
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadConfig loads config.toml next to the executable
func LoadConfig() (*AppConfig, error) {
	cfg, _, err := LoadConfigWithInfo()
	return cfg, err
}

// Policy distribution policy described by the rateio section
func (c *AppConfig) Policy() (rateio.Policy, error) {
	weekStart, err := rateio.ParseWeekday(c.Rateio.WeekStart)
	if err != nil {
		return rateio.Policy{}, err
	}

	p := rateio.Policy{
		WeekStart:         weekStart,
		CommissionRate:    c.Rateio.CommissionRate,
		ServiceChargeRate: c.Rateio.ServiceChargeRate,
		PoolPercent:       c.Rateio.PoolPercent,
		WaiterPercent:     c.Rateio.WaiterPercent,
		KitchenPercent:    c.Rateio.KitchenPercent,
		AdminPercent:      c.Rateio.AdminPercent,
	}
	if err := p.Validate(); err != nil {
		return rateio.Policy{}, fmt.Errorf("invalid rateio config: %w", err)
	}
	return p, nil
}

// ColumnAliases built-in header spellings with the ingest overrides applied
func (c *AppConfig) ColumnAliases() parser.ColumnAliases {
	aliases := parser.DefaultColumnAliases()
	if len(c.Ingest.Columns) == 0 {
		return aliases
	}

	overrides := make(map[parser.Field][]string, len(c.Ingest.Columns))
	for field, spellings := range c.Ingest.Columns {
		overrides[parser.Field(strings.ToLower(field))] = spellings
	}
	return aliases.WithOverrides(overrides)
}

// ResolveDataDir absolute data directory; relative paths hang off the executable directory
func ResolveDataDir(cfg *AppConfig) string {
	if filepath.IsAbs(cfg.Data.DataDir) {
		return cfg.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, cfg.Data.DataDir)
}

// EnsureDataDir creates the data directory and its subdirectories
func EnsureDataDir(cfg *AppConfig) (string, error) {
	dataDir := ResolveDataDir(cfg)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	for _, subdir := range []string{"uploads", "exports"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// DatabasePath SQLite file used when no DSN is configured
func DatabasePath(cfg *AppConfig) string {
	return filepath.Join(ResolveDataDir(cfg), "fechamento.db")
}
