package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RoGogDBD/social-pulse/internal/simulator"
	"gopkg.in/yaml.v3"
)

// Константы для имен переменных окружения
const (
	EnvAddress        = "ADDRESS"
	EnvTickInterval   = "TICK_INTERVAL"
	EnvCapacity       = "HISTORY_CAPACITY"
	EnvSeed           = "RAND_SEED"
	EnvStoreFile      = "FILE_STORAGE_PATH"
	EnvRestore        = "RESTORE"
	EnvDatabaseDSN    = "DATABASE_DSN"
	EnvRedisAddr      = "REDIS_ADDR"
	EnvCollector      = "COLLECTOR_ADDRESS"
	EnvReportInterval = "REPORT_INTERVAL"
	EnvKey            = "KEY"
	EnvGRPCAddress    = "GRPC_ADDRESS"
	EnvTrustedSubnet  = "TRUSTED_SUBNET"
	EnvAuditFile      = "AUDIT_FILE"
	EnvAuditURL       = "AUDIT_URL"
	EnvRateLimit      = "RATE_LIMIT"
	EnvLogLevel       = "LOG_LEVEL"
	EnvConfig         = "CONFIG"
)

// Константы для флагов командной строки
const (
	FlagAddress        = "a"
	FlagTickInterval   = "t"
	FlagCapacity       = "n"
	FlagSeed           = "seed"
	FlagStoreFile      = "f"
	FlagRestore        = "r"
	FlagDatabaseDSN    = "d"
	FlagRedisAddr      = "redis"
	FlagCollector      = "collector"
	FlagReportInterval = "report"
	FlagKey            = "k"
	FlagGRPCAddress    = "g"
	FlagTrustedSubnet  = "trusted-subnet"
	FlagAuditFile      = "audit-file"
	FlagAuditURL       = "audit-url"
	FlagRateLimit      = "l"
	FlagLogLevel       = "log-level"
	FlagConfig         = "c"
)

// FileConfig представляет конфигурацию в файле формата JSON или YAML.
//
// Длительности задаются строками вида "4s", "1m".
type FileConfig struct {
	Address        string                 `json:"address" yaml:"address"`
	TickInterval   string                 `json:"tick_interval" yaml:"tick_interval"`
	Capacity       *int                   `json:"history_capacity" yaml:"history_capacity"`
	Seed           *int64                 `json:"rand_seed" yaml:"rand_seed"`
	Metrics        []simulator.MetricSpec `json:"metrics" yaml:"metrics"`
	StoreFile      string                 `json:"store_file" yaml:"store_file"`
	Restore        *bool                  `json:"restore" yaml:"restore"`
	DatabaseDSN    string                 `json:"database_dsn" yaml:"database_dsn"`
	RedisAddr      string                 `json:"redis_addr" yaml:"redis_addr"`
	Collector      string                 `json:"collector_address" yaml:"collector_address"`
	ReportInterval string                 `json:"report_interval" yaml:"report_interval"`
	Key            string                 `json:"key" yaml:"key"`
	GRPCAddress    string                 `json:"grpc_address" yaml:"grpc_address"`
	TrustedSubnet  string                 `json:"trusted_subnet" yaml:"trusted_subnet"`
	AuditFile      string                 `json:"audit_file" yaml:"audit_file"`
	AuditURL       string                 `json:"audit_url" yaml:"audit_url"`
	RateLimit      *int                   `json:"rate_limit" yaml:"rate_limit"`
	LogLevel       string                 `json:"log_level" yaml:"log_level"`
}

// LoadFileConfig загружает конфигурацию из файла.
//
// Формат определяется по расширению: .yaml и .yml разбираются как YAML, остальные как JSON.
// Пустой путь возвращает пустую конфигурацию.
func LoadFileConfig(filePath string) (*FileConfig, error) {
	cfg := &FileConfig{}
	if filePath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ParseDuration парсит строку длительности в формате "1s", "1m", "1h".
// Если строка пуста, возвращает 0 и nil.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %w", err)
	}

	return d, nil
}
