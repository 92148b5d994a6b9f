package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"time"

	"github.com/RoGogDBD/social-pulse/internal/simulator"
)

// ErrInvalidConfig возвращается, если итоговая конфигурация некорректна.
var ErrInvalidConfig = errors.New("invalid config")

// Config — итоговая конфигурация процесса.
//
// Приоритет источников: значения по умолчанию < файл конфигурации < флаги < переменные окружения.
type Config struct {
	Address        NetAddress
	TickInterval   time.Duration
	Capacity       int
	Seed           int64
	Metrics        []simulator.MetricSpec
	StoreFile      string
	Restore        bool
	DatabaseDSN    string
	RedisAddr      string
	CollectorAddr  string
	ReportInterval time.Duration
	Key            string
	GRPCAddress    string
	TrustedSubnet  string
	AuditFile      string
	AuditURL       string
	RateLimit      int
	LogLevel       string
	ConfigFile     string
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	return Config{
		Address:        NetAddress{Host: "localhost", Port: DefaultPort},
		TickInterval:   simulator.DefaultInterval,
		Capacity:       simulator.DefaultCapacity,
		Metrics:        simulator.DefaultMetrics(),
		StoreFile:      "snapshot.json",
		Restore:        true,
		ReportInterval: 10 * time.Second,
		RateLimit:      50,
		LogLevel:       "info",
	}
}

// Load собирает конфигурацию из флагов args, файла конфигурации и окружения.
//
// name — имя набора флагов (обычно имя программы).
func Load(name string, args []string) (*Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	addr := ParseAddressFlag(fs)
	tick := fs.Int(FlagTickInterval, int(cfg.TickInterval/time.Second), "Tick interval in seconds")
	capacity := fs.Int(FlagCapacity, cfg.Capacity, "History capacity per metric")
	seed := fs.Int64(FlagSeed, 0, "Random seed (0 = current time)")
	storeFile := fs.String(FlagStoreFile, cfg.StoreFile, "Snapshot file path")
	restore := fs.Bool(FlagRestore, cfg.Restore, "Restore metrics from snapshot file at startup")
	dsn := fs.String(FlagDatabaseDSN, "", "PostgreSQL DSN")
	redisAddr := fs.String(FlagRedisAddr, "", "Redis address host:port")
	collector := fs.String(FlagCollector, "", "Collector address host:port")
	report := fs.Int(FlagReportInterval, int(cfg.ReportInterval/time.Second), "Report interval in seconds")
	key := fs.String(FlagKey, "", "Key for signing payloads")
	grpcAddr := fs.String(FlagGRPCAddress, "", "gRPC health address host:port")
	subnet := fs.String(FlagTrustedSubnet, "", "Trusted subnet in CIDR notation")
	auditFile := fs.String(FlagAuditFile, "", "Audit file path")
	auditURL := fs.String(FlagAuditURL, "", "Audit webhook URL")
	rateLimit := fs.Int(FlagRateLimit, cfg.RateLimit, "API requests per second (0 = unlimited)")
	logLevel := fs.String(FlagLogLevel, cfg.LogLevel, "Log level")
	configFile := fs.String(FlagConfig, "", "Path to JSON or YAML config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	path := GetConfigFilePathWithFlag(*configFile)
	file, err := LoadFileConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyFile(file); err != nil {
		return nil, err
	}
	cfg.ConfigFile = path

	if set[FlagAddress] {
		cfg.Address = *addr
	}
	if set[FlagTickInterval] {
		cfg.TickInterval = time.Duration(*tick) * time.Second
	}
	if set[FlagCapacity] {
		cfg.Capacity = *capacity
	}
	if set[FlagSeed] {
		cfg.Seed = *seed
	}
	if set[FlagStoreFile] {
		cfg.StoreFile = *storeFile
	}
	if set[FlagRestore] {
		cfg.Restore = *restore
	}
	if set[FlagDatabaseDSN] {
		cfg.DatabaseDSN = *dsn
	}
	if set[FlagRedisAddr] {
		cfg.RedisAddr = *redisAddr
	}
	if set[FlagCollector] {
		cfg.CollectorAddr = *collector
	}
	if set[FlagReportInterval] {
		cfg.ReportInterval = time.Duration(*report) * time.Second
	}
	if set[FlagKey] {
		cfg.Key = *key
	}
	if set[FlagGRPCAddress] {
		cfg.GRPCAddress = *grpcAddr
	}
	if set[FlagTrustedSubnet] {
		cfg.TrustedSubnet = *subnet
	}
	if set[FlagAuditFile] {
		cfg.AuditFile = *auditFile
	}
	if set[FlagAuditURL] {
		cfg.AuditURL = *auditURL
	}
	if set[FlagRateLimit] {
		cfg.RateLimit = *rateLimit
	}
	if set[FlagLogLevel] {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyFile(f *FileConfig) error {
	if f.Address != "" {
		if err := c.Address.Set(f.Address); err != nil {
			return fmt.Errorf("invalid address in config file: %w", err)
		}
	}
	if d, err := ParseDuration(f.TickInterval); err != nil {
		return fmt.Errorf("invalid tick_interval in config file: %w", err)
	} else if d != 0 {
		c.TickInterval = d
	}
	if d, err := ParseDuration(f.ReportInterval); err != nil {
		return fmt.Errorf("invalid report_interval in config file: %w", err)
	} else if d != 0 {
		c.ReportInterval = d
	}
	if f.Capacity != nil {
		c.Capacity = *f.Capacity
	}
	if f.Seed != nil {
		c.Seed = *f.Seed
	}
	if len(f.Metrics) > 0 {
		c.Metrics = f.Metrics
	}
	if f.Restore != nil {
		c.Restore = *f.Restore
	}
	if f.RateLimit != nil {
		c.RateLimit = *f.RateLimit
	}

	overrideString(&c.StoreFile, f.StoreFile)
	overrideString(&c.DatabaseDSN, f.DatabaseDSN)
	overrideString(&c.RedisAddr, f.RedisAddr)
	overrideString(&c.CollectorAddr, f.Collector)
	overrideString(&c.Key, f.Key)
	overrideString(&c.GRPCAddress, f.GRPCAddress)
	overrideString(&c.TrustedSubnet, f.TrustedSubnet)
	overrideString(&c.AuditFile, f.AuditFile)
	overrideString(&c.AuditURL, f.AuditURL)
	overrideString(&c.LogLevel, f.LogLevel)
	return nil
}

func (c *Config) applyEnv() error {
	if err := EnvServer(&c.Address, EnvAddress); err != nil {
		return err
	}

	if v, err := EnvInt(EnvTickInterval); err != nil {
		return err
	} else if v != 0 {
		c.TickInterval = time.Duration(v) * time.Second
	}
	if v, err := EnvInt(EnvReportInterval); err != nil {
		return err
	} else if v != 0 {
		c.ReportInterval = time.Duration(v) * time.Second
	}
	if v, err := EnvInt(EnvCapacity); err != nil {
		return err
	} else if v != 0 {
		c.Capacity = v
	}
	if v, ok, err := EnvInt64(EnvSeed); err != nil {
		return err
	} else if ok {
		c.Seed = v
	}
	if v, ok, err := EnvBool(EnvRestore); err != nil {
		return err
	} else if ok {
		c.Restore = v
	}
	if v, ok, err := EnvInt64(EnvRateLimit); err != nil {
		return err
	} else if ok {
		c.RateLimit = int(v)
	}

	overrideString(&c.StoreFile, EnvString(EnvStoreFile))
	overrideString(&c.DatabaseDSN, EnvString(EnvDatabaseDSN))
	overrideString(&c.RedisAddr, EnvString(EnvRedisAddr))
	overrideString(&c.CollectorAddr, EnvString(EnvCollector))
	overrideString(&c.Key, EnvString(EnvKey))
	overrideString(&c.GRPCAddress, EnvString(EnvGRPCAddress))
	overrideString(&c.TrustedSubnet, EnvString(EnvTrustedSubnet))
	overrideString(&c.AuditFile, EnvString(EnvAuditFile))
	overrideString(&c.AuditURL, EnvString(EnvAuditURL))
	overrideString(&c.LogLevel, EnvString(EnvLogLevel))
	return nil
}

func overrideString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

// Validate проверяет согласованность конфигурации.
func (c *Config) Validate() error {
	if err := simulator.ValidateSpecs(c.Metrics, c.Capacity); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive, got %v", ErrInvalidConfig, c.TickInterval)
	}
	if c.ReportInterval <= 0 {
		return fmt.Errorf("%w: report interval must be positive, got %v", ErrInvalidConfig, c.ReportInterval)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate limit must not be negative, got %d", ErrInvalidConfig, c.RateLimit)
	}
	if _, err := c.TrustedNet(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// TrustedNet возвращает доверенную подсеть или nil, если она не задана.
func (c *Config) TrustedNet() (*net.IPNet, error) {
	if c.TrustedSubnet == "" {
		return nil, nil
	}
	_, ipNet, err := net.ParseCIDR(c.TrustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("invalid trusted subnet %q: %w", c.TrustedSubnet, err)
	}
	return ipNet, nil
}

// SessionConfig возвращает параметры сессии симулятора.
func (c *Config) SessionConfig() simulator.SessionConfig {
	return simulator.SessionConfig{
		Metrics:  c.Metrics,
		Capacity: c.Capacity,
		Interval: c.TickInterval,
	}
}

// GetConfigFilePathWithFlag получает путь к файлу конфигурации, учитывая явно переданный флаг.
// Используется после разбора флагов.
func GetConfigFilePathWithFlag(flagValue string) string {
	// Флаги имеют больший приоритет
	if flagValue != "" {
		return flagValue
	}
	// Затем проверяем переменную окружения
	return EnvString(EnvConfig)
}
