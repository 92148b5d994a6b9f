package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RoGogDBD/social-pulse/internal/simulator"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("test", nil)
	require.NoError(t, err)

	require.Equal(t, "localhost:8080", cfg.Address.String())
	require.Equal(t, 4*time.Second, cfg.TickInterval)
	require.Equal(t, 10, cfg.Capacity)
	require.Equal(t, simulator.DefaultMetrics(), cfg.Metrics)
	require.True(t, cfg.Restore)
	require.Equal(t, 10*time.Second, cfg.ReportInterval)
	require.Empty(t, cfg.DatabaseDSN)
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := Load("test", []string{
		"-a", "0.0.0.0:9000",
		"-t", "2",
		"-n", "5",
		"-seed", "42",
		"-r=false",
		"-collector", "localhost:8081",
		"-report", "30",
		"-trusted-subnet", "10.0.0.0/8",
	})
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:9000", cfg.Address.String())
	require.Equal(t, 2*time.Second, cfg.TickInterval)
	require.Equal(t, 5, cfg.Capacity)
	require.Equal(t, int64(42), cfg.Seed)
	require.False(t, cfg.Restore)
	require.Equal(t, "localhost:8081", cfg.CollectorAddr)
	require.Equal(t, 30*time.Second, cfg.ReportInterval)

	ipNet, err := cfg.TrustedNet()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.0/8", ipNet.String())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "dashboard.yaml", `
address: "127.0.0.1:7000"
tick_interval: "1s"
history_capacity: 20
metrics:
  - name: shares
    seed: 50
    max_delta: 5
  - name: views
    seed: 10000
    max_delta: 500
restore: false
`)

	cfg, err := Load("test", []string{"-c", path})
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:7000", cfg.Address.String())
	require.Equal(t, time.Second, cfg.TickInterval)
	require.Equal(t, 20, cfg.Capacity)
	require.False(t, cfg.Restore)
	require.Equal(t, []simulator.MetricSpec{
		{Name: "shares", Seed: 50, MaxDelta: 5},
		{Name: "views", Seed: 10000, MaxDelta: 500},
	}, cfg.Metrics)
	require.Equal(t, path, cfg.ConfigFile)
}

func TestLoad_JSONFileLosesToFlags(t *testing.T) {
	path := writeFile(t, "dashboard.json", `{"address":"127.0.0.1:7000","history_capacity":20,"key":"from-file"}`)

	cfg, err := Load("test", []string{"-c", path, "-n", "3"})
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:7000", cfg.Address.String())
	require.Equal(t, 3, cfg.Capacity)
	require.Equal(t, "from-file", cfg.Key)
}

func TestLoad_EnvWins(t *testing.T) {
	t.Setenv(EnvAddress, "envhost:9999")
	t.Setenv(EnvTickInterval, "7")
	t.Setenv(EnvRestore, "false")
	t.Setenv(EnvKey, "env-key")

	cfg, err := Load("test", []string{"-a", "flaghost:1", "-t", "2", "-k", "flag-key"})
	require.NoError(t, err)

	require.Equal(t, "envhost:9999", cfg.Address.String())
	require.Equal(t, 7*time.Second, cfg.TickInterval)
	require.False(t, cfg.Restore)
	require.Equal(t, "env-key", cfg.Key)
}

func TestLoad_Invalid_TableDriven(t *testing.T) {
	badMetrics := writeFile(t, "bad.yaml", "metrics:\n  - name: x\n    seed: 1\n    max_delta: 0\n")
	brokenJSON := writeFile(t, "broken.json", "{")

	tests := []struct {
		name        string
		args        []string
		wantInvalid bool
	}{
		{"zero tick", []string{"-t", "0"}, true},
		{"negative capacity", []string{"-n", "-1"}, true},
		{"bad subnet", []string{"-trusted-subnet", "nonsense"}, true},
		{"negative rate limit", []string{"-l", "-1"}, true},
		{"bad metric in file", []string{"-c", badMetrics}, true},
		{"broken file", []string{"-c", brokenJSON}, false},
		{"missing file", []string{"-c", filepath.Join(t.TempDir(), "nope.json")}, false},
		{"unknown flag", []string{"-zzz"}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("test", tt.args)
			require.Error(t, err)
			require.Equal(t, tt.wantInvalid, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestGetConfigFilePathWithFlag(t *testing.T) {
	t.Setenv(EnvConfig, "/etc/pulse.yaml")
	require.Equal(t, "/tmp/flag.yaml", GetConfigFilePathWithFlag("/tmp/flag.yaml"))
	require.Equal(t, "/etc/pulse.yaml", GetConfigFilePathWithFlag(""))
}
