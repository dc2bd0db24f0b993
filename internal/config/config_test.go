package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func validTradeConfig() string {
	return `
mode = "trade"

[wallet]
private_key = "0xabc"

[chain]
rpc_url = "https://mainnet.optimism.io"
network_id = 10

[contracts]
sports_amm = "0x0000000000000000000000000000000000000a01"
live_processor = "0x0000000000000000000000000000000000000a02"
`
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, validTradeConfig())

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Mode != "trade" {
		t.Errorf("mode = %q, want trade", cfg.Mode)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log_level default = %q, want info", cfg.LogLevel)
	}
	if cfg.Trading.TickInterval.Duration != time.Second {
		t.Errorf("tick_interval default = %v, want 1s", cfg.Trading.TickInterval.Duration)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("postgres port default = %d, want 5432", cfg.Postgres.Port)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("server port default = %d, want 8000", cfg.Server.Port)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OVERBOT_CHAIN_RPC_URL", "https://rpc.example.com")
	t.Setenv("OVERBOT_CHAIN_NETWORK_ID", "42161")
	t.Setenv("OVERBOT_REDIS_PASSWORD", "hunter2")
	t.Setenv("OVERBOT_TRADING_TICK_INTERVAL", "500ms")
	t.Setenv("OVERBOT_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	path := writeConfigFile(t, validTradeConfig())
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Chain.RPCURL != "https://rpc.example.com" {
		t.Errorf("rpc_url = %q", cfg.Chain.RPCURL)
	}
	if cfg.Chain.NetworkID != 42161 {
		t.Errorf("network_id = %d, want 42161", cfg.Chain.NetworkID)
	}
	if cfg.Redis.Password != "hunter2" {
		t.Errorf("redis password override missing")
	}
	if cfg.Trading.TickInterval.Duration != 500*time.Millisecond {
		t.Errorf("tick_interval = %v, want 500ms", cfg.Trading.TickInterval.Duration)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != want[0] || cfg.Server.CORSOrigins[1] != want[1] {
		t.Errorf("cors_origins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "server"

	if err := cfg.Validate(); err != nil {
		t.Errorf("server mode with defaults should validate, got %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "racing"
	cfg.LogLevel = "loud"
	cfg.Chain.RPCURL = ""
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, fragment := range []string{"unknown mode", "unknown log_level", "rpc_url", "redis: addr"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error missing %q:\n%v", fragment, err)
		}
	}
}

func TestValidateTradeModeNeedsWalletAndContracts(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "trade"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, fragment := range []string{"wallet:", "sports_amm", "live_processor"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error missing %q:\n%v", fragment, err)
		}
	}
}

func TestValidateServerPortAlwaysChecked(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "monitor"
	cfg.Server.Port = 0

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "port") {
		t.Errorf("expected port error, got %v", err)
	}
}

func TestValidateArchiveRequiresS3(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "server"
	cfg.Archive.Enabled = true
	cfg.S3.Bucket = ""

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "bucket") {
		t.Errorf("expected bucket error, got %v", err)
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Wallet.PrivateKey = "0xsecret"
	cfg.Postgres.Password = "dbpass"
	cfg.Notify.TelegramToken = "tok"

	red := RedactedConfig(&cfg)

	if red.Wallet.PrivateKey != "***" || red.Postgres.Password != "***" || red.Notify.TelegramToken != "***" {
		t.Errorf("secrets not redacted: %+v", red)
	}
	if cfg.Wallet.PrivateKey != "0xsecret" {
		t.Errorf("original config mutated")
	}

	red.Notify.Events[0] = "changed"
	if cfg.Notify.Events[0] == "changed" {
		t.Errorf("redacted copy shares the events slice with the original")
	}
}
