package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies OVERBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known OVERBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "OVERBOT_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.KeyfilePath, "OVERBOT_WALLET_KEYFILE_PATH")
	setStr(&cfg.Wallet.KeyPassword, "OVERBOT_WALLET_KEY_PASSWORD")

	// ── Chain ──
	setStr(&cfg.Chain.RPCURL, "OVERBOT_CHAIN_RPC_URL")
	setInt64(&cfg.Chain.NetworkID, "OVERBOT_CHAIN_NETWORK_ID")

	// ── Contracts ──
	setStr(&cfg.Contracts.SportsAMM, "OVERBOT_CONTRACTS_SPORTS_AMM")
	setStr(&cfg.Contracts.LiveProcessor, "OVERBOT_CONTRACTS_LIVE_PROCESSOR")
	setStr(&cfg.Contracts.SGPProcessor, "OVERBOT_CONTRACTS_SGP_PROCESSOR")
	setStr(&cfg.Contracts.FreeBetHolder, "OVERBOT_CONTRACTS_FREE_BET_HOLDER")

	// ── Overtime ──
	setStr(&cfg.Overtime.APIHost, "OVERBOT_OVERTIME_API_HOST")

	// ── Relay ──
	setStr(&cfg.Relay.Host, "OVERBOT_RELAY_HOST")
	setStr(&cfg.Relay.APIKey, "OVERBOT_RELAY_API_KEY")

	// ── Trading ──
	setDuration(&cfg.Trading.TickInterval, "OVERBOT_TRADING_TICK_INTERVAL")
	setInt(&cfg.Trading.DefaultMaxExecutionSec, "OVERBOT_TRADING_DEFAULT_MAX_EXECUTION_SEC")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "OVERBOT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "OVERBOT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "OVERBOT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "OVERBOT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "OVERBOT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "OVERBOT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "OVERBOT_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "OVERBOT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "OVERBOT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "OVERBOT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "OVERBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "OVERBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "OVERBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "OVERBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "OVERBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "OVERBOT_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "OVERBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "OVERBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "OVERBOT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "OVERBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "OVERBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "OVERBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "OVERBOT_S3_FORCE_PATH_STYLE")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "OVERBOT_ARCHIVE_ENABLED")
	setInt(&cfg.Archive.RetentionDays, "OVERBOT_ARCHIVE_RETENTION_DAYS")
	setDuration(&cfg.Archive.Interval, "OVERBOT_ARCHIVE_INTERVAL")

	// ── Server ──
	setInt(&cfg.Server.Port, "OVERBOT_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "OVERBOT_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "OVERBOT_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "OVERBOT_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "OVERBOT_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "OVERBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "OVERBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "OVERBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "OVERBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "OVERBOT_MODE")
	setStr(&cfg.LogLevel, "OVERBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
