package buildCFG

import (
	"fmt"
	"strings"
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/mailer"
	"github.com/bayworx/event-management-system-sub001/internal/outbox"
	"github.com/bayworx/event-management-system-sub001/internal/rabbit"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"
)

type ServerConfig struct {
	Port         string
	MaxBodyBytes int64
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type StorageConfig struct {
	Dir            string
	MaxUploadBytes int64
	MigrationsDir  string
}

// Source is the subset of *config.Config the builders read.
type Source interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetDuration(key string) time.Duration
}

func stringOr(cfg Source, key, def string) string {
	if v := strings.TrimSpace(cfg.GetString(key)); v != "" {
		return v
	}
	return def
}

func intOr(cfg Source, key string, def int) int {
	if v := cfg.GetInt(key); v > 0 {
		return v
	}
	return def
}

func durationOr(cfg Source, key string, def time.Duration) time.Duration {
	if v := cfg.GetDuration(key); v > 0 {
		return v
	}
	return def
}

func BuildServerConfig(cfg Source, log *zerolog.Logger) ServerConfig {
	out := ServerConfig{
		Port:         stringOr(cfg, "server.port", "8080"),
		MaxBodyBytes: int64(intOr(cfg, "server.max_body_mb", 20)) << 20,
	}
	log.Info().Str("port", out.Port).Msg("server config loaded")
	return out
}

func BuildDBConfig(cfg Source, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("database.master_dsn")
	if masterDSN == "" {
		host := stringOr(cfg, "database.host", "localhost")
		port := stringOr(cfg, "database.port", "5432")
		user := cfg.GetString("database.user")
		name := cfg.GetString("database.name")
		if user == "" || name == "" {
			return "", nil, nil, fmt.Errorf("database.master_dsn or database.user and database.name must be set")
		}
		masterDSN = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			user, cfg.GetString("database.password"), host, port, name,
			stringOr(cfg, "database.sslmode", "disable"))
	}

	var slaveDSNs []string
	for _, dsn := range strings.Split(cfg.GetString("database.slave_dsns"), ",") {
		if dsn = strings.TrimSpace(dsn); dsn != "" {
			slaveDSNs = append(slaveDSNs, dsn)
		}
	}

	opts := &dbpg.Options{
		MaxOpenConns:    intOr(cfg, "database.max_open_conns", 10),
		MaxIdleConns:    intOr(cfg, "database.max_idle_conns", 5),
		ConnMaxLifetime: durationOr(cfg, "database.conn_max_lifetime", 30*time.Minute),
	}
	log.Info().Int("slaves", len(slaveDSNs)).Int("max_open_conns", opts.MaxOpenConns).Msg("database config loaded")
	return masterDSN, slaveDSNs, opts, nil
}

func BuildRabbitConfig(cfg Source, log *zerolog.Logger) (rabbit.Config, error) {
	out := rabbit.Config{
		URL:      cfg.GetString("rabbitmq.url"),
		Exchange: stringOr(cfg, "rabbitmq.exchange", "events.delayed"),
		Queue:    stringOr(cfg, "rabbitmq.queue", "events.async"),
		Prefetch: intOr(cfg, "rabbitmq.prefetch", 10),
	}
	if out.URL == "" {
		return rabbit.Config{}, fmt.Errorf("rabbitmq.url is required")
	}
	log.Info().Str("exchange", out.Exchange).Str("queue", out.Queue).Msg("rabbitmq config loaded")
	return out, nil
}

func BuildJWTConfig(cfg Source) (JWTConfig, error) {
	out := JWTConfig{
		Secret: cfg.GetString("jwt.secret"),
		TTL:    durationOr(cfg, "jwt.ttl", 24*time.Hour),
		Issuer: stringOr(cfg, "jwt.issuer", "event-management"),
	}
	if out.Secret == "" {
		return JWTConfig{}, fmt.Errorf("jwt.secret is required")
	}
	return out, nil
}

func BuildSMTPConfig(cfg Source) mailer.Config {
	return mailer.Config{
		Enabled:  cfg.GetBool("smtp.enabled"),
		Host:     cfg.GetString("smtp.host"),
		Port:     intOr(cfg, "smtp.port", 587),
		Username: cfg.GetString("smtp.username"),
		Password: cfg.GetString("smtp.password"),
		From:     stringOr(cfg, "smtp.from", "no-reply@localhost"),
		BaseURL:  strings.TrimRight(stringOr(cfg, "app.base_url", "http://localhost:8080"), "/"),
	}
}

func BuildStorageConfig(cfg Source) StorageConfig {
	return StorageConfig{
		Dir:            stringOr(cfg, "storage.dir", "./uploads"),
		MaxUploadBytes: int64(intOr(cfg, "storage.max_upload_mb", 10)) << 20,
		MigrationsDir:  stringOr(cfg, "database.migrations_dir", "migrations/postgres"),
	}
}

func BuildOutboxConfig(cfg Source, queue string) outbox.RelayConfig {
	return outbox.RelayConfig{
		Queue:        stringOr(cfg, "outbox.queue", queue),
		PollInterval: durationOr(cfg, "outbox.poll_interval", time.Second),
		BatchSize:    intOr(cfg, "outbox.batch_size", 50),
	}
}

// BuildLogLevel reads log.level; unknown or empty values mean info.
func BuildLogLevel(cfg Source) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.GetString("log.level")))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
