package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"creditline/pkg/platform/strings"
)

// Config is the full process configuration read at startup.
type Config struct {
	Server   Server
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Lending  LendingConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// DatabaseConfig configures the PostgreSQL pool. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the customer cache. An empty URL disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CustomerTTL  time.Duration
}

// KafkaConfig configures the audit sink. No brokers keeps audit events in memory.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	// OpsSampleRate is the share of operations audit events (eligibility
	// checks) kept; compliance events are never sampled.
	OpsSampleRate float64
}

// LendingConfig holds origination settings.
type LendingConfig struct {
	TxTimeout time.Duration
}

// Enabled reports whether a backing service is configured.
func (c DatabaseConfig) Enabled() bool { return c.URL != "" }
func (c RedisConfig) Enabled() bool    { return c.URL != "" }
func (c KafkaConfig) Enabled() bool    { return len(c.Brokers) > 0 }

// FromEnv builds the config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	r := reader{lookup: lookup}
	cfg := Config{
		Server: Server{
			Addr:            r.str("CREDITLINE_ADDR", ":8080"),
			LogLevel:        r.str("LOG_LEVEL", "info"),
			ShutdownTimeout: r.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:             r.str("DATABASE_URL", ""),
			MaxOpenConns:    r.int("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    r.int("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: r.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          r.str("REDIS_URL", ""),
			PoolSize:     r.int("REDIS_POOL_SIZE", 10),
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			CustomerTTL:  r.duration("CUSTOMER_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.SplitList(r.str("KAFKA_BROKERS", "")),
			AuditTopic:    r.str("KAFKA_AUDIT_TOPIC", "creditline.audit"),
			OpsSampleRate: r.rate("AUDIT_OPS_SAMPLE_RATE", 1),
		},
		Lending: LendingConfig{
			TxTimeout: r.duration("LENDING_TX_TIMEOUT", 5*time.Second),
		},
	}
	if r.err != nil {
		return Config{}, r.err
	}
	return cfg, nil
}

// reader keeps the first parse error so FromEnv reports one failure.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) str(key, def string) string {
	if v, ok := r.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		r.fail(fmt.Errorf("%s: expected a non-negative integer, got %q", key, v))
		return def
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		r.fail(fmt.Errorf("%s: expected a positive duration, got %q", key, v))
		return def
	}
	return d
}

func (r *reader) rate(key string, def float64) float64 {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		r.fail(fmt.Errorf("%s: expected a rate between 0 and 1, got %q", key, v))
		return def
	}
	return f
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}
