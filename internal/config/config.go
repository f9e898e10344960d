package config

import (
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Postgres struct {
	URL      string
	Host     string
	Port     string
	DB       string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
	Migrate  bool
}

// Mail holds the SMTP account used for every outgoing notification and the
// fixed internal recipient of new-order notices.
type Mail struct {
	Host      string
	Port      int
	Address   string
	Password  string
	Developer string
	Timeout   time.Duration
}

type Kafka struct {
	Brokers     []string
	Topic       string
	Group       string
	Partitions  int
	Replication int
}

func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

type Breaker struct {
	Threshold   uint32
	OpenTimeout time.Duration
	MaxHalfOpen uint32
}

type Retry struct {
	Attempts     int
	Base         time.Duration
	Max          time.Duration
	JitterFactor float64
}

type Log struct {
	Level  string
	Format string
	File   string
}

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	CacheCap        int
	CORSOrigins     []string

	Pg      Postgres
	Mail    Mail
	Kafka   Kafka
	Breaker Breaker
	Retry   Retry
	Log     Log
}

// Load is load for main: any error is fatal.
func Load() Config {
	cfg, err := load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	return cfg
}

func load() (Config, error) {
	_ = godotenv.Load("env/.env")

	cfg := Config{
		HTTPAddr:        envDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: envDurationMS("SHUTDOWN_TIMEOUT", 10*time.Second),
		CacheCap:        envInt("CACHE_CAP", 1000),
		CORSOrigins:     splitCSV(envDefault("CORS_ORIGINS", "http://localhost:3000,https://nail-shop.onrender.com")),

		Pg: Postgres{
			URL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
			Host:     strings.TrimSpace(os.Getenv("PG_HOST")),
			Port:     envDefault("PG_PORT", "5432"),
			DB:       strings.TrimSpace(os.Getenv("PG_DB")),
			User:     strings.TrimSpace(os.Getenv("PG_USER")),
			Password: strings.TrimSpace(os.Getenv("PG_PASSWORD")),
			SSLMode:  envDefault("PG_SSLMODE", "disable"),
			MaxConns: int32(envInt("PG_MAX_CONNS", 10)),
			Migrate:  envBool("DB_MIGRATE", true),
		},

		Mail: Mail{
			Host:      envDefault("MAIL_SERVER", "smtp.gmail.com"),
			Port:      envInt("MAIL_PORT", 587),
			Address:   strings.TrimSpace(os.Getenv("EMAIL_ADDRESS")),
			Password:  os.Getenv("EMAIL_PASSWORD"),
			Developer: strings.TrimSpace(os.Getenv("DEVELOPER_EMAIL_ADDRESS")),
			Timeout:   envDurationMS("MAIL_TIMEOUT", 15*time.Second),
		},

		Kafka: Kafka{
			Brokers:     splitCSV(strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))),
			Topic:       envDefault("KAFKA_TOPIC", "order-finalize"),
			Group:       envDefault("KAFKA_GROUP", "order-finalizer"),
			Partitions:  envInt("KAFKA_PARTITIONS", 1),
			Replication: envInt("KAFKA_REPLICATION", 1),
		},

		Breaker: Breaker{
			Threshold:   envUint32("BREAKER_THRESHOLD", 5),
			OpenTimeout: envDurationMS("BREAKER_OPENTIMEOUT", 10*time.Second),
			MaxHalfOpen: envUint32("BREAKER_MAXHALFOPEN", 3),
		},

		Retry: Retry{
			Attempts:     envInt("RETRY_ATTEMPTS", 5),
			Base:         envDurationMS("RETRY_BASE", 100*time.Millisecond),
			Max:          envDurationMS("RETRY_MAX", 5*time.Second),
			JitterFactor: envFloat64("RETRY_JITTERFACTOR", 0.3),
		},

		Log: Log{
			Level:  envDefault("LOG_LEVEL", "info"),
			Format: envDefault("LOG_FORMAT", "json"),
			File:   strings.TrimSpace(os.Getenv("LOG_FILE")),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, nil
}

type requiredEnv struct {
	key   string
	value string
}

func (c Config) validate() error {
	req := []requiredEnv{
		{"EMAIL_ADDRESS", c.Mail.Address},
		{"EMAIL_PASSWORD", c.Mail.Password},
		{"DEVELOPER_EMAIL_ADDRESS", c.Mail.Developer},
	}
	if c.Pg.URL == "" {
		req = append(req,
			requiredEnv{"PG_HOST", c.Pg.Host},
			requiredEnv{"PG_DB", c.Pg.DB},
			requiredEnv{"PG_USER", c.Pg.User},
			requiredEnv{"PG_PASSWORD", c.Pg.Password},
		)
	}
	if c.Kafka.Enabled() {
		req = append(req,
			requiredEnv{"KAFKA_TOPIC", c.Kafka.Topic},
			requiredEnv{"KAFKA_GROUP", c.Kafka.Group},
		)
	}

	var missing []string
	for _, r := range req {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return &missingEnvError{Keys: missing}
	}
	return nil
}

func (c *Config) normalize() {
	if c.CacheCap <= 0 {
		log.Printf("CACHE_CAP is %d, adjusting to 1", c.CacheCap)
		c.CacheCap = 1
	}
	if c.Pg.MaxConns <= 0 {
		c.Pg.MaxConns = 1
	}
	if c.Retry.Attempts < 1 {
		log.Printf("RETRY_ATTEMPTS is %d, adjusting to 1", c.Retry.Attempts)
		c.Retry.Attempts = 1
	}
	if c.Retry.Base <= 0 {
		log.Printf("RETRY_BASE is %v, adjusting to 100ms", c.Retry.Base)
		c.Retry.Base = 100 * time.Millisecond
	}
	if c.Retry.Max < c.Retry.Base {
		log.Printf("RETRY_MAX (%v) < RETRY_BASE (%v), adjusting max to base", c.Retry.Max, c.Retry.Base)
		c.Retry.Max = c.Retry.Base
	}
}

type missingEnvError struct{ Keys []string }

func (e *missingEnvError) Error() string {
	return "missing required envs: " + strings.Join(e.Keys, ", ")
}

// DSN returns DATABASE_URL when set, otherwise builds a Postgres URL from the
// PG_* parts, escaping user/pass and query.
func (c Config) DSN() string {
	if c.Pg.URL != "" {
		return c.Pg.URL
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Pg.User, c.Pg.Password),
		Host:   net.JoinHostPort(c.Pg.Host, c.Pg.Port),
		Path:   "/" + c.Pg.DB,
	}
	q := url.Values{}
	if c.Pg.SSLMode != "" {
		q.Set("sslmode", c.Pg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return n
}

func envUint32(k string, def uint32) uint32 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	u, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return uint32(u)
}

func envFloat64(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %.3f: %v", k, v, def, err)
		return def
	}
	return f
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %t: %v", k, v, def, err)
		return def
	}
	return b
}

// envDurationMS supports either plain integer milliseconds ("1500") or
// Go duration strings ("1.5s", "250ms", "2m").
func envDurationMS(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
			return def
		}
		return d
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
