package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/auth"
	pkgconfig "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/config"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/database"
	pkgkafka "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/kafka"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/ratelimit"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/tracing"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// minSecretLength is the minimum JWT secret length outside development.
const minSecretLength = 32

// Config holds all configuration for the intern service.
type Config struct {
	AppName     string `env:"APP_NAME" envDefault:"ltg-intern-service"`
	AppVersion  string `env:"APP_VERSION" envDefault:"1.0.0"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort            int           `env:"HTTP_PORT" envDefault:"3000"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"20s"`
	TrustProxy          bool          `env:"TRUST_PROXY" envDefault:"false"`
	CookieSecure        bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CORSAllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PprofEnabled        bool          `env:"PPROF_ENABLED" envDefault:"false"`
	PprofAllowedCIDRs   []string      `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
	SlowQueryThreshold  time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`
	TokenPurgeSchedule  string        `env:"TOKEN_PURGE_SCHEDULE" envDefault:"@every 1h"`
	MigrationsOnStartup bool          `env:"MIGRATIONS_ON_STARTUP" envDefault:"true"`

	// PostgreSQL
	PostgresHost             string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort             int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser             string        `env:"POSTGRES_USER" envDefault:"ltg"`
	PostgresPass             string        `env:"POSTGRES_PASSWORD" envDefault:"ltg_secret"`
	PostgresDB               string        `env:"POSTGRES_DB" envDefault:"ltg_interns"`
	PostgresSSL              string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConns         int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	PostgresConnectTimeout   time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" envDefault:"5s"`
	PostgresStatementTimeout time.Duration `env:"POSTGRES_STATEMENT_TIMEOUT" envDefault:"10s"`

	// Redis
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// JWT
	JWTAccessSecret  string        `env:"JWT_ACCESS_TOKEN_SECRET,required,notEmpty"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_TOKEN_SECRET,required,notEmpty"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRATION" envDefault:"15m"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_TOKEN_EXPIRATION" envDefault:"168h"`

	// Auth policy
	AdminEmails   []string `env:"ADMIN_EMAIL" envSeparator:","`
	BcryptCost    int      `env:"BCRYPT_COST" envDefault:"12"`
	SingleSession bool     `env:"AUTH_SINGLE_SESSION" envDefault:"false"`

	// Rate limiting
	RateLimitWindow       time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
	RateLimitBlock        time.Duration `env:"RATE_LIMIT_BLOCK" envDefault:"300s"`
	RateLimitAuthPoints   int           `env:"RATE_LIMIT_AUTH_POINTS" envDefault:"20"`
	RateLimitAdminPoints  int           `env:"RATE_LIMIT_ADMIN_POINTS" envDefault:"200"`
	RateLimitInternPoints int           `env:"RATE_LIMIT_INTERN_POINTS" envDefault:"100"`
}

// Load reads configuration from environment variables and validates it.
// vars, when non-nil, replaces the process environment.
func Load(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	var opts []pkgconfig.Option
	if vars != nil {
		opts = append(opts, pkgconfig.WithEnvironment(vars))
	}
	if err := pkgconfig.Load(cfg, opts...); err != nil {
		return nil, fmt.Errorf("load intern service config: %w", err)
	}
	cfg.AdminEmails = normalizeEmails(cfg.AdminEmails)
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	cfg.PprofAllowedCIDRs = compact(cfg.PprofAllowedCIDRs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		errs = append(errs, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Environment))
	}

	if c.JWTAccessSecret == c.JWTRefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_SECRET and JWT_REFRESH_TOKEN_SECRET must differ"))
	}
	// In non-development environments, require strong secrets.
	if !c.IsDevelopment() {
		if len(c.JWTAccessSecret) < minSecretLength {
			errs = append(errs, fmt.Errorf("JWT_ACCESS_TOKEN_SECRET must be at least %d characters long, got %d", minSecretLength, len(c.JWTAccessSecret)))
		}
		if len(c.JWTRefreshSecret) < minSecretLength {
			errs = append(errs, fmt.Errorf("JWT_REFRESH_TOKEN_SECRET must be at least %d characters long, got %d", minSecretLength, len(c.JWTRefreshSecret)))
		}
	}
	if c.JWTAccessExpiry <= 0 || c.JWTRefreshExpiry <= 0 {
		errs = append(errs, errors.New("JWT token expirations must be positive"))
	} else if c.JWTAccessExpiry >= c.JWTRefreshExpiry {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_EXPIRATION must be shorter than JWT_REFRESH_TOKEN_EXPIRATION"))
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.RateLimitAuthPoints <= 0 || c.RateLimitAdminPoints <= 0 || c.RateLimitInternPoints <= 0 {
		errs = append(errs, errors.New("rate limit points must be positive"))
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// SecureCookies reports whether the refresh-token cookie carries Secure.
func (c *Config) SecureCookies() bool {
	return c.CookieSecure || c.Environment == EnvProduction
}

// Postgres returns the database connection settings.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	pg.ConnectTimeout = c.PostgresConnectTimeout
	pg.StatementTimeout = c.PostgresStatementTimeout
	if c.PostgresMaxConns > 0 {
		pg.MaxConns = c.PostgresMaxConns
		if pg.MinConns > pg.MaxConns {
			pg.MinConns = pg.MaxConns
		}
	}
	return pg
}

// Redis returns the Redis connection settings.
func (c *Config) Redis() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Host = c.RedisHost
	rc.Port = c.RedisPort
	rc.Password = c.RedisPassword
	rc.DB = c.RedisDB
	return rc
}

// Kafka returns the event producer settings.
func (c *Config) Kafka() pkgkafka.ProducerConfig {
	kc := pkgkafka.DefaultProducerConfig(c.KafkaBrokers)
	kc.BreakerName = c.AppName + "-events"
	return kc
}

// Tracing returns the OpenTelemetry settings.
func (c *Config) Tracing() tracing.Config {
	tc := tracing.DefaultConfig(c.AppName)
	tc.ServiceVersion = c.AppVersion
	tc.Environment = c.Environment
	tc.OTLPEndpoint = c.OTelEndpoint
	tc.Insecure = c.IsDevelopment()
	tc.SampleRate = c.OTelSampleRate
	tc.Enabled = c.OTelEnabled
	return tc
}

// JWT returns the token codec settings.
func (c *Config) JWT() auth.Config {
	return auth.Config{
		AccessSecret:  c.JWTAccessSecret,
		RefreshSecret: c.JWTRefreshSecret,
		AccessTTL:     c.JWTAccessExpiry,
		RefreshTTL:    c.JWTRefreshExpiry,
		Issuer:        auth.DefaultIssuer,
	}
}

// Rate limit bucket names.
const (
	BucketAuth   = "auth"
	BucketAdmin  = "admin"
	BucketIntern = "intern"
)

// RateLimitPolicies returns the per-bucket limiter policies.
func (c *Config) RateLimitPolicies() map[string]ratelimit.Policy {
	policy := func(name string, points int) ratelimit.Policy {
		return ratelimit.Policy{Name: name, Points: points, Window: c.RateLimitWindow, Block: c.RateLimitBlock}
	}
	return map[string]ratelimit.Policy{
		BucketAuth:   policy(BucketAuth, c.RateLimitAuthPoints),
		BucketAdmin:  policy(BucketAdmin, c.RateLimitAdminPoints),
		BucketIntern: policy(BucketIntern, c.RateLimitInternPoints),
	}
}

func normalizeEmails(in []string) []string {
	for i, e := range in {
		in[i] = strings.ToLower(e)
	}
	return compact(in)
}

// compact trims entries and drops empty ones.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
