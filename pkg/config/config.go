package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Distribution  DistributionConfig
	Import        ImportConfig
	Presence      PresenceConfig
	SMS           SMSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Distribution.validateWindow(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EASYFLOWS_APP_ENV" required:"true"`
	Port         string `envconfig:"EASYFLOWS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EASYFLOWS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EASYFLOWS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind             string   `envconfig:"EASYFLOWS_SERVICE_KIND" default:"api"`
	ExtraCORSOrigins []string `envconfig:"EASYFLOWS_CORS_EXTRA_ORIGINS"`
}

type DBConfig struct {
	DSN    string `envconfig:"EASYFLOWS_DB_DSN"`
	Driver string `envconfig:"EASYFLOWS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EASYFLOWS_DB_HOST"`
	LegacyPort     int    `envconfig:"EASYFLOWS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EASYFLOWS_DB_USER"`
	LegacyPassword string `envconfig:"EASYFLOWS_DB_PASSWORD"`
	LegacyName     string `envconfig:"EASYFLOWS_DB_NAME"`
	LegacySSLMode  string `envconfig:"EASYFLOWS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EASYFLOWS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EASYFLOWS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EASYFLOWS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EASYFLOWS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EASYFLOWS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EASYFLOWS_REDIS_ADDR"`
	Password     string        `envconfig:"EASYFLOWS_REDIS_PASSWORD"`
	DB           int           `envconfig:"EASYFLOWS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EASYFLOWS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EASYFLOWS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EASYFLOWS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EASYFLOWS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EASYFLOWS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"EASYFLOWS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"EASYFLOWS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"EASYFLOWS_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EASYFLOWS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EASYFLOWS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EASYFLOWS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EASYFLOWS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EASYFLOWS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"EASYFLOWS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"EASYFLOWS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"EASYFLOWS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"EASYFLOWS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"EASYFLOWS_AUTO_MIGRATE" default:"false"`
}

// DistributionConfig gates the automatic order distributor.
type DistributionConfig struct {
	WindowStart        string        `envconfig:"EASYFLOWS_DISTRIBUTION_WINDOW_START" default:"09:00"`
	WindowEnd          string        `envconfig:"EASYFLOWS_DISTRIBUTION_WINDOW_END" default:"21:30"`
	FreshnessThreshold time.Duration `envconfig:"EASYFLOWS_DISTRIBUTION_FRESHNESS" default:"5m"`
	Interval           time.Duration `envconfig:"EASYFLOWS_DISTRIBUTION_INTERVAL" default:"1m"`
}

// Window returns the configured start and end as minutes since midnight.
func (d DistributionConfig) Window() (start, end int, err error) {
	start, err = parseClock(d.WindowStart)
	if err != nil {
		return 0, 0, fmt.Errorf("distribution window start: %w", err)
	}
	end, err = parseClock(d.WindowEnd)
	if err != nil {
		return 0, 0, fmt.Errorf("distribution window end: %w", err)
	}
	return start, end, nil
}

func (d DistributionConfig) validateWindow() error {
	_, _, err := d.Window()
	return err
}

func parseClock(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour*60 + minute, nil
}

type ImportConfig struct {
	BatchSize  int `envconfig:"EASYFLOWS_IMPORT_BATCH_SIZE" default:"500"`
	LookupSize int `envconfig:"EASYFLOWS_IMPORT_LOOKUP_SIZE" default:"500"`
}

type PresenceConfig struct {
	StaleAfter time.Duration `envconfig:"EASYFLOWS_PRESENCE_STALE_AFTER" default:"24h"`
}

type SMSConfig struct {
	APIURL      string        `envconfig:"EASYFLOWS_SMS_API_URL"`
	APIKey      string        `envconfig:"EASYFLOWS_SMS_API_KEY"`
	Sender      string        `envconfig:"EASYFLOWS_SMS_SENDER" default:"EasyFlows"`
	Timeout     time.Duration `envconfig:"EASYFLOWS_SMS_TIMEOUT" default:"10s"`
	MaxAttempts int           `envconfig:"EASYFLOWS_SMS_MAX_ATTEMPTS" default:"3"`
}

// Enabled reports whether an SMS provider is configured.
func (s SMSConfig) Enabled() bool {
	return s.APIURL != "" && s.APIKey != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
