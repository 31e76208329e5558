package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/isdelr/fleet-admin-be/internal/auth"
	"github.com/isdelr/fleet-admin-be/internal/database"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfigurationMissing is returned when a setting the server cannot start without is absent.
var ErrConfigurationMissing = errors.New("configuration missing")

// Config holds the application configuration.
type Config struct {
	ServerPort int
	AppEnv     string

	LogLevel  string
	LogFormat string

	DatabaseDriver string
	DatabaseDSN    string

	JWT JWTConfig

	PasswordScheme string

	CORSAllowedOrigins []string
	RequireAuth        bool

	// EventRetention is how long activity events are kept; zero keeps them forever.
	EventRetention     time.Duration
	EventPruneSchedule string
}

// JWTConfig is the token signing configuration shared by issuer and verifier.
type JWTConfig struct {
	Key      string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load loads configuration from an optional .env file, an optional config
// file and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("app.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("database.driver", database.DriverSQLite)
	v.SetDefault("database.dsn", "./fleet.db")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("password.scheme", auth.SchemeHMACSHA512)
	v.SetDefault("cors.allowed_origins", "http://localhost:5173")
	v.SetDefault("api.require_auth", true)
	v.SetDefault("events.retention", 30*24*time.Hour)
	v.SetDefault("events.prune_schedule", "@daily")
}

// readConfigFile reads CONFIG_FILE when set, otherwise ./config.yaml if present.
func readConfigFile(v *viper.Viper) error {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServerPort:     v.GetInt("server.port"),
		AppEnv:         v.GetString("app.env"),
		LogLevel:       v.GetString("log.level"),
		LogFormat:      v.GetString("log.format"),
		DatabaseDriver: v.GetString("database.driver"),
		DatabaseDSN:    v.GetString("database.dsn"),
		JWT: JWTConfig{
			Key:      v.GetString("jwt.key"),
			Issuer:   v.GetString("jwt.issuer"),
			Audience: v.GetString("jwt.audience"),
			TTL:      v.GetDuration("jwt.ttl"),
		},
		PasswordScheme:     v.GetString("password.scheme"),
		CORSAllowedOrigins: stringList(v, "cors.allowed_origins"),
		RequireAuth:        v.GetBool("api.require_auth"),
		EventRetention:     v.GetDuration("events.retention"),
		EventPruneSchedule: v.GetString("events.prune_schedule"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and enumerated values.
func (c *Config) Validate() error {
	var missing []string
	if c.JWT.Key == "" {
		missing = append(missing, "JWT_KEY")
	}
	if c.JWT.Issuer == "" {
		missing = append(missing, "JWT_ISSUER")
	}
	if c.JWT.Audience == "" {
		missing = append(missing, "JWT_AUDIENCE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, strings.Join(missing, ", "))
	}

	if c.JWT.TTL <= 0 {
		return fmt.Errorf("invalid JWT_TTL %s: must be positive", c.JWT.TTL)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.ServerPort)
	}

	switch c.DatabaseDriver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (use %s or %s)", c.DatabaseDriver, database.DriverSQLite, database.DriverPostgres)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("%w: DATABASE_DSN", ErrConfigurationMissing)
	}

	switch c.PasswordScheme {
	case auth.SchemeHMACSHA512, auth.SchemeArgon2id:
	default:
		return fmt.Errorf("unsupported PASSWORD_SCHEME %q (use %s or %s)", c.PasswordScheme, auth.SchemeHMACSHA512, auth.SchemeArgon2id)
	}

	if c.EventRetention < 0 {
		return fmt.Errorf("invalid EVENTS_RETENTION %s: must not be negative", c.EventRetention)
	}
	return nil
}

// stringList accepts either a YAML list or a comma separated string.
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
