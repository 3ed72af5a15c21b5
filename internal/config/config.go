package config

import (
	"fmt"
	"time"

	"ingreedio/internal/database"
	"ingreedio/internal/services"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the API.
type Config struct {
	AppPort     string
	DBDriver    string
	DBDSN       string
	DBDebug     bool
	JWTSecret   string
	RabbitMQURL string
	LogLevel    string
	LogFormat   string
	Lockout     services.LockoutPolicy
	Password    services.PasswordPolicy

	// ModerationThreshold is the report count at which a review is flagged.
	ModerationThreshold int
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", database.DriverSQLite)
	v.SetDefault("DB_DSN", "file:ingreedio.db")
	v.SetDefault("DB_DEBUG", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOCKOUT_MAX_FAILED_ATTEMPTS", 5)
	v.SetDefault("LOCKOUT_DURATION", 5*time.Minute)
	v.SetDefault("PASSWORD_MIN_LENGTH", 6)
	v.SetDefault("PASSWORD_REQUIRE_DIGIT", true)
	v.SetDefault("PASSWORD_REQUIRE_LOWER", true)
	v.SetDefault("PASSWORD_REQUIRE_UPPER", true)
	v.SetDefault("PASSWORD_REQUIRE_SYMBOL", true)
	v.SetDefault("MODERATION_REPORT_THRESHOLD", 3)
}

// Load reads the configuration from v (defaults, optional file, environment)
// and validates it. A missing or weak JWT secret is an error.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv() // Load environment variables

	cfg := &Config{
		AppPort:     v.GetString("APP_PORT"),
		DBDriver:    v.GetString("DB_DRIVER"),
		DBDSN:       v.GetString("DB_DSN"),
		DBDebug:     v.GetBool("DB_DEBUG"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		Lockout: services.LockoutPolicy{
			MaxFailedAttempts: v.GetInt("LOCKOUT_MAX_FAILED_ATTEMPTS"),
			Duration:          v.GetDuration("LOCKOUT_DURATION"),
		},
		Password: services.PasswordPolicy{
			MinLength:     v.GetInt("PASSWORD_MIN_LENGTH"),
			RequireDigit:  v.GetBool("PASSWORD_REQUIRE_DIGIT"),
			RequireLower:  v.GetBool("PASSWORD_REQUIRE_LOWER"),
			RequireUpper:  v.GetBool("PASSWORD_REQUIRE_UPPER"),
			RequireSymbol: v.GetBool("PASSWORD_REQUIRE_SYMBOL"),
		},
		ModerationThreshold: v.GetInt("MODERATION_REPORT_THRESHOLD"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < services.MinSigningKeyLength {
		return fmt.Errorf("JWT_SECRET: %w", services.ErrWeakSigningKey)
	}
	switch c.DBDriver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER: unsupported driver %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN must not be empty")
	}
	if c.Lockout.MaxFailedAttempts < 0 || c.Lockout.Duration < 0 {
		return fmt.Errorf("lockout settings must not be negative")
	}
	if c.Password.MinLength < 1 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be at least 1")
	}
	return nil
}

// Database returns the settings for database.Setup.
func (c *Config) Database() database.Config {
	return database.Config{Driver: c.DBDriver, DSN: c.DBDSN, Debug: c.DBDebug}
}
