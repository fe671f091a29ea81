package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/devfolio/portfolio-api/internal/constants"
)

// AppConfig represents the entire application configuration
type AppConfig struct {
	App          AppSettings         `yaml:"app"`
	Database     DatabaseSettings    `yaml:"database"`
	Server       ServerSettings      `yaml:"server"`
	JWT          JWTSettings         `yaml:"jwt"`
	Logging      LoggingSettings     `yaml:"logging"`
	CORS         CORSSettings        `yaml:"cors"`
	PasswordHash HashSettings        `yaml:"password_hash"`
	Reset        ResetSettings       `yaml:"reset"`
	Email        EmailSettings       `yaml:"email"`
	Storage      StorageSettings     `yaml:"storage"`
	Cache        CacheSettings       `yaml:"cache"`
	RateLimit    RateLimitSettings   `yaml:"rate_limit"`
	Metrics      MetricsSettings     `yaml:"metrics"`
	Maintenance  MaintenanceSettings `yaml:"maintenance"`
}

// AppSettings contains general application settings
type AppSettings struct {
	Environment  string `yaml:"environment" env:"APP_ENV"`
	Name         string `yaml:"name" env:"APP_NAME"`
	Version      string `yaml:"version" env:"APP_VERSION"`
	FrontendURL  string `yaml:"frontend_url" env:"FRONTEND_URL"`
	SeedDemoData bool   `yaml:"seed_demo_data" env:"SEED_DEMO_DATA"`
}

// DatabaseSettings contains database connection settings.
// Driver selects the SQL dialect: "postgres" or "mysql".
type DatabaseSettings struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Name     string `yaml:"name" env:"DB_NAME"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
	MaxConns int    `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns int    `yaml:"min_conns" env:"DB_MIN_CONNS"`
}

// ServerSettings contains HTTP server settings
type ServerSettings struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// JWTSettings contains bearer token settings
type JWTSettings struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET"`
	Expiry time.Duration `yaml:"expiry" env:"JWT_EXPIRE"`
	Issuer string        `yaml:"issuer" env:"JWT_ISSUER"`
}

// LoggingSettings contains logging configuration
type LoggingSettings struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"`
	RequestLog bool   `yaml:"request_log" env:"LOG_REQUESTS"`
}

// CORSSettings contains CORS configuration
type CORSSettings struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
}

// HashSettings contains password hashing settings.
// Algorithm picks the digest written for new passwords; both algorithms
// are always accepted when verifying.
type HashSettings struct {
	Algorithm   string `yaml:"algorithm" env:"HASH_ALGORITHM"`
	Memory      uint32 `yaml:"memory" env:"HASH_MEMORY"`
	Iterations  uint32 `yaml:"iterations" env:"HASH_ITERATIONS"`
	Parallelism uint8  `yaml:"parallelism" env:"HASH_PARALLELISM"`
	SaltLength  uint32 `yaml:"salt_length" env:"HASH_SALT_LENGTH"`
	KeyLength   uint32 `yaml:"key_length" env:"HASH_KEY_LENGTH"`
	BcryptCost  int    `yaml:"bcrypt_cost" env:"HASH_BCRYPT_COST"`
}

// ResetSettings contains password reset settings
type ResetSettings struct {
	TokenTTL time.Duration `yaml:"token_ttl" env:"RESET_TOKEN_TTL"`
}

// EmailSettings contains outgoing mail settings.
// Provider "log" writes reset links to the log instead of sending mail.
type EmailSettings struct {
	Provider       string `yaml:"provider" env:"EMAIL_PROVIDER"`
	SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	FromAddress    string `yaml:"from_address" env:"FROM_EMAIL"`
	FromName       string `yaml:"from_name" env:"FROM_NAME"`
}

// StorageSettings contains project image storage settings
type StorageSettings struct {
	Driver         string `yaml:"driver" env:"STORAGE_DRIVER"`
	LocalDir       string `yaml:"local_dir" env:"STORAGE_LOCAL_DIR"`
	PublicBaseURL  string `yaml:"public_base_url" env:"STORAGE_PUBLIC_BASE_URL"`
	MaxUploadSize  int64  `yaml:"max_upload_size" env:"MAX_FILE_UPLOAD"`
	S3Bucket       string `yaml:"s3_bucket" env:"S3_BUCKET"`
	S3Region       string `yaml:"s3_region" env:"S3_REGION"`
	S3Endpoint     string `yaml:"s3_endpoint" env:"S3_ENDPOINT"`
	S3AccessKey    string `yaml:"s3_access_key" env:"S3_ACCESS_KEY"`
	S3SecretKey    string `yaml:"s3_secret_key" env:"S3_SECRET_KEY"`
	S3UsePathStyle bool   `yaml:"s3_use_path_style" env:"S3_USE_PATH_STYLE"`
}

// CacheSettings contains the Redis project cache settings
type CacheSettings struct {
	Enabled  bool          `yaml:"enabled" env:"CACHE_ENABLED"`
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL"`
}

// RateLimitSettings contains limits for the unauthenticated auth routes
type RateLimitSettings struct {
	Enabled           bool    `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
	Burst             int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
	MaxClients        int     `yaml:"max_clients" env:"RATE_LIMIT_MAX_CLIENTS"`
}

// MetricsSettings contains Prometheus exposition settings
type MetricsSettings struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
	Path    string `yaml:"path" env:"METRICS_PATH"`
}

// MaintenanceSettings contains the schedule of background cleanup jobs
type MaintenanceSettings struct {
	Schedule string `yaml:"schedule" env:"MAINTENANCE_SCHEDULE"`
}

// ConnectionString returns the driver-specific data source name
func (dbs *DatabaseSettings) ConnectionString() string {
	if dbs.Driver == constants.DriverMySQL {
		// MariaDB/MySQL connection string format: username:password@tcp(host:port)/dbname
		password := dbs.Password
		if password != "" {
			password = ":" + password
		}

		return fmt.Sprintf(
			"%s%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
			dbs.User, password, dbs.Host, dbs.Port, dbs.Name,
		)
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s %s",
		dbs.Host, dbs.Port, dbs.User, dbs.Password, dbs.Name, dbs.SSLMode, constants.PostgresConnectTimeout,
	)
}

// ServerAddress returns the complete server address
func (ss *ServerSettings) ServerAddress() string {
	return fmt.Sprintf("%s:%d", ss.Host, ss.Port)
}

// IsProduction checks if the application is running in production mode
func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

// Load loads the configuration from a config file and environment variables.
// A missing file is not an error; environment variables alone are enough.
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		if err = yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Override with environment variables
	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	setDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logConfig(config)

	return config, nil
}

// setDefaults sets default values for any missing configuration
func setDefaults(config *AppConfig) {
	// App defaults
	if config.App.Environment == "" {
		config.App.Environment = constants.EnvDevelopment
	}
	if config.App.Name == "" {
		config.App.Name = constants.DefaultJWTIssuer
	}
	if config.App.Version == "" {
		config.App.Version = "1.0.0"
	}
	if config.App.FrontendURL == "" {
		config.App.FrontendURL = constants.DefaultFrontendURL
	}
	config.App.FrontendURL = strings.TrimRight(config.App.FrontendURL, "/")

	// Server defaults
	if config.Server.Port == 0 {
		config.Server.Port = constants.DefaultServerPort
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = constants.DefaultReadTimeout
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = constants.DefaultWriteTimeout
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = constants.DefaultShutdownTimeout
	}

	// Database defaults
	if config.Database.Driver == "" {
		config.Database.Driver = constants.DefaultDBDriver
	}
	config.Database.Driver = strings.ToLower(config.Database.Driver)
	if config.Database.Host == "" {
		config.Database.Host = "localhost"
	}
	if config.Database.Port == 0 {
		if config.Database.Driver == constants.DriverMySQL {
			config.Database.Port = 3306
		} else {
			config.Database.Port = 5432
		}
	}
	if config.Database.SSLMode == "" {
		config.Database.SSLMode = "disable"
	}
	if config.Database.MaxConns == 0 {
		config.Database.MaxConns = constants.DefaultDBMaxConnections
	}
	if config.Database.MinConns == 0 {
		config.Database.MinConns = constants.DefaultDBMinConnections
	}

	// JWT defaults
	if config.JWT.Expiry == 0 {
		config.JWT.Expiry = constants.DefaultJWTExpiry
	}
	if config.JWT.Issuer == "" {
		config.JWT.Issuer = constants.DefaultJWTIssuer
	}

	// Logging defaults
	if config.Logging.Level == "" {
		config.Logging.Level = constants.DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = constants.DefaultLogFormat
	}

	// CORS defaults
	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{config.App.FrontendURL}
	}

	// Password hash defaults
	if config.PasswordHash.Algorithm == "" {
		config.PasswordHash.Algorithm = constants.HashAlgorithmArgon2id
	}
	config.PasswordHash.Algorithm = strings.ToLower(config.PasswordHash.Algorithm)
	if config.PasswordHash.Memory == 0 {
		// Lower for development, higher for production
		if config.App.IsProduction() {
			config.PasswordHash.Memory = constants.DefaultPasswordHashMemory
		} else {
			config.PasswordHash.Memory = constants.DevPasswordHashMemory
		}
	}
	if config.PasswordHash.Iterations == 0 {
		if config.App.IsProduction() {
			config.PasswordHash.Iterations = constants.DefaultPasswordHashIterations
		} else {
			config.PasswordHash.Iterations = constants.DevPasswordHashIterations
		}
	}
	if config.PasswordHash.Parallelism == 0 {
		config.PasswordHash.Parallelism = constants.DefaultPasswordHashParallelism
	}
	if config.PasswordHash.SaltLength == 0 {
		config.PasswordHash.SaltLength = constants.DefaultPasswordHashSaltLength
	}
	if config.PasswordHash.KeyLength == 0 {
		config.PasswordHash.KeyLength = constants.DefaultPasswordHashKeyLength
	}
	if config.PasswordHash.BcryptCost == 0 {
		config.PasswordHash.BcryptCost = constants.DefaultBcryptCost
	}

	// Reset defaults
	if config.Reset.TokenTTL == 0 {
		config.Reset.TokenTTL = constants.DefaultResetTokenTTL
	}

	// Email defaults: fall back to logging links when SendGrid is not configured
	if config.Email.Provider == "" {
		if config.Email.SendGridAPIKey != "" {
			config.Email.Provider = "sendgrid"
		} else {
			config.Email.Provider = "log"
		}
	}
	if config.Email.FromName == "" {
		config.Email.FromName = config.App.Name
	}

	// Storage defaults
	if config.Storage.Driver == "" {
		config.Storage.Driver = "local"
	}
	if config.Storage.LocalDir == "" {
		config.Storage.LocalDir = "./uploads"
	}
	if config.Storage.PublicBaseURL == "" {
		config.Storage.PublicBaseURL = constants.UploadsPath
	}
	if config.Storage.MaxUploadSize == 0 {
		config.Storage.MaxUploadSize = constants.DefaultMaxUploadSize
	}
	if config.Storage.S3Region == "" {
		config.Storage.S3Region = "us-east-1"
	}

	// Cache defaults
	if config.Cache.Addr == "" {
		config.Cache.Addr = "localhost:6379"
	}
	if config.Cache.TTL == 0 {
		config.Cache.TTL = constants.DefaultCacheTTL
	}

	// Rate limit defaults
	if config.RateLimit.RequestsPerSecond == 0 {
		config.RateLimit.RequestsPerSecond = constants.DefaultAuthRateLimit
	}
	if config.RateLimit.Burst == 0 {
		config.RateLimit.Burst = constants.DefaultAuthRateBurst
	}
	if config.RateLimit.MaxClients == 0 {
		config.RateLimit.MaxClients = constants.DefaultRateLimitClients
	}

	// Metrics defaults
	if config.Metrics.Path == "" {
		config.Metrics.Path = constants.MetricsPath
	}

	// Maintenance defaults
	if config.Maintenance.Schedule == "" {
		config.Maintenance.Schedule = constants.DefaultMaintenanceSchedule
	}
}

// validateConfig validates that the configuration has all required values
func validateConfig(config *AppConfig) error {
	env := strings.ToLower(config.App.Environment)
	if env != constants.EnvDevelopment && env != constants.EnvTesting && env != constants.EnvProduction {
		log.Warn().Str("environment", config.App.Environment).Msg("Invalid environment, defaulting to development")
		config.App.Environment = constants.EnvDevelopment
	}

	// In production, ensure we have a proper JWT secret
	if config.JWT.Secret == "" || config.JWT.Secret == "changeme" {
		if config.App.IsProduction() {
			return fmt.Errorf("JWT secret must be set in production")
		}
		log.Warn().Msg("JWT secret is not set, using an insecure development secret")
		config.JWT.Secret = "insecure-development-secret"
	}

	if config.Database.Driver != constants.DriverPostgres && config.Database.Driver != constants.DriverMySQL {
		return fmt.Errorf("unsupported database driver: %s", config.Database.Driver)
	}

	if config.Database.User == "" {
		return fmt.Errorf("database user must be set")
	}

	if config.PasswordHash.Algorithm != constants.HashAlgorithmArgon2id &&
		config.PasswordHash.Algorithm != constants.HashAlgorithmBcrypt {
		return fmt.Errorf("unsupported password hash algorithm: %s", config.PasswordHash.Algorithm)
	}

	switch config.Email.Provider {
	case "log":
		if config.App.IsProduction() {
			log.Warn().Msg("Email provider is 'log' in production; reset links will only be logged")
		}
	case "sendgrid":
		if config.Email.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid api key must be set when email provider is sendgrid")
		}
		if config.Email.FromAddress == "" {
			return fmt.Errorf("from address must be set when email provider is sendgrid")
		}
	default:
		return fmt.Errorf("unsupported email provider: %s", config.Email.Provider)
	}

	switch config.Storage.Driver {
	case "local":
	case "s3":
		if config.Storage.S3Bucket == "" {
			return fmt.Errorf("s3 bucket must be set when storage driver is s3")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", config.Storage.Driver)
	}

	// Validate log level
	logLevel := strings.ToLower(config.Logging.Level)
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLevels {
		if logLevel == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// logConfig logs the current configuration without sensitive values
func logConfig(config *AppConfig) {
	log.Info().
		Str("environment", config.App.Environment).
		Str("version", config.App.Version).
		Str("server", config.Server.ServerAddress()).
		Str("db_driver", config.Database.Driver).
		Str("db_host", config.Database.Host).
		Int("db_port", config.Database.Port).
		Str("db_name", config.Database.Name).
		Str("hash_algorithm", config.PasswordHash.Algorithm).
		Str("email_provider", config.Email.Provider).
		Str("storage_driver", config.Storage.Driver).
		Bool("cache_enabled", config.Cache.Enabled).
		Str("log_level", config.Logging.Level).
		Msg("Configuration loaded")
}
