package constants

import "time"

// Server Timeouts
const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
)

// Database Timeouts
const (
	DBConnectionTimeout  = 30 * time.Second
	DBQueryTimeout       = 15 * time.Second
	DBHealthCheckTimeout = 5 * time.Second
	DBConnMaxLifetime    = 1 * time.Hour
	DBConnMaxIdleTime    = 30 * time.Minute
)

// Authentication Timeouts
const (
	DefaultJWTExpiry     = 30 * 24 * time.Hour // 30 days
	DefaultResetTokenTTL = 10 * time.Minute
)

// Cache and maintenance
const (
	DefaultCacheTTL            = 5 * time.Minute
	DefaultMaintenanceSchedule = "@every 5m"
	MaintenanceTaskTimeout     = 5 * time.Minute
	RateLimitClientTTL         = 10 * time.Minute
	RetryAfterSeconds          = 60
	ExternalCallTimeout        = 10 * time.Second
)
