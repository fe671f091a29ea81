// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used throughout the application.
// These constants are the fallbacks applied by the config loader when a setting is
// absent from both the config file and the environment.
package constants

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 5000

	// DefaultDBDriver is the database dialect used when none is configured.
	DefaultDBDriver = "postgres"

	// DefaultDBMaxConnections is the default maximum number of database connections.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default number of idle database connections kept open.
	DefaultDBMinConnections = 5

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"

	// DefaultFrontendURL is where password reset links point when no frontend URL is configured.
	DefaultFrontendURL = "http://localhost:3000"
)

// Supported Database Drivers
const (
	// DriverPostgres selects lib/pq and $n placeholders.
	DriverPostgres = "postgres"

	// DriverMySQL selects go-sql-driver/mysql and ? placeholders.
	DriverMySQL = "mysql"
)

// Environment Types define the recognized application running environments.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment with optimized settings.
	EnvProduction = "production"
)

// Size Limits define the maximum allowed sizes for request bodies and uploads.
const (
	// MaxRequestBodySize is the maximum size in bytes for JSON request bodies.
	MaxRequestBodySize = 1048576 // 1MB

	// MaxLoggedUserAgentLength caps the user agent written to request logs.
	MaxLoggedUserAgentLength = 200

	// DefaultMaxUploadSize is the maximum size in bytes for a project image upload.
	DefaultMaxUploadSize = 5 * 1048576 // 5MB
)

// Default Password Hash Settings define the parameters for password hashing.
const (
	// HashAlgorithmArgon2id selects argon2id digests.
	HashAlgorithmArgon2id = "argon2id"

	// HashAlgorithmBcrypt selects bcrypt digests.
	HashAlgorithmBcrypt = "bcrypt"

	// DefaultPasswordHashMemory is the memory cost parameter for Argon2id hashing.
	DefaultPasswordHashMemory = 64 * 1024

	// DefaultPasswordHashIterations is the number of iterations for Argon2id hashing.
	DefaultPasswordHashIterations = 3

	// DefaultPasswordHashParallelism is the parallelism parameter for Argon2id hashing.
	DefaultPasswordHashParallelism = 2

	// DefaultPasswordHashSaltLength is the length in bytes of the random salt.
	DefaultPasswordHashSaltLength = 16

	// DefaultPasswordHashKeyLength is the length in bytes of the generated hash.
	DefaultPasswordHashKeyLength = 32

	// DefaultBcryptCost matches the salt rounds the web client was built against.
	DefaultBcryptCost = 10

	// DevPasswordHashMemory is a reduced memory setting for development environments.
	DevPasswordHashMemory = 16 * 1024

	// DevPasswordHashIterations is a reduced iteration count for development environments.
	DevPasswordHashIterations = 1
)

// Auth Constants define values related to bearer and reset tokens.
const (
	// DefaultJWTIssuer is the issuer claim value for JWT tokens.
	DefaultJWTIssuer = "portfolio-api"

	// BearerTokenPrefix is the prefix for Authorization header bearer tokens.
	BearerTokenPrefix = "Bearer "

	// ResetTokenBytes is the number of random bytes in a reset token before hex encoding.
	ResetTokenBytes = 20
)

// Default Rate Limit Settings for the unauthenticated auth endpoints.
const (
	// DefaultAuthRateLimit is the sustained number of requests per second per client.
	DefaultAuthRateLimit = 1.0

	// DefaultAuthRateBurst is the number of requests a client may burst.
	DefaultAuthRateBurst = 10

	// DefaultRateLimitClients caps how many client buckets are remembered.
	DefaultRateLimitClients = 10000

	// RateLimitCategoryAuth groups the signup, signin, forgot and reset routes.
	RateLimitCategoryAuth = "auth"
)

// CORSMaxAgeSeconds is how long browsers may cache a preflight answer.
const CORSMaxAgeSeconds = 300

// Default Avatar
const (
	// DefaultAvatar is stored for users who never uploaded an avatar.
	DefaultAvatar = "default.jpg"
)
