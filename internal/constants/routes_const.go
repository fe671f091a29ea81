package constants

// Base Routes
const (
	APIBasePath = "/api"
	HealthPath  = "/health"
	VersionPath = "/version"
	MetricsPath = "/metrics"
	UploadsPath = "/uploads"
)

// Authentication Routes, relative to AuthBasePath
const (
	AuthBasePath           = "/api/auth"
	AuthSignupPath         = "/signup"
	AuthSigninPath         = "/signin"
	AuthMePath             = "/me"
	AuthProfilePath        = "/profile"
	AuthPasswordPath       = "/password"
	AuthForgotPasswordPath = "/forgot-password"
	AuthResetPasswordPath  = "/reset-password"
)

// Project Routes
const (
	ProjectsBasePath  = "/api/projects"
	ProjectDetailPath = "/{id}"
)

// Portfolio Routes
const (
	PortfolioBasePath   = "/api/portfolio"
	PublicPortfolioPath = "/api/users/{id}/portfolio"
)

// URL Parameters
const (
	ParamID = "id"
)

// Reset link
const (
	ResetPasswordPagePath = "/reset-password"
	ResetTokenQueryParam  = "token"
)
