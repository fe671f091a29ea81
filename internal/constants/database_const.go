// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines constants related to database structures,
// including table names, column names, and schema references.
package constants

// Table Names define the names of database tables used in the application.
const (
	// TableUsers is the name of the table storing user accounts and profiles.
	TableUsers = "users"

	// TableProjects is the name of the table storing portfolio projects.
	TableProjects = "projects"

	// TableMigrations tracks applied schema migrations.
	TableMigrations = "migrations"

	// TableSeeds tracks applied seed scripts.
	TableSeeds = "seeds"
)

// Common Column Names define frequently used database column names.
const (
	// ColumnID is the generic primary key column name.
	ColumnID = "id"

	// ColumnUserID is the column name for user identifier foreign keys.
	ColumnUserID = "user_id"

	// ColumnEmail is the column name for user emails.
	ColumnEmail = "email"

	// ColumnResetPasswordToken stores the SHA-256 hex of an outstanding reset token.
	ColumnResetPasswordToken = "reset_password_token"

	// ColumnResetPasswordExpire stores when the outstanding reset token stops being valid.
	ColumnResetPasswordExpire = "reset_password_expire"
)

// Constraint Names define named database constraints referenced by the error layer.
const (
	// ConstraintUsersEmail is the unique constraint on users.email.
	ConstraintUsersEmail = "uq_users_email"

	// ConstraintResetPair requires the reset token hash and expiry to be set together.
	ConstraintResetPair = "chk_users_reset_pair"
)

// Database Schema Names define the names of database schemas.
const (
	// SchemaInformation is the name of the information schema shared by both dialects.
	SchemaInformation = "information_schema"
)

// PostgreSQL connection string parameters
const (
	PostgresConnectTimeout = "connect_timeout=15"
)
