package migrations

import (
	"fmt"

	"github.com/devfolio/portfolio-api/internal/constants"
)

// dialect holds the column types that differ between PostgreSQL and MySQL.
type dialect struct {
	name       string
	primaryKey string
	timestamp  string
	tableOpts  string
}

func dialectFor(name string) dialect {
	if name == constants.DriverMySQL {
		return dialect{
			name:       constants.DriverMySQL,
			primaryKey: "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY",
			timestamp:  "DATETIME(6)",
			tableOpts:  " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
		}
	}
	return dialect{
		name:       constants.DriverPostgres,
		primaryKey: "BIGSERIAL PRIMARY KEY",
		timestamp:  "TIMESTAMP",
	}
}

func (d dialect) isMySQL() bool {
	return d.name == constants.DriverMySQL
}

// createUsersTable creates the users table. The reset token digest and its
// expiry live on the user row and are set or cleared together.
func createUsersTable(d dialect) Migration {
	resetPair := ""
	if !d.isMySQL() {
		resetPair = fmt.Sprintf(`,
					CONSTRAINT %s CHECK ((reset_password_token IS NULL) = (reset_password_expire IS NULL))`,
			constants.ConstraintResetPair)
	}

	create := fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS users (
					id %s,
					name VARCHAR(100) NOT NULL,
					email VARCHAR(254) NOT NULL,
					password_hash VARCHAR(255) NOT NULL,
					avatar VARCHAR(500) NOT NULL DEFAULT '%s',
					bio TEXT NULL,
					location VARCHAR(100) NULL,
					website VARCHAR(500) NULL,
					github VARCHAR(500) NULL,
					linkedin VARCHAR(500) NULL,
					twitter VARCHAR(500) NULL,
					reset_password_token CHAR(64) NULL,
					reset_password_expire %s NULL,
					created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT %s UNIQUE (email)%s
				)%s`,
		d.primaryKey, constants.DefaultAvatar, d.timestamp, d.timestamp, d.timestamp,
		constants.ConstraintUsersEmail, resetPair, d.tableOpts)

	return Migration{
		Name:        "create_users_table",
		Description: "Creates the users table",
		TableName:   constants.TableUsers,
		Statements: []string{
			create,
			`CREATE INDEX idx_users_reset_token ON users (reset_password_token)`,
		},
	}
}

// createProjectsTable creates the projects table. Technologies are stored as
// a JSON array in a text column; deleting a user removes their projects.
func createProjectsTable(d dialect) Migration {
	create := fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS projects (
					id %s,
					title VARCHAR(%d) NOT NULL,
					description TEXT NOT NULL,
					technologies TEXT NOT NULL,
					image VARCHAR(500) NULL,
					user_id BIGINT NOT NULL,
					created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT fk_projects_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
				)%s`,
		d.primaryKey, constants.MaxTitleLength, d.timestamp, d.timestamp, d.tableOpts)

	return Migration{
		Name:        "create_projects_table",
		Description: "Creates the projects table",
		TableName:   constants.TableProjects,
		Statements: []string{
			create,
			`CREATE INDEX idx_projects_user_id ON projects (user_id)`,
		},
	}
}
