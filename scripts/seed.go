// Package scripts provides utility scripts for database and system management.
//
// This package implements database seeding. Seeds are tracked by name in the
// seeds table so each one runs at most once, which makes seeding safe on both
// fresh and existing databases.
package scripts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/auth"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/database"
)

// Demo account created by the demo_portfolio seed.
const (
	DemoUserName     = "Demo Developer"
	DemoUserEmail    = "demo@devfolio.dev"
	DemoUserPassword = "demo12345"
)

type demoProject struct {
	title        string
	description  string
	technologies []string
}

var demoProjects = []demoProject{
	{
		title:        "Portfolio API",
		description:  "REST backend serving developer portfolios with JWT authentication.",
		technologies: []string{"Go", "PostgreSQL", "Redis"},
	},
	{
		title:        "Landing Page",
		description:  "Static site showcasing the public portfolio view.",
		technologies: []string{"HTML", "CSS", "JavaScript"},
	},
}

type seed struct {
	Name     string
	SeedFunc func(ctx context.Context, tx *sql.Tx) error
}

// Seeder handles database seeding.
type Seeder struct {
	db       *database.Pool
	hasher   auth.PasswordHasher
	demoData bool
}

// NewSeeder creates a new seeder.
//
// Parameters:
//   - db: A database connection pool to use for seeding
//   - hasher: Hashes the demo account password
//   - demoData: Whether the demo portfolio should be created
//
// Returns:
//   - *Seeder: A configured seeder
func NewSeeder(db *database.Pool, hasher auth.PasswordHasher, demoData bool) *Seeder {
	return &Seeder{
		db:       db,
		hasher:   hasher,
		demoData: demoData,
	}
}

// seeds lists the enabled seeds in execution order.
func (s *Seeder) seeds() []seed {
	var list []seed
	if s.demoData {
		list = append(list, seed{"demo_portfolio", s.seedDemoPortfolio})
	}
	return list
}

// SeedDatabase creates the seeds tracking table if needed and runs every
// enabled seed that has not been executed yet.
//
// Parameters:
//   - ctx: Context for database operations and cancellation
//
// Returns:
//   - error: Any error encountered during seeding, nil if successful
func (s *Seeder) SeedDatabase(ctx context.Context) error {
	seeds := s.seeds()
	if len(seeds) == 0 {
		log.Debug().Msg("No seeds enabled")
		return nil
	}

	log.Info().Msg("Seeding database")
	startTime := time.Now()

	if err := s.createSeedsTable(ctx); err != nil {
		return fmt.Errorf("failed to create seeds table: %w", err)
	}

	executedSeeds, err := s.getExecutedSeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed seeds: %w", err)
	}

	for _, sd := range seeds {
		if executedSeeds[sd.Name] {
			log.Debug().Str("seed", sd.Name).Msg("Seed already executed")
			continue
		}

		log.Info().Str("seed", sd.Name).Msg("Running seed")
		if err := s.runSeed(ctx, sd.Name, sd.SeedFunc); err != nil {
			return err
		}
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Database seeding completed")

	return nil
}

func (s *Seeder) createSeedsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS seeds (
			name VARCHAR(255) PRIMARY KEY,
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// getExecutedSeeds returns the names of executed seeds.
func (s *Seeder) getExecutedSeeds(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM seeds`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	seeds := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		seeds[name] = true
	}

	return seeds, rows.Err()
}

// runSeed runs a seed function and records it in one transaction.
func (s *Seeder) runSeed(ctx context.Context, name string, seedFunc func(ctx context.Context, tx *sql.Tx) error) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := seedFunc(ctx, tx); err != nil {
			return fmt.Errorf("seed %s failed: %w", name, err)
		}

		query := s.db.Rebind(`INSERT INTO seeds (name) VALUES (?)`)
		if _, err := tx.ExecContext(ctx, query, name); err != nil {
			return fmt.Errorf("failed to record seed: %w", err)
		}

		return nil
	})
}

// seedDemoPortfolio creates the demo account with a couple of projects.
// An existing account with the demo email is left untouched.
func (s *Seeder) seedDemoPortfolio(ctx context.Context, tx *sql.Tx) error {
	var existing int
	countQuery := s.db.Rebind(`SELECT COUNT(*) FROM users WHERE email = ?`)
	if err := tx.QueryRowContext(ctx, countQuery, DemoUserEmail).Scan(&existing); err != nil {
		return fmt.Errorf("failed to check demo user: %w", err)
	}
	if existing > 0 {
		log.Info().Msg("Demo user already exists, skipping demo portfolio")
		return nil
	}

	passwordHash, err := s.hasher.Hash(DemoUserPassword)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	now := time.Now()
	userID, err := s.db.InsertReturningID(ctx, tx,
		`INSERT INTO users (name, email, password_hash, avatar, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		DemoUserName, DemoUserEmail, passwordHash, constants.DefaultAvatar, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert demo user: %w", err)
	}

	insertProject := s.db.Rebind(`
		INSERT INTO projects (title, description, technologies, image, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	for _, p := range demoProjects {
		technologies, err := json.Marshal(p.technologies)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertProject, p.title, p.description, string(technologies), "", userID, now, now); err != nil {
			return fmt.Errorf("failed to insert demo project %s: %w", p.title, err)
		}
	}

	log.Info().
		Int64("user_id", userID).
		Int("projects", len(demoProjects)).
		Msg("Demo portfolio seeding completed")

	return nil
}
