package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/database"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// ProjectRepository defines methods for interacting with portfolio projects
type ProjectRepository interface {
	List(ctx context.Context) ([]*models.Project, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id int64) error
}

// SQLProjectRepository is the database/sql implementation of ProjectRepository
type SQLProjectRepository struct {
	db *database.Pool
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *database.Pool) ProjectRepository {
	return &SQLProjectRepository{
		db: db,
	}
}

// Every read joins the owner so responses can show name and avatar.
const projectSelect = `
        SELECT p.id, p.title, p.description, p.technologies, p.image, p.user_id, p.created_at, p.updated_at,
               u.name, u.avatar
        FROM projects p
        JOIN users u ON u.id = p.user_id`

func scanProject(row rowScanner) (*models.Project, error) {
	project := &models.Project{Owner: &models.Owner{}}
	var technologies string
	var image sql.NullString

	err := row.Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&technologies,
		&image,
		&project.UserID,
		&project.CreatedAt,
		&project.UpdatedAt,
		&project.Owner.Name,
		&project.Owner.Avatar,
	)
	if err != nil {
		return nil, err
	}

	project.Image = image.String
	project.Technologies, err = decodeTechnologies(technologies)
	if err != nil {
		return nil, fmt.Errorf("project %d: %w", project.ID, err)
	}

	return project, nil
}

// encodeTechnologies stores the ordered list as a JSON array.
func encodeTechnologies(technologies []string) (string, error) {
	if technologies == nil {
		technologies = []string{}
	}
	data, err := json.Marshal(technologies)
	if err != nil {
		return "", fmt.Errorf("failed to encode technologies: %w", err)
	}
	return string(data), nil
}

func decodeTechnologies(raw string) ([]string, error) {
	technologies := []string{}
	if raw == "" {
		return technologies, nil
	}
	if err := json.Unmarshal([]byte(raw), &technologies); err != nil {
		return nil, fmt.Errorf("failed to decode technologies: %w", err)
	}
	return technologies, nil
}

func (r *SQLProjectRepository) queryProjects(ctx context.Context, query string, args ...interface{}) ([]*models.Project, error) {
	startTime := time.Now()

	query = r.db.Rebind(query)
	rows, err := r.db.QueryContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// List returns every project, newest first
func (r *SQLProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	return r.queryProjects(ctx, projectSelect+`
        ORDER BY p.created_at DESC, p.id DESC`)
}

// ListByUser returns the projects of one owner, newest first
func (r *SQLProjectRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Project, error) {
	return r.queryProjects(ctx, projectSelect+`
        WHERE p.user_id = ?
        ORDER BY p.created_at DESC, p.id DESC`, userID)
}

// GetByID retrieves a project by ID
func (r *SQLProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	startTime := time.Now()

	query := r.db.Rebind(projectSelect + `
        WHERE p.id = ?`)

	project, err := scanProject(r.db.QueryRowContext(ctx, query, id))

	utils.LogDBQuery(query, []interface{}{id}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Project", id)
		}
		return nil, fmt.Errorf("failed to get project by ID: %w", err)
	}

	return project, nil
}

// Create adds a new project to the database
func (r *SQLProjectRepository) Create(ctx context.Context, project *models.Project) error {
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	technologies, err := encodeTechnologies(project.Technologies)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO projects (title, description, technologies, image, user_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := r.db.InsertReturningID(ctx, r.db, query,
		project.Title,
		project.Description,
		technologies,
		nullable(project.Image),
		project.UserID,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	project.ID = id

	log.Info().
		Int64("project_id", project.ID).
		Int64("user_id", project.UserID).
		Msg("Project created")

	return nil
}

// Update writes title, description, technologies and image. The owner
// column is never touched.
func (r *SQLProjectRepository) Update(ctx context.Context, project *models.Project) error {
	startTime := time.Now()

	project.UpdatedAt = time.Now().UTC()

	technologies, err := encodeTechnologies(project.Technologies)
	if err != nil {
		return err
	}

	query := r.db.Rebind(`
        UPDATE projects
        SET title = ?, description = ?, technologies = ?, image = ?, updated_at = ?
        WHERE id = ?`)

	args := []interface{}{
		project.Title,
		project.Description,
		technologies,
		nullable(project.Image),
		project.UpdatedAt,
		project.ID,
	}
	result, err := r.db.ExecContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	return expectOneRow(result, "Project", project.ID)
}

// Delete removes a project
func (r *SQLProjectRepository) Delete(ctx context.Context, id int64) error {
	startTime := time.Now()

	query := r.db.Rebind(`DELETE FROM projects WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)

	utils.LogDBQuery(query, []interface{}{id}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if err := expectOneRow(result, "Project", id); err != nil {
		return err
	}

	log.Info().Int64("project_id", id).Msg("Project deleted")
	return nil
}
