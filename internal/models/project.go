package models

import (
	"time"
)

// Project is a portfolio entry owned by exactly one user.
type Project struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Technologies []string  `json:"technologies" db:"technologies"`
	Image        string    `json:"image,omitempty" db:"image"`
	UserID       int64     `json:"userId" db:"user_id"`
	Owner        *Owner    `json:"owner,omitempty" db:"-"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// NewProject creates a project owned by userID from a validated request.
func NewProject(userID int64, input *ProjectInput) *Project {
	now := time.Now()
	return &Project{
		Title:        input.Title,
		Description:  input.Description,
		Technologies: input.Technologies,
		Image:        input.Image,
		UserID:       userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TableName returns the database table name for the Project model.
func (p *Project) TableName() string {
	return "projects"
}

// ApplyUpdate copies the provided fields. The owner never changes.
func (p *Project) ApplyUpdate(update *ProjectUpdate) {
	if update == nil {
		return
	}
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Technologies != nil {
		p.Technologies = update.Technologies
	}
	if update.Image != nil {
		p.Image = *update.Image
	}
	p.UpdatedAt = time.Now()
}

// ProjectInput is the body of a project creation.
type ProjectInput struct {
	Title        string   `json:"title" validate:"required,notblank,max=200"`
	Description  string   `json:"description" validate:"required,notblank"`
	Technologies []string `json:"technologies" validate:"required,min=1,max=50,dive,notblank,max=50"`
	Image        string   `json:"image" validate:"omitempty,max=500"`
}

// ProjectUpdate is a partial project update. Nil fields are left alone.
// An explicitly empty technologies list is rejected by ClearsTechnologies.
type ProjectUpdate struct {
	Title        *string  `json:"title" validate:"omitnil,notblank,max=200"`
	Description  *string  `json:"description" validate:"omitnil,notblank"`
	Technologies []string `json:"technologies" validate:"omitempty,min=1,max=50,dive,notblank,max=50"`
	Image        *string  `json:"image" validate:"omitnil,max=500"`
}

// ClearsTechnologies reports whether the update sends an empty, non-nil
// technologies list, which would leave the project without any.
func (u *ProjectUpdate) ClearsTechnologies() bool {
	return u.Technologies != nil && len(u.Technologies) == 0
}

// Portfolio groups a user's public profile with their projects.
type Portfolio struct {
	User     *User      `json:"user"`
	Projects []*Project `json:"projects"`
}

// Public returns the portfolio as shown to anonymous visitors.
func (p *Portfolio) Public() *Portfolio {
	if p.User == nil {
		return p
	}
	return &Portfolio{User: p.User.Public(), Projects: p.Projects}
}
