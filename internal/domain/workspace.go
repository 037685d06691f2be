package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workspace owns a property schema and the test cases and runs annotated with it.
type Workspace struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewWorkspace creates a new workspace with immutable pattern
func NewWorkspace(name, description string) Workspace {
	now := time.Now()
	return Workspace{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WithDescription returns a new workspace with updated description
func (w Workspace) WithDescription(description string) Workspace {
	return Workspace{
		ID:          w.ID,
		Name:        w.Name,
		Description: description,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   time.Now(),
	}
}

// WithName returns a new workspace with updated name
func (w Workspace) WithName(name string) Workspace {
	return Workspace{
		ID:          w.ID,
		Name:        name,
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   time.Now(),
	}
}
