package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rpattn/testplan/internal/domain"
)

// workspaceRepository implements WorkspaceRepository interface
type workspaceRepository struct {
	db DBTX
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(db DBTX) WorkspaceRepository {
	return &workspaceRepository{db: db}
}

const workspaceColumns = `id, name, description, created_at, updated_at`

// Create creates a new workspace
func (r *workspaceRepository) Create(ctx context.Context, workspace domain.Workspace) (domain.Workspace, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO workspaces (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+workspaceColumns,
		workspace.ID, workspace.Name, workspace.Description, workspace.CreatedAt, workspace.UpdatedAt,
	)
	created, err := scanWorkspace(row)
	if err != nil {
		return domain.Workspace{}, fmt.Errorf("failed to create workspace: %w", err)
	}
	return created, nil
}

// GetByID retrieves a workspace by ID
func (r *workspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Workspace, error) {
	row := r.db.QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces WHERE id = $1`, id)
	workspace, err := scanWorkspace(row)
	if err != nil {
		if nf := notFound(err, "workspace", id); nf != nil {
			return domain.Workspace{}, nf
		}
		return domain.Workspace{}, fmt.Errorf("failed to get workspace: %w", err)
	}
	return workspace, nil
}

// GetByName retrieves a workspace by name
func (r *workspaceRepository) GetByName(ctx context.Context, name string) (domain.Workspace, error) {
	row := r.db.QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces WHERE name = $1`, name)
	workspace, err := scanWorkspace(row)
	if err != nil {
		if nf := notFound(err, "workspace", name); nf != nil {
			return domain.Workspace{}, nf
		}
		return domain.Workspace{}, fmt.Errorf("failed to get workspace by name: %w", err)
	}
	return workspace, nil
}

// List retrieves all workspaces
func (r *workspaceRepository) List(ctx context.Context) ([]domain.Workspace, error) {
	rows, err := r.db.Query(ctx, `SELECT `+workspaceColumns+` FROM workspaces ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	workspaces, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Workspace, error) {
		return scanWorkspace(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}

// Delete deletes a workspace together with its schema, test cases and runs
func (r *workspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	return expectOneRow(tag.RowsAffected(), "workspace", id)
}

func scanWorkspace(row pgx.Row) (domain.Workspace, error) {
	var w domain.Workspace
	err := row.Scan(&w.ID, &w.Name, &w.Description, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}
