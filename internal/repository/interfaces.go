package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rpattn/testplan/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WorkspaceRepository defines the interface for workspace operations
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace domain.Workspace) (domain.Workspace, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Workspace, error)
	GetByName(ctx context.Context, name string) (domain.Workspace, error)
	List(ctx context.Context) ([]domain.Workspace, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PropertyConfigurationRepository defines the interface for workspace schema operations
type PropertyConfigurationRepository interface {
	Create(ctx context.Context, cfg domain.PropertyConfiguration) (domain.PropertyConfiguration, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.PropertyConfiguration, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.PropertyConfiguration, error)
	Update(ctx context.Context, cfg domain.PropertyConfiguration) (domain.PropertyConfiguration, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TestCaseRepository defines the interface for test case operations
type TestCaseRepository interface {
	Create(ctx context.Context, testCase domain.TestCase) (domain.TestCase, error)
	CreateBatch(ctx context.Context, testCases []domain.TestCase) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.TestCase, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.TestCase, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, sort domain.TestCaseSort) ([]domain.TestCase, error)
	Update(ctx context.Context, testCase domain.TestCase) (domain.TestCase, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TestRunRepository defines the interface for test run operations
type TestRunRepository interface {
	Create(ctx context.Context, run domain.TestRun) (domain.TestRun, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.TestRun, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.TestRun, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

func notFound(err error, what string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errorf(ErrNotFound, "%s %v", what, id)
	}
	return nil
}
