package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rpattn/testplan/internal/domain"
)

// testRunRepository implements TestRunRepository interface
type testRunRepository struct {
	db DBTX
}

// NewTestRunRepository creates a new test run repository
func NewTestRunRepository(db DBTX) TestRunRepository {
	return &testRunRepository{db: db}
}

const testRunColumns = `id, workspace_id, title, description, property_values, created_at, updated_at`

// Create stores the run and its ordered test case membership atomically
func (r *testRunRepository) Create(ctx context.Context, run domain.TestRun) (domain.TestRun, error) {
	values, err := run.PropertyValues.MarshalJSONB()
	if err != nil {
		return domain.TestRun{}, fmt.Errorf("failed to marshal property values: %w", err)
	}

	var created domain.TestRun
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO test_runs (id, workspace_id, title, description, property_values, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+testRunColumns,
			run.ID, run.WorkspaceID, run.Title, run.Description, values, run.CreatedAt, run.UpdatedAt,
		)
		var scanErr error
		created, scanErr = scanTestRun(row)
		if scanErr != nil {
			return scanErr
		}

		batch := &pgx.Batch{}
		for position, caseID := range run.TestCaseIDs {
			batch.Queue(`INSERT INTO test_run_cases (test_run_id, test_case_id, position) VALUES ($1, $2, $3)`,
				run.ID, caseID, position)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
		created.TestCaseIDs = append([]uuid.UUID(nil), run.TestCaseIDs...)
		return nil
	})
	if err != nil {
		return domain.TestRun{}, fmt.Errorf("failed to create test run: %w", err)
	}
	return created, nil
}

// GetByID retrieves a test run and its test case ids in run order
func (r *testRunRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.TestRun, error) {
	row := r.db.QueryRow(ctx, `SELECT `+testRunColumns+` FROM test_runs WHERE id = $1`, id)
	run, err := scanTestRun(row)
	if err != nil {
		if nf := notFound(err, "test run", id); nf != nil {
			return domain.TestRun{}, nf
		}
		return domain.TestRun{}, fmt.Errorf("failed to get test run: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT test_case_id FROM test_run_cases
		WHERE test_run_id = $1
		ORDER BY position`, id)
	if err != nil {
		return domain.TestRun{}, fmt.Errorf("failed to load test run cases: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return domain.TestRun{}, fmt.Errorf("failed to load test run cases: %w", err)
	}
	run.TestCaseIDs = ids
	return run, nil
}

// ListByWorkspace lists test runs without their membership, newest first
func (r *testRunRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.TestRun, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+testRunColumns+`
		FROM test_runs
		WHERE workspace_id = $1
		ORDER BY created_at DESC, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list test runs: %w", err)
	}
	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TestRun, error) {
		return scanTestRun(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list test runs: %w", err)
	}
	return runs, nil
}

// Delete deletes a test run
func (r *testRunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM test_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete test run: %w", err)
	}
	return expectOneRow(tag.RowsAffected(), "test run", id)
}

func scanTestRun(row pgx.Row) (domain.TestRun, error) {
	var (
		run    domain.TestRun
		values []byte
	)
	if err := row.Scan(&run.ID, &run.WorkspaceID, &run.Title, &run.Description, &values, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return domain.TestRun{}, err
	}
	decoded, err := domain.PropertyValuesFromJSONB(values)
	if err != nil {
		return domain.TestRun{}, fmt.Errorf("failed to unmarshal property values: %w", err)
	}
	run.PropertyValues = decoded
	return run, nil
}
