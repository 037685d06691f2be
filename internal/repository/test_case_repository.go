package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rpattn/testplan/internal/domain"
)

// testCaseRepository implements TestCaseRepository interface
type testCaseRepository struct {
	db DBTX
}

// NewTestCaseRepository creates a new test case repository
func NewTestCaseRepository(db DBTX) TestCaseRepository {
	return &testCaseRepository{db: db}
}

const testCaseColumns = `id, workspace_id, title, description, property_values, created_at, updated_at`

const insertTestCaseSQL = `
	INSERT INTO test_cases (id, workspace_id, title, description, property_values, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + testCaseColumns

// Create creates a new test case
func (r *testCaseRepository) Create(ctx context.Context, testCase domain.TestCase) (domain.TestCase, error) {
	args, err := insertTestCaseArgs(testCase)
	if err != nil {
		return domain.TestCase{}, err
	}
	created, err := scanTestCase(r.db.QueryRow(ctx, insertTestCaseSQL, args...))
	if err != nil {
		return domain.TestCase{}, fmt.Errorf("failed to create test case: %w", err)
	}
	return created, nil
}

// CreateBatch inserts test cases in one transaction. Either all rows are
// stored or none are.
func (r *testCaseRepository) CreateBatch(ctx context.Context, testCases []domain.TestCase) (int, error) {
	if len(testCases) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, tc := range testCases {
		args, err := insertTestCaseArgs(tc)
		if err != nil {
			return 0, err
		}
		batch.Queue(insertTestCaseSQL, args...)
	}

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create test case batch: %w", err)
	}
	return len(testCases), nil
}

// GetByID retrieves a test case by ID
func (r *testCaseRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.TestCase, error) {
	row := r.db.QueryRow(ctx, `SELECT `+testCaseColumns+` FROM test_cases WHERE id = $1`, id)
	testCase, err := scanTestCase(row)
	if err != nil {
		if nf := notFound(err, "test case", id); nf != nil {
			return domain.TestCase{}, nf
		}
		return domain.TestCase{}, fmt.Errorf("failed to get test case: %w", err)
	}
	return testCase, nil
}

// GetByIDs retrieves multiple test cases by their IDs. Missing ids are skipped.
func (r *testCaseRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.TestCase, error) {
	if len(ids) == 0 {
		return []domain.TestCase{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+testCaseColumns+` FROM test_cases WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get test cases by IDs: %w", err)
	}
	testCases, err := collectTestCases(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get test cases by IDs: %w", err)
	}
	return testCases, nil
}

// ListByWorkspace returns every test case of a workspace in the requested order
func (r *testCaseRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, sort domain.TestCaseSort) ([]domain.TestCase, error) {
	orderBy, err := testCaseOrderBy(sort)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+testCaseColumns+`
		FROM test_cases
		WHERE workspace_id = $1
		ORDER BY `+orderBy, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}
	testCases, err := collectTestCases(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}
	return testCases, nil
}

// Update stores the title, description and property values of a test case
func (r *testCaseRepository) Update(ctx context.Context, testCase domain.TestCase) (domain.TestCase, error) {
	values, err := testCase.PropertyValues.MarshalJSONB()
	if err != nil {
		return domain.TestCase{}, fmt.Errorf("failed to marshal property values: %w", err)
	}
	row := r.db.QueryRow(ctx, `
		UPDATE test_cases
		SET title = $2, description = $3, property_values = $4, updated_at = $5
		WHERE id = $1
		RETURNING `+testCaseColumns,
		testCase.ID, testCase.Title, testCase.Description, values, testCase.UpdatedAt,
	)
	updated, err := scanTestCase(row)
	if err != nil {
		if nf := notFound(err, "test case", testCase.ID); nf != nil {
			return domain.TestCase{}, nf
		}
		return domain.TestCase{}, fmt.Errorf("failed to update test case: %w", err)
	}
	return updated, nil
}

// Delete deletes a test case
func (r *testCaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM test_cases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete test case: %w", err)
	}
	return expectOneRow(tag.RowsAffected(), "test case", id)
}

func insertTestCaseArgs(tc domain.TestCase) ([]any, error) {
	values, err := tc.PropertyValues.MarshalJSONB()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal property values: %w", err)
	}
	return []any{tc.ID, tc.WorkspaceID, tc.Title, tc.Description, values, tc.CreatedAt, tc.UpdatedAt}, nil
}

func testCaseOrderBy(sort domain.TestCaseSort) (string, error) {
	var column string
	switch sort.Field {
	case domain.TestCaseSortFieldCreatedAt, "":
		column = "created_at"
	case domain.TestCaseSortFieldUpdatedAt:
		column = "updated_at"
	case domain.TestCaseSortFieldTitle:
		column = "lower(title)"
	default:
		return "", fmt.Errorf("unsupported sort field %q", sort.Field)
	}
	direction := "ASC"
	if sort.Direction == domain.SortDirectionDesc {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, id %s", column, direction, direction), nil
}

func collectTestCases(rows pgx.Rows) ([]domain.TestCase, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TestCase, error) {
		return scanTestCase(row)
	})
}

func scanTestCase(row pgx.Row) (domain.TestCase, error) {
	var (
		tc     domain.TestCase
		values []byte
	)
	if err := row.Scan(&tc.ID, &tc.WorkspaceID, &tc.Title, &tc.Description, &values, &tc.CreatedAt, &tc.UpdatedAt); err != nil {
		return domain.TestCase{}, err
	}
	decoded, err := domain.PropertyValuesFromJSONB(values)
	if err != nil {
		return domain.TestCase{}, fmt.Errorf("failed to unmarshal property values: %w", err)
	}
	tc.PropertyValues = decoded
	return tc, nil
}
