// Package ingestion imports test cases from uploaded CSV and xlsx files.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/properties"
	"github.com/rpattn/testplan/internal/schema"
	"github.com/rpattn/testplan/internal/service"
)

const (
	titleColumn       = "title"
	descriptionColumn = "description"
)

// ErrMissingTitleColumn is returned when the header has no Title column.
var ErrMissingTitleColumn = errors.New("a Title column is required")

// Store loads the workspace schema and persists imported test cases.
type Store interface {
	LoadSchema(ctx context.Context, workspaceID uuid.UUID) (*schema.Schema, error)
	ImportTestCases(ctx context.Context, testCases []domain.TestCase) (int, error)
}

// Service ingests tabular data as test cases of a workspace.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new ingestion service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Request describes the ingestion input.
type Request struct {
	WorkspaceID uuid.UUID
	FileName    string
	Data        io.Reader
	// DryRun validates every row without storing anything.
	DryRun bool
}

// RowError reports why one data row was rejected.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// Summary returns ingestion level metrics.
type Summary struct {
	TotalRows       int        `json:"totalRows"`
	ValidRows       int        `json:"validRows"`
	InvalidRows     int        `json:"invalidRows"`
	ImportedRows    int        `json:"importedRows"`
	UnmappedColumns []string   `json:"unmappedColumns"`
	Errors          []RowError `json:"errors"`
}

// Import parses the upload, validates every row against the workspace schema
// and stores the valid rows in one batch. Invalid rows are reported in the
// summary and do not abort the import.
func (s *Service) Import(ctx context.Context, req Request) (Summary, error) {
	if req.WorkspaceID == uuid.Nil {
		return Summary{}, errors.New("workspace id is required")
	}
	if req.Data == nil {
		return Summary{}, errors.New("data reader is required")
	}

	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read upload: %w", err)
	}
	table, err := ParseTable(req.FileName, payload)
	if err != nil {
		return Summary{}, err
	}

	sch, err := s.store.LoadSchema(ctx, req.WorkspaceID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load schema: %w", err)
	}

	testCases, summary, err := BuildTestCases(sch, table)
	if err != nil {
		return summary, err
	}
	if req.DryRun || len(testCases) == 0 {
		return summary, nil
	}

	imported, err := s.store.ImportTestCases(ctx, testCases)
	if err != nil {
		return summary, fmt.Errorf("failed to store test cases: %w", err)
	}
	summary.ImportedRows = imported

	s.logger.Info("test cases imported",
		zap.Stringer("workspace_id", req.WorkspaceID),
		zap.String("file", req.FileName),
		zap.Int("imported", imported),
		zap.Int("invalid", summary.InvalidRows))
	return summary, nil
}

type columnTarget struct {
	index    int
	header   string
	property *domain.PropertyConfiguration
}

// BuildTestCases maps header columns onto Title, Description and property
// titles (case-insensitive) and converts every row through the input
// resolver. Blank cells keep the property default; the unset label clears it.
// Columns that match nothing are listed as unmapped and ignored.
func BuildTestCases(sch *schema.Schema, table Table) ([]domain.TestCase, Summary, error) {
	summary := Summary{
		TotalRows:       len(table.Rows),
		UnmappedColumns: []string{},
		Errors:          []RowError{},
	}

	titleIdx, descriptionIdx := -1, -1
	var columns []columnTarget
	mapped := make(map[uuid.UUID]string)

	for i, header := range table.Headers {
		switch strings.ToLower(header) {
		case titleColumn:
			if titleIdx < 0 {
				titleIdx = i
				continue
			}
		case descriptionColumn:
			if descriptionIdx < 0 {
				descriptionIdx = i
				continue
			}
		}
		cfg, ok := sch.FindByTitle(header)
		if !ok {
			if header != "" {
				summary.UnmappedColumns = append(summary.UnmappedColumns, header)
			}
			continue
		}
		if previous, dup := mapped[cfg.ID]; dup {
			return nil, summary, fmt.Errorf("columns %q and %q both map to property %q", previous, header, cfg.Title)
		}
		mapped[cfg.ID] = header
		columns = append(columns, columnTarget{index: i, header: header, property: &cfg})
	}
	if titleIdx < 0 {
		return nil, summary, ErrMissingTitleColumn
	}

	testCases := make([]domain.TestCase, 0, len(table.Rows))
	for r, row := range table.Rows {
		rowNumber := r + 2
		if r < len(table.RowNumbers) {
			rowNumber = table.RowNumbers[r]
		}

		values := service.DefaultValues(sch)
		var rowErrors []RowError
		for _, col := range columns {
			raw := strings.TrimSpace(row[col.index])
			if raw == "" {
				continue
			}
			if err := properties.ApplyInput(values, *col.property, raw); err != nil {
				rowErrors = append(rowErrors, RowError{Row: rowNumber, Column: col.header, Message: err.Error()})
			}
		}

		description := ""
		if descriptionIdx >= 0 {
			description = strings.TrimSpace(row[descriptionIdx])
		}
		tc, err := service.NewTestCaseFromValues(sch, strings.TrimSpace(row[titleIdx]), description, values)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNumber, Column: table.Headers[titleIdx], Message: err.Error()})
		}

		if len(rowErrors) > 0 {
			summary.InvalidRows++
			summary.Errors = append(summary.Errors, rowErrors...)
			continue
		}
		summary.ValidRows++
		testCases = append(testCases, tc)
	}
	return testCases, summary, nil
}
