// Package service wires the property schema, filter engine and selection
// state to the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/filter"
	"github.com/rpattn/testplan/internal/properties"
	"github.com/rpattn/testplan/internal/repository"
	"github.com/rpattn/testplan/internal/schema"
	"github.com/rpattn/testplan/internal/selection"
)

var (
	// ErrWrongWorkspace is returned when a record belongs to another workspace.
	ErrWrongWorkspace = errors.New("record belongs to a different workspace")
	// ErrInvalidInput is returned for malformed requests such as a blank title.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateWorkspace is returned when a workspace name is already taken.
	ErrDuplicateWorkspace = errors.New("workspace name already exists")
)

// Service exposes workspace operations over the repositories.
type Service struct {
	workspaces repository.WorkspaceRepository
	properties repository.PropertyConfigurationRepository
	testCases  repository.TestCaseRepository
	testRuns   repository.TestRunRepository
	logger     *zap.Logger
}

// New creates a workspace service
func New(
	workspaces repository.WorkspaceRepository,
	properties repository.PropertyConfigurationRepository,
	testCases repository.TestCaseRepository,
	testRuns repository.TestRunRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		workspaces: workspaces,
		properties: properties,
		testCases:  testCases,
		testRuns:   testRuns,
		logger:     logger,
	}
}

// CreateWorkspace creates an empty workspace
func (s *Service) CreateWorkspace(ctx context.Context, name, description string) (domain.Workspace, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Workspace{}, fmt.Errorf("%w: workspace name is required", ErrInvalidInput)
	}
	_, err := s.workspaces.GetByName(ctx, name)
	switch {
	case err == nil:
		return domain.Workspace{}, fmt.Errorf("%w: %q", ErrDuplicateWorkspace, name)
	case !errors.Is(err, repository.ErrNotFound):
		return domain.Workspace{}, err
	}
	return s.workspaces.Create(ctx, domain.NewWorkspace(name, description))
}

// GetWorkspace returns a workspace by id
func (s *Service) GetWorkspace(ctx context.Context, workspaceID uuid.UUID) (domain.Workspace, error) {
	return s.workspaces.GetByID(ctx, workspaceID)
}

// ListWorkspaces returns every workspace ordered by name
func (s *Service) ListWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	return s.workspaces.List(ctx)
}

// DeleteWorkspace removes a workspace with its schema, test cases and test runs.
func (s *Service) DeleteWorkspace(ctx context.Context, workspaceID uuid.UUID) error {
	if err := s.workspaces.Delete(ctx, workspaceID); err != nil {
		return err
	}
	s.logger.Info("workspace deleted", zap.Stringer("workspace_id", workspaceID))
	return nil
}

// LoadSchema loads the workspace schema in declaration order. Stored
// configurations that no longer validate are skipped with a warning so that
// one bad row cannot make the whole workspace unreadable.
func (s *Service) LoadSchema(ctx context.Context, workspaceID uuid.UUID) (*schema.Schema, error) {
	configs, err := s.properties.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	sch, err := schema.New(workspaceID)
	if err != nil {
		return nil, err
	}
	for _, cfg := range configs {
		if err := sch.Add(cfg); err != nil {
			s.logger.Warn("skipping invalid property configuration",
				zap.Stringer("workspace_id", workspaceID),
				zap.Stringer("property_id", cfg.ID),
				zap.Error(err))
		}
	}
	return sch, nil
}

// AddProperty validates cfg against the workspace schema and persists it.
func (s *Service) AddProperty(ctx context.Context, cfg domain.PropertyConfiguration) (domain.PropertyConfiguration, error) {
	sch, err := s.LoadSchema(ctx, cfg.WorkspaceID)
	if err != nil {
		return domain.PropertyConfiguration{}, err
	}
	if err := sch.Add(cfg); err != nil {
		return domain.PropertyConfiguration{}, err
	}
	created, err := s.properties.Create(ctx, cfg)
	if err != nil {
		return domain.PropertyConfiguration{}, err
	}
	s.logger.Info("property configuration created",
		zap.Stringer("workspace_id", cfg.WorkspaceID),
		zap.Stringer("property_id", created.ID),
		zap.String("type", string(created.Type)))
	return created, nil
}

// UpdateProperty edits a configuration in place. Values already stored on test
// cases are not revalidated.
func (s *Service) UpdateProperty(ctx context.Context, cfg domain.PropertyConfiguration) (domain.PropertyConfiguration, error) {
	sch, err := s.LoadSchema(ctx, cfg.WorkspaceID)
	if err != nil {
		return domain.PropertyConfiguration{}, err
	}
	existing, ok := sch.Get(cfg.ID)
	if !ok {
		return domain.PropertyConfiguration{}, fmt.Errorf("%w: property %s", repository.ErrNotFound, cfg.ID)
	}
	cfg.CreatedAt = existing.CreatedAt
	if err := sch.Update(cfg); err != nil {
		return domain.PropertyConfiguration{}, err
	}
	return s.properties.Update(ctx, cfg)
}

// RemoveProperty deletes a configuration; values keyed by it become orphaned.
func (s *Service) RemoveProperty(ctx context.Context, workspaceID, propertyID uuid.UUID) error {
	cfg, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return err
	}
	if cfg.WorkspaceID != workspaceID {
		return ErrWrongWorkspace
	}
	return s.properties.Delete(ctx, propertyID)
}

// CreateTestCase stores a new test case. Properties start from their configured
// default and inputs, routed through the input resolver, replace it. Choosing
// the unset label or a blank value leaves the property unset.
func (s *Service) CreateTestCase(ctx context.Context, workspaceID uuid.UUID, title, description string, inputs map[uuid.UUID]string) (domain.TestCase, error) {
	testCase, err := s.BuildTestCase(ctx, workspaceID, title, description, inputs)
	if err != nil {
		return domain.TestCase{}, err
	}
	return s.testCases.Create(ctx, testCase)
}

// BuildTestCase validates inputs and returns an unsaved test case.
func (s *Service) BuildTestCase(ctx context.Context, workspaceID uuid.UUID, title, description string, inputs map[uuid.UUID]string) (domain.TestCase, error) {
	sch, err := s.LoadSchema(ctx, workspaceID)
	if err != nil {
		return domain.TestCase{}, err
	}
	values, err := buildValues(sch, inputs)
	if err != nil {
		return domain.TestCase{}, err
	}
	return NewTestCaseFromValues(sch, title, description, values)
}

// DefaultValues returns values seeded with the configured defaults of sch.
// Inputs are applied on top, so an explicit unset replaces a default.
func DefaultValues(sch *schema.Schema) domain.PropertyValues {
	values := domain.PropertyValues{}
	values.ApplyDefaults(sch.All())
	return values
}

// NewTestCaseFromValues builds a test case from values that were seeded with
// DefaultValues and then passed through the input resolver.
func NewTestCaseFromValues(sch *schema.Schema, title, description string, values domain.PropertyValues) (domain.TestCase, error) {
	if strings.TrimSpace(title) == "" {
		return domain.TestCase{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return domain.NewTestCase(sch.WorkspaceID(), title, description, values), nil
}

// ImportTestCases stores prepared test cases in one batch.
func (s *Service) ImportTestCases(ctx context.Context, testCases []domain.TestCase) (int, error) {
	return s.testCases.CreateBatch(ctx, testCases)
}

// GetTestCase returns a test case of the workspace
func (s *Service) GetTestCase(ctx context.Context, workspaceID, testCaseID uuid.UUID) (domain.TestCase, error) {
	testCase, err := s.testCases.GetByID(ctx, testCaseID)
	if err != nil {
		return domain.TestCase{}, err
	}
	if testCase.WorkspaceID != workspaceID {
		return domain.TestCase{}, ErrWrongWorkspace
	}
	return testCase, nil
}

// DeleteTestCase removes a test case of the workspace. Test runs drop it from their membership.
func (s *Service) DeleteTestCase(ctx context.Context, workspaceID, testCaseID uuid.UUID) error {
	if _, err := s.GetTestCase(ctx, workspaceID, testCaseID); err != nil {
		return err
	}
	return s.testCases.Delete(ctx, testCaseID)
}

// SetTestCaseProperty stores one raw input for a test case.
func (s *Service) SetTestCaseProperty(ctx context.Context, workspaceID, testCaseID, propertyID uuid.UUID, raw string) (domain.TestCase, error) {
	testCase, err := s.GetTestCase(ctx, workspaceID, testCaseID)
	if err != nil {
		return domain.TestCase{}, err
	}
	sch, err := s.LoadSchema(ctx, workspaceID)
	if err != nil {
		return domain.TestCase{}, err
	}
	cfg, ok := sch.Get(propertyID)
	if !ok {
		return domain.TestCase{}, fmt.Errorf("%w: property %s", repository.ErrNotFound, propertyID)
	}
	values := testCase.PropertyValues.Clone()
	if err := properties.ApplyInput(values, cfg, raw); err != nil {
		return domain.TestCase{}, err
	}
	return s.testCases.Update(ctx, testCase.WithPropertyValues(values))
}

// TestCaseList is a filtered view of the workspace test cases.
type TestCaseList struct {
	Items  []domain.TestCase `json:"items"`
	Facets []filter.Facet    `json:"facets"`
	Total  int               `json:"total"`
}

// ListTestCases evaluates set over every test case of the workspace. Facets
// are computed over the matching rows.
func (s *Service) ListTestCases(ctx context.Context, workspaceID uuid.UUID, set domain.FilterSet, order domain.TestCaseSort) (TestCaseList, error) {
	sch, err := s.LoadSchema(ctx, workspaceID)
	if err != nil {
		return TestCaseList{}, err
	}
	all, err := s.testCases.ListByWorkspace(ctx, workspaceID, order)
	if err != nil {
		return TestCaseList{}, err
	}
	matching := filter.Evaluate(filter.New(sch), all, set)
	return TestCaseList{
		Items:  matching,
		Facets: filter.Facets(sch, matching),
		Total:  len(all),
	}, nil
}

// PropertyInput pairs a configuration with its resolved input domain.
type PropertyInput struct {
	Property domain.PropertyConfiguration `json:"property"`
	Input    properties.InputDomain       `json:"input"`
}

// TestCaseInputs describes how each property of a test case is edited plus
// the display rows, orphaned values included.
type TestCaseInputs struct {
	Inputs []PropertyInput        `json:"inputs"`
	Values []properties.ValueView `json:"values"`
}

// InputDomains resolves the input domain of every property for a test case.
func (s *Service) InputDomains(ctx context.Context, workspaceID, testCaseID uuid.UUID) (TestCaseInputs, error) {
	testCase, err := s.GetTestCase(ctx, workspaceID, testCaseID)
	if err != nil {
		return TestCaseInputs{}, err
	}
	sch, err := s.LoadSchema(ctx, workspaceID)
	if err != nil {
		return TestCaseInputs{}, err
	}
	result := TestCaseInputs{Values: properties.Describe(sch, testCase.PropertyValues)}
	for _, cfg := range sch.All() {
		in, err := properties.ResolveInputDomain(cfg, testCase.PropertyValues.Resolve(cfg.ID))
		if err != nil {
			return TestCaseInputs{}, err
		}
		result.Inputs = append(result.Inputs, PropertyInput{Property: cfg, Input: in})
	}
	return result, nil
}

// CreateTestRun composes a run from the selected test cases of the workspace.
// Selected ids that are not test cases of the workspace are ignored and the
// run lists cases in workspace order.
func (s *Service) CreateTestRun(ctx context.Context, workspaceID uuid.UUID, title, description string, inputs map[uuid.UUID]string, sel *selection.Set) (domain.TestRun, error) {
	if strings.TrimSpace(title) == "" {
		return domain.TestRun{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	sch, err := s.LoadSchema(ctx, workspaceID)
	if err != nil {
		return domain.TestRun{}, err
	}
	values, err := buildValues(sch, inputs)
	if err != nil {
		return domain.TestRun{}, err
	}

	all, err := s.testCases.ListByWorkspace(ctx, workspaceID, domain.DefaultTestCaseSort())
	if err != nil {
		return domain.TestRun{}, err
	}
	chosen := selection.Materialize(sel, all)
	ids := make([]uuid.UUID, len(chosen))
	for i, tc := range chosen {
		ids[i] = tc.ID
	}

	run, err := s.testRuns.Create(ctx, domain.NewTestRun(workspaceID, title, description, values, ids))
	if err != nil {
		return domain.TestRun{}, err
	}
	s.logger.Info("test run created",
		zap.Stringer("workspace_id", workspaceID),
		zap.Stringer("test_run_id", run.ID),
		zap.Int("selected", sel.Count()),
		zap.Int("test_cases", len(ids)))
	return run, nil
}

// GetTestRun returns a test run of the workspace
func (s *Service) GetTestRun(ctx context.Context, workspaceID, testRunID uuid.UUID) (domain.TestRun, error) {
	run, err := s.testRuns.GetByID(ctx, testRunID)
	if err != nil {
		return domain.TestRun{}, err
	}
	if run.WorkspaceID != workspaceID {
		return domain.TestRun{}, ErrWrongWorkspace
	}
	return run, nil
}

// DeleteTestRun removes a test run of the workspace. Its test cases are kept.
func (s *Service) DeleteTestRun(ctx context.Context, workspaceID, testRunID uuid.UUID) error {
	if _, err := s.GetTestRun(ctx, workspaceID, testRunID); err != nil {
		return err
	}
	return s.testRuns.Delete(ctx, testRunID)
}

// ListTestRuns evaluates set over the workspace test runs.
func (s *Service) ListTestRuns(ctx context.Context, workspaceID uuid.UUID, set domain.FilterSet) ([]domain.TestRun, error) {
	sch, err := s.LoadSchema(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	runs, err := s.testRuns.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return filter.Evaluate(filter.New(sch), runs, set), nil
}

func buildValues(sch *schema.Schema, inputs map[uuid.UUID]string) (domain.PropertyValues, error) {
	values := DefaultValues(sch)
	for propertyID, raw := range inputs {
		cfg, ok := sch.Get(propertyID)
		if !ok {
			return nil, fmt.Errorf("%w: property %s", repository.ErrNotFound, propertyID)
		}
		if err := properties.ApplyInput(values, cfg, raw); err != nil {
			return nil, err
		}
	}
	return values, nil
}
