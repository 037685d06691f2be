// Package memory provides in-process implementations of the repository
// interfaces. They back `serve --memory` and the service and API tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/repository"
)

// Store holds every table behind one lock.
type Store struct {
	mu         sync.RWMutex
	workspaces map[uuid.UUID]domain.Workspace
	properties map[uuid.UUID][]domain.PropertyConfiguration
	testCases  []domain.TestCase
	testRuns   []domain.TestRun
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		workspaces: map[uuid.UUID]domain.Workspace{},
		properties: map[uuid.UUID][]domain.PropertyConfiguration{},
	}
}

func (s *Store) Workspaces() repository.WorkspaceRepository { return workspaceRepo{s} }
func (s *Store) Properties() repository.PropertyConfigurationRepository { return propertyRepo{s} }
func (s *Store) TestCases() repository.TestCaseRepository { return testCaseRepo{s} }
func (s *Store) TestRuns() repository.TestRunRepository { return testRunRepo{s} }

type workspaceRepo struct{ s *Store }

func (r workspaceRepo) Create(_ context.Context, w domain.Workspace) (domain.Workspace, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.workspaces[w.ID] = w
	return w, nil
}

func (r workspaceRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Workspace, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.workspaces[id]
	if !ok {
		return domain.Workspace{}, repository.ErrNotFound
	}
	return w, nil
}

func (r workspaceRepo) GetByName(_ context.Context, name string) (domain.Workspace, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.workspaces {
		if w.Name == name {
			return w, nil
		}
	}
	return domain.Workspace{}, repository.ErrNotFound
}

func (r workspaceRepo) List(_ context.Context) ([]domain.Workspace, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Workspace, 0, len(r.s.workspaces))
	for _, w := range r.s.workspaces {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r workspaceRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.workspaces[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.workspaces, id)
	delete(r.s.properties, id)
	r.s.testCases = slices.DeleteFunc(r.s.testCases, func(tc domain.TestCase) bool { return tc.WorkspaceID == id })
	r.s.testRuns = slices.DeleteFunc(r.s.testRuns, func(run domain.TestRun) bool { return run.WorkspaceID == id })
	return nil
}

type propertyRepo struct{ s *Store }

func (r propertyRepo) Create(_ context.Context, cfg domain.PropertyConfiguration) (domain.PropertyConfiguration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.properties[cfg.WorkspaceID] = append(r.s.properties[cfg.WorkspaceID], cfg)
	return cfg, nil
}

func (r propertyRepo) GetByID(_ context.Context, id uuid.UUID) (domain.PropertyConfiguration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, configs := range r.s.properties {
		for _, cfg := range configs {
			if cfg.ID == id {
				return cfg, nil
			}
		}
	}
	return domain.PropertyConfiguration{}, repository.ErrNotFound
}

func (r propertyRepo) ListByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]domain.PropertyConfiguration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.PropertyConfiguration(nil), r.s.properties[workspaceID]...), nil
}

func (r propertyRepo) Update(_ context.Context, cfg domain.PropertyConfiguration) (domain.PropertyConfiguration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	configs := r.s.properties[cfg.WorkspaceID]
	for i := range configs {
		if configs[i].ID == cfg.ID {
			configs[i] = cfg
			return cfg, nil
		}
	}
	return domain.PropertyConfiguration{}, repository.ErrNotFound
}

func (r propertyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for workspaceID, configs := range r.s.properties {
		for i := range configs {
			if configs[i].ID == id {
				r.s.properties[workspaceID] = append(configs[:i:i], configs[i+1:]...)
				return nil
			}
		}
	}
	return repository.ErrNotFound
}

type testCaseRepo struct{ s *Store }

func (r testCaseRepo) Create(_ context.Context, tc domain.TestCase) (domain.TestCase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tc.PropertyValues = tc.PropertyValues.Clone()
	r.s.testCases = append(r.s.testCases, tc)
	return tc, nil
}

func (r testCaseRepo) CreateBatch(ctx context.Context, testCases []domain.TestCase) (int, error) {
	for _, tc := range testCases {
		if _, err := r.Create(ctx, tc); err != nil {
			return 0, err
		}
	}
	return len(testCases), nil
}

func (r testCaseRepo) GetByID(_ context.Context, id uuid.UUID) (domain.TestCase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, tc := range r.s.testCases {
		if tc.ID == id {
			return tc, nil
		}
	}
	return domain.TestCase{}, repository.ErrNotFound
}

func (r testCaseRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.TestCase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := []domain.TestCase{}
	for _, tc := range r.s.testCases {
		if _, ok := wanted[tc.ID]; ok {
			out = append(out, tc)
		}
	}
	return out, nil
}

func (r testCaseRepo) ListByWorkspace(_ context.Context, workspaceID uuid.UUID, order domain.TestCaseSort) ([]domain.TestCase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.TestCase{}
	for _, tc := range r.s.testCases {
		if tc.WorkspaceID == workspaceID {
			out = append(out, tc)
		}
	}
	less := func(a, b domain.TestCase) bool {
		switch order.Field {
		case domain.TestCaseSortFieldTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case domain.TestCaseSortFieldUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order.Direction == domain.SortDirectionDesc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out, nil
}

func (r testCaseRepo) Update(_ context.Context, tc domain.TestCase) (domain.TestCase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.testCases {
		if r.s.testCases[i].ID == tc.ID {
			tc.PropertyValues = tc.PropertyValues.Clone()
			r.s.testCases[i] = tc
			return tc, nil
		}
	}
	return domain.TestCase{}, repository.ErrNotFound
}

func (r testCaseRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.testCases {
		if r.s.testCases[i].ID == id {
			r.s.testCases = append(r.s.testCases[:i:i], r.s.testCases[i+1:]...)
			for j := range r.s.testRuns {
				r.s.testRuns[j].TestCaseIDs = withoutID(r.s.testRuns[j].TestCaseIDs, id)
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

type testRunRepo struct{ s *Store }

func (r testRunRepo) Create(_ context.Context, run domain.TestRun) (domain.TestRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.testRuns = append(r.s.testRuns, run)
	return run, nil
}

func (r testRunRepo) GetByID(_ context.Context, id uuid.UUID) (domain.TestRun, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, run := range r.s.testRuns {
		if run.ID == id {
			return run, nil
		}
	}
	return domain.TestRun{}, repository.ErrNotFound
}

func (r testRunRepo) ListByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]domain.TestRun, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.TestRun{}
	for i := len(r.s.testRuns) - 1; i >= 0; i-- {
		if r.s.testRuns[i].WorkspaceID == workspaceID {
			out = append(out, r.s.testRuns[i])
		}
	}
	return out, nil
}

func (r testRunRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.testRuns {
		if r.s.testRuns[i].ID == id {
			r.s.testRuns = append(r.s.testRuns[:i:i], r.s.testRuns[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func withoutID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
