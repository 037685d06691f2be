// Package testcaseloader batches test case lookups made while serving one request.
package testcaseloader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/repository"
)

// Loader resolves test cases by id, coalescing calls made within the batch window.
type Loader struct {
	loader *dataloader.Loader
}

// New creates a loader over repo. Missing ids resolve to repository.ErrNotFound.
func New(repo repository.TestCaseRepository) *Loader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))

		ids := make([]uuid.UUID, 0, len(keys))
		for i, k := range keys {
			id, err := uuid.Parse(k.String())
			if err != nil {
				results[i] = &dataloader.Result{Error: fmt.Errorf("invalid UUID: %w", err)}
				continue
			}
			ids = append(ids, id)
		}

		testCases, err := repo.GetByIDs(ctx, ids)
		if err != nil {
			for i := range results {
				if results[i] == nil {
					results[i] = &dataloader.Result{Error: err}
				}
			}
			return results
		}

		byID := make(map[string]domain.TestCase, len(testCases))
		for _, tc := range testCases {
			byID[tc.ID.String()] = tc
		}

		// results must line up with keys
		for i, k := range keys {
			if results[i] != nil {
				continue
			}
			if tc, ok := byID[k.String()]; ok {
				results[i] = &dataloader.Result{Data: tc}
			} else {
				results[i] = &dataloader.Result{Error: fmt.Errorf("%w: test case %s", repository.ErrNotFound, k.String())}
			}
		}
		return results
	}

	return &Loader{
		loader: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond)),
	}
}

// Load returns one test case.
func (l *Loader) Load(ctx context.Context, id uuid.UUID) (domain.TestCase, error) {
	value, err := l.loader.Load(ctx, dataloader.StringKey(id.String()))()
	if err != nil {
		return domain.TestCase{}, err
	}
	return value.(domain.TestCase), nil
}

// LoadMany returns the test cases for ids in the same order. Ids that do not
// resolve are skipped; the first error other than not found is returned.
func (l *Loader) LoadMany(ctx context.Context, ids []uuid.UUID) ([]domain.TestCase, error) {
	keys := make(dataloader.Keys, len(ids))
	for i, id := range ids {
		keys[i] = dataloader.StringKey(id.String())
	}

	values, errs := l.loader.LoadMany(ctx, keys)()
	out := make([]domain.TestCase, 0, len(values))
	for i, value := range values {
		if i < len(errs) && errs[i] != nil {
			if errors.Is(errs[i], repository.ErrNotFound) {
				continue
			}
			return nil, errs[i]
		}
		if tc, ok := value.(domain.TestCase); ok {
			out = append(out, tc)
		}
	}
	return out, nil
}

type ctxKey struct{}

// WithLoader stores loader in ctx.
func WithLoader(ctx context.Context, loader *Loader) context.Context {
	return context.WithValue(ctx, ctxKey{}, loader)
}

// FromContext returns the request loader, if one was attached.
func FromContext(ctx context.Context) *Loader {
	if l, ok := ctx.Value(ctxKey{}).(*Loader); ok {
		return l
	}
	return nil
}
