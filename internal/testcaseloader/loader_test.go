package testcaseloader

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/repository"
	"github.com/rpattn/testplan/internal/repository/memory"
)

type countingRepo struct {
	repository.TestCaseRepository
	mu    sync.Mutex
	calls int
}

func (r *countingRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.TestCase, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.TestCaseRepository.GetByIDs(ctx, ids)
}

func TestLoadManyBatchesAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	workspaceID := uuid.New()

	a, err := store.TestCases().Create(ctx, domain.NewTestCase(workspaceID, "a", "", nil))
	require.NoError(t, err)
	b, err := store.TestCases().Create(ctx, domain.NewTestCase(workspaceID, "b", "", nil))
	require.NoError(t, err)

	repo := &countingRepo{TestCaseRepository: store.TestCases()}
	loader := New(repo)

	got, err := loader.LoadMany(ctx, []uuid.UUID{b.ID, uuid.New(), a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Title)
	assert.Equal(t, "a", got[1].Title)
	assert.Equal(t, 1, repo.calls)

	one, err := loader.Load(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, one.ID)
	assert.Equal(t, 1, repo.calls, "second lookup is served from the request cache")

	_, err = loader.Load(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFromContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	loader := New(memory.NewStore().TestCases())
	ctx := WithLoader(context.Background(), loader)
	assert.Same(t, loader, FromContext(ctx))
}
