package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/myanedu/portal-api/internal/models"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
)

type fakeCatalogGateway struct {
	batches     []models.Batch
	batchesErr  error
	batchCalls  int
	promos      []models.PromotedCourse
	instructors []models.Instructor
}

func (f *fakeCatalogGateway) ActiveBatches(ctx context.Context) ([]models.Batch, error) {
	f.batchCalls++
	return f.batches, f.batchesErr
}

func (f *fakeCatalogGateway) PromotedCourses(ctx context.Context) ([]models.PromotedCourse, error) {
	return f.promos, nil
}

func (f *fakeCatalogGateway) Instructors(ctx context.Context) ([]models.Instructor, error) {
	return f.instructors, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = make(map[string][]byte)
	return nil
}

func newCatalogService(gateway *fakeCatalogGateway) (*CatalogService, *memoryCacheRepo) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	return NewCatalogService(gateway, cache, time.Minute, zap.NewNop()), repo
}

func TestActiveBatchesCachesSecondRead(t *testing.T) {
	gateway := &fakeCatalogGateway{batches: []models.Batch{{ID: "B1", CourseName: "Go Basics", Fees: 45000}}}
	svc, _ := newCatalogService(gateway)

	first, hit, err := svc.ActiveBatches(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, first, 1)

	second, hit, err := svc.ActiveBatches(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gateway.batchCalls)
}

func TestActiveBatchesUnreachableWithoutCache(t *testing.T) {
	gateway := &fakeCatalogGateway{batchesErr: errors.New("connection refused")}
	svc, _ := newCatalogService(gateway)

	_, _, err := svc.ActiveBatches(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstreamUnreachable.Code, appErrors.FromError(err).Code)
}

func TestCachedBatchesSurviveOutage(t *testing.T) {
	gateway := &fakeCatalogGateway{batches: []models.Batch{{ID: "B1"}}}
	svc, _ := newCatalogService(gateway)

	_, _, err := svc.ActiveBatches(context.Background())
	require.NoError(t, err)

	gateway.batchesErr = errors.New("connection refused")
	batches, hit, err := svc.ActiveBatches(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, batches, 1)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	gateway := &fakeCatalogGateway{batches: []models.Batch{{ID: "B1"}}}
	svc, _ := newCatalogService(gateway)

	_, _, err := svc.ActiveBatches(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(context.Background()))

	_, hit, err := svc.ActiveBatches(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, gateway.batchCalls)
}
