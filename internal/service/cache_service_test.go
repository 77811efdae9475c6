package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/evaluation-system/pkg/errors"
)

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	var nilCache *CacheService
	hit, err := nilCache.Get(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, hit)
	nilCache.InvalidateStudent(context.Background(), "1001")

	repo := newMockCacheRepo()
	disabled := NewCacheService(repo, nil, 0, zap.NewNop(), false)
	require.NoError(t, disabled.Set(context.Background(), "k", "v", 0))
	assert.False(t, repo.has("k"))
}

func TestCacheServiceInvalidateAll(t *testing.T) {
	repo := newMockCacheRepo()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, 0, zap.NewNop(), true)

	require.NoError(t, svc.Set(context.Background(), EligibilityKey("1001"), []string{"A101"}, 0))
	require.NoError(t, svc.Set(context.Background(), EligibilityKey("1002"), []string{"A102"}, 0))
	require.NoError(t, svc.Set(context.Background(), "other", 1, 0))

	var codes []string
	hit, err := svc.Get(context.Background(), EligibilityKey("1001"), &codes)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"A101"}, codes)

	svc.InvalidateAll(context.Background())
	assert.False(t, repo.has(EligibilityKey("1001")))
	assert.False(t, repo.has(EligibilityKey("1002")))
	assert.True(t, repo.has("other"))

	hit, err = svc.Get(context.Background(), EligibilityKey("1001"), &codes)
	require.NoError(t, err)
	assert.False(t, hit)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.001)
}

func TestOutcomeLabel(t *testing.T) {
	assert.Equal(t, "ok", outcomeLabel(nil))
	assert.Equal(t, "UNITS_EXCEEDED", outcomeLabel(appErrors.UnitsExceeded(30, 26)))
}
