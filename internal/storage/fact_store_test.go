package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibor-valuation/internal/service"
)

var _ service.FactStore = (*FactStore)(nil)

func TestFactStoreRoutesDimensionsThroughTheCache(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	next := newCountingDimensions()
	logger, _ := quietLogger()
	store := NewFactStore(NewCachedDimensions(next, cache, logger), nil, nil, nil)

	_, err := store.FindPortfolioVersions(testContext(t), "P-ALPHA")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls["portfolio"])
	assert.Equal(t, []string{"ibor:portfolio:P-ALPHA"}, mr.Keys())
}
