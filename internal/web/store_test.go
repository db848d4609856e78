package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/cost-analyzer/internal/core"
	"github.com/dhabedank/cost-analyzer/internal/workbook/workbooktest"
)

func TestSessionStoreEvictsOldest(t *testing.T) {
	store, err := NewSessionStore(2, core.DefaultAnalysisConfig(), nil)
	require.NoError(t, err)

	first := store.Create()
	require.NoError(t, first.Load("estimate.xlsx", workbooktest.ConstructionWorkbook(t)))
	second := store.Create()
	third := store.Create()

	assert.Equal(t, 2, store.Len())
	_, ok := store.Get(first.ID)
	assert.False(t, ok)
	assert.Nil(t, first.Sheets(), "evicted session releases its workbook")

	for _, s := range []*core.Session{second, third} {
		got, ok := store.Get(s.ID)
		require.True(t, ok)
		assert.Same(t, s, got)
	}
	assert.NotEqual(t, second.ID, third.ID)
}

func TestSessionStorePurge(t *testing.T) {
	store, err := NewSessionStore(4, core.DefaultAnalysisConfig(), nil)
	require.NoError(t, err)
	store.Create()
	store.Create()

	store.Purge()
	assert.Zero(t, store.Len())
}
