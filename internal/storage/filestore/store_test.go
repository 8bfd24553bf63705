package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stocks.csv")
	return NewStore(common.NewSilentLogger(), path)
}

func TestStore_WriteAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []*models.SymbolRecord{
		{Symbol: "AAA", CompanyName: "Alpha Ltd", Industry: "Mining", ISIN: "IN000A"},
		{Symbol: "BBB", CompanyName: "Beta, Inc", Industry: "Banking", ISIN: "IN000B"},
	}
	require.NoError(t, store.Write(ctx, records))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[0], got[0])
	assert.Equal(t, records[1], got[1], "fields with commas must round-trip")
}

func TestStore_WriteOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, []*models.SymbolRecord{
		{Symbol: "OLD", CompanyName: "Old Co", Industry: "Mining", ISIN: "X"},
	}))
	require.NoError(t, store.Write(ctx, []*models.SymbolRecord{
		{Symbol: "NEW", CompanyName: "New Co", Industry: "Banking", ISIN: "Y"},
	}))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "NEW", got[0].Symbol)
}

func TestStore_UpsertKeepsExistingRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []*models.SymbolRecord{
		{Symbol: "AAA", CompanyName: "Alpha Ltd", Industry: "Mining", ISIN: "IN000A"},
	}))
	require.NoError(t, store.Upsert(ctx, []*models.SymbolRecord{
		{Symbol: "AAA", CompanyName: "Renamed Ltd", Industry: "Mining", ISIN: "IN000A"},
		{Symbol: "BBB", CompanyName: "Beta Ltd", Industry: "Banking", ISIN: "IN000B"},
	}))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha Ltd", got[0].CompanyName, "existing row wins on conflict")
	assert.Equal(t, "BBB", got[1].Symbol)
}

func TestStore_UpsertCreatesMissingFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []*models.SymbolRecord{
		{Symbol: "AAA", CompanyName: "Alpha Ltd", Industry: "Mining", ISIN: "IN000A"},
	}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "symbol,company_name,industry,isin\nAAA,Alpha Ltd,Mining,IN000A\n", string(data))
}

func TestStore_ListByIndustry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, []*models.SymbolRecord{
		{Symbol: "AAA", Industry: "Mining"},
		{Symbol: "BBB", Industry: "Banking"},
		{Symbol: "CCC", Industry: "Mining"},
		{Symbol: "DDD", Industry: "mining"}, // case-sensitive match
	}))

	got, err := store.ListByIndustry(ctx, "Mining")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AAA", got[0].Symbol)
	assert.Equal(t, "CCC", got[1].Symbol)

	none, err := store.ListByIndustry(ctx, "Aviation")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ListMissingFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.List(context.Background())
	assert.Error(t, err)
}
