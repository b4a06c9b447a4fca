package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/villa_bot/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	r, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteAppendAndRecent(t *testing.T) {
	r := newTestSQLite(t)
	ctx := context.Background()

	older := sampleRow
	newer := sampleRow
	newer.ID = "id-2"
	newer.Name = "Борис"
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)

	for _, row := range []model.LeadRow{older, newer} {
		saved, err := r.AppendLead(ctx, row)
		require.NoError(t, err)
		assert.True(t, saved)
	}

	rows, err := r.RecentLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Борис", rows[0].Name)
	assert.Equal(t, "Анна", rows[1].Name)
	assert.Equal(t, "Ламай", rows[1].District)
	assert.True(t, older.CreatedAt.Equal(rows[1].CreatedAt))

	rows, err = r.RecentLeads(ctx, LeadFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSQLiteDuplicateID(t *testing.T) {
	r := newTestSQLite(t)
	_, err := r.AppendLead(context.Background(), sampleRow)
	require.NoError(t, err)

	saved, err := r.AppendLead(context.Background(), sampleRow)
	assert.Error(t, err)
	assert.False(t, saved)
}

func TestSQLiteFunnel(t *testing.T) {
	r := newTestSQLite(t)

	require.NoError(t, r.Hit(model.StateName, 1))
	require.NoError(t, r.Hit(model.StateName, 1))
	require.NoError(t, r.Hit(model.StateName, 2))
	require.NoError(t, r.Hit(model.StateComplete, 2))

	counts, err := r.Counts()
	require.NoError(t, err)
	assert.Equal(t, 2, counts[model.StateName])
	assert.Equal(t, 1, counts[model.StateComplete])
	assert.Zero(t, counts[model.StateType])
}
