package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/villa_bot/internal/model"
)

func TestMemoryFunnelCountsDistinctUsers(t *testing.T) {
	r := NewMemoryFunnelRepository()
	require.NoError(t, r.Hit(model.StateName, 1))
	require.NoError(t, r.Hit(model.StateName, 1))
	require.NoError(t, r.Hit(model.StateName, 2))
	require.NoError(t, r.Hit(model.StateBudget, 2))

	counts, err := r.Counts()
	require.NoError(t, err)
	assert.Equal(t, map[model.State]int{model.StateName: 2, model.StateBudget: 1}, counts)
}
