package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type MockRoleCounter struct {
	mock.Mock
}

func (m *MockRoleCounter) CountByRole(ctx context.Context, role entity.Role) (int, error) {
	args := m.Called(ctx, role)
	return args.Int(0), args.Error(1)
}

func TestTeamSize_CachesCount(t *testing.T) {
	ctx := context.Background()
	counter := new(MockRoleCounter)
	counter.On("CountByRole", ctx, entity.RoleUser).Return(4, nil).Once()

	c := NewTeamSizeCache(counter, 1, time.Minute, zerolog.Nop())

	for i := 0; i < 3; i++ {
		n, err := c.TeamSize(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	}
	counter.AssertNumberOfCalls(t, "CountByRole", 1)
}

func TestTeamSize_InvalidateForcesReload(t *testing.T) {
	ctx := context.Background()
	counter := new(MockRoleCounter)
	counter.On("CountByRole", ctx, entity.RoleUser).Return(4, nil).Once()
	counter.On("CountByRole", ctx, entity.RoleUser).Return(5, nil).Once()

	c := NewTeamSizeCache(counter, 1, time.Minute, zerolog.Nop())

	n, _ := c.TeamSize(ctx)
	assert.Equal(t, 4, n)
	c.Invalidate()
	n, _ = c.TeamSize(ctx)
	assert.Equal(t, 5, n)
}

func TestTeamSize_DisabledAlwaysQueries(t *testing.T) {
	ctx := context.Background()
	counter := new(MockRoleCounter)
	counter.On("CountByRole", ctx, entity.RoleUser).Return(2, nil)

	c := NewTeamSizeCache(counter, 0, time.Minute, zerolog.Nop())
	c.TeamSize(ctx)
	c.TeamSize(ctx)
	c.Invalidate()

	counter.AssertNumberOfCalls(t, "CountByRole", 2)
}

func TestTeamSize_ErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	counter := new(MockRoleCounter)
	counter.On("CountByRole", ctx, entity.RoleUser).Return(0, errors.New("db down")).Once()
	counter.On("CountByRole", ctx, entity.RoleUser).Return(3, nil).Once()

	c := NewTeamSizeCache(counter, 1, time.Minute, zerolog.Nop())

	_, err := c.TeamSize(ctx)
	assert.Error(t, err)
	n, err := c.TeamSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
