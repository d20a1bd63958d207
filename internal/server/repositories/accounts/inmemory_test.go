package accounts

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/papertrader/internal/common"
)

func TestInMemoryRepository_CreateAndExists(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	ok, err := repo.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	a := sampleAccount()
	require.NoError(t, repo.Create(ctx, a))
	assert.False(t, a.CreatedAt.IsZero())

	ok, err = repo.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UsernameExists(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, repo.Create(ctx, sampleAccount()), common.ErrUserExists)
}

func TestInMemoryRepository_ConcurrentCreateKeepsOneWinner(t *testing.T) {
	repo := NewInMemoryRepository()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.Create(context.Background(), sampleAccount()) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
