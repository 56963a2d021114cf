package dataloader

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

// countingPosts считает вызовы FindByIDs.
type countingPosts struct {
	storage.PostRepository
	mu    sync.Mutex
	calls int
	posts map[string]*domain.PostCore
}

func (c *countingPosts) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.PostCore, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	out := make(map[string]*domain.PostCore)
	for _, id := range ids {
		if p, ok := c.posts[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func TestLoadPost_CachesWithinRequest(t *testing.T) {
	repo := &countingPosts{posts: map[string]*domain.PostCore{"p1": {ID: "p1"}}}
	ctx := WithLoaders(context.Background(), NewLoaders(repo))

	first, ok, err := LoadPost(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, first)

	second, _, err := LoadPost(ctx, "p1")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, repo.calls)
}

func TestLoadPost_Missing(t *testing.T) {
	repo := &countingPosts{posts: map[string]*domain.PostCore{}}
	ctx := WithLoaders(context.Background(), NewLoaders(repo))

	post, ok, err := LoadPost(ctx, "nope")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, post)
}

func TestLoadPost_NoLoader(t *testing.T) {
	_, ok, err := LoadPost(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}
