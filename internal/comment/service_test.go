package comment

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/post"
	"github.com/UkralStul/content-service/internal/storage"
	"github.com/UkralStul/content-service/internal/storage/inmemory"
)

const testLimit = 3

type fixture struct {
	repos    storage.Repositories
	posts    *post.Service
	svc      *Service
	observer *Observer
	postID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos := inmemory.New().Repositories()
	posts := post.NewService(repos.Posts, nil, log)
	observer := NewObserver()

	p, err := repos.Photos.Save(context.Background(), &domain.PhotoPost{
		PostCore:    domain.PostCore{PostType: domain.PostTypePhoto, AuthorID: "author", Tags: []string{}},
		PhotoDetail: domain.PhotoDetail{URL: "https://example.com/p.png"},
	})
	require.NoError(t, err)

	return &fixture{
		repos:    repos,
		posts:    posts,
		svc:      NewService(repos.Comments, posts, observer, testLimit, log),
		observer: observer,
		postID:   p.ID,
	}
}

func (f *fixture) comment(t *testing.T, author, text string) *domain.Comment {
	t.Helper()
	c, err := f.svc.CreateComment(context.Background(), author, f.postID, text)
	require.NoError(t, err)
	return c
}

func TestService_CreateComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.comment(t, "u1", "First comment!")
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, f.postID, c.PostID)
	assert.Equal(t, "u1", c.AuthorID)

	p, err := f.posts.FindPostByID(ctx, f.postID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CommentCount)

	_, err = f.svc.CreateComment(ctx, "u1", "missing", "Valid comment text")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_CreateComment_TextLength(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateComment(ctx, "u1", f.postID, "short")
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = f.svc.CreateComment(ctx, "u1", f.postID, strings.Repeat("x", domain.CommentTextMax+1))
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = f.svc.CreateComment(ctx, "u1", f.postID, strings.Repeat("я", domain.CommentTextMin))
	assert.NoError(t, err, "length is counted in characters")
}

func TestService_FindCommentsByPostID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var created []*domain.Comment
	for i := 0; i < 5; i++ {
		created = append(created, f.comment(t, "u1", "Comment number "+string(rune('a'+i))))
	}

	page, err := f.svc.FindCommentsByPostID(ctx, f.postID, domain.CommentQuery{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, testLimit, page.ItemsPerPage, "limit is clamped")
	assert.Equal(t, 5, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Entities, testLimit)
	assert.Equal(t, created[4].ID, page.Entities[0].ID, "newest first by default")

	page, err = f.svc.FindCommentsByPostID(ctx, f.postID, domain.CommentQuery{Page: 2, SortDirection: domain.SortAsc})
	require.NoError(t, err)
	require.Len(t, page.Entities, 2)
	assert.Equal(t, created[3].ID, page.Entities[0].ID)

	_, err = f.svc.FindCommentsByPostID(ctx, "missing", domain.CommentQuery{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_UpdateCommentByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.comment(t, "u1", "Original comment")

	_, err := f.svc.UpdateCommentByID(ctx, "u2", c.ID, "Hijacked comment")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	updated, err := f.svc.UpdateCommentByID(ctx, "u1", c.ID, "Edited comment")
	require.NoError(t, err)
	assert.Equal(t, "Edited comment", updated.Text)

	found, err := f.svc.FindCommentByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited comment", found.Text)

	_, err = f.svc.UpdateCommentByID(ctx, "u1", "missing", "Edited comment")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_DeleteCommentByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.comment(t, "u1", "Doomed comment")

	_, err := f.svc.DeleteCommentByID(ctx, "u2", c.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.DeleteCommentByID(ctx, "u1", c.ID)
	require.NoError(t, err)

	_, err = f.svc.FindCommentByID(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := f.posts.FindPostByID(ctx, f.postID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CommentCount)
}

func TestService_PostDeletionLeavesCommentsButHidesListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	comments := []*domain.Comment{
		f.comment(t, "u1", "Orphaned comment one"),
		f.comment(t, "u2", "Orphaned comment two"),
		f.comment(t, "u3", "Orphaned comment three"),
	}

	_, err := f.posts.DeletePostByID(ctx, "author", f.postID)
	require.NoError(t, err)

	for _, c := range comments {
		found, err := f.svc.FindCommentByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, found.ID)
		assert.Equal(t, f.postID, found.PostID)

		ok, err := f.svc.CommentExists(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	_, err = f.svc.FindCommentsByPostID(ctx, f.postID, domain.CommentQuery{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_FindCommentsByPostID_PageFarPastTheEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		f.comment(t, "u1", "Comment number "+string(rune('a'+i)))
	}

	for _, page := range []int{math.MaxInt, math.MaxInt / testLimit, 3} {
		got, err := f.svc.FindCommentsByPostID(ctx, f.postID, domain.CommentQuery{Page: page, Limit: testLimit})
		require.NoError(t, err)
		assert.Empty(t, got.Entities)
		assert.Equal(t, 4, got.TotalItems)
		assert.Equal(t, 2, got.TotalPages)
		assert.Equal(t, page, got.CurrentPage)
	}
}

func TestService_CommentExists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.comment(t, "u1", "Existing comment")

	ok, err := f.svc.CommentExists(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.CommentExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_SubscribeWithoutObserver(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.repos.Comments, f.posts, nil, testLimit, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := svc.Subscribe(ctx, f.postID)
	require.NoError(t, err)

	c, err := svc.CreateComment(ctx, "u1", f.postID, "Delivered comment")
	require.NoError(t, err)
	select {
	case got := <-ch:
		assert.Equal(t, c.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("comment was not delivered")
	}
}

func TestService_Subscribe(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := f.svc.Subscribe(ctx, f.postID)
	require.NoError(t, err)

	c := f.comment(t, "u1", "Live comment here")
	select {
	case got := <-ch:
		assert.Equal(t, c.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("comment was not delivered")
	}

	cancel()
	assert.Eventually(t, func() bool { return f.observer.Subscribers(f.postID) == 0 }, time.Second, 10*time.Millisecond)

	_, err = f.svc.Subscribe(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
