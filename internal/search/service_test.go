package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
	"github.com/UkralStul/content-service/internal/storage/inmemory"
)

const testLimit = 25

type fakeSubscriptions struct {
	ids []string
	err error
}

func (f fakeSubscriptions) Subscriptions(ctx context.Context, userID string) ([]string, error) {
	return f.ids, f.err
}

type fixture struct {
	repos storage.Repositories
	svc   *Service
	base  time.Time
	n     int
}

func newFixture(t *testing.T, subs SubscriptionSource) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos := inmemory.New().Repositories()
	engine := NewEngine(repos, log,
		WithTracer(tracenoop.NewTracerProvider().Tracer("test")),
		WithMeter(metricnoop.NewMeterProvider().Meter("test")),
	)
	return &fixture{
		repos: repos,
		svc:   NewService(engine, subs, testLimit, log),
		base:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) core(t domain.PostType, author string, status domain.PostStatus, tags ...string) domain.PostCore {
	f.n++
	if tags == nil {
		tags = []string{}
	}
	return domain.PostCore{
		PostType:   t,
		AuthorID:   author,
		PostStatus: status,
		Tags:       tags,
		PostedAt:   f.base.Add(time.Duration(f.n) * time.Hour),
	}
}

func (f *fixture) text(t *testing.T, author string, status domain.PostStatus, title string, tags ...string) *domain.TextPost {
	t.Helper()
	p, err := f.repos.Texts.Save(context.Background(), &domain.TextPost{
		PostCore:   f.core(domain.PostTypeText, author, status, tags...),
		TextDetail: domain.TextDetail{Title: title, Text: "body"},
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) link(t *testing.T, author string, status domain.PostStatus, tags ...string) *domain.LinkPost {
	t.Helper()
	p, err := f.repos.Links.Save(context.Background(), &domain.LinkPost{
		PostCore:   f.core(domain.PostTypeLink, author, status, tags...),
		LinkDetail: domain.LinkDetail{URL: "https://example.com", Description: "link"},
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) video(t *testing.T, author, title string) *domain.VideoPost {
	t.Helper()
	p, err := f.repos.Videos.Save(context.Background(), &domain.VideoPost{
		PostCore:    f.core(domain.PostTypeVideo, author, domain.PostStatusPublished),
		VideoDetail: domain.VideoDetail{Title: title, URL: "https://example.com/v"},
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) quote(t *testing.T, author string) *domain.QuotePost {
	t.Helper()
	p, err := f.repos.Quotes.Save(context.Background(), &domain.QuotePost{
		PostCore:    f.core(domain.PostTypeQuote, author, domain.PostStatusPublished),
		QuoteDetail: domain.QuoteDetail{Text: "to be", Author: "someone"},
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) photo(t *testing.T, author string) *domain.PhotoPost {
	t.Helper()
	p, err := f.repos.Photos.Save(context.Background(), &domain.PhotoPost{
		PostCore:    f.core(domain.PostTypePhoto, author, domain.PostStatusPublished),
		PhotoDetail: domain.PhotoDetail{URL: "https://example.com/p.png"},
	})
	require.NoError(t, err)
	return p
}

func ids(page *domain.Page[domain.AggregatePost]) []string {
	out := make([]string, 0, len(page.Entities))
	for _, e := range page.Entities {
		out = append(out, e.ID)
	}
	return out
}

func TestService_FindPublicPosts_Defaults(t *testing.T) {
	f := newFixture(t, fakeSubscriptions{})
	ctx := context.Background()

	first := f.link(t, "u1", domain.PostStatusPublished)
	second := f.text(t, "u2", domain.PostStatusPublished, "hello")
	f.text(t, "u2", domain.PostStatusDraft, "draft")

	page, err := f.svc.FindPublicPosts(ctx, domain.SearchFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, testLimit, page.ItemsPerPage, "limit is clamped")
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 2, page.TotalItems)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, []string{second.ID, first.ID}, ids(page), "newest first by default")
}

func TestService_Pagination(t *testing.T) {
	f := newFixture(t, fakeSubscriptions{})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.link(t, "u1", domain.PostStatusPublished)
	}

	seen := map[string]bool{}
	for p := 1; p <= 3; p++ {
		page, err := f.svc.FindPublicPosts(ctx, domain.SearchFilter{Page: p, Limit: 2, SortDirection: domain.SortAsc})
		require.NoError(t, err)
		assert.Equal(t, 5, page.TotalItems)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, p, page.CurrentPage)
		for _, id := range ids(page) {
			assert.False(t, seen[id], "pages must not overlap")
			seen[id] = true
		}
	}
	assert.Len(t, seen, 5)

	page, err := f.svc.FindPublicPosts(ctx, domain.SearchFilter{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Entities)
	assert.Equal(t, 9, page.CurrentPage)
	assert.Equal(t, 5, page.TotalItems)
}

func TestService_PageFarPastTheEnd(t *testing.T) {
	f := newFixture(t, fakeSubscriptions{})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.link(t, "u1", domain.PostStatusPublished)
	}

	for _, p := range []int{math.MaxInt, math.MaxInt / 10, math.MaxInt/10 + 1} {
		page, err := f.svc.FindPublicPosts(ctx, domain.SearchFilter{Page: p, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, page.Entities)
		assert.Equal(t, p, page.CurrentPage)
		assert.Equal(t, 3, page.TotalItems)
		assert.Equal(t, 1, page.TotalPages)
	}

	page, err := f.svc.FindUserPosts(ctx, "u1", domain.SearchFilter{Page: math.MaxInt, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Entities)
}

func TestService_TypeAndTags(t *testing.T) {
	f := newFixture(t, fakeSubscriptions{})
	ctx := context.Background()

	want := f.link(t, "u1", domain.PostStatusPublished, "golang", "news")
	f.link(t, "u1", domain.PostStatusPublished, "cooking")
	f.text(t, "u1", domain.PostStatusPublished, "golang tips", "golang")

	page, err := f.svc.FindPublicPosts(ctx, domain.SearchFilter{
		PostType: domain.PostTypeLink,
		Tags:     []string{"GoLang"},
	})
	require.NoError(t, err)
	require.Len(t, page.Entities, 1)
	got := page.Entities[0]
	assert.Equal(t, want.ID, got.ID)
	require.NotNil(t, got.URL)
	assert.Equal(t, "https://example.com", *got.URL)
	assert.Nil(t, got.Title)
}

func TestService_TitleMatchesOnlyTextAndVideo(t *testing.T) {
	f := newFixture(t, fakeSubscriptions{})
	ctx := context.Background()

	text := f.text(t, "u1", domain.PostStatusPublished, "Weekly Digest")
	video := f.video(t, "u1", "digest of the day")
	f.link(t, "u1", domain.PostStatusPublished)
	f.quote(t, "u1")
	f.photo(t, "u1")

	page, err := f.svc.FindPublicPosts(ctx, domain.SearchFilter{Title: "DIGEST", SortDirection: domain.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{text.ID, video.ID}, ids(page))
}

func TestService_SortByLikes(t *testing.T) {
	f := newFixture(t, fakeSubscriptions{})
	ctx := context.Background()

	a := f.link(t, "u1", domain.PostStatusPublished)
	b := f.link(t, "u1", domain.PostStatusPublished)
	_, _, err := f.repos.Posts.AddLike(ctx, a.ID, "u2")
	require.NoError(t, err)
	_, _, err = f.repos.Posts.AddLike(ctx, a.ID, "u3")
	require.NoError(t, err)

	page, err := f.svc.FindPublicPosts(ctx, domain.SearchFilter{SortType: domain.SortByLike})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, ids(page))
	assert.Equal(t, 2, page.Entities[0].LikeCount)
}

func TestService_FindNewPostsByDate(t *testing.T) {
	f := newFixture(t, fakeSubscriptions{})
	ctx := context.Background()

	f.link(t, "u1", domain.PostStatusPublished)
	newer := f.link(t, "u1", domain.PostStatusPublished)

	_, err := f.svc.FindNewPostsByDate(ctx, domain.SearchFilter{})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	since := f.base.Add(90 * time.Minute)
	page, err := f.svc.FindNewPostsByDate(ctx, domain.SearchFilter{PostDate: &since})
	require.NoError(t, err)
	assert.Equal(t, []string{newer.ID}, ids(page))
}

func TestService_FindUserPosts_DraftsVisibleOnlyToAuthor(t *testing.T) {
	f := newFixture(t, fakeSubscriptions{})
	ctx := context.Background()

	f.text(t, "u1", domain.PostStatusDraft, "mine")
	published := f.text(t, "u1", domain.PostStatusPublished, "mine too")
	f.text(t, "u2", domain.PostStatusDraft, "theirs")

	own, err := f.svc.FindUserPosts(ctx, "u1", domain.SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, own.TotalItems)

	other, err := f.svc.FindUserPosts(ctx, "u2", domain.SearchFilter{AuthorIDs: []string{"u1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{published.ID}, ids(other))

	drafts, err := f.svc.FindUserPosts(ctx, "u1", domain.SearchFilter{
		AuthorIDs:  []string{"u1", "u2"},
		PostStatus: domain.PostStatusDraft,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, drafts.TotalItems, "status is forced to PUBLISHED")
}

func TestService_FindPersonalFeed(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, fakeSubscriptions{ids: []string{"u2"}})
	f.link(t, "u1", domain.PostStatusPublished)
	want := f.link(t, "u2", domain.PostStatusPublished)
	f.link(t, "u2", domain.PostStatusDraft)

	page, err := f.svc.FindPersonalFeed(ctx, "u1", domain.SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{want.ID}, ids(page))

	none := newFixture(t, fakeSubscriptions{})
	_, err = none.svc.FindPersonalFeed(ctx, "u1", domain.SearchFilter{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	empty := newFixture(t, fakeSubscriptions{ids: []string{}})
	empty.link(t, "u1", domain.PostStatusPublished)
	page, err = empty.svc.FindPersonalFeed(ctx, "u1", domain.SearchFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Entities)
	assert.Equal(t, 0, page.TotalItems)

	failing := newFixture(t, fakeSubscriptions{err: errors.New("boom")})
	_, err = failing.svc.FindPersonalFeed(ctx, "u1", domain.SearchFilter{})
	assert.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

type staticSearch struct {
	rows []*storage.PostRow
}

func (s staticSearch) SearchPosts(ctx context.Context, f domain.SearchFilter) ([]*storage.PostRow, int, error) {
	return s.rows, len(s.rows), nil
}

func TestEngine_UnknownPostType(t *testing.T) {
	repos := inmemory.New().Repositories()
	repos.Search = staticSearch{rows: []*storage.PostRow{{PostCore: domain.PostCore{ID: "x", PostType: "AUDIO"}}}}
	engine := NewEngine(repos, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := engine.SearchPosts(context.Background(), domain.SearchFilter{}.Normalize(testLimit))
	assert.ErrorIs(t, err, domain.ErrInternal)
}
