package dataloader

import (
	"context"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/storage"
)

type contextKey string

const key = contextKey("dataloaders")

// Loaders содержит все дата-лоадеры запроса.
type Loaders struct {
	PostByID *dataloader.Loader
}

// NewLoaders создает лоадеры, которые собирают запросы постов по id в один вызов хранилища
// и кэшируют результат до конца запроса.
func NewLoaders(posts storage.PostRepository) *Loaders {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := keys.Keys()

		found, err := posts.FindByIDs(ctx, ids)
		if err != nil {
			// В случае ошибки возвращаем ее для всех ключей
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Результаты в том же порядке, что и ключи; отсутствующий пост - nil
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if p, ok := found[id]; ok {
				results[i] = &dataloader.Result{Data: p}
			} else {
				results[i] = &dataloader.Result{Data: (*domain.PostCore)(nil)}
			}
		}
		return results
	}

	return &Loaders{
		PostByID: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(time.Millisecond)),
	}
}

// Middleware внедряет лоадеры в контекст каждого запроса.
func Middleware(posts storage.PostRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(posts))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, key, l)
}

// For извлекает лоадеры из контекста; nil, если их нет.
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(key).(*Loaders)
	return l
}

// LoadPost загружает пост через лоадер запроса. ok == false, если лоадера в контексте нет.
func LoadPost(ctx context.Context, id string) (post *domain.PostCore, ok bool, err error) {
	l := For(ctx)
	if l == nil {
		return nil, false, nil
	}
	data, err := l.PostByID.Load(ctx, dataloader.StringKey(id))()
	if err != nil {
		return nil, true, err
	}
	post, _ = data.(*domain.PostCore)
	return post, true, nil
}

// Forget сбрасывает кэш поста после изменения.
func Forget(ctx context.Context, id string) {
	if l := For(ctx); l != nil {
		l.PostByID.Clear(ctx, dataloader.StringKey(id))
	}
}
