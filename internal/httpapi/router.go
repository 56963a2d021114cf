// Package httpapi - REST и websocket интерфейс сервиса контента.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/UkralStul/content-service/internal/comment"
	"github.com/UkralStul/content-service/internal/dataloader"
	"github.com/UkralStul/content-service/internal/post"
	"github.com/UkralStul/content-service/internal/search"
	"github.com/UkralStul/content-service/internal/storage"
)

// Services - зависимости HTTP-слоя.
type Services struct {
	PostRepo storage.PostRepository
	Posts    *post.Service
	Links    *post.LinkService
	Photos   *post.PhotoService
	Quotes   *post.QuoteService
	Texts    *post.TextService
	Videos   *post.VideoService
	Search   *search.Service
	Comments *comment.Service
}

type handler struct {
	svc Services
	log *slog.Logger
}

// NewRouter собирает маршруты сервиса.
func NewRouter(svc Services, jwtSecret string, log *slog.Logger) http.Handler {
	h := &handler{svc: svc, log: log.With(slog.String("component", "http"))}

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Group(func(r chi.Router) {
		r.Use(dataloader.Middleware(svc.PostRepo))
		r.Use(Identity(jwtSecret, h.writeError))

		r.Route("/posts", func(r chi.Router) {
			r.Route("/link", func(r chi.Router) { mountTyped(r, h, svc.Links) })
			r.Route("/photo", func(r chi.Router) { mountTyped(r, h, svc.Photos) })
			r.Route("/quote", func(r chi.Router) { mountTyped(r, h, svc.Quotes) })
			r.Route("/text", func(r chi.Router) { mountTyped(r, h, svc.Texts) })
			r.Route("/video", func(r chi.Router) { mountTyped(r, h, svc.Videos) })

			r.Get("/{postId}", h.findPost)
			r.Delete("/{postId}", h.deletePost)
			r.With(h.published).Post("/{postId}/like", h.likePost)
			r.With(h.published).Delete("/{postId}/like", h.unlikePost)
		})

		r.Route("/search", func(r chi.Router) {
			r.Get("/", h.searchUserPosts)
			r.Get("/public", h.searchPublicPosts)
			r.Get("/new-posts", h.searchNewPosts)
			r.Get("/personal-feed", h.personalFeed)
		})

		r.Route("/comments", func(r chi.Router) {
			r.With(h.published).Post("/post/{postId}", h.createComment)
			r.Get("/post/{postId}", h.listComments)
			r.Get("/post/{postId}/stream", h.streamComments)
			r.Get("/{commentId}", h.findComment)
			r.Head("/{commentId}", h.commentExists)
			r.Patch("/{commentId}", h.updateComment)
			r.Delete("/{commentId}", h.deleteComment)
		})
	})

	return router
}

// published пропускает запрос, только если пост {postId} существует и опубликован.
func (h *handler) published(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := h.svc.Posts.FindPublishedPostByID(r.Context(), chi.URLParam(r, "postId")); err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
