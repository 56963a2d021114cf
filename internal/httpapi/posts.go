package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/UkralStul/content-service/internal/domain"
	"github.com/UkralStul/content-service/internal/post"
)

func (h *handler) findPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Posts.FindPostByID(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) deletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Posts.DeletePostByID(r.Context(), userID, chi.URLParam(r, "postId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) likePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Posts.LikePostByID(r.Context(), userID, chi.URLParam(r, "postId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) unlikePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Posts.UnlikePostByID(r.Context(), userID, chi.URLParam(r, "postId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// mountTyped регистрирует CRUD и репост для одного подтипа.
func mountTyped[T domain.Post, C post.Creator[T], U post.Updater[T]](r chi.Router, h *handler, svc *post.TypedService[T, C, U]) {
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		userID, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		var in C
		if err := decodeJSON(r, &in); err != nil {
			h.writeError(w, r, err)
			return
		}
		p, err := svc.CreatePost(r.Context(), userID, in)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	})

	r.Get("/{postId}", func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.FindPostByID(r.Context(), chi.URLParam(r, "postId"))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	})

	r.Head("/{postId}", func(w http.ResponseWriter, r *http.Request) {
		ok, err := svc.Exists(r.Context(), chi.URLParam(r, "postId"))
		h.writeExists(w, r, ok, err)
	})

	r.Patch("/{postId}", func(w http.ResponseWriter, r *http.Request) {
		userID, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		var in U
		if err := decodeJSON(r, &in); err != nil {
			h.writeError(w, r, err)
			return
		}
		p, err := svc.UpdatePostByID(r.Context(), userID, chi.URLParam(r, "postId"), in)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	})

	r.Delete("/{postId}", func(w http.ResponseWriter, r *http.Request) {
		userID, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		p, err := svc.DeletePostByID(r.Context(), userID, chi.URLParam(r, "postId"))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	})

	r.With(h.published).Post("/{postId}/repost", func(w http.ResponseWriter, r *http.Request) {
		userID, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		p, err := svc.RepostPostByID(r.Context(), userID, chi.URLParam(r, "postId"))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	})
}
