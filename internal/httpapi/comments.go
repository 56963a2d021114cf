package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/UkralStul/content-service/internal/domain"
)

const (
	keepAlivePingInterval = 10 * time.Second
	writeWait             = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type commentInput struct {
	Text string `json:"text"`
}

func (h *handler) createComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var in commentInput
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Comments.CreateComment(r.Context(), userID, chi.URLParam(r, "postId"), in.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *handler) listComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		query domain.CommentQuery
		err   error
	)
	if query.Page, err = intParam(q, "page"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if query.Limit, err = intParam(q, "limit"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if v := q.Get("sortDirection"); v != "" {
		query.SortDirection = domain.SortDirection(strings.ToUpper(v))
		if !query.SortDirection.Valid() {
			h.writeError(w, r, domain.BadRequest("Invalid sortDirection"))
			return
		}
	}

	page, err := h.svc.Comments.FindCommentsByPostID(r.Context(), chi.URLParam(r, "postId"), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) commentExists(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.Comments.CommentExists(r.Context(), chi.URLParam(r, "commentId"))
	h.writeExists(w, r, ok, err)
}

func (h *handler) findComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Comments.FindCommentByID(r.Context(), chi.URLParam(r, "commentId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) updateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var in commentInput
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Comments.UpdateCommentByID(r.Context(), userID, chi.URLParam(r, "commentId"), in.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Comments.DeleteCommentByID(r.Context(), userID, chi.URLParam(r, "commentId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// streamComments отправляет новые комментарии поста в websocket, пока клиент подключен.
func (h *handler) streamComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postId")
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Подписываемся до апгрейда, чтобы ошибку можно было вернуть обычным HTTP-ответом
	comments, err := h.svc.Comments.Subscribe(ctx, postID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WarnContext(ctx, "websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	// Чтение нужно только для обработки close и pong от клиента
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(keepAlivePingInterval)
	defer ticker.Stop()

	for {
		select {
		case c, ok := <-comments:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(c); err != nil {
				h.log.DebugContext(ctx, "websocket write failed", slog.String("postId", postID), slog.Any("error", err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
