package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/UkralStul/content-service/internal/domain"
)

const (
	MsgInternal       = "Internal server error"
	MsgInvalidBody    = "Invalid request body"
	MsgInvalidRequest = "Invalid request parameters"
)

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func statusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError отдает клиенту статический текст ошибки; детали внутренних ошибок только в логе.
func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
		msg = MsgInternal
	}
	writeJSON(w, status, errorResponse{StatusCode: status, Message: msg})
}

// writeExists отвечает на HEAD: 200, если ресурс есть, иначе 404 без тела.
func (h *handler) writeExists(w http.ResponseWriter, r *http.Request, ok bool, err error) {
	switch {
	case err != nil:
		h.log.ErrorContext(r.Context(), "existence check failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	case !ok:
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.BadRequest(MsgInvalidBody)
	}
	return nil
}

// requireUser возвращает вызывающего или пишет 401.
func (h *handler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := UserID(r.Context())
	if userID == "" {
		h.writeError(w, r, domain.Unauthorized(MsgUnauthorized))
		return "", false
	}
	return userID, true
}
