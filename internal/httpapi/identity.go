package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/UkralStul/content-service/internal/domain"
)

type contextKey string

const userIDKey = contextKey("userId")

const (
	MsgUnauthorized = "Unauthorized"
	MsgInvalidToken = "Invalid token"
)

type claims struct {
	UID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// Identity определяет вызывающего пользователя: по bearer-токену (HS256, uid или sub),
// а без токена - по параметру userId, который проставляет шлюз.
func Identity(secret string, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.URL.Query().Get("userId")

			if auth := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				uid, err := parseToken(strings.TrimSpace(auth[7:]), secret)
				if err != nil {
					onError(w, r, err)
					return
				}
				userID = uid
			}

			if userID != "" {
				r = r.WithContext(WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseToken(raw, secret string) (string, error) {
	if secret == "" {
		return "", domain.Unauthorized(MsgInvalidToken)
	}
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c,
		func(t *jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return "", domain.Unauthorized(MsgInvalidToken)
	}
	uid := c.UID
	if uid == "" {
		uid = c.Subject
	}
	if uid == "" {
		return "", domain.Unauthorized(MsgInvalidToken)
	}
	return uid, nil
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID возвращает идентификатор вызывающего; пустая строка - аноним.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
