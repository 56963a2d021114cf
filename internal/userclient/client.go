// Package userclient обращается к сервису пользователей по HTTP.
package userclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Client реализует контракт сервиса пользователей:
// счетчик постов пользователя и список его подписок.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

func New(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type successResponse struct {
	Success *bool `json:"success"`
}

type subscriptionResponse struct {
	SubscriptionIDs []string `json:"subscriptionIds"`
}

// IncrementPostCount вызывает POST /post-count. Отсутствие поля success считается неудачей.
func (c *Client) IncrementPostCount(ctx context.Context, userID string) (bool, error) {
	return c.postCount(ctx, http.MethodPost, userID)
}

// DecrementPostCount вызывает DELETE /post-count.
func (c *Client) DecrementPostCount(ctx context.Context, userID string) (bool, error) {
	return c.postCount(ctx, http.MethodDelete, userID)
}

func (c *Client) postCount(ctx context.Context, method, userID string) (bool, error) {
	var resp successResponse
	if err := c.do(ctx, method, "/post-count", userID, &resp); err != nil {
		return false, err
	}
	if resp.Success == nil {
		c.log.ErrorContext(ctx, "no success field in post-count response",
			slog.String("method", method), slog.String("userId", userID))
		return false, nil
	}
	return *resp.Success, nil
}

// Subscriptions возвращает идентификаторы авторов, на которых подписан пользователь.
// nil без ошибки означает, что сервис не вернул список.
func (c *Client) Subscriptions(ctx context.Context, userID string) ([]string, error) {
	var resp subscriptionResponse
	if err := c.do(ctx, http.MethodGet, "/subscription", userID, &resp); err != nil {
		return nil, err
	}
	return resp.SubscriptionIDs, nil
}

func (c *Client) do(ctx context.Context, method, path, userID string, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid user service url: %w", err)
	}
	u.RawQuery = url.Values{"userId": {userID}}.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("user service request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("user service %s %s returned %d", method, path, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode user service response: %w", err)
	}
	return nil
}
