package channeltalk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Helper-Yoon/sns-help-counter/internal/config"
	"github.com/Helper-Yoon/sns-help-counter/internal/domain"
)

// UpstreamError is a non-429 HTTP error from the Channel API after retries
// are exhausted.
type UpstreamError struct {
	Status int
	Path   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("channeltalk: %s returned %d", e.Path, e.Status)
}

// ErrRateLimited is returned when 429 responses persist past the retry bound.
var ErrRateLimited = errors.New("channeltalk: rate limited")

// Client talks to the Channel Talk open API. All calls pass through the
// shared RateGate; 429s back off exponentially and reset on success.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	accessKey    string
	accessSecret string
	gate         *RateGate
	maxRetries   int
	timeout      time.Duration
}

// NewClient builds a client from configuration with a fresh rate gate.
func NewClient(cfg *config.ChannelConfig) *Client {
	return &Client{
		httpClient:   &http.Client{},
		baseURL:      cfg.BaseURL,
		accessKey:    cfg.AccessKey,
		accessSecret: cfg.AccessSecret,
		gate:         NewRateGate(cfg.MinInterval),
		maxRetries:   cfg.MaxRetries,
		timeout:      cfg.RequestTimeout,
	}
}

// Gate exposes the shared rate gate, mainly for tests.
func (c *Client) Gate() *RateGate {
	return c.gate
}

// ListFilter selects a page of user chats.
type ListFilter struct {
	State string
	Next  string
	Since string
	Limit int
}

type userChatsResponse struct {
	UserChats []domain.UserChat `json:"userChats"`
	Next      string            `json:"next"`
	HasNext   bool              `json:"hasNext"`
}

// ListUserChats fetches one page of chats and returns the cursor for the
// next page, or "" when exhausted.
func (c *Client) ListUserChats(ctx context.Context, filter ListFilter) ([]domain.UserChat, string, error) {
	q := url.Values{}
	if filter.State != "" {
		q.Set("state", filter.State)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Next != "" {
		q.Set("next", filter.Next)
	}
	if filter.Since != "" {
		q.Set("since", filter.Since)
	}

	var resp userChatsResponse
	if err := c.get(ctx, "/user-chats", q, &resp); err != nil {
		return nil, "", err
	}
	next := resp.Next
	if !resp.HasNext {
		next = ""
	}
	return resp.UserChats, next, nil
}

type messagesResponse struct {
	Messages []domain.Message `json:"messages"`
}

// ListMessages fetches up to limit messages for a chat in descending-time
// order (the API's sort). A per-call timeout is a soft failure: the slow
// chat logs and yields an empty slice so one chat cannot stall a batch.
func (c *Client) ListMessages(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	q.Set("sortOrder", "desc")

	var resp messagesResponse
	err := c.get(ctx, "/user-chats/"+chatID+"/messages", q, &resp)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			log.Printf("channeltalk: messages fetch for %s timed out, skipping", chatID)
			return nil, nil
		}
		return nil, err
	}
	return resp.Messages, nil
}

type userChatResponse struct {
	UserChat domain.UserChat `json:"userChat"`
}

// GetUserChat fetches a single chat by ID.
func (c *Client) GetUserChat(ctx context.Context, chatID string) (*domain.UserChat, error) {
	var resp userChatResponse
	if err := c.get(ctx, "/user-chats/"+chatID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.UserChat, nil
}

// Manager is an agent account on the remote system.
type Manager struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type managerResponse struct {
	Manager Manager `json:"manager"`
}

// GetManager resolves an agent's display name.
func (c *Client) GetManager(ctx context.Context, managerID string) (*Manager, error) {
	var resp managerResponse
	if err := c.get(ctx, "/managers/"+managerID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Manager, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	for attempt := 0; ; attempt++ {
		if err := c.gate.Wait(ctx); err != nil {
			return err
		}

		retryable, err := c.doOnce(ctx, path, q, out)
		if err == nil {
			c.gate.Reset()
			return nil
		}
		if !retryable || attempt >= c.maxRetries-1 {
			return err
		}

		delay := c.gate.Penalize()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// doOnce performs a single request. The bool reports whether the failure is
// transient (429, 5xx) and worth retrying.
func (c *Client) doOnce(ctx context.Context, path string, q url.Values, out interface{}) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-access-key", c.accessKey)
	req.Header.Set("x-access-secret", c.accessSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return false, fmt.Errorf("request %s: %w", path, context.DeadlineExceeded)
		}
		return true, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("decode %s: %w", path, err)
		}
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return true, fmt.Errorf("%w: %s", ErrRateLimited, path)
	case resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return true, &UpstreamError{Status: resp.StatusCode, Path: path}
	default:
		io.Copy(io.Discard, resp.Body)
		return false, &UpstreamError{Status: resp.StatusCode, Path: path}
	}
}
