// Package client implements the consumer side of the prayer API: a thin HTTP
// client, an idempotent submission controller, a swipe/paging navigation
// controller over the feed, and a WebSocket event subscriber.
//
// The controllers are headless state machines. They hold no UI, but they
// enforce the same guards a UI would: at most one in-flight submission per
// logical action, and no overlapping navigation while a fetch is outstanding.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HeaderIdempotencyKey is the transport-level header carrying the
// client-generated idempotency key on creation requests.
const HeaderIdempotencyKey = "X-Idempotency-Key"

// headerReplayed is set by the server when a creation request was deduplicated
// against an earlier request carrying the same key.
const headerReplayed = "Idempotency-Replayed"

// PrayerView is the client-side representation of a prayer record as returned
// by the API.
type PrayerView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Public    bool      `json:"public"`
	GroupID   *string   `json:"group_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	SupportCounts map[string]int64 `json:"support_counts,omitempty"`
}

// feedPage mirrors the server's paginated feed envelope.
type feedPage struct {
	Prayers []PrayerView `json:"prayers"`
}

// APIError is a server-reported application error (non-2xx with a JSON body).
// It is distinct from transport failures, which surface as ordinary errors
// from the underlying HTTP stack.
type APIError struct {
	StatusCode int    `json:"-"`
	RequestID  string `json:"request_id,omitempty"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error returns the server's message verbatim so callers can surface it
// without rewording.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// IsAPIError reports whether err is a server-reported application error and
// returns it when so. A false result means the failure was transport-level
// (connection refused, DNS, timeout) and the request may never have reached
// the server.
func IsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Client is a minimal HTTP client for the prayer API. The zero value is not
// usable; construct with New.
type Client struct {
	baseURL string
	userID  string
	httpc   *http.Client
}

// New returns a Client for the API rooted at baseURL (e.g.
// "http://localhost:8080/api/v1"). userID is sent as X-User-ID on every
// request. A nil httpc defaults to a client with a 15s overall timeout.
func New(baseURL, userID string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		httpc:   httpc,
	}
}

// CreatePrayerInput is the payload for CreatePrayer. IdempotencyKey is carried
// both as a header and duplicated in the JSON body for servers that only
// inspect the body.
type CreatePrayerInput struct {
	Content        string  `json:"content"`
	Public         bool    `json:"public"`
	GroupID        *string `json:"group_id,omitempty"`
	IdempotencyKey string  `json:"idempotencyKey,omitempty"`
}

// CreatePrayer posts a new prayer. The returned bool reports whether the
// server answered from its idempotency store rather than creating a new row.
func (c *Client) CreatePrayer(ctx context.Context, in CreatePrayerInput) (*PrayerView, bool, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/prayers", bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if in.IdempotencyKey != "" {
		req.Header.Set(HeaderIdempotencyKey, in.IdempotencyKey)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, false, decodeAPIError(resp)
	}
	var p PrayerView
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, false, fmt.Errorf("decode prayer: %w", err)
	}
	replayed := resp.Header.Get(headerReplayed) == "true"
	return &p, replayed, nil
}

// GetPrayer fetches one prayer by ID.
func (c *Client) GetPrayer(ctx context.Context, id string) (*PrayerView, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/prayers/"+id, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	var p PrayerView
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode prayer: %w", err)
	}
	return &p, nil
}

// FeedIDs fetches one page of the public feed and returns the ordered prayer
// IDs, for seeding a Pager.
func (c *Client) FeedIDs(ctx context.Context, page, pageSize int) ([]string, error) {
	url := fmt.Sprintf("%s/prayers?page=%d&page_size=%d", c.baseURL, page, pageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	var fp feedPage
	if err := json.NewDecoder(resp.Body).Decode(&fp); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	ids := make([]string, 0, len(fp.Prayers))
	for _, p := range fp.Prayers {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// do sends the request with the identity header attached.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}
	return c.httpc.Do(req)
}

// decodeAPIError reads an error envelope from a non-2xx response. Bodies that
// are not valid JSON still produce an *APIError with the status code set.
func decodeAPIError(resp *http.Response) error {
	ae := &APIError{StatusCode: resp.StatusCode}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(b) > 0 {
		_ = json.Unmarshal(b, ae)
	}
	return ae
}
