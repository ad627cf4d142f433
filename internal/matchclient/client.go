package matchclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/cheese-match/pkg/chessdto"
)

// StatusError is a non-2xx answer from the match service.
type StatusError struct {
	Status int
	chessdto.DomainError
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("match api error: status=%d code=%s: %s", e.Status, e.Code, e.DomainError.Error())
}

// Client talks to the match HTTP API.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithHTTPClient swaps the transport, e.g. for an in-memory listener.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateMatch(ctx context.Context, player string) (*chessdto.MatchWithPlayerTeam, error) {
	var out chessdto.MatchWithPlayerTeam
	in := chessdto.CreateMatchRequest{Player: chessdto.PlayerDto{Name: player}}
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/match/create", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Connect(ctx context.Context, player, matchID string) (*chessdto.MatchWithPlayerTeam, error) {
	var out chessdto.MatchWithPlayerTeam
	in := chessdto.ConnectRequest{Player: chessdto.PlayerDto{Name: player}, GameID: matchID}
	if err := c.doJSON(ctx, fasthttp.MethodPut, "/match/connect", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Enqueue(ctx context.Context, player string) (*chessdto.PlayerInQueueResponse, error) {
	var out chessdto.PlayerInQueueResponse
	in := chessdto.QueueRequest{Player: chessdto.PlayerDto{Name: player}}
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/match/connect/matchesQueue", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) QueueStatus(ctx context.Context, player string) (*chessdto.PlayerInQueueResponse, error) {
	var out chessdto.PlayerInQueueResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/match/queue/"+url.PathEscape(player), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LeaveQueue(ctx context.Context, player string) error {
	return c.doJSON(ctx, fasthttp.MethodDelete, "/match/queue/"+url.PathEscape(player), nil, nil)
}

func (c *Client) Move(ctx context.Context, req chessdto.GameplayRequest) (*chessdto.MatchDto, error) {
	var out chessdto.MatchDto
	if err := c.doJSON(ctx, fasthttp.MethodPut, "/match/gameplay", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Promote(ctx context.Context, req chessdto.PromoteRequest) (*chessdto.MatchDto, error) {
	var out chessdto.MatchDto
	if err := c.doJSON(ctx, fasthttp.MethodPut, "/match/promote", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Tie(ctx context.Context, matchID string) (*chessdto.MatchDto, error) {
	var out chessdto.MatchDto
	if err := c.doJSON(ctx, fasthttp.MethodPut, "/match/tieMatch/"+url.PathEscape(matchID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, matchID string) (*chessdto.MatchDto, error) {
	var out chessdto.MatchDto
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/match/"+url.PathEscape(matchID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
		} else if status := resp.StatusCode(); status < 200 || status >= 300 {
			apiErr := decodeError(status, resp.Body())
			if !shouldRetry(apiErr) {
				return apiErr
			}
			lastErr = apiErr
		} else {
			if out != nil && len(resp.Body()) > 0 {
				if err := json.Unmarshal(resp.Body(), out); err != nil {
					return fmt.Errorf("decode response: %w", err)
				}
			}
			return nil
		}

		if attempt == attempts {
			break
		}
		if err := sleepWithContext(ctx, backoffDuration(attempt)); err != nil {
			return lastErr
		}
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func decodeError(status int, body []byte) *StatusError {
	e := &StatusError{Status: status}
	if err := json.Unmarshal(body, &e.DomainError); err != nil || e.Code == "" {
		e.Message = truncate(string(body), 512)
	}
	return e
}

// Rejected commands leave the match unchanged, so a retryable error
// is safe to resend even for moves.
func shouldRetry(e *StatusError) bool {
	if e.Retryable {
		return true
	}
	switch e.Status {
	case 502, 503, 504:
		return true
	default:
		return false
	}
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
