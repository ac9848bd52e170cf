package archiveclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/chess-archive/pkg/archivedto"
)

// Client talks to a running archive-loader HTTP API.
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

// WithHTTPClient replaces the underlying fasthttp client (tests dial in-memory).
func WithHTTPClient(h *fasthttp.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 60 * time.Second, WriteTimeout: 60 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 60 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit uploads archive text and returns the job id. Uploads are not retried.
func (c *Client) Submit(ctx context.Context, name string, archiveText []byte) (string, error) {
	path := "/imports"
	if name != "" {
		path += "?name=" + url.QueryEscape(name)
	}
	var acc archivedto.ImportAccepted
	if err := c.do(ctx, fasthttp.MethodPost, path, archiveText, &acc, false); err != nil {
		return "", err
	}
	if acc.JobID == "" {
		return "", errors.New("server returned no job id")
	}
	return acc.JobID, nil
}

func (c *Client) Job(ctx context.Context, id string) (*archivedto.ImportJob, error) {
	var job archivedto.ImportJob
	if err := c.do(ctx, fasthttp.MethodGet, "/imports/"+url.PathEscape(id), nil, &job, true); err != nil {
		return nil, err
	}
	return &job, nil
}

// Wait polls the job until it reaches DONE or FAILED.
func (c *Client) Wait(ctx context.Context, id string, every time.Duration) (*archivedto.ImportJob, error) {
	if every <= 0 {
		every = time.Second
	}
	for {
		job, err := c.Job(ctx, id)
		if err != nil {
			return nil, err
		}
		if job.State == "DONE" || job.State == "FAILED" {
			return job, nil
		}
		if err := c.sleepWithContext(ctx, every); err != nil {
			return job, err
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if body != nil {
		req.Header.SetContentType("text/plain; charset=utf-8")
		req.SetBody(body)
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err == nil {
			status := resp.StatusCode()
			if status >= 200 && status < 300 {
				if out != nil {
					if err := json.Unmarshal(resp.Body(), out); err != nil {
						return fmt.Errorf("decode response: %w", err)
					}
				}
				return nil
			}
			err = statusError(status, resp.Body())
			if !shouldRetryStatus(status) {
				return err
			}
		} else {
			err = fmt.Errorf("request failed: %w", err)
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
			return lastErr
		}
	}
	return lastErr
}

// statusError prefers the server's DomainError body when it has one.
func statusError(status int, body []byte) error {
	var de archivedto.DomainError
	if err := json.Unmarshal(body, &de); err == nil && de.Code != "" {
		return fmt.Errorf("archive api error: status=%d: %w", status, de)
	}
	return fmt.Errorf("archive api error: status=%d body=%s", status, truncate(string(body), 512))
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
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

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
