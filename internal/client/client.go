package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// StatusError is returned when the backend answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Request describes one backend call
type Request struct {
	Method string
	Path   string
	Body   any
	Token  string
}

// APIClient performs HTTP requests against the query service
type APIClient struct {
	baseURL string
	client  *http.Client
}

// New creates a new API client. A zero timeout means no client-side deadline.
func New(baseURL string, timeout time.Duration) (*APIClient, error) {
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	return &APIClient{
		baseURL: normalized,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// BaseURL returns the normalized server URL
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// normalizeBaseURL adds a scheme when missing and strips the trailing slash
func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}

	return strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/"), nil
}

// Do sends a request and returns the raw response body.
// A bearer header is attached only when a token is present.
func (c *APIClient) Do(ctx context.Context, r Request) ([]byte, error) {
	var reader io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.baseURL+r.Path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", r.Method).Str("path", r.Path).Msg("Request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug().
		Str("method", r.Method).
		Str("path", r.Path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return body, nil
}

// Login exchanges credentials for a bearer token
func (c *APIClient) Login(ctx context.Context, username, password string) (string, error) {
	body, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   endpointLogin,
		Body: domain.LoginRequest{
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		return "", err
	}

	var resp domain.LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}

	return resp.Token, nil
}

// CreateSession asks the backend for a new session identifier
func (c *APIClient) CreateSession(ctx context.Context, token string) (string, error) {
	body, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   endpointNewSession,
		Token:  token,
	})
	if err != nil {
		return "", err
	}

	var resp domain.NewSessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("session response carried no session_id")
	}

	return resp.SessionID, nil
}

// ListSessions returns the sessions known to the backend
func (c *APIClient) ListSessions(ctx context.Context, token string) ([]domain.Session, error) {
	body, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   endpointSessions,
		Token:  token,
	})
	if err != nil {
		return nil, err
	}

	var items []domain.Session
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	sessions := make([]domain.Session, 0, len(items))
	for _, item := range items {
		if item.ID != "" {
			sessions = append(sessions, item)
		}
	}
	return sessions, nil
}

// History returns the raw history body of a session
func (c *APIClient) History(ctx context.Context, token, sessionID string) ([]byte, error) {
	return c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf(endpointHistory, url.PathEscape(sessionID)),
		Token:  token,
	})
}

// Query submits a question and returns the raw answer body
func (c *APIClient) Query(ctx context.Context, token, sessionID, question string) ([]byte, error) {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   endpointQuery,
		Token:  token,
		Body: domain.QueryRequest{
			Question:  question,
			SessionID: sessionID,
		},
	})
}

// Health checks that the backend is reachable
func (c *APIClient) Health(ctx context.Context) error {
	_, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   endpointHealth,
	})
	return err
}
