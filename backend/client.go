package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/b1naryth1ef/atlas/logging"
	"go.uber.org/zap"
)

var (
	ErrNoSession    = errors.New("no backend session")
	ErrUnauthorized = errors.New("backend session rejected")
)

// APIError is a non-2xx response other than 401.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, body)
}

// Client talks to the document chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type ChatRequest struct {
	Query          string   `json:"query"`
	Mode           string   `json:"mode"`
	DocumentFilter []string `json:"document_filter,omitempty"`
}

type Source struct {
	Text            string  `json:"text"`
	Score           float64 `json:"score"`
	PageLabel       string  `json:"page_label"`
	FileName        string  `json:"file_name"`
	ContentType     string  `json:"content_type,omitempty"`
	SourceType      string  `json:"source_type,omitempty"`
	URL             string  `json:"url,omitempty"`
	Title           string  `json:"title,omitempty"`
	PublicationInfo string  `json:"publication_info,omitempty"`
}

type ChatResponse struct {
	Answer              string   `json:"answer"`
	Sources             []Source `json:"sources"`
	EnglishQuery        string   `json:"english_query,omitempty"`
	SpatialFilterActive bool     `json:"spatial_filter_active"`
}

// Login exchanges credentials for a new session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var resp loginResponse
	err := c.do(ctx, nil, http.MethodPost, "/login", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}

	logging.L().Named("backend").Info("logged in", zap.String("username", username))
	return NewSession(username, resp.Token), nil
}

// Logout revokes the context session. The session is cleared locally even
// when the backend call fails.
func (c *Client) Logout(ctx context.Context) error {
	s, ok := SessionFrom(ctx)
	if !ok {
		return ErrNoSession
	}
	defer s.Clear()
	return c.do(ctx, s, http.MethodPost, "/logout", nil, nil)
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	s, ok := SessionFrom(ctx)
	if !ok {
		return nil, ErrNoSession
	}
	if req.Mode == "" {
		req.Mode = "internal"
	}

	var resp ChatResponse
	if err := c.do(ctx, s, http.MethodPost, "/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PDF streams a source document to dst.
func (c *Client) PDF(ctx context.Context, fileName string, dst io.Writer) error {
	s, ok := SessionFrom(ctx)
	if !ok {
		return ErrNoSession
	}

	r, err := c.send(ctx, s, http.MethodGet, "/pdf/"+url.PathEscape(fileName), nil)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	_, err = io.Copy(dst, r.Body)
	return err
}

func (c *Client) do(ctx context.Context, s *Session, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	r, err := c.send(ctx, s, method, path, body)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, r.Body)
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// send performs the request and turns error statuses into errors. A 401
// invalidates the session so the caller has to log in again.
func (c *Client) send(ctx context.Context, s *Session, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil {
		req.Header.Set("Authorization", "Bearer "+s.Token())
	}

	r, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if r.StatusCode >= 200 && r.StatusCode <= 299 {
		return r, nil
	}
	defer r.Body.Close()

	if r.StatusCode == http.StatusUnauthorized {
		if s != nil {
			s.Clear()
		}
		return nil, ErrUnauthorized
	}

	data, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
	return nil, &APIError{StatusCode: r.StatusCode, Body: strings.TrimSpace(string(data))}
}
