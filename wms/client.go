package wms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Capabilities documents larger than this are rejected.
const maxCapabilitiesSize = 32 << 20

var ErrInvalidURL = errors.New("invalid service url")

type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.StatusCode)
}

type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// ParseServiceURL accepts absolute http(s) URLs only.
func ParseServiceURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

// CapabilitiesURL returns base with SERVICE=WMS and REQUEST=GetCapabilities set.
// Every other query parameter is kept byte for byte, including values
// url.ParseQuery would reject such as MapServer's map=/path/a;b.map.
func CapabilitiesURL(base string) (string, error) {
	u, err := ParseServiceURL(base)
	if err != nil {
		return "", err
	}

	params := []string{}
	for _, param := range strings.Split(u.RawQuery, "&") {
		if param == "" {
			continue
		}
		key, _, _ := strings.Cut(param, "=")
		if key == "SERVICE" || key == "REQUEST" {
			continue
		}
		params = append(params, param)
	}
	params = append(params, "SERVICE=WMS", "REQUEST=GetCapabilities")

	u.RawQuery = strings.Join(params, "&")
	u.ForceQuery = false
	return u.String(), nil
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req)
}

// GetCapabilitiesXML fetches the raw capabilities document of the service at base.
func (c *Client) GetCapabilitiesXML(ctx context.Context, base string) ([]byte, error) {
	target, err := CapabilitiesURL(base)
	if err != nil {
		return nil, err
	}

	r, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer r.Body.Close()

	if r.StatusCode < 200 || r.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: r.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxCapabilitiesSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxCapabilitiesSize {
		return nil, fmt.Errorf("capabilities document exceeds %d bytes", maxCapabilitiesSize)
	}
	return data, nil
}

func (c *Client) GetCapabilities(ctx context.Context, base string) (*Capabilities, error) {
	data, err := c.GetCapabilitiesXML(ctx, base)
	if err != nil {
		return nil, err
	}
	return ParseCapabilities(data)
}

// Layers fetches the service capabilities and extracts its selectable layers.
func (c *Client) Layers(ctx context.Context, base string) ([]LayerOption, error) {
	caps, err := c.GetCapabilities(ctx, base)
	if err != nil {
		return nil, err
	}
	return ExtractCapabilities(caps), nil
}

// GetTile issues a GET for an arbitrary tile url. The caller closes the body.
func (c *Client) GetTile(ctx context.Context, tileURL string) (*http.Response, error) {
	if _, err := ParseServiceURL(tileURL); err != nil {
		return nil, err
	}
	return c.get(ctx, tileURL)
}
