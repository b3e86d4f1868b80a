// Package bbmp talks to the BBMP road-history portal's page methods.
package bbmp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wireman27/bengaluru-ofc-data/internal/domain"
)

// Headers is the fixed header set the portal requires before it answers;
// requests without them come back empty.
type Headers struct {
	UserAgent string
	Origin    string
	Referer   string
}

// Client issues the two POST calls the pipeline needs. A zero timeout leaves
// requests unbounded, matching how the portal has always been scraped.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    Headers
	logger     *slog.Logger
}

// NewClient creates a portal client rooted at baseURL.
func NewClient(baseURL string, headers Headers, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		headers:    headers,
		logger:     logger,
	}
}

// WardsByZone fetches and decodes the ward list of one zone. Any failure is
// returned as-is; a partial ward list is useless downstream.
func (c *Client) WardsByZone(ctx context.Context, zoneID string) ([]domain.Ward, error) {
	// The page method only accepts this single-quoted pseudo-JSON body.
	body := fmt.Sprintf("{'zoneid':'%s'}", zoneID)

	data, status, err := c.post(ctx, "/LoadWardByZone", body)
	if err != nil {
		return nil, fmt.Errorf("zone %s: %w", zoneID, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("zone %s: status %d: %s", zoneID, status, snippet(data))
	}

	inner, err := domain.DecodeEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("zone %s: %w", zoneID, err)
	}
	return domain.ParseWardRows(inner, zoneID)
}

// OFCData fetches the raw permit payload of one ward. The verbatim body is
// returned even on a non-200 status so the caller can persist whatever the
// server said; only transport failures produce an error.
func (c *Client) OFCData(ctx context.Context, zoneID, wardID string) ([]byte, error) {
	body := fmt.Sprintf("{'zoneid':'%s','wardid':'%s','streetid':'0'}", zoneID, wardID)

	data, status, err := c.post(ctx, "/GetOFCData", body)
	if err != nil {
		return nil, fmt.Errorf("ward %s: %w", wardID, err)
	}
	if status != http.StatusOK {
		c.logger.Warn("ofc data request returned non-200", "ward_id", wardID, "status", status)
	}
	return data, nil
}

func (c *Client) post(ctx context.Context, path, body string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("User-Agent", c.headers.UserAgent)
	req.Header.Set("Origin", c.headers.Origin)
	req.Header.Set("Referer", c.headers.Referer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read %s response: %w", path, err)
	}
	return data, resp.StatusCode, nil
}

func snippet(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
