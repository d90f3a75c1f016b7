package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hindsightlabs/hindsight/internal/domain"
	"github.com/hindsightlabs/hindsight/internal/retry"
	"github.com/hindsightlabs/hindsight/internal/utils"
)

const (
	// DefaultCDXBaseURL is the archive's capture index endpoint.
	DefaultCDXBaseURL = "https://web.archive.org/cdx/search/cdx"
	// DefaultUserAgent identifies the service to the archive.
	DefaultUserAgent = "Mozilla/5.0 (compatible; hindsight/1.0)"

	// cdxResponseLimit bounds how much of an index response is read.
	cdxResponseLimit = 1 << 20
)

// IndexClient queries the archive's CDX index for exact-date captures.
type IndexClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewIndexClient builds an index client. Empty baseURL selects the
// public archive endpoint.
func NewIndexClient(baseURL, userAgent string, timeout time.Duration) *IndexClient {
	if baseURL == "" {
		baseURL = DefaultCDXBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &IndexClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// Lookup returns the capture of site on the exact day, restricted to
// captures archived with an HTTP-success status, or nil when the index
// has none. Transport and upstream failures are marked transient.
func (c *IndexClient) Lookup(ctx context.Context, site string, day time.Time) (*domain.SnapshotRecord, error) {
	stamp := day.Format("20060102")

	params := url.Values{}
	params.Set("url", site)
	params.Set("from", stamp)
	params.Set("to", stamp)
	params.Set("output", "json")
	params.Set("fl", "timestamp,original")
	params.Set("limit", "1")
	params.Set("filter", "statuscode:200")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build index request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("index request failed: %w", err))
	}
	defer utils.Close(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, cdxResponseLimit))
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("failed to read index response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("index returned status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, retry.Transient(err)
		}
		return nil, err
	}

	// The CDX json output is an array of rows, the first being column
	// headers: [["timestamp","original"],["20240115103000","https://..."]]
	// An empty window comes back as an empty body, not an empty array.
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode index response: %w", err)
	}
	if len(rows) < 2 || len(rows[1]) < 2 {
		return nil, nil // no capture on this date
	}

	return &domain.SnapshotRecord{
		CaptureID:   rows[1][0],
		SourceURL:   rows[1][1],
		CaptureDate: domain.DateOnly(day),
	}, nil
}
