// Package archive locates and retrieves archived captures of a site
// near a target date. The search is an expanding ring over calendar
// days, sequential and paced to respect the archive's fair-use
// expectations; domain-level misses are absent results, never errors.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hindsightlabs/hindsight/internal/domain"
	"github.com/hindsightlabs/hindsight/internal/logger"
	"github.com/hindsightlabs/hindsight/internal/retry"
	"github.com/hindsightlabs/hindsight/internal/utils"
)

const (
	// DefaultWaybackBaseURL prefixes capture content and share links.
	DefaultWaybackBaseURL = "https://web.archive.org/web"
	// DefaultRequestDelay is the minimum spacing between requests to
	// the archive. Fixed policy of the locator, not per-call.
	DefaultRequestDelay = 500 * time.Millisecond

	// captureBodyLimit bounds how much capture content is read.
	captureBodyLimit = 8 << 20
)

// Finder is the locator surface consumed by callers; the cache
// decorator implements it too.
type Finder interface {
	Find(ctx context.Context, site string, target time.Time, maxOffsetDays int) (*domain.SnapshotRecord, error)
	Fetch(ctx context.Context, captureID, sourceURL string) (*domain.RawCapture, error)
	CaptureURL(captureID, sourceURL string) string
}

// Options configures a Locator.
type Options struct {
	CDXBaseURL     string
	WaybackBaseURL string
	UserAgent      string
	RequestDelay   time.Duration
	RequestTimeout time.Duration
	Retry          retry.Policy
	// Validation decides whether fetched content is usable. It is a
	// func so a rules reload takes effect without rebuilding the
	// locator; nil means the built-in defaults.
	Validation func() domain.ValidationPolicy
}

// Locator implements the expanding-ring snapshot search against a
// remote archive index. Single-threaded per call: probes and the final
// fetch are sequential, paced by a shared limiter.
type Locator struct {
	index       *IndexClient
	http        *http.Client
	waybackBase string
	userAgent   string
	limiter     *rate.Limiter
	policy      func() domain.ValidationPolicy
	retry       retry.Policy
	log         logger.Logger
}

// NewLocator builds a locator from opts.
func NewLocator(opts Options, log logger.Logger) *Locator {
	if opts.WaybackBaseURL == "" {
		opts.WaybackBaseURL = DefaultWaybackBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RequestDelay <= 0 {
		opts.RequestDelay = DefaultRequestDelay
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultPolicy()
	}
	policy := opts.Validation
	if policy == nil {
		def := domain.DefaultValidationPolicy()
		policy = func() domain.ValidationPolicy { return def }
	}

	return &Locator{
		index:       NewIndexClient(opts.CDXBaseURL, opts.UserAgent, opts.RequestTimeout),
		http:        &http.Client{Timeout: opts.RequestTimeout},
		waybackBase: strings.TrimRight(opts.WaybackBaseURL, "/"),
		userAgent:   opts.UserAgent,
		limiter:     rate.NewLimiter(rate.Every(opts.RequestDelay), 1),
		policy:      policy,
		retry:       opts.Retry,
		log:         log,
	}
}

// Find probes the archive index for the capture of site nearest to
// target, within ±maxOffsetDays (the default window when <= 0). The
// first offset with a hit wins; an exhausted window returns nil.
func (l *Locator) Find(ctx context.Context, site string, target time.Time, maxOffsetDays int) (*domain.SnapshotRecord, error) {
	if maxOffsetDays <= 0 {
		maxOffsetDays = domain.DefaultMaxOffsetDays
	}
	target = domain.DateOnly(target)

	for _, offset := range OffsetSequence(maxOffsetDays) {
		day := target.AddDate(0, 0, offset)

		l.log.Debug("probing archive index",
			logger.String("site", site),
			logger.Time("date", day))

		rec, err := retry.Do(ctx, l.retry, func() (*domain.SnapshotRecord, error) {
			if err := l.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			return l.index.Lookup(ctx, site, day)
		})
		if err != nil {
			if ctxDone(err) {
				return nil, err
			}
			// A failed probe does not fail the window; the next
			// offset may still hit.
			l.log.Warn("index probe failed, skipping offset",
				logger.String("site", site),
				logger.Time("date", day),
				logger.Error(err))
			continue
		}
		if rec != nil {
			l.log.Info("found snapshot",
				logger.String("site", site),
				logger.String("capture_id", rec.CaptureID),
				logger.Time("date", day),
				logger.Int("offset_days", offset))
			return rec, nil
		}
	}

	l.log.Info("search window exhausted, no snapshot",
		logger.String("site", site),
		logger.Time("target", target),
		logger.Int("max_offset_days", maxOffsetDays))
	return nil, nil
}

// Fetch retrieves the full document body of a capture and validates
// it. Transport failures, bad statuses, and content failing validation
// are all "content unavailable": an absent result, not an error.
// Errors are returned only for context cancellation.
func (l *Locator) Fetch(ctx context.Context, captureID, sourceURL string) (*domain.RawCapture, error) {
	captureURL := l.CaptureURL(captureID, sourceURL)

	body, err := retry.Do(ctx, l.retry, func() (string, error) {
		if err := l.limiter.Wait(ctx); err != nil {
			return "", err
		}
		return l.fetchOnce(ctx, captureURL)
	})
	if err != nil {
		if ctxDone(err) {
			return nil, err
		}
		l.log.Warn("capture fetch failed",
			logger.String("capture_id", captureID),
			logger.Error(err))
		return nil, nil
	}

	if !l.policy().Valid(body) {
		l.log.Warn("capture content failed validation",
			logger.String("capture_id", captureID),
			logger.Int("length", len(body)))
		return nil, nil
	}

	return &domain.RawCapture{CaptureID: captureID, Content: body}, nil
}

func (l *Locator) fetchOnce(ctx context.Context, captureURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, captureURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build capture request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := l.http.Do(req)
	if err != nil {
		return "", retry.Transient(fmt.Errorf("capture request failed: %w", err))
	}
	defer utils.Close(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, captureBodyLimit))
	if err != nil {
		return "", retry.Transient(fmt.Errorf("failed to read capture body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("capture returned status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", retry.Transient(err)
		}
		return "", err
	}

	return string(body), nil
}

// CaptureURL derives the public, shareable link to a capture. Pure
// function of its inputs: the same (captureID, sourceURL) pair always
// yields the same string, regardless of fetch outcome.
func (l *Locator) CaptureURL(captureID, sourceURL string) string {
	return l.waybackBase + "/" + captureID + "/" + escapeAll(sourceURL)
}

// escapeAll percent-encodes every reserved character of s, including
// '/' and ':', so the original URL embeds as a single path segment.
func escapeAll(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func ctxDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
