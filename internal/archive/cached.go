package archive

import (
	"context"
	"strconv"
	"time"

	"github.com/hindsightlabs/hindsight/internal/domain"
	"github.com/hindsightlabs/hindsight/internal/logger"
	redisstore "github.com/hindsightlabs/hindsight/internal/store/redis"
)

// CachedLocator memoizes Find and Fetch results, negative outcomes
// included: an exhausted window or unavailable content is as expensive
// to recompute as a hit. Cache trouble degrades to the uncached path.
type CachedLocator struct {
	inner Finder
	memo  *redisstore.Store
	ttl   time.Duration
	log   logger.Logger
}

// NewCachedLocator decorates inner with the memoization store.
func NewCachedLocator(inner Finder, memo *redisstore.Store, ttl time.Duration, log logger.Logger) *CachedLocator {
	if ttl <= 0 {
		ttl = redisstore.DefaultSnapshotTTL
	}
	return &CachedLocator{inner: inner, memo: memo, ttl: ttl, log: log}
}

type cachedFind struct {
	Found  bool                   `json:"found"`
	Record *domain.SnapshotRecord `json:"record,omitempty"`
}

type cachedFetch struct {
	Found   bool   `json:"found"`
	Content string `json:"content,omitempty"`
}

func (c *CachedLocator) Find(ctx context.Context, site string, target time.Time, maxOffsetDays int) (*domain.SnapshotRecord, error) {
	if maxOffsetDays <= 0 {
		maxOffsetDays = domain.DefaultMaxOffsetDays
	}
	target = domain.DateOnly(target)
	key := redisstore.MemoKey("locator.find",
		site, target.Format(time.DateOnly), strconv.Itoa(maxOffsetDays))

	var entry cachedFind
	if hit, err := c.memo.Get(ctx, key, &entry); err != nil {
		c.log.Debug("memo get failed, searching uncached", logger.Error(err))
	} else if hit {
		c.log.Debug("snapshot search memo hit",
			logger.String("site", site),
			logger.Bool("found", entry.Found))
		return entry.Record, nil
	}

	rec, err := c.inner.Find(ctx, site, target, maxOffsetDays)
	if err != nil {
		return nil, err
	}

	if err := c.memo.Set(ctx, key, cachedFind{Found: rec != nil, Record: rec}, c.ttl); err != nil {
		c.log.Debug("memo set failed", logger.Error(err))
	}
	return rec, nil
}

func (c *CachedLocator) Fetch(ctx context.Context, captureID, sourceURL string) (*domain.RawCapture, error) {
	key := redisstore.MemoKey("locator.fetch", captureID, sourceURL)

	var entry cachedFetch
	if hit, err := c.memo.Get(ctx, key, &entry); err != nil {
		c.log.Debug("memo get failed, fetching uncached", logger.Error(err))
	} else if hit {
		c.log.Debug("capture fetch memo hit",
			logger.String("capture_id", captureID),
			logger.Bool("found", entry.Found))
		if !entry.Found {
			return nil, nil
		}
		return &domain.RawCapture{CaptureID: captureID, Content: entry.Content}, nil
	}

	capture, err := c.inner.Fetch(ctx, captureID, sourceURL)
	if err != nil {
		return nil, err
	}

	cached := cachedFetch{Found: capture != nil}
	if capture != nil {
		cached.Content = capture.Content
	}
	if err := c.memo.Set(ctx, key, cached, c.ttl); err != nil {
		c.log.Debug("memo set failed", logger.Error(err))
	}
	return capture, nil
}

// CaptureURL is pure and needs no caching.
func (c *CachedLocator) CaptureURL(captureID, sourceURL string) string {
	return c.inner.CaptureURL(captureID, sourceURL)
}
