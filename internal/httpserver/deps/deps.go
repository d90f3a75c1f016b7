package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hindsightlabs/hindsight/internal/archive"
	"github.com/hindsightlabs/hindsight/internal/logger"
	"github.com/hindsightlabs/hindsight/internal/rules"
	redisstore "github.com/hindsightlabs/hindsight/internal/store/redis"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time  // for testing, defaults to time.Now
	TrustProxy    bool              // true if running behind a trusted reverse proxy
	RedisClient   *redis.Client     // nil when memoization is disabled
	Memo          *redisstore.Store // nil when memoization is disabled
	ResolutionTTL time.Duration     // expiry for memoized resolutions
	Rules         *rules.Holder     // active ruleset and resolver
	RulesFile     string            // path to the rules file ("" = built-in defaults)
	Locator       archive.Finder    // snapshot search and capture retrieval
	MaxOffsetDays int               // half-width of the snapshot search window
	ReloadTrigger chan struct{}     // Channel to trigger manual rules reload
}

// Now returns the injected clock, or the wall clock when none is set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
