package rules

import (
	"sync/atomic"
	"time"

	"github.com/hindsightlabs/hindsight/internal/domain"
	"github.com/hindsightlabs/hindsight/internal/logger"
	"github.com/hindsightlabs/hindsight/internal/temporal"
)

// Holder publishes the active ruleset and the resolver built from it.
// Reads are lock-free; a reload swaps the whole snapshot at once so a
// request never sees a half-updated ruleset.
type Holder struct {
	inferrer temporal.Inferencer
	log      logger.Logger
	cur      atomic.Pointer[active]
}

type active struct {
	ruleset  domain.Ruleset
	resolver *temporal.Resolver
	loadedAt time.Time
}

// NewHolder starts with the built-in defaults. inferrer may be nil.
func NewHolder(inferrer temporal.Inferencer, log logger.Logger) *Holder {
	h := &Holder{inferrer: inferrer, log: log}
	h.Swap(domain.DefaultRuleset())
	return h
}

// Swap replaces the active ruleset and rebuilds the resolver.
func (h *Holder) Swap(rs domain.Ruleset) {
	h.cur.Store(&active{
		ruleset:  rs,
		resolver: temporal.NewResolver(rs, h.inferrer, h.log),
		loadedAt: time.Now(),
	})
}

// Resolver returns the resolver for the active ruleset.
func (h *Holder) Resolver() *temporal.Resolver {
	return h.cur.Load().resolver
}

// Ruleset returns the active ruleset.
func (h *Holder) Ruleset() domain.Ruleset {
	return h.cur.Load().ruleset
}

// Validation returns the active content-validation policy.
func (h *Holder) Validation() domain.ValidationPolicy {
	return h.cur.Load().ruleset.Validation
}

// LoadedAt returns when the active ruleset was installed.
func (h *Holder) LoadedAt() time.Time {
	return h.cur.Load().loadedAt
}
