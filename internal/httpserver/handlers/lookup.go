package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hindsightlabs/hindsight/internal/domain"
	"github.com/hindsightlabs/hindsight/internal/httpserver/deps"
	"github.com/hindsightlabs/hindsight/internal/logger"
	redisstore "github.com/hindsightlabs/hindsight/internal/store/redis"
)

type lookupResponse struct {
	Query         string `json:"query"`
	Domain        string `json:"domain"`
	Focus         string `json:"focus"`
	DateSource    string `json:"date_source"`
	TargetDate    string `json:"target_date"`
	FoundDate     string `json:"found_date"`
	CaptureID     string `json:"capture_id"`
	WaybackURL    string `json:"wayback_url"`
	ContentLength int    `json:"content_length"`
	Content       string `json:"content,omitempty"`
}

type errorResponse struct {
	Error      string `json:"error"`
	WaybackURL string `json:"wayback_url,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Lookup resolves the query to a (domain, date) intent, searches the
// archive for the nearest capture, and retrieves its content.
func Lookup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeError(w, http.StatusBadRequest, "missing query parameter q")
			return
		}

		intent := resolveIntent(ctx, d, query)
		if intent.Domain == "" {
			writeError(w, http.StatusBadRequest,
				"no website domain found in the query; include one, e.g. \"asos.com promotions last christmas\"")
			return
		}

		d.Logger.Info("lookup request",
			logger.String("query", query),
			logger.String("domain", intent.Domain),
			logger.Time("target_date", intent.TargetDate),
			logger.String("source", string(intent.Source)))

		rec, err := d.Locator.Find(ctx, intent.Domain, intent.TargetDate, d.MaxOffsetDays)
		if err != nil {
			d.Logger.Error("snapshot search failed", logger.Error(err))
			writeError(w, http.StatusBadGateway, "archive search failed, please retry")
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound,
				"no snapshot found near this date; try a different date or domain")
			return
		}

		waybackURL := d.Locator.CaptureURL(rec.CaptureID, rec.SourceURL)

		capture, err := d.Locator.Fetch(ctx, rec.CaptureID, rec.SourceURL)
		if err != nil {
			d.Logger.Error("capture fetch failed", logger.Error(err))
			writeError(w, http.StatusBadGateway, "capture retrieval failed, please retry")
			return
		}
		if capture == nil {
			writeJSON(w, http.StatusBadGateway, errorResponse{
				Error:      "snapshot exists but its content is unavailable; the capture can still be viewed directly",
				WaybackURL: waybackURL,
			})
			return
		}

		resp := lookupResponse{
			Query:         query,
			Domain:        intent.Domain,
			Focus:         string(focusOrGeneral(intent.Focus)),
			DateSource:    string(intent.Source),
			TargetDate:    intent.TargetDate.Format(time.DateOnly),
			FoundDate:     rec.CaptureDate.Format(time.DateOnly),
			CaptureID:     rec.CaptureID,
			WaybackURL:    waybackURL,
			ContentLength: len(capture.Content),
		}
		if r.URL.Query().Get("include_content") == "1" {
			resp.Content = capture.Content
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func focusOrGeneral(f domain.Focus) domain.Focus {
	if f == "" {
		return domain.FocusGeneral
	}
	return f
}

// memoIntent is the wire form of a resolved intent in the memo store.
type memoIntent struct {
	Domain     string        `json:"domain"`
	TargetDate time.Time     `json:"target_date"`
	Focus      domain.Focus  `json:"focus"`
	Source     domain.Source `json:"source"`
}

// resolveIntent resolves query through the active ruleset, memoized per
// calendar day since resolutions are relative to "now". Cache trouble
// degrades to an uncached resolve.
func resolveIntent(ctx context.Context, d deps.Deps, query string) domain.Intent {
	now := d.Now()
	if d.Memo == nil {
		return d.Rules.Resolver().Resolve(ctx, query, now)
	}

	key := redisstore.MemoKey("resolver.resolve", query, now.Format(time.DateOnly))

	var entry memoIntent
	if hit, err := d.Memo.Get(ctx, key, &entry); err != nil {
		d.Logger.Debug("memo get failed, resolving uncached", logger.Error(err))
	} else if hit {
		return domain.Intent{
			Domain:     entry.Domain,
			TargetDate: entry.TargetDate,
			Focus:      entry.Focus,
			Source:     entry.Source,
		}
	}

	intent := d.Rules.Resolver().Resolve(ctx, query, now)

	stored := memoIntent{
		Domain:     intent.Domain,
		TargetDate: intent.TargetDate,
		Focus:      intent.Focus,
		Source:     intent.Source,
	}
	if err := d.Memo.Set(ctx, key, stored, d.ResolutionTTL); err != nil {
		d.Logger.Debug("memo set failed", logger.Error(err))
	}
	return intent
}
