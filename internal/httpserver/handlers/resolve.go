package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/hindsightlabs/hindsight/internal/httpserver/deps"
)

type resolveResponse struct {
	Query      string `json:"query"`
	Domain     string `json:"domain,omitempty"`
	Focus      string `json:"focus"`
	DateSource string `json:"date_source"`
	TargetDate string `json:"target_date"`
}

// Resolve runs only the resolution stage: query in, intent out, no
// archive traffic.
func Resolve(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeError(w, http.StatusBadRequest, "missing query parameter q")
			return
		}

		intent := resolveIntent(r.Context(), d, query)

		writeJSON(w, http.StatusOK, resolveResponse{
			Query:      query,
			Domain:     intent.Domain,
			Focus:      string(focusOrGeneral(intent.Focus)),
			DateSource: string(intent.Source),
			TargetDate: intent.TargetDate.Format(time.DateOnly),
		})
	}
}
