package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hindsightlabs/hindsight/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Holidays   *int   `json:"holidays,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	ServiceMode string                     `json:"service_mode"`
	Components  map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rs := d.Rules.Ruleset()
		holidays := len(rs.Holidays)

		components := map[string]componentStatus{
			"rules": {
				OK:         true,
				LastReload: d.Rules.LoadedAt().Format("2006-01-02 15:04:05"),
				Holidays:   &holidays,
			},
			"redis": checkRedis(d),
			"archive": {
				OK:   true,
				Mode: "expanding-ring",
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			ServiceMode: determineServiceMode(components),
			Components:  components,
		})
	}
}

func determineServiceMode(components map[string]componentStatus) string {
	// Redis down means every lookup hits upstream: degraded, not broken.
	if redis, exists := components["redis"]; exists && !redis.OK && redis.Mode != "disabled" {
		return "degraded"
	}
	return "optimal"
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "memoization-disabled",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "memoization-disabled",
			Error:  "timeout",
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "memoization-enabled",
	}
}
