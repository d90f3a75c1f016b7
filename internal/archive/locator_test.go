package archive

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hindsightlabs/hindsight/internal/domain"
	"github.com/hindsightlabs/hindsight/internal/logger"
	"github.com/hindsightlabs/hindsight/internal/retry"
)

// cdxStub is an archive index that answers exact-date queries from a
// fixed capture table and records the probe order.
type cdxStub struct {
	mu       sync.Mutex
	captures map[string]string // yyyymmdd -> capture id
	probes   []string
	failFor  map[string]int // yyyymmdd -> HTTP status to return
}

func (s *cdxStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day := r.URL.Query().Get("from")

		s.mu.Lock()
		s.probes = append(s.probes, day)
		status, fail := s.failFor[day]
		id, ok := s.captures[day]
		s.mu.Unlock()

		if fail {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = fmt.Fprintf(w, `[["timestamp","original"],["%s","https://example.com/"]]`, id)
	}
}

func (s *cdxStub) probeOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.probes...)
}

func fastOptions(cdxURL, waybackURL string) Options {
	return Options{
		CDXBaseURL:     cdxURL,
		WaybackBaseURL: waybackURL,
		RequestDelay:   time.Millisecond,
		RequestTimeout: 5 * time.Second,
		Retry: retry.Policy{
			MaxAttempts:     2,
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
			Multiplier:      2,
		},
	}
}

func TestFindProbesInRingOrder(t *testing.T) {
	target := domain.Date(2023, time.November, 24)
	stub := &cdxStub{captures: map[string]string{
		"20231125": "20231125000000", // D+1
		"20231123": "20231123000000", // D-1 — nearer probes win by order, not by existence
	}}
	ts := httptest.NewServer(stub.handler())
	defer ts.Close()

	l := NewLocator(fastOptions(ts.URL, ""), logger.NewNop())
	rec, err := l.Find(context.Background(), "asos.com", target, 2)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if rec == nil {
		t.Fatal("Find() = nil, want record")
	}
	if rec.CaptureID != "20231125000000" {
		t.Errorf("CaptureID = %q, want the D+1 capture", rec.CaptureID)
	}
	if !rec.CaptureDate.Equal(domain.Date(2023, time.November, 25)) {
		t.Errorf("CaptureDate = %v, want 2023-11-25", rec.CaptureDate)
	}

	wantProbes := []string{"20231124", "20231125"}
	got := stub.probeOrder()
	if len(got) != len(wantProbes) {
		t.Fatalf("probes = %v, want %v", got, wantProbes)
	}
	for i := range wantProbes {
		if got[i] != wantProbes[i] {
			t.Fatalf("probes = %v, want %v", got, wantProbes)
		}
	}
}

func TestFindExhaustsWindow(t *testing.T) {
	target := domain.Date(2023, time.November, 24)
	stub := &cdxStub{captures: map[string]string{}}
	ts := httptest.NewServer(stub.handler())
	defer ts.Close()

	l := NewLocator(fastOptions(ts.URL, ""), logger.NewNop())
	rec, err := l.Find(context.Background(), "asos.com", target, 2)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if rec != nil {
		t.Fatalf("Find() = %+v, want nil on exhausted window", rec)
	}

	wantProbes := []string{"20231124", "20231125", "20231123", "20231126", "20231122"}
	got := stub.probeOrder()
	if strings.Join(got, ",") != strings.Join(wantProbes, ",") {
		t.Errorf("probes = %v, want full ring %v", got, wantProbes)
	}
}

func TestFindSkipsFailingOffset(t *testing.T) {
	target := domain.Date(2023, time.November, 24)
	stub := &cdxStub{
		captures: map[string]string{"20231125": "20231125000000"},
		failFor:  map[string]int{"20231124": http.StatusInternalServerError},
	}
	ts := httptest.NewServer(stub.handler())
	defer ts.Close()

	l := NewLocator(fastOptions(ts.URL, ""), logger.NewNop())
	rec, err := l.Find(context.Background(), "asos.com", target, 2)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if rec == nil || rec.CaptureID != "20231125000000" {
		t.Fatalf("Find() = %+v, want D+1 capture after skipping failed target probe", rec)
	}
}

func TestFindDefaultWindow(t *testing.T) {
	stub := &cdxStub{captures: map[string]string{}}
	ts := httptest.NewServer(stub.handler())
	defer ts.Close()

	l := NewLocator(fastOptions(ts.URL, ""), logger.NewNop())
	if _, err := l.Find(context.Background(), "asos.com", domain.Date(2023, time.June, 1), 0); err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got := len(stub.probeOrder()); got != 2*domain.DefaultMaxOffsetDays+1 {
		t.Errorf("probe count = %d, want %d", got, 2*domain.DefaultMaxOffsetDays+1)
	}
}

func TestFetch(t *testing.T) {
	validBody := "<html><body>" + strings.Repeat("x", 600) + "</body></html>"

	tests := []struct {
		name    string
		status  int
		body    string
		wantHit bool
	}{
		{"valid capture", http.StatusOK, validBody, true},
		{"too short body", http.StatusOK, "0123456789", false},
		{"long body without root marker", http.StatusOK, strings.Repeat("y", 2000), false},
		{"not found", http.StatusNotFound, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			l := NewLocator(fastOptions("", ts.URL), logger.NewNop())
			capture, err := l.Fetch(context.Background(), "20231124000000", "https://asos.com/")
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if (capture != nil) != tt.wantHit {
				t.Fatalf("Fetch() = %+v, wantHit %v", capture, tt.wantHit)
			}
			if tt.wantHit && capture.Content != tt.body {
				t.Errorf("Content length = %d, want %d", len(capture.Content), len(tt.body))
			}
		})
	}
}

func TestFetchTransportFailureIsAbsent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	l := NewLocator(fastOptions("", ts.URL), logger.NewNop())
	capture, err := l.Fetch(context.Background(), "20231124000000", "https://asos.com/")
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil", err)
	}
	if capture != nil {
		t.Errorf("Fetch() = %+v, want nil on transport failure", capture)
	}
}

func TestCaptureURL(t *testing.T) {
	l := NewLocator(Options{RequestDelay: time.Millisecond}, logger.NewNop())

	got := l.CaptureURL("20231124000000", "https://asos.com/sale?x=1&y=2")
	want := "https://web.archive.org/web/20231124000000/https%3A%2F%2Fasos.com%2Fsale%3Fx%3D1%26y%3D2"
	if got != want {
		t.Errorf("CaptureURL() = %q, want %q", got, want)
	}

	// Byte-stable across calls.
	if again := l.CaptureURL("20231124000000", "https://asos.com/sale?x=1&y=2"); again != got {
		t.Errorf("CaptureURL() unstable: %q vs %q", again, got)
	}
}
