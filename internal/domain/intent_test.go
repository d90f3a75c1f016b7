package domain

import "testing"

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "plain domain",
			query: "what was asos.com promoting last year",
			want:  "asos.com",
		},
		{
			name:  "subdomain",
			query: "check shop.example.co.uk offers",
			want:  "shop.example.co.uk",
		},
		{
			name:  "hyphenated label",
			query: "how did look-fantastic.com handle christmas",
			want:  "look-fantastic.com",
		},
		{
			name:  "first match wins",
			query: "compare asos.com with zara.com",
			want:  "asos.com",
		},
		{
			name:  "no domain present",
			query: "what was promoted last black friday",
			want:  "",
		},
		{
			name:  "single label is not a domain",
			query: "tell me about amazon",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDomain(tt.query); got != tt.want {
				t.Errorf("ExtractDomain(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestClassifyFocus(t *testing.T) {
	kw := DefaultFocusKeywords()

	tests := []struct {
		name  string
		query string
		want  Focus
	}{
		{
			name:  "promotion keyword",
			query: "What discounts did asos.com run last year?",
			want:  FocusPromotions,
		},
		{
			name:  "product keyword",
			query: "what items was zara.com selling in 2022",
			want:  FocusProducts,
		},
		{
			name:  "delivery keyword",
			query: "shipping options on amazon.com last christmas",
			want:  FocusDelivery,
		},
		{
			name:  "promotions wins over delivery",
			query: "free shipping promo on asos.com",
			want:  FocusPromotions,
		},
		{
			name:  "no keyword",
			query: "what did asos.com look like last year",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyFocus(tt.query, kw); got != tt.want {
				t.Errorf("ClassifyFocus(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestValidationPolicy(t *testing.T) {
	policy := DefaultValidationPolicy()
	longBody := "<html><body>" + string(make([]byte, 600)) + "</body></html>"

	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			name: "valid document",
			body: longBody,
			want: true,
		},
		{
			name: "too short even with marker",
			body: "<html></html>",
			want: false,
		},
		{
			name: "short garbage",
			body: "0123456789",
			want: false,
		},
		{
			name: "long body without marker",
			body: string(make([]byte, 2000)),
			want: false,
		},
		{
			name: "marker case-insensitive",
			body: "<HTML>" + string(make([]byte, 600)),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Valid(tt.body); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationPolicyMarkerWindow(t *testing.T) {
	policy := ValidationPolicy{MinLength: 10, RootMarker: "<html", MarkerWindow: 64}

	// Marker beyond the window does not count.
	body := string(make([]byte, 100)) + "<html>"
	if policy.Valid(body) {
		t.Error("Valid() = true for marker outside window, want false")
	}
}
