package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesTarget(t *testing.T) {
	tests := []struct {
		name    string
		targets []string
		pageURL string
		want    bool
	}{
		{
			name:    "empty list matches everywhere",
			targets: nil,
			pageURL: "https://shop.example.com/anything",
			want:    true,
		},
		{
			name:    "exact path match",
			targets: []string{"/offers/summer"},
			pageURL: "https://shop.example.com/offers/summer",
			want:    true,
		},
		{
			name:    "exact path with trailing slash",
			targets: []string{"/offers/summer"},
			pageURL: "https://shop.example.com/offers/summer/",
			want:    true,
		},
		{
			name:    "prefix pattern match",
			targets: []string{"/offers/*"},
			pageURL: "https://shop.example.com/offers/summer-sale",
			want:    true,
		},
		{
			name:    "prefix pattern rejects other paths",
			targets: []string{"/offers/*"},
			pageURL: "https://shop.example.com/pricing",
			want:    false,
		},
		{
			name:    "full url target",
			targets: []string{"https://shop.example.com/landing"},
			pageURL: "https://shop.example.com/landing",
			want:    true,
		},
		{
			name:    "scheme difference still matches",
			targets: []string{"https://shop.example.com/landing"},
			pageURL: "http://shop.example.com/landing",
			want:    true,
		},
		{
			name:    "full url prefix pattern",
			targets: []string{"https://shop.example.com/offers/*"},
			pageURL: "https://shop.example.com/offers/flash",
			want:    true,
		},
		{
			name:    "no match across targets",
			targets: []string{"/pricing", "/about"},
			pageURL: "https://shop.example.com/offers",
			want:    false,
		},
		{
			name:    "second target matches",
			targets: []string{"/pricing", "/offers"},
			pageURL: "https://shop.example.com/offers",
			want:    true,
		},
		{
			name:    "blank entries are skipped",
			targets: []string{"", "  ", "/offers"},
			pageURL: "https://shop.example.com/offers",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesTarget(tt.targets, tt.pageURL))
		})
	}
}

func TestCampaignConfig_MatchesPage(t *testing.T) {
	config := CampaignConfig{TargetPages: []string{"/offers/*"}}

	assert.True(t, config.MatchesPage("https://shop.example.com/offers/summer"))
	assert.False(t, config.MatchesPage("https://shop.example.com/pricing"))
}
