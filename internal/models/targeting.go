package models

import (
	"net/url"
	"strings"
)

// MatchesTarget reports whether a page URL is covered by a campaign's
// target list. An empty list means the campaign runs everywhere. Entries
// match either the full URL or just the path, and a trailing "*" turns an
// entry into a prefix pattern ("/offers/*").
func MatchesTarget(targets []string, pageURL string) bool {
	if len(targets) == 0 {
		return true
	}

	normalized := normalizePageURL(pageURL)
	path := pagePath(pageURL)

	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if pattern, ok := strings.CutSuffix(target, "*"); ok {
			if strings.HasPrefix(normalized, normalizePageURL(pattern)) ||
				(path != "" && strings.HasPrefix(path, pattern)) {
				return true
			}
			continue
		}
		if normalized == normalizePageURL(target) || (path != "" && path == target) {
			return true
		}
	}
	return false
}

// MatchesPage reports whether the campaign is allowed to render on the
// given page URL
func (c *Campaign) MatchesPage(pageURL string) bool {
	return MatchesTarget(c.TargetURLs, pageURL)
}

// MatchesPage reports whether the widget should render on the given page
func (cc *CampaignConfig) MatchesPage(pageURL string) bool {
	return MatchesTarget(cc.TargetPages, pageURL)
}

// normalizePageURL strips scheme differences and trailing slashes so that
// http://x/a/ and https://x/a compare equal
func normalizePageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "https://")
	raw = strings.TrimPrefix(raw, "http://")
	return strings.TrimSuffix(raw, "/")
}

// pagePath extracts the path component of a page URL, or "" when the value
// is not an absolute URL
func pagePath(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Path == "" {
		return ""
	}
	return strings.TrimSuffix(u.Path, "/")
}
