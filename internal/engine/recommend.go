package engine

import "github.com/trustbyte/phishguard/internal/core"

// recommend maps the verdict to the fixed advisory list. There is no
// category-specific tailoring beyond the phishing/safe branch; finer
// tailoring is an extension point, not current behavior.
func recommend(isPhishing bool) []string {
	if isPhishing {
		return core.PhishingRecommendations()
	}
	return core.SafeRecommendations()
}
