package engine

import (
	"strings"

	"github.com/trustbyte/phishguard/internal/core"
)

// matchCategories scans the lowercased text against all six lexicons.
// A category's score is the count of distinct lexicon phrases present;
// repeated occurrences of one phrase count once. Matching is literal
// substring containment, not word-boundary matching: "urgently" contains
// "urgent" and counts as a hit. This mirrors the observed heuristic and
// is a fixed behavioral choice, not an oversight.
func matchCategories(lower string) core.PatternAnalysis {
	results := make([]core.PatternMatch, len(lexicons))
	for i, lex := range lexicons {
		results[i] = matchLexicon(lower, lex)
	}

	return core.PatternAnalysis{
		UrgencyIndicators:   results[categoryUrgency],
		AuthorityClaims:     results[categoryAuthority],
		FinancialIncentives: results[categoryFinancial],
		ActionRequirements:  results[categoryAction],
		SocialEngineering:   results[categorySocial],
		ThreatsAndPressure:  results[categoryThreats],
	}
}

func matchLexicon(lower string, lex lexicon) core.PatternMatch {
	found := make([]string, 0, len(lex.phrases))
	for _, phrase := range lex.phrases {
		if strings.Contains(lower, phrase) {
			found = append(found, phrase)
		}
	}
	return core.PatternMatch{
		Score:         len(found),
		PatternsFound: found,
		Explanation:   lex.explanation,
	}
}

// subjectHasAlertLanguage reports whether the lowercased subject alone
// contains any urgency or authority phrase. Used for the structural
// "Urgent/alert language in subject" formatting flag.
func subjectHasAlertLanguage(lowerSubject string) bool {
	for _, lex := range lexicons {
		if lex.cat != categoryUrgency && lex.cat != categoryAuthority {
			continue
		}
		for _, phrase := range lex.phrases {
			if strings.Contains(lowerSubject, phrase) {
				return true
			}
		}
	}
	return false
}
