package engine

import (
	"fmt"

	"github.com/trustbyte/phishguard/internal/core"
)

// Fixed scoring weights. These encode a legacy classification contract:
// the phishing/safe branch asymmetry and the pivot around 50 are
// intentional and must not be smoothed into a continuous function.
const (
	phishingBase        = 50
	categoryWeight      = 15
	urlBonus            = 20
	punctuationBonus    = 10
	phishingCeiling     = 95
	safeBase            = 50
	safeCategoryPenalty = 10
	safeFloor           = 5
	exclamationLimit    = 3
)

// aggregate combines category and technical signals into the overall
// verdict and derives the red flags.
func aggregate(patterns core.PatternAnalysis, technical core.TechnicalAnalysis) (core.OverallAssessment, []string) {
	total := patterns.TotalScore()
	hasURLs := technical.HasURLs()
	excessive := technical.EmailStructure.ExcessivePunctuation > exclamationLimit

	// Two equally sufficient triggers: many independent weak signals, or
	// a single urgency signal paired with a call-to-action link.
	isPhishing := total >= 2 || (patterns.UrgencyIndicators.Score >= 1 && hasURLs)

	confidence := scoreConfidence(isPhishing, total, hasURLs, excessive, technical)

	label := core.LabelSafe
	if isPhishing {
		label = core.LabelPhishing
	}

	assessment := core.OverallAssessment{
		Label:      label,
		Confidence: confidence,
		RiskLevel:  core.RiskLevelFor(confidence),
		Summary:    summarize(isPhishing, total, patterns.TriggeredCategories()),
	}

	return assessment, redFlags(isPhishing, patterns, technical, excessive)
}

// scoreConfidence implements the two-branch confidence formula. The safe
// branch carries a clean-input floor: with no category hits, no URLs and
// no exclamation marks there is nothing to weigh and the confidence is
// the documented fixed point 5. This keeps confidence monotonically
// non-decreasing in evidence across the whole input space.
func scoreConfidence(isPhishing bool, total int, hasURLs, excessive bool, technical core.TechnicalAnalysis) int {
	if isPhishing {
		confidence := phishingBase + total*categoryWeight
		if hasURLs {
			confidence += urlBonus
		}
		if excessive {
			confidence += punctuationBonus
		}
		if confidence > phishingCeiling {
			confidence = phishingCeiling
		}
		return confidence
	}

	if total == 0 && !hasURLs && technical.EmailStructure.ExcessivePunctuation == 0 {
		return safeFloor
	}

	confidence := safeBase - total*safeCategoryPenalty
	if confidence < safeFloor {
		confidence = safeFloor
	}
	return confidence
}

// summarize builds the templated verdict sentence.
func summarize(isPhishing bool, total, triggered int) string {
	if !isPhishing {
		return "This email appears legitimate with no significant phishing indicators"
	}

	strength := "WEAK"
	switch {
	case total > 3:
		strength = "STRONG"
	case total > 1:
		strength = "MODERATE"
	}

	noun := "categories"
	if triggered == 1 {
		noun = "category"
	}
	return fmt.Sprintf("%s phishing indicators detected across %d suspicious %s", strength, triggered, noun)
}

// redFlags emits the applicable flags in fixed priority order. A safe
// verdict surfaces no flags even when individual signals are present;
// alarming users on a Safe verdict is deliberately avoided.
func redFlags(isPhishing bool, patterns core.PatternAnalysis, technical core.TechnicalAnalysis, excessive bool) []string {
	flags := make([]string, 0, 6)
	if !isPhishing {
		return flags
	}

	if patterns.UrgencyIndicators.Score >= 2 {
		flags = append(flags, "Multiple urgency indicators detected")
	}
	if patterns.ThreatsAndPressure.Score > 0 {
		flags = append(flags, "Threats or pressure tactics used")
	}
	if patterns.FinancialIncentives.Score > 0 {
		flags = append(flags, "Unsolicited financial offers or prizes")
	}
	if technical.HasURLs() {
		flags = append(flags, "Suspicious links present")
	}
	if excessive {
		flags = append(flags, "Excessive exclamation marks")
	}
	if len(technical.EmailStructure.AllCapsWords) > 0 {
		flags = append(flags, "Excessive use of capital letters")
	}
	return flags
}
