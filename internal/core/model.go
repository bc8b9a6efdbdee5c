package core

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Email represents an email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// ContentKey returns a stable cache key for the analyzable content of an
// email. Reports are a pure function of subject and body, so the key
// ignores sender and headers.
func (e *Email) ContentKey() string {
	h := sha256.New()
	h.Write([]byte(e.Subject))
	h.Write([]byte{0})
	h.Write([]byte(e.Body))
	return hex.EncodeToString(h.Sum(nil))
}

// Labels for the overall assessment.
const (
	LabelPhishing = "Phishing"
	LabelSafe     = "Safe"
)

// Risk bands derived from confidence.
const (
	RiskSafe   = "SAFE"
	RiskLow    = "LOW RISK"
	RiskMedium = "MEDIUM RISK"
	RiskHigh   = "HIGH RISK"
)

// RiskLevelFor maps a 0-100 confidence to its discrete risk band.
// The bands are closed-open except the top one.
func RiskLevelFor(confidence int) string {
	switch {
	case confidence >= 80:
		return RiskHigh
	case confidence >= 60:
		return RiskMedium
	case confidence >= 40:
		return RiskLow
	default:
		return RiskSafe
	}
}

// OverallAssessment is the aggregated verdict for an email.
type OverallAssessment struct {
	Label      string `json:"label"`
	Confidence int    `json:"confidence"`
	RiskLevel  string `json:"risk_level"`
	Summary    string `json:"summary"`
}

// PatternMatch holds the result of matching one category lexicon.
type PatternMatch struct {
	Score         int      `json:"score"`
	PatternsFound []string `json:"patterns_found"`
	Explanation   string   `json:"explanation"`
}

// PatternAnalysis holds per-category lexicon results. Every category is
// always present, even at score zero, so the wire shape is stable.
type PatternAnalysis struct {
	UrgencyIndicators   PatternMatch `json:"urgency_indicators"`
	AuthorityClaims     PatternMatch `json:"authority_claims"`
	FinancialIncentives PatternMatch `json:"financial_incentives"`
	ActionRequirements  PatternMatch `json:"action_requirements"`
	SocialEngineering   PatternMatch `json:"social_engineering"`
	ThreatsAndPressure  PatternMatch `json:"threats_and_pressure"`
}

// TotalScore sums the six category scores.
func (p *PatternAnalysis) TotalScore() int {
	return p.UrgencyIndicators.Score +
		p.AuthorityClaims.Score +
		p.FinancialIncentives.Score +
		p.ActionRequirements.Score +
		p.SocialEngineering.Score +
		p.ThreatsAndPressure.Score
}

// TriggeredCategories counts categories with a non-zero score.
func (p *PatternAnalysis) TriggeredCategories() int {
	n := 0
	for _, m := range []PatternMatch{
		p.UrgencyIndicators,
		p.AuthorityClaims,
		p.FinancialIncentives,
		p.ActionRequirements,
		p.SocialEngineering,
		p.ThreatsAndPressure,
	} {
		if m.Score > 0 {
			n++
		}
	}
	return n
}

// URLAnalysis describes the URLs extracted from the email text.
type URLAnalysis struct {
	TotalURLs      int      `json:"total_urls"`
	SuspiciousURLs []string `json:"suspicious_urls"`
	ShortenedURLs  []string `json:"shortened_urls"`
	Explanation    string   `json:"explanation"`
}

// StructureAnalysis describes structural signals of the email text.
type StructureAnalysis struct {
	SubjectLength        int      `json:"subject_length"`
	BodyLength           int      `json:"body_length"`
	ExcessivePunctuation int      `json:"excessive_punctuation"`
	AllCapsWords         []string `json:"all_caps_words"`
	SuspiciousFormatting []string `json:"suspicious_formatting"`
	Explanation          string   `json:"explanation"`
}

// LanguageAnalysis is a heuristic proxy for language quality. It is driven
// by the pattern and punctuation signals, not by grammar checking.
type LanguageAnalysis struct {
	SuspiciousPatterns []string `json:"suspicious_patterns"`
	QualityScore       int      `json:"quality_score"`
	Explanation        string   `json:"explanation"`
}

// TechnicalAnalysis groups the non-lexicon signals.
type TechnicalAnalysis struct {
	URLsAndLinks    URLAnalysis       `json:"urls_and_links"`
	EmailStructure  StructureAnalysis `json:"email_structure"`
	LanguageQuality LanguageAnalysis  `json:"language_quality"`
}

// HasURLs reports whether any URL was extracted.
func (t *TechnicalAnalysis) HasURLs() bool {
	return t.URLsAndLinks.TotalURLs > 0
}

// AnalysisReport is the full result of analyzing one email. Field names
// and nesting are a wire contract consumed by external renderers and
// history storage; do not rename.
type AnalysisReport struct {
	OverallAssessment OverallAssessment `json:"overall_assessment"`
	PatternAnalysis   PatternAnalysis   `json:"pattern_analysis"`
	TechnicalAnalysis TechnicalAnalysis `json:"technical_analysis"`
	Recommendations   []string          `json:"recommendations"`
	RedFlags          []string          `json:"red_flags"`
}

// IsPhishing reports whether the overall verdict is phishing.
func (r *AnalysisReport) IsPhishing() bool {
	return r.OverallAssessment.Label == LabelPhishing
}

// PhishingRecommendations returns the fixed advisory list for a phishing
// verdict. Order is display priority. A fresh slice is returned so
// callers cannot mutate the canonical list.
func PhishingRecommendations() []string {
	return []string{
		"Do not click any links in this email",
		"Do not provide personal or financial information",
		"Do not download or open any attachments",
		"Delete this email immediately",
		"Report this email as phishing to your email provider",
		"Verify any claims directly through official channels",
	}
}

// SafeRecommendations returns the fixed advisory list for a safe verdict.
func SafeRecommendations() []string {
	return []string{
		"This email appears to be safe",
		"Always verify sender identity before taking action",
		"Be cautious with links, even in legitimate emails",
	}
}

// RemoteAssessment is the verdict from a remote classifier used as a
// second opinion on top of the deterministic engine.
type RemoteAssessment struct {
	IsPhishing  bool
	Confidence  int
	Explanation string
	ModelUsed   string
	AnalyzedAt  time.Time
}

// CacheEntry stores a report keyed by email content.
type CacheEntry struct {
	ContentKey string
	Report     *AnalysisReport
	LastSeen   time.Time
	ExpiresAt  time.Time
}
