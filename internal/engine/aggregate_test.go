package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trustbyte/phishguard/internal/core"
)

func patternsWithScores(urgency, authority, financial, action, social, threats int) core.PatternAnalysis {
	return core.PatternAnalysis{
		UrgencyIndicators:   core.PatternMatch{Score: urgency, PatternsFound: []string{}},
		AuthorityClaims:     core.PatternMatch{Score: authority, PatternsFound: []string{}},
		FinancialIncentives: core.PatternMatch{Score: financial, PatternsFound: []string{}},
		ActionRequirements:  core.PatternMatch{Score: action, PatternsFound: []string{}},
		SocialEngineering:   core.PatternMatch{Score: social, PatternsFound: []string{}},
		ThreatsAndPressure:  core.PatternMatch{Score: threats, PatternsFound: []string{}},
	}
}

func technicalWith(urls int, exclamations int, capsWords []string) core.TechnicalAnalysis {
	return core.TechnicalAnalysis{
		URLsAndLinks: core.URLAnalysis{
			TotalURLs:      urls,
			SuspiciousURLs: []string{},
			ShortenedURLs:  []string{},
		},
		EmailStructure: core.StructureAnalysis{
			ExcessivePunctuation: exclamations,
			AllCapsWords:         capsWords,
			SuspiciousFormatting: []string{},
		},
	}
}

func TestAggregateVerdicts(t *testing.T) {
	tests := []struct {
		name           string
		patterns       core.PatternAnalysis
		technical      core.TechnicalAnalysis
		wantLabel      string
		wantConfidence int
		wantRisk       string
	}{
		{
			name:           "no signals at all",
			patterns:       patternsWithScores(0, 0, 0, 0, 0, 0),
			technical:      technicalWith(0, 0, []string{}),
			wantLabel:      core.LabelSafe,
			wantConfidence: 5,
			wantRisk:       core.RiskSafe,
		},
		{
			name:           "single non-urgency hit stays safe",
			patterns:       patternsWithScores(0, 1, 0, 0, 0, 0),
			technical:      technicalWith(0, 0, []string{}),
			wantLabel:      core.LabelSafe,
			wantConfidence: 40,
			wantRisk:       core.RiskLow,
		},
		{
			name:           "url alone stays safe",
			patterns:       patternsWithScores(0, 0, 0, 0, 0, 0),
			technical:      technicalWith(1, 0, []string{}),
			wantLabel:      core.LabelSafe,
			wantConfidence: 50,
			wantRisk:       core.RiskLow,
		},
		{
			name:           "two hits cross the phishing threshold",
			patterns:       patternsWithScores(1, 1, 0, 0, 0, 0),
			technical:      technicalWith(0, 0, []string{}),
			wantLabel:      core.LabelPhishing,
			wantConfidence: 80,
			wantRisk:       core.RiskHigh,
		},
		{
			name:           "one urgency hit plus a link is phishing",
			patterns:       patternsWithScores(1, 0, 0, 0, 0, 0),
			technical:      technicalWith(1, 0, []string{}),
			wantLabel:      core.LabelPhishing,
			wantConfidence: 85,
			wantRisk:       core.RiskHigh,
		},
		{
			name:           "heavy signals cap at 95",
			patterns:       patternsWithScores(3, 2, 1, 1, 0, 2),
			technical:      technicalWith(2, 6, []string{"URGENT"}),
			wantLabel:      core.LabelPhishing,
			wantConfidence: 95,
			wantRisk:       core.RiskHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assessment, _ := aggregate(tt.patterns, tt.technical)
			assert.Equal(t, tt.wantLabel, assessment.Label)
			assert.Equal(t, tt.wantConfidence, assessment.Confidence)
			assert.Equal(t, tt.wantRisk, assessment.RiskLevel)
		})
	}
}

func TestAggregateSummary(t *testing.T) {
	tests := []struct {
		name     string
		patterns core.PatternAnalysis
		want     string
	}{
		{
			name:     "safe summary",
			patterns: patternsWithScores(0, 0, 0, 0, 0, 0),
			want:     "This email appears legitimate with no significant phishing indicators",
		},
		{
			name:     "moderate strength names category count",
			patterns: patternsWithScores(1, 1, 0, 0, 0, 0),
			want:     "MODERATE phishing indicators detected across 2 suspicious categories",
		},
		{
			name:     "strong strength",
			patterns: patternsWithScores(2, 1, 1, 0, 0, 0),
			want:     "STRONG phishing indicators detected across 3 suspicious categories",
		},
		{
			name:     "weak strength with single category",
			patterns: patternsWithScores(1, 0, 0, 0, 0, 0),
			want:     "WEAK phishing indicators detected across 1 suspicious category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// URL presence forces the phishing branch for the weak case.
			urls := 0
			if tt.patterns.TotalScore() < 2 && tt.patterns.TotalScore() > 0 {
				urls = 1
			}
			assessment, _ := aggregate(tt.patterns, technicalWith(urls, 0, []string{}))
			assert.Equal(t, tt.want, assessment.Summary)
		})
	}
}

func TestRedFlagsPriorityOrder(t *testing.T) {
	patterns := patternsWithScores(2, 0, 1, 0, 0, 1)
	technical := technicalWith(1, 5, []string{"URGENT"})

	_, flags := aggregate(patterns, technical)

	assert.Equal(t, []string{
		"Multiple urgency indicators detected",
		"Threats or pressure tactics used",
		"Unsolicited financial offers or prizes",
		"Suspicious links present",
		"Excessive exclamation marks",
		"Excessive use of capital letters",
	}, flags)
}

func TestRedFlagsEmptyWhenSafe(t *testing.T) {
	// Individually alarming signals must stay unsurfaced on a safe
	// verdict.
	patterns := patternsWithScores(0, 0, 1, 0, 0, 0)
	technical := technicalWith(1, 5, []string{"HELLO"})

	assessment, flags := aggregate(patterns, technical)

	assert.Equal(t, core.LabelSafe, assessment.Label)
	assert.NotNil(t, flags)
	assert.Empty(t, flags)
}

func TestRiskLevelBoundaries(t *testing.T) {
	tests := []struct {
		confidence int
		want       string
	}{
		{0, core.RiskSafe},
		{39, core.RiskSafe},
		{40, core.RiskLow},
		{59, core.RiskLow},
		{60, core.RiskMedium},
		{79, core.RiskMedium},
		{80, core.RiskHigh},
		{100, core.RiskHigh},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("confidence_%d", tt.confidence), func(t *testing.T) {
			assert.Equal(t, tt.want, core.RiskLevelFor(tt.confidence))
		})
	}
}
