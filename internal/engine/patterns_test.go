package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchCategories(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantUrgency   int
		wantAuthority int
		wantFinancial int
		wantAction    int
		wantSocial    int
		wantThreats   int
	}{
		{
			name: "no matches",
			text: "meeting tomorrow at 2 pm in the conference room",
		},
		{
			name:        "single urgency phrase",
			text:        "please respond urgent",
			wantUrgency: 1,
		},
		{
			name:        "urgency phrase inside larger word",
			text:        "we urgently need this",
			wantUrgency: 1,
		},
		{
			name:        "repeated phrase counts once",
			text:        "urgent urgent urgent",
			wantUrgency: 1,
		},
		{
			name:        "distinct phrases accumulate",
			text:        "urgent, act now, this is a limited time offer",
			wantUrgency: 3,
		},
		{
			name:          "phrases spread across categories",
			text:          "verify your account and click here to claim your prize",
			wantAuthority: 1,
			wantFinancial: 1,
			wantAction:    1,
		},
		{
			name:        "multi word threat phrase",
			text:        "your account will be closed and we will take legal action",
			wantThreats: 2,
		},
		{
			name:       "social engineering flattery",
			text:       "dear customer, you have been carefully selected",
			wantSocial: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchCategories(tt.text)
			assert.Equal(t, tt.wantUrgency, got.UrgencyIndicators.Score)
			assert.Equal(t, tt.wantAuthority, got.AuthorityClaims.Score)
			assert.Equal(t, tt.wantFinancial, got.FinancialIncentives.Score)
			assert.Equal(t, tt.wantAction, got.ActionRequirements.Score)
			assert.Equal(t, tt.wantSocial, got.SocialEngineering.Score)
			assert.Equal(t, tt.wantThreats, got.ThreatsAndPressure.Score)
		})
	}
}

func TestMatchCategoriesPatternsInLexiconOrder(t *testing.T) {
	// "limited time" is declared after "act now"; input order must not
	// affect output order.
	got := matchCategories("limited time only, so act now")
	assert.Equal(t, []string{"act now", "limited time"}, got.UrgencyIndicators.PatternsFound)
}

func TestMatchCategoriesZeroScoreShape(t *testing.T) {
	got := matchCategories("")

	assert.Equal(t, 0, got.FinancialIncentives.Score)
	assert.NotNil(t, got.FinancialIncentives.PatternsFound)
	assert.Empty(t, got.FinancialIncentives.PatternsFound)
	assert.NotEmpty(t, got.FinancialIncentives.Explanation)
	assert.Equal(t, 0, got.TotalScore())
	assert.Equal(t, 0, got.TriggeredCategories())
}

func TestSubjectHasAlertLanguage(t *testing.T) {
	tests := []struct {
		subject string
		want    bool
	}{
		{"urgent: read this", true},
		{"please verify your account", true},
		{"security alert for your account", true},
		{"monthly newsletter", false},
		{"you won the lottery", false}, // financial, not urgency/authority
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.want, subjectHasAlertLanguage(tt.subject))
		})
	}
}
