package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trustbyte/phishguard/internal/core"
	"go.uber.org/zap"
)

// CliFilter implements a command-line interface for phishing analysis
type CliFilter struct {
	service *core.AnalysisService
	logger  *zap.Logger
	verbose bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(service *core.AnalysisService, logger *zap.Logger, verbose bool) (*CliFilter, error) {
	return &CliFilter{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessEmail analyzes an email and prints the report to stdout
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.AnalysisReport, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From)
	fmt.Printf("To: %s\n", strings.Join(email.To, ", "))
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))

	if f.verbose {
		preview := email.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	fmt.Printf("\n=== Analysis ===\n")
	startTime := time.Now()
	report, err := f.service.AnalyzeEmail(ctx, email)
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	PrintReport(report)
	fmt.Printf("Processing time: %v\n", duration)

	return report, nil
}

// PrintReport writes a human-readable rendering of an analysis report to stdout
func PrintReport(report *core.AnalysisReport) {
	assessment := report.OverallAssessment

	fmt.Printf("\n=== Verdict ===\n")
	fmt.Printf("Label: %s\n", assessment.Label)
	fmt.Printf("Risk level: %s\n", assessment.RiskLevel)
	fmt.Printf("Confidence: %d%%\n", assessment.Confidence)
	fmt.Printf("Summary: %s\n", assessment.Summary)

	patterns := report.PatternAnalysis
	fmt.Printf("\n=== Pattern Analysis ===\n")
	printCategory("Urgency", patterns.UrgencyIndicators)
	printCategory("Authority claims", patterns.AuthorityClaims)
	printCategory("Financial incentives", patterns.FinancialIncentives)
	printCategory("Action requirements", patterns.ActionRequirements)
	printCategory("Social engineering", patterns.SocialEngineering)
	printCategory("Threats and pressure", patterns.ThreatsAndPressure)

	technical := report.TechnicalAnalysis
	fmt.Printf("\n=== Technical Analysis ===\n")
	fmt.Printf("URLs: %d total, %d suspicious, %d shortened\n",
		technical.URLsAndLinks.TotalURLs,
		len(technical.URLsAndLinks.SuspiciousURLs),
		len(technical.URLsAndLinks.ShortenedURLs))
	fmt.Printf("Structure: subject %d chars, body %d chars, %d exclamation marks, %d all-caps words\n",
		technical.EmailStructure.SubjectLength,
		technical.EmailStructure.BodyLength,
		technical.EmailStructure.ExcessivePunctuation,
		len(technical.EmailStructure.AllCapsWords))
	fmt.Printf("Language quality score: %d\n", technical.LanguageQuality.QualityScore)

	if len(report.RedFlags) > 0 {
		fmt.Printf("\n=== Red Flags ===\n")
		for _, flag := range report.RedFlags {
			fmt.Printf("  ⚠ %s\n", flag)
		}
	}

	fmt.Printf("\n=== Recommendations ===\n")
	for _, rec := range report.Recommendations {
		fmt.Printf("  • %s\n", rec)
	}
	fmt.Printf("\n")
}

// printCategory prints one pattern category's score and matched phrases
func printCategory(name string, match core.PatternMatch) {
	if match.Score == 0 {
		fmt.Printf("%s: none\n", name)
		return
	}
	fmt.Printf("%s: score %d (%s)\n", name, match.Score, strings.Join(match.PatternsFound, ", "))
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
