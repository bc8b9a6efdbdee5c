package engine

import (
	"go.uber.org/zap"

	"github.com/trustbyte/phishguard/internal/core"
)

// Analyze runs the full pipeline over one email's subject and body and
// returns the complete report. It is a pure function: identical input
// always yields a byte-identical report, so results are reproducible and
// analyses may run fully in parallel.
func Analyze(subject, body string) *core.AnalysisReport {
	n := normalize(subject, body)

	patterns := matchCategories(n.lower)
	technical := analyzeTechnical(subject, body, n)
	technical.LanguageQuality = scoreLanguageQuality(patterns, technical.EmailStructure.ExcessivePunctuation)

	assessment, flags := aggregate(patterns, technical)

	return &core.AnalysisReport{
		OverallAssessment: assessment,
		PatternAnalysis:   patterns,
		TechnicalAnalysis: technical,
		Recommendations:   recommend(assessment.Label == core.LabelPhishing),
		RedFlags:          flags,
	}
}

// Heuristic is the core.Analyzer adapter around Analyze. The zero
// logger-less value is usable; the logger only adds debug visibility.
type Heuristic struct {
	logger *zap.Logger
}

// NewHeuristic creates a new heuristic analyzer
func NewHeuristic(logger *zap.Logger) *Heuristic {
	return &Heuristic{logger: logger}
}

// Analyze implements core.Analyzer.
func (h *Heuristic) Analyze(subject, body string) *core.AnalysisReport {
	report := Analyze(subject, body)
	if h.logger != nil {
		h.logger.Debug("Heuristic analysis complete",
			zap.String("label", report.OverallAssessment.Label),
			zap.Int("confidence", report.OverallAssessment.Confidence),
			zap.String("risk_level", report.OverallAssessment.RiskLevel))
	}
	return report
}
