package core

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AnalysisService is the core service for phishing analysis. The
// deterministic engine is authoritative; a remote classifier, when
// configured, can only sharpen the confidence of a verdict it agrees
// with. Remote failures fall back silently to the engine verdict.
type AnalysisService struct {
	engine             Analyzer
	remote             RemoteClassifier
	cache              CacheRepository
	logger             *zap.Logger
	cacheEnabled       bool
	cacheTTL           time.Duration
	whitelistedDomains []string
}

// NewAnalysisService creates a new analysis service. remote may be nil,
// in which case the engine verdict is used as-is.
func NewAnalysisService(
	engine Analyzer,
	remote RemoteClassifier,
	cache CacheRepository,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	whitelistedDomains []string,
) *AnalysisService {
	return &AnalysisService{
		engine:             engine,
		remote:             remote,
		cache:              cache,
		logger:             logger,
		cacheEnabled:       cacheEnabled,
		cacheTTL:           cacheTTL,
		whitelistedDomains: whitelistedDomains,
	}
}

// isDomainWhitelisted checks if the sender's domain is in the whitelist
func (s *AnalysisService) isDomainWhitelisted(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}

	domain := strings.ToLower(parts[1])

	for _, whitelistedDomain := range s.whitelistedDomains {
		if strings.EqualFold(domain, whitelistedDomain) {
			return true
		}
	}

	return false
}

// AnalyzeEmail produces a phishing analysis report for an email
func (s *AnalysisService) AnalyzeEmail(ctx context.Context, email *Email) (*AnalysisReport, error) {
	// Check whitelist first
	if s.isDomainWhitelisted(email.From) {
		s.logger.Info("Skipping analysis for whitelisted domain",
			zap.String("sender", email.From),
			zap.String("action", "whitelist_bypass"))

		report := s.engine.Analyze(email.Subject, email.Body)
		report.OverallAssessment = OverallAssessment{
			Label:      LabelSafe,
			Confidence: 5,
			RiskLevel:  RiskSafe,
			Summary:    "Sender domain is whitelisted",
		}
		report.RedFlags = []string{}
		report.Recommendations = SafeRecommendations()
		return report, nil
	}

	// Check cache if enabled
	key := email.ContentKey()
	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, key); err == nil {
			s.logger.Debug("Cache hit for content", zap.String("content_key", key))
			return entry.Report, nil
		}
	}

	// The deterministic engine always produces the full report.
	report := s.engine.Analyze(email.Subject, email.Body)

	// Ask the remote classifier for a second opinion when configured.
	if s.remote != nil {
		s.applySecondOpinion(ctx, email, report)
	}

	// Update cache with result if enabled
	if s.cacheEnabled {
		entry := &CacheEntry{
			ContentKey: key,
			Report:     report,
			LastSeen:   time.Now(),
			ExpiresAt:  time.Now().Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return report, nil
}

// applySecondOpinion adjusts the report confidence using a remote verdict.
// The remote opinion never flips the label: on agreement the phishing
// confidence is raised to the remote value (capped at 95) or the safe
// confidence lowered toward it (floored at 5); on disagreement or error
// the engine verdict stands.
func (s *AnalysisService) applySecondOpinion(ctx context.Context, email *Email, report *AnalysisReport) {
	assessment, err := s.remote.ClassifyEmail(ctx, email)
	if err != nil {
		s.logger.Warn("Remote classifier unavailable, keeping engine verdict",
			zap.Error(err))
		return
	}

	enginePhishing := report.IsPhishing()
	if assessment.IsPhishing != enginePhishing {
		s.logger.Info("Remote classifier disagrees with engine, keeping engine verdict",
			zap.Bool("engine_phishing", enginePhishing),
			zap.Bool("remote_phishing", assessment.IsPhishing),
			zap.String("model", assessment.ModelUsed))
		return
	}

	confidence := report.OverallAssessment.Confidence
	if enginePhishing {
		if assessment.Confidence > confidence {
			confidence = assessment.Confidence
		}
		if confidence > 95 {
			confidence = 95
		}
	} else {
		if assessment.Confidence < confidence {
			confidence = assessment.Confidence
		}
		if confidence < 5 {
			confidence = 5
		}
	}

	report.OverallAssessment.Confidence = confidence
	report.OverallAssessment.RiskLevel = RiskLevelFor(confidence)

	s.logger.Debug("Applied remote second opinion",
		zap.String("model", assessment.ModelUsed),
		zap.Int("confidence", confidence))
}
