package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAnalyzer struct {
	report *AnalysisReport
	calls  int
}

func (s *stubAnalyzer) Analyze(subject, body string) *AnalysisReport {
	s.calls++
	// Return a copy so callers mutating the report do not leak between
	// calls.
	r := *s.report
	return &r
}

type stubRemote struct {
	assessment *RemoteAssessment
	err        error
	calls      int
}

func (s *stubRemote) ClassifyEmail(ctx context.Context, email *Email) (*RemoteAssessment, error) {
	s.calls++
	return s.assessment, s.err
}

type stubCache struct {
	entries map[string]*CacheEntry
}

func newStubCache() *stubCache {
	return &stubCache{entries: map[string]*CacheEntry{}}
}

func (s *stubCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	entry, ok := s.entries[key]
	if !ok {
		return nil, errors.New("cache entry not found")
	}
	return entry, nil
}

func (s *stubCache) Set(ctx context.Context, entry *CacheEntry) error {
	s.entries[entry.ContentKey] = entry
	return nil
}

func (s *stubCache) Delete(ctx context.Context, key string) error {
	delete(s.entries, key)
	return nil
}

func (s *stubCache) Cleanup(ctx context.Context) error { return nil }

func phishingReport(confidence int) *AnalysisReport {
	return &AnalysisReport{
		OverallAssessment: OverallAssessment{
			Label:      LabelPhishing,
			Confidence: confidence,
			RiskLevel:  RiskLevelFor(confidence),
			Summary:    "MODERATE phishing indicators detected across 2 suspicious categories",
		},
		Recommendations: PhishingRecommendations(),
		RedFlags:        []string{"Suspicious links present"},
	}
}

func safeReport(confidence int) *AnalysisReport {
	return &AnalysisReport{
		OverallAssessment: OverallAssessment{
			Label:      LabelSafe,
			Confidence: confidence,
			RiskLevel:  RiskLevelFor(confidence),
			Summary:    "This email appears legitimate with no significant phishing indicators",
		},
		Recommendations: SafeRecommendations(),
		RedFlags:        []string{},
	}
}

func testEmail() *Email {
	return &Email{
		From:    "attacker@example.com",
		To:      []string{"victim@example.org"},
		Subject: "URGENT: verify your account",
		Body:    "click here http://bit.ly/x",
	}
}

func TestAnalyzeEmailEngineOnly(t *testing.T) {
	analyzer := &stubAnalyzer{report: phishingReport(85)}
	svc := NewAnalysisService(analyzer, nil, newStubCache(), zap.NewNop(), false, 0, nil)

	report, err := svc.AnalyzeEmail(context.Background(), testEmail())

	require.NoError(t, err)
	assert.Equal(t, LabelPhishing, report.OverallAssessment.Label)
	assert.Equal(t, 85, report.OverallAssessment.Confidence)
	assert.Equal(t, 1, analyzer.calls)
}

func TestAnalyzeEmailWhitelistBypass(t *testing.T) {
	analyzer := &stubAnalyzer{report: phishingReport(95)}
	svc := NewAnalysisService(analyzer, nil, newStubCache(), zap.NewNop(), false, 0,
		[]string{"example.com"})

	report, err := svc.AnalyzeEmail(context.Background(), testEmail())

	require.NoError(t, err)
	assert.Equal(t, LabelSafe, report.OverallAssessment.Label)
	assert.Equal(t, 5, report.OverallAssessment.Confidence)
	assert.Equal(t, RiskSafe, report.OverallAssessment.RiskLevel)
	assert.Empty(t, report.RedFlags)
	assert.Equal(t, SafeRecommendations(), report.Recommendations)
}

func TestAnalyzeEmailCacheHit(t *testing.T) {
	analyzer := &stubAnalyzer{report: phishingReport(85)}
	cache := newStubCache()
	svc := NewAnalysisService(analyzer, nil, cache, zap.NewNop(), true, time.Hour, nil)

	email := testEmail()
	first, err := svc.AnalyzeEmail(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, 1, analyzer.calls)

	second, err := svc.AnalyzeEmail(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, 1, analyzer.calls, "second call must be served from cache")
	assert.Equal(t, first, second)
}

func TestAnalyzeEmailRemoteAgreementRaisesConfidence(t *testing.T) {
	analyzer := &stubAnalyzer{report: phishingReport(80)}
	remote := &stubRemote{assessment: &RemoteAssessment{
		IsPhishing: true,
		Confidence: 92,
		ModelUsed:  "test-model",
	}}
	svc := NewAnalysisService(analyzer, remote, newStubCache(), zap.NewNop(), false, 0, nil)

	report, err := svc.AnalyzeEmail(context.Background(), testEmail())

	require.NoError(t, err)
	assert.Equal(t, 92, report.OverallAssessment.Confidence)
	assert.Equal(t, RiskHigh, report.OverallAssessment.RiskLevel)
	assert.Equal(t, LabelPhishing, report.OverallAssessment.Label)
	assert.Equal(t, 1, remote.calls)
}

func TestAnalyzeEmailRemoteNeverLowersPhishingConfidence(t *testing.T) {
	analyzer := &stubAnalyzer{report: phishingReport(90)}
	remote := &stubRemote{assessment: &RemoteAssessment{IsPhishing: true, Confidence: 60}}
	svc := NewAnalysisService(analyzer, remote, newStubCache(), zap.NewNop(), false, 0, nil)

	report, err := svc.AnalyzeEmail(context.Background(), testEmail())

	require.NoError(t, err)
	assert.Equal(t, 90, report.OverallAssessment.Confidence)
}

func TestAnalyzeEmailRemoteDisagreementKeepsEngineVerdict(t *testing.T) {
	analyzer := &stubAnalyzer{report: phishingReport(85)}
	remote := &stubRemote{assessment: &RemoteAssessment{IsPhishing: false, Confidence: 10}}
	svc := NewAnalysisService(analyzer, remote, newStubCache(), zap.NewNop(), false, 0, nil)

	report, err := svc.AnalyzeEmail(context.Background(), testEmail())

	require.NoError(t, err)
	assert.Equal(t, LabelPhishing, report.OverallAssessment.Label)
	assert.Equal(t, 85, report.OverallAssessment.Confidence)
}

func TestAnalyzeEmailRemoteFailureFallsBack(t *testing.T) {
	analyzer := &stubAnalyzer{report: safeReport(40)}
	remote := &stubRemote{err: errors.New("model unavailable")}
	svc := NewAnalysisService(analyzer, remote, newStubCache(), zap.NewNop(), false, 0, nil)

	report, err := svc.AnalyzeEmail(context.Background(), testEmail())

	require.NoError(t, err, "remote failure must not surface; the engine is the fallback")
	assert.Equal(t, LabelSafe, report.OverallAssessment.Label)
	assert.Equal(t, 40, report.OverallAssessment.Confidence)
}

func TestAnalyzeEmailRemoteLowersSafeConfidence(t *testing.T) {
	analyzer := &stubAnalyzer{report: safeReport(40)}
	remote := &stubRemote{assessment: &RemoteAssessment{IsPhishing: false, Confidence: 10}}
	svc := NewAnalysisService(analyzer, remote, newStubCache(), zap.NewNop(), false, 0, nil)

	report, err := svc.AnalyzeEmail(context.Background(), testEmail())

	require.NoError(t, err)
	assert.Equal(t, 10, report.OverallAssessment.Confidence)
	assert.Equal(t, RiskSafe, report.OverallAssessment.RiskLevel)
}

func TestContentKeyIgnoresSender(t *testing.T) {
	a := &Email{From: "a@x.com", Subject: "s", Body: "b"}
	b := &Email{From: "b@y.com", Subject: "s", Body: "b"}
	c := &Email{From: "a@x.com", Subject: "s2", Body: "b"}

	assert.Equal(t, a.ContentKey(), b.ContentKey())
	assert.NotEqual(t, a.ContentKey(), c.ContentKey())
}
