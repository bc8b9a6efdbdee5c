package core

import (
	"context"
)

// Analyzer is the deterministic analysis engine. It is total over its
// input domain: any pair of strings yields a report and it cannot fail.
type Analyzer interface {
	// Analyze produces a full report for the given subject and body.
	Analyze(subject, body string) *AnalysisReport
}

// RemoteClassifier defines the interface for remote (LLM-backed)
// phishing classifiers used as a second opinion.
type RemoteClassifier interface {
	// ClassifyEmail asks the remote model whether an email is phishing
	ClassifyEmail(ctx context.Context, email *Email) (*RemoteAssessment, error)
}

// CacheRepository defines the interface for caching analysis reports
type CacheRepository interface {
	// Get retrieves a cached entry by content key
	Get(ctx context.Context, contentKey string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, contentKey string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
