package ports

import (
	"context"

	"github.com/trustbyte/phishguard/internal/core"
)

// EmailFilter defines the interface for a delivery surface that accepts
// emails and reports their analysis
type EmailFilter interface {
	// ProcessEmail analyzes an email and returns the report
	ProcessEmail(ctx context.Context, email *core.Email) (*core.AnalysisReport, error)

	// Start starts the filter service
	Start() error

	// Stop stops the filter service
	Stop() error
}
