package factory

import (
	"fmt"

	"github.com/trustbyte/phishguard/internal/adapters/filter"
	"github.com/trustbyte/phishguard/internal/config"
	"github.com/trustbyte/phishguard/internal/core"
	"github.com/trustbyte/phishguard/internal/ports"
	"go.uber.org/zap"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.AnalysisService
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.AnalysisService) *FilterFactory {
	return &FilterFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateEmailFilter creates an email filter based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	filterType := f.cfg.GetString("server.filter_type")

	switch filterType {
	case "http":
		return filter.NewHTTPFilter(
			f.service,
			f.logger,
			f.cfg.GetString("server.listen_address"),
		), nil
	case "postfix":
		return filter.NewPostfixFilter(
			f.service,
			f.logger,
			f.cfg.GetString("server.smtp.listen_address"),
			f.cfg.GetBool("server.smtp.block_high_risk"),
			f.cfg.GetSMTPHeaders(),
			f.cfg.GetString("server.smtp.postfix.address"),
			f.cfg.GetInt("server.smtp.postfix.port"),
			f.cfg.GetBool("server.smtp.postfix.enabled"),
			f.cfg.GetString("server.smtp.subject_prefix"),
			f.cfg.GetBool("server.smtp.modify_subject"),
		), nil
	case "cli":
		return filter.NewCliFilter(
			f.service,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", filterType)
	}
}
