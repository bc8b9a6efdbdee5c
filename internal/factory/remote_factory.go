package factory

import (
	"fmt"

	"github.com/trustbyte/phishguard/internal/adapters/bedrock"
	"github.com/trustbyte/phishguard/internal/adapters/gemini"
	"github.com/trustbyte/phishguard/internal/adapters/openai"
	"github.com/trustbyte/phishguard/internal/config"
	"github.com/trustbyte/phishguard/internal/core"
	"github.com/trustbyte/phishguard/internal/utils"
	"go.uber.org/zap"
)

// RemoteFactory creates remote classifier clients
type RemoteFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewRemoteFactory creates a new remote classifier factory
func NewRemoteFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *RemoteFactory {
	return &RemoteFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateRemoteClassifier creates a remote classifier based on the
// configuration. Provider "none" returns nil: the deterministic engine
// runs alone.
func (f *RemoteFactory) CreateRemoteClassifier() (core.RemoteClassifier, error) {
	remoteCfg := f.cfg.GetRemote()

	switch remoteCfg.Provider {
	case "", "none":
		f.logger.Info("No remote classifier configured, running engine-only")
		return nil, nil
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClient()
	case "gemini":
		if f.cfg.GetGemini().APIKey == "" {
			return nil, fmt.Errorf("gemini API key is required")
		}
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClient()
	case "openai":
		if f.cfg.GetOpenAI().APIKey == "" {
			return nil, fmt.Errorf("openai API key is required")
		}
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClient()
	default:
		return nil, fmt.Errorf("unsupported remote provider: %s", remoteCfg.Provider)
	}
}
