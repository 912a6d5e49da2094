package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsedge/internal/config"
)

// Factory creates odds provider instances from configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new provider factory
func NewFactory(logger *logrus.Logger) *Factory {
	return &Factory{logger: logger}
}

// NewOddsProvider creates the named odds provider
func (f *Factory) NewOddsProvider(name string, cfg config.OddsProviderConfig) (OddsProvider, error) {
	switch name {
	case oddsAPIName, "":
		return NewOddsAPIClient(cfg, f.logger), nil
	default:
		return nil, fmt.Errorf("unknown odds provider: %s", name)
	}
}
