// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"

	"github.com/mwiater/promptbench/internal/appconfig"
	"github.com/mwiater/promptbench/internal/logging"
	"github.com/mwiater/promptbench/internal/providers"
	"github.com/mwiater/promptbench/internal/providers/llamacpp"
	"github.com/mwiater/promptbench/internal/providers/openaicompat"
)

// NewCompleter selects and configures the provider named by cfg.Provider.
func NewCompleter(cfg *appconfig.Config) (providers.Completer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}

	var provider providers.Completer
	switch cfg.Provider {
	case "", appconfig.ProviderOpenAI:
		if cfg.APIKey() == "" && cfg.BaseURL == "" {
			logging.LogEvent("warning: %s is not set; requests to the OpenAI API will fail", cfg.APIKeyEnv)
		}
		provider = openaicompat.New(cfg)
	case appconfig.ProviderLlamaCpp, "llama.cpp":
		provider = llamacpp.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider type %q", cfg.Provider)
	}

	logging.LogEvent("provider ready: %s", provider.Name())
	return provider, nil
}
