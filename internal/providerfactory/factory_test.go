// internal/providerfactory/factory_test.go
package providerfactory

import (
	"testing"

	"github.com/mwiater/promptbench/internal/appconfig"
	"github.com/mwiater/promptbench/internal/providers/llamacpp"
	"github.com/mwiater/promptbench/internal/providers/openaicompat"
)

func TestNewCompleterErrorsOnNilConfig(t *testing.T) {
	if _, err := NewCompleter(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNewCompleterSelectsProvider(t *testing.T) {
	tests := []struct {
		provider string
		check    func(any) bool
	}{
		{provider: "", check: func(p any) bool { _, ok := p.(*openaicompat.Provider); return ok }},
		{provider: appconfig.ProviderOpenAI, check: func(p any) bool { _, ok := p.(*openaicompat.Provider); return ok }},
		{provider: appconfig.ProviderLlamaCpp, check: func(p any) bool { _, ok := p.(*llamacpp.Provider); return ok }},
		{provider: "llama.cpp", check: func(p any) bool { _, ok := p.(*llamacpp.Provider); return ok }},
	}

	for _, tt := range tests {
		cfg := &appconfig.Config{Provider: tt.provider, BaseURL: "http://localhost:9999"}
		provider, err := NewCompleter(cfg)
		if err != nil {
			t.Fatalf("NewCompleter(%q) returned error: %v", tt.provider, err)
		}
		if !tt.check(provider) {
			t.Fatalf("NewCompleter(%q) returned unexpected type %T", tt.provider, provider)
		}
	}
}

func TestNewCompleterRejectsUnsupported(t *testing.T) {
	if _, err := NewCompleter(&appconfig.Config{Provider: "unsupported"}); err == nil {
		t.Fatal("expected error for unsupported provider type")
	}
}
