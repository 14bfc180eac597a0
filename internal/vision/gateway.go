package vision

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Gateway routes a request to exactly one provider adapter.
type Gateway struct {
	adapters        map[Provider]Generator
	defaultProvider Provider
}

// NewGateway registers adapters by provider. defaultProvider serves requests
// that do not name one and must itself be registered.
func NewGateway(defaultProvider Provider, adapters map[Provider]Generator) (*Gateway, error) {
	if _, ok := adapters[defaultProvider]; !ok {
		return nil, fmt.Errorf("default provider %q has no adapter", defaultProvider)
	}
	registered := make(map[Provider]Generator, len(adapters))
	for p, g := range adapters {
		registered[p] = g
	}
	return &Gateway{adapters: registered, defaultProvider: defaultProvider}, nil
}

// DefaultProvider returns the provider used when a request names none.
func (g *Gateway) DefaultProvider() Provider {
	return g.defaultProvider
}

// Adapter returns the adapter registered for p.
func (g *Gateway) Adapter(p Provider) (Generator, bool) {
	adapter, ok := g.adapters[p]
	return adapter, ok
}

// Dispatch resolves the provider and runs its adapter.
func (g *Gateway) Dispatch(ctx context.Context, req GenerationRequest) Result {
	provider := ParseProvider(string(req.Provider))
	if provider == "" {
		provider = g.defaultProvider
	}
	req.Provider = provider

	adapter, ok := g.adapters[provider]
	if !ok {
		err := validationError(fmt.Sprintf("Unknown provider %q", provider))
		err.Suggestion = "Choose one of openai, gemini or decor8."
		return Result{Provider: provider, Err: err}
	}

	img, err := adapter.Generate(ctx, req)
	if err != nil {
		e := AsError(err)
		zerolog.Ctx(ctx).Warn().Str("provider", string(provider)).Str("kind", string(e.Kind)).Err(e).Msg("generation failed")
		return Result{Provider: provider, Err: e}
	}
	return Result{Provider: provider, Image: &img}
}
