// Package llm resolves configured chat providers into a single completion gateway.
package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/domain"
)

// Tier values.
const (
	TierFast    = "fast"
	TierGeneral = "general"
)

// Provider is one configured chat endpoint.
type Provider struct {
	Name    string
	Tier    string
	APIKey  string
	BaseURL string
	Model   string
}

// Configured reports whether the key is usable. Placeholders copied from
// sample env files start with "your_".
func (p Provider) Configured() bool {
	return p.APIKey != "" && !strings.HasPrefix(p.APIKey, "your_")
}

// Factory builds a completer for a resolved provider.
type Factory func(p Provider) domain.Completer

// Gateway routes each completion to the provider chosen at construction.
type Gateway struct {
	active   []Provider
	clients  []domain.Completer
	selector Selector
	logger   *zap.Logger
}

// New resolves providers once: a configured fast provider wins outright;
// otherwise two or more general providers are balanced by sel; otherwise a
// single general provider is used. No usable provider is ErrNoProvider.
func New(providers []Provider, factory Factory, sel Selector, logger *zap.Logger) (*Gateway, error) {
	active, err := resolve(providers)
	if err != nil {
		return nil, err
	}
	if sel == nil {
		sel = &RoundRobin{}
	}

	g := &Gateway{active: active, selector: sel, logger: logger}
	names := make([]string, len(active))
	for i, p := range active {
		g.clients = append(g.clients, factory(p))
		names[i] = p.Name + "/" + p.Model
	}
	logger.Info("LLM providers resolved", zap.Strings("providers", names))
	return g, nil
}

func resolve(providers []Provider) ([]Provider, error) {
	var general []Provider
	for _, p := range providers {
		if !p.Configured() {
			continue
		}
		switch p.Tier {
		case TierFast:
			return []Provider{p}, nil
		case TierGeneral:
			general = append(general, p)
		}
	}
	if len(general) == 0 {
		return nil, fmt.Errorf("no LLM API key configured: %w", domain.ErrNoProvider)
	}
	return general, nil
}

// Providers returns the resolved provider set in selection order.
func (g *Gateway) Providers() []Provider {
	return append([]Provider(nil), g.active...)
}

// Complete implements domain.Completer.
func (g *Gateway) Complete(ctx context.Context, prompt string, temperature float32) (domain.Completion, error) {
	i := 0
	if len(g.clients) > 1 {
		i = g.selector.Pick(len(g.clients))
	}

	res, err := g.clients[i].Complete(ctx, prompt, temperature)
	if err != nil {
		g.logger.Warn("LLM completion failed",
			zap.String("provider", g.active[i].Name),
			zap.String("model", g.active[i].Model),
			zap.Error(err),
		)
		return domain.Completion{}, fmt.Errorf("complete via %s: %w", g.active[i].Name, err)
	}
	return res, nil
}
