package wallet

import (
	"context"
	"sync"

	"github.com/vitwit/tonpay/types"
)

// Provider owns the single connector instance of an application.
// It is built once by the composition root and passed to every Session that needs it.
type Provider struct {
	factory Factory
	config  types.ConnectorConfig

	mu        sync.Mutex
	connector Connector
	created   bool
}

func NewProvider(factory Factory, config types.ConnectorConfig) *Provider {
	return &Provider{
		factory: factory,
		config:  config,
	}
}

// StaticProvider wraps an already constructed connector.
func StaticProvider(c Connector) *Provider {
	return &Provider{connector: c, created: true}
}

// Connector returns the shared connector, constructing it on first use.
// A failed construction is not cached, so a later call may retry.
func (p *Provider) Connector(ctx context.Context) (Connector, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.created {
		return p.connector, nil
	}
	if p.factory == nil {
		return nil, types.NewWalletError("no wallet connector factory configured", nil)
	}

	c, err := p.factory(ctx, p.config)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, types.NewWalletError("failed to initialize wallet connector instance", nil)
	}

	p.connector = c
	p.created = true
	return c, nil
}
