package api

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"mgstats/config"
	"mgstats/dep"
	"mgstats/pkg/hydrator"
	"mgstats/pkg/metrics"
)

// Client is the entry point to the API resources.
type Client struct {
	transport dep.Transport
	stats     Stats
}

type clientOptions struct {
	registerer prometheus.Registerer
	transport  []dep.Option
}

type ClientOption func(*clientOptions)

// WithRegisterer sets where metrics are registered when they are enabled.
// Defaults to prometheus.DefaultRegisterer.
func WithRegisterer(reg prometheus.Registerer) ClientOption {
	return func(o *clientOptions) {
		o.registerer = reg
	}
}

func WithTransportOptions(opts ...dep.Option) ClientOption {
	return func(o *clientOptions) {
		o.transport = append(o.transport, opts...)
	}
}

func NewClient(ctx context.Context, cfg config.API, opts ...ClientOption) (*Client, error) {
	o := &clientOptions{
		registerer: prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(o)
	}

	var m *metrics.Metrics
	if cfg.EnableMetrics {
		m = metrics.NewMetrics(o.registerer)
	}

	transport, err := dep.NewTransport(ctx, cfg, append([]dep.Option{dep.WithMetrics(m)}, o.transport...)...)
	if err != nil {
		return nil, err
	}

	return &Client{
		transport: transport,
		stats:     NewStats(transport, hydrator.NewModelHydrator(), m),
	}, nil
}

func (c *Client) Stats() Stats {
	return c.stats
}

func (c *Client) Close(ctx context.Context) error {
	return c.transport.Close(ctx)
}
