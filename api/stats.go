package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"mgstats/config"
	"mgstats/dep"
	"mgstats/entity"
	"mgstats/pkg/errutil"
	"mgstats/pkg/httputil"
	"mgstats/pkg/hydrator"
	"mgstats/pkg/metrics"
)

var ErrEmptyDomain = errors.New("empty domain")

// Stats reads aggregated event statistics. Invalid arguments are rejected
// before any request is sent.
type Stats interface {
	// Total returns event totals of domain, bucketed by resolution. req may be nil.
	Total(ctx context.Context, domain string, req *TotalRequest) (*entity.TotalResponse, error)
	// TotalAccount returns event totals across all domains of the account.
	TotalAccount(ctx context.Context, req *TotalRequest) (*entity.TotalResponse, error)
	AggregateCountsByESP(ctx context.Context, domain string) (*entity.AggregateResponse, error)
	AggregateByDevice(ctx context.Context, domain string) (*entity.AggregateResponse, error)
	AggregateByCountry(ctx context.Context, domain string) (*entity.AggregateResponse, error)
}

type stats struct {
	transport dep.Transport
	hydrator  hydrator.Hydrator
	metrics   *metrics.Metrics
}

// NewStats builds the stats resource. A nil hydrator defaults to the model
// hydrator and a nil m disables metrics.
func NewStats(transport dep.Transport, h hydrator.Hydrator, m *metrics.Metrics) Stats {
	if h == nil {
		h = hydrator.NewModelHydrator()
	}
	return &stats{
		transport: transport,
		hydrator:  h,
		metrics:   m,
	}
}

func (s *stats) Total(ctx context.Context, domain string, req *TotalRequest) (*entity.TotalResponse, error) {
	if err := validateDomain(domain); err != nil {
		return nil, err
	}

	return s.total(ctx, "stats_total", fmt.Sprintf(config.PathStatsTotal, url.PathEscape(domain)), req)
}

func (s *stats) TotalAccount(ctx context.Context, req *TotalRequest) (*entity.TotalResponse, error) {
	return s.total(ctx, "account_stats_total", config.PathAccountStatsTotal, req)
}

func (s *stats) total(ctx context.Context, name, path string, req *TotalRequest) (*entity.TotalResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query, err := httputil.EncodeQuery(req)
	if err != nil {
		return nil, errutil.InvalidArgumentError(err)
	}

	res := new(entity.TotalResponse)
	if err := s.get(ctx, name, path, query, res); err != nil {
		return nil, err
	}

	return res, nil
}

func (s *stats) AggregateCountsByESP(ctx context.Context, domain string) (*entity.AggregateResponse, error) {
	return s.aggregate(ctx, domain, entity.DimensionProviders)
}

func (s *stats) AggregateByDevice(ctx context.Context, domain string) (*entity.AggregateResponse, error) {
	return s.aggregate(ctx, domain, entity.DimensionDevices)
}

func (s *stats) AggregateByCountry(ctx context.Context, domain string) (*entity.AggregateResponse, error) {
	return s.aggregate(ctx, domain, entity.DimensionCountries)
}

func (s *stats) aggregate(ctx context.Context, domain string, dim entity.Dimension) (*entity.AggregateResponse, error) {
	if err := validateDomain(domain); err != nil {
		return nil, err
	}

	var (
		name = fmt.Sprintf("aggregates_%s", dim)
		path = fmt.Sprintf(config.PathAggregates, url.PathEscape(domain), dim)
		res  = &entity.AggregateResponse{Dimension: dim}
	)

	if err := s.get(ctx, name, path, nil, res); err != nil {
		return nil, err
	}

	return res, nil
}

func (s *stats) get(ctx context.Context, name, path string, query url.Values, dst json.Unmarshaler) error {
	res, err := s.transport.Get(ctx, name, path, query)
	if err != nil {
		return err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if err := s.hydrator.Hydrate(res, dst); err != nil {
		s.metrics.ObserveError(name, metrics.ErrTypeHydration)
		log.Ctx(ctx).Error().Msgf("hydrate %s response failed, err: %v", name, err)
		return err
	}

	return nil
}

func validateDomain(domain string) error {
	if strings.TrimSpace(domain) == "" {
		return errutil.InvalidArgumentError(ErrEmptyDomain)
	}
	return nil
}
