package fetch_aggregates

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/rs/zerolog/log"

	"mgstats/api"
	"mgstats/config"
	"mgstats/entity"
	"mgstats/pkg/goutil"
	"mgstats/pkg/logutil"
	"mgstats/pkg/service"
)

var ErrNoDomains = errors.New("no domains configured")

// DomainAggregates is written for each domain, one key per dimension.
type DomainAggregates struct {
	Domain     string                                        `json:"domain"`
	Aggregates map[entity.Dimension]map[string]entity.Counts `json:"aggregates,omitempty"`
	Errors     map[entity.Dimension]string                   `json:"errors,omitempty"`
}

type FetchAggregates struct {
	cfg   *config.Config
	stats api.Stats
	out   io.Writer
}

func New(cfg *config.Config, stats api.Stats, out io.Writer) service.Job {
	return &FetchAggregates{
		cfg:   cfg,
		stats: stats,
		out:   out,
	}
}

func (j *FetchAggregates) Init(_ context.Context) error {
	if len(j.cfg.Query.Domains) == 0 {
		return ErrNoDomains
	}
	return nil
}

func (j *FetchAggregates) Run(ctx context.Context) error {
	var (
		enc   = json.NewEncoder(j.out)
		errs  = make([]error, 0)
		fetch = map[entity.Dimension]func(ctx context.Context, domain string) (*entity.AggregateResponse, error){
			entity.DimensionProviders: j.stats.AggregateCountsByESP,
			entity.DimensionDevices:   j.stats.AggregateByDevice,
			entity.DimensionCountries: j.stats.AggregateByCountry,
		}
	)

	for _, domain := range goutil.Dedupe(j.cfg.Query.Domains) {
		ctx := logutil.WithLogID(ctx)

		res := &DomainAggregates{
			Domain:     domain,
			Aggregates: make(map[entity.Dimension]map[string]entity.Counts),
		}

		for _, dim := range entity.SupportedDimensions {
			agg, err := fetch[dim](ctx, domain)
			if err != nil {
				log.Ctx(ctx).Error().Msgf("[domain %s] fetch %s aggregates failed: %v", domain, dim, err)
				if res.Errors == nil {
					res.Errors = make(map[entity.Dimension]string)
				}
				res.Errors[dim] = err.Error()
				errs = append(errs, err)
				continue
			}
			res.Aggregates[dim] = agg.GetItems()
		}

		if err := enc.Encode(res); err != nil {
			log.Ctx(ctx).Error().Msgf("write result failed: %v", err)
			return err
		}
	}

	return errors.Join(errs...)
}

func (j *FetchAggregates) CleanUp(_ context.Context) error {
	return nil
}
