package fetch_totals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"mgstats/api"
	"mgstats/config"
	"mgstats/entity"
	"mgstats/pkg/goutil"
	"mgstats/pkg/logutil"
	"mgstats/pkg/service"
)

var ErrNoDomains = errors.New("no domains configured")

// DomainTotal is the summary written for each domain.
type DomainTotal struct {
	Domain     string            `json:"domain"`
	Start      string            `json:"start,omitempty"`
	End        string            `json:"end,omitempty"`
	Resolution entity.Resolution `json:"resolution,omitempty"`
	Buckets    int               `json:"buckets"`
	Totals     map[string]int64  `json:"totals,omitempty"`
	Error      string            `json:"error,omitempty"`
}

type FetchTotals struct {
	cfg   *config.Config
	stats api.Stats
	out   io.Writer

	req *api.TotalRequest
}

func New(cfg *config.Config, stats api.Stats, out io.Writer) service.Job {
	return &FetchTotals{
		cfg:   cfg,
		stats: stats,
		out:   out,
	}
}

func (j *FetchTotals) Init(_ context.Context) error {
	if len(j.cfg.Query.Domains) == 0 {
		return ErrNoDomains
	}

	req, err := NewTotalRequest(j.cfg.Query)
	if err != nil {
		return err
	}
	j.req = req

	return nil
}

// NewTotalRequest builds the stats query shared by all domains.
func NewTotalRequest(q config.Query) (*api.TotalRequest, error) {
	req := &api.TotalRequest{
		Resolution: entity.Resolution(q.Resolution),
		Duration:   entity.Duration(q.Duration),
	}

	for _, s := range q.Events {
		e, err := entity.ParseEvent(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, s)
		}
		req.Events = append(req.Events, e)
	}
	req.Events = goutil.Dedupe(req.Events)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

func (j *FetchTotals) Run(ctx context.Context) error {
	var (
		taskG   = new(errgroup.Group)
		resultG = new(errgroup.Group)
		c       = j.cfg.Job.Concurrency
		domains = goutil.Dedupe(j.cfg.Query.Domains)
	)
	if c <= 0 {
		c = 1
	}

	log.Ctx(ctx).Info().Msgf("number of domains to be fetched: %d", len(domains))

	var (
		ch         = make(chan struct{}, c)
		resultChan = make(chan *DomainTotal, len(domains))
		results    = make([]*DomainTotal, 0, len(domains))
	)
	resultG.Go(func() error {
		for res := range resultChan {
			results = append(results, res)
		}
		return nil
	})

	for _, domain := range domains {
		ch <- struct{}{}

		domain := domain
		taskG.Go(func() error {
			// release go routine
			defer func() {
				<-ch
			}()

			ctx := logutil.WithLogID(ctx)

			res, err := j.stats.Total(ctx, domain, j.req)
			if err != nil {
				log.Ctx(ctx).Error().Msgf("[domain %s] fetch totals failed: %v", domain, err)
				resultChan <- &DomainTotal{Domain: domain, Error: err.Error()}
				return err
			}

			log.Ctx(ctx).Info().Msgf("[domain %s] fetched %d buckets", domain, len(res.GetStats()))
			resultChan <- Summarize(domain, j.req.GetEvents(), res)

			return nil
		})
	}

	taskErr := taskG.Wait()

	close(resultChan)
	_ = resultG.Wait()

	sort.Slice(results, func(a, b int) bool {
		return results[a].Domain < results[b].Domain
	})

	enc := json.NewEncoder(j.out)
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			log.Ctx(ctx).Error().Msgf("write result failed: %v", err)
			return err
		}
	}

	return taskErr
}

// Summarize sums the totals of each event over all buckets of res. With no
// events, every event present in res is summed.
func Summarize(domain string, events []entity.Event, res *entity.TotalResponse) *DomainTotal {
	if len(events) == 0 {
		events = entity.SupportedEvents
	}

	totals := make(map[string]int64)
	for _, item := range res.GetStats() {
		for _, e := range events {
			if counts, ok := item.GetCounts(e); ok {
				totals[e.String()] += counts.Total()
			}
		}
	}

	return &DomainTotal{
		Domain:     domain,
		Start:      res.GetStart().String(),
		End:        res.GetEnd().String(),
		Resolution: res.GetResolution(),
		Buckets:    len(res.GetStats()),
		Totals:     totals,
	}
}

func (j *FetchTotals) CleanUp(_ context.Context) error {
	return nil
}
