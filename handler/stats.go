package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"mgstats/entity"
	"mgstats/pkg/errutil"
	"mgstats/pkg/goutil"
	"mgstats/pkg/validator"
	"mgstats/repo"
)

const (
	DefaultDuration   = entity.Duration("7d")
	DefaultResolution = entity.ResolutionDay
	MaxBuckets        = 10000
)

var (
	ErrEndBeforeStart = errors.New("end is before start")
	ErrTooManyBuckets = errors.New("too many buckets")
)

type StatsHandler interface {
	GetTotal(ctx context.Context, req *GetTotalRequest, res *GetTotalResponse) error
	GetAccountTotal(ctx context.Context, req *GetAccountTotalRequest, res *GetTotalResponse) error
	GetAggregates(ctx context.Context, req *GetAggregatesRequest, res *GetAggregatesResponse) error
}

type statsHandler struct {
	eventRepo repo.EventRepo
	now       func() time.Time
}

func NewStatsHandler(eventRepo repo.EventRepo) StatsHandler {
	return &statsHandler{
		eventRepo: eventRepo,
		now:       time.Now,
	}
}

// TotalQuery holds the query parameters of the total routes.
type TotalQuery struct {
	Event      []string `schema:"event" json:"-"`
	Start      *string  `schema:"start" json:"-"`
	End        *string  `schema:"end" json:"-"`
	Resolution *string  `schema:"resolution" json:"-"`
	Duration   *string  `schema:"duration" json:"-"`
}

func (q *TotalQuery) GetStart() string {
	if q != nil && q.Start != nil {
		return *q.Start
	}
	return ""
}

func (q *TotalQuery) GetEnd() string {
	if q != nil && q.End != nil {
		return *q.End
	}
	return ""
}

func (q *TotalQuery) GetResolution() string {
	if q != nil && q.Resolution != nil {
		return *q.Resolution
	}
	return ""
}

func (q *TotalQuery) GetDuration() string {
	if q != nil && q.Duration != nil {
		return *q.Duration
	}
	return ""
}

var TotalQueryValidator = validator.MustForm(map[string]validator.Validator{
	"event": &validator.Slice{
		Optional:  true,
		Validator: EventValidator(false),
	},
	"start":      DateValidator(true),
	"end":        DateValidator(true),
	"resolution": ResolutionValidator(true),
	"duration":   DurationValidator(true),
})

type GetTotalRequest struct {
	ContextInfo
	TotalQuery
}

type GetAccountTotalRequest struct {
	TotalQuery
}

type GetTotalResponse struct {
	*entity.TotalResponse
}

var GetTotalValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"TotalQuery":  TotalQueryValidator,
})

var GetAccountTotalValidator = validator.MustForm(map[string]validator.Validator{
	"TotalQuery": TotalQueryValidator,
})

func (h *statsHandler) GetTotal(ctx context.Context, req *GetTotalRequest, res *GetTotalResponse) error {
	if err := GetTotalValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	records, err := h.eventRepo.GetByDomain(ctx, req.GetDomain())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get events failed, domain: %s, err: %v", req.GetDomain(), err)
		return err
	}

	total, err := h.buildTotal(&req.TotalQuery, records)
	if err != nil {
		return err
	}

	res.TotalResponse = total

	return nil
}

func (h *statsHandler) GetAccountTotal(ctx context.Context, req *GetAccountTotalRequest, res *GetTotalResponse) error {
	if err := GetAccountTotalValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	records, err := h.eventRepo.GetAll(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get all events failed: %v", err)
		return err
	}

	total, err := h.buildTotal(&req.TotalQuery, records)
	if err != nil {
		return err
	}

	res.TotalResponse = total

	return nil
}

// buildTotal counts records into the buckets between the query's start and
// end. Every bucket carries a breakdown of each requested event, even when
// nothing happened in it.
func (h *statsHandler) buildTotal(q *TotalQuery, records []*entity.EventRecord) (*entity.TotalResponse, error) {
	events, err := parseEvents(q.Event)
	if err != nil {
		return nil, errutil.ValidationError(err)
	}

	resolution := DefaultResolution
	if q.GetResolution() != "" {
		resolution = entity.Resolution(q.GetResolution())
	}

	start, end, err := h.parseRange(q)
	if err != nil {
		return nil, errutil.ValidationError(err)
	}

	var (
		items   = make([]*entity.TotalResponseItem, 0)
		buckets = make(map[int64]*entity.TotalResponseItem)
	)
	for t := resolution.Truncate(start); !t.After(end); t = resolution.Next(t) {
		if len(items) >= MaxBuckets {
			return nil, errutil.ValidationError(fmt.Errorf("%w: max %d", ErrTooManyBuckets, MaxBuckets))
		}

		item := newEmptyItem(t, events)
		items = append(items, item)
		buckets[t.Unix()] = item
	}

	for _, record := range records {
		if !goutil.Contains(events, record.GetEvent()) {
			continue
		}

		ts := record.GetTime().Time
		if ts.Before(start) || ts.After(end) {
			continue
		}

		item, ok := buckets[resolution.Truncate(ts).Unix()]
		if !ok {
			continue
		}

		countRecord(item, record)
	}

	var (
		startDate = entity.NewDate(start)
		endDate   = entity.NewDate(end)
	)
	return &entity.TotalResponse{
		Start:      &startDate,
		End:        &endDate,
		Resolution: resolution,
		Stats:      items,
	}, nil
}

// parseRange defaults end to now. A duration counts back from end and takes
// precedence over start; with neither, the range is DefaultDuration long.
func (h *statsHandler) parseRange(q *TotalQuery) (time.Time, time.Time, error) {
	end := h.now().UTC()
	if q.GetEnd() != "" {
		d, err := entity.ParseDate(q.GetEnd())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = d.Time
	}

	var start time.Time
	switch {
	case q.GetDuration() != "":
		t, err := entity.Duration(q.GetDuration()).Before(end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	case q.GetStart() != "":
		d, err := entity.ParseDate(q.GetStart())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = d.Time
	default:
		t, err := DefaultDuration.Before(end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrEndBeforeStart
	}

	return start, end, nil
}

// parseEvents defaults to every supported event.
func parseEvents(values []string) ([]entity.Event, error) {
	if len(values) == 0 {
		return entity.SupportedEvents, nil
	}

	events := make([]entity.Event, 0, len(values))
	for _, v := range values {
		e, err := entity.ParseEvent(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, v)
		}
		events = append(events, e)
	}

	return goutil.Dedupe(events), nil
}

func newEmptyItem(t time.Time, events []entity.Event) *entity.TotalResponseItem {
	d := entity.NewDate(t)
	item := &entity.TotalResponseItem{Time: &d}

	for _, e := range events {
		switch e {
		case entity.EventAccepted:
			item.Accepted = newCounts()
		case entity.EventDelivered:
			item.Delivered = newCounts()
		case entity.EventFailed:
			item.Failed = &entity.FailedCounts{
				Permanent: newCounts(),
				Temporary: newCounts(),
			}
		case entity.EventOpened:
			item.Opened = newCounts()
		case entity.EventClicked:
			item.Clicked = newCounts()
		case entity.EventUnsubscribed:
			item.Unsubscribed = newCounts()
		case entity.EventComplained:
			item.Complained = newCounts()
		case entity.EventStored:
			item.Stored = newCounts()
		}
	}

	return item
}

func newCounts() entity.Counts {
	return entity.Counts{entity.MetricTotal: 0}
}

func countRecord(item *entity.TotalResponseItem, record *entity.EventRecord) {
	if record.GetEvent() == entity.EventFailed {
		if record.GetSeverity() == entity.SeverityTemporary {
			item.GetFailed().GetTemporary().Add(record.GetMetric(), 1)
		} else {
			item.GetFailed().GetPermanent().Add(record.GetMetric(), 1)
		}
		return
	}

	if counts, ok := item.GetCounts(record.GetEvent()); ok {
		counts.Add(record.GetMetric(), 1)
	}
}

type GetAggregatesRequest struct {
	ContextInfo

	Dimension *string `schema:"dimension" json:"-"`
}

func (r *GetAggregatesRequest) GetDimension() entity.Dimension {
	if r != nil && r.Dimension != nil {
		return entity.Dimension(*r.Dimension)
	}
	return ""
}

type GetAggregatesResponse struct {
	*entity.AggregateResponse
}

var GetAggregatesValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"dimension": &validator.String{
		Validators: []validator.StringFunc{
			func(s string) error {
				if !entity.Dimension(s).IsValid() {
					return fmt.Errorf("%w: %q", entity.ErrUnexpectedDimension, s)
				}
				return nil
			},
		},
	},
})

// GetAggregates counts each event per value of the requested dimension.
// Records without a value for the dimension are left out.
func (h *statsHandler) GetAggregates(ctx context.Context, req *GetAggregatesRequest, res *GetAggregatesResponse) error {
	if err := GetAggregatesValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	records, err := h.eventRepo.GetByDomain(ctx, req.GetDomain())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get events failed, domain: %s, err: %v", req.GetDomain(), err)
		return err
	}

	dim := req.GetDimension()

	items := make(map[string]entity.Counts)
	for _, record := range records {
		name := record.GetDimension(dim)
		if name == "" {
			continue
		}
		if _, ok := items[name]; !ok {
			items[name] = make(entity.Counts)
		}
		items[name][record.GetEvent().String()]++
	}

	res.AggregateResponse = &entity.AggregateResponse{
		Dimension: dim,
		Items:     items,
	}

	return nil
}
