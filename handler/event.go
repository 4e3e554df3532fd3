package handler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"mgstats/entity"
	"mgstats/pkg/errutil"
	"mgstats/pkg/validator"
	"mgstats/repo"
)

const maxEventCount = 100000

type EventHandler interface {
	CreateEvent(ctx context.Context, req *CreateEventRequest, res *CreateEventResponse) error
}

type eventHandler struct {
	eventRepo repo.EventRepo
	now       func() time.Time
}

func NewEventHandler(eventRepo repo.EventRepo) EventHandler {
	return &eventHandler{
		eventRepo: eventRepo,
		now:       time.Now,
	}
}

// CreateEventRequest records Count identical events, one by default.
type CreateEventRequest struct {
	ContextInfo

	Event    *string `json:"event,omitempty"`
	Metric   *string `json:"metric,omitempty"`
	Severity *string `json:"severity,omitempty"`
	Time     *string `json:"time,omitempty"`
	Provider *string `json:"provider,omitempty"`
	Device   *string `json:"device,omitempty"`
	Country  *string `json:"country,omitempty"`
	Count    *int64  `json:"count,omitempty"`
}

func (req *CreateEventRequest) GetEvent() string {
	if req != nil && req.Event != nil {
		return *req.Event
	}
	return ""
}

func (req *CreateEventRequest) GetSeverity() string {
	if req != nil && req.Severity != nil {
		return *req.Severity
	}
	return ""
}

func (req *CreateEventRequest) GetTime() string {
	if req != nil && req.Time != nil {
		return *req.Time
	}
	return ""
}

func (req *CreateEventRequest) GetCount() int64 {
	if req != nil && req.Count != nil {
		return *req.Count
	}
	return 1
}

func (req *CreateEventRequest) ToEventRecord(now time.Time) (*entity.EventRecord, error) {
	event, err := entity.ParseEvent(req.GetEvent())
	if err != nil {
		return nil, err
	}

	t := entity.NewDate(now)
	if req.GetTime() != "" {
		if t, err = entity.ParseDate(req.GetTime()); err != nil {
			return nil, err
		}
	}

	record := &entity.EventRecord{
		Event:    event,
		Metric:   req.Metric,
		Time:     &t,
		Provider: req.Provider,
		Device:   req.Device,
		Country:  req.Country,
	}

	if event == entity.EventFailed {
		record.Severity = entity.SeverityPermanent
		if req.GetSeverity() != "" {
			record.Severity = entity.Severity(req.GetSeverity())
		}
	}

	return record, nil
}

type CreateEventResponse struct {
	Count *int64 `json:"count,omitempty"`
}

var CreateEventValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"event":       EventValidator(false),
	"metric": &validator.String{
		Optional: true,
		MaxLen:   64,
	},
	"severity": SeverityValidator(true),
	"time":     DateValidator(true),
	"provider": &validator.String{
		Optional: true,
		MaxLen:   255,
	},
	"device": &validator.String{
		Optional: true,
		MaxLen:   64,
	},
	"country": &validator.String{
		Optional: true,
		MaxLen:   64,
	},
})

func (h *eventHandler) CreateEvent(ctx context.Context, req *CreateEventRequest, res *CreateEventResponse) error {
	if err := CreateEventValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	count := req.GetCount()
	if count < 1 || count > maxEventCount {
		return errutil.ValidationError(ErrInvalidCount)
	}

	record, err := req.ToEventRecord(h.now())
	if err != nil {
		return errutil.ValidationError(err)
	}

	records := make([]*entity.EventRecord, count)
	for i := range records {
		records[i] = record
	}

	if err := h.eventRepo.Create(ctx, req.GetDomain(), records...); err != nil {
		log.Ctx(ctx).Error().Msgf("create events failed, domain: %s, err: %v", req.GetDomain(), err)
		return err
	}

	res.Count = &count

	return nil
}
