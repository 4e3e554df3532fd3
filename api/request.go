package api

import (
	"errors"
	"fmt"
	"time"

	"mgstats/entity"
	"mgstats/pkg/errutil"
	"mgstats/pkg/validator"
)

var ErrEndBeforeStart = errors.New("end is before start")

// TotalRequest holds the optional query parameters of a stats total call.
// Zero fields are left to the API defaults.
type TotalRequest struct {
	Events     []entity.Event    `schema:"event,omitempty"`
	Start      time.Time         `schema:"start,omitempty"`
	End        time.Time         `schema:"end,omitempty"`
	Resolution entity.Resolution `schema:"resolution,omitempty"`
	Duration   entity.Duration   `schema:"duration,omitempty"`
}

func (r *TotalRequest) GetEvents() []entity.Event {
	if r != nil && r.Events != nil {
		return r.Events
	}
	return nil
}

func (r *TotalRequest) GetResolution() entity.Resolution {
	if r != nil {
		return r.Resolution
	}
	return ""
}

var TotalRequestValidator = validator.MustForm(map[string]validator.Validator{
	"event": &validator.Slice{
		Optional: true,
		Validator: &validator.String{
			Validators: []validator.StringFunc{validateEvent},
		},
	},
	"resolution": &validator.String{
		Optional:   true,
		Validators: []validator.StringFunc{validateResolution},
	},
	"duration": &validator.String{
		Optional:   true,
		Validators: []validator.StringFunc{validateDuration},
	},
})

func validateEvent(s string) error {
	if !entity.Event(s).IsValid() {
		return fmt.Errorf("%w: %q", entity.ErrUnsupportedEvent, s)
	}
	return nil
}

func validateResolution(s string) error {
	if !entity.Resolution(s).IsValid() {
		return fmt.Errorf("%w: %q", entity.ErrUnsupportedResolution, s)
	}
	return nil
}

func validateDuration(s string) error {
	if !entity.Duration(s).IsValid() {
		return fmt.Errorf("%w: %q", entity.ErrInvalidDuration, s)
	}
	return nil
}

// Validate accepts a nil request.
func (r *TotalRequest) Validate() error {
	if r == nil {
		return nil
	}

	if err := TotalRequestValidator.Validate(r); err != nil {
		return errutil.ValidationError(err)
	}

	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return errutil.ValidationError(ErrEndBeforeStart)
	}

	return nil
}
