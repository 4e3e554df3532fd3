package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMissingField = errors.New("missing required field")

type TotalResponseItem struct {
	Time         *Date         `json:"time,omitempty"`
	Accepted     Counts        `json:"accepted,omitempty"`
	Delivered    Counts        `json:"delivered,omitempty"`
	Failed       *FailedCounts `json:"failed,omitempty"`
	Opened       Counts        `json:"opened,omitempty"`
	Clicked      Counts        `json:"clicked,omitempty"`
	Unsubscribed Counts        `json:"unsubscribed,omitempty"`
	Complained   Counts        `json:"complained,omitempty"`
	Stored       Counts        `json:"stored,omitempty"`
}

func (i *TotalResponseItem) UnmarshalJSON(b []byte) error {
	type totalResponseItem TotalResponseItem

	raw := new(totalResponseItem)
	if err := json.Unmarshal(b, raw); err != nil {
		return err
	}

	if raw.Time == nil {
		return fmt.Errorf("%w: time", ErrMissingField)
	}

	*i = TotalResponseItem(*raw)

	return nil
}

func (i *TotalResponseItem) GetTime() Date {
	if i != nil && i.Time != nil {
		return *i.Time
	}
	return Date{}
}

func (i *TotalResponseItem) GetAccepted() Counts {
	if i != nil {
		return i.Accepted
	}
	return nil
}

func (i *TotalResponseItem) GetDelivered() Counts {
	if i != nil {
		return i.Delivered
	}
	return nil
}

func (i *TotalResponseItem) GetFailed() *FailedCounts {
	if i != nil {
		return i.Failed
	}
	return nil
}

func (i *TotalResponseItem) GetOpened() Counts {
	if i != nil {
		return i.Opened
	}
	return nil
}

func (i *TotalResponseItem) GetClicked() Counts {
	if i != nil {
		return i.Clicked
	}
	return nil
}

func (i *TotalResponseItem) GetUnsubscribed() Counts {
	if i != nil {
		return i.Unsubscribed
	}
	return nil
}

func (i *TotalResponseItem) GetComplained() Counts {
	if i != nil {
		return i.Complained
	}
	return nil
}

func (i *TotalResponseItem) GetStored() Counts {
	if i != nil {
		return i.Stored
	}
	return nil
}

var countsByEvent = map[Event]func(*TotalResponseItem) Counts{
	EventAccepted:     (*TotalResponseItem).GetAccepted,
	EventDelivered:    (*TotalResponseItem).GetDelivered,
	EventOpened:       (*TotalResponseItem).GetOpened,
	EventClicked:      (*TotalResponseItem).GetClicked,
	EventUnsubscribed: (*TotalResponseItem).GetUnsubscribed,
	EventComplained:   (*TotalResponseItem).GetComplained,
	EventStored:       (*TotalResponseItem).GetStored,
	EventFailed: func(i *TotalResponseItem) Counts {
		return i.GetFailed().Summary()
	},
}

// GetCounts returns the breakdown for e. Failed events are flattened with
// FailedCounts.Summary; use GetFailed for the nested breakdown.
func (i *TotalResponseItem) GetCounts(e Event) (Counts, bool) {
	fn, ok := countsByEvent[e]
	if !ok {
		return nil, false
	}

	counts := fn(i)

	return counts, counts != nil
}

type TotalResponse struct {
	Start      *Date                `json:"start,omitempty"`
	End        *Date                `json:"end,omitempty"`
	Resolution Resolution           `json:"resolution,omitempty"`
	Stats      []*TotalResponseItem `json:"stats"`
}

func (r *TotalResponse) UnmarshalJSON(b []byte) error {
	var raw struct {
		Start      *Date                 `json:"start"`
		End        *Date                 `json:"end"`
		Resolution *Resolution           `json:"resolution"`
		Stats      *[]*TotalResponseItem `json:"stats"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch {
	case raw.Start == nil:
		return fmt.Errorf("%w: start", ErrMissingField)
	case raw.End == nil:
		return fmt.Errorf("%w: end", ErrMissingField)
	case raw.Resolution == nil:
		return fmt.Errorf("%w: resolution", ErrMissingField)
	case raw.Stats == nil:
		return fmt.Errorf("%w: stats", ErrMissingField)
	}

	if !raw.Resolution.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedResolution, string(*raw.Resolution))
	}

	for idx, item := range *raw.Stats {
		if item == nil {
			return fmt.Errorf("%w: stats[%d]", ErrMissingField, idx)
		}
	}

	*r = TotalResponse{
		Start:      raw.Start,
		End:        raw.End,
		Resolution: *raw.Resolution,
		Stats:      *raw.Stats,
	}

	return nil
}

func (r *TotalResponse) GetStart() Date {
	if r != nil && r.Start != nil {
		return *r.Start
	}
	return Date{}
}

func (r *TotalResponse) GetEnd() Date {
	if r != nil && r.End != nil {
		return *r.End
	}
	return Date{}
}

func (r *TotalResponse) GetResolution() Resolution {
	if r != nil {
		return r.Resolution
	}
	return ""
}

func (r *TotalResponse) GetStats() []*TotalResponseItem {
	if r != nil {
		return r.Stats
	}
	return nil
}
