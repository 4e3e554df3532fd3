package entity

import (
	"errors"
	"strings"
)

var ErrUnsupportedEvent = errors.New("unsupported event")

type Event string

const (
	EventAccepted     Event = "accepted"
	EventDelivered    Event = "delivered"
	EventFailed       Event = "failed"
	EventOpened       Event = "opened"
	EventClicked      Event = "clicked"
	EventUnsubscribed Event = "unsubscribed"
	EventComplained   Event = "complained"
	EventStored       Event = "stored"
)

// SupportedEvents lists the event kinds in the order the API documents them.
var SupportedEvents = []Event{
	EventAccepted,
	EventDelivered,
	EventFailed,
	EventOpened,
	EventClicked,
	EventUnsubscribed,
	EventComplained,
	EventStored,
}

func ParseEvent(s string) (Event, error) {
	e := Event(strings.ToLower(strings.TrimSpace(s)))
	if !e.IsValid() {
		return "", ErrUnsupportedEvent
	}
	return e, nil
}

func (e Event) IsValid() bool {
	for _, se := range SupportedEvents {
		if e == se {
			return true
		}
	}
	return false
}

func (e Event) String() string {
	return string(e)
}

// Severity only applies to failed events.
type Severity string

const (
	SeverityPermanent Severity = "permanent"
	SeverityTemporary Severity = "temporary"
)

func (s Severity) IsValid() bool {
	return s == SeverityPermanent || s == SeverityTemporary
}

// EventRecord is a single email event kept by the mock stats server.
type EventRecord struct {
	Event    Event    `json:"event,omitempty"`
	Metric   *string  `json:"metric,omitempty"`
	Severity Severity `json:"severity,omitempty"`
	Time     *Date    `json:"time,omitempty"`
	Provider *string  `json:"provider,omitempty"`
	Device   *string  `json:"device,omitempty"`
	Country  *string  `json:"country,omitempty"`
}

func (e *EventRecord) GetEvent() Event {
	if e != nil {
		return e.Event
	}
	return ""
}

func (e *EventRecord) GetMetric() string {
	if e != nil && e.Metric != nil {
		return *e.Metric
	}
	return ""
}

func (e *EventRecord) GetSeverity() Severity {
	if e != nil {
		return e.Severity
	}
	return ""
}

func (e *EventRecord) GetTime() Date {
	if e != nil && e.Time != nil {
		return *e.Time
	}
	return Date{}
}

func (e *EventRecord) GetProvider() string {
	if e != nil && e.Provider != nil {
		return *e.Provider
	}
	return ""
}

func (e *EventRecord) GetDevice() string {
	if e != nil && e.Device != nil {
		return *e.Device
	}
	return ""
}

func (e *EventRecord) GetCountry() string {
	if e != nil && e.Country != nil {
		return *e.Country
	}
	return ""
}

// GetDimension returns the value of the record for an aggregate dimension.
func (e *EventRecord) GetDimension(dim Dimension) string {
	switch dim {
	case DimensionProviders:
		return e.GetProvider()
	case DimensionDevices:
		return e.GetDevice()
	case DimensionCountries:
		return e.GetCountry()
	}
	return ""
}
