package handler

import (
	"context"
	"errors"
	"testing"

	"mgstats/entity"
	"mgstats/pkg/errutil"
	"mgstats/pkg/goutil"
)

func TestCreateEvent(t *testing.T) {
	sh, eh := newTestHandlers(t)

	req := &CreateEventRequest{
		Event:  goutil.String("Failed"),
		Metric: goutil.String("bounce"),
		Count:  goutil.Int64(2),
	}
	req.SetDomain("example.com")

	res := new(CreateEventResponse)
	if err := eh.CreateEvent(context.Background(), req, res); err != nil {
		t.Fatalf("create event failed: %v", err)
	}
	if res.Count == nil || *res.Count != 2 {
		t.Errorf("expected count 2, got %v", res.Count)
	}

	records, err := sh.eventRepo.GetByDomain(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("get events failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	record := records[0]
	if record.GetEvent() != entity.EventFailed || record.GetSeverity() != entity.SeverityPermanent {
		t.Errorf("unexpected record %+v", record)
	}
	if !record.GetTime().Equal(testNow) {
		t.Errorf("expected time to default to now, got %v", record.GetTime())
	}
}

func TestCreateEventInvalid(t *testing.T) {
	_, eh := newTestHandlers(t)

	tests := []struct {
		name string
		req  *CreateEventRequest
	}{
		{
			name: "missing event",
			req:  &CreateEventRequest{},
		},
		{
			name: "unknown event",
			req:  &CreateEventRequest{Event: goutil.String("bounced")},
		},
		{
			name: "unknown severity",
			req:  &CreateEventRequest{Event: goutil.String("failed"), Severity: goutil.String("fatal")},
		},
		{
			name: "malformed time",
			req:  &CreateEventRequest{Event: goutil.String("opened"), Time: goutil.String("01/02/2025")},
		},
		{
			name: "zero count",
			req:  &CreateEventRequest{Event: goutil.String("opened"), Count: goutil.Int64(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.SetDomain("example.com")

			err := eh.CreateEvent(context.Background(), tt.req, new(CreateEventResponse))
			if !errors.Is(err, errutil.ErrInvalidArgument) {
				t.Errorf("expected invalid argument, got %v", err)
			}
		})
	}
}
