package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"mgstats/entity"
	"mgstats/pkg/errutil"
	"mgstats/pkg/goutil"
	"mgstats/repo"
)

var testNow = time.Date(2025, 1, 8, 12, 30, 0, 0, time.UTC)

func newTestHandlers(t *testing.T) (*statsHandler, *eventHandler) {
	t.Helper()

	eventRepo := repo.NewEventRepo(context.Background(), time.Hour)
	t.Cleanup(func() {
		_ = eventRepo.Close(context.Background())
	})

	now := func() time.Time { return testNow }

	return &statsHandler{eventRepo: eventRepo, now: now}, &eventHandler{eventRepo: eventRepo, now: now}
}

func seed(t *testing.T, h EventHandler, domain string, reqs ...*CreateEventRequest) {
	t.Helper()

	for _, req := range reqs {
		req.SetDomain(domain)
		if err := h.CreateEvent(context.Background(), req, new(CreateEventResponse)); err != nil {
			t.Fatalf("create event failed: %v", err)
		}
	}
}

func TestGetTotal(t *testing.T) {
	sh, eh := newTestHandlers(t)

	seed(t, eh, "example.com",
		&CreateEventRequest{Event: goutil.String("accepted"), Metric: goutil.String("outgoing"), Time: goutil.String("Mon, 06 Jan 2025 10:00:00 GMT"), Count: goutil.Int64(10)},
		&CreateEventRequest{Event: goutil.String("accepted"), Metric: goutil.String("incoming"), Time: goutil.String("Mon, 06 Jan 2025 23:59:59 GMT"), Count: goutil.Int64(5)},
		&CreateEventRequest{Event: goutil.String("delivered"), Metric: goutil.String("smtp"), Time: goutil.String("Tue, 07 Jan 2025 01:00:00 GMT")},
		&CreateEventRequest{Event: goutil.String("failed"), Metric: goutil.String("bounce"), Time: goutil.String("Tue, 07 Jan 2025 02:00:00 GMT"), Count: goutil.Int64(4)},
		&CreateEventRequest{Event: goutil.String("failed"), Metric: goutil.String("espblock"), Severity: goutil.String("temporary"), Time: goutil.String("Tue, 07 Jan 2025 03:00:00 GMT")},
		// outside of the range
		&CreateEventRequest{Event: goutil.String("accepted"), Time: goutil.String("Mon, 30 Dec 2024 10:00:00 GMT")},
	)
	seed(t, eh, "other.com",
		&CreateEventRequest{Event: goutil.String("accepted"), Time: goutil.String("Mon, 06 Jan 2025 10:00:00 GMT")},
	)

	req := &GetTotalRequest{
		TotalQuery: TotalQuery{
			Event:    []string{"accepted", "failed", "accepted"},
			Duration: goutil.String("3d"),
		},
	}
	req.SetDomain("example.com")

	res := new(GetTotalResponse)
	if err := sh.GetTotal(context.Background(), req, res); err != nil {
		t.Fatalf("get total failed: %v", err)
	}

	if res.GetResolution() != entity.ResolutionDay {
		t.Errorf("expected day resolution, got %q", res.GetResolution())
	}
	if got := res.GetStart().String(); got != "Sun, 05 Jan 2025 12:30:00 GMT" {
		t.Errorf("unexpected start %q", got)
	}
	if got := res.GetEnd().String(); got != "Wed, 08 Jan 2025 12:30:00 GMT" {
		t.Errorf("unexpected end %q", got)
	}

	stats := res.GetStats()
	if len(stats) != 4 {
		t.Fatalf("expected 4 daily buckets, got %d", len(stats))
	}
	for i, want := range []string{
		"Sun, 05 Jan 2025 00:00:00 GMT",
		"Mon, 06 Jan 2025 00:00:00 GMT",
		"Tue, 07 Jan 2025 00:00:00 GMT",
		"Wed, 08 Jan 2025 00:00:00 GMT",
	} {
		if got := stats[i].GetTime().String(); got != want {
			t.Errorf("bucket %d: expected %q, got %q", i, want, got)
		}
	}

	if stats[0].GetAccepted().Total() != 0 || !stats[0].GetAccepted().Has(entity.MetricTotal) {
		t.Errorf("expected an empty accepted breakdown, got %v", stats[0].GetAccepted())
	}

	accepted := stats[1].GetAccepted()
	if accepted.Total() != 15 || accepted.Get("outgoing") != 10 || accepted.Get("incoming") != 5 {
		t.Errorf("unexpected accepted counts %v", accepted)
	}

	failed := stats[2].GetFailed()
	if failed.GetPermanent().Total() != 4 || failed.GetPermanent().Get("bounce") != 4 {
		t.Errorf("unexpected permanent counts %v", failed.GetPermanent())
	}
	if failed.GetTemporary().Total() != 1 {
		t.Errorf("unexpected temporary counts %v", failed.GetTemporary())
	}

	if stats[2].GetDelivered() != nil {
		t.Errorf("expected delivered to be left out, got %v", stats[2].GetDelivered())
	}
}

func TestGetTotalResolutions(t *testing.T) {
	sh, eh := newTestHandlers(t)

	seed(t, eh, "example.com",
		&CreateEventRequest{Event: goutil.String("opened"), Time: goutil.String("Wed, 08 Jan 2025 10:15:00 GMT")},
		&CreateEventRequest{Event: goutil.String("opened"), Time: goutil.String("Wed, 08 Jan 2025 10:45:00 GMT")},
		&CreateEventRequest{Event: goutil.String("opened"), Time: goutil.String("Wed, 08 Jan 2025 11:00:00 GMT")},
	)

	tests := []struct {
		name       string
		query      TotalQuery
		wantLen    int
		wantCounts map[int]int64
	}{
		{
			name: "hour",
			query: TotalQuery{
				Event:      []string{"opened"},
				Resolution: goutil.String("hour"),
				Duration:   goutil.String("3h"),
			},
			wantLen:    4,
			wantCounts: map[int]int64{1: 2, 2: 1},
		},
		{
			name: "month",
			query: TotalQuery{
				Event:      []string{"opened"},
				Resolution: goutil.String("month"),
				Start:      goutil.String("Sun, 01 Dec 2024 00:00:00 GMT"),
			},
			wantLen:    2,
			wantCounts: map[int]int64{0: 0, 1: 3},
		},
		{
			name: "explicit range",
			query: TotalQuery{
				Event: []string{"opened"},
				Start: goutil.String("Wed, 08 Jan 2025 00:00:00 GMT"),
				End:   goutil.String("Wed, 08 Jan 2025 10:30:00 GMT"),
			},
			wantLen:    1,
			wantCounts: map[int]int64{0: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &GetTotalRequest{TotalQuery: tt.query}
			req.SetDomain("example.com")

			res := new(GetTotalResponse)
			if err := sh.GetTotal(context.Background(), req, res); err != nil {
				t.Fatalf("get total failed: %v", err)
			}

			if len(res.GetStats()) != tt.wantLen {
				t.Fatalf("expected %d buckets, got %d", tt.wantLen, len(res.GetStats()))
			}
			for idx, want := range tt.wantCounts {
				if got := res.GetStats()[idx].GetOpened().Total(); got != want {
					t.Errorf("bucket %d: expected %d, got %d", idx, want, got)
				}
			}
		})
	}
}

func TestGetTotalAllEventsByDefault(t *testing.T) {
	sh, _ := newTestHandlers(t)

	req := new(GetTotalRequest)
	req.SetDomain("example.com")

	res := new(GetTotalResponse)
	if err := sh.GetTotal(context.Background(), req, res); err != nil {
		t.Fatalf("get total failed: %v", err)
	}

	if len(res.GetStats()) != 8 {
		t.Fatalf("expected 8 daily buckets over 7 days, got %d", len(res.GetStats()))
	}
	for _, e := range entity.SupportedEvents {
		if _, ok := res.GetStats()[0].GetCounts(e); !ok {
			t.Errorf("expected counts for %s", e)
		}
	}
}

func TestGetTotalInvalid(t *testing.T) {
	sh, _ := newTestHandlers(t)

	tests := []struct {
		name    string
		domain  string
		query   TotalQuery
		wantErr error
	}{
		{
			name:    "empty domain",
			domain:  "",
			wantErr: errutil.ErrInvalidArgument,
		},
		{
			name:    "unknown event",
			domain:  "example.com",
			query:   TotalQuery{Event: []string{"bounced"}},
			wantErr: entity.ErrUnsupportedEvent,
		},
		{
			name:    "unknown resolution",
			domain:  "example.com",
			query:   TotalQuery{Resolution: goutil.String("week")},
			wantErr: entity.ErrUnsupportedResolution,
		},
		{
			name:    "malformed start",
			domain:  "example.com",
			query:   TotalQuery{Start: goutil.String("yesterday")},
			wantErr: entity.ErrInvalidDate,
		},
		{
			name:   "end before start",
			domain: "example.com",
			query: TotalQuery{
				Start: goutil.String("Wed, 08 Jan 2025 00:00:00 GMT"),
				End:   goutil.String("Tue, 07 Jan 2025 00:00:00 GMT"),
			},
			wantErr: ErrEndBeforeStart,
		},
		{
			name:   "too many buckets",
			domain: "example.com",
			query: TotalQuery{
				Resolution: goutil.String("hour"),
				Duration:   goutil.String("100m"),
			},
			wantErr: ErrTooManyBuckets,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &GetTotalRequest{TotalQuery: tt.query}
			if tt.domain != "" {
				req.SetDomain(tt.domain)
			}

			err := sh.GetTotal(context.Background(), req, new(GetTotalResponse))
			if !errors.Is(err, errutil.ErrInvalidArgument) {
				t.Errorf("expected invalid argument, got %v", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetAccountTotal(t *testing.T) {
	sh, eh := newTestHandlers(t)

	seed(t, eh, "a.com", &CreateEventRequest{Event: goutil.String("clicked"), Count: goutil.Int64(3)})
	seed(t, eh, "b.com", &CreateEventRequest{Event: goutil.String("clicked"), Count: goutil.Int64(4)})

	req := &GetAccountTotalRequest{
		TotalQuery: TotalQuery{
			Event:    []string{"clicked"},
			Duration: goutil.String("1d"),
		},
	}

	res := new(GetTotalResponse)
	if err := sh.GetAccountTotal(context.Background(), req, res); err != nil {
		t.Fatalf("get account total failed: %v", err)
	}

	var total int64
	for _, item := range res.GetStats() {
		total += item.GetClicked().Total()
	}
	if total != 7 {
		t.Errorf("expected 7 clicks across domains, got %d", total)
	}
}

func TestGetAggregates(t *testing.T) {
	sh, eh := newTestHandlers(t)

	seed(t, eh, "example.com",
		&CreateEventRequest{Event: goutil.String("delivered"), Provider: goutil.String("gmail.com"), Country: goutil.String("SG"), Count: goutil.Int64(3)},
		&CreateEventRequest{Event: goutil.String("opened"), Provider: goutil.String("gmail.com"), Device: goutil.String("mobile")},
		&CreateEventRequest{Event: goutil.String("delivered"), Provider: goutil.String("yahoo.com")},
		&CreateEventRequest{Event: goutil.String("delivered")},
	)

	req := &GetAggregatesRequest{Dimension: goutil.String("providers")}
	req.SetDomain("example.com")

	res := new(GetAggregatesResponse)
	if err := sh.GetAggregates(context.Background(), req, res); err != nil {
		t.Fatalf("get aggregates failed: %v", err)
	}

	if len(res.GetItems()) != 2 {
		t.Errorf("expected 2 providers, got %v", res.GetItems())
	}
	gmail := res.Get("gmail.com")
	if gmail.Get("delivered") != 3 || gmail.Get("opened") != 1 {
		t.Errorf("unexpected gmail counts %v", gmail)
	}

	req.Dimension = goutil.String("browsers")
	if err := sh.GetAggregates(context.Background(), req, new(GetAggregatesResponse)); !errors.Is(err, entity.ErrUnexpectedDimension) {
		t.Errorf("expected ErrUnexpectedDimension, got %v", err)
	}
}
