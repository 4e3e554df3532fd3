package repo

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"mgstats/entity"
	"mgstats/pkg/goutil"
)

func newRecord(event entity.Event, metric string) *entity.EventRecord {
	d := entity.NewDate(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	return &entity.EventRecord{
		Event:  event,
		Metric: goutil.String(metric),
		Time:   &d,
	}
}

func TestEventRepo(t *testing.T) {
	ctx := context.Background()

	r := NewEventRepo(ctx, time.Minute)
	defer func() {
		_ = r.Close(ctx)
	}()

	if err := r.Create(ctx, "a.com", newRecord(entity.EventAccepted, "outgoing")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	before, err := r.GetByDomain(ctx, "a.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if err := r.Create(ctx, "A.com", newRecord(entity.EventDelivered, "smtp"), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := r.Create(ctx, "b.com", newRecord(entity.EventOpened, "")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	after, err := r.GetByDomain(ctx, "a.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(before) != 1 || len(after) != 2 {
		t.Errorf("expected 1 then 2 records, got %d and %d", len(before), len(after))
	}

	if got := r.Domains(ctx); !reflect.DeepEqual(got, []string{"a.com", "b.com"}) {
		t.Errorf("unexpected domains %v", got)
	}

	all, err := r.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 records, got %d", len(all))
	}

	empty, err := r.GetByDomain(ctx, "c.com")
	if err != nil || len(empty) != 0 {
		t.Errorf("expected no records, got %v, err: %v", empty, err)
	}

	if err := r.Create(ctx, "", newRecord(entity.EventAccepted, "")); !errors.Is(err, ErrEmptyDomain) {
		t.Errorf("expected ErrEmptyDomain, got %v", err)
	}

	r.Flush(ctx)
	if got := r.Domains(ctx); len(got) != 0 {
		t.Errorf("expected no domains after flush, got %v", got)
	}
}

func TestEventRepoExpiration(t *testing.T) {
	ctx := context.Background()

	r := NewEventRepo(ctx, 20*time.Millisecond)
	if err := r.Create(ctx, "a.com", newRecord(entity.EventAccepted, "")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	records, err := r.GetByDomain(ctx, "a.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected expired records, got %d", len(records))
	}
}
