package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"mgstats/entity"
)

const eventKeyPrefix = "events"

var ErrEmptyDomain = errors.New("empty domain")

// EventRepo keeps the email events of each domain in memory. Events of a
// domain expire together, expiration after the domain's last write.
type EventRepo interface {
	Create(ctx context.Context, domain string, records ...*entity.EventRecord) error
	GetByDomain(ctx context.Context, domain string) ([]*entity.EventRecord, error)
	// GetAll returns the events of every domain.
	GetAll(ctx context.Context) ([]*entity.EventRecord, error)
	Domains(ctx context.Context) []string
	Flush(ctx context.Context)
	Close(ctx context.Context) error
}

type eventRepo struct {
	mu         sync.Mutex
	cache      *cache.Cache
	expiration time.Duration
}

// NewEventRepo keeps events for expiration. A non-positive expiration keeps
// them until the repo is closed.
func NewEventRepo(_ context.Context, expiration time.Duration) EventRepo {
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}

	cleanupInterval := expiration / 2
	if expiration == cache.NoExpiration {
		cleanupInterval = 0
	}

	return &eventRepo{
		cache:      cache.New(expiration, cleanupInterval),
		expiration: expiration,
	}
}

func (r *eventRepo) Create(_ context.Context, domain string, records ...*entity.EventRecord) error {
	if domain == "" {
		return ErrEmptyDomain
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.getKey(domain)

	var existing []*entity.EventRecord
	if v, ok := r.cache.Get(key); ok {
		existing = v.([]*entity.EventRecord)
	}

	// copy so readers holding the previous slice never see the append
	updated := make([]*entity.EventRecord, 0, len(existing)+len(records))
	updated = append(updated, existing...)
	for _, record := range records {
		if record != nil {
			updated = append(updated, record)
		}
	}

	r.cache.Set(key, updated, r.expiration)

	return nil
}

func (r *eventRepo) GetByDomain(_ context.Context, domain string) ([]*entity.EventRecord, error) {
	if domain == "" {
		return nil, ErrEmptyDomain
	}

	v, ok := r.cache.Get(r.getKey(domain))
	if !ok {
		return []*entity.EventRecord{}, nil
	}

	return v.([]*entity.EventRecord), nil
}

func (r *eventRepo) GetAll(ctx context.Context) ([]*entity.EventRecord, error) {
	records := make([]*entity.EventRecord, 0)
	for _, domain := range r.Domains(ctx) {
		domainRecords, err := r.GetByDomain(ctx, domain)
		if err != nil {
			return nil, err
		}
		records = append(records, domainRecords...)
	}
	return records, nil
}

func (r *eventRepo) Domains(_ context.Context) []string {
	prefix := fmt.Sprintf("%s:", eventKeyPrefix)

	domains := make([]string, 0)
	for key := range r.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			domains = append(domains, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(domains)

	return domains
}

func (r *eventRepo) getKey(domain string) string {
	return fmt.Sprintf("%s:%s", eventKeyPrefix, strings.ToLower(domain))
}

func (r *eventRepo) Flush(_ context.Context) {
	r.cache.Flush()
}

func (r *eventRepo) Close(ctx context.Context) error {
	r.Flush(ctx)
	return nil
}
