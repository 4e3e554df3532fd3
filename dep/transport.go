package dep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"mgstats/config"
	"mgstats/pkg/errutil"
	"mgstats/pkg/httputil"
	"mgstats/pkg/metrics"
)

var (
	ErrEmptyAPIKey     = errors.New("empty api key")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
)

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Transport sends authenticated requests to the API. Non-2xx responses are
// returned as errutil HTTP errors; network errors are returned unchanged.
type Transport interface {
	Get(ctx context.Context, name, path string, query url.Values) (*http.Response, error)
	Close(ctx context.Context) error
}

type Option func(*transport)

func WithHTTPClient(c HTTPClient) Option {
	return func(t *transport) {
		if c != nil {
			t.client = c
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *transport) {
		t.metrics = m
	}
}

// WithBackOff retries 429 and 5xx responses using b.
func WithBackOff(b func() backoff.BackOff) Option {
	return func(t *transport) {
		t.newBackOff = b
	}
}

type transport struct {
	endpoint   string
	apiKey     string
	userAgent  string
	client     HTTPClient
	metrics    *metrics.Metrics
	newBackOff func() backoff.BackOff
}

func NewTransport(_ context.Context, cfg config.API, opts ...Option) (Transport, error) {
	if cfg.APIKey == "" {
		return nil, errutil.InvalidArgumentError(ErrEmptyAPIKey)
	}

	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errutil.InvalidArgumentError(fmt.Errorf("%w: %q", ErrInvalidEndpoint, cfg.Endpoint))
	}

	t := &transport{
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}

	if cfg.Retry.Enabled {
		t.newBackOff = NewExponentialBackOff(cfg.Retry)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	return t, nil
}

func NewExponentialBackOff(cfg config.Retry) func() backoff.BackOff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		if cfg.InitialIntervalMillis > 0 {
			b.InitialInterval = time.Duration(cfg.InitialIntervalMillis) * time.Millisecond
		}
		if cfg.MaxElapsedTimeSeconds > 0 {
			b.MaxElapsedTime = time.Duration(cfg.MaxElapsedTimeSeconds) * time.Second
		}
		return backoff.WithMaxRetries(b, cfg.MaxRetries)
	}
}

func (t *transport) Get(ctx context.Context, name, path string, query url.Values) (*http.Response, error) {
	u := t.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	if t.newBackOff == nil {
		return t.do(ctx, name, u)
	}

	notify := func(err error, wait time.Duration) {
		log.Ctx(ctx).Warn().Msgf("GET %s failed, retry in %v, err: %v", path, wait, err)
	}

	return backoff.RetryNotifyWithData(func() (*http.Response, error) {
		res, err := t.do(ctx, name, u)
		if err != nil && !isRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return res, err
	}, backoff.WithContext(t.newBackOff(), ctx), notify)
}

func (t *transport) do(ctx context.Context, name, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	req.SetBasicAuth(config.APIUser, t.apiKey)
	req.Header.Set("Accept", httputil.ContentTypeJson)
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	start := time.Now()

	res, err := t.client.Do(req)
	if err != nil {
		t.metrics.ObserveError(name, metrics.ErrTypeNetwork)
		log.Ctx(ctx).Error().Msgf("GET %s failed, err: %v", req.URL.Path, err)
		return nil, err
	}

	t.metrics.ObserveRequest(name, res.StatusCode, start)
	log.Ctx(ctx).Debug().Msgf("GET %s, status: %d, elapsed: %v", req.URL.Path, res.StatusCode, time.Since(start))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer func() {
			_, _ = io.Copy(io.Discard, res.Body)
			_ = res.Body.Close()
		}()

		t.metrics.ObserveError(name, metrics.ErrTypeHttp)

		return nil, errutil.HttpError(res.StatusCode, httputil.ReadErrorMessage(res))
	}

	return res, nil
}

func (t *transport) Close(_ context.Context) error {
	if c, ok := t.client.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
	return nil
}

func isRetryable(err error) bool {
	code := errutil.StatusCode(err)
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
