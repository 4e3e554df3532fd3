package router

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"mgstats/config"
	"mgstats/pkg/errutil"
	"mgstats/pkg/httputil"
	"mgstats/pkg/logutil"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDomainNotFound     = errors.New("domain not found")
)

type apiKeyMiddleware struct {
	apiKey string
}

// NewAPIKeyMiddleware only lets through requests authenticated with HTTP
// basic auth as the api user with apiKey.
func NewAPIKeyMiddleware(apiKey string) Middleware {
	return &apiKeyMiddleware{
		apiKey: apiKey,
	}
}

func (m *apiKeyMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, key, ok := r.BasicAuth()
		if !ok {
			log.Ctx(ctx).Warn().Msg("missing basic auth")
			m.returnErr(w, r)
			return
		}

		if user != config.APIUser || subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) != 1 {
			log.Ctx(ctx).Warn().Msgf("invalid credentials, user: %s", user)
			m.returnErr(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *apiKeyMiddleware) returnErr(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Basic realm="MG API"`)
	httputil.ReturnServerResponse(w, r, nil, errutil.UnauthorizedError(ErrInvalidCredentials))
}

type domainMiddleware struct {
	domains map[string]struct{}
}

// NewDomainMiddleware rejects routes whose domain path var is not one of
// domains. Routes without a domain var pass through.
func NewDomainMiddleware(domains []string) Middleware {
	m := &domainMiddleware{
		domains: make(map[string]struct{}, len(domains)),
	}
	for _, d := range domains {
		m.domains[strings.ToLower(d)] = struct{}{}
	}
	return m
}

func (m *domainMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		domain, ok := mux.Vars(r)["domain"]
		if ok {
			if _, known := m.domains[strings.ToLower(domain)]; !known {
				httputil.ReturnServerResponse(w, r, nil, errutil.NotFoundError(fmt.Errorf("%w: %s", ErrDomainNotFound, domain)))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type logMiddleware struct{}

// NewLogMiddleware tags each request with a log_id and logs its outcome.
func NewLogMiddleware() Middleware {
	return new(logMiddleware)
}

func (m *logMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			start = time.Now()
			ctx   = logutil.WithLogID(r.Context())
			rec   = &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		)

		next.ServeHTTP(rec, r.WithContext(ctx))

		log.Ctx(ctx).Info().Msgf("%s %s, status: %d, elapsed: %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
