package router

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"mgstats/pkg/errutil"
	"mgstats/pkg/httputil"
)

var (
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrCannotDecodeUrlParams  = errors.New("cannot decode url params")
)

type Middleware interface {
	Handle(http.Handler) http.Handler
}

// Handler decodes query params, path vars and the JSON body into a new Req,
// calls HandleFunc and writes Res, or the error, as JSON.
type Handler struct {
	Req        interface{}
	Res        interface{}
	HandleFunc func(ctx context.Context, req interface{}, res interface{}) error

	reqT  reflect.Type
	respT reflect.Type
}

type HttpRoute struct {
	Method      string
	Path        string
	Handler     Handler
	Middlewares []Middleware
}

type HttpRouter struct {
	*mux.Router
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{
		Router: mux.NewRouter(),
	}
}

func (r *HttpRouter) RegisterHttpRoute(hr *HttpRoute) {
	// save req and res type
	hr.Handler.reqT = reflect.TypeOf(hr.Handler.Req).Elem()
	hr.Handler.respT = reflect.TypeOf(hr.Handler.Res).Elem()

	// calling chain
	chain := http.Handler(hr.Handler)

	// wrap middlewares from right to left
	for i := len(hr.Middlewares) - 1; i >= 0; i-- {
		chain = hr.Middlewares[i].Handle(chain)
	}

	r.Methods(hr.Method).Path(hr.Path).Handler(chain)
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := reflect.New(h.reqT).Interface()
	res := reflect.New(h.respT).Interface()

	params := r.URL.Query()
	for k, v := range mux.Vars(r) {
		// path vars win over query params of the same name
		params[k] = []string{v}
	}

	if err := decodeParams(req, params); err != nil {
		log.Ctx(ctx).Error().Msgf("decode url params error: %v", err)
		httputil.ReturnServerResponse(w, r, nil, errutil.BadRequestError(ErrCannotDecodeUrlParams))
		return
	}

	if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		if !httputil.HasContentType(r.Header, httputil.ContentTypeJson) {
			httputil.ReturnServerResponse(w, r, nil, errutil.BadRequestError(ErrUnsupportedContentType))
			return
		}
		if err := httputil.ReadJsonBody(r, req); err != nil {
			log.Ctx(ctx).Error().Msgf("read json body error: %v", err)
			httputil.ReturnServerResponse(w, r, nil, errutil.BadRequestError(err))
			return
		}
	}

	err := h.HandleFunc(ctx, req, res)
	httputil.ReturnServerResponse(w, r, res, err)
}

func decodeParams(dst interface{}, params url.Values) error {
	if len(params) == 0 {
		return nil
	}
	return httputil.DecodeQuery(dst, params)
}
