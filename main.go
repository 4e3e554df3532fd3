package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"mgstats/config"
	"mgstats/handler"
	"mgstats/pkg/logutil"
	"mgstats/pkg/router"
	"mgstats/pkg/service"
	"mgstats/repo"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	ctx context.Context
	opt *config.Option
	cfg *config.Config

	httpServer *http.Server

	eventRepo repo.EventRepo

	// api handlers
	statsHandler handler.StatsHandler
	eventHandler handler.EventHandler
}

func main() {
	s := new(server)
	if err := service.Run(s); err != nil {
		log.Fatal().Msg(err.Error())
	}
}

func (s *server) Init() error {
	s.opt = config.NewOptions().LoadEnv()
	return nil
}

func (s *server) Start() error {
	// ====== init logger ===== //

	s.ctx = logutil.InitZeroLog(context.Background(), s.opt.LogLevel)

	// ===== init config ===== //

	s.cfg = config.NewConfig()
	if err := s.cfg.Load(s.ctx, s.opt.ConfigPath); err != nil {
		log.Ctx(s.ctx).Error().Msgf("load config failed, err: %v", err)
		return err
	}

	// ===== init repos ===== //

	s.eventRepo = repo.NewEventRepo(s.ctx, time.Duration(s.cfg.MockServer.StoreExpirationMinutes)*time.Minute)

	// ===== init handlers ===== //

	s.statsHandler = handler.NewStatsHandler(s.eventRepo)
	s.eventHandler = handler.NewEventHandler(s.eventRepo)

	// ===== start server ===== //

	addr := fmt.Sprintf(":%d", s.opt.Port)

	s.httpServer = &http.Server{
		BaseContext: func(_ net.Listener) context.Context {
			return s.ctx
		},
		Addr:              addr,
		Handler:           s.newHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Msgf("starting HTTP server at %s", addr)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fail to start HTTP server, err: %v", err)
		}
	}()

	return nil
}

func (s *server) Stop() error {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(s.ctx, shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("shutdown HTTP server failed, err: %v", err)
			return err
		}
	}

	if s.eventRepo != nil {
		if err := s.eventRepo.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close event repo failed, err: %v", err)
			return err
		}
	}

	return nil
}

func (s *server) newHandler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.MockServer.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Accept"},
	})

	return c.Handler(s.registerRoutes())
}

type HealthCheckRequest struct{}

type HealthCheckResponse struct{}

func (s *server) registerRoutes() http.Handler {
	r := router.NewHttpRouter()

	var middlewares []router.Middleware
	middlewares = append(middlewares, router.NewLogMiddleware())
	if s.cfg.MockServer.APIKey != "" {
		middlewares = append(middlewares, router.NewAPIKeyMiddleware(s.cfg.MockServer.APIKey))
	} else {
		log.Ctx(s.ctx).Warn().Msg("mock server api key is empty, requests are not authenticated")
	}
	if len(s.cfg.MockServer.Domains) > 0 {
		middlewares = append(middlewares, router.NewDomainMiddleware(s.cfg.MockServer.Domains))
	}

	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.RouteHealthCheck,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(HealthCheckRequest),
			Res: new(HealthCheckResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return nil
			},
		},
	})

	// account_stats_total
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.RouteAccountStatsTotal,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(handler.GetAccountTotalRequest),
			Res: new(handler.GetTotalResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.statsHandler.GetAccountTotal(ctx, req.(*handler.GetAccountTotalRequest), res.(*handler.GetTotalResponse))
			},
		},
		Middlewares: middlewares,
	})

	// stats_total
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.RouteStatsTotal,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(handler.GetTotalRequest),
			Res: new(handler.GetTotalResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.statsHandler.GetTotal(ctx, req.(*handler.GetTotalRequest), res.(*handler.GetTotalResponse))
			},
		},
		Middlewares: middlewares,
	})

	// aggregates
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.RouteAggregates,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(handler.GetAggregatesRequest),
			Res: new(handler.GetAggregatesResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.statsHandler.GetAggregates(ctx, req.(*handler.GetAggregatesRequest), res.(*handler.GetAggregatesResponse))
			},
		},
		Middlewares: middlewares,
	})

	// create_event
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.RouteMockEvents,
		Method: http.MethodPost,
		Handler: router.Handler{
			Req: new(handler.CreateEventRequest),
			Res: new(handler.CreateEventResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.eventHandler.CreateEvent(ctx, req.(*handler.CreateEventRequest), res.(*handler.CreateEventResponse))
			},
		},
		Middlewares: middlewares,
	})

	return r
}
