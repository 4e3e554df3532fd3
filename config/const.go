package config

const (
	PathStatsTotal        = "/v3/%s/stats/total"
	PathAccountStatsTotal = "/v3/stats/total"
	PathAggregates        = "/v3/%s/aggregates/%s"
	PathMockEvents        = "/mock/%s/events"
)

// route templates served by the mock server
const (
	RouteHealthCheck       = "/"
	RouteStatsTotal        = "/v3/{domain}/stats/total"
	RouteAccountStatsTotal = "/v3/stats/total"
	RouteAggregates        = "/v3/{domain}/aggregates/{dimension}"
	RouteMockEvents        = "/mock/{domain}/events"
)

const (
	DefaultEndpoint   = "https://api.mailgun.net"
	EUEndpoint        = "https://api.eu.mailgun.net"
	DefaultUserAgent  = "mgstats-go/1.0"
	APIUser           = "api"
	DefaultPort       = 9090
	DefaultConfigPath = "./bin/config.json"
	LogLevelDebug     = "DEBUG"
)
