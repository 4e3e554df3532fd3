package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"mgstats/pkg/goutil"
)

type Config struct {
	API        API        `mapstructure:"api" json:"api"`
	Query      Query      `mapstructure:"query" json:"query"`
	MockServer MockServer `mapstructure:"mock_server" json:"mock_server"`
	Job        Job        `mapstructure:"job" json:"job"`
}

type API struct {
	APIKey         string `mapstructure:"api_key" json:"api_key"`
	Endpoint       string `mapstructure:"endpoint" json:"endpoint"`
	UserAgent      string `mapstructure:"user_agent" json:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" json:"timeout_seconds"`
	Retry          Retry  `mapstructure:"retry" json:"retry"`
	EnableMetrics  bool   `mapstructure:"enable_metrics" json:"enable_metrics"`
}

// Retry is off by default: failed calls surface to the caller as is.
type Retry struct {
	Enabled               bool   `mapstructure:"enabled" json:"enabled"`
	MaxRetries            uint64 `mapstructure:"max_retries" json:"max_retries"`
	InitialIntervalMillis int    `mapstructure:"initial_interval_millis" json:"initial_interval_millis"`
	MaxElapsedTimeSeconds int    `mapstructure:"max_elapsed_time_seconds" json:"max_elapsed_time_seconds"`
}

// Query is the stats query run by jobs.
type Query struct {
	Domains    []string `mapstructure:"domains" json:"domains"`
	Events     []string `mapstructure:"events" json:"events"`
	Resolution string   `mapstructure:"resolution" json:"resolution"`
	Duration   string   `mapstructure:"duration" json:"duration"`
}

type MockServer struct {
	APIKey                 string   `mapstructure:"api_key" json:"api_key"`
	Domains                []string `mapstructure:"domains" json:"domains"`
	StoreExpirationMinutes int      `mapstructure:"store_expiration_minutes" json:"store_expiration_minutes"`
	AllowedOrigins         []string `mapstructure:"allowed_origins" json:"allowed_origins"`
}

type Job struct {
	Concurrency int `mapstructure:"concurrency" json:"concurrency"`
}

func NewConfig() *Config {
	return &Config{
		API: API{
			APIKey:         "",
			Endpoint:       DefaultEndpoint,
			UserAgent:      DefaultUserAgent,
			TimeoutSeconds: 30,
			Retry: Retry{
				Enabled:               false,
				MaxRetries:            3,
				InitialIntervalMillis: 500,
				MaxElapsedTimeSeconds: 30,
			},
			EnableMetrics: false,
		},
		Query: Query{
			Domains:    []string{},
			Events:     []string{"accepted", "delivered", "failed"},
			Resolution: "day",
			Duration:   "7d",
		},
		MockServer: MockServer{
			APIKey:                 "",
			Domains:                []string{},
			StoreExpirationMinutes: 60,
			AllowedOrigins:         []string{"*"},
		},
		Job: Job{
			Concurrency: 5,
		},
	}
}

var envBindings = map[string]string{
	"api.api_key":         "MAILGUN_API_KEY",
	"api.endpoint":        "MAILGUN_ENDPOINT",
	"api.retry.enabled":   "MAILGUN_RETRY",
	"query.domains":       "MAILGUN_DOMAINS",
	"query.events":        "MAILGUN_EVENTS",
	"mock_server.api_key": "MAILGUN_MOCK_API_KEY",
}

// Load overlays the JSON file at path and MAILGUN_* environment variables on
// top of the current values. A missing file is not an error.
func (c *Config) Load(ctx context.Context, path string) error {
	v := viper.New()

	setDefaults(v, c)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}

	if path == "" {
		log.Ctx(ctx).Warn().Msgf("empty config file")
	} else {
		v.SetConfigFile(path)
		v.SetConfigType("json")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return fmt.Errorf("read config failed: %w", err)
			}
			log.Ctx(ctx).Warn().Msgf("config file does not exist, file path: %s", path)
		}
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("decode config failed: %w", err)
	}

	c.API.Endpoint = strings.TrimRight(c.API.Endpoint, "/")

	c.Query.Domains = splitList(c.Query.Domains)
	c.Query.Events = splitList(c.Query.Events)
	c.MockServer.Domains = splitList(c.MockServer.Domains)

	return nil
}

// splitList flattens comma separated entries, as set through env vars, and
// drops blanks.
func splitList(list []string) []string {
	res := make([]string, 0, len(list))
	for _, v := range list {
		res = append(res, goutil.SplitTrim(v, ",")...)
	}
	return res
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("api.api_key", c.API.APIKey)
	v.SetDefault("api.endpoint", c.API.Endpoint)
	v.SetDefault("api.user_agent", c.API.UserAgent)
	v.SetDefault("api.timeout_seconds", c.API.TimeoutSeconds)
	v.SetDefault("api.retry.enabled", c.API.Retry.Enabled)
	v.SetDefault("api.retry.max_retries", c.API.Retry.MaxRetries)
	v.SetDefault("api.retry.initial_interval_millis", c.API.Retry.InitialIntervalMillis)
	v.SetDefault("api.retry.max_elapsed_time_seconds", c.API.Retry.MaxElapsedTimeSeconds)
	v.SetDefault("api.enable_metrics", c.API.EnableMetrics)
	v.SetDefault("query.domains", c.Query.Domains)
	v.SetDefault("query.events", c.Query.Events)
	v.SetDefault("query.resolution", c.Query.Resolution)
	v.SetDefault("query.duration", c.Query.Duration)
	v.SetDefault("mock_server.api_key", c.MockServer.APIKey)
	v.SetDefault("mock_server.domains", c.MockServer.Domains)
	v.SetDefault("mock_server.store_expiration_minutes", c.MockServer.StoreExpirationMinutes)
	v.SetDefault("mock_server.allowed_origins", c.MockServer.AllowedOrigins)
	v.SetDefault("job.concurrency", c.Job.Concurrency)
}
