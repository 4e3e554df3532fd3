package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"mgstats/api"
	"mgstats/config"
	"mgstats/job/fetch_aggregates"
	"mgstats/job/fetch_totals"
	"mgstats/pkg/logutil"
	"mgstats/pkg/service"
)

type newJobFunc func(cfg *config.Config, stats api.Stats, out io.Writer) service.Job

var jobs = map[string]newJobFunc{
	"fetch-totals":     fetch_totals.New,
	"fetch-aggregates": fetch_aggregates.New,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns the process exit code so deferred cleanup happens before exit.
func run(args []string, out io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(out, "Usage: go run ./job <job_name>")
		return 1
	}

	opt := config.NewOptions().LoadEnv()

	ctx := logutil.InitZeroLog(context.Background(), opt.LogLevel)

	jobName := args[0]
	newJob, exists := jobs[jobName]
	if !exists {
		log.Ctx(ctx).Error().Msgf("job %s not found", jobName)
		return 1
	}

	cfg := config.NewConfig()
	if err := cfg.Load(ctx, opt.ConfigPath); err != nil {
		log.Ctx(ctx).Error().Msgf("load config failed: %v", err)
		return 1
	}

	client, err := api.NewClient(ctx, cfg.API)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("init api client failed, err: %v", err)
		return 1
	}
	defer func() {
		if err := client.Close(ctx); err != nil {
			log.Ctx(ctx).Error().Msgf("close api client failed, err: %v", err)
		}
	}()

	if err := execute(ctx, newJob(cfg, client.Stats(), out)); err != nil {
		return 1
	}

	log.Ctx(ctx).Info().Msg("job executed successfully")

	return 0
}

func execute(ctx context.Context, job service.Job) error {
	if err := job.Init(ctx); err != nil {
		log.Ctx(ctx).Error().Msgf("init job err: %v", err)
		return err
	}

	if err := job.Run(ctx); err != nil {
		log.Ctx(ctx).Error().Msgf("run job err: %v", err)
		return err
	}

	if err := job.CleanUp(ctx); err != nil {
		log.Ctx(ctx).Error().Msgf("cleanup job err: %v", err)
		return err
	}

	return nil
}
