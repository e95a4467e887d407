package scheduler

import (
	"context"
	"fmt"

	"github.com/craftline/forecast-backend/internal/service"
	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// Scheduler regenerates forecasts on a cron schedule so the active snapshots
// stay current without manual runs.
type Scheduler struct {
	scheduler gocron.Scheduler
	forecasts *service.ForecastService
}

func New(forecasts *service.ForecastService, cronExpr string) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	s := &Scheduler{scheduler: sched, forecasts: forecasts}

	_, err = sched.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(s.regenerate, context.Background()),
		gocron.WithName("forecast-regeneration"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("registering forecast job: %w", err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
	log.Info().Msg("Forecast scheduler started")
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) regenerate(ctx context.Context) {
	log.Info().Msg("Scheduled forecast regeneration starting")

	result, err := s.forecasts.RunForecast(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Scheduled forecast regeneration failed")
		return
	}

	log.Info().
		Str("run_id", result.Run.ID.String()).
		Int("processed", len(result.Results)).
		Int("skipped", len(result.Diagnostics)).
		Msg("Scheduled forecast regeneration finished")
}
