package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukex/flowdeck/pkg/retention"
	"github.com/dukex/flowdeck/pkg/services"
	"github.com/dukex/flowdeck/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	cli "github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the API server and the snapshot retention schedule",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "retention-schedule",
				Usage:   "Cron expression for snapshot cleanup; empty disables it",
				Value:   "@daily",
				Sources: cli.EnvVars("RETENTION_SCHEDULE"),
			},
			&cli.IntFlag{
				Name:    "retention-max-count",
				Usage:   "Snapshots kept by the scheduled cleanup",
				Sources: cli.EnvVars("RETENTION_MAX_COUNT"),
			},
			&cli.IntFlag{
				Name:    "retention-max-age-days",
				Usage:   "Age in days after which the scheduled cleanup removes snapshots",
				Value:   30,
				Sources: cli.EnvVars("RETENTION_MAX_AGE_DAYS"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			s, err := newStack(ctx, command, "api")
			if err != nil {
				return err
			}
			defer s.Close(context.WithoutCancel(ctx))

			s.logger.InfoContext(ctx, "Initializing Flowdeck API")

			app := newApp(s)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)

			if schedule := command.String("retention-schedule"); schedule != "" {
				scheduler, err := retention.NewScheduler(s.logger, s.retention, schedule, retentionOptions(command))
				if err != nil {
					return err
				}

				if err := scheduler.Start(gctx); err != nil {
					return err
				}
				defer scheduler.Stop()
			}

			g.Go(func() error {
				return app.Listen(":"+strconv.Itoa(command.Int("port")), fiber.ListenConfig{
					DisableStartupMessage: true,
				})
			})

			g.Go(func() error {
				<-gctx.Done()

				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
				defer cancel()

				s.logger.Info("Shutting down Flowdeck API")

				return app.ShutdownWithContext(shutdownCtx)
			})

			err = g.Wait()
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.ErrorContext(ctx, "Flowdeck API stopped with error", "error", err)

				return err
			}

			return nil
		},
	}
}

func newApp(s *stack) *fiber.App {
	workflows := services.NewWorkflow(s.persistence, s.registry)
	executions := services.NewExecution(s.logger, s.persistence, s.executor, s.runs)

	handlers := web.NewAPIHandlers(
		workflows,
		executions,
		s.snapshots,
		s.retention,
		validator.New(validator.WithRequiredStructEnabled()),
		s.registry,
	)

	return web.NewApp(handlers, s.prometheus)
}

// retentionOptions builds the scheduled cleanup criteria. Zero values leave
// a criterion out.
func retentionOptions(command *cli.Command) retention.CleanupOptions {
	var opts retention.CleanupOptions

	if maxCount := command.Int("retention-max-count"); maxCount > 0 {
		opts.MaxCount = &maxCount
	}

	if maxAge := command.Int("retention-max-age-days"); maxAge > 0 {
		opts.MaxAgeDays = &maxAge
	}

	return opts
}
