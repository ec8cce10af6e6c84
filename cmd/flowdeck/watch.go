package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dukex/flowdeck/pkg/eventbus"
	cli "github.com/urfave/cli/v3"
)

func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print run lifecycle events from the event bus as JSON lines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "run-id",
				Usage: "Only print events of this run",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			s, err := newStack(ctx, command, "watch")
			if err != nil {
				return err
			}
			defer s.Close(context.WithoutCancel(ctx))

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			var mu sync.Mutex

			encoder := json.NewEncoder(command.Root().Writer)
			runID := command.String("run-id")

			err = s.eventBus.Handle(eventbus.AnyEvent, func(_ context.Context, event any) error {
				if runID != "" && eventRunID(event) != runID {
					return nil
				}

				mu.Lock()
				defer mu.Unlock()

				return encoder.Encode(event)
			})
			if err != nil {
				return err
			}

			err = s.eventBus.Subscribe(ctx)
			if err != nil {
				return err
			}

			s.logger.InfoContext(ctx, "Watching run events", "event_bus", command.String("event-bus"))
			<-ctx.Done()

			return nil
		},
	}
}

func eventRunID(event any) string {
	keyed, ok := event.(interface{ Key() string })
	if !ok {
		return ""
	}

	return keyed.Key()
}
