package main

import (
	"context"

	"github.com/dukex/flowdeck/pkg/models"
	"github.com/dukex/flowdeck/pkg/retention"
	cli "github.com/urfave/cli/v3"
)

func SnapshotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshots",
		Usage: "Inspect and clean up stored execution snapshots",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List snapshots, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "workflow-id",
						Usage: "Only list snapshots of this workflow",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of snapshots",
						Value: 50,
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					s, err := newStack(ctx, command, "snapshots")
					if err != nil {
						return err
					}
					defer s.Close(context.WithoutCancel(ctx))

					items, err := s.snapshots.List(ctx, models.SnapshotFilter{
						WorkflowID: command.String("workflow-id"),
						Limit:      command.Int("limit"),
					})
					if err != nil {
						return err
					}

					return writeJSON(command.Root().Writer, items)
				},
			},
			{
				Name:  "stats",
				Usage: "Print snapshot storage statistics",
				Action: func(ctx context.Context, command *cli.Command) error {
					s, err := newStack(ctx, command, "snapshots")
					if err != nil {
						return err
					}
					defer s.Close(context.WithoutCancel(ctx))

					stats, err := s.snapshots.Stats(ctx)
					if err != nil {
						return err
					}

					return writeJSON(command.Root().Writer, stats)
				},
			},
			{
				Name:  "cleanup",
				Usage: "Delete snapshots matching the retention criteria",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max-count",
						Usage: "Keep only the newest N snapshots",
					},
					&cli.IntFlag{
						Name:  "max-age-days",
						Usage: "Delete snapshots started more than N days ago",
					},
					&cli.IntFlag{
						Name:  "max-total-size-mb",
						Usage: "Delete the oldest snapshots until the total size fits in N MB",
					},
					&cli.BoolFlag{
						Name:  "failed-only",
						Usage: "Delete every failed snapshot",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Report what would be deleted without deleting",
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					s, err := newStack(ctx, command, "snapshots")
					if err != nil {
						return err
					}
					defer s.Close(context.WithoutCancel(ctx))

					result, err := s.retention.Cleanup(ctx, cleanupOptions(command))
					if err != nil {
						return err
					}

					return writeJSON(command.Root().Writer, result)
				},
			},
		},
	}
}

// cleanupOptions turns the flags that were given into criteria. Flags left
// unset are not applied, so --max-count 0 deletes everything.
func cleanupOptions(command *cli.Command) retention.CleanupOptions {
	opts := retention.CleanupOptions{
		FailedOnly: command.Bool("failed-only"),
		DryRun:     command.Bool("dry-run"),
	}

	if command.IsSet("max-count") {
		maxCount := command.Int("max-count")
		opts.MaxCount = &maxCount
	}

	if command.IsSet("max-age-days") {
		maxAge := command.Int("max-age-days")
		opts.MaxAgeDays = &maxAge
	}

	if command.IsSet("max-total-size-mb") {
		maxSize := int64(command.Int("max-total-size-mb"))
		opts.MaxTotalSizeMB = &maxSize
	}

	return opts
}
