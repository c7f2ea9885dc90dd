package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/shmap-go/pkg/shmap"
)

// gcTimeout bounds a full sweep started from the CLI.
const gcTimeout = 5 * time.Minute

// gcSummary is the table form of a sweep report.
type gcSummary struct {
	Live     int           `json:"live"`
	Removed  int           `json:"removed"`
	Planned  int           `json:"planned"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	DryRun   bool          `json:"dry_run"`
	Duration time.Duration `json:"duration"`
}

// GCCommand returns the gc command.
func GCCommand() *cli.Command {
	return &cli.Command{
		Name:  "gc",
		Usage: "Remove expired keys and aged orphan segments",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report what would be removed without removing it",
			},
		},
		Action: gcAction,
	}
}

func gcAction(c *cli.Context) error {
	store, err := openStore(c, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, gcTimeout)
	defer cancel()

	report, err := store.Sweep(ctx, shmap.SweepOptions{DryRun: c.Bool("dry-run")})
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	if !tableOutput(c) {
		return render(c, report)
	}

	summary := gcSummary{
		Live:     len(report.Live),
		Removed:  len(report.Removed),
		Planned:  len(report.Planned),
		Skipped:  len(report.Skipped),
		Failed:   report.Failed,
		DryRun:   report.DryRun,
		Duration: report.Duration.Round(time.Microsecond),
	}
	if err := render(c, summary); err != nil {
		return err
	}

	removals := report.Removed
	if report.DryRun {
		removals = report.Planned
	}
	if len(removals) == 0 {
		return nil
	}
	fmt.Fprintln(c.App.Writer)
	return render(c, removals)
}
