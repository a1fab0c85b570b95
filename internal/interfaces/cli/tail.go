package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/hbond-profiler/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

type tailOptions struct {
	fromBeginning bool
	max           int
}

func newTailCmd() *cobra.Command {
	opts := &tailOptions{}
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow hit events published by profiling runs",
		Long: "Consume the kafka hits topic and print one line per profiled frame until\n" +
			"interrupted or --max events were printed.",
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, cliCtx *CLIContext, _ []string) error {
			return runTail(cmd, cliCtx, opts)
		}),
	}
	cmd.Flags().BoolVar(&opts.fromBeginning, "from-beginning", false, "start from the oldest retained event")
	cmd.Flags().IntVar(&opts.max, "max", 0, "stop after this many events (0 for no limit)")
	return cmd
}

func runTail(cmd *cobra.Command, cliCtx *CLIContext, opts *tailOptions) error {
	if opts.max < 0 {
		return errors.InvalidParam("--max must not be negative")
	}
	kcfg := cliCtx.Config.Kafka

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfigFrom(kcfg, opts.fromBeginning), cliCtx.Logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	consumer.Subscribe(kcfg.HitsTopic, hitEventPrinter(cmd.OutOrStdout(), cliCtx.Logger, opts.max, cancel))
	if err := consumer.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	m := consumer.GetMetrics()
	cliCtx.Logger.Info("tail stopped",
		logging.Int64("consumed", m.MessagesConsumed.Load()),
		logging.Int64("failed", m.MessagesFailed.Load()))
	return nil
}

// hitEventPrinter prints every hit event.  Undecodable messages are logged
// and skipped.  done is called once limit events were printed, when limit
// is positive.
func hitEventPrinter(w io.Writer, logger logging.Logger, limit int, done func()) kafka.MessageHandler {
	var seen atomic.Int64
	return func(_ context.Context, msg *kafka.Message) error {
		ev, err := kafka.DecodeHitEvent(msg)
		if err != nil {
			logger.Warn("skipping undecodable message",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
			return nil
		}
		fmt.Fprintln(w, formatHitEvent(ev))
		if n := seen.Add(1); limit > 0 && n >= int64(limit) {
			done()
		}
		return nil
	}
}

func formatHitEvent(ev *profile.HitEvent) string {
	line := fmt.Sprintf("%s run=%s frame=%s hits=%d",
		ev.OccurredAt.Format("2006-01-02T15:04:05Z07:00"), ev.RunID, ev.ProfileID, len(ev.Rows))
	for _, r := range ev.Rows {
		line += fmt.Sprintf(" [%d %s %.2f/%.1f]", r.HitIdx, r.InteractionClass, r.Distance, r.Angle)
	}
	return line
}

//Personal.AI order the ending
