package cli

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/hbond-profiler/internal/domain/statistics"
	"github.com/turtacn/hbond-profiler/pkg/client"
	"github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

type statsOptions struct {
	tablePath string
	outPath   string
	runID     string
}

func newStatsCmd() *cobra.Command {
	opts := &statsOptions{}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate per-hit statistics from a profile table",
		Long: "Group profile rows by hit index and report distance and angle statistics and\n" +
			"frame frequencies per hit.  Without --table the rows of a stored run are used.",
		Example: "  hbprof stats --table profile.csv --out stats.csv\n" +
			"  hbprof stats --run 6f1c... --server http://localhost:8080",
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, cliCtx *CLIContext, _ []string) error {
			return runStats(cmd, cliCtx, opts)
		}),
	}
	f := cmd.Flags()
	f.StringVarP(&opts.tablePath, "table", "t", "", `profile table CSV ("-" for stdin)`)
	f.StringVar(&opts.outPath, "out", "", "write statistics CSV to this file instead of printing")
	f.StringVar(&opts.runID, "run", "", "run id; keys the statistics cache, or selects stored rows without --table")
	return cmd
}

func runStats(cmd *cobra.Command, cliCtx *CLIContext, opts *statsOptions) error {
	if opts.tablePath == "" && opts.runID == "" {
		return errors.InvalidParam("either --table or --run is required")
	}

	var rows []profile.ProfileRow
	if opts.tablePath != "" {
		in, err := openInput(cmd, opts.tablePath)
		if err != nil {
			return err
		}
		parsed, err := statistics.ReadRows(in)
		in.Close()
		if err != nil {
			return err
		}
		rows = statistics.ToProfileRows(opts.runID, parsed)
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	var result *client.StatsResult
	if cliCtx.Remote() {
		var err error
		if opts.tablePath != "" {
			result, err = cliCtx.Client.Profiles().Stats(ctx, &profile.StatsRequest{RunID: opts.runID, Rows: rows})
		} else {
			result, err = cliCtx.Client.Profiles().RunStats(ctx, opts.runID)
		}
		if err != nil {
			return err
		}
	} else {
		svc, err := cliCtx.Service(ctx)
		if err != nil {
			return err
		}
		var stats []statistics.HitStats
		if opts.tablePath != "" {
			stats, err = svc.Statistics(ctx, opts.runID, rows)
		} else {
			stats, err = svc.RunStatistics(ctx, opts.runID)
		}
		if err != nil {
			return err
		}
		result = &client.StatsResult{RunID: opts.runID, Groups: len(stats), Stats: stats}
	}

	if opts.outPath != "" {
		if err := writeFile(opts.outPath, func(w io.Writer) error {
			return statistics.WriteStats(w, result.Stats)
		}); err != nil {
			return err
		}
		PrintSuccess(cmd, fmt.Sprintf("wrote statistics of %d hit(s) to %s", result.Groups, opts.outPath))
		return nil
	}
	return PrintResult(cmd, statsResult{result})
}

// statsResult renders statistics; text output is the statistics CSV.
type statsResult struct {
	*client.StatsResult
}

func (r statsResult) String() string {
	var buf bytes.Buffer
	if err := statistics.WriteStats(&buf, r.Stats); err != nil {
		return err.Error() + "\n"
	}
	return buf.String()
}

func (r statsResult) TableHeaders() []string {
	return []string{"Hit", "Interaction", "Distance", "Angle", "Freq", "Norm Freq"}
}

func (r statsResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Stats))
	for _, s := range r.Stats {
		rows = append(rows, []string{
			strconv.Itoa(s.HitIdx),
			s.InteractionID,
			meanStd(s.DistanceMean, s.DistanceStd, 3),
			meanStd(s.AngleMean, s.AngleStd, 2),
			strconv.Itoa(s.Freq),
			fmt.Sprintf("%.3f", s.NormFreq),
		})
	}
	return rows
}

// meanStd formats "mean ± std"; an undefined std is left out.
func meanStd(mean, std float64, prec int) string {
	if math.IsNaN(std) {
		return strconv.FormatFloat(mean, 'f', prec, 64)
	}
	return strings.Join([]string{
		strconv.FormatFloat(mean, 'f', prec, 64),
		strconv.FormatFloat(std, 'f', prec, 64),
	}, " ± ")
}

//Personal.AI order the ending
