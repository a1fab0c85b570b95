package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/hbond-profiler/internal/domain/frame"
	"github.com/turtacn/hbond-profiler/internal/domain/interaction"
	"github.com/turtacn/hbond-profiler/internal/domain/statistics"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

type profileOptions struct {
	framesPath  string
	tablePath   string
	serialsPath string
	delimiter   string
	statsPath   string
}

func newProfileCmd() *cobra.Command {
	opts := &profileOptions{}
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Profile hydrogen bonds across frames",
		Long: "Scan every configured member pair of every frame for hydrogen bonds and number\n" +
			"the bonds across frames.  The profile table written by --table is the input of\n" +
			"\"hbprof stats\".",
		Example: "  hbprof profile --frames traj.json --table profile.csv --serials pairs.csv",
		Args:    cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, cliCtx *CLIContext, _ []string) error {
			return runProfile(cmd, cliCtx, opts)
		}),
	}
	f := cmd.Flags()
	f.StringVarP(&opts.framesPath, "frames", "f", "", `frames JSON file ("-" for stdin)`)
	f.StringVar(&opts.tablePath, "table", "", "write the profile table CSV to this file")
	f.StringVar(&opts.serialsPath, "serials", "", "write donor/acceptor PDB serial pairs to this file")
	f.StringVar(&opts.delimiter, "delimiter", "", "serial pair delimiter (default from profiling.serial_delimiter)")
	f.StringVar(&opts.statsPath, "stats", "", "also write per-hit statistics CSV to this file")
	_ = cmd.MarkFlagRequired("frames")
	return cmd
}

func runProfile(cmd *cobra.Command, cliCtx *CLIContext, opts *profileOptions) error {
	in, err := openInput(cmd, opts.framesPath)
	if err != nil {
		return err
	}
	dtos, err := frame.Decode(in)
	in.Close()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	delim := opts.delimiter
	if delim == "" {
		delim = cliCtx.Config.Profiling.SerialDelimiter
	}

	var result *profileResult
	if cliCtx.Remote() {
		resp, err := cliCtx.Client.Profiles().Profile(ctx, dtos)
		if err != nil {
			return err
		}
		result = &profileResult{ProfileResponse: resp}
		if opts.serialsPath != "" {
			if err := writeFile(opts.serialsPath, func(w io.Writer) error {
				return writeSerialRows(w, resp.Rows, delim)
			}); err != nil {
				return err
			}
		}
	} else {
		frames, err := frame.BuildAll(dtos)
		if err != nil {
			return err
		}
		svc, err := cliCtx.Service(ctx)
		if err != nil {
			return err
		}
		prof, err := svc.ProfileFrames(ctx, frames)
		if err != nil {
			return err
		}
		result = &profileResult{ProfileResponse: prof.Response()}
		if opts.serialsPath != "" {
			if err := interaction.ExportSerialPairs(opts.serialsPath, prof.Hits, delim); err != nil {
				return err
			}
		}
	}

	if opts.tablePath != "" {
		if err := writeFile(opts.tablePath, func(w io.Writer) error {
			return statistics.WriteRows(w, result.Rows)
		}); err != nil {
			return err
		}
	}
	if opts.statsPath != "" {
		stats := statistics.Aggregate(statistics.FromProfileRows(result.Rows))
		if err := writeFile(opts.statsPath, func(w io.Writer) error {
			return statistics.WriteStats(w, stats)
		}); err != nil {
			return err
		}
	}

	cliCtx.Logger.Info("profile complete",
		logging.String("run_id", result.RunID),
		logging.Int("frames", result.Frames),
		logging.Int("hits", result.Hits))
	return PrintResult(cmd, result)
}

// writeFile creates path and hands it to write.
func writeFile(path string, write func(w io.Writer) error) (err error) {
	w, closeFn, err := createOutput(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errors.ErrCodeExportFailed, "failed to close "+path)
		}
	}()
	return write(w)
}

// writeSerialRows writes the serial pairs of rows in the format of
// interaction.WriteSerialPairs.
func writeSerialRows(w io.Writer, rows []profile.ProfileRow, delim string) error {
	if delim == "" {
		delim = interaction.DefaultSerialDelimiter
	}
	bw := bufio.NewWriter(w)
	for i, r := range rows {
		if r.DonorSerial == 0 || r.AcceptorSerial == 0 {
			return errors.Newf(errors.ErrCodeSerialNumberMissing, "row %d has no PDB serial numbers", i)
		}
		if _, err := fmt.Fprintf(bw, "%d%s%d\n", r.DonorSerial, delim, r.AcceptorSerial); err != nil {
			return errors.Wrap(err, errors.ErrCodeExportFailed, "failed to write serial pairs")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "failed to write serial pairs")
	}
	return nil
}

// profileResult renders a profiling run.
type profileResult struct {
	*profile.ProfileResponse
}

func (r *profileResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s: %d hit(s) in %d frame(s)\n", r.RunID, r.Hits, r.Frames)
	for _, k := range r.ExportKeys {
		fmt.Fprintf(&sb, "  exported %s\n", k)
	}
	return sb.String()
}

func (r *profileResult) TableHeaders() []string {
	return []string{"Hit", "Frame", "Interaction", "Distance", "Angle", "Donor", "Acceptor"}
}

func (r *profileResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []string{
			strconv.Itoa(row.HitIdx),
			row.ProfileID,
			row.InteractionClass,
			fmt.Sprintf("%.3f", row.Distance),
			fmt.Sprintf("%.2f", row.Angle),
			strconv.Itoa(row.DonorSerial),
			strconv.Itoa(row.AcceptorSerial),
		})
	}
	return rows
}

//Personal.AI order the ending
