package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/hbond-profiler/internal/domain/frame"
	"github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

type checkOptions struct {
	framePath string
	index     int
	donor     string
	acceptor  string
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a donor and an acceptor feature form a hydrogen bond",
		Long: "Measure one donor/acceptor pair of a frame against the configured distance and\n" +
			"angle cutoffs.  Features are addressed as member:feature.",
		Example: "  hbprof check --frame frame.json --donor 0:0 --acceptor 1:2",
		Args:    cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, cliCtx *CLIContext, _ []string) error {
			return runCheck(cmd, cliCtx, opts)
		}),
	}
	f := cmd.Flags()
	f.StringVarP(&opts.framePath, "frame", "f", "", `frame JSON file ("-" for stdin)`)
	f.IntVar(&opts.index, "index", 0, "frame to use when the file holds several")
	f.StringVar(&opts.donor, "donor", "0:0", "donor feature as member:feature")
	f.StringVar(&opts.acceptor, "acceptor", "1:0", "acceptor feature as member:feature")
	_ = cmd.MarkFlagRequired("frame")
	return cmd
}

func runCheck(cmd *cobra.Command, cliCtx *CLIContext, opts *checkOptions) error {
	donor, err := parseFeatureRef(opts.donor)
	if err != nil {
		return err
	}
	acceptor, err := parseFeatureRef(opts.acceptor)
	if err != nil {
		return err
	}

	in, err := openInput(cmd, opts.framePath)
	if err != nil {
		return err
	}
	dtos, err := frame.Decode(in)
	in.Close()
	if err != nil {
		return err
	}
	if opts.index < 0 || opts.index >= len(dtos) {
		return errors.InvalidParam(fmt.Sprintf("frame index %d out of range, file holds %d frame(s)", opts.index, len(dtos)))
	}
	dto := dtos[opts.index]

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	var resp *profile.CheckResponse
	if cliCtx.Remote() {
		resp, err = cliCtx.Client.Profiles().Check(ctx, &profile.CheckRequest{Frame: dto, Donor: donor, Acceptor: acceptor})
	} else {
		var f *frame.Frame
		if f, err = frame.Build(dto); err != nil {
			return err
		}
		svc, serr := cliCtx.Service(ctx)
		if serr != nil {
			return serr
		}
		resp, err = svc.CheckPair(ctx, f, donor, acceptor)
	}
	if err != nil {
		return err
	}
	return PrintResult(cmd, checkResult{resp})
}

// checkResult renders a CheckResponse.
type checkResult struct {
	*profile.CheckResponse
}

func (r checkResult) verdict() string {
	if r.OK {
		return color.GreenString("HIT")
	}
	return color.RedString("REJECTED")
}

func (r checkResult) angleText() string {
	if r.Angle != nil {
		return fmt.Sprintf("%.2f", *r.Angle)
	}
	if len(r.RejectedAngles) == 0 {
		return "-"
	}
	parts := make([]string, len(r.RejectedAngles))
	for i, a := range r.RejectedAngles {
		parts[i] = fmt.Sprintf("%.2f", a)
	}
	return strings.Join(parts, ",")
}

func (r checkResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s at %s stage\n", r.verdict(), r.Stage)
	fmt.Fprintf(&sb, "  distance: %.3f\n", r.Distance)
	if r.OK {
		fmt.Fprintf(&sb, "  angle:    %s\n", r.angleText())
	} else if len(r.RejectedAngles) > 0 {
		fmt.Fprintf(&sb, "  angles:   %s\n", r.angleText())
	}
	return sb.String()
}

func (r checkResult) TableHeaders() []string {
	return []string{"Result", "Stage", "Distance", "Angle"}
}

func (r checkResult) TableRows() [][]string {
	return [][]string{{r.verdict(), r.Stage, fmt.Sprintf("%.3f", r.Distance), r.angleText()}}
}

//Personal.AI order the ending
