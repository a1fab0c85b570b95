package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and delete stored profiling runs",
	}
	cmd.AddCommand(newRunsExportsCmd(), newRunsDeleteCmd())
	return cmd
}

func newRunsExportsCmd() *cobra.Command {
	var presign bool
	cmd := &cobra.Command{
		Use:   "exports <run-id>",
		Short: "List the export files of a run",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, cliCtx *CLIContext, args []string) error {
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			var resp *profile.ExportListResponse
			var err error
			if cliCtx.Remote() {
				resp, err = cliCtx.Client.Profiles().ListExports(ctx, args[0], presign)
			} else {
				svc, serr := cliCtx.Service(ctx)
				if serr != nil {
					return serr
				}
				resp, err = svc.ListExports(ctx, args[0], presign)
			}
			if err != nil {
				return err
			}
			return PrintResult(cmd, exportList{resp})
		}),
	}
	cmd.Flags().BoolVar(&presign, "presign", false, "include presigned download URLs")
	return cmd
}

func newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete the stored rows, exports and cached statistics of a run",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, cliCtx *CLIContext, args []string) error {
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			var resp *profile.DeleteRunResponse
			var err error
			if cliCtx.Remote() {
				resp, err = cliCtx.Client.Profiles().DeleteRun(ctx, args[0])
			} else {
				svc, serr := cliCtx.Service(ctx)
				if serr != nil {
					return serr
				}
				resp, err = svc.DeleteRun(ctx, args[0])
			}
			if err != nil {
				return err
			}
			if cliCtx.OutputFormat == "json" {
				return PrintResult(cmd, resp)
			}
			PrintSuccess(cmd, fmt.Sprintf("deleted run %s (rows: %t, exports: %d)",
				resp.RunID, resp.RowsDeleted, resp.ExportsDeleted))
			return nil
		}),
	}
}

// exportList renders the exports of a run.
type exportList struct {
	*profile.ExportListResponse
}

func (l exportList) String() string {
	var sb strings.Builder
	for _, e := range l.Exports {
		fmt.Fprintf(&sb, "%s\t%d\n", e.Key, e.Size)
		if e.URL != "" {
			fmt.Fprintf(&sb, "  %s\n", e.URL)
		}
	}
	return sb.String()
}

func (l exportList) TableHeaders() []string {
	return []string{"Key", "Size", "Modified", "URL"}
}

func (l exportList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Exports))
	for _, e := range l.Exports {
		rows = append(rows, []string{e.Key, strconv.FormatInt(e.Size, 10), e.LastModified.Format("2006-01-02 15:04:05"), e.URL})
	}
	return rows
}

//Personal.AI order the ending
