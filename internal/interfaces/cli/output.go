package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// tableProvider is implemented by results with a tabular form.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult writes data to stdout in the --output format.  A command run
// without a CLIContext, as in tests, gets JSON.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	w := cmd.OutOrStdout()
	format := "json"
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = cliCtx.OutputFormat
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	if tp, ok := data.(tableProvider); ok && format == "table" {
		_, err := io.WriteString(w, FormatTable(tp.TableHeaders(), tp.TableRows()))
		return err
	}
	return writeText(w, data)
}

func writeText(w io.Writer, data interface{}) error {
	var err error
	switch v := data.(type) {
	case string:
		_, err = fmt.Fprintln(w, v)
	case fmt.Stringer:
		_, err = io.WriteString(w, v.String())
	default:
		_, err = fmt.Fprintf(w, "%+v\n", v)
	}
	return err
}

// PrintError reports err on stderr; a nil err is ignored.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("Error:"), err)
}

// PrintSuccess reports a completed side effect on stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("OK:"), msg)
}

// FormatTable renders rows under headers as an ASCII table.  It returns ""
// when there are no headers.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	var sb strings.Builder
	table := tablewriter.NewWriter(&sb)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
	return sb.String()
}

//Personal.AI order the ending
