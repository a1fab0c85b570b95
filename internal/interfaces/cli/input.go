package cli

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

// openInput opens path for reading; "-" is the command's stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, errors.InvalidParam("an input file is required")
	}
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "failed to open "+path)
	}
	return f, nil
}

// createOutput creates path for writing and returns its close function.
func createOutput(path string) (io.Writer, func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeExportFailed, "failed to create "+path)
	}
	return f, f.Close, nil
}

// parseFeatureRef parses "member:feature", e.g. "1:0".
func parseFeatureRef(s string) (profile.FeatureRef, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return profile.FeatureRef{}, errors.InvalidParam(`feature reference must be "member:feature", got "` + s + `"`)
	}
	member, err1 := strconv.Atoi(parts[0])
	feature, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || member < 0 || feature < 0 {
		return profile.FeatureRef{}, errors.InvalidParam(`feature reference must hold two non-negative integers, got "` + s + `"`)
	}
	return profile.FeatureRef{Member: member, Feature: feature}, nil
}

//Personal.AI order the ending
