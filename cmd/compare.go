package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"edharness/internal/app"
	"edharness/internal/screenshot"
)

type compareOptions struct {
	threshold float64
	diffDir   string
	json      bool
}

func newCompareCmd() *cobra.Command {
	opts := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare PRODUCED GOLDEN",
		Short: "Compare a captured screenshot with its golden image",
		Long: `Compares two PNG or PPM images pixel by pixel and reports their similarity.
The command exits with status 1 when the similarity is below the threshold.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, opts, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.threshold, "threshold", 0, "minimum similarity in (0, 1] (default from configuration)")
	f.StringVar(&opts.diffDir, "diff-dir", "", "directory to write a diff image to when the images differ")
	f.BoolVar(&opts.json, "json", false, "print the comparison as JSON")
	return cmd
}

func runCompare(cmd *cobra.Command, opts *compareOptions, produced, golden string) error {
	application, err := newApplication(cmd, &app.Config{})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	threshold := opts.threshold
	if threshold == 0 {
		threshold = application.Services().Config.Golden.Threshold
	}
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1], got %v", threshold)
	}

	cmp := &screenshot.PixelComparer{Threshold: threshold, DiffDir: opts.diffDir}
	result, err := cmp.Compare(commandContext(cmd), produced, golden)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal comparison: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprintln(out, result)
		if result.DiffPath != "" {
			fmt.Fprintf(out, "diff: %s\n", result.DiffPath)
		}
	}

	if !result.Passed {
		return fmt.Errorf("%s does not match %s", produced, golden)
	}
	return nil
}
