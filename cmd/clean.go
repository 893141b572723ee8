package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"edharness/internal/app"
	"edharness/internal/artifacts"
)

type cleanOptions struct {
	levels      []string
	files       []string
	screenshots []string
}

func newCleanCmd() *cobra.Command {
	opts := &cleanOptions{}
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete levels, cached screenshots or files",
		Long: `Deletes artifacts left behind by test runs. Deleting something that does
not exist succeeds, so clean can be run repeatedly.

  edharness clean --level all_components_indepth_level
  edharness clean --screenshot AtomBasicLevelSetup.ppm
  edharness clean --file /tmp/editor.log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.levels, "level", nil, "level name below <engineRoot>/<project>/Levels (repeatable)")
	f.StringSliceVar(&opts.screenshots, "screenshot", nil, "cached screenshot file name (repeatable)")
	f.StringSliceVar(&opts.files, "file", nil, "file or directory path (repeatable)")
	cmd.MarkFlagsOneRequired("level", "screenshot", "file")
	return cmd
}

func runClean(cmd *cobra.Command, opts *cleanOptions) error {
	application, err := newApplication(cmd, &app.Config{})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	services := application.Services()
	ws := services.Config.Workspace
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	var errs []error
	for _, level := range opts.levels {
		if err := services.Locks.Lock(ctx, level); err != nil {
			errs = append(errs, fmt.Errorf("level %s: %w", level, err))
			continue
		}
		err := artifacts.CleanLevel(ws, level)
		services.Locks.Unlock(level)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "🧹 %s\n", artifacts.LevelPath(ws, level))
	}

	if len(opts.screenshots) > 0 {
		if err := artifacts.CleanScreenshots(ws, opts.screenshots); err != nil {
			errs = append(errs, err)
		} else {
			for _, p := range artifacts.CachedScreenshotPaths(ws, opts.screenshots) {
				fmt.Fprintf(out, "🧹 %s\n", p)
			}
		}
	}

	for _, f := range opts.files {
		if err := artifacts.DeletePath(f); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "🧹 %s\n", f)
	}
	return errors.Join(errs...)
}
