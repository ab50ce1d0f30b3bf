package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eigeen/ree-pak-gui/internal/engine"
	"github.com/eigeen/ree-pak-gui/internal/planner"
	"github.com/eigeen/ree-pak-gui/internal/scanner"
)

type packOptions struct {
	mode       string
	outDir     string
	autoRoot   bool
	fast       bool
	resolve    []string
	drop       []string
	strict     bool
	noProgress bool
}

func newPackCmd(root *rootOptions) *cobra.Command {
	opts := &packOptions{}

	cmd := &cobra.Command{
		Use:   "pack <path>...",
		Short: "Pack folders and archives into output archives",
		Long: `Pack each input into its own archive, or merge all inputs into one.

In individual mode (default) each input is written next to itself unless --out
is given. In single mode every input is merged into one archive in --out.

When several inputs supply the same path, the last input wins by default.
Use --resolve <path>=<index> to keep another source, --drop <path> to leave
the path out, and --strict to refuse merging with unresolved conflicts.
Run 'pakmerge conflicts' first to see the paths and source indexes.

Defaults for --mode, --out, --auto-root and --fast come from config.toml.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			cfg, err := opts.exportConfig(cmd, a)
			if err != nil {
				return err
			}
			resolutions, err := parseResolutions(opts.resolve, opts.drop)
			if err != nil {
				return err
			}
			inputs, err := collectInputs(a.fs, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !root.jsonOutput && !opts.noProgress {
				a.engine.OnProgress(newProgressPrinter(cmd.ErrOrStderr()).update)
			}

			ctx, stop := watchInterrupt(context.Background(), a.engine, cmd.ErrOrStderr())
			defer stop()

			var runErr error
			switch cfg.Mode {
			case planner.ModeIndividual:
				runErr = a.engine.HandleExport(ctx, inputs, cfg)
			default:
				runErr = runMerge(ctx, a.engine, inputs, cfg, resolutions, opts.strict, cmd.ErrOrStderr())
			}

			result := a.engine.Result()
			if root.jsonOutput {
				if err := outputJSON(out, result); err != nil {
					return err
				}
				return runErr
			}

			if errors.Is(runErr, engine.ErrCancelledByUser) {
				PrintWarning(cmd.ErrOrStderr(), "Export cancelled; no result was recorded")
				return runErr
			}
			if runErr != nil {
				for _, packed := range result.Files {
					PrintInfo(cmd.ErrOrStderr(), fmt.Sprintf("  written before failure: %s", packed.Path))
				}
				return runErr
			}

			PrintSection(out, "Export Complete")
			PrintSuccess(out, fmt.Sprintf("Wrote %s", PrintCount(len(result.Files), "archive", "archives")))
			if result.FileTree != "" {
				PrintInfo(out, "")
				_, _ = fmt.Fprint(out, result.FileTree)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "individual", "Export mode (individual or single)")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "Export directory (required for single mode)")
	cmd.Flags().BoolVar(&opts.autoRoot, "auto-root", true, "Detect the natives/STM root and name outputs after it")
	cmd.Flags().BoolVar(&opts.fast, "fast", false, "Store members uncompressed for faster packing")
	cmd.Flags().StringArrayVar(&opts.resolve, "resolve", nil, "Keep source <index> for a conflicting path (<path>=<index>), repeatable")
	cmd.Flags().StringArrayVar(&opts.drop, "drop", nil, "Leave a conflicting path out of the merge, repeatable")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when a conflict has no explicit --resolve or --drop")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Do not print the progress line")

	return cmd
}

// exportConfig merges explicit flags over config.toml defaults.
func (o *packOptions) exportConfig(cmd *cobra.Command, a *app) (planner.ExportConfig, error) {
	defaults := a.settings.Export

	modeName := defaults.Mode
	if cmd.Flags().Changed("mode") {
		modeName = o.mode
	}
	mode, err := planner.ParseMode(modeName)
	if err != nil {
		return planner.ExportConfig{}, err
	}

	cfg := planner.ExportConfig{
		Mode:            mode,
		ExportDirectory: defaults.Directory,
		AutoDetectRoot:  defaults.AutoDetectRoot,
		FastMode:        defaults.FastMode,
	}
	if cmd.Flags().Changed("out") {
		cfg.ExportDirectory = o.outDir
	}
	if cmd.Flags().Changed("auto-root") {
		cfg.AutoDetectRoot = o.autoRoot
	}
	if cmd.Flags().Changed("fast") {
		cfg.FastMode = o.fast
	}
	return cfg, nil
}

// runMerge analyzes conflicts, applies the command-line resolutions and
// writes the merged archive.
func runMerge(
	ctx context.Context,
	eng *engine.Engine,
	inputs []scanner.InputItem,
	cfg planner.ExportConfig,
	resolutions map[string]int,
	strict bool,
	w io.Writer,
) error {
	conflicts, err := eng.HandleMergeExport(ctx, inputs, cfg)
	if err != nil || len(conflicts) == 0 {
		return err
	}

	var unresolved []string
	for _, g := range conflicts {
		if _, ok := resolutions[g.RelativePath]; !ok {
			unresolved = append(unresolved, g.RelativePath)
		}
	}
	if len(unresolved) > 0 {
		if strict {
			return fmt.Errorf("%w: %s unresolved: %s", engine.ErrConflictsPending,
				PrintCount(len(unresolved), "conflict", "conflicts"), strings.Join(unresolved, ", "))
		}
		PrintWarning(w, fmt.Sprintf("%s resolved by default (last source wins)",
			PrintCount(len(unresolved), "conflict", "conflicts")))
	}

	eng.SetConflictResolutions(resolutions)
	return eng.ProceedWithMergeExport(ctx, inputs, cfg)
}

// parseResolutions turns --resolve path=index and --drop path flags into a
// resolution map. --drop wins over --resolve for the same path.
func parseResolutions(resolve, drop []string) (map[string]int, error) {
	resolutions := make(map[string]int, len(resolve)+len(drop))
	for _, r := range resolve {
		idx := strings.LastIndex(r, "=")
		if idx <= 0 || idx == len(r)-1 {
			return nil, fmt.Errorf("invalid --resolve %q: want <path>=<index>", r)
		}
		n, err := strconv.Atoi(r[idx+1:])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid --resolve %q: index must be a non-negative integer", r)
		}
		resolutions[r[:idx]] = n
	}
	for _, d := range drop {
		if d == "" {
			return nil, errors.New("invalid --drop: path must not be empty")
		}
		resolutions[d] = planner.DropEntry
	}
	return resolutions, nil
}
