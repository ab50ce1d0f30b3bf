package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eigeen/ree-pak-gui/internal/tree"
)

func newConflictsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts <path>...",
		Short: "List paths supplied by more than one input",
		Long: `Scan the inputs in order and list every path that more than one of them
supplies. Nothing is written.

Each source is shown with the index to pass to 'pack --resolve <path>=<index>'.
The marked source is the default: the last input that supplies the path.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			inputs, err := collectInputs(a.fs, args)
			if err != nil {
				return err
			}

			conflicts := a.analyzer.Analyze(context.Background(), inputs)

			out := cmd.OutOrStdout()
			if root.jsonOutput {
				return outputJSON(out, conflicts)
			}

			if len(conflicts) == 0 {
				PrintSuccess(out, "No conflicts")
				return nil
			}

			PrintSection(out, fmt.Sprintf("Conflicts (%d)", len(conflicts)))
			for _, g := range conflicts {
				PrintSubsection(out, g.RelativePath)
				for i, src := range g.Sources {
					line := fmt.Sprintf("    [%d] %s (%s, %s)", i, src.SourcePath,
						tree.FormatSize(src.Size), src.ModifiedDate.Format("2006-01-02 15:04:05"))
					if i == g.SelectedSource {
						_, _ = selectColor.Fprintln(out, line+" *")
					} else {
						PrintInfo(out, line)
					}
				}
			}
			PrintInfo(out, "")
			PrintEmptyState(out, "* default source; override with pack --resolve <path>=<index> or --drop <path>")
			return nil
		},
	}
}
