package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eigeen/ree-pak-gui/internal/tree"
)

func newInspectCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <archive>",
		Short: "List the entry table of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", args[0], err)
			}

			header, err := a.archiver.ReadHeader(context.Background(), path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.jsonOutput {
				return outputJSON(out, header)
			}

			PrintSection(out, path)
			if len(header.Entries) == 0 {
				PrintEmptyState(out, "No entries")
				return nil
			}

			rows := make([][]string, 0, len(header.Entries))
			var total uint64
			for _, e := range header.Entries {
				rows = append(rows, []string{
					e.Key(),
					e.Name,
					tree.FormatSize(e.CompressedSize),
					tree.FormatSize(e.UncompressedSize),
				})
				total += e.UncompressedSize
			}
			PrintTable(out, []string{"KEY", "NAME", "PACKED", "SIZE"}, rows)
			PrintInfo(out, "")
			PrintLabelValue(out, "Entries", fmt.Sprintf("%d", len(header.Entries)))
			PrintLabelValue(out, "Total size", tree.FormatSize(total))
			return nil
		},
	}
}
