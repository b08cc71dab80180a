// Package cmd — inspect command.
// Executes a source document and resolves every render kind without writing
// final artifacts, printing the planned outputs.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dhruv-naik/nbweave/core"
	"github.com/dhruv-naik/nbweave/core/contrib"
	"github.com/dhruv-naik/nbweave/core/execute"
	"github.com/dhruv-naik/nbweave/core/output"
	"github.com/dhruv-naik/nbweave/core/registry"
	"github.com/dhruv-naik/nbweave/ctxlog"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <source>",
	Short: "Show the renderings a source document would produce",
	Long: `Inspect executes the source document and resolves each render kind,
printing the artifacts a render run would produce without writing them.

Example:
  nbweave inspect analysis.nb.html`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	log := newLogger(flagLogLevel, flagLogFormat, os.Stderr)
	ctx := ctxlog.WithLogger(context.Background(), log)

	workspace := filepath.Join(os.TempDir(), "nbweave-inspect-"+uuid.NewString())
	if err := os.MkdirAll(workspace, 0755); err != nil {
		return fmt.Errorf("creating workspace: %w", err)
	}
	defer os.RemoveAll(workspace)

	executed, err := execute.New(workspace).Execute(ctx, args[0])
	if err != nil {
		return err
	}

	reg := registry.New(map[core.RenderKind]core.Contributor{
		core.KindPreview:          contrib.NewPreviewContributor(),
		core.KindStructuredEmbed:  contrib.NewEmbedContributor(),
		core.KindExecutedSnapshot: contrib.NewSnapshotContributor(),
	}, output.NewRemover(), log)

	fmt.Printf("Source: %s\nTitle:  %s\n\n", executed.SourcePath, executed.Title)
	fmt.Printf("%-20s %-30s %s\n", "KIND", "OUTPUT", "SUPPORTING")
	fmt.Printf("%-20s %-30s %s\n", "--------------------", "------------------------------", "----------")

	meta := core.NotebookMetadata{"title": executed.Title}
	for _, kind := range core.AllKinds {
		resolved, err := reg.Resolve(executed.SourcePath, kind, executed, meta, "")
		if err != nil {
			return err
		}
		fmt.Printf("%-20s %-30s %d file(s)\n", kind, resolved.File, len(resolved.Supporting))
	}

	if len(executed.ResourceFiles) > 0 {
		fmt.Printf("\nReferenced resources (never cleaned):\n")
		for _, res := range executed.ResourceFiles {
			fmt.Printf("  %s\n", res)
		}
	}
	return nil
}
