// Package cmd — render command.
// Orchestrates a full render run: execute each source, render every kind
// through the registry, preserve what the caller keeps, then clean up.
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
	"github.com/dhruv-naik/nbweave/printer"
	"github.com/dhruv-naik/nbweave/project"
)

var (
	flagProjectDir        string
	flagOutputDir         string
	flagKeepEmbed         bool
	flagKeepSnapshot      bool
	flagDownloadResources bool
)

var renderCmd = &cobra.Command{
	Use:   "render [sources...]",
	Short: "Render source documents into their derived notebook renderings",
	Long: `Render executes each source document and produces all render kinds through
the notebook render registry. The HTML preview is always kept; the structured
embed and the executed snapshot are rendered, linked from the preview, and
cleaned at the end of the run unless kept.

With no sources, render discovers notebook documents in the project directory.

Examples:
  nbweave render analysis.nb.html
  nbweave render --keep-snapshot docs/report.html
  nbweave render --project ./site --keep-embed --keep-snapshot`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&flagProjectDir, "project", ".", "Project directory (config and discovery root)")
	renderCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Directory for downloaded sources and their artifacts (default: <project>/.nbweave)")
	renderCmd.Flags().BoolVar(&flagKeepEmbed, "keep-embed", false, "Keep the structured embed after the run")
	renderCmd.Flags().BoolVar(&flagKeepSnapshot, "keep-snapshot", false, "Keep the executed snapshot after the run")
	renderCmd.Flags().BoolVar(&flagDownloadResources, "download-resources", false, "Download remote images as local resource files")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := project.Load(flagProjectDir)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	log := newLogger(cfg.LogLevel, flagLogFormat, os.Stderr)
	ctx := ctxlog.WithLogger(context.Background(), log)

	sources := args
	if len(sources) == 0 {
		sources, err = project.Discover(flagProjectDir)
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			return fmt.Errorf("no notebook documents found in %s", flagProjectDir)
		}
		printer.Info("Discovered %d notebook document(s) in %s", len(sources), flagProjectDir)
	}

	outputDir := cfg.OutputDir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(flagProjectDir, outputDir)
	}
	// URL sources land in a per-run directory under the output dir. It
	// outlives the run: contributors write next to the downloaded document,
	// and preserved artifacts have to survive after the command exits.
	remoteDir := filepath.Join(outputDir, "remote-"+uuid.NewString())

	executor := execute.New(remoteDir)
	executor.DownloadResources = cfg.DownloadResources

	reg := registry.New(map[core.RenderKind]core.Contributor{
		core.KindPreview:          contrib.NewPreviewContributor(),
		core.KindStructuredEmbed:  contrib.NewEmbedContributor(),
		core.KindExecutedSnapshot: contrib.NewSnapshotContributor(),
	}, output.NewRemover(), log)

	services := core.RenderServices{Log: log}
	proj := &core.Project{Dir: flagProjectDir, OutputDir: outputDir}
	keep := keepSet(cfg)

	var errCount int
	for i, source := range sources {
		printer.Info("[%d/%d] Rendering %s", i+1, len(sources), source)
		if err := renderSource(ctx, reg, executor, services, proj, source, keep); err != nil {
			printer.Error("%s: %v", source, err)
			errCount++
		}
	}

	printSummary(reg, keep)

	// All renders have returned by now; cleanup deletes every unpreserved
	// artifact exactly once.
	reg.Cleanup()

	if errCount == len(sources) {
		return fmt.Errorf("all %d source(s) failed to render", errCount)
	}
	if errCount > 0 {
		printer.Warning("%d/%d source(s) failed", errCount, len(sources))
	}
	return nil
}

// renderSource runs one source document through the full pipeline:
// execute, then render supplements, then render the preview that links to
// whichever supplements the run keeps.
func renderSource(ctx context.Context, reg *registry.Registry, executor core.Executor, services core.RenderServices, proj *core.Project, source string, keep map[core.RenderKind]bool) error {
	executed, err := executor.Execute(ctx, source)
	if err != nil {
		return err
	}
	key := executed.SourcePath
	meta := core.NotebookMetadata{"title": executed.Title}

	embed, err := reg.Render(ctx, key, "json", core.KindStructuredEmbed, executed, services, meta, "", proj)
	if err != nil {
		return fmt.Errorf("structured embed: %w", err)
	}
	snapshot, err := reg.Render(ctx, key, "pdf", core.KindExecutedSnapshot, executed, services, meta, "", proj)
	if err != nil {
		return fmt.Errorf("executed snapshot: %w", err)
	}

	var links []contrib.SupplementLink
	if keep[core.KindStructuredEmbed] {
		links = append(links, contrib.SupplementLink{
			Label: "Structured embed (JSON)",
			Href:  filepath.Base(embed.Output.Path),
		})
	}
	if keep[core.KindExecutedSnapshot] {
		links = append(links, contrib.SupplementLink{
			Label: "Executed snapshot (PDF)",
			Href:  filepath.Base(snapshot.Output.Path),
		})
	}

	previewMeta := core.NotebookMetadata{
		"title":                 executed.Title,
		contrib.MetaSupplements: links,
	}
	preview, err := reg.Render(ctx, key, "html", core.KindPreview, executed, services, previewMeta, "", proj)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	for kind := range keep {
		reg.Preserve(key, kind)
	}

	printer.Success("%s", preview.Output.Path)
	return nil
}

func applyFlagOverrides(cfg *project.Config) {
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	if flagDownloadResources {
		cfg.DownloadResources = true
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagKeepEmbed {
		cfg.Keep = append(cfg.Keep, string(core.KindStructuredEmbed))
	}
	if flagKeepSnapshot {
		cfg.Keep = append(cfg.Keep, string(core.KindExecutedSnapshot))
	}
}

// keepSet resolves which kinds survive cleanup. The preview is the run's
// deliverable and is always kept.
func keepSet(cfg *project.Config) map[core.RenderKind]bool {
	keep := map[core.RenderKind]bool{core.KindPreview: true}
	for _, kind := range cfg.KeepKinds() {
		keep[kind] = true
	}
	return keep
}

// printSummary writes a per-artifact table of the run's recorded renderings.
func printSummary(reg *registry.Registry, keep map[core.RenderKind]bool) {
	sources := reg.Sources()
	if len(sources) == 0 {
		return
	}

	fmt.Printf("\n%-20s %-34s %s\n", "KIND", "OUTPUT", "KEPT")
	fmt.Printf("%-20s %-34s %s\n", "--------------------", "----------------------------------", "----")
	for _, source := range sources {
		rec := reg.Get(source)
		for _, kind := range core.AllKinds {
			entry, ok := rec.Renderings[kind]
			if !ok || entry.Output == nil {
				continue
			}
			kept := "no"
			if keep[kind] {
				kept = "yes"
			}
			fmt.Printf("%-20s %-34s %s\n", kind, filepath.Base(entry.Output.Path), kept)
		}
	}
	fmt.Println()
}
