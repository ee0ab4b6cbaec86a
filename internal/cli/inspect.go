package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/shadebridge/pkg/pipeline"
	"github.com/matzehuels/shadebridge/pkg/profile/renderers"
	"github.com/matzehuels/shadebridge/pkg/source"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		pick     bool
		renderer string
	)

	cmd := &cobra.Command{
		Use:   "inspect <scene> [material]",
		Short: "List the materials of a scene or show one converted network",
		Long: `Without a material, list every material of the scene dump with its
detected renderer and network size. With a material (or --pick to choose one
interactively), convert it and print the resulting nodes, renames and
diagnostics.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := source.LoadSnapshot(args[0])
			if err != nil {
				return err
			}
			items := materialItems(snap)

			var root string
			switch {
			case len(args) == 2:
				root = args[1]
			case pick:
				sel, err := pickMaterial(ctx, items)
				if err != nil || sel == "" {
					return err
				}
				root = sel
			default:
				printMaterials(args[0], items)
				return nil
			}
			return c.inspectMaterial(ctx, snap, root, renderer)
		},
	}

	cmd.Flags().BoolVarP(&pick, "pick", "p", false, "choose the material interactively")
	cmd.Flags().StringVarP(&renderer, "renderer", "r", renderers.Auto, "target renderer: auto, arnold, prman")

	return cmd
}

// materialItems summarizes every material of snap.
func materialItems(snap *source.Snapshot) []MaterialItem {
	roots := snap.Roots()
	items := make([]MaterialItem, len(roots))
	for i, root := range roots {
		items[i] = MaterialItem{Name: root}
		nodes, err := snap.ListNodesReachableFrom(root)
		if err != nil {
			items[i].Err = err
			continue
		}
		items[i].Nodes = len(nodes)
		items[i].Renderer = renderers.Detect(nodes).Name
	}
	return items
}

func printMaterials(path string, items []MaterialItem) {
	if len(items) == 0 {
		printWarning("%s has no materials", path)
		return
	}
	printInfo("%d material(s) in %s", len(items), path)
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{it.Name, it.Renderer, fmt.Sprint(it.Nodes)}
		if it.Err != nil {
			rows[i] = []string{it.Name, "unreadable", it.Err.Error()}
		}
	}
	fmt.Fprintln(uiOut, newTable("Material", "Renderer", "Nodes").Rows(rows...).Render())
}

func pickMaterial(ctx context.Context, items []MaterialItem) (string, error) {
	if len(items) == 0 {
		printWarning("scene has no materials")
		return "", nil
	}
	p := tea.NewProgram(NewMaterialListModel(items), tea.WithContext(ctx), tea.WithOutput(uiOut))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("material picker: %w", err)
	}
	m := final.(MaterialListModel)
	if m.Selected == nil {
		return "", nil
	}
	return m.Selected.Name, nil
}

// inspectMaterial converts root without caching and prints the result.
func (c *CLI) inspectMaterial(ctx context.Context, snap *source.Snapshot, root, renderer string) error {
	runner := pipeline.NewRunner(nil, c.Logger)
	res, err := runner.Execute(ctx, snap, pipeline.Options{Root: root, Renderer: renderer})
	if err != nil {
		return err
	}

	fmt.Fprintln(uiOut, StyleTitle.Render(root))
	printKeyValue("Renderer", res.Renderer)
	if !res.HostVersion.IsZero() {
		printKeyValue("Host", res.HostVersion.String())
	}
	printKeyValue("Run", res.RunID.String())
	printStats(res)
	fmt.Fprintln(uiOut, nodesTable(res.Nodes()))
	if len(res.Renames) > 0 {
		fmt.Fprintln(uiOut, renamesTable(res.Renames))
	}
	printDiagnostics(res.Diagnostics)
	return nil
}
