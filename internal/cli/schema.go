package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shadebridge/pkg/profile"
	"github.com/matzehuels/shadebridge/pkg/profile/renderers"
	"github.com/matzehuels/shadebridge/pkg/schema"
)

// schemaCommand creates the schema inspection command.
func (c *CLI) schemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and validate mapping tables",
	}

	cmd.AddCommand(c.schemaListCommand())
	cmd.AddCommand(c.schemaCheckCommand())

	return cmd
}

// schemaListCommand creates the "schema list" subcommand.
func (c *CLI) schemaListCommand() *cobra.Command {
	var renderer string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the target types a renderer maps to",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildProfile(renderer)
			if err != nil {
				return err
			}
			rows := schemaRows(p)
			printInfo("%s: %d target types", p.Name, len(rows))
			fmt.Fprintln(uiOut, newTable("Type", "Variants", "Ports", "Process", "Color").Rows(rows...).Render())
			return nil
		},
	}

	cmd.Flags().StringVarP(&renderer, "renderer", "r", renderers.All[0].Name, "renderer whose tables to list")
	return cmd
}

func schemaRows(p *profile.Profile) [][]string {
	var rows [][]string
	for _, typ := range p.Schemas.Types() {
		tables := p.Schemas.Tables(typ)
		t := tables[len(tables)-1]
		color := ""
		if len(t.Color) >= 3 {
			color = fmt.Sprintf("%.2f %.2f %.2f", t.Color[0], t.Color[1], t.Color[2])
		}
		rows = append(rows, []string{
			typ,
			strconv.Itoa(len(tables)),
			strconv.Itoa(len(t.Ports())),
			t.Process,
			color,
		})
	}
	return rows
}

// schemaCheckCommand creates the "schema check" subcommand.
func (c *CLI) schemaCheckCommand() *cobra.Command {
	var renderer string

	cmd := &cobra.Command{
		Use:   "check [table.yaml...]",
		Short: "Validate bundled or custom mapping tables",
		Long: `Validate mapping tables against the override and process functions a
renderer provides. Without arguments every bundled renderer is checked; with
files, each file is parsed and checked against --renderer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return checkBundled()
			}
			p, err := buildProfile(renderer)
			if err != nil {
				return err
			}
			failed := 0
			for _, path := range args {
				if err := checkFile(p, path); err != nil {
					printError("%s: %v", path, err)
					failed++
					continue
				}
				printSuccess("%s", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d table file(s) invalid", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&renderer, "renderer", "r", renderers.All[0].Name, "renderer whose functions custom tables may call")
	return cmd
}

func buildProfile(name string) (*profile.Profile, error) {
	r, ok := renderers.Find(name)
	if !ok {
		return nil, fmt.Errorf("unknown renderer %q (available: %v)", name, renderers.Names())
	}
	return r.New(profile.Options{})
}

func checkBundled() error {
	for _, r := range renderers.All {
		p, err := r.New(profile.Options{})
		if err == nil {
			err = p.Validate()
		}
		if err != nil {
			printError("%s: %v", r.Name, err)
			return err
		}
		printSuccess("%s: %d target types", r.Name, len(p.Schemas.Types()))
	}
	return nil
}

func checkFile(p *profile.Profile, path string) error {
	set, err := schema.LoadFile(path)
	if err != nil {
		return err
	}
	return set.Validate(p.Funcs)
}
