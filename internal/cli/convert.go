package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shadebridge/pkg/config"
	"github.com/matzehuels/shadebridge/pkg/emit"
	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/pipeline"
	"github.com/matzehuels/shadebridge/pkg/source"
)

// convertFlags holds the command-line flags for the convert command.
type convertFlags struct {
	output      string
	format      string
	renderer    string
	hostVersion string
	rewriteTx   bool
	udim        bool
	all         bool
	strict      bool
	refresh     bool
	noCache     bool
	workers     int
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	flags := convertFlags{workers: defaultWorkers}

	cmd := &cobra.Command{
		Use:   "convert <scene> [material...]",
		Short: "Convert materials of a scene dump",
		Long: `Convert one or more materials (shading groups) of a JSON or YAML scene dump.

Without material arguments the scene must hold exactly one material, unless
--all is given. A single material is written to --output or stdout; several
materials are written to one file each in the --output directory.`,
		Example: `  # Convert the only material to a Katana paste
  shadebridge convert scene.json -o wood.xml

  # Convert every material for RenderMan into ./katana
  shadebridge convert scene.yaml --all --renderer prman -o katana/

  # Preview a network as SVG
  shadebridge convert scene.json woodSG -f svg -o woodSG.svg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.applyConfig(cmd, cfg)
			return c.runConvert(cmd.Context(), cfg, args[0], args[1:], flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output file, or directory when converting several materials")
	f.StringVarP(&flags.format, "format", "f", "", "output format: "+strings.Join(emit.Formats(), ", "))
	f.StringVarP(&flags.renderer, "renderer", "r", "", "target renderer: auto, arnold, prman")
	f.StringVar(&flags.hostVersion, "host-version", "", "renderer plugin version the scene was authored with")
	f.BoolVar(&flags.rewriteTx, "tx", false, "point texture file names at their .tx counterparts")
	f.BoolVar(&flags.udim, "udim", false, "rewrite UDIM tile file names to the <UDIM> token")
	f.BoolVarP(&flags.all, "all", "a", false, "convert every material in the scene")
	f.BoolVar(&flags.strict, "strict", false, "fail when a conversion records error diagnostics")
	f.BoolVar(&flags.refresh, "refresh", false, "ignore cached results")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable the conversion cache")
	f.IntVarP(&flags.workers, "workers", "j", defaultWorkers, "concurrent conversions for --all")

	return cmd
}

// applyConfig fills flags the user did not set from the config file.
func (f *convertFlags) applyConfig(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if !set("renderer") {
		f.renderer = cfg.Renderer
	}
	if !set("host-version") {
		f.hostVersion = cfg.HostVersion
	}
	if !set("tx") {
		f.rewriteTx = cfg.Texture.RewriteTx
	}
	if !set("udim") {
		f.udim = cfg.Texture.UDIM
	}
	if !set("format") {
		switch {
		case knownExtension(f.output):
			f.format = emit.FormatFromPath(f.output)
		case cfg.Output.Format != "":
			f.format = cfg.Output.Format
		default:
			f.format = emit.FormatXML
		}
	}
}

func (f *convertFlags) options() pipeline.Options {
	return pipeline.Options{
		Renderer:    f.renderer,
		HostVersion: f.hostVersion,
		RewriteTx:   f.rewriteTx,
		UDIM:        f.udim,
		Refresh:     f.refresh,
	}
}

func (c *CLI) runConvert(ctx context.Context, cfg *config.Config, scenePath string, roots []string, flags convertFlags) error {
	logger := loggerFromContext(ctx)
	emitter, err := emit.New(flags.format)
	if err != nil {
		return err
	}

	snap, err := source.LoadSnapshot(scenePath)
	if err != nil {
		return err
	}
	roots, err = selectRoots(snap, roots, flags.all)
	if err != nil {
		return err
	}

	flush := c.setupMetrics(cfg)
	defer flush()

	runner := c.newRunner(ctx, cfg, flags.noCache)
	defer runner.Close()

	prog := newProgress(logger)
	var results []*pipeline.Result
	if len(roots) == 1 {
		opts := flags.options()
		opts.Root = roots[0]
		res, err := runner.Execute(ctx, snap, opts)
		if err != nil {
			return err
		}
		results = []*pipeline.Result{res}
	} else {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Converting %d materials...", len(roots)))
		spinner.Start()
		results, err = runner.ExecuteAll(ctx, snap, roots, flags.options(), flags.workers)
		spinner.Stop()
		if err != nil {
			return err
		}
	}

	if err := writeResults(emitter, results, flags.output); err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		printSuccess("%s", res.Root)
		printStats(res)
		printDiagnostics(res.Diagnostics)
		if res.Diagnostics.HasErrors() {
			failed++
		}
	}
	prog.done(fmt.Sprintf("Converted %d material(s)", len(results)))

	if flags.strict && failed > 0 {
		return errors.New(errors.ErrCodeHookFailure, "%d material(s) converted with errors", failed)
	}
	return nil
}

// selectRoots resolves which materials to convert.
func selectRoots(snap *source.Snapshot, roots []string, all bool) ([]string, error) {
	available := snap.Roots()
	switch {
	case all:
		if len(roots) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "--all cannot be combined with material names")
		}
		if len(available) == 0 {
			return nil, errors.New(errors.ErrCodeNodeNotFound, "scene has no materials")
		}
		return available, nil
	case len(roots) > 0:
		return roots, nil
	case len(available) == 1:
		return available, nil
	case len(available) == 0:
		return nil, errors.New(errors.ErrCodeNodeNotFound, "scene has no materials")
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"scene has %d materials (%s); name one or use --all", len(available), strings.Join(available, ", "))
	}
}

// writeResults writes one result to output (stdout when empty) or each
// result to <output>/<root><ext>.
func writeResults(e emit.Emitter, results []*pipeline.Result, output string) error {
	if len(results) == 1 && !isDir(output) {
		if output == "" {
			return writeTo(os.Stdout, e, results[0])
		}
		if err := writeFile(output, e, results[0]); err != nil {
			return err
		}
		printFile(output)
		return nil
	}

	dir := output
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, res := range results {
		path := filepath.Join(dir, res.Root+e.Extension())
		if err := writeFile(path, e, res); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

func writeFile(path string, e emit.Emitter, res *pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeTo(f, e, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTo(w io.Writer, e emit.Emitter, res *pipeline.Result) error {
	bw := bufio.NewWriter(w)
	if err := e.Emit(bw, res.Export()); err != nil {
		return fmt.Errorf("emit %s: %w", res.Root, err)
	}
	return bw.Flush()
}

func knownExtension(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return ext != "" && slices.Contains(emit.Formats(), ext)
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	if strings.HasSuffix(path, string(os.PathSeparator)) || strings.HasSuffix(path, "/") {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
