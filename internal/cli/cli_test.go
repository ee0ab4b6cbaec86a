package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shadebridge/pkg/config"
	"github.com/matzehuels/shadebridge/pkg/emit"
	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/source"
)

const twoMaterials = `
nodes:
  - id: woodSG
    type: shadingEngine
    connections:
      surfaceShader: {node: wood, port: outColor}
  - id: wood
    type: aiStandardSurface
    attributes:
      base: 0.8
  - id: metalSG
    type: shadingEngine
    connections:
      surfaceShader: {node: metal, port: outColor}
  - id: metal
    type: aiStandardSurface
    attributes:
      metalness: 1
`

// sandbox isolates a test from real config and cache directories and
// returns the path of a scene file holding body.
func sandbox(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	captureUI(t)

	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	root := New(&logs, log.DebugLevel).RootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := []string{"convert", "inspect", "schema", "cache", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestConvertSingle(t *testing.T) {
	scenePath := sandbox(t, twoMaterials)

	if _, err := runCLI(t, "convert", scenePath, "woodSG", "-o", "wood.xml", "--no-cache"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	data, err := os.ReadFile("wood.xml")
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"<katana", `name="wood_out"`, `name="wood_mtl"`, "NetworkMaterial"} {
		if !strings.Contains(out, want) {
			t.Errorf("wood.xml missing %s", want)
		}
	}
	if strings.Contains(out, `name="metal_out"`) {
		t.Error("wood.xml contains nodes of another material")
	}
}

func TestConvertAll(t *testing.T) {
	scenePath := sandbox(t, twoMaterials)

	if _, err := runCLI(t, "convert", scenePath, "--all", "-f", "json", "-o", "out"); err != nil {
		t.Fatalf("convert --all: %v", err)
	}
	for _, name := range []string{"woodSG.json", "metalSG.json"} {
		if _, err := os.Stat(filepath.Join("out", name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
}

func TestConvertAmbiguous(t *testing.T) {
	scenePath := sandbox(t, twoMaterials)

	_, err := runCLI(t, "convert", scenePath, "--no-cache")
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestConvertUsesConfig(t *testing.T) {
	scenePath := sandbox(t, twoMaterials)
	cfg := "[output]\nformat = \"json\"\n\n[cache]\nenabled = false\n"
	if err := os.WriteFile(config.FileName, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "convert", scenePath, "woodSG", "-o", "wood"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	data, err := os.ReadFile("wood")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		t.Error("config format was not applied")
	}
}

func TestSelectRoots(t *testing.T) {
	one, _ := source.NewSnapshot("", []*scene.Node{{ID: "aSG", Type: source.MaterialType}})
	two, _ := source.NewSnapshot("", []*scene.Node{
		{ID: "aSG", Type: source.MaterialType},
		{ID: "bSG", Type: source.MaterialType},
	})
	none, _ := source.NewSnapshot("", []*scene.Node{{ID: "f", Type: "file"}})

	tests := []struct {
		name  string
		snap  *source.Snapshot
		roots []string
		all   bool
		want  []string
		code  errors.Code
	}{
		{"single implicit", one, nil, false, []string{"aSG"}, ""},
		{"explicit", two, []string{"bSG"}, false, []string{"bSG"}, ""},
		{"all", two, nil, true, []string{"aSG", "bSG"}, ""},
		{"ambiguous", two, nil, false, nil, errors.ErrCodeInvalidInput},
		{"all with names", two, []string{"aSG"}, true, nil, errors.ErrCodeInvalidInput},
		{"empty", none, nil, false, nil, errors.ErrCodeNodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectRoots(tt.snap, tt.roots, tt.all)
			if errors.GetCode(err) != tt.code {
				t.Fatalf("error = %v, want code %q", err, tt.code)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("roots = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyConfig(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	cmd := c.convertCommand()
	if err := cmd.ParseFlags([]string{"-o", "mat.svg", "--udim"}); err != nil {
		t.Fatal(err)
	}
	flags := convertFlags{output: "mat.svg", udim: true}
	cfg := config.Default()
	cfg.Renderer = "prman"
	cfg.Texture.RewriteTx = true

	flags.applyConfig(cmd, cfg)

	if flags.format != emit.FormatSVG {
		t.Errorf("format = %q, want svg from the output extension", flags.format)
	}
	if flags.renderer != "prman" || !flags.rewriteTx || !flags.udim {
		t.Errorf("flags = %+v", flags)
	}
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]bool{
		"":                              false,
		dir:                             true,
		"out/":                          true,
		filepath.Join(dir, "file.xml"): false,
	}
	for path, want := range tests {
		if got := isDir(path); got != want {
			t.Errorf("isDir(%q) = %v, want %v", path, got, want)
		}
	}
}
