package cli

import (
	"os"
	"strings"
	"testing"
)

func TestSchemaList(t *testing.T) {
	buf := captureUI(t)
	if _, err := runCLI(t, "schema", "list", "--renderer", "prman"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "networkMaterial") {
		t.Errorf("schema list output missing networkMaterial:\n%s", buf.String())
	}
}

func TestSchemaCheckBundled(t *testing.T) {
	captureUI(t)
	if _, err := runCLI(t, "schema", "check"); err != nil {
		t.Errorf("bundled tables should validate: %v", err)
	}
}

func TestSchemaCheckFile(t *testing.T) {
	sandbox(t, "nodes: []\n")
	bad := "myShader:\n  color: !override noSuchFunction\n"
	if err := os.WriteFile("bad.yaml", []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "schema", "check", "bad.yaml"); err == nil {
		t.Error("expected unknown override to fail validation")
	}
}

func TestSchemaUnknownRenderer(t *testing.T) {
	captureUI(t)
	if _, err := runCLI(t, "schema", "list", "-r", "cycles"); err == nil {
		t.Error("expected error for unknown renderer")
	}
}
