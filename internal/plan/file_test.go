package plan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	content := `goal: tidy the workspace
steps:
  - type: mcp_tool
    action: list_dir
    mcp_server: fs
    parameters:
      path: /tmp
  - type: direct
    action: report
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Goal != "tidy the workspace" {
		t.Errorf("goal = %q", p.Goal)
	}
	if len(p.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(p.Steps))
	}

	tool, ok := p.Steps[0].(ToolCallStep)
	if !ok {
		t.Fatalf("step 1 is %T, want ToolCallStep", p.Steps[0])
	}
	if tool.Server != "fs" || tool.Parameters["path"] != "/tmp" {
		t.Errorf("unexpected tool step: %+v", tool)
	}
}

func TestLoadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	content := `{"goal": "g", "steps": [{"type": "direct", "action": "a"}]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Goal != "g" || len(p.Steps) != 1 {
		t.Fatalf("unexpected plan: %+v", p)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed file")
	}
}
