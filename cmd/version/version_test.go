package version

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	versionOutput = ""

	buf := new(bytes.Buffer)
	VersionCmd.SetOut(buf)
	VersionCmd.SetArgs(args)
	err := VersionCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand_Text(t *testing.T) {
	out, err := execute(t)
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Errorf("version output has %d lines, want 4:\n%s", len(lines), out)
	}
	for _, label := range []string{"Version:", "Git Commit:", "Build Date:", "Go Version:"} {
		if !strings.Contains(out, label) {
			t.Errorf("version output missing label %q", label)
		}
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	out, err := execute(t, "--output", "json")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if decoded["version"] == "" {
		t.Errorf("missing version field: %v", decoded)
	}
}

func TestVersionCommand_BadFormat(t *testing.T) {
	if _, err := execute(t, "--output", "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
