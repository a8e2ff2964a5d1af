package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestBar(t *testing.T) {
	var buf bytes.Buffer
	bar := New(&buf, "Exporting")

	bar.Start(4)
	if bar.Percent() != 0 {
		t.Errorf("Percent() after Start = %v, want 0", bar.Percent())
	}

	for _, name := range []string{"a", "b", "c", "d"} {
		bar.Advance(name)
	}
	bar.Finish()

	if bar.Percent() != 1 {
		t.Errorf("Percent() after all steps = %v, want 1", bar.Percent())
	}

	out := buf.String()
	if !strings.Contains(out, "Exporting: 4 elements") {
		t.Errorf("missing header, got %q", out)
	}
	if !strings.Contains(out, "4/4") {
		t.Errorf("missing final count, got %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish should end the line")
	}
}

func TestBar_Empty(t *testing.T) {
	bar := New(&bytes.Buffer{}, "Exporting")
	bar.Start(0)
	bar.Finish()

	if bar.Percent() != 1 {
		t.Errorf("empty run should be complete, got %v", bar.Percent())
	}
}
