package styles

import (
	"strings"
	"testing"
)

func TestStylesRender(t *testing.T) {
	for name, out := range map[string]string{
		"Title":       Title.Render("x"),
		"SuccessText": SuccessText.Render("x"),
		"WarningText": WarningText.Render("x"),
		"ErrorText":   ErrorText.Render("x"),
		"MutedText":   MutedText.Render("x"),
	} {
		if !strings.Contains(out, "x") {
			t.Errorf("%s should render its text, got %q", name, out)
		}
	}
}

func TestField(t *testing.T) {
	out := Field("Title", "MNIST")
	if !strings.HasPrefix(out, "Title") || !strings.HasSuffix(out, "MNIST") {
		t.Errorf("Field() = %q", out)
	}
	if len(out) < len("Title")+len("MNIST")+1 {
		t.Errorf("label column should be padded, got %q", out)
	}
}
