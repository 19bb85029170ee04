package formatter

import (
	"errors"
	"strings"
	"testing"

	"github.com/hellenic-development/psd-extractor/pkg/extractor"
	"github.com/hellenic-development/psd-extractor/pkg/imager"
	"github.com/hellenic-development/psd-extractor/pkg/psd"
)

func sampleResult() *imager.ExportResult {
	return &imager.ExportResult{
		Assets: []imager.ExportedAsset{
			{Name: "UI_Button", LayerName: "Button", Path: extractor.Path{"UI"}, Size: 2048},
		},
		Skipped:   []imager.SkippedLayer{{Name: "UI_Shape", Reason: imager.ReasonNoSurface}},
		Failures:  []imager.Failure{{Name: "Logo", Err: errors.New("bad channel")}},
		Attempted: 3,
		Total:     3,
	}
}

func TestToMarkdown(t *testing.T) {
	md := ToMarkdown("mockup", sampleResult(), nil, "psd-layers")

	wants := []string{
		"# Layer Export - mockup",
		"Exported **1** of 3 attempted layer(s).",
		"| Button | UI | [`UI_Button.png`](psd-layers/UI_Button.png) | 2.0 KB |",
		"- `UI_Shape`: no surface",
		"- `Logo`: bad channel",
	}
	for _, want := range wants {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
	if strings.Contains(md, "## Layer Tree") {
		t.Error("layer tree rendered although none was requested")
	}
}

func TestToMarkdown_EmptyRun(t *testing.T) {
	md := ToMarkdown("blank", &imager.ExportResult{}, nil, "")
	if !strings.Contains(md, "Exported **0** of 0 attempted layer(s).") {
		t.Errorf("empty run summary missing:\n%s", md)
	}
	if strings.Contains(md, "## Exported Layers") {
		t.Error("empty run should not render an exported table")
	}
}

func TestToMarkdown_LayerTree(t *testing.T) {
	tree := []*extractor.NodeDescription{
		{Name: "UI", Kind: psd.KindGroup, Visible: true, Children: []*extractor.NodeDescription{
			{Name: "Button", Kind: psd.KindLayer, Visible: true, Width: 10, Height: 10, ExportedFile: "UI_Button.png"},
			{Name: "Label", Kind: psd.KindLayer, Width: 4, Height: 2},
		}},
	}

	md := ToMarkdown("mockup", sampleResult(), tree, "")
	wants := []string{
		"- **UI/**\n",
		"  - Button (10x10, `UI_Button.png`)\n",
		"  - Label (hidden, 4x2)\n",
	}
	for _, want := range wants {
		if !strings.Contains(md, want) {
			t.Errorf("layer tree missing %q\n%s", want, md)
		}
	}
}

func TestToHTML(t *testing.T) {
	html, err := ToHTML(ToMarkdown("mockup", sampleResult(), nil, ""))
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	for _, want := range []string{"<h1>Layer Export - mockup</h1>", "<table>", "<td>Button</td>"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q\n%s", want, html)
		}
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := humanSize(tt.n); got != tt.want {
			t.Errorf("humanSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
