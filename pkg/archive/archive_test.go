package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/hellenic-development/psd-extractor/pkg/extractor"
	"github.com/hellenic-development/psd-extractor/pkg/imager"
)

func TestWriteZip(t *testing.T) {
	result := &imager.ExportResult{
		Assets: []imager.ExportedAsset{
			{Name: "UI_Button", LayerName: "Button", Path: extractor.Path{"UI"}, Data: []byte("old"), Size: 3},
			{Name: "Background", LayerName: "Background", Data: []byte("bg"), Size: 2, UsedFallback: true},
			{Name: "UI_Button", LayerName: "Button", Path: extractor.Path{"UI"}, Data: []byte("new"), Size: 3},
		},
		Skipped:   []imager.SkippedLayer{{Name: "Empty", Reason: imager.ReasonNoSurface}},
		Failures:  []imager.Failure{{Name: "Broken", Err: errors.New("boom")}},
		Attempted: 5,
		Total:     5,
	}
	manifest := NewManifest("run-1", "mockup", result)

	var buf bytes.Buffer
	if err := WriteZip(&buf, result.Assets, &manifest); err != nil {
		t.Fatalf("WriteZip() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}

	contents := make(map[string]string)
	var order []string
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		contents[f.Name] = string(data)
		order = append(order, f.Name)
	}

	if len(order) != 3 {
		t.Fatalf("zip entries = %v, want 2 images + manifest", order)
	}
	if contents["UI_Button.png"] != "new" {
		t.Errorf("UI_Button.png = %q, want the last duplicate", contents["UI_Button.png"])
	}

	var got Manifest
	if err := json.Unmarshal([]byte(contents[ManifestName]), &got); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	if got.RunID != "run-1" || got.Exported != 3 || got.Attempted != 5 {
		t.Errorf("manifest header = %+v", got)
	}
	if len(got.Files) != 3 || got.Files[0].Fallback || !got.Files[1].Fallback {
		t.Errorf("manifest files = %+v, want only Background marked as fallback", got.Files)
	}
	if len(got.Failures) != 1 || got.Failures[0].Reason != "boom" {
		t.Errorf("manifest failures = %+v", got.Failures)
	}
}

func TestWriteZip_NoManifest(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteZip(&buf, nil, nil); err != nil {
		t.Fatalf("WriteZip() error = %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	if len(zr.File) != 0 {
		t.Errorf("expected empty archive, got %d entries", len(zr.File))
	}
}
