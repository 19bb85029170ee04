// Package archive bundles exported layer images into a single ZIP file.
package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/hellenic-development/psd-extractor/pkg/imager"
)

// ManifestName is the name of the JSON manifest stored next to the images.
const ManifestName = "manifest.json"

// Manifest describes the contents of a bundle.
type Manifest struct {
	RunID     string          `json:"run_id"`
	Document  string          `json:"document"`
	CreatedAt time.Time       `json:"created_at"`
	Exported  int             `json:"exported"`
	Attempted int             `json:"attempted"`
	Files     []ManifestFile  `json:"files"`
	Skipped   []ManifestEntry `json:"skipped,omitempty"`
	Failures  []ManifestEntry `json:"failures,omitempty"`
}

// ManifestFile is one image in the bundle.
type ManifestFile struct {
	File     string   `json:"file"`
	Layer    string   `json:"layer"`
	Path     []string `json:"path,omitempty"`
	Size     int      `json:"size"`
	Fallback bool     `json:"fallback,omitempty"` // encoded by the fallback encoder
}

// ManifestEntry is a layer that did not make it into the bundle.
type ManifestEntry struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// NewManifest summarises an export result.
func NewManifest(runID, document string, result *imager.ExportResult) Manifest {
	m := Manifest{
		RunID:     runID,
		Document:  document,
		CreatedAt: time.Now().UTC(),
		Exported:  result.Exported(),
		Attempted: result.Attempted,
		Files:     make([]ManifestFile, 0, len(result.Assets)),
	}
	for _, a := range result.Assets {
		m.Files = append(m.Files, ManifestFile{
			File:     a.FileName(),
			Layer:    a.LayerName,
			Path:     a.Path,
			Size:     a.Size,
			Fallback: a.UsedFallback,
		})
	}
	for _, s := range result.Skipped {
		m.Skipped = append(m.Skipped, ManifestEntry{Name: s.Name, Reason: s.Reason})
	}
	for _, f := range result.Failures {
		m.Failures = append(m.Failures, ManifestEntry{Name: f.Name, Reason: f.Err.Error()})
	}
	return m
}

// WriteZip writes assets as <Name>.png entries plus the manifest to w.
// When several assets share a name only the last one is stored, matching what
// writing them to a directory would leave behind.
func WriteZip(w io.Writer, assets []imager.ExportedAsset, manifest *Manifest) error {
	zw := zip.NewWriter(w)

	last := make(map[string]int, len(assets))
	for i, a := range assets {
		last[a.FileName()] = i
	}

	modified := time.Now()
	for i, a := range assets {
		if last[a.FileName()] != i {
			continue
		}
		// PNG data is already deflated.
		hdr := &zip.FileHeader{Name: a.FileName(), Method: zip.Store, Modified: modified}
		f, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("create %s: %w", a.FileName(), err)
		}
		if _, err := f.Write(a.Data); err != nil {
			return fmt.Errorf("write %s: %w", a.FileName(), err)
		}
	}

	if manifest != nil {
		data, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			return fmt.Errorf("encode manifest: %w", err)
		}
		f, err := zw.CreateHeader(&zip.FileHeader{Name: ManifestName, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return fmt.Errorf("create %s: %w", ManifestName, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", ManifestName, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize zip: %w", err)
	}
	return nil
}
