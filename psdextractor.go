package psdextractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hellenic-development/psd-extractor/pkg/archive"
	"github.com/hellenic-development/psd-extractor/pkg/extractor"
	"github.com/hellenic-development/psd-extractor/pkg/formatter"
	"github.com/hellenic-development/psd-extractor/pkg/imager"
	"github.com/hellenic-development/psd-extractor/pkg/psd"
)

// Options configures the extraction.
type Options struct {
	Input         string        // local path or http(s) URL of the document
	Document      *psd.Document // already decoded document; takes precedence over Input
	OutputDir     string        // "" = do not write PNG files
	ZipPath       string        // "" = no ZIP bundle
	ReportPath    string        // "" = no report; .html renders HTML, anything else markdown
	LayerTree     bool          // include the layer hierarchy in the report
	InheritHidden bool          // hidden groups hide their descendants
	NoFallback    bool          // disable the fallback encoder
	Compression   png.CompressionLevel
	Logger        Logger                   // nil = no logging
	Progress      func(current, total int) // called once per attempted layer
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the extraction output.
type Result struct {
	RunID    string
	Document *psd.Document
	Summary  *imager.ExportResult
	Files    []string // PNG files written to OutputDir
	Markdown string   // formatted markdown report
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) logError(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Errorf(f, a...)
	}
}

// Run loads the document, exports every visible layer and persists whatever the options ask
// for (PNG files, ZIP bundle, report). Only a document that cannot be loaded, or outputs that
// cannot be written, make Run fail; individual layer problems are reported in the Summary.
// When persisting fails the Result is still returned alongside the error.
func Run(ctx context.Context, opts Options) (*Result, error) {
	doc := opts.Document
	if doc == nil {
		var err error
		doc, err = load(ctx, &opts)
		if err != nil {
			return nil, err
		}
	}

	result, err := Export(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	if err := persist(&opts, result); err != nil {
		return result, err
	}
	return result, nil
}

func load(ctx context.Context, opts *Options) (*psd.Document, error) {
	if opts.Input == "" {
		return nil, fmt.Errorf("%w: no input given", psd.ErrSourceUnavailable)
	}

	if psd.IsRemote(opts.Input) {
		opts.logInfo("Downloading %s...", opts.Input)
		doc, err := psd.NewClient().Fetch(ctx, opts.Input)
		if err != nil {
			return nil, fmt.Errorf("fetch document: %w", err)
		}
		return doc, nil
	}

	opts.logInfo("Reading %s...", opts.Input)
	doc, err := psd.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return doc, nil
}

// Export runs the layer pipeline on an already decoded document without touching the
// filesystem. The returned error is non-nil only when ctx is cancelled.
func Export(ctx context.Context, doc *psd.Document, opts Options) (*Result, error) {
	if doc == nil || doc.Root == nil {
		return nil, fmt.Errorf("%w: empty document", psd.ErrSourceUnavailable)
	}

	runID := uuid.NewString()
	opts.logInfo("Exporting layers from %s (%dx%d, %d layer(s))...", doc.Name, doc.Width, doc.Height, psd.CountLayers(doc.Root))

	units, skipped := extractor.Collect(doc.Root, extractor.Policy{InheritHidden: opts.InheritHidden})
	for _, s := range skipped {
		opts.logInfo("Skipping %s: %s", displayName(s.Path, s.Name), s.Reason)
	}
	opts.logInfo("Found %d visible layer(s)", len(units))

	config := imager.ExportConfig{
		Encoder: imager.PNGEncoder{CompressionLevel: opts.Compression},
		Progress: func(p imager.Progress) {
			switch p.Status {
			case imager.StatusSkipped:
				opts.logInfo("[%d/%d] Skipping %s: %s", p.Current, p.Total, p.Name, p.Reason)
			case imager.StatusFailed:
				opts.logError("[%d/%d] Failed to export %s: %v", p.Current, p.Total, p.Name, p.Err)
			default:
				opts.logInfo("[%d/%d] Exported %s", p.Current, p.Total, p.Name)
			}
			if opts.Progress != nil {
				opts.Progress(p.Current, p.Total)
			}
		},
	}
	if !opts.NoFallback {
		config.Fallback = imager.NRGBAEncoder{CompressionLevel: opts.Compression}
	}

	summary, err := imager.ExportLayers(ctx, units, config)
	if err != nil {
		return nil, fmt.Errorf("export layers: %w", err)
	}

	hidden := make([]imager.SkippedLayer, 0, len(skipped)+len(summary.Skipped))
	for _, s := range skipped {
		hidden = append(hidden, imager.SkippedLayer{
			Name:      imager.ResolveName(s.Path, s.Name),
			LayerName: s.Name,
			Path:      s.Path,
			Reason:    string(s.Reason),
		})
	}
	summary.Skipped = append(hidden, summary.Skipped...)

	opts.logInfo("Exported %d/%d layer(s)", summary.Exported(), summary.Attempted)
	if n := len(summary.Failures); n > 0 {
		opts.logWarn("%d layer(s) failed to export", n)
	}

	var tree []*extractor.NodeDescription
	if opts.LayerTree {
		tree = extractor.BuildNodeTree(doc.Root)
		files := make(map[*psd.Layer]string, len(summary.Assets))
		for _, a := range summary.Assets {
			files[a.Layer] = a.FileName()
		}
		extractor.AttachFiles(tree, files)
	}

	return &Result{
		RunID:    runID,
		Document: doc,
		Summary:  summary,
		Markdown: formatter.ToMarkdown(doc.Name, summary, tree, opts.OutputDir),
	}, nil
}

func persist(opts *Options, result *Result) error {
	var errs []error

	if opts.OutputDir != "" {
		opts.logInfo("Writing layers to %s...", opts.OutputDir)
		files, err := imager.WriteFiles(opts.OutputDir, result.Summary.Assets)
		result.Files = files
		if err != nil {
			opts.logError("Writing layers failed: %v", err)
			errs = append(errs, fmt.Errorf("write layers: %w", err))
		}
	}

	if opts.ZipPath != "" {
		opts.logInfo("Bundling layers into %s...", opts.ZipPath)
		if err := writeBundle(opts.ZipPath, result); err != nil {
			opts.logError("Bundling failed: %v", err)
			errs = append(errs, err)
		}
	}

	if opts.ReportPath != "" {
		opts.logInfo("Writing report to %s...", opts.ReportPath)
		if err := writeReport(opts.ReportPath, result.Markdown); err != nil {
			opts.logError("Report failed: %v", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// WriteBundle writes the exported layers and a manifest as a ZIP archive to w.
func WriteBundle(w io.Writer, result *Result) error {
	manifest := archive.NewManifest(result.RunID, result.Document.Name, result.Summary)
	return archive.WriteZip(w, result.Summary.Assets, &manifest)
}

func writeBundle(path string, result *Result) error {
	var buf bytes.Buffer
	if err := WriteBundle(&buf, result); err != nil {
		return fmt.Errorf("bundle layers: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	return nil
}

func writeReport(path, markdown string) error {
	content := markdown
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".html" || ext == ".htm" {
		html, err := formatter.ToHTML(markdown)
		if err != nil {
			return err
		}
		content = html
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func displayName(path extractor.Path, name string) string {
	if len(path) == 0 {
		return name
	}
	return path.String() + " / " + name
}
