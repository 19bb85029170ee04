package imager

import (
	"context"
	"fmt"
	"image"

	"github.com/hellenic-development/psd-extractor/pkg/extractor"
	"github.com/hellenic-development/psd-extractor/pkg/psd"
)

// Status is the outcome of exporting a single layer.
type Status int

const (
	StatusExported Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusExported:
		return "exported"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Skip reasons reported by ExportLayer.
const (
	ReasonNoSurface     = "no surface"
	ReasonEmptyEncoding = "empty encoding"
)

// ExportConfig holds configuration for layer export.
type ExportConfig struct {
	Encoder  Encoder // nil = PNGEncoder with default compression
	Fallback Encoder // tried once when Encoder fails; nil disables the fallback
	Progress func(Progress)
}

// Progress is emitted once per attempted layer, whatever its outcome.
type Progress struct {
	Current int // 1-based position among attempted layers
	Total   int
	Name    string
	Status  Status
	Reason  string // skip reason
	Err     error  // failure cause
}

// ExportedAsset represents a single exported layer image.
type ExportedAsset struct {
	Name         string // resolved, filesystem-safe name without extension
	LayerName    string
	Path         extractor.Path
	Layer        *psd.Layer
	Data         []byte
	Size         int
	UsedFallback bool
}

// FileName returns the asset's file name, "<Name>.png".
func (a ExportedAsset) FileName() string {
	return a.Name + ".png"
}

// SkippedLayer is a layer that had nothing to export.
type SkippedLayer struct {
	Name      string
	LayerName string
	Path      extractor.Path
	Reason    string
}

// Failure is a layer whose encoding failed on every available path.
type Failure struct {
	Name      string
	LayerName string
	Path      extractor.Path
	Err       error
}

func (f Failure) Error() string {
	return fmt.Sprintf("layer %q: %v", f.Name, f.Err)
}

// LayerResult is the outcome of ExportLayer. Exactly one of Asset, Skip or Failure is set,
// matching Status.
type LayerResult struct {
	Status  Status
	Asset   *ExportedAsset
	Skip    *SkippedLayer
	Failure *Failure
}

// ExportResult holds the results of an export run, in traversal order.
type ExportResult struct {
	Assets    []ExportedAsset
	Skipped   []SkippedLayer
	Failures  []Failure
	Attempted int
	Total     int
}

// Exported returns the number of successfully exported layers.
func (r *ExportResult) Exported() int {
	return len(r.Assets)
}

// ExportLayer renders one unit to encoded bytes. It never panics and never returns an
// error: every problem becomes a skip or a failure record.
func ExportLayer(unit extractor.Unit, config ExportConfig) LayerResult {
	name := ResolveName(unit.Path, unit.Layer.Name)

	skip := func(reason string) LayerResult {
		return LayerResult{Status: StatusSkipped, Skip: &SkippedLayer{
			Name:      name,
			LayerName: unit.Layer.Name,
			Path:      unit.Path,
			Reason:    reason,
		}}
	}
	fail := func(err error) LayerResult {
		return LayerResult{Status: StatusFailed, Failure: &Failure{
			Name:      name,
			LayerName: unit.Layer.Name,
			Path:      unit.Path,
			Err:       err,
		}}
	}

	img, err := surface(unit.Layer)
	if err != nil {
		return fail(fmt.Errorf("read surface: %w", err))
	}
	if img == nil || img.Bounds().Empty() {
		return skip(ReasonNoSurface)
	}

	primary := config.Encoder
	if primary == nil {
		primary = PNGEncoder{}
	}

	usedFallback := false
	data, err := safeEncode(primary, img)
	if err != nil {
		if config.Fallback == nil {
			return fail(&EncodeError{Layer: name, Primary: err})
		}
		var fbErr error
		data, fbErr = safeEncode(config.Fallback, img)
		if fbErr != nil {
			return fail(&EncodeError{Layer: name, Primary: err, Fallback: fbErr})
		}
		usedFallback = true
	}

	if len(data) == 0 {
		return skip(ReasonEmptyEncoding)
	}

	return LayerResult{Status: StatusExported, Asset: &ExportedAsset{
		Name:         name,
		LayerName:    unit.Layer.Name,
		Path:         unit.Path,
		Layer:        unit.Layer,
		Data:         data,
		Size:         len(data),
		UsedFallback: usedFallback,
	}}
}

func surface(l *psd.Layer) (img image.Image, err error) {
	if l.Raster == nil {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("raster panicked: %v", r)
		}
	}()
	return l.Raster.Surface()
}

// ExportLayers exports units one at a time, in order. Unit i+1 is not started before unit i
// has produced its result. The returned error is only ever the context's: a cancelled run
// returns what was exported so far.
func ExportLayers(ctx context.Context, units []extractor.Unit, config ExportConfig) (*ExportResult, error) {
	result := &ExportResult{Total: len(units)}

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		res := ExportLayer(unit, config)
		result.Attempted++

		ev := Progress{Current: result.Attempted, Total: result.Total, Status: res.Status}
		switch res.Status {
		case StatusExported:
			result.Assets = append(result.Assets, *res.Asset)
			ev.Name = res.Asset.Name
		case StatusSkipped:
			result.Skipped = append(result.Skipped, *res.Skip)
			ev.Name, ev.Reason = res.Skip.Name, res.Skip.Reason
		case StatusFailed:
			result.Failures = append(result.Failures, *res.Failure)
			ev.Name, ev.Err = res.Failure.Name, res.Failure.Err
		}

		if config.Progress != nil {
			config.Progress(ev)
		}
	}

	return result, nil
}
