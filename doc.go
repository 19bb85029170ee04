// Package psdextractor exports every visible raster layer of a layered PSD document as a
// standalone PNG, named after its position in the group hierarchy.
//
// The CLI lives in cmd/psd-extractor; this root package exposes the same pipeline as a Go
// API so that callers can embed extraction in their own tools without shelling out.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named psdextractor:
//
//	import "github.com/hellenic-development/psd-extractor" // package psdextractor
//
// # Quick start
//
//	result, err := psdextractor.Run(ctx, psdextractor.Options{
//	    Input:     "mockup.psd",
//	    OutputDir: "layers",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d/%d layers\n", result.Summary.Exported(), result.Summary.Attempted)
//
// # Naming
//
// A layer "Button" inside group "UI" is written as layers/UI_Button.png. Group and layer
// names are sanitized for the filesystem; layers that resolve to the same name overwrite
// each other, the last one in document order wins.
//
// # Visibility
//
// Hidden layers are skipped. A hidden group does not hide its visible layers unless
// [Options.InheritHidden] is set.
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output.
//
//	type myLogger struct{}
//	func (l *myLogger) Infof(f string, a ...any)  { log.Printf("[INFO]  "+f, a...) }
//	func (l *myLogger) Warnf(f string, a ...any)  { log.Printf("[WARN]  "+f, a...) }
//	func (l *myLogger) Errorf(f string, a ...any) { log.Printf("[ERROR] "+f, a...) }
//
// # Failures
//
// Only an unreadable document stops a run. Layers that cannot be encoded, even after the
// fallback encoder, are listed in Result.Summary.Failures and logged; the remaining layers
// are still exported.
package psdextractor
