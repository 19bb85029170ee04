package imager

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
)

// Encoder turns a raster surface into image file bytes.
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
}

// EncoderFunc adapts a plain function to the Encoder interface.
type EncoderFunc func(img image.Image) ([]byte, error)

// Encode calls f.
func (f EncoderFunc) Encode(img image.Image) ([]byte, error) { return f(img) }

// PNGEncoder encodes the surface as-is with image/png, keeping its pixel format.
type PNGEncoder struct {
	CompressionLevel png.CompressionLevel
}

// Encode implements Encoder.
func (e PNGEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: e.CompressionLevel}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// NRGBAEncoder first copies the surface into a zero-origin NRGBA image and encodes that.
// It is the fallback for surfaces whose native format the PNG writer rejects.
type NRGBAEncoder struct {
	CompressionLevel png.CompressionLevel
}

// Encode implements Encoder.
func (e NRGBAEncoder) Encode(img image.Image) ([]byte, error) {
	flat := imaging.Clone(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.PNG, imaging.PNGCompressionLevel(e.CompressionLevel)); err != nil {
		return nil, fmt.Errorf("nrgba encode: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeError is returned when both the primary and the fallback encoder failed.
type EncodeError struct {
	Layer    string
	Primary  error
	Fallback error // nil when no fallback was configured
}

func (e *EncodeError) Error() string {
	if e.Fallback == nil {
		return fmt.Sprintf("encode %s: %v", e.Layer, e.Primary)
	}
	return fmt.Sprintf("encode %s: %v (fallback: %v)", e.Layer, e.Primary, e.Fallback)
}

func (e *EncodeError) Unwrap() []error {
	if e.Fallback == nil {
		return []error{e.Primary}
	}
	return []error{e.Primary, e.Fallback}
}

// ErrEncoderPanic marks an encoder that panicked instead of returning an error.
var ErrEncoderPanic = errors.New("encoder panicked")

// safeEncode runs enc and converts a panic into an error.
func safeEncode(enc Encoder, img image.Image) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("%w: %v", ErrEncoderPanic, r)
		}
	}()
	return enc.Encode(img)
}

// ParseCompression maps a CLI/config compression name to a png.CompressionLevel.
func ParseCompression(name string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "fast", "speed":
		return png.BestSpeed, nil
	case "best", "size":
		return png.BestCompression, nil
	default:
		return 0, fmt.Errorf("invalid compression %q (must be default, none, fast, or best)", name)
	}
}
