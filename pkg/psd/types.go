package psd

import (
	"image"
)

// Version is the current release of psd-extractor.
const Version = "0.3.0"

// Kind discriminates the three node variants of a layer tree.
type Kind int

const (
	// KindRoot is the document itself. It has children but no name.
	KindRoot Kind = iota
	// KindGroup is a named folder of layers and nested groups.
	KindGroup
	// KindLayer is a named raster layer.
	KindLayer
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindGroup:
		return "group"
	case KindLayer:
		return "layer"
	default:
		return "unknown"
	}
}

// Node is a single element of the layer tree. The set of implementations is closed:
// *Root, *Group and *Layer. Callers dispatch with a type switch.
type Node interface {
	Kind() Kind
	node()
}

// Document is a decoded layered document: its canvas size and the root of its layer tree.
type Document struct {
	Name   string
	Width  int
	Height int
	Root   *Root
}

// Root is the top of the layer tree. It carries no name of its own and is never exported.
type Root struct {
	Children []Node
}

// Group is a folder in the layer tree. Its Visible flag is informational; visibility of
// the layers inside is decided per layer.
type Group struct {
	Name     string
	Visible  bool
	Children []Node
}

// Layer is a raster layer. Bounds are in document coordinates and Raster gives access to the
// layer's pixels.
type Layer struct {
	Name    string
	Visible bool
	Bounds  image.Rectangle
	Raster  Raster
}

// Raster supplies the pixel surface of a single layer.
// A nil image with a nil error means the layer has no renderable content.
type Raster interface {
	Surface() (image.Image, error)
}

// RasterFunc adapts a plain function to the Raster interface.
type RasterFunc func() (image.Image, error)

// Surface calls f.
func (f RasterFunc) Surface() (image.Image, error) { return f() }

func (*Root) Kind() Kind  { return KindRoot }
func (*Group) Kind() Kind { return KindGroup }
func (*Layer) Kind() Kind { return KindLayer }

func (*Root) node()  {}
func (*Group) node() {}
func (*Layer) node() {}

// CountLayers returns the number of Layer nodes below n, hidden ones included.
func CountLayers(n Node) int {
	switch v := n.(type) {
	case *Layer:
		return 1
	case *Group:
		return countChildren(v.Children)
	case *Root:
		return countChildren(v.Children)
	default:
		return 0
	}
}

func countChildren(children []Node) int {
	total := 0
	for _, c := range children {
		total += CountLayers(c)
	}
	return total
}
