package extractor

import (
	"github.com/hellenic-development/psd-extractor/pkg/psd"
)

// NodeDescription describes one group or layer of the document for reporting.
type NodeDescription struct {
	Name    string
	Kind    psd.Kind
	Visible bool

	// Dimensions (layers only)
	Width, Height int

	// File the layer was exported to, set by AttachFiles.
	ExportedFile string

	layer    *psd.Layer
	Children []*NodeDescription
}

// BuildNodeTree mirrors the layer tree under root as a NodeDescription tree, one entry per
// top-level node.
func BuildNodeTree(root *psd.Root) []*NodeDescription {
	if root == nil {
		return nil
	}
	return describeChildren(root.Children)
}

func describeChildren(children []psd.Node) []*NodeDescription {
	out := make([]*NodeDescription, 0, len(children))
	for _, c := range children {
		out = append(out, describe(c))
	}
	return out
}

func describe(node psd.Node) *NodeDescription {
	switch n := node.(type) {
	case *psd.Group:
		return &NodeDescription{
			Name:     n.Name,
			Kind:     psd.KindGroup,
			Visible:  n.Visible,
			Children: describeChildren(n.Children),
		}
	case *psd.Layer:
		return &NodeDescription{
			Name:    n.Name,
			Kind:    psd.KindLayer,
			Visible: n.Visible,
			Width:   n.Bounds.Dx(),
			Height:  n.Bounds.Dy(),
			layer:   n,
		}
	default:
		return &NodeDescription{Kind: node.Kind()}
	}
}

// AttachFiles walks the description tree and records the exported file name of every
// layer found in files.
func AttachFiles(roots []*NodeDescription, files map[*psd.Layer]string) {
	if len(files) == 0 {
		return
	}

	var walk func(nd *NodeDescription)
	walk = func(nd *NodeDescription) {
		if nd.layer != nil {
			if f, ok := files[nd.layer]; ok {
				nd.ExportedFile = f
			}
		}
		for _, child := range nd.Children {
			walk(child)
		}
	}

	for _, root := range roots {
		walk(root)
	}
}
