package extractor

import (
	"iter"
	"strings"

	"github.com/hellenic-development/psd-extractor/pkg/psd"
)

// Path is the ordered list of ancestor group names from the root down to a node's parent.
// The root itself never contributes a segment.
type Path []string

// Append returns a new Path with name added at the end. The receiver is left untouched,
// so sibling branches never share a backing array.
func (p Path) Append(name string) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, name)
}

// String joins the segments with " / " for display purposes.
func (p Path) String() string {
	return strings.Join(p, " / ")
}

// Entry is one visited node together with the path of its ancestors.
type Entry struct {
	Node psd.Node
	Path Path
	// InHiddenGroup is set when any ancestor group has its visibility flag off.
	InHiddenGroup bool
}

// Name returns the node's own name, or "" for the root.
func (e Entry) Name() string {
	switch n := e.Node.(type) {
	case *psd.Group:
		return n.Name
	case *psd.Layer:
		return n.Name
	default:
		return ""
	}
}

// Flatten walks the tree under root depth-first in pre-order: each group is yielded before
// its members and siblings keep the order they are stored in. The root is not yielded.
// Every range over the returned sequence starts a fresh walk.
func Flatten(root *psd.Root) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		if root == nil {
			return
		}
		walk(root.Children, nil, false, yield)
	}
}

func walk(children []psd.Node, path Path, hidden bool, yield func(Entry) bool) bool {
	for _, child := range children {
		if !yield(Entry{Node: child, Path: path, InHiddenGroup: hidden}) {
			return false
		}
		if g, ok := child.(*psd.Group); ok {
			if !walk(g.Children, path.Append(g.Name), hidden || !g.Visible, yield) {
				return false
			}
		}
	}
	return true
}

// Unit is a visible layer ready for export.
type Unit struct {
	Layer *psd.Layer
	Path  Path
}

// SkipReason explains why a layer was left out of the export.
type SkipReason string

const (
	ReasonHidden         SkipReason = "hidden layer"
	ReasonHiddenAncestor SkipReason = "inside hidden group"
)

// Skip records a layer that was filtered out before export.
type Skip struct {
	Name   string
	Path   Path
	Reason SkipReason
}

// Policy controls the visibility filter.
type Policy struct {
	// InheritHidden makes a hidden group hide every layer below it. Off by default:
	// only a layer's own flag counts.
	InheritHidden bool
}

// Collect flattens the tree and applies the visibility filter. Units and skips are both
// returned in traversal order.
func Collect(root *psd.Root, policy Policy) (units []Unit, skipped []Skip) {
	for e := range Flatten(root) {
		layer, ok := e.Node.(*psd.Layer)
		if !ok {
			continue
		}
		switch {
		case !layer.Visible:
			skipped = append(skipped, Skip{Name: layer.Name, Path: e.Path, Reason: ReasonHidden})
		case policy.InheritHidden && e.InHiddenGroup:
			skipped = append(skipped, Skip{Name: layer.Name, Path: e.Path, Reason: ReasonHiddenAncestor})
		default:
			units = append(units, Unit{Layer: layer, Path: e.Path})
		}
	}

	return units, skipped
}
