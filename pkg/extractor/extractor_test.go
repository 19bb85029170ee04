package extractor

import (
	"image"
	"reflect"
	"strings"
	"testing"

	"github.com/hellenic-development/psd-extractor/pkg/psd"
)

func layer(name string, visible bool) *psd.Layer {
	return &psd.Layer{Name: name, Visible: visible, Bounds: image.Rect(0, 0, 10, 10)}
}

func group(name string, visible bool, children ...psd.Node) *psd.Group {
	return &psd.Group{Name: name, Visible: visible, Children: children}
}

// sampleTree:
//
//	Background
//	UI/
//	  Button
//	  Label (hidden)
//	  Icons/
//	    Close
//	  Empty/
//	Footer
func sampleTree() *psd.Root {
	return &psd.Root{Children: []psd.Node{
		layer("Background", true),
		group("UI", true,
			layer("Button", true),
			layer("Label", false),
			group("Icons", true, layer("Close", true)),
			group("Empty", true),
		),
		layer("Footer", true),
	}}
}

func visit(root *psd.Root) []string {
	var got []string
	for e := range Flatten(root) {
		got = append(got, strings.Join(e.Path.Append(e.Name()), "/"))
	}
	return got
}

func TestFlatten_PreOrder(t *testing.T) {
	got := visit(sampleTree())
	want := []string{
		"Background",
		"UI",
		"UI/Button",
		"UI/Label",
		"UI/Icons",
		"UI/Icons/Close",
		"UI/Empty",
		"Footer",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() order = %v, want %v", got, want)
	}
}

func TestFlatten_Deterministic(t *testing.T) {
	root := sampleTree()
	first := visit(root)
	second := visit(root)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two walks differ:\n%v\n%v", first, second)
	}
}

func TestFlatten_Empty(t *testing.T) {
	tests := []struct {
		name string
		root *psd.Root
	}{
		{name: "nil root", root: nil},
		{name: "root without children", root: &psd.Root{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := visit(tt.root); len(got) != 0 {
				t.Errorf("Flatten() yielded %v, want nothing", got)
			}
		})
	}
}

func TestFlatten_StopsOnBreak(t *testing.T) {
	n := 0
	for range Flatten(sampleTree()) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("visited %d entries, want 3", n)
	}
}

func TestPathAppend_NoAliasing(t *testing.T) {
	base := make(Path, 1, 8)
	base[0] = "UI"

	a := base.Append("A")
	b := base.Append("B")

	if a[1] != "A" || b[1] != "B" {
		t.Errorf("sibling paths alias each other: a=%v b=%v", a, b)
	}
	if len(base) != 1 {
		t.Errorf("Append mutated its receiver: %v", base)
	}
}

func TestCollect(t *testing.T) {
	tests := []struct {
		name        string
		root        *psd.Root
		policy      Policy
		wantUnits   []string
		wantSkipped []string
	}{
		{
			name:        "hidden layer skipped",
			root:        &psd.Root{Children: []psd.Node{group("UI", true, layer("Button", true), layer("Label", false))}},
			wantUnits:   []string{"UI/Button"},
			wantSkipped: []string{"UI/Label: hidden layer"},
		},
		{
			name:      "hidden group exposes visible layers by default",
			root:      &psd.Root{Children: []psd.Node{group("Draft", false, layer("Sketch", true))}},
			wantUnits: []string{"Draft/Sketch"},
		},
		{
			name:        "hidden group hides descendants when inherited",
			root:        &psd.Root{Children: []psd.Node{group("Draft", false, group("Inner", true, layer("Sketch", true))), layer("Final", true)}},
			policy:      Policy{InheritHidden: true},
			wantUnits:   []string{"Final"},
			wantSkipped: []string{"Draft/Inner/Sketch: inside hidden group"},
		},
		{
			name:        "same-named visible sibling group not affected",
			root:        &psd.Root{Children: []psd.Node{group("A", false, layer("x", true)), group("A", true, layer("y", true))}},
			policy:      Policy{InheritHidden: true},
			wantUnits:   []string{"A/y"},
			wantSkipped: []string{"A/x: inside hidden group"},
		},
		{
			name:      "empty group does not interrupt siblings",
			root:      &psd.Root{Children: []psd.Node{group("Empty", true), layer("After", true)}},
			wantUnits: []string{"After"},
		},
		{
			name: "empty root",
			root: &psd.Root{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units, skipped := Collect(tt.root, tt.policy)

			var gotUnits []string
			for _, u := range units {
				gotUnits = append(gotUnits, strings.Join(u.Path.Append(u.Layer.Name), "/"))
			}
			var gotSkipped []string
			for _, s := range skipped {
				gotSkipped = append(gotSkipped, strings.Join(s.Path.Append(s.Name), "/")+": "+string(s.Reason))
			}

			if !reflect.DeepEqual(gotUnits, tt.wantUnits) {
				t.Errorf("units = %v, want %v", gotUnits, tt.wantUnits)
			}
			if !reflect.DeepEqual(gotSkipped, tt.wantSkipped) {
				t.Errorf("skipped = %v, want %v", gotSkipped, tt.wantSkipped)
			}
		})
	}
}

func TestCollect_CountMatchesVisibleLayers(t *testing.T) {
	root := sampleTree()
	units, skipped := Collect(root, Policy{})

	if len(units) != 4 {
		t.Errorf("len(units) = %d, want 4 visible layers", len(units))
	}
	if len(units)+len(skipped) != psd.CountLayers(root) {
		t.Errorf("units+skipped = %d, want %d layers", len(units)+len(skipped), psd.CountLayers(root))
	}
}

func TestBuildNodeTree_AttachFiles(t *testing.T) {
	root := sampleTree()
	units, _ := Collect(root, Policy{})

	files := map[*psd.Layer]string{units[1].Layer: "UI_Button.png"}
	tree := BuildNodeTree(root)
	AttachFiles(tree, files)

	if len(tree) != 3 {
		t.Fatalf("BuildNodeTree() returned %d roots, want 3", len(tree))
	}
	ui := tree[1]
	if ui.Kind != psd.KindGroup || len(ui.Children) != 4 {
		t.Fatalf("UI node = %+v", ui)
	}
	button := ui.Children[0]
	if button.ExportedFile != "UI_Button.png" {
		t.Errorf("Button.ExportedFile = %q, want UI_Button.png", button.ExportedFile)
	}
	if button.Width != 10 || button.Height != 10 {
		t.Errorf("Button size = %dx%d, want 10x10", button.Width, button.Height)
	}
	if ui.Children[1].ExportedFile != "" {
		t.Errorf("hidden Label should have no file, got %q", ui.Children[1].ExportedFile)
	}
}
