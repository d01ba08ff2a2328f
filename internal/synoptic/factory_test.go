package synoptic

import (
	"errors"
	"testing"
)

func TestBuildRectangle(t *testing.T) {
	shape, err := Build("Rectangle", Params{
		"name":       "tank-outline",
		"zvalue":     3,
		"summit":     []float64{0, 0, 100, 50},
		"foreground": "#000000",
		"background": "#c0c0c0",
		"linewidth":  2.0,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	rect, ok := shape.(Rectangle)
	if !ok {
		t.Fatalf("Build() returned %T, want Rectangle", shape)
	}
	if rect.Name() != "tank-outline" || rect.ZOrder() != 3 {
		t.Errorf("base = (%q, %d)", rect.Name(), rect.ZOrder())
	}
	if rect.TopLeft != (Point{0, 0}) || rect.BottomRight != (Point{100, 50}) {
		t.Errorf("geometry = %v %v", rect.TopLeft, rect.BottomRight)
	}
	if rect.Style == nil {
		t.Fatal("styled rectangle has nil Style")
	}
	if rect.Style.LineColor != "#000000" || rect.Style.FillColor != "#c0c0c0" || rect.Style.LineWidth != 2.0 {
		t.Errorf("style = %+v", *rect.Style)
	}
}

func TestBuildWithoutStyleKeys(t *testing.T) {
	shape, err := Build("line", Params{"summit": []float64{0, 0, 10, 10}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	line := shape.(Line)
	if line.Style != nil {
		t.Errorf("unstyled line has Style %+v", *line.Style)
	}
	if !line.Visible() {
		t.Error("visibility does not default to true")
	}
}

func TestBuildRoundRectangle(t *testing.T) {
	shape, err := Build("RoundRectangle", Params{
		"summit": []float64{0, 0, 40, 20},
		"radius": 5.0,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	rr := shape.(RoundRectangle)
	if rr.CornerRadius != 5.0 {
		t.Errorf("CornerRadius = %v, want 5", rr.CornerRadius)
	}
}

func TestBuildPolyline(t *testing.T) {
	shape, err := Build("polyline", Params{
		"summit": []float64{0, 0, 10, 0, 10, 10},
		"closed": true,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	poly := shape.(Polyline)
	if len(poly.Points) != 3 || !poly.Closed {
		t.Errorf("polyline = %+v", poly)
	}
}

func TestBuildLabelAndImage(t *testing.T) {
	shape, err := Build("Label", Params{
		"summit": []float64{5, 5},
		"text":   "Beam shutter",
		"model":  "shutter/sh01/state",
	})
	if err != nil {
		t.Fatalf("Build(Label) error = %v", err)
	}
	label := shape.(Label)
	if label.Text != "Beam shutter" || label.Model() != "shutter/sh01/state" {
		t.Errorf("label = %+v", label)
	}

	shape, err = Build("image", Params{
		"summit": []float64{0, 0},
		"file":   "pump.png",
		"width":  32.0,
		"height": 32.0,
		// Style keys on an image are ignored, not an error.
		"foreground": "#ff0000",
	})
	if err != nil {
		t.Fatalf("Build(image) error = %v", err)
	}
	img := shape.(Image)
	if img.Source != "pump.png" || img.Width != 32 {
		t.Errorf("image = %+v", img)
	}
}

func TestBuildSummitValidation(t *testing.T) {
	tests := []struct {
		name   string
		kind   string
		params Params
	}{
		{"missing summit", "rectangle", Params{}},
		{"odd count", "rectangle", Params{"summit": []float64{0, 0, 1}}},
		{"wrong count", "line", Params{"summit": []float64{0, 0, 1, 1, 2, 2}}},
		{"short polyline", "polyline", Params{"summit": []float64{0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.kind, tt.params); !errors.Is(err, ErrBadGeometry) {
				t.Errorf("Build() error = %v, want ErrBadGeometry", err)
			}
		})
	}
}

func TestBuildUnknownKind(t *testing.T) {
	if _, err := Build("hexagram", Params{}); !errors.Is(err, ErrUnknownShape) {
		t.Errorf("Build() error = %v, want ErrUnknownShape", err)
	}
}

func TestCanvasOrderAndModelIndex(t *testing.T) {
	top, err := Build("rectangle", Params{
		"name": "top", "zvalue": 10, "summit": []float64{0, 0, 1, 1},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	bottom, err := Build("rectangle", Params{
		"name": "bottom", "zvalue": 1, "summit": []float64{0, 0, 1, 1},
		"model": "motor/mot01/state",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	canvas := NewCanvas([]Shape{top, bottom})

	shapes := canvas.Shapes()
	if shapes[0].Name() != "bottom" || shapes[1].Name() != "top" {
		t.Errorf("draw order = [%s %s], want [bottom top]", shapes[0].Name(), shapes[1].Name())
	}

	bound := canvas.ShapesFor("motor/mot01/state")
	if len(bound) != 1 || bound[0].Name() != "bottom" {
		t.Errorf("ShapesFor() = %v", bound)
	}
	if len(canvas.ShapesFor("motor/ghost/state")) != 0 {
		t.Error("unbound model returned shapes")
	}
}

func TestCanvasGroupInheritsModel(t *testing.T) {
	child, err := Build("ellipse", Params{
		"name": "indicator", "summit": []float64{0, 0, 4, 4},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	group := BuildGroup(Params{
		"name":  "valve",
		"model": "valve/v01/state",
	}, []Shape{child})

	canvas := NewCanvas([]Shape{group})

	bound := canvas.ShapesFor("valve/v01/state")
	if len(bound) != 2 {
		t.Fatalf("ShapesFor() returned %d shapes, want group and child", len(bound))
	}

	models := canvas.Models()
	if len(models) != 1 || models[0] != "valve/v01/state" {
		t.Errorf("Models() = %v", models)
	}
}
