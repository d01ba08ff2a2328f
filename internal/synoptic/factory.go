package synoptic

import (
	"errors"
	"fmt"
	"strings"
)

// Factory errors.
var (
	// ErrUnknownShape is returned for a shape kind with no builder.
	ErrUnknownShape = errors.New("synoptic: unknown shape kind")

	// ErrBadGeometry is returned when the summit list does not match
	// the shape kind.
	ErrBadGeometry = errors.New("synoptic: bad geometry")
)

// Params is the raw parameter map of one shape as parsed from a drawing
// file. Recognised keys:
//
//	name       string        shape name
//	zvalue     int/float64   stacking order
//	visible    bool          initial visibility (default true)
//	model      string        bound device attribute
//	summit     []float64     flat coordinate list, x0 y0 x1 y1 ...
//	text       string        label text
//	radius     float64       round rectangle corner radius
//	closed     bool          polyline closure
//	file       string        image source
//	width      float64       image width
//	height     float64       image height
//	foreground string        stroke colour
//	background string        fill colour
//	linewidth  float64       stroke width
type Params map[string]any

// Build constructs a shape from its kind and parameters. Kind matching
// is case-insensitive.
func Build(kind string, p Params) (Shape, error) {
	switch strings.ToLower(kind) {
	case "rectangle":
		return buildRectangle(p)
	case "roundrectangle":
		return buildRoundRectangle(p)
	case "line":
		return buildLine(p)
	case "ellipse":
		return buildEllipse(p)
	case "polyline":
		return buildPolyline(p)
	case "label":
		return buildLabel(p)
	case "image":
		return buildImage(p)
	case "group":
		return nil, fmt.Errorf("%w: groups are built with BuildGroup", ErrUnknownShape)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownShape, kind)
	}
}

// BuildGroup constructs a group from its parameters and already-built
// children.
func BuildGroup(p Params, children []Shape) Group {
	return Group{base: baseFrom(p), Children: children}
}

func baseFrom(p Params) base {
	b := base{visible: true}
	if v, ok := p["name"].(string); ok {
		b.name = v
	}
	switch v := p["zvalue"].(type) {
	case int:
		b.z = v
	case float64:
		b.z = int(v)
	}
	if v, ok := p["visible"].(bool); ok {
		b.visible = v
	}
	if v, ok := p["model"].(string); ok {
		b.model = v
	}
	return b
}

// styleFrom extracts a Style, or nil when no style keys are present.
func styleFrom(p Params) *Style {
	st := Style{LineWidth: 1}
	found := false

	if v, ok := p["foreground"].(string); ok {
		st.LineColor = v
		found = true
	}
	if v, ok := p["background"].(string); ok {
		st.FillColor = v
		found = true
	}
	if v, ok := toFloat(p["linewidth"]); ok {
		st.LineWidth = v
		found = true
	}

	if !found {
		return nil
	}
	return &st
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// summits extracts the flat coordinate list as points, requiring an
// exact count when want is positive.
func summits(p Params, want int) ([]Point, error) {
	raw, ok := p["summit"].([]float64)
	if !ok {
		if anySlice, isAny := p["summit"].([]any); isAny {
			raw = make([]float64, 0, len(anySlice))
			for _, v := range anySlice {
				f, fok := toFloat(v)
				if !fok {
					return nil, fmt.Errorf("%w: non-numeric summit", ErrBadGeometry)
				}
				raw = append(raw, f)
			}
		} else {
			return nil, fmt.Errorf("%w: missing summit list", ErrBadGeometry)
		}
	}

	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: odd summit count %d", ErrBadGeometry, len(raw))
	}
	points := make([]Point, 0, len(raw)/2)
	for i := 0; i < len(raw); i += 2 {
		points = append(points, Point{X: raw[i], Y: raw[i+1]})
	}

	if want > 0 && len(points) != want {
		return nil, fmt.Errorf("%w: got %d points, want %d", ErrBadGeometry, len(points), want)
	}
	return points, nil
}

func buildRectangle(p Params) (Shape, error) {
	pts, err := summits(p, 2)
	if err != nil {
		return nil, err
	}
	return Rectangle{base: baseFrom(p), TopLeft: pts[0], BottomRight: pts[1], Style: styleFrom(p)}, nil
}

func buildRoundRectangle(p Params) (Shape, error) {
	pts, err := summits(p, 2)
	if err != nil {
		return nil, err
	}
	radius, _ := toFloat(p["radius"])
	return RoundRectangle{
		base: baseFrom(p), TopLeft: pts[0], BottomRight: pts[1],
		CornerRadius: radius, Style: styleFrom(p),
	}, nil
}

func buildLine(p Params) (Shape, error) {
	pts, err := summits(p, 2)
	if err != nil {
		return nil, err
	}
	return Line{base: baseFrom(p), From: pts[0], To: pts[1], Style: styleFrom(p)}, nil
}

func buildEllipse(p Params) (Shape, error) {
	pts, err := summits(p, 2)
	if err != nil {
		return nil, err
	}
	return Ellipse{base: baseFrom(p), TopLeft: pts[0], BottomRight: pts[1], Style: styleFrom(p)}, nil
}

func buildPolyline(p Params) (Shape, error) {
	pts, err := summits(p, 0)
	if err != nil {
		return nil, err
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: polyline needs at least 2 points", ErrBadGeometry)
	}
	closed, _ := p["closed"].(bool)
	return Polyline{base: baseFrom(p), Points: pts, Closed: closed, Style: styleFrom(p)}, nil
}

func buildLabel(p Params) (Shape, error) {
	pts, err := summits(p, 1)
	if err != nil {
		return nil, err
	}
	text, _ := p["text"].(string)
	return Label{base: baseFrom(p), Position: pts[0], Text: text, Style: styleFrom(p)}, nil
}

func buildImage(p Params) (Shape, error) {
	pts, err := summits(p, 1)
	if err != nil {
		return nil, err
	}
	source, _ := p["file"].(string)
	width, _ := toFloat(p["width"])
	height, _ := toFloat(p["height"])
	return Image{base: baseFrom(p), Position: pts[0], Width: width, Height: height, Source: source}, nil
}
