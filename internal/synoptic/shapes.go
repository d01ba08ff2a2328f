package synoptic

// Point is a 2D coordinate in drawing units.
type Point struct {
	X float64
	Y float64
}

// Style carries the visual properties of a drawable shape. Shapes that
// cannot be stroked or filled (images, groups) carry no Style at all;
// the type system replaces runtime capability probing.
type Style struct {
	// LineColor is the stroke colour as #rrggbb.
	LineColor string

	// LineWidth is the stroke width in drawing units.
	LineWidth float64

	// FillColor is the fill colour as #rrggbb. Empty means unfilled.
	FillColor string
}

// Shape is one element of a synoptic drawing.
type Shape interface {
	// Name returns the shape name from the drawing file.
	Name() string

	// ZOrder returns the stacking order; higher draws on top.
	ZOrder() int

	// Model returns the device attribute this shape reflects
	// ("motor/mot01/state"), or empty for static decoration.
	Model() string

	// Visible reports whether the shape is initially shown.
	Visible() bool
}

// base holds the properties every shape shares.
type base struct {
	name    string
	z       int
	model   string
	visible bool
}

func (b base) Name() string  { return b.name }
func (b base) ZOrder() int   { return b.z }
func (b base) Model() string { return b.model }
func (b base) Visible() bool { return b.visible }

// Rectangle is an axis-aligned rectangle.
type Rectangle struct {
	base
	TopLeft     Point
	BottomRight Point
	Style       *Style
}

// RoundRectangle is a rectangle with rounded corners.
type RoundRectangle struct {
	base
	TopLeft      Point
	BottomRight  Point
	CornerRadius float64
	Style        *Style
}

// Line is a straight segment.
type Line struct {
	base
	From  Point
	To    Point
	Style *Style
}

// Ellipse fills the bounding box spanned by two corners.
type Ellipse struct {
	base
	TopLeft     Point
	BottomRight Point
	Style       *Style
}

// Polyline is an open or closed multi-segment path.
type Polyline struct {
	base
	Points []Point
	Closed bool
	Style  *Style
}

// Label is a positioned text element.
type Label struct {
	base
	Position Point
	Text     string
	Style    *Style
}

// Image is a positioned raster reference. It has no Style; pen and
// brush parameters in the source file are ignored for images.
type Image struct {
	base
	Position Point
	Width    float64
	Height   float64
	Source   string
}

// Group is a named collection of shapes sharing one model binding.
// It has no Style of its own; children keep theirs.
type Group struct {
	base
	Children []Shape
}
