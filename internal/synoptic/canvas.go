package synoptic

import "sort"

// Canvas holds the shapes of one synoptic drawing and indexes them by
// the device attribute they reflect.
//
// A Canvas is built once at load time and read-only afterwards, so it
// needs no locking.
type Canvas struct {
	shapes  []Shape
	byModel map[string][]Shape
}

// NewCanvas assembles a canvas. Shapes are ordered by z, ties keep
// insertion order. Group children are indexed under the group's model
// when they carry none of their own.
func NewCanvas(shapes []Shape) *Canvas {
	ordered := make([]Shape, len(shapes))
	copy(ordered, shapes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ZOrder() < ordered[j].ZOrder()
	})

	c := &Canvas{
		shapes:  ordered,
		byModel: make(map[string][]Shape),
	}
	for _, s := range ordered {
		c.index(s, "")
	}
	return c
}

func (c *Canvas) index(s Shape, inherited string) {
	model := s.Model()
	if model == "" {
		model = inherited
	}
	if model != "" {
		c.byModel[model] = append(c.byModel[model], s)
	}
	if g, ok := s.(Group); ok {
		for _, child := range g.Children {
			c.index(child, model)
		}
	}
}

// Shapes returns all top-level shapes in draw order.
func (c *Canvas) Shapes() []Shape {
	out := make([]Shape, len(c.shapes))
	copy(out, c.shapes)
	return out
}

// ShapesFor returns the shapes bound to a device attribute model.
func (c *Canvas) ShapesFor(model string) []Shape {
	shapes := c.byModel[model]
	out := make([]Shape, len(shapes))
	copy(out, shapes)
	return out
}

// Models returns every bound model, sorted.
func (c *Canvas) Models() []string {
	models := make([]string, 0, len(c.byModel))
	for model := range c.byModel {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}
