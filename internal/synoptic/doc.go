// Package synoptic models the shape layer of synoptic drawings: the
// schematic panels that mirror live device state.
//
// Shapes are built from raw parameter maps as parsed out of drawing
// files. Stroke and fill styling is expressed in the type system: shape
// kinds that can be styled carry an optional *Style, kinds that cannot
// (images, groups) simply have no field for it, so style parameters on
// them are ignored at build time rather than probed at draw time.
//
// A Canvas orders shapes by z and indexes them by the device attribute
// they reflect, which is what the event layer uses to find the shapes to
// refresh when an attribute event arrives.
package synoptic
