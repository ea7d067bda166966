// Package surface provides the host visual surface the grid renders into.
//
// A Document owns a tree of Elements. Elements carry attributes, classes,
// an inline Style with absolute pixel geometry, and event listeners.
// Events dispatched on an element bubble through its ancestors up to the
// owning Document, which also acts as the window-level event target.
//
// # Geometry
//
// Units are abstract pixels. When painted to a terminal backend one pixel
// maps to one character cell. Elements positioned with PositionAbsolute are
// offset from their parent's origin; all other elements share it.
//
// # Pointer events
//
// PointerEvents follows the inherited model of the web platform: PointerAuto
// takes the parent's effective value, PointerNone makes an element
// transparent to hit testing while its explicitly enabled descendants remain
// hittable.
//
// # Computed style
//
// Documents hold a class-keyed stylesheet. ComputedStyle merges the rules of
// an element's classes (in class order) with the element's inline property
// overrides, mirroring getComputedStyle for string-valued properties.
package surface
