// Package geometry models where the magnifier looks and where its window sits.
//
// Every tick the caller takes one CursorFrame snapshot: the cursor position, the
// work area of the monitor nearest the cursor, and the application window re-centred
// on the cursor. Nothing here talks to the platform directly; cursor, monitor and
// window information arrive through the small query interfaces declared in this
// package.
//
// # Coordinate System
//
// Desktop coordinates are signed 32-bit integers. The top-left corner of the
// primary monitor is (0,0); monitors placed left of or above the primary monitor
// have negative coordinates. Rectangles use the image convention: Left/Top are
// inclusive and Right/Bottom are exclusive.
//
// # Clamping
//
// The window frame is never clamped and may hang off a monitor edge. Only the
// capture rectangle derived from it is clamped, edge by edge, against the work
// area. A rectangle near an edge is therefore truncated, not shifted, and its aspect
// ratio changes.
//
// # Monitor Floor
//
// Work areas smaller than 1024x768 (including the all-zero rectangle a failed
// platform query produces) are widened to that floor so the capture rectangle
// never degenerates.
package geometry
