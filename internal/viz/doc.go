// Package viz hosts an airway surface in the terminal.
//
// The package implements the host side of the airway using the Bubble Tea
// framework:
//
//   - [Model]: interactive program that renders a [surface.Pane]
//   - lanes: every airplane owns a 32px lane, two terminal rows high
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	Space - Stop/restart the airway
//	+/-   - Grow/shrink the surface by one lane (resizable only)
//	C     - Clear every airplane
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
