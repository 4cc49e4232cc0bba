// Package viz renders a running simulation in the terminal.
//
//   - [Model]: Bubble Tea program drawing a rotating braille projection of
//     the box, advancing the simulation a few steps per frame
//   - [Canvas]: braille pixel canvas with one color per cell
//   - [Progress]: lipgloss progress bar for the integration cycles
//
// # Key Bindings
//
//	Space - Pause/Resume
//	x/y/z - Rotate the camera (shift reverses)
//	+/-   - Zoom
//	a     - Toggle auto rotation
//	q     - Quit
package viz
