// Package viz renders the gas in the terminal.
//
// [Model] is a Bubble Tea program that steps a box in real time and draws it
// on a Braille [Canvas], next to an energy graph and the windowed pressure.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the initial population
//	+/-   - Double/halve steps per frame
//	G     - Toggle GIF recording
//	Q     - Quit
//
// # Recording
//
// Recordings are written to hardgas.gif in the current directory when
// recording is toggled off.
package viz
