// Package irload fetches impulse responses for convolution effects.
//
// FileLoader decodes WAV files from an fs.FS concurrently; MapLoader serves
// pre-decoded buffers from memory. Both satisfy the fx.Loader contract: Load
// returns at once and reports the whole batch, keyed by resource name, to a
// callback that runs on its own goroutine.
package irload
