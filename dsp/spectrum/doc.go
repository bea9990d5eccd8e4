// Package spectrum implements the analyser used by the sound meter and the
// visualizer: a rolling FFT over the most recent input, with smoothed
// magnitude spectra exposed as decibels or bytes, plus the helpers that fold
// those bins into display bars and a single loudness figure.
//
// The byte and float outputs match the conventions of browser analyser nodes
// so that calibration tables measured against them carry over unchanged.
package spectrum
