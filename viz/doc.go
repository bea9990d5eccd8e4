// Package viz draws the sound meter's live spectrum and its 30-second
// loudness history into RGBA images.
//
// The spectrum shows 64 linearly spaced bars from 0 Hz to Nyquist with a
// green to amber to red gradient. The history plots the last
// [HistoryPoints] loudness readings on a fixed 0..120 dB scale with the
// 70 dB warning and 85 dB danger lines.
//
// Rasterisation uses golang.org/x/image/vector; labels use the 7x13 bitmap
// face of golang.org/x/image/font/basicfont, so label overrides should stay
// within Latin-1.
package viz
