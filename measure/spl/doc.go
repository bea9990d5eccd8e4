// Package spl turns analyser output into an approximate sound pressure
// level and classifies it for display.
//
// [EstimateDb] is an empirical piecewise-linear calibration from the mean
// byte magnitude of an analyser spectrum to a dB(A)-like figure in [25, 130].
// It is not a physical SPL conversion. [ClassifyExposure] maps a level to a
// NIOSH-style permissible exposure band, and [Meter] runs the live
// microphone pipeline that feeds both.
package spl
