// Package graph is a small pull-based audio processing graph.
//
// A [Context] owns a sample clock and a [Destination]. Source nodes
// ([Oscillator], [BufferSource], [MediaStreamSource]) feed processing nodes
// ([Gain], [StereoPanner], [ChannelMerger], [Analyser], [Tap]) which are wired
// with Connect and ConnectChannel. Each call to [Context.Render] pulls
// interleaved stereo frames from the destination in quanta of
// [RenderQuantum] frames, so every [Param] automation event lands on an exact
// sample.
//
// All methods are safe for use while another goroutine renders. Ended and
// tap callbacks run on the rendering goroutine after the graph lock has been
// released, so they may freely call back into the graph.
package graph
