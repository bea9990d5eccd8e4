// Package synth plays the test signals of the audio tools on a
// [session.Session]: enveloped sine tones routed to one or both ears, the
// frequency sweep, channel and polarity checks, and looped noise.
//
// Every play call first tears down whatever the session was playing, so at
// most one voice sounds per session.
package synth
