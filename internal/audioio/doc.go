// Package audioio connects rendered audio to the outside world: the sound
// card through oto and WAV files through go-audio.
package audioio
