// Package signal generates the noise signals used by the audio tools: white
// noise, Kellett pink noise and the hearing-test calibration rumble, plus
// the exponential sweep frequency law.
package signal
