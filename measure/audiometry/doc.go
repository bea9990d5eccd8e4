// Package audiometry runs a self-administered pure-tone hearing test and
// scores its result.
//
// A [Protocol] walks both ears through [Frequencies]. For each frequency it
// pulses a short tone (0.4 s on, 0.4 s off) at an operator-controlled level
// until the operator confirms the quietest level they can hear. Levels run
// from 0 to 100 in steps of 5; level 80 plays at full scale and level 0 is
// silence. The confirmed level minus 10 is recorded in dB HL.
//
// [ScoreResult] derives the pure-tone average and hearing-loss class of each
// ear and a heuristic "hearing age" from the high-frequency thresholds. The
// score is an indication, not a clinical diagnosis.
package audiometry
