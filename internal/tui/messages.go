package tui

import "time"

// RefreshInterval is how often the test screen polls the protocol.
const RefreshInterval = 100 * time.Millisecond

// tickMsg asks the model to refresh its protocol snapshot.
type tickMsg time.Time

// calibrationMsg reports the outcome of starting the calibration sound.
type calibrationMsg struct {
	err error
}
