package main

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/audio/synth"
	"github.com/cwbudde/algo-audiocheck/internal/audioio"
)

// tail lets the output buffer drain after a voice ends.
const tail = 150 * time.Millisecond

// output selects between the sound card and a WAV file.
type output struct {
	Out string `short:"o" type:"path" help:"Write a WAV file instead of playing."`
}

func (a *app) session() *session.Session {
	return session.New(session.WithSampleRate(float64(a.sampleRate)))
}

// deliver plays sess until voice ends, seconds elapse or the user
// interrupts; with --out it renders seconds of audio to the file instead.
func (a *app) deliver(o output, sess *session.Session, voice synth.Voice, seconds float64) error {
	defer func() {
		if err := sess.Close(); err != nil {
			a.log.Debug("closing session", "error", err)
		}
	}()

	if o.Out != "" {
		if err := audioio.WriteWAV(o.Out, sess, a.sampleRate, seconds); err != nil {
			return fmt.Errorf("write %s: %w", o.Out, err)
		}
		a.log.Info("wrote wav", "path", o.Out, "seconds", seconds, "sample_rate", a.sampleRate)
		return nil
	}

	player, err := audioio.NewPlayer(a.sampleRate, sess)
	if err != nil {
		return err
	}
	defer player.Close()
	player.Start()
	a.log.Debug("playing", "seconds", seconds)

	var limit <-chan time.Time
	if seconds > 0 {
		timer := time.NewTimer(time.Duration(seconds * float64(time.Second)))
		defer timer.Stop()
		limit = timer.C
	}
	select {
	case <-voice.Done():
	case <-limit:
	case <-a.ctx.Done():
	}
	voice.Stop()
	time.Sleep(tail)
	return player.Err()
}
