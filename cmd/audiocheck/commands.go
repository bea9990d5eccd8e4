package main

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/audio/synth"
	"github.com/cwbudde/algo-audiocheck/dsp/core"
	"github.com/cwbudde/algo-audiocheck/internal/audioio"
	"github.com/cwbudde/algo-audiocheck/internal/cli"
	"github.com/cwbudde/algo-audiocheck/internal/server"
	"github.com/cwbudde/algo-audiocheck/internal/telemetry"
	"github.com/cwbudde/algo-audiocheck/internal/tools"
	"github.com/cwbudde/algo-audiocheck/internal/tui"
	"github.com/cwbudde/algo-audiocheck/measure/audiometry"
	"github.com/cwbudde/algo-audiocheck/viz"
)

// ToneCmd plays a sine tone.
type ToneCmd struct {
	output
	Frequency float64 `arg:"" optional:"" default:"1000" help:"Frequency in Hz."`
	Gain      float64 `default:"0.5" help:"Linear gain."`
	Duration  float64 `short:"d" default:"3" help:"Length in seconds."`
	Pan       float64 `default:"0" help:"Stereo position from -1 (left) to 1 (right)."`
	Side      string  `enum:"both,left,right" default:"both" help:"Channel routing (both, left, right)."`
}

func (c *ToneCmd) Run(a *app) error {
	spec := synth.ToneSpec{Frequency: c.Frequency, Gain: c.Gain, Duration: c.Duration, Pan: c.Pan}
	switch c.Side {
	case "left":
		spec.Route = synth.RouteLeft
	case "right":
		spec.Route = synth.RouteRight
	}

	sess := a.session()
	tone, err := synth.PlayTone(sess, spec)
	if err != nil {
		_ = sess.Close()
		return err
	}
	return a.deliver(c.output, sess, tone, c.Duration+synth.StopTail)
}

// NoiseCmd plays looping noise.
type NoiseCmd struct {
	output
	Color    string  `arg:"" optional:"" enum:"white,pink,calibration" default:"white" help:"Noise color (white, pink, calibration)."`
	Duration float64 `short:"d" default:"3" help:"Length in seconds."`
}

func (c *NoiseCmd) Run(a *app) error {
	color, err := synth.ParseColor(c.Color)
	if err != nil {
		return err
	}
	sess := a.session()
	noise, err := synth.PlayNoise(sess, color)
	if err != nil {
		_ = sess.Close()
		return err
	}
	return a.deliver(c.output, sess, noise, c.Duration)
}

// SweepCmd plays an exponential sweep.
type SweepCmd struct {
	output
	From    float64 `default:"20" help:"Start frequency in Hz."`
	To      float64 `default:"20000" help:"End frequency in Hz."`
	Seconds float64 `short:"d" default:"10" help:"Sweep length in seconds."`
	Gain    float64 `default:"0.3" help:"Linear gain."`
}

func (c *SweepCmd) Run(a *app) error {
	sess := a.session()
	sweep, err := synth.StartSweep(sess,
		synth.WithSweepRange(c.From, c.To),
		synth.WithSweepDuration(c.Seconds),
		synth.WithSweepGain(c.Gain),
	)
	if err != nil {
		_ = sess.Close()
		return err
	}
	return a.deliver(c.output, sess, sweep, c.Seconds)
}

// StereoCmd plays the channel identification tone.
type StereoCmd struct {
	output
	Side string `arg:"" enum:"left,right" help:"Channel to play (left, right)."`
}

func (c *StereoCmd) Run(a *app) error {
	side := synth.Left
	if c.Side == "right" {
		side = synth.Right
	}
	sess := a.session()
	tone, err := synth.ChannelCheck(sess, side)
	if err != nil {
		_ = sess.Close()
		return err
	}
	return a.deliver(c.output, sess, tone, synth.ChannelCheckLength+synth.StopTail)
}

// PolarityCmd plays the phase check.
type PolarityCmd struct {
	output
	Inverted bool    `help:"Invert the right channel."`
	Duration float64 `short:"d" default:"5" help:"Length in seconds."`
}

func (c *PolarityCmd) Run(a *app) error {
	sess := a.session()
	tone, err := synth.Polarity(sess, c.Inverted)
	if err != nil {
		_ = sess.Close()
		return err
	}
	return a.deliver(c.output, sess, tone, c.Duration)
}

// MeterCmd runs the sound meter over a recording.
type MeterCmd struct {
	File       string `arg:"" type:"existingfile" help:"WAV recording to measure."`
	PNG        string `type:"path" help:"Write the final spectrum chart."`
	HistoryPNG string `name:"history-png" type:"path" help:"Write the loudness history chart."`
	Bars       int    `default:"64" help:"Spectrum bars."`
	Width      int    `default:"800" help:"Chart width in pixels."`
	Height     int    `default:"300" help:"Chart height in pixels."`
}

// meterBlock is the number of samples fed per render call.
const meterBlock = 4096

func (c *MeterCmd) Run(a *app) error {
	samples, sr, err := audioio.ReadWAV(c.File)
	if err != nil {
		return err
	}
	a.log.Debug("decoded recording", "path", c.File, "samples", len(samples), "sample_rate", sr)

	m := tools.NewSoundMeter([]session.Option{session.WithSampleRate(float64(sr))})
	defer m.Close()
	if err := m.Start(func() error { return nil }); err != nil {
		return err
	}
	for start := 0; start < len(samples); start += meterBlock {
		if err := a.ctx.Err(); err != nil {
			return err
		}
		if err := m.Process(samples[start:min(start+meterBlock, len(samples))]); err != nil {
			return err
		}
	}

	frame := m.Frame(c.Bars)
	rep, err := m.Stop()
	if err != nil {
		return err
	}
	peak := 0.0
	for _, v := range samples {
		peak = max(peak, math.Abs(v))
	}
	fmt.Print(cli.MeterReport(filepath.Base(c.File), float64(len(samples))/float64(sr), core.LinearToDB(peak), rep))

	if c.PNG == "" && c.HistoryPNG == "" {
		return nil
	}
	r, err := viz.NewRenderer(c.Width, c.Height, viz.WithBars(c.Bars))
	if err != nil {
		return err
	}
	if c.PNG != "" {
		img := r.NewImage()
		r.DrawSpectrum(img, frame)
		if err := writePNG(c.PNG, img); err != nil {
			return err
		}
		a.log.Info("wrote spectrum", "path", c.PNG)
	}
	if c.HistoryPNG != "" {
		img := r.NewImage()
		r.DrawHistory(img, m.History())
		if err := writePNG(c.HistoryPNG, img); err != nil {
			return err
		}
		a.log.Info("wrote history", "path", c.HistoryPNG)
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// HearingCmd runs the hearing test in the terminal.
type HearingCmd struct {
	AdvanceDelay time.Duration `default:"500ms" help:"Pause before the next frequency."`
}

func (c *HearingCmd) Run(a *app) error {
	h := tools.NewHearing(telemetry.Slog{Logger: a.log},
		[]session.Option{session.WithSampleRate(float64(a.sampleRate))},
		audiometry.WithAdvanceDelay(c.AdvanceDelay),
	)
	defer h.Close()

	player, err := audioio.NewPlayer(a.sampleRate, h)
	if err != nil {
		return err
	}
	defer player.Close()
	player.Start()

	p := tea.NewProgram(tui.NewModel(h), tea.WithAltScreen(), tea.WithContext(a.ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	if score, ok := h.Score(); ok {
		fmt.Print(cli.HearingScore(h.Protocol().Result(), score))
	}
	return player.Err()
}

// ServeCmd serves the live sound meter.
type ServeCmd struct {
	Addr string        `default:":8080" help:"Listen address."`
	Rate time.Duration `default:"100ms" help:"Level update interval."`
}

func (c *ServeCmd) Run(a *app) error {
	s := server.New(server.WithAddr(c.Addr), server.WithInterval(c.Rate))
	return s.Run(a.ctx)
}
