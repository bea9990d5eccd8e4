package spl

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/internal/notify"
	"github.com/cwbudde/algo-audiocheck/internal/testutil"
	"github.com/cwbudde/algo-audiocheck/stats/rolling"
)

func allow() error { return nil }

func renderFrames(t *testing.T, sess *session.Session, frames int) {
	t.Helper()
	buf := make([]float32, 2*1024)
	for frames > 0 {
		n := min(frames, 1024)
		if _, err := sess.Render(buf[:2*n]); err != nil {
			t.Fatalf("Render: %v", err)
		}
		frames -= n
	}
}

func TestMeterMeasuresInput(t *testing.T) {
	sess := session.New(session.WithSampleRate(48000))
	bus := notify.NewBus[notify.Loudness]()
	updates, cancel := bus.Subscribe(64)
	defer cancel()

	m := NewMeter(sess, bus)
	mic, err := m.Start(allow)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !m.Running() {
		t.Fatal("meter not running after Start")
	}
	if _, err := m.Start(allow); !errors.Is(err, ErrRunning) {
		t.Fatalf("second Start error = %v, want ErrRunning", err)
	}

	mic.Push(testutil.DeterministicSine(1000, 48000, 0.5, 48000))
	renderFrames(t, sess, 48000)

	r := m.Reading()
	if r.Samples < 20 {
		t.Fatalf("got %d readings, want at least 20", r.Samples)
	}
	if r.DB <= MinDb {
		t.Fatalf("loud tone read as %v dB", r.DB)
	}
	if r.Min > r.Max {
		t.Fatalf("min %v > max %v", r.Min, r.Max)
	}

	select {
	case u := <-updates:
		if u.DB < MinDb || u.DB > MaxDb {
			t.Fatalf("published %v dB out of range", u.DB)
		}
	default:
		t.Fatal("no reading published")
	}

	bins := m.Spectrum(nil)
	if len(bins) != 1024 {
		t.Fatalf("Spectrum() has %d bins, want 1024", len(bins))
	}
	// 1 kHz falls into bin 42 or 43 at 48 kHz / 2048.
	if bins[42] == 0 && bins[43] == 0 {
		t.Fatal("tone bin empty")
	}

	rep, err := m.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if len(m.Spectrum(bins)) != 0 {
		t.Fatal("Spectrum() after Stop not empty")
	}
	if !rep.Trimmed || rep.Samples != r.Samples {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Verdict != ClassifyReport(rep.Avg) {
		t.Fatalf("verdict %v does not match avg %v", rep.Verdict, rep.Avg)
	}
	if sess.Graph() != nil {
		t.Fatal("session graph not released after Stop")
	}
	if _, err := m.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("second Stop error = %v, want ErrNotRunning", err)
	}
}

func TestMeterSilenceReadsFloor(t *testing.T) {
	sess := session.New()
	m := NewMeter(sess, nil)
	if _, err := m.Start(allow); err != nil {
		t.Fatalf("Start: %v", err)
	}
	renderFrames(t, sess, 8*2048)
	r := m.Reading()
	if r.Samples == 0 || r.DB != MinDb {
		t.Fatalf("silent reading = %+v", r)
	}
	if _, err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestMeterPermissionDenied(t *testing.T) {
	sess := session.New()
	m := NewMeter(sess, nil)
	_, err := m.Start(func() error { return errors.New("blocked") })
	if !errors.Is(err, session.ErrPermissionDenied) {
		t.Fatalf("Start error = %v, want ErrPermissionDenied", err)
	}
	if m.Running() || sess.Graph() != nil {
		t.Fatal("denied start left state behind")
	}
}

func TestReportFor(t *testing.T) {
	w := rolling.New()
	for _, v := range []float64{60, 62, 64} {
		w.Push(v)
	}
	rep := ReportFor(w.Finalize())
	if rep.Final != 64 || rep.Trimmed {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Verdict != VerdictSafe || rep.Exposure.MessageKey != "warningSafe" {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Status.StatusKey != "statusModerate" {
		t.Fatalf("status = %+v", rep.Status)
	}
}
