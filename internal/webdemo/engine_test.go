package webdemo

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/internal/testutil"
	"github.com/cwbudde/algo-audiocheck/measure/spl"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(48000, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func peak(buf []float32) float64 {
	p := 0.0
	for _, v := range buf {
		p = math.Max(p, math.Abs(float64(v)))
	}
	return p
}

func TestNewEngineRejectsRate(t *testing.T) {
	if _, err := NewEngine(0, nil); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestRenderMixesSpeaker(t *testing.T) {
	e := newEngine(t)
	buf := make([]float32, 2*4800)

	if err := e.Render(buf); err != nil {
		t.Fatal(err)
	}
	if p := peak(buf); p != 0 {
		t.Fatalf("idle engine peak = %v, want silence", p)
	}

	if on, err := e.ToggleNoise("white"); err != nil || !on {
		t.Fatalf("ToggleNoise = %v, %v", on, err)
	}
	if err := e.Render(buf); err != nil {
		t.Fatal(err)
	}
	if p := peak(buf); p == 0 || p > 1 {
		t.Errorf("noise peak = %v, want within (0, 1]", p)
	}
	if got := e.SpeakerState().Action; got != "white-noise" {
		t.Errorf("action = %q", got)
	}

	if on, _ := e.ToggleNoise("white"); on {
		t.Error("second toggle should stop the noise")
	}
	if _, err := e.ToggleNoise("brown"); err == nil {
		t.Error("expected error for unknown color")
	}
	if _, err := e.Stereo("up"); err == nil {
		t.Error("expected error for unknown side")
	}
}

func TestMeterThroughRender(t *testing.T) {
	e := newEngine(t)

	if err := e.StartMeter(false); !errors.Is(err, session.ErrPermissionDenied) {
		t.Fatalf("denied start err = %v", err)
	}
	if err := e.StartMeter(true); err != nil {
		t.Fatal(err)
	}

	const block = 4800
	mic := testutil.DeterministicSine(1000, 48000, 0.5, 10*block)
	out := make([]float32, 2*block)
	for i := 0; i < len(mic); i += block {
		if err := e.PushMic(mic[i : i+block]); err != nil {
			t.Fatal(err)
		}
		if err := e.Render(out); err != nil {
			t.Fatal(err)
		}
	}
	if p := peak(out); p != 0 {
		t.Errorf("microphone leaked to the output, peak %v", p)
	}

	st := e.MeterState()
	if !st.Running || st.Samples == 0 || st.DB <= 0 {
		t.Fatalf("meter state = %+v", st)
	}
	rep, err := e.StopMeter()
	if err != nil {
		t.Fatal(err)
	}
	if rep.Samples == 0 || rep.Verdict == "" {
		t.Errorf("report = %+v", rep)
	}
	if _, err := e.StopMeter(); !errors.Is(err, spl.ErrNotRunning) {
		t.Errorf("second stop err = %v", err)
	}
}

func TestHearingStateJSON(t *testing.T) {
	e := newEngine(t)
	if err := e.SubmitProfile("30-39", "female", ""); err != nil {
		t.Fatal(err)
	}
	e.Hearing.ConfirmCalibration()
	e.Hearing.SetLevel(50)

	st := e.HearingState()
	if st.State != "awaiting-confirm" || st.Ear != "left" || st.Frequency != 1000 || st.Level != 50 {
		t.Fatalf("state = %+v", st)
	}
	if len(st.Left) != 6 || st.Score != nil {
		t.Fatalf("left = %v score = %v", st.Left, st.Score)
	}

	b, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["score"]; ok {
		t.Error("score should be omitted before completion")
	}
	if m["frequency"] != float64(1000) {
		t.Errorf("frequency = %v", m["frequency"])
	}
}
