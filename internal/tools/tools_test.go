package tools

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cwbudde/algo-audiocheck/audio/session"
	"github.com/cwbudde/algo-audiocheck/audio/synth"
	"github.com/cwbudde/algo-audiocheck/internal/sched"
	"github.com/cwbudde/algo-audiocheck/internal/testutil"
	"github.com/cwbudde/algo-audiocheck/measure/audiometry"
	"github.com/cwbudde/algo-audiocheck/measure/spl"
)

func render(t *testing.T, r interface{ Render([]float32) (int, error) }, seconds float64) []float32 {
	t.Helper()
	frames := int(seconds * 48000)
	buf := make([]float32, 2*frames)
	if _, err := r.Render(buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf
}

func TestSpeakerToggleSemantics(t *testing.T) {
	s := NewSpeaker()
	defer s.Close()

	on, err := s.ToggleTone()
	if err != nil || !on || s.Action() != ActionTone {
		t.Fatalf("ToggleTone = %v, %v; action %s", on, err, s.Action())
	}
	on, err = s.ToggleNoise(synth.Pink)
	if err != nil || !on || s.Action() != ActionPinkNoise {
		t.Fatalf("ToggleNoise = %v, %v; action %s", on, err, s.Action())
	}
	on, _ = s.ToggleNoise(synth.Pink)
	if on || s.Action() != ActionNone {
		t.Fatalf("second ToggleNoise left %s playing", s.Action())
	}

	on, _ = s.TogglePolarity(true)
	if !on || s.Action() != ActionOutOfPhase {
		t.Fatalf("action = %s", s.Action())
	}
	on, _ = s.TogglePolarity(false)
	if !on || s.Action() != ActionInPhase {
		t.Fatalf("switching polarity: action = %s", s.Action())
	}
	s.StopAll()
	buf := render(t, s, 0.05)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v after StopAll", i, v)
		}
	}
}

func TestSpeakerStereoEndsByItself(t *testing.T) {
	s := NewSpeaker()
	defer s.Close()

	if on, err := s.Stereo(synth.Right); err != nil || !on {
		t.Fatalf("Stereo = %v, %v", on, err)
	}
	buf := render(t, s, 0.5)
	var left, right float64
	for i := 0; i < len(buf); i += 2 {
		left = math.Max(left, math.Abs(float64(buf[i])))
		right = math.Max(right, math.Abs(float64(buf[i+1])))
	}
	if left != 0 || right == 0 {
		t.Fatalf("peaks left %v right %v", left, right)
	}
	render(t, s, 1.2)
	if got := s.Action(); got != ActionNone {
		t.Fatalf("action after 1.7 s = %s", got)
	}
	if on, _ := s.Stereo(synth.Right); !on {
		t.Fatal("stereo check did not restart after ending")
	}
}

func TestSpeakerFrequency(t *testing.T) {
	s := NewSpeaker()
	defer s.Close()

	if err := s.SetFrequency(0); !errors.Is(err, synth.ErrInvalidFrequency) {
		t.Fatalf("SetFrequency(0) = %v", err)
	}
	if err := s.SetFrequency(500); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ToggleTone(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetFrequency(750); err != nil {
		t.Fatal(err)
	}
	if s.Frequency() != 750 || s.tone.Frequency() != 750 {
		t.Fatalf("frequency = %v / %v", s.Frequency(), s.tone.Frequency())
	}

	if on, _ := s.PlayFrequency(8000); !on || s.Action() != ActionFrequency {
		t.Fatal("challenge tone not playing")
	}
	if on, _ := s.PlayFrequency(12000); !on {
		t.Fatal("other challenge tone did not replace the first")
	}
	if on, _ := s.PlayFrequency(12000); on || s.Action() != ActionNone {
		t.Fatal("same challenge tone did not stop")
	}
}

func TestSpeakerPlayFrequencyConcurrentToggles(t *testing.T) {
	s := NewSpeaker()
	defer s.Close()

	const calls = 10
	var (
		wg sync.WaitGroup
		on atomic.Int32
	)
	for range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			playing, err := s.PlayFrequency(8000)
			if err != nil {
				t.Error(err)
			}
			if playing {
				on.Add(1)
			}
		}()
	}
	wg.Wait()

	// every call toggles the same tone, so starts and stops alternate
	if got := on.Load(); got != calls/2 {
		t.Fatalf("%d calls started the tone, want %d", got, calls/2)
	}
	if a := s.Action(); a != ActionNone {
		t.Fatalf("action = %v, want none", a)
	}
}

func TestSpeakerSweepAndWaveform(t *testing.T) {
	s := NewSpeaker()
	defer s.Close()

	wave := make([]byte, 256)
	if s.Waveform(wave) || wave[0] != 128 {
		t.Fatal("idle waveform not flat")
	}
	if _, _, ok := s.SweepProgress(); ok {
		t.Fatal("progress without sweep")
	}
	if _, err := s.ToggleSweep(); err != nil {
		t.Fatal(err)
	}
	render(t, s, 1)
	frac, hz, ok := s.SweepProgress()
	if !ok || frac < 0.09 || frac > 0.11 || hz < 25 || hz > 45 {
		t.Fatalf("progress = %v %v %v", frac, hz, ok)
	}
	if !s.Waveform(wave) {
		t.Fatal("waveform reports idle while sweeping")
	}
}

func allow() error { return nil }

func TestSoundMeterProcess(t *testing.T) {
	m := NewSoundMeter(nil)
	defer m.Close()

	if err := m.Process(make([]float64, 128)); !errors.Is(err, ErrMeterStopped) {
		t.Fatalf("Process before Start = %v", err)
	}
	if f := m.Frame(0); !f.Placeholder {
		t.Fatal("fresh meter frame is not a placeholder")
	}

	if err := m.Start(allow); err != nil {
		t.Fatalf("Start: %v", err)
	}
	tone := testutil.DeterministicSine(1000, 48000, 0.5, 4800)
	for i := 0; i < 10; i++ {
		if err := m.Process(tone); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}

	if r := m.Reading(); r.Samples < 20 || r.DB <= spl.MinDb {
		t.Fatalf("reading = %+v", r)
	}
	f := m.Frame(0)
	if !f.Active || len(f.Bars) != 64 || f.Bars[2] == 0 {
		t.Fatalf("live frame = %+v", f.Bars)
	}

	rep, err := m.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got, ok := m.Report(); !ok || got != rep {
		t.Fatal("report not kept")
	}
	hist := m.History()
	if hist[len(hist)-1] <= 0 {
		t.Fatal("history did not follow readings")
	}
	if f := m.Frame(0); f.Placeholder || f.Active {
		t.Fatalf("stopped frame = %+v", f)
	}
	if _, err := m.Stop(); !errors.Is(err, spl.ErrNotRunning) {
		t.Fatalf("second Stop = %v", err)
	}
}

type events struct {
	mu    sync.Mutex
	names []string
}

func (e *events) Event(name string, _ map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.names = append(e.names, name)
}

func TestHearingFlow(t *testing.T) {
	rec := &events{}
	clock := sched.NewManualClock(time.Unix(0, 0))
	h := NewHearing(rec, nil, audiometry.WithClock(clock))
	defer h.Close()

	if err := h.SubmitProfile(audiometry.UserProfile{AgeGroup: "20-29"}); !errors.Is(err, ErrIncompleteProfile) {
		t.Fatalf("incomplete profile error = %v", err)
	}
	if err := h.SubmitProfile(audiometry.UserProfile{AgeGroup: "20-29", Gender: audiometry.GenderFemale}); err != nil {
		t.Fatal(err)
	}
	if h.Protocol().Profile().Device != audiometry.DefaultDevice {
		t.Fatal("default device not applied")
	}

	if err := h.PlayCalibration(); err != nil {
		t.Fatal(err)
	}
	buf := render(t, h, 0.1)
	peak := 0.0
	for _, v := range buf {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	if peak == 0 || peak > synth.CalibrationGain*3.5+1e-6 {
		t.Fatalf("calibration peak = %v", peak)
	}

	h.ConfirmCalibration()
	for range 2 * len(audiometry.Frequencies) {
		if h.Snapshot().State == audiometry.StateIntermission {
			h.Resume()
		}
		h.StepUp()
		h.StepUp()
		if !h.Confirm() {
			t.Fatalf("Confirm failed in %+v", h.Snapshot())
		}
	}
	score, ok := h.Score()
	if !ok || score.Left.PTA != 0 || score.HearingAge != 25 {
		t.Fatalf("score = %+v, %v", score, ok)
	}

	want := []string{
		audiometry.EventQuestionnaireComplete,
		audiometry.EventCalibrationPlay,
		audiometry.EventCalibrationComplete,
		audiometry.EventTestStart,
		audiometry.EventTestComplete,
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.names) != len(want) {
		t.Fatalf("events = %v", rec.names)
	}
	for i := range want {
		if rec.names[i] != want[i] {
			t.Fatalf("events = %v, want %v", rec.names, want)
		}
	}
}

func TestHearingSessionUsesUnityMaster(t *testing.T) {
	h := NewHearing(nil, []session.Option{session.WithSampleRate(44100)})
	defer h.Close()
	if cfg := h.Session().Config(); cfg.MasterGain != 1 || cfg.SampleRate != 44100 {
		t.Fatalf("session config = %+v", cfg)
	}
}
