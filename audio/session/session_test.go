package session

import (
	"errors"
	"math"
	"testing"
)

func TestAcquireIsLazyAndReusable(t *testing.T) {
	s := New(WithSampleRate(44100))
	if s.Graph() != nil || s.Output() != nil {
		t.Fatal("graph exists before Acquire")
	}
	if s.Now() != 0 {
		t.Fatal("Now() != 0 before Acquire")
	}

	ctx, err := s.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if ctx.SampleRate() != 44100 {
		t.Fatalf("SampleRate() = %g", ctx.SampleRate())
	}
	again, _ := s.Acquire()
	if again != ctx {
		t.Fatal("second Acquire built a new graph")
	}
	if got := s.Output().Gain.Value(); got != 0.5 {
		t.Fatalf("master gain = %g, want 0.5", got)
	}
	if s.Analyser().FFTSize() != 2048 {
		t.Fatalf("analyser fft = %d", s.Analyser().FFTSize())
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if s.Graph() != nil {
		t.Fatal("graph kept after Close")
	}
	fresh, err := s.Acquire()
	if err != nil || fresh == ctx {
		t.Fatalf("re-acquire after Close = %v, %v", fresh, err)
	}
}

func TestMasterChainReachesDestination(t *testing.T) {
	s := New()
	ctx, _ := s.Acquire()
	src := ctx.NewBufferSource([]float64{1}, true)
	_ = src.Connect(s.Output())
	_ = src.Start(0)

	buf := make([]float32, 256)
	if _, err := s.Render(buf); err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(buf[10])-0.5) > 1e-6 || math.Abs(float64(buf[11])-0.5) > 1e-6 {
		t.Fatalf("output = %g/%g, want 0.5", buf[10], buf[11])
	}
}

func TestRenderBeforeAcquireIsSilent(t *testing.T) {
	s := New()
	buf := []float32{1, 1}
	n, err := s.Render(buf)
	if n != 0 || err != nil || buf[0] != 0 {
		t.Fatalf("Render() = %d, %v, %v", n, err, buf)
	}
}

func TestActivateTearsDownPrevious(t *testing.T) {
	s := New()
	var stopped []string

	first := s.Activate(func() { stopped = append(stopped, "first") })
	if !s.Active(first) {
		t.Fatal("first not active")
	}
	second := s.Activate(func() { stopped = append(stopped, "second") })
	if len(stopped) != 1 || stopped[0] != "first" {
		t.Fatalf("stopped = %v", stopped)
	}
	if s.Active(first) || !s.Active(second) {
		t.Fatal("activation not replaced")
	}

	// a stale handle must not clear the live one
	s.Deactivate(first)
	if !s.Active(second) {
		t.Fatal("stale Deactivate cleared live activation")
	}

	s.StopAll()
	s.StopAll()
	if len(stopped) != 2 || stopped[1] != "second" {
		t.Fatalf("stopped = %v", stopped)
	}

	third := s.Activate(func() { stopped = append(stopped, "third") })
	s.Deactivate(third)
	s.StopAll()
	if len(stopped) != 2 {
		t.Fatal("deactivated teardown ran")
	}
}

func TestOpenInput(t *testing.T) {
	t.Run("denied", func(t *testing.T) {
		s := New()
		_, err := s.OpenInput(func() error { return errors.New("user said no") })
		if !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("error = %v", err)
		}
		if s.Graph() != nil {
			t.Fatal("denied input left a graph behind")
		}
	})
	t.Run("unsupported", func(t *testing.T) {
		s := New()
		if _, err := s.OpenInput(nil); !errors.Is(err, ErrUnsupported) {
			t.Fatalf("error = %v", err)
		}
		_, err := s.OpenInput(func() error { return ErrUnsupported })
		if !errors.Is(err, ErrUnsupported) || errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("error = %v", err)
		}
	})
	t.Run("granted", func(t *testing.T) {
		s := New()
		mic, err := s.OpenInput(func() error { return nil })
		if err != nil || mic == nil {
			t.Fatalf("OpenInput() = %v, %v", mic, err)
		}
		if s.Graph() == nil {
			t.Fatal("granted input did not acquire the graph")
		}
	})
}
