package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/algo-audiocheck/audio/synth"
	"github.com/cwbudde/algo-audiocheck/internal/audioio"
)

func run(t *testing.T, args ...string) {
	t.Helper()
	var c CLI
	parser, err := kong.New(&c, kong.Name("audiocheck"), kong.Vars{"version": version}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	if err != nil {
		t.Fatal(err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	a := &app{
		ctx:        context.Background(),
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		sampleRate: c.SampleRate,
	}
	if err := kctx.Run(a); err != nil {
		t.Fatalf("run %v: %v", args, err)
	}
}

func TestToneToWAV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tone.wav")
	run(t, "--sample-rate", "16000", "tone", "1000", "--duration", "0.5", "--out", out)

	samples, sr, err := audioio.ReadWAV(out)
	if err != nil {
		t.Fatal(err)
	}
	if sr != 16000 {
		t.Errorf("sample rate = %d, want 16000", sr)
	}
	seconds := 0.5
	seconds += synth.StopTail
	if want := int(seconds * 16000); len(samples) != want {
		t.Errorf("frames = %d, want %d", len(samples), want)
	}
	peak := 0.0
	for _, v := range samples {
		peak = max(peak, v, -v)
	}
	if peak < 0.1 {
		t.Errorf("peak = %v, expected an audible tone", peak)
	}
}

func TestMeterOnRecording(t *testing.T) {
	dir := t.TempDir()
	rec := filepath.Join(dir, "noise.wav")
	run(t, "noise", "pink", "--duration", "2", "--out", rec)

	spec := filepath.Join(dir, "spectrum.png")
	hist := filepath.Join(dir, "history.png")
	run(t, "meter", rec, "--png", spec, "--history-png", hist, "--width", "200", "--height", "100")

	for _, path := range []string{spec, hist} {
		fi, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if fi.Size() == 0 {
			t.Errorf("%s is empty", path)
		}
	}
}

func TestParseRejectsBadEnum(t *testing.T) {
	var c CLI
	parser, err := kong.New(&c, kong.Vars{"version": version})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse([]string{"noise", "brown"}); err == nil {
		t.Error("expected enum error for brown noise")
	}
	if _, err := parser.Parse([]string{"--log-level", "loud", "serve"}); err == nil {
		t.Error("expected enum error for log level")
	}
}
