package audioio

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-audiocheck/internal/testutil"
)

type rampSource struct {
	calls int
	err   error
}

func (r *rampSource) Render(dst []float32) (int, error) {
	r.calls++
	for i := 0; i < len(dst); i += 2 {
		v := float32(i/2) / float32(len(dst)/2)
		dst[i] = v
		dst[i+1] = -v
	}
	return len(dst) / 2, r.err
}

func TestStreamRead(t *testing.T) {
	src := &rampSource{}
	s := &stream{src: src}
	p := make([]byte, 4*8+3)
	n, err := s.Read(p)
	if err != nil || n != 32 {
		t.Fatalf("Read = %d, %v", n, err)
	}
	left := math.Float32frombits(binary.LittleEndian.Uint32(p[8:]))
	right := math.Float32frombits(binary.LittleEndian.Uint32(p[12:]))
	if left != 0.25 || right != -0.25 {
		t.Fatalf("frame 1 = %v %v", left, right)
	}

	src.err = errors.New("boom")
	if _, err := s.Read(p); err != nil {
		t.Fatalf("Read error = %v", err)
	}
	if binary.LittleEndian.Uint32(p[8:]) != 0 {
		t.Fatal("render error did not produce silence")
	}
	if s.Err() == nil {
		t.Fatal("render error not kept")
	}

	s.setSource(nil)
	if _, err := s.Read(p); err != nil || binary.LittleEndian.Uint32(p[8:]) != 0 {
		t.Fatal("nil source not silent")
	}
}

type sineSource struct {
	phase float64
}

func (s *sineSource) Render(dst []float32) (int, error) {
	for i := 0; i < len(dst); i += 2 {
		v := float32(0.5 * math.Sin(s.phase))
		dst[i], dst[i+1] = v, v
		s.phase += 2 * math.Pi * 440 / 8000
	}
	return len(dst) / 2, nil
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := WriteWAV(path, &sineSource{}, 8000, 0.5); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	samples, rate, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if rate != 8000 || len(samples) != 4000 {
		t.Fatalf("got %d samples at %d Hz", len(samples), rate)
	}
	testutil.RequireSliceNearlyEqual(t, samples[:100], testutil.DeterministicSine(440, 8000, 0.5, 100), 1e-4)
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadWAV(path); !errors.Is(err, ErrInvalidWAV) {
		t.Fatalf("error = %v, want ErrInvalidWAV", err)
	}
}
