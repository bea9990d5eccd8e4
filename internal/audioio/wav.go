package audioio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned for files that are not PCM WAV.
var ErrInvalidWAV = errors.New("audioio: not a valid WAV file")

const (
	bitDepth  = 16
	formatPCM = 1
)

// EncodeWAV writes interleaved float32 frames as 16-bit PCM.
func EncodeWAV(w io.WriteSeeker, frames []float32, sampleRate, channels int) error {
	if channels <= 0 || sampleRate <= 0 {
		return fmt.Errorf("audioio: invalid format %d Hz x %d", sampleRate, channels)
	}
	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, len(frames)),
		SourceBitDepth: bitDepth,
	}
	for i, v := range frames {
		x := math.Max(-1, math.Min(1, float64(v)))
		buf.Data[i] = int(math.Round(x * math.MaxInt16))
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audioio: write wav: %w", err)
	}
	return enc.Close()
}

// WriteWAV renders seconds of stereo audio from src into path.
func WriteWAV(path string, src Source, sampleRate int, seconds float64) error {
	frames := make([]float32, 2*int(seconds*float64(sampleRate)))
	if _, err := src.Render(frames); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeWAV(f, frames, sampleRate, 2); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// DecodeWAV reads a PCM WAV stream and mixes it down to mono samples in
// [-1, 1].
func DecodeWAV(r io.ReadSeeker) ([]float64, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, ErrInvalidWAV
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("audioio: decode wav: %w", err)
	}
	channels := buf.Format.NumChannels
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(dec.BitDepth)
	}
	if channels <= 0 || depth <= 0 {
		return nil, 0, ErrInvalidWAV
	}

	scale := 1 / math.Pow(2, float64(depth-1))
	out := make([]float64, len(buf.Data)/channels)
	for i := range out {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		out[i] = sum / float64(channels) * scale
	}
	return out, buf.Format.SampleRate, nil
}

// ReadWAV decodes the file at path to mono samples and its sample rate.
func ReadWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return DecodeWAV(f)
}
