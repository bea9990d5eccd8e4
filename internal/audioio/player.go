package audioio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Source renders interleaved stereo float32 frames.
type Source interface {
	Render(dst []float32) (int, error)
}

// stream adapts a Source to the byte reader oto pulls from.
type stream struct {
	mu  sync.Mutex
	src Source
	buf []float32
	err error
}

// Read fills p with float32 little-endian stereo samples. Render errors
// produce silence; the first one is kept.
func (s *stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(p) / 4
	n -= n % 2
	if cap(s.buf) < n {
		s.buf = make([]float32, n)
	}
	buf := s.buf[:n]
	if s.src == nil {
		clear(buf)
	} else if _, err := s.src.Render(buf); err != nil {
		clear(buf)
		if s.err == nil {
			s.err = err
		}
	}
	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	return 4 * n, nil
}

func (s *stream) setSource(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src = src
}

func (s *stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Player streams a Source to the default output device. oto allows a single
// context per process, so create one Player and switch sources with
// SetSource.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	stream *stream

	mu      sync.Mutex
	started bool
}

// NewPlayer opens the output device at sampleRate.
func NewPlayer(sampleRate int, src Source) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   40 * time.Millisecond,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audioio: open output: %w", err)
	}
	<-ready

	s := &stream{src: src}
	return &Player{ctx: ctx, player: ctx.NewPlayer(s), stream: s}, nil
}

// SetSource switches what is played.
func (p *Player) SetSource(src Source) {
	p.stream.setSource(src)
}

// Start begins playback.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		p.player.Play()
		p.started = true
	}
}

// Pause halts playback without releasing the device.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		p.player.Pause()
		p.started = false
	}
}

// Started reports whether the player is running.
func (p *Player) Started() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// Err returns the first render error seen while playing.
func (p *Player) Err() error {
	return p.stream.Err()
}

// Close stops playback.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = false
	return p.player.Close()
}
