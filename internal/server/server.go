package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cwbudde/algo-audiocheck/viz"
)

// Defaults for the meter endpoint.
const (
	DefaultAddr     = ":8080"
	DefaultInterval = 100 * time.Millisecond
	readLimit       = 1 << 20
	sendBuffer      = 16
)

// Config holds server settings.
type Config struct {
	Addr string
	// Interval paces level and spectrum updates.
	Interval time.Duration
	// Bars is the spectrum resolution sent to clients that do not ask for one.
	Bars int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns a server on :8080 pushing updates at 10 Hz.
func DefaultConfig() Config {
	return Config{
		Addr:     DefaultAddr,
		Interval: DefaultInterval,
		Bars:     viz.DefaultBars,
	}
}

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(cfg *Config) {
		if addr != "" {
			cfg.Addr = addr
		}
	}
}

// WithInterval sets the update period.
func WithInterval(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.Interval = d
		}
	}
}

// WithBars sets the default spectrum resolution.
func WithBars(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.Bars = n
		}
	}
}

// Server serves the live sound meter.
type Server struct {
	cfg Config
}

// New returns a server configured by opts.
func New(opts ...Option) *Server {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Server{cfg: cfg}
}

// Config returns the server settings.
func (s *Server) Config() Config {
	return s.cfg
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/meter", s.handleMeter)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("starting web server", "addr", s.cfg.Addr)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("shutting down web server")
		return srv.Shutdown(shutdownCtx)
	}
}

// handleMeter runs one sound meter per connection.
func (s *Server) handleMeter(w http.ResponseWriter, r *http.Request) {
	conn, err := UpgradeConnection(w, r)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(readLimit)
	slog.Debug("meter client connected", "remote", r.RemoteAddr)

	// Only the writer goroutine writes to the connection.
	send := make(chan any, sendBuffer)
	done := make(chan struct{})
	mc := newMeterConn(send, s.cfg.Bars)
	defer mc.close()

	go runWriter(conn, send)
	go runReader(conn, mc, done)

	s.runEventLoop(mc, send, done)
	slog.Debug("meter client disconnected", "remote", r.RemoteAddr)
}

// runWriter writes messages from the send channel to the connection.
func runWriter(conn WebSocketConn, send <-chan any) {
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("WebSocket close error", "error", err)
		}
	}()
	for msg := range send {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// runReader dispatches commands and sample frames until the peer goes away.
func runReader(conn WebSocketConn, mc *meterConn, done chan<- struct{}) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in WebSocket reader", "panic", r)
		}
		close(done)
	}()

	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		mc.handleMessage(kind, payload)
	}
}

// runEventLoop pushes level and spectrum updates while the meter runs.
func (s *Server) runEventLoop(mc *meterConn, send chan any, done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	defer close(send)

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			for _, msg := range mc.updates() {
				select {
				case send <- msg:
				case <-done:
					return
				}
			}
		}
	}
}
