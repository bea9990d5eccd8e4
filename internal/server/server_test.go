package server

import (
	"encoding/binary"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialMeter(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/meter"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads messages until one has the wanted type.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatal(err)
	}
	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		if msg["type"] == typ {
			return msg
		}
	}
}

func sineFrame(sampleRate float64, freq, amp float64, offset, n int) []byte {
	buf := make([]byte, 4*n)
	for i := range n {
		v := float32(amp * math.Sin(2*math.Pi*freq*float64(offset+i)/sampleRate))
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func TestMeterSession(t *testing.T) {
	conn := dialMeter(t, New(WithInterval(10*time.Millisecond), WithBars(16)))

	if err := conn.WriteJSON(map[string]any{"type": "start", "data": map[string]any{"sample_rate": 48000}}); err != nil {
		t.Fatal(err)
	}
	if res := readUntil(t, conn, "start_result"); res["success"] != true {
		t.Fatalf("start failed: %v", res)
	}

	const chunk = 4800
	for i := range 10 {
		if err := conn.WriteMessage(websocket.BinaryMessage, sineFrame(48000, 1000, 0.5, i*chunk, chunk)); err != nil {
			t.Fatal(err)
		}
	}

	level := readUntil(t, conn, "level")
	for _, key := range []string{"db", "min", "avg", "max", "exposure", "status"} {
		if _, ok := level[key]; !ok {
			t.Errorf("level message missing %q: %v", key, level)
		}
	}
	spec := readUntil(t, conn, "spectrum")
	if bars, ok := spec["bars"].([]any); !ok || len(bars) != 16 {
		t.Errorf("spectrum bars = %v, want 16", spec["bars"])
	}

	if err := conn.WriteJSON(map[string]any{"type": "stop"}); err != nil {
		t.Fatal(err)
	}
	rep := readUntil(t, conn, "report")
	if n, _ := rep["samples"].(float64); n <= 0 {
		t.Errorf("report samples = %v, want > 0", rep["samples"])
	}
	if avg, _ := rep["avg"].(float64); avg <= 0 || avg > 130 {
		t.Errorf("report avg = %v, want within (0, 130]", rep["avg"])
	}
	if res := readUntil(t, conn, "stop_result"); res["success"] != true {
		t.Fatalf("stop failed: %v", res)
	}
}

func TestStartValidation(t *testing.T) {
	tests := []struct {
		name  string
		data  map[string]any
		field string
	}{
		{"missing rate", map[string]any{}, "sample_rate"},
		{"rate too low", map[string]any{"sample_rate": 100}, "sample_rate"},
		{"rate too high", map[string]any{"sample_rate": 400000}, "sample_rate"},
		{"too many bars", map[string]any{"sample_rate": 48000, "bars": 4096}, "bars"},
	}
	conn := dialMeter(t, New())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteJSON(map[string]any{"type": "start", "data": tt.data}); err != nil {
				t.Fatal(err)
			}
			res := readUntil(t, conn, "start_result")
			if res["success"] != false {
				t.Fatalf("expected failure: %v", res)
			}
			fields, _ := res["fields"].([]any)
			if len(fields) == 0 {
				t.Fatalf("no field errors: %v", res)
			}
			if f, _ := fields[0].(map[string]any); f["field"] != tt.field {
				t.Errorf("field = %v, want %q", f["field"], tt.field)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	conn := dialMeter(t, New())

	if err := conn.WriteJSON(map[string]any{"type": "stop"}); err != nil {
		t.Fatal(err)
	}
	if res := readUntil(t, conn, "stop_result"); res["success"] != false {
		t.Errorf("stop before start succeeded: %v", res)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if res := readUntil(t, conn, "samples_result"); res["error"] != ErrFrameLength.Error() {
		t.Errorf("odd frame error = %v", res["error"])
	}

	if err := conn.WriteJSON(map[string]any{"type": "bogus"}); err != nil {
		t.Fatal(err)
	}
	if res := readUntil(t, conn, "bogus_result"); res["success"] != false {
		t.Errorf("unknown command succeeded: %v", res)
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		origin string
		host   string
		want   bool
	}{
		{"", "example.com", true},
		{"http://localhost:3000", "example.com", true},
		{"http://example.com", "example.com:8080", true},
		{"http://192.168.1.20", "example.com", true},
		{"https://evil.test", "example.com", false},
		{"://bad", "example.com", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/ws/meter", nil)
		r.Host = tt.host
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := checkOrigin(r); got != tt.want {
			t.Errorf("checkOrigin(%q, %q) = %v, want %v", tt.origin, tt.host, got, tt.want)
		}
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	New().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
