//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/cwbudde/algo-audiocheck/internal/telemetry"
	"github.com/cwbudde/algo-audiocheck/internal/webdemo"
)

var (
	engine *webdemo.Engine
	funcs  []js.Func
	frame  []float32
	mic    []float64
)

// jsSink forwards telemetry events to window.gtag when the page defines it.
type jsSink struct{}

func (jsSink) Event(name string, attrs map[string]any) {
	gtag := js.Global().Get("gtag")
	if gtag.Type() != js.TypeFunction {
		return
	}
	gtag.Invoke("event", name, toJS(attrs))
}

func main() {
	api := js.Global().Get("Object").New()

	api.Set("init", export(func(args []js.Value) any {
		sr := 48000.0
		if len(args) > 0 {
			sr = args[0].Float()
		}
		if engine != nil {
			_ = engine.Close()
		}
		e, err := webdemo.NewEngine(sr, telemetry.NewAsync(jsSink{}, 64))
		if err != nil {
			return err.Error()
		}
		engine = e
		return js.Null()
	}))

	api.Set("render", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		n := args[0].Int()
		if cap(frame) < n {
			frame = make([]float32, n)
		}
		buf := frame[:n]
		_ = engine.Render(buf)
		arr := js.Global().Get("Float32Array").New(n)
		for i := 0; i < n; i++ {
			arr.SetIndex(i, buf[i])
		}
		return arr
	}))

	api.Set("pushMic", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		input := args[0]
		n := input.Length()
		if cap(mic) < n {
			mic = make([]float64, n)
		}
		samples := mic[:n]
		for i := 0; i < n; i++ {
			samples[i] = input.Index(i).Float()
		}
		return errValue(engine.PushMic(samples))
	}))

	// Speaker test.
	api.Set("stereo", export(func(args []js.Value) any {
		return toggled(func() (bool, error) { return engine.Stereo(arg(args, 0).String()) })
	}))
	api.Set("toggleTone", export(func([]js.Value) any {
		return toggled(func() (bool, error) { return engine.Speaker.ToggleTone() })
	}))
	api.Set("setFrequency", export(func(args []js.Value) any {
		if engine == nil {
			return js.Null()
		}
		return errValue(engine.Speaker.SetFrequency(arg(args, 0).Float()))
	}))
	api.Set("playFrequency", export(func(args []js.Value) any {
		return toggled(func() (bool, error) { return engine.Speaker.PlayFrequency(arg(args, 0).Float()) })
	}))
	api.Set("toggleSweep", export(func([]js.Value) any {
		return toggled(func() (bool, error) { return engine.Speaker.ToggleSweep() })
	}))
	api.Set("toggleNoise", export(func(args []js.Value) any {
		return toggled(func() (bool, error) { return engine.ToggleNoise(arg(args, 0).String()) })
	}))
	api.Set("togglePolarity", export(func(args []js.Value) any {
		return toggled(func() (bool, error) { return engine.Speaker.TogglePolarity(arg(args, 0).Truthy()) })
	}))
	api.Set("stopAll", export(func([]js.Value) any {
		if engine != nil {
			engine.Speaker.StopAll()
		}
		return js.Null()
	}))
	api.Set("speaker", export(func([]js.Value) any {
		if engine == nil {
			return js.Null()
		}
		return toJS(engine.SpeakerState())
	}))
	api.Set("waveform", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return false
		}
		dst := make([]byte, args[0].Length())
		ok := engine.Speaker.Waveform(dst)
		js.CopyBytesToJS(args[0], dst)
		return ok
	}))

	// Sound meter.
	api.Set("startMeter", export(func(args []js.Value) any {
		if engine == nil {
			return "not initialised"
		}
		return errValue(engine.StartMeter(len(args) == 0 || args[0].Truthy()))
	}))
	api.Set("stopMeter", export(func([]js.Value) any {
		if engine == nil {
			return js.Null()
		}
		rep, err := engine.StopMeter()
		if err != nil {
			return err.Error()
		}
		return toJS(rep)
	}))
	api.Set("meter", export(func([]js.Value) any {
		if engine == nil {
			return js.Null()
		}
		return toJS(engine.MeterState())
	}))
	api.Set("bars", export(func(args []js.Value) any {
		if engine == nil {
			return js.Null()
		}
		n := 0
		if len(args) > 0 {
			n = args[0].Int()
		}
		f := engine.Meter.Frame(n)
		return toJS(map[string]any{"active": f.Active, "bars": f.Bars, "placeholder": f.Placeholder})
	}))
	api.Set("history", export(func([]js.Value) any {
		if engine == nil {
			return js.Null()
		}
		return toJS(engine.Meter.History())
	}))

	// Hearing test.
	api.Set("submitProfile", export(func(args []js.Value) any {
		if engine == nil {
			return "not initialised"
		}
		return errValue(engine.SubmitProfile(arg(args, 0).String(), arg(args, 1).String(), arg(args, 2).String()))
	}))
	api.Set("playCalibration", export(func([]js.Value) any {
		if engine == nil {
			return "not initialised"
		}
		return errValue(engine.Hearing.PlayCalibration())
	}))
	api.Set("confirmCalibration", export(func([]js.Value) any {
		if engine != nil {
			engine.Hearing.ConfirmCalibration()
		}
		return js.Null()
	}))
	api.Set("stepUp", export(func([]js.Value) any { return engine != nil && engine.Hearing.StepUp() }))
	api.Set("stepDown", export(func([]js.Value) any { return engine != nil && engine.Hearing.StepDown() }))
	api.Set("setLevel", export(func(args []js.Value) any {
		return engine != nil && engine.Hearing.SetLevel(arg(args, 0).Int())
	}))
	api.Set("confirm", export(func([]js.Value) any { return engine != nil && engine.Hearing.Confirm() }))
	api.Set("resume", export(func([]js.Value) any { return engine != nil && engine.Hearing.Resume() }))
	api.Set("hearing", export(func([]js.Value) any {
		if engine == nil {
			return js.Null()
		}
		return toJS(engine.HearingState())
	}))

	js.Global().Set("AudioCheck", api)
	select {}
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}

func arg(args []js.Value, i int) js.Value {
	if i < len(args) {
		return args[i]
	}
	return js.Undefined()
}

// toggled runs a speaker toggle and returns whether it is now playing, or
// the error text.
func toggled(fn func() (bool, error)) any {
	if engine == nil {
		return false
	}
	on, err := fn()
	if err != nil {
		return err.Error()
	}
	return on
}

func errValue(err error) any {
	if err != nil {
		return err.Error()
	}
	return js.Null()
}

// toJS converts plain Go data to a JavaScript value through JSON.
func toJS(v any) js.Value {
	b, err := json.Marshal(v)
	if err != nil {
		return js.Null()
	}
	return js.Global().Get("JSON").Call("parse", string(b))
}
