//go:build js && wasm

package webhost

import (
	"syscall/js"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/glmetrics/internal/instrument"
)

// Exports holds the functions registered on the JavaScript global object.
type Exports struct {
	funcs map[string]js.Func
}

// Export registers tick and, for the module variant, setNumberOfObjects
// on the global object. tick never throws into the caller's render loop;
// errors are logged.
func Export(log logrus.FieldLogger, ctx *instrument.Context) *Exports {
	log = log.WithField("component", "webhost")

	e := &Exports{funcs: make(map[string]js.Func, 2)}

	e.set(ExportTick, func(args []js.Value) any {
		now := Now()
		if len(args) > 0 && args[0].Type() == js.TypeNumber {
			now = args[0].Float()
		}

		if _, err := ctx.Tick(now); err != nil {
			log.WithError(err).Error("Tick failed")
		}

		return nil
	})

	if ctx.Variant() == instrument.VariantModule {
		e.set(ExportSetNumberOfObjects, func(args []js.Value) any {
			ctx.SetNumberOfObjects(argInt(args, 0))

			return nil
		})
	}

	return e
}

func (e *Exports) set(name string, fn func(args []js.Value) any) {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})

	e.funcs[name] = f
	js.Global().Set(name, f)
}

// Release removes the exported functions.
func (e *Exports) Release() {
	for name, f := range e.funcs {
		js.Global().Delete(name)
		f.Release()
	}

	e.funcs = map[string]js.Func{}
}

// Now returns performance.now() in milliseconds.
func Now() float64 {
	perf := js.Global().Get("performance")
	if perf.Type() != js.TypeObject {
		return 0
	}

	return perf.Call("now").Float()
}

// WatchContextLoss logs an error and prevents the default action when
// canvas loses its WebGL context. The page must be reloaded to recover.
func WatchContextLoss(log logrus.FieldLogger, canvas js.Value) js.Func {
	log = log.WithField("component", "webhost")

	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		log.Error("WebGL context lost. You will need to reload the page.")

		if len(args) > 0 {
			args[0].Call("preventDefault")
		}

		return nil
	})

	canvas.Call("addEventListener", "webglcontextlost", f, false)

	return f
}
