//go:build js && wasm

package webhost

import (
	"syscall/js"

	"github.com/ethpandaops/glmetrics/internal/gl"
	"github.com/ethpandaops/glmetrics/internal/instrument"
)

// Installation is a WebGL2 context instance whose draw methods route
// through an interceptor. The shared prototype is left untouched.
type Installation struct {
	ctx   js.Value
	gl    *WebGL
	funcs map[string]js.Func
}

// Install decorates ctx so every drawArrays, drawElements and
// drawArraysInstanced call is observed by ic before reaching the
// context's own method. ic must wrap the WebGL returned by NewWebGL
// for the same ctx.
func Install(ctx js.Value, webgl *WebGL, ic *instrument.Interceptor) *Installation {
	inst := &Installation{
		ctx:   ctx,
		gl:    webgl,
		funcs: make(map[string]js.Func, 3),
	}

	inst.set(methodDrawArrays, func(args []js.Value) {
		ic.DrawArrays(gl.DrawMode(argInt(args, 0)), argInt(args, 1), argInt(args, 2))
	})

	inst.set(methodDrawElements, func(args []js.Value) {
		ic.DrawElements(
			gl.DrawMode(argInt(args, 0)),
			argInt(args, 1),
			gl.IndexType(argInt(args, 2)),
			argInt(args, 3),
		)
	})

	if webgl.SupportsInstancing() {
		inst.set(methodDrawArraysInstanced, func(args []js.Value) {
			ic.DrawArraysInstanced(
				gl.DrawMode(argInt(args, 0)),
				argInt(args, 1),
				argInt(args, 2),
				argInt(args, 3),
			)
		})
	}

	return inst
}

func (i *Installation) set(method string, fn func(args []js.Value)) {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		fn(args)

		return nil
	})

	i.funcs[method] = f
	i.ctx.Set(method, f)
}

// Uninstall removes the instance methods, exposing the prototype's again,
// and releases the Go callbacks.
func (i *Installation) Uninstall() {
	for method, f := range i.funcs {
		i.ctx.Delete(method)
		f.Release()
	}

	i.funcs = map[string]js.Func{}
}

// argInt reads argument n as an integer. Missing or non-numeric
// arguments read as zero, like WebGL's own coercion of undefined.
func argInt(args []js.Value, n int) int {
	if n >= len(args) || args[n].Type() != js.TypeNumber {
		return 0
	}

	return args[n].Int()
}
