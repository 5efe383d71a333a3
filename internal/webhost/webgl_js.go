//go:build js && wasm

package webhost

import (
	"syscall/js"

	"github.com/ethpandaops/glmetrics/internal/gl"
)

// WebGL is a gl.DrawContext that calls a WebGL2 context's own draw
// functions, captured before any decoration.
type WebGL struct {
	ctx                 js.Value
	drawArrays          js.Value
	drawElements        js.Value
	drawArraysInstanced js.Value
}

var _ gl.DrawContext = (*WebGL)(nil)

// NewWebGL captures the draw functions of ctx bound to ctx.
func NewWebGL(ctx js.Value) *WebGL {
	return &WebGL{
		ctx:                 ctx,
		drawArrays:          bound(ctx, methodDrawArrays),
		drawElements:        bound(ctx, methodDrawElements),
		drawArraysInstanced: bound(ctx, methodDrawArraysInstanced),
	}
}

func bound(ctx js.Value, method string) js.Value {
	fn := ctx.Get(method)
	if fn.Type() != js.TypeFunction {
		return js.Undefined()
	}

	return fn.Call("bind", ctx)
}

// Context returns the decorated WebGL2 context.
func (w *WebGL) Context() js.Value { return w.ctx }

// SupportsInstancing reports whether the context has drawArraysInstanced.
func (w *WebGL) SupportsInstancing() bool {
	return w.drawArraysInstanced.Type() == js.TypeFunction
}

func (w *WebGL) DrawArrays(mode gl.DrawMode, first, count int) {
	w.drawArrays.Invoke(uint32(mode), first, count)
}

func (w *WebGL) DrawElements(mode gl.DrawMode, count int, indexType gl.IndexType, offset int) {
	w.drawElements.Invoke(uint32(mode), count, uint32(indexType), offset)
}

func (w *WebGL) DrawArraysInstanced(mode gl.DrawMode, first, count, instanceCount int) {
	if !w.SupportsInstancing() {
		return
	}

	w.drawArraysInstanced.Invoke(uint32(mode), first, count, instanceCount)
}
