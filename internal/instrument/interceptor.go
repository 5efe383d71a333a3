package instrument

import (
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/glmetrics/internal/gl"
)

// Interceptor decorates a DrawContext, counting the primitives of every
// draw call before forwarding it unchanged. Counting failures are
// reported through the Context and never stop the draw.
type Interceptor struct {
	next gl.DrawContext
	ctx  *Context
}

var _ gl.DrawContext = (*Interceptor)(nil)

// NewInterceptor wraps next so its draw calls are counted in ctx.
func NewInterceptor(next gl.DrawContext, ctx *Context) *Interceptor {
	return &Interceptor{next: next, ctx: ctx}
}

// Unwrap returns the decorated DrawContext.
func (i *Interceptor) Unwrap() gl.DrawContext { return i.next }

func (i *Interceptor) DrawArrays(mode gl.DrawMode, first, count int) {
	i.observe(mode, int64(count))
	i.next.DrawArrays(mode, first, count)
}

func (i *Interceptor) DrawElements(
	mode gl.DrawMode,
	count int,
	indexType gl.IndexType,
	offset int,
) {
	i.observe(mode, int64(count))
	i.next.DrawElements(mode, count, indexType, offset)
}

func (i *Interceptor) DrawArraysInstanced(mode gl.DrawMode, first, count, instanceCount int) {
	if i.ctx.variant == VariantModule {
		i.observe(mode, int64(max(count, 0))*int64(max(instanceCount, 0)))
	}

	i.next.DrawArraysInstanced(mode, first, count, instanceCount)
}

func (i *Interceptor) observe(mode gl.DrawMode, count int64) {
	if err := i.ctx.Observe(mode, count); err != nil {
		i.ctx.log.WithError(err).WithFields(logrus.Fields{
			"mode":  uint32(mode),
			"count": count,
		}).Debug("Draw call not counted")

		i.ctx.fail(err)
	}
}
