// Package webhost connects an instrumentation context to a browser page:
// it decorates a WebGL2 context instance with the draw interceptor,
// exports the tick and object-count functions to JavaScript and watches
// for context loss. Everything except this file requires js/wasm.
package webhost

// Names of the functions exported on the JavaScript global object.
const (
	ExportTick               = "tick"
	ExportSetNumberOfObjects = "setNumberOfObjects"
)

// Draw entry points replaced on the context instance.
const (
	methodDrawArrays          = "drawArrays"
	methodDrawElements        = "drawElements"
	methodDrawArraysInstanced = "drawArraysInstanced"
)
