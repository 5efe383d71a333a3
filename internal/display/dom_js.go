//go:build js && wasm

package display

import "syscall/js"

// DOM is a Document backed by the page's global document object.
type DOM struct {
	doc js.Value
}

var _ Document = DOM{}

// NewDOM returns the page document.
func NewDOM() DOM {
	return DOM{doc: js.Global().Get("document")}
}

func (d DOM) ElementByID(id string) (Element, bool) {
	if d.doc.IsUndefined() || d.doc.IsNull() {
		return nil, false
	}

	v := d.doc.Call("getElementById", id)
	if v.IsUndefined() || v.IsNull() {
		return nil, false
	}

	return domElement{v: v}, true
}

type domElement struct {
	v js.Value
}

func (e domElement) SetTextContent(text string) {
	e.v.Set("textContent", text)
}

// JSValue returns the underlying element.
func (e domElement) JSValue() js.Value {
	return e.v
}
