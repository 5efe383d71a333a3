// Package display writes the metrics text block to a page element or a
// terminal.
package display

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrDisplayTargetMissing is returned when the display element cannot be
// found in the document.
var ErrDisplayTargetMissing = errors.New("display target missing")

// Default element ids used by the page.
const (
	StandaloneElementID = "glmetrics"
	ModuleElementID     = "info"
)

// Display receives the formatted metrics block once per tick.
type Display interface {
	Show(text string) error
}

// Element is a page element whose text content can be replaced.
type Element interface {
	SetTextContent(text string)
}

// Document resolves page elements by id.
type Document interface {
	ElementByID(id string) (Element, bool)
}

// ElementDisplay writes into the text content of a document element.
// The element is looked up on every call until it is found, then cached.
type ElementDisplay struct {
	doc Document
	id  string

	mu   sync.Mutex
	elem Element
}

var _ Display = (*ElementDisplay)(nil)

// NewElementDisplay creates a display bound to the element with the
// given id.
func NewElementDisplay(doc Document, id string) *ElementDisplay {
	return &ElementDisplay{doc: doc, id: id}
}

// ID returns the element id this display writes to.
func (d *ElementDisplay) ID() string { return d.id }

// Show replaces the element's text content.
func (d *ElementDisplay) Show(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.elem == nil {
		elem, err := d.resolve()
		if err != nil {
			return err
		}

		d.elem = elem
	}

	d.elem.SetTextContent(text)

	return nil
}

func (d *ElementDisplay) resolve() (Element, error) {
	if d.doc == nil {
		return nil, fmt.Errorf("%w: %q (no document)", ErrDisplayTargetMissing, d.id)
	}

	elem, ok := d.doc.ElementByID(d.id)
	if !ok || elem == nil {
		return nil, fmt.Errorf("%w: %q", ErrDisplayTargetMissing, d.id)
	}

	return elem, nil
}

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\x1b[H\x1b[2J"

// WriterDisplay writes the block to an io.Writer such as a terminal.
type WriterDisplay struct {
	mu    sync.Mutex
	w     io.Writer
	clear bool
}

var _ Display = (*WriterDisplay)(nil)

// NewWriterDisplay creates a display that writes each block to w. With
// clear set, the terminal is cleared before each block.
func NewWriterDisplay(w io.Writer, clear bool) *WriterDisplay {
	return &WriterDisplay{w: w, clear: clear}
}

func (d *WriterDisplay) Show(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.clear {
		if _, err := io.WriteString(d.w, clearScreen); err != nil {
			return fmt.Errorf("clearing display: %w", err)
		}
	}

	if _, err := io.WriteString(d.w, text+"\n"); err != nil {
		return fmt.Errorf("writing display: %w", err)
	}

	return nil
}

// Discard is a Display that drops every block.
var Discard Display = discard{}

type discard struct{}

func (discard) Show(string) error { return nil }
