package display

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeElement struct {
	text string
}

func (e *fakeElement) SetTextContent(text string) { e.text = text }

type fakeDocument struct {
	elems   map[string]*fakeElement
	lookups int
}

func (d *fakeDocument) ElementByID(id string) (Element, bool) {
	d.lookups++

	e, ok := d.elems[id]
	if !ok {
		return nil, false
	}

	return e, true
}

func TestElementDisplay_Show(t *testing.T) {
	elem := &fakeElement{}
	doc := &fakeDocument{elems: map[string]*fakeElement{ModuleElementID: elem}}

	d := NewElementDisplay(doc, ModuleElementID)

	require.NoError(t, d.Show("1.0 fps"))
	require.NoError(t, d.Show("2.0 fps"))

	assert.Equal(t, "2.0 fps", elem.text)
	assert.Equal(t, 1, doc.lookups, "element should be resolved once")
	assert.Equal(t, ModuleElementID, d.ID())
}

func TestElementDisplay_MissingTarget(t *testing.T) {
	doc := &fakeDocument{elems: map[string]*fakeElement{}}

	d := NewElementDisplay(doc, StandaloneElementID)

	err := d.Show("x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDisplayTargetMissing))
	assert.Contains(t, err.Error(), `"glmetrics"`)

	assert.ErrorIs(t, d.Show("y"), ErrDisplayTargetMissing)
	assert.Equal(t, 2, doc.lookups, "a missing element is looked up again")
}

func TestElementDisplay_TargetAppearsLater(t *testing.T) {
	doc := &fakeDocument{elems: map[string]*fakeElement{}}

	d := NewElementDisplay(doc, ModuleElementID)

	require.ErrorIs(t, d.Show("1.0 fps"), ErrDisplayTargetMissing)

	elem := &fakeElement{}
	doc.elems[ModuleElementID] = elem

	require.NoError(t, d.Show("2.0 fps"))
	require.NoError(t, d.Show("3.0 fps"))

	assert.Equal(t, "3.0 fps", elem.text)
	assert.Equal(t, 2, doc.lookups, "element is cached once found")
}

func TestElementDisplay_NilDocument(t *testing.T) {
	d := NewElementDisplay(nil, ModuleElementID)

	assert.ErrorIs(t, d.Show("x"), ErrDisplayTargetMissing)
}

func TestWriterDisplay(t *testing.T) {
	var buf bytes.Buffer

	d := NewWriterDisplay(&buf, false)
	require.NoError(t, d.Show("60.0 fps\n3 triangles"))

	assert.Equal(t, "60.0 fps\n3 triangles\n", buf.String())
}

func TestWriterDisplay_Clear(t *testing.T) {
	var buf bytes.Buffer

	d := NewWriterDisplay(&buf, true)
	require.NoError(t, d.Show("a"))

	assert.Equal(t, clearScreen+"a\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriterDisplay_WriteError(t *testing.T) {
	d := NewWriterDisplay(failingWriter{}, false)

	err := d.Show("a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing display")
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard.Show("anything"))
}
