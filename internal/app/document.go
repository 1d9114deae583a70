package app

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"

	"github.com/argos-ot/wolfedit/internal/engine/buffer"
)

// DocumentID identifies a document for the lifetime of the session.
type DocumentID uuid.UUID

// NewDocumentID returns a fresh random ID.
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New())
}

func (id DocumentID) String() string {
	return uuid.UUID(id).String()
}

// UntitledName is the display name of a document without a path.
const UntitledName = "Untitled"

// Document is one open text, optionally bound to a file.
type Document struct {
	id DocumentID

	// mu guards path and name, and is held for the whole of a save.
	mu   sync.Mutex
	path string
	name string

	buffer      TextBuffer
	unsubscribe func()

	dirty atomic.Bool
	stale atomic.Bool
}

// newDocument wraps buf. Any change to buf marks the document dirty.
func newDocument(path, name string, buf TextBuffer) *Document {
	d := &Document{
		id:     NewDocumentID(),
		path:   path,
		name:   name,
		buffer: buf,
	}
	d.unsubscribe = buf.OnChange(func(buffer.Change) {
		d.dirty.Store(true)
	})
	return d
}

// NewScratchDocument creates an empty document with no path.
func NewScratchDocument(name string) *Document {
	if name == "" {
		name = UntitledName
	}
	return newDocument("", name, buffer.NewBuffer())
}

// LoadDocument reads path into a new clean document. Invalid UTF-8 is
// replaced with U+FFFD.
func LoadDocument(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, ioError("open", abs, err)
	}
	text, err := decode(data)
	if err != nil {
		return nil, ioError("open", abs, err)
	}
	return newDocument(abs, filepath.Base(abs), buffer.NewBufferFromString(text)), nil
}

func decode(data []byte) (string, error) {
	out, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ID returns the document's identity.
func (d *Document) ID() DocumentID {
	return d.id
}

// Path returns the backing file path, or "" when untitled.
func (d *Document) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.path
}

// Name returns the display name.
func (d *Document) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

// IsUntitled returns true if the document has no backing file.
func (d *Document) IsUntitled() bool {
	return d.Path() == ""
}

// SetPath binds the document to path. The display name follows.
func (d *Document) SetPath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ioError("save", path, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.path = abs
	d.name = filepath.Base(abs)
	return nil
}

// Buffer returns the document's text.
func (d *Document) Buffer() TextBuffer {
	return d.buffer
}

// Content returns the full text.
func (d *Document) Content() string {
	return d.buffer.Text()
}

// IsDirty returns true if there are edits since the last load or save.
func (d *Document) IsDirty() bool {
	return d.dirty.Load()
}

// IsStale returns true if the backing file changed on disk since the last
// load or save.
func (d *Document) IsStale() bool {
	return d.stale.Load()
}

func (d *Document) markStale() {
	d.stale.Store(true)
}

// Save writes the buffer to the backing file. On failure the document
// stays dirty.
func (d *Document) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.path == "" {
		return NewOperationError("save", d.name, ErrNoPath)
	}

	perm := fs.FileMode(0o644)
	if info, err := os.Stat(d.path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(d.path, d.buffer.Bytes(), perm); err != nil {
		return ioError("save", d.path, err)
	}

	d.dirty.Store(false)
	d.stale.Store(false)
	return nil
}

// HasChanges compares the buffer with the backing file. An untitled
// document has changes when it is not empty; an unreadable file always
// counts as changed.
func (d *Document) HasChanges() bool {
	path := d.Path()
	if path == "" {
		return !d.buffer.IsEmpty()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	return !bytes.Equal(data, d.buffer.Bytes())
}

// close releases the buffer subscription.
func (d *Document) close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
}
