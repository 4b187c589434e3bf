// Package buffer holds the editable text of a resume alongside the
// extraction it started from.
//
// A Buffer is Clean while current == original and Dirty otherwise.
// SetCurrent moves it to (or keeps it in) Dirty unless the new text happens
// to equal the original; Reset always returns it to Clean.
package buffer

import "sync"

// ExportFilename is the fixed download name for exported text.
const ExportFilename = "resume.txt"

// ExportContentType is the MIME type of ExportBytes output.
const ExportContentType = "text/plain; charset=utf-8"

// Buffer is safe for concurrent use.
type Buffer struct {
	mu       sync.RWMutex
	current  string
	original string
}

// New creates a Buffer whose current and original text are both initial.
func New(initial string) *Buffer {
	return &Buffer{current: initial, original: initial}
}

// Current returns the edited text.
func (b *Buffer) Current() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// Original returns the text the buffer was created with.
func (b *Buffer) Original() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.original
}

// SetCurrent replaces the edited text. Content is free-form and not validated.
func (b *Buffer) SetCurrent(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = text
}

// Reset discards all edits.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.original
}

// IsDirty reports whether the edited text differs from the original.
func (b *Buffer) IsDirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current != b.original
}

// ExportBytes encodes the current text as UTF-8 without a byte-order mark.
// It returns a fresh slice on every call and never changes the buffer.
func (b *Buffer) ExportBytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return []byte(b.current)
}
