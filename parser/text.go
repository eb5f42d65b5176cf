// Copyright © 2026 The Tcpos Authors under an MIT-style license.

package parser

import "github.com/eaburns/tcpos/loc"

// A TextBuffer is a cursor over an in-memory source text. The cursor
// only moves forward through Next, except through SetPos, which
// restores a previously saved position exactly.
type TextBuffer struct {
	text string
	pos  loc.Pos
}

// NewTextBuffer returns a buffer positioned at the start of text.
func NewTextBuffer(text string) *TextBuffer {
	return &TextBuffer{text: text, pos: loc.Start()}
}

// Text returns the whole source text.
func (b *TextBuffer) Text() string { return b.text }

// Byte returns the byte at the cursor, or 0 at the end of the text.
func (b *TextBuffer) Byte() byte {
	if b.AtEnd() {
		return 0
	}
	return b.text[b.pos.Off]
}

// Next advances the cursor over one byte.
func (b *TextBuffer) Next() {
	if !b.AtEnd() {
		b.pos = b.pos.Next(b.text[b.pos.Off])
	}
}

// AtEnd reports whether the cursor is at the end of the text.
func (b *TextBuffer) AtEnd() bool { return b.pos.Off >= len(b.text) }

// Pos returns the cursor.
func (b *TextBuffer) Pos() loc.Pos { return b.pos }

// SetPos restores a position previously returned by Pos.
func (b *TextBuffer) SetPos(p loc.Pos) { b.pos = p }
