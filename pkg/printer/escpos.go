package printer

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	esc = 0x1B
	gs  = 0x1D
	lf  = 0x0A
)

// Alignment values for Align.
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Character sizes for Size.
const (
	SizeNormal = 0x00
	SizeDouble = 0x11
)

// Document accumulates an ESC/POS byte stream. Width is the paper width in
// characters: 32 for 58mm rolls, 48 for 80mm.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument starts a document with the printer initialise command.
func NewDocument(width int) *Document {
	if width <= 0 {
		width = 32
	}
	d := &Document{width: width}
	d.buf.Write([]byte{esc, '@'})
	return d
}

// Width returns the configured line width.
func (d *Document) Width() int { return d.width }

func (d *Document) Align(a int) *Document {
	d.buf.Write([]byte{esc, 'a', byte(a)})
	return d
}

func (d *Document) Bold(on bool) *Document {
	var b byte
	if on {
		b = 1
	}
	d.buf.Write([]byte{esc, 'E', b})
	return d
}

func (d *Document) Size(s byte) *Document {
	d.buf.Write([]byte{gs, '!', s})
	return d
}

// Line writes s followed by a line feed, truncated to the paper width.
func (d *Document) Line(s string) *Document {
	if len(s) > d.width {
		s = s[:d.width]
	}
	d.buf.WriteString(s)
	d.buf.WriteByte(lf)
	return d
}

func (d *Document) Linef(format string, args ...any) *Document {
	return d.Line(fmt.Sprintf(format, args...))
}

// Rule prints a full-width line of ch.
func (d *Document) Rule(ch byte) *Document {
	return d.Line(strings.Repeat(string(ch), d.width))
}

// Pair prints left and right on one line, padding between them. The left
// side is shortened when both do not fit.
func (d *Document) Pair(left, right string) *Document {
	room := d.width - len(right) - 1
	if room < 1 {
		room = 1
	}
	if len(left) > room {
		left = left[:room]
	}
	pad := d.width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	return d.Line(left + strings.Repeat(" ", pad) + right)
}

func (d *Document) Feed(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(lf)
	}
	return d
}

// Cut issues a partial paper cut.
func (d *Document) Cut() *Document {
	d.buf.Write([]byte{gs, 'V', 0x01})
	return d
}

func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}
