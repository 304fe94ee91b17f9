package receipt

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultWidth is the character width of 58mm thermal paper.
const DefaultWidth = 32

// Document builds a fixed-width plain-text receipt line by line. It is the
// text analogue of an ESC/POS document builder: the output is printable on a
// thermal printer as-is, and equally readable as a .txt artifact.
type Document struct {
	b     strings.Builder
	width int
}

// NewDocument creates a document with the given character width.
func NewDocument(width int) *Document {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Document{width: width}
}

// Width returns the document's character width.
func (d *Document) Width() int {
	return d.width
}

// Line writes a left-aligned line.
func (d *Document) Line(s string) *Document {
	d.b.WriteString(s)
	d.b.WriteByte('\n')
	return d
}

// Linef writes a formatted left-aligned line.
func (d *Document) Linef(format string, args ...interface{}) *Document {
	return d.Line(fmt.Sprintf(format, args...))
}

// Blank writes an empty line.
func (d *Document) Blank() *Document {
	d.b.WriteByte('\n')
	return d
}

// Center writes a line centered within the document width. When the leftover
// space is odd, the extra space goes to the right.
func (d *Document) Center(s string) *Document {
	if len(s) >= d.width {
		return d.Line(s)
	}
	left := (d.width - len(s)) / 2
	right := d.width - len(s) - left
	d.b.WriteString(strings.Repeat(" ", left))
	d.b.WriteString(s)
	d.b.WriteString(strings.Repeat(" ", right))
	d.b.WriteByte('\n')
	return d
}

// Rule writes a full-width separator line of the given character.
func (d *Document) Rule(char byte) *Document {
	return d.Line(strings.Repeat(string(char), d.width))
}

// Right writes a line right-aligned within the document width.
func (d *Document) Right(s string) *Document {
	if len(s) >= d.width {
		return d.Line(s)
	}
	d.b.WriteString(strings.Repeat(" ", d.width-len(s)))
	d.b.WriteString(s)
	d.b.WriteByte('\n')
	return d
}

// KeyValue writes a left-aligned key and right-aligned value on one line,
// separated by at least one space.
func (d *Document) KeyValue(key, value string) *Document {
	spaces := d.width - len(key) - len(value)
	if spaces < 1 {
		spaces = 1
	}
	d.b.WriteString(key)
	d.b.WriteString(strings.Repeat(" ", spaces))
	d.b.WriteString(value)
	d.b.WriteByte('\n')
	return d
}

// String returns the accumulated receipt text.
func (d *Document) String() string {
	return d.b.String()
}

// FormatWhole renders a whole-unit amount with thousands separators, the
// compact numeric style used on receipts.
func FormatWhole(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Truncate cuts s to at most max characters, replacing the tail with "..."
// when a cut happens.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
