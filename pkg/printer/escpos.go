package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Font size
const (
	FontNormal = 0x00
	FontDouble = 0x11 // Double width + double height
	FontWide   = 0x10 // Double width only
	FontTall   = 0x01 // Double height only
)

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf   bytes.Buffer
	width int // print width in characters (32 for 58mm, 42 or 48 for 80mm)
}

// NewDocument creates a new ESC/POS document with the given character width.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = 32
	}
	d := &Document{width: charWidth}
	d.Init()
	return d
}

// Width returns the character width of a line.
func (d *Document) Width() int {
	return d.width
}

// Init sends the ESC @ (initialize printer) command.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// FeedLines sends n line feeds.
func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// SetAlign sets text alignment: AlignLeft, AlignCenter, AlignRight.
func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

// SetBold enables or disables bold text.
func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

// SetFontSize sets the character size. Use FontNormal, FontDouble, FontWide, or FontTall.
func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Beep sounds the kitchen buzzer n times where the printer has one.
func (d *Document) Beep(n int) *Document {
	d.buf.Write([]byte{ESC, 'B', byte(n), 2})
	return d
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.buf.WriteString(s)
	d.buf.WriteByte(LF)
	return d
}

// TextF writes a formatted line of text followed by a line feed.
func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Title prints a centered bold line and restores left alignment.
func (d *Document) Title(s string, size byte) *Document {
	d.SetAlign(AlignCenter).SetBold(true).SetFontSize(size)
	d.Text(s)
	return d.SetFontSize(FontNormal).SetBold(false).SetAlign(AlignLeft)
}

// Separator prints a full-width separator line.
func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// KeyValue prints a left-aligned key and right-aligned value on the same line.
func (d *Document) KeyValue(key, value string) *Document {
	spaces := d.width - runeLen(key) - runeLen(value)
	if spaces < 1 {
		spaces = 1
	}
	d.buf.WriteString(key)
	d.buf.WriteString(strings.Repeat(" ", spaces))
	d.buf.WriteString(value)
	d.buf.WriteByte(LF)
	return d
}

// KOTLine prints a kitchen line: quantity in a fixed column then the item name,
// wrapped under the name column when it does not fit.
func (d *Document) KOTLine(qty int, name string) *Document {
	prefix := fmt.Sprintf("%3d  ", qty)
	indent := strings.Repeat(" ", len(prefix))
	for i, part := range wrap(name, d.width-len(prefix)) {
		if i == 0 {
			d.Text(prefix + part)
		} else {
			d.Text(indent + part)
		}
	}
	return d
}

// BillLine prints a bill line with name, qty, rate and amount columns.
func (d *Document) BillLine(name string, qty int, rate, amount string) *Document {
	const qtyW, rateW, amtW = 4, 8, 9
	nameW := d.width - qtyW - rateW - amtW
	if nameW < 6 {
		// Narrow paper: name on its own line
		d.Text(truncate(name, d.width))
		return d.KeyValue(fmt.Sprintf("  %d x %s", qty, rate), amount)
	}
	parts := wrap(name, nameW)
	d.TextF("%-*s%*d%*s%*s", nameW, parts[0], qtyW, qty, rateW, rate, amtW, amount)
	for _, part := range parts[1:] {
		d.Text(part)
	}
	return d
}

// Cut sends the paper cut command (full cut).
func (d *Document) Cut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x00})
	return d
}

// Bytes returns the accumulated ESC/POS byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func truncate(s string, width int) string {
	if width <= 0 || runeLen(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}

// wrap splits s on spaces into lines of at most width runes. Words longer
// than width are cut.
func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 || width <= 0 {
		return []string{s}
	}
	var lines []string
	line := ""
	for _, word := range words {
		word = truncate(word, width)
		switch {
		case line == "":
			line = word
		case runeLen(line)+1+runeLen(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	return append(lines, line)
}
