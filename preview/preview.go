// Package preview renders an expanded template tree as plain text, showing
// the layout a receipt will have without talking to a printer.
//
// It drives the same formatting state machine as the binary backend but
// approximates the result: alignment becomes padding within a fixed column
// width, bold and underline become bracketing markers, and barcode, QR and
// image tags become placeholder lines.  Preview output is advisory, so it
// is deterministic and never fails; malformed attributes fall back to their
// defaults instead of erroring.
package preview

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/limousyf/receipt-printer/ast"
	"github.com/limousyf/receipt-printer/format"
)

// Config carries the layout parameters for one preview.
type Config struct {
	Width int // column width in characters; 0 means 48
}

func (c Config) width() int {
	if c.Width <= 0 {
		return 48
	}
	return c.Width
}

// Emit renders the expanded tree as preview text.
func Emit(root *ast.ListNode, cfg Config) string {
	var p = &previewer{width: cfg.width(), cur: format.Default()}
	p.walk(root)
	p.flush()
	return p.out.String()
}

type previewer struct {
	out   strings.Builder
	line  strings.Builder // content of the line being assembled
	align format.Alignment // alignment of the buffered line
	width int
	cur   format.State
	stack format.Stack
}

func (p *previewer) walk(node ast.Node) {
	switch node := node.(type) {
	case *ast.ListNode:
		for _, n := range node.Nodes {
			p.walk(n)
		}
	case *ast.TextNode:
		p.text(node.Text)
	case *ast.TagNode:
		p.tag(node)
	}
}

func (p *previewer) tag(node *ast.TagNode) {
	if node.Kind.Formatting() {
		p.stack.Push(p.cur)
		p.cur = p.cur.Enter(node.Kind)
		if node.Body != nil {
			p.walk(node.Body)
		}
		p.cur = p.stack.Pop()
		return
	}

	switch node.Kind {
	case ast.TagLine:
		var char = node.Attr("char", "-")
		if utf8.RuneCountInString(char) != 1 {
			char = "-"
		}
		p.row(strings.Repeat(char, p.width))
	case ast.TagFeed:
		var n, err = strconv.Atoi(node.Attr("n", "1"))
		if err != nil || n < 1 {
			n = 1
		}
		p.flush()
		for i := 0; i < n; i++ {
			p.out.WriteByte('\n')
		}
	case ast.TagCut:
		p.row("--- CUT ---")
	case ast.TagBarcode:
		p.row("[BARCODE:" + node.Attr("type", "code128") + ":" + p.bodyText(node) + "]")
	case ast.TagQR:
		p.row("[QR:" + p.bodyText(node) + "]")
	case ast.TagImage:
		for i := 0; i < 3; i++ {
			p.row(strings.Repeat("#", 16))
		}
	}
}

func (p *previewer) text(text string) {
	for {
		var i = strings.IndexByte(text, '\n')
		if i == -1 {
			break
		}
		p.segment(text[:i])
		p.newline()
		text = text[i+1:]
	}
	p.segment(text)
}

// segment appends one newline-free run of text to the buffered line,
// wrapped in the markers for the formatting in effect.
func (p *previewer) segment(text string) {
	if text == "" {
		return
	}
	// A buffered line keeps the alignment it started with.
	if p.line.Len() > 0 && p.align != p.cur.Align {
		p.flush()
	}
	if p.line.Len() == 0 {
		p.align = p.cur.Align
	}
	if p.cur.Bold {
		text = "*" + text + "*"
	}
	if p.cur.Underline {
		text = "_" + text + "_"
	}
	p.line.WriteString(text)
}

// row emits s as a complete line under the current alignment.
func (p *previewer) row(s string) {
	p.flush()
	p.align = p.cur.Align
	p.line.WriteString(s)
	p.flush()
}

// newline ends the buffered line, emitting a blank line when nothing is
// buffered.
func (p *previewer) newline() {
	if p.line.Len() == 0 {
		p.out.WriteByte('\n')
		return
	}
	p.flush()
}

// flush pads and emits the buffered line, if any.
func (p *previewer) flush() {
	if p.line.Len() == 0 {
		return
	}
	var s = p.line.String()
	p.line.Reset()
	if pad := p.width - utf8.RuneCountInString(s); pad > 0 {
		switch p.align {
		case format.AlignCenter:
			s = strings.Repeat(" ", pad/2) + s
		case format.AlignRight:
			s = strings.Repeat(" ", pad) + s
		}
	}
	p.out.WriteString(s)
	p.out.WriteByte('\n')
}

// bodyText flattens a tag body into its literal text, ignoring anything
// that is not text.
func (p *previewer) bodyText(node *ast.TagNode) string {
	if node.Body == nil {
		return ""
	}
	var b strings.Builder
	for _, n := range node.Body.Nodes {
		if text, ok := n.(*ast.TextNode); ok {
			b.WriteString(text.Text)
		}
	}
	return b.String()
}
