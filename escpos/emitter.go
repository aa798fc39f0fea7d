// Package escpos compiles an expanded template tree into an ESC/POS command
// stream for thermal receipt printers.
//
// Formatting control bytes are emitted lazily: a command is written only
// when a formatting flag differs from the state the printer was last told
// about, immediately before content that needs it.  A render either
// succeeds completely or returns an error with no bytes; the caller never
// receives a truncated command stream.
package escpos

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/limousyf/receipt-printer/ast"
	"github.com/limousyf/receipt-printer/errortypes"
	"github.com/limousyf/receipt-printer/format"
	"github.com/limousyf/receipt-printer/imaging"
)

const (
	esc = 0x1b
	gs  = 0x1d
	lf  = 0x0a
)

// ImageSource resolves the src attribute of an [image] tag into a decoded
// monochrome bitmap.  The emitter treats the bitmap as read-only.
type ImageSource func(src string) (*imaging.Bitmap, error)

// Config carries the printer parameters for one render.  The zero value is
// usable: 48 columns, code page 437, no initialization preamble.
type Config struct {
	Width    int         // print width in characters; 0 means 48
	Codepage Codepage    // character table for text bytes
	Init     bool        // start the stream with ESC @ and ESC t
	Images   ImageSource // resolves [image] tags; nil fails any [image] tag
}

func (c Config) width() int {
	if c.Width <= 0 {
		return 48
	}
	return c.Width
}

// Emit compiles the expanded tree into ESC/POS bytes.  The tree must not
// contain unexpanded substitutions or each blocks.
func Emit(root *ast.ListNode, cfg Config) (out []byte, err error) {
	var e = &emitter{
		cfg:     cfg,
		cur:     format.Default(),
		emitted: format.Default(),
	}
	defer e.errRecover(&err)
	if cfg.Init {
		e.buf.Write([]byte{esc, '@'})
		e.buf.Write([]byte{esc, 't', cfg.Codepage.selectCode()})
	}
	e.walk(root)
	// Leave the printer in the default state for the next job.
	e.reconcile()
	return e.buf.Bytes(), nil
}

// emitter holds the state of one render.
type emitter struct {
	buf     bytes.Buffer
	cfg     Config
	cur     format.State // formatting in effect at the walk position
	emitted format.State // formatting the printer was last told about
	stack   format.Stack
}

// errorf terminates the render with the given error.
func (e *emitter) errorf(err error) {
	panic(err)
}

// errRecover is the handler that turns panics into returns from the top
// level of Emit.
func (e *emitter) errRecover(errp *error) {
	if r := recover(); r != nil {
		if _, ok := r.(runtime.Error); ok {
			panic(r)
		}
		*errp = r.(error)
	}
}

func (e *emitter) walk(node ast.Node) {
	switch node := node.(type) {
	case *ast.ListNode:
		for _, n := range node.Nodes {
			e.walk(n)
		}
	case *ast.TextNode:
		e.text(node.Text)
	case *ast.TagNode:
		e.tag(node)
	default:
		e.errorf(fmt.Errorf("unexpanded node in render input: %T", node))
	}
}

func (e *emitter) tag(node *ast.TagNode) {
	if node.Kind.Formatting() {
		e.stack.Push(e.cur)
		e.cur = e.cur.Enter(node.Kind)
		if node.Body != nil {
			e.walk(node.Body)
		}
		e.cur = e.stack.Pop()
		return
	}

	switch node.Kind {
	case ast.TagLine:
		e.line(node)
	case ast.TagFeed:
		e.feed(node)
	case ast.TagCut:
		e.cut(node)
	case ast.TagBarcode:
		e.barcode(node)
	case ast.TagQR:
		e.qr(node)
	case ast.TagImage:
		e.image(node)
	default:
		e.errorf(fmt.Errorf("unhandled tag kind %v", node.Kind))
	}
}

func (e *emitter) text(text string) {
	if text == "" {
		return
	}
	e.reconcile()
	e.buf.Write(e.cfg.Codepage.encode(text))
}

// reconcile emits the control bytes needed to bring the printer from the
// last emitted formatting state to the current one.
func (e *emitter) reconcile() {
	if e.emitted.Align != e.cur.Align {
		e.buf.Write([]byte{esc, 'a', byte(e.cur.Align)})
	}
	if e.emitted.Bold != e.cur.Bold {
		e.buf.Write([]byte{esc, 'E', flag(e.cur.Bold)})
	}
	if e.emitted.Underline != e.cur.Underline {
		e.buf.Write([]byte{esc, '-', flag(e.cur.Underline)})
	}
	if e.emitted.Width != e.cur.Width || e.emitted.Height != e.cur.Height {
		e.buf.Write([]byte{gs, '!', byte((e.cur.Width-1)<<4 | (e.cur.Height - 1))})
	}
	e.emitted = e.cur
}

func flag(on bool) byte {
	if on {
		return 1
	}
	return 0
}

func (e *emitter) line(node *ast.TagNode) {
	var char = node.Attr("char", "-")
	if utf8.RuneCountInString(char) != 1 {
		e.errorf(&errortypes.ValidationError{Tag: "line", Attr: "char", Reason: "must be a single character"})
	}
	e.reconcile()
	e.buf.Write(e.cfg.Codepage.encode(strings.Repeat(char, e.cfg.width())))
	e.buf.WriteByte(lf)
}

func (e *emitter) feed(node *ast.TagNode) {
	var n, err = strconv.Atoi(node.Attr("n", "1"))
	if err != nil || n < 1 {
		e.errorf(&errortypes.ValidationError{Tag: "feed", Attr: "n", Reason: "must be a positive integer"})
	}
	for i := 0; i < n; i++ {
		e.buf.WriteByte(lf)
	}
}

func (e *emitter) cut(node *ast.TagNode) {
	var mode byte
	switch node.Attr("partial", "false") {
	case "false":
		mode = 0
	case "true":
		mode = 1
	default:
		e.errorf(&errortypes.ValidationError{Tag: "cut", Attr: "partial", Reason: `must be "true" or "false"`})
	}
	// Feed before cutting so the printed content clears the cutter.
	e.buf.Write([]byte{lf, lf, lf, lf})
	e.buf.Write([]byte{gs, 'V', mode})
}

func (e *emitter) image(node *ast.TagNode) {
	var src, ok = node.Attrs["src"]
	if !ok || src == "" {
		e.errorf(&errortypes.ValidationError{Tag: "image", Attr: "src"})
	}
	if e.cfg.Images == nil {
		e.errorf(&errortypes.ValidationError{Tag: "image", Reason: "no image source configured"})
	}
	var bm, err = e.cfg.Images(src)
	if err != nil {
		e.errorf(fmt.Errorf("loading image %q: %w", src, err))
	}
	e.raster(bm)
}

// bodyText flattens the tag body into its literal text.
func (e *emitter) bodyText(node *ast.TagNode, tag string) string {
	if node.Body == nil {
		return ""
	}
	var b strings.Builder
	for _, n := range node.Body.Nodes {
		var text, ok = n.(*ast.TextNode)
		if !ok {
			e.errorf(&errortypes.ValidationError{Tag: tag, Reason: "body must be plain text"})
		}
		b.WriteString(text.Text)
	}
	return b.String()
}
