package parse

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/limousyf/receipt-printer/ast"
)

// Lexer design from text/template

// Tokens ---------------------------------------------------------------------

// item represents a token or text string returned from the scanner.
type item struct {
	typ itemType // The type of this item.
	pos ast.Pos  // The starting position, in bytes, of this item in the input string.
	val string   // The value of this item.
}

func (i item) String() string {
	switch {
	case i.typ == itemEOF:
		return "EOF"
	case i.typ == itemError:
		return i.val
	case len(i.val) > 10:
		return fmt.Sprintf("%.10q...", i.val)
	}
	return fmt.Sprintf("%q", i.val)
}

// itemType identifies the type of lexical items.
type itemType int

// All items.
const (
	itemError itemType = iota // error occurred; value is text of error
	itemEOF                   // EOF

	itemText // plain text outside of any tag

	// Bracket tags
	itemLeftDelim      // [
	itemCloseLeftDelim // [/
	itemRightDelim     // ]
	itemSelfRightDelim // /]
	itemIdent          // tag or attribute name
	itemEquals         // =
	itemString         // double-quoted attribute value, including quotes

	// Mustache substitutions
	itemLeftMustache  // {{
	itemRightMustache // }}
	itemVariable      // dotted variable path, or "."
	itemEach          // #each
	itemEachEnd       // /each
)

const eof = -1

// stateFn represents the state of the lexer as a function that returns the
// next state.
type stateFn func(*lexer) stateFn

// lexer holds the state of the lexical scanning.
//
// Based on the lexer from the "text/template" package.
// See http://www.youtube.com/watch?v=HxaD_trXwRE
type lexer struct {
	name  string    // the name of the input; used only during errors.
	input string    // the string being scanned.
	state stateFn   // the next lexing function to enter.
	pos   ast.Pos   // current position in the input.
	start ast.Pos   // start position of this item.
	width int       // width of last rune read from input.
	items chan item // channel of scanned items.
}

// nextItem returns the next item from the input.
func (l *lexer) nextItem() item {
	return <-l.items
}

// lex creates a new scanner for the input string.
func lex(name, input string) *lexer {
	l := &lexer{
		name:  name,
		input: input,
		items: make(chan item),
		state: lexText,
	}
	go l.run()
	return l
}

// run runs the state machine for the lexer.
func (l *lexer) run() {
	for l.state != nil {
		l.state = l.state(l)
	}
	close(l.items)
}

// next returns the next rune in the input.
func (l *lexer) next() (r rune) {
	if l.pos >= ast.Pos(len(l.input)) {
		l.width = 0
		return eof
	}
	r, l.width = utf8.DecodeRuneInString(l.input[int(l.pos):])
	l.pos += ast.Pos(l.width)
	return r
}

// peek returns but does not consume the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// backup steps back one rune. Can only be called once per call of next.
func (l *lexer) backup() {
	l.pos -= ast.Pos(l.width)
}

// emit passes an item back to the client.
func (l *lexer) emit(t itemType) {
	l.items <- item{t, l.start, l.input[l.start:l.pos]}
	l.start = l.pos
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.start = l.pos
}

// acceptWord consumes the given word if it appears next in the input and is
// not followed by an identifier character.
func (l *lexer) acceptWord(word string) bool {
	if !strings.HasPrefix(l.input[int(l.pos):], word) {
		return false
	}
	if rest := l.input[int(l.pos)+len(word):]; rest != "" {
		r, _ := utf8.DecodeRuneInString(rest)
		if isIdentRune(r) {
			return false
		}
	}
	l.pos += ast.Pos(len(word))
	return true
}

// lineNumber reports which line we're on. Doing it this way
// means we don't have to worry about peek double counting.
func (l *lexer) lineNumber(pos ast.Pos) int {
	return 1 + strings.Count(l.input[:pos], "\n")
}

// columnNumber reports which column in the current line we're on.
func (l *lexer) columnNumber(pos ast.Pos) int {
	n := strings.LastIndex(l.input[:pos], "\n")
	if n == -1 {
		n = 0
	}
	return int(pos) - n
}

// errorf returns an error item and terminates the scan by passing
// back a nil pointer that will be the next state, terminating l.nextItem.
func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.items <- item{itemError, l.pos, fmt.Sprintf(format, args...)}
	return nil
}

// State functions ------------------------------------------------------------

// lexText scans literal text until a bracket tag or mustache substitution
// begins.
func lexText(l *lexer) stateFn {
	for {
		if strings.HasPrefix(l.input[int(l.pos):], "{{") {
			if l.pos > l.start {
				l.emit(itemText)
			}
			return lexLeftMustache
		}
		switch r := l.next(); r {
		case eof:
			if l.pos > l.start {
				l.emit(itemText)
			}
			l.emit(itemEOF)
			return nil
		case '[':
			l.backup()
			if l.pos > l.start {
				l.emit(itemText)
			}
			return lexLeftDelim
		}
	}
}

// lexLeftDelim scans the tag opener, distinguishing [ from [/.
func lexLeftDelim(l *lexer) stateFn {
	l.next() // consume the [
	if l.peek() == '/' {
		l.next()
		l.emit(itemCloseLeftDelim)
	} else {
		l.emit(itemLeftDelim)
	}
	return lexTagName
}

// lexTagName scans the tag name directly after [ or [/.
func lexTagName(l *lexer) stateFn {
	r := l.next()
	if !unicode.IsLetter(r) {
		return l.errorf("expected tag name after [, found %#U", r)
	}
	for {
		r = l.next()
		if !isTagNameRune(r) {
			l.backup()
			break
		}
	}
	l.emit(itemIdent)
	return lexInsideTag
}

// lexInsideTag is called repeatedly to scan attributes and the tag closer.
func lexInsideTag(l *lexer) stateFn {
	switch r := l.next(); {
	case r == eof || r == '\n':
		return l.errorf("unclosed tag")
	case isSpace(r):
		l.ignore()
	case r == ']':
		l.emit(itemRightDelim)
		return lexText
	case r == '/':
		if l.next() != ']' {
			return l.errorf("expected ] after / in tag")
		}
		l.emit(itemSelfRightDelim)
		return lexText
	case r == '=':
		l.emit(itemEquals)
	case r == '"':
		return lexAttrValue
	case unicode.IsLetter(r):
		for isTagNameRune(l.peek()) {
			l.next()
		}
		l.emit(itemIdent)
	default:
		return l.errorf("unexpected %#U in tag", r)
	}
	return lexInsideTag
}

// lexAttrValue scans a double-quoted attribute value.  The opening quote has
// already been read.
func lexAttrValue(l *lexer) stateFn {
	for {
		switch l.next() {
		case '\\':
			if l.next() == eof {
				return l.errorf("unterminated attribute value")
			}
		case '"':
			l.emit(itemString)
			return lexInsideTag
		case eof, '\n':
			return l.errorf("unterminated attribute value")
		}
	}
}

// lexLeftMustache scans the {{ opener.
func lexLeftMustache(l *lexer) stateFn {
	l.pos += 2
	l.emit(itemLeftMustache)
	return lexInsideMustache
}

// lexInsideMustache scans the contents of a {{...}} construct.
func lexInsideMustache(l *lexer) stateFn {
	switch r := l.next(); {
	case r == eof:
		return l.errorf("unclosed {{")
	case isSpace(r):
		l.ignore()
		return lexInsideMustache
	case r == '}':
		if l.next() != '}' {
			return l.errorf("expected }} to close substitution")
		}
		l.emit(itemRightMustache)
		return lexText
	case r == '#':
		if !l.acceptWord("each") {
			return l.errorf("expected #each")
		}
		l.emit(itemEach)
		return lexInsideMustache
	case r == '/':
		if !l.acceptWord("each") {
			return l.errorf("expected /each")
		}
		l.emit(itemEachEnd)
		return lexInsideMustache
	case r == '.':
		// "." alone refers to the current each element.
		l.emit(itemVariable)
		return lexInsideMustache
	case isIdentRune(r):
		return lexPath
	default:
		return l.errorf("unexpected %#U in substitution", r)
	}
}

// lexPath scans a dotted variable path.  The first rune has already been
// read.
func lexPath(l *lexer) stateFn {
	for {
		r := l.next()
		if isIdentRune(r) {
			continue
		}
		if r == '.' {
			if !isIdentRune(l.peek()) {
				return l.errorf("expected identifier after . in variable path")
			}
			continue
		}
		l.backup()
		break
	}
	l.emit(itemVariable)
	return lexInsideMustache
}

// Helpers --------------------------------------------------------------------

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isTagNameRune(r rune) bool {
	return r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
