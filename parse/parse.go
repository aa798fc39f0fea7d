// Package parse converts receipt template markup into its in-memory
// representation (AST).
package parse

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/limousyf/receipt-printer/ast"
	"github.com/limousyf/receipt-printer/errortypes"
)

// tree is the parsed representation of a single template.
type tree struct {
	name      string   // name provided for the input
	text      string   // the full input text
	lex       *lexer   // lexer provides a sequence of tokens
	token     [2]item  // two-token lookahead
	peekCount int      // how many tokens have we backed up?
	open      []string // names of open blocks, innermost last ("each" for each blocks)
}

// Template parses the input into an AST.  The name is used only in error
// messages.  Malformed markup is reported as *errortypes.SyntaxError.
func Template(name, text string) (node *ast.ListNode, err error) {
	var t = &tree{
		name: name,
		text: text,
		lex:  lex(name, text),
	}
	defer t.recover(&err)
	node = t.itemList()
	t.lex = nil
	return node, nil
}

// itemList:
//
//	(text | tag | substitution | each)*
//
// Terminates at EOF at the top level, or at the closing tag of the innermost
// open block.
func (t *tree) itemList() *ast.ListNode {
	var list = &ast.ListNode{Pos: t.peek().pos}
	for {
		switch token := t.next(); token.typ {
		case itemEOF:
			if n := len(t.open); n > 0 {
				t.errorf(token.pos, "unexpected end of template: unclosed %s", openName(t.open[n-1]))
			}
			return list

		case itemText:
			var text = token.val
			for t.peek().typ == itemText {
				text += t.next().val
			}
			list.Nodes = append(list.Nodes, &ast.TextNode{Pos: token.pos, Text: text})

		case itemLeftDelim:
			list.Nodes = append(list.Nodes, t.parseTag(token))

		case itemCloseLeftDelim:
			var name = t.expect(itemIdent, "closing tag")
			t.expect(itemRightDelim, "closing tag")
			t.closeBlock(name.pos, name.val)
			return list

		case itemLeftMustache:
			var node, halt = t.parseMustache(token)
			if halt {
				return list
			}
			if node != nil {
				list.Nodes = append(list.Nodes, node)
			}

		default:
			t.unexpected(token, "input")
		}
	}
}

// parseTag parses an opening bracket tag.  The [ has already been read.
func (t *tree) parseTag(open item) ast.Node {
	var name = t.expect(itemIdent, "tag")
	var kind, ok = ast.TagKindByName(name.val)
	if !ok {
		t.errorf(name.pos, "unknown tag [%s]", name.val)
	}
	var attrs, selfClosing = t.parseAttrs(name.val)

	if selfClosing {
		if kind.HasBody() {
			t.errorf(open.pos, "[%s] encloses content and requires a [/%s] closing tag", name.val, name.val)
		}
		return &ast.TagNode{Pos: open.pos, Kind: kind, Attrs: attrs}
	}
	if !kind.HasBody() {
		return &ast.TagNode{Pos: open.pos, Kind: kind, Attrs: attrs}
	}

	t.open = append(t.open, name.val)
	var body = t.itemList()
	t.open = t.open[:len(t.open)-1]
	return &ast.TagNode{Pos: open.pos, Kind: kind, Attrs: attrs, Body: body}
}

// parseAttrs parses name="value" pairs until the end of the tag.  It reports
// whether the tag was self-closing.
func (t *tree) parseAttrs(tagName string) (map[string]string, bool) {
	var attrs map[string]string
	for {
		switch token := t.next(); token.typ {
		case itemRightDelim:
			return attrs, false
		case itemSelfRightDelim:
			return attrs, true
		case itemIdent:
			t.expect(itemEquals, "attribute")
			var quoted = t.expect(itemString, "attribute")
			var value, err = unquoteAttr(quoted.val)
			if err != nil {
				t.errorf(quoted.pos, "bad value for attribute %q of [%s]: %s", token.val, tagName, err)
			}
			if _, ok := attrs[token.val]; ok {
				t.errorf(token.pos, "duplicate attribute %q on [%s]", token.val, tagName)
			}
			if attrs == nil {
				attrs = make(map[string]string)
			}
			attrs[token.val] = value
		default:
			t.unexpected(token, fmt.Sprintf("tag [%s]", tagName))
		}
	}
}

// parseMustache parses the contents of a {{...}} construct.  The {{ has
// already been read.  halt is true when the construct closes the innermost
// each block.
func (t *tree) parseMustache(open item) (node ast.Node, halt bool) {
	switch token := t.next(); token.typ {
	case itemVariable:
		t.expect(itemRightMustache, "substitution")
		return &ast.VariableNode{Pos: open.pos, Path: token.val}, false

	case itemEach:
		var collection = t.expect(itemVariable, "each block")
		if strings.Contains(collection.val, ".") || collection.val == "." {
			t.errorf(collection.pos, "each target must be a plain name, found %q", collection.val)
		}
		t.expect(itemRightMustache, "each block")
		t.open = append(t.open, "each")
		var body = t.itemList()
		t.open = t.open[:len(t.open)-1]
		return &ast.EachNode{Pos: open.pos, Collection: collection.val, Body: body}, false

	case itemEachEnd:
		t.expect(itemRightMustache, "each block")
		t.closeBlock(token.pos, "each")
		return nil, true

	default:
		t.unexpected(token, "substitution")
	}
	return nil, false
}

// closeBlock validates that the given closing construct matches the
// innermost open block.
func (t *tree) closeBlock(pos ast.Pos, name string) {
	if len(t.open) == 0 {
		t.errorf(pos, "unexpected closing %s with no open block", openName(name))
	}
	if top := t.open[len(t.open)-1]; top != name {
		t.errorf(pos, "mismatched closing tag: expected %s, found %s", closeName(top), closeName(name))
	}
}

func openName(name string) string {
	if name == "each" {
		return "{{#each}}"
	}
	return "[" + name + "]"
}

func closeName(name string) string {
	if name == "each" {
		return "{{/each}}"
	}
	return "[/" + name + "]"
}

// Token plumbing -------------------------------------------------------------

// next returns the next token.
func (t *tree) next() item {
	if t.peekCount > 0 {
		t.peekCount--
	} else {
		t.token[0] = t.fetch()
	}
	return t.token[t.peekCount]
}

// backup backs the input stream up one token.
func (t *tree) backup() {
	t.peekCount++
}

// peek returns but does not consume the next token.
func (t *tree) peek() item {
	if t.peekCount > 0 {
		return t.token[t.peekCount-1]
	}
	t.peekCount = 1
	t.token[0] = t.fetch()
	return t.token[0]
}

// fetch reads the next token from the lexer, converting scan errors into a
// terminating parse error.
func (t *tree) fetch() item {
	var token = t.lex.nextItem()
	if token.typ == itemError {
		t.errorf(token.pos, "%s", token.val)
	}
	return token
}

// expect consumes the next token and guarantees it has the required type.
func (t *tree) expect(expected itemType, context string) item {
	token := t.next()
	if token.typ != expected {
		t.unexpected(token, context)
	}
	return token
}

// unexpected complains about the token and terminates processing.
func (t *tree) unexpected(token item, context string) {
	t.errorf(token.pos, "unexpected %v in %s", token, context)
}

// errorf formats the error and terminates processing.
func (t *tree) errorf(pos ast.Pos, format string, args ...interface{}) {
	var line = 1 + strings.Count(t.text[:pos], "\n")
	var n = strings.LastIndex(t.text[:pos], "\n")
	if n == -1 {
		n = 0
	}
	panic(errortypes.NewSyntaxErrorf(t.name, line, int(pos)-n, format, args...))
}

// recover is the handler that turns panics into returns from the top level
// of Template.
func (t *tree) recover(errp *error) {
	if e := recover(); e != nil {
		if _, ok := e.(runtime.Error); ok {
			panic(e)
		}
		if t != nil {
			t.lex = nil
		}
		*errp = e.(error)
	}
}
