// Package expand resolves a parsed template against render data, producing a
// tree that contains only literal text and tags.
//
// Substitutions are replaced by their resolved text, each blocks are
// unrolled into one copy of their body per collection element, and tag
// attribute values have any embedded substitutions resolved.  Expanding an
// already-expanded tree is a no-op.
package expand

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/limousyf/receipt-printer/ast"
	"github.com/limousyf/receipt-printer/data"
	"github.com/limousyf/receipt-printer/errortypes"
)

// Options control the expansion policy.
type Options struct {
	// Strict causes unresolved variables to fail with
	// *errortypes.UnresolvedVariableError.  By default they expand to the
	// empty string.
	Strict bool
}

// Apply expands the template tree against the given data under the default
// lenient policy.  The input tree and data are not modified.
func Apply(root *ast.ListNode, vars data.Map) (*ast.ListNode, error) {
	return ApplyWith(root, vars, Options{})
}

// ApplyWith expands the template tree against the given data.
func ApplyWith(root *ast.ListNode, vars data.Map, opts Options) (expanded *ast.ListNode, err error) {
	if vars == nil {
		vars = make(data.Map)
	}
	var s = &state{scope: scope{vars}, opts: opts}
	defer s.errRecover(&err)
	expanded = s.walkList(root)
	return expanded, nil
}

// state represents the state of an expansion.
type state struct {
	scope scope
	opts  Options
}

// errorf terminates the expansion with the given error.
func (s *state) errorf(err error) {
	panic(err)
}

// errRecover is the handler that turns panics into returns from the top
// level of ApplyWith.
func (s *state) errRecover(errp *error) {
	if e := recover(); e != nil {
		if _, ok := e.(runtime.Error); ok {
			panic(e)
		}
		*errp = e.(error)
	}
}

func (s *state) walkList(list *ast.ListNode) *ast.ListNode {
	var out = &ast.ListNode{Pos: list.Pos}
	for _, node := range list.Nodes {
		out.Nodes = append(out.Nodes, s.walk(node)...)
	}
	return out
}

func (s *state) walk(node ast.Node) []ast.Node {
	switch node := node.(type) {
	case *ast.TextNode:
		return []ast.Node{node}

	case *ast.VariableNode:
		var text = s.resolvePath(node.Path)
		if text == "" {
			return nil
		}
		return []ast.Node{&ast.TextNode{Pos: node.Pos, Text: text}}

	case *ast.EachNode:
		return s.walkEach(node)

	case *ast.TagNode:
		var out = &ast.TagNode{Pos: node.Pos, Kind: node.Kind}
		if node.Attrs != nil {
			out.Attrs = make(map[string]string, len(node.Attrs))
			for name, value := range node.Attrs {
				out.Attrs[name] = s.resolveAttr(value)
			}
		}
		if node.Body != nil {
			out.Body = s.walkList(node.Body)
		}
		return []ast.Node{out}

	default:
		s.errorf(fmt.Errorf("unknown node type %T", node))
		return nil
	}
}

// walkEach unrolls an each block into one expanded copy of its body per
// collection element, preserving collection order.
func (s *state) walkEach(node *ast.EachNode) []ast.Node {
	var val = s.scope.lookup(node.Collection)
	if _, ok := val.(data.Undefined); ok {
		if s.opts.Strict {
			s.errorf(&errortypes.UnresolvedVariableError{Path: node.Collection})
		}
		return nil
	}
	var list, ok = val.(data.List)
	if !ok {
		s.errorf(&errortypes.TypeError{Name: node.Collection, ExpectedKind: "list"})
	}

	var out []ast.Node
	for _, item := range list {
		s.scope.push()
		s.scope.set(".", item)
		if fields, ok := item.(data.Map); ok {
			for k, v := range fields {
				s.scope.set(k, v)
			}
		}
		out = append(out, s.walkList(node.Body).Nodes...)
		s.scope.pop()
	}
	return out
}

// resolvePath resolves a dotted path against the scope chain, deepest scope
// first.  Under the lenient policy a missing value resolves to "".
func (s *state) resolvePath(path string) string {
	var val data.Value
	if path == "." {
		val = s.scope.lookup(".")
	} else {
		var segments = strings.Split(path, ".")
		val = s.scope.lookup(segments[0])
		for _, segment := range segments[1:] {
			var m, ok = val.(data.Map)
			if !ok {
				val = data.Undefined{}
				break
			}
			val = m.Key(segment)
		}
	}
	if _, ok := val.(data.Undefined); ok {
		if s.opts.Strict {
			s.errorf(&errortypes.UnresolvedVariableError{Path: path})
		}
		return ""
	}
	return val.String()
}

// resolveAttr resolves {{...}} substitutions embedded in an attribute value.
func (s *state) resolveAttr(value string) string {
	if !strings.Contains(value, "{{") {
		return value
	}
	var b strings.Builder
	for {
		var start = strings.Index(value, "{{")
		if start == -1 {
			break
		}
		var end = strings.Index(value[start:], "}}")
		if end == -1 {
			break
		}
		b.WriteString(value[:start])
		b.WriteString(s.resolvePath(strings.TrimSpace(value[start+2 : start+end])))
		value = value[start+end+2:]
	}
	b.WriteString(value)
	return b.String()
}
