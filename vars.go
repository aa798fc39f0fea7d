package receipt

import (
	"sort"
	"strings"

	"github.com/limousyf/receipt-printer/ast"
)

// Variables returns the sorted top-level data names the template refers
// to: the first segment of every substitution path plus every each
// collection.  Names resolved inside each bodies come from the collection
// elements and are not reported.
func (t *Template) Variables() []string {
	var names = make(map[string]bool)
	collectVars(t.root, 0, names)

	var out = make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectVars(node ast.Node, eachDepth int, names map[string]bool) {
	switch node := node.(type) {
	case *ast.ListNode:
		for _, n := range node.Nodes {
			collectVars(n, eachDepth, names)
		}
	case *ast.VariableNode:
		if eachDepth == 0 && node.Path != "." {
			names[firstSegment(node.Path)] = true
		}
	case *ast.EachNode:
		names[node.Collection] = true
		collectVars(node.Body, eachDepth+1, names)
	case *ast.TagNode:
		if eachDepth == 0 {
			for _, value := range node.Attrs {
				collectAttrVars(value, names)
			}
		}
		if node.Body != nil {
			collectVars(node.Body, eachDepth, names)
		}
	}
}

// collectAttrVars scans an attribute value for {{...}} substitutions.
func collectAttrVars(value string, names map[string]bool) {
	for {
		var start = strings.Index(value, "{{")
		if start == -1 {
			return
		}
		var end = strings.Index(value[start:], "}}")
		if end == -1 {
			return
		}
		var path = strings.TrimSpace(value[start+2 : start+end])
		if path != "" && path != "." {
			names[firstSegment(path)] = true
		}
		value = value[start+end+2:]
	}
}

func firstSegment(path string) string {
	if i := strings.IndexByte(path, '.'); i != -1 {
		return path[:i]
	}
	return path
}
