package parse

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/limousyf/receipt-printer/ast"
	"github.com/limousyf/receipt-printer/errortypes"
)

type parseTest struct {
	name  string
	input string
	tree  *ast.ListNode
}

func tList(nodes ...ast.Node) *ast.ListNode {
	return &ast.ListNode{Nodes: nodes}
}

func tText(text string) *ast.TextNode {
	return &ast.TextNode{Text: text}
}

func tVar(path string) *ast.VariableNode {
	return &ast.VariableNode{Path: path}
}

func tEach(collection string, nodes ...ast.Node) *ast.EachNode {
	return &ast.EachNode{Collection: collection, Body: tList(nodes...)}
}

func tLeaf(kind ast.TagKind, attrs map[string]string) *ast.TagNode {
	return &ast.TagNode{Kind: kind, Attrs: attrs}
}

func tTag(kind ast.TagKind, attrs map[string]string, nodes ...ast.Node) *ast.TagNode {
	return &ast.TagNode{Kind: kind, Attrs: attrs, Body: tList(nodes...)}
}

var parseTests = []parseTest{
	{"empty", "", tList()},
	{"text", "Hello world!", tList(tText("Hello world!"))},
	{"multiline text", "one\ntwo\n", tList(tText("one\ntwo\n"))},
	{"literal brackets in text", "a ] b }} c", tList(tText("a ] b }} c"))},

	{"substitution", "{{name}}", tList(tVar("name"))},
	{"dotted substitution", "{{customer.address.city}}", tList(tVar("customer.address.city"))},
	{"dot substitution", "{{.}}", tList(tVar("."))},
	{"substitution with spaces", "{{ name }}", tList(tVar("name"))},
	{"text around substitution", "Hello {{name}}!", tList(tText("Hello "), tVar("name"), tText("!"))},

	{"formatting tag", "[bold]Hi[/bold]", tList(tTag(ast.TagBold, nil, tText("Hi")))},
	{"empty formatting tag", "[bold][/bold]", tList(tTag(ast.TagBold, nil))},
	{"nested formatting tags", "[center][bold]Hi[/bold][/center]",
		tList(tTag(ast.TagCenter, nil, tTag(ast.TagBold, nil, tText("Hi"))))},
	{"substitution in tag body", "[underline]{{name}}[/underline]",
		tList(tTag(ast.TagUnderline, nil, tVar("name")))},

	{"leaf tag", "[cut]", tList(tLeaf(ast.TagCut, nil))},
	{"self-closing leaf tag", "[cut/]", tList(tLeaf(ast.TagCut, nil))},
	{"leaf tag with attribute", `[feed n="3"]`, tList(tLeaf(ast.TagFeed, map[string]string{"n": "3"}))},
	{"self-closing with attribute", `[line char="=" /]`, tList(tLeaf(ast.TagLine, map[string]string{"char": "="}))},
	{"multiple attributes", `[cut partial="true" /]`, tList(tLeaf(ast.TagCut, map[string]string{"partial": "true"}))},
	{"escaped attribute value", `[line char="\""]`, tList(tLeaf(ast.TagLine, map[string]string{"char": `"`}))},

	{"barcode", `[barcode type="code128"]12345[/barcode]`,
		tList(tTag(ast.TagBarcode, map[string]string{"type": "code128"}, tText("12345")))},
	{"qr with substitution", "[qr]{{url}}[/qr]", tList(tTag(ast.TagQR, nil, tVar("url")))},
	{"attribute substitution", `[image src="{{logo}}"]`,
		tList(tLeaf(ast.TagImage, map[string]string{"src": "{{logo}}"}))},

	{"each", "{{#each items}}{{name}}{{/each}}", tList(tEach("items", tVar("name")))},
	{"each with dot", "{{#each lines}}{{.}}\n{{/each}}",
		tList(tEach("lines", tVar("."), tText("\n")))},
	{"each containing tag", "{{#each items}}[bold]{{name}}[/bold]{{/each}}",
		tList(tEach("items", tTag(ast.TagBold, nil, tVar("name"))))},
	{"nested each", "{{#each orders}}{{#each items}}{{.}}{{/each}}{{/each}}",
		tList(tEach("orders", tEach("items", tVar("."))))},

	{"receipt", "[center][bold]{{store}}[/bold][/center]\n[line]\n{{#each items}}{{name}}\n{{/each}}[cut]",
		tList(
			tTag(ast.TagCenter, nil, tTag(ast.TagBold, nil, tVar("store"))),
			tText("\n"),
			tLeaf(ast.TagLine, nil),
			tText("\n"),
			tEach("items", tVar("name"), tText("\n")),
			tLeaf(ast.TagCut, nil),
		)},
}

func TestParse(t *testing.T) {
	for _, test := range parseTests {
		tree, err := Template(test.name, test.input)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if !eqTree(tree, test.tree) {
			t.Errorf("%s=(%q): got\n\t%v\nexpected\n\t%v", test.name, test.input, tree, test.tree)
		}
	}
}

var parseErrorTests = []struct {
	name  string
	input string
	msg   string // substring expected in the error
}{
	{"unknown tag", "[blink]x[/blink]", "unknown tag [blink]"},
	{"mismatched close", "[center][bold]Hi[/center]", "expected [/bold], found [/center]"},
	{"each closed by tag", "{{#each items}}x[/bold]", "expected {{/each}}, found [/bold]"},
	{"tag closed by each end", "[bold]x{{/each}}", "expected [/bold], found {{/each}}"},
	{"unclosed tag", "[bold]x", "unclosed [bold]"},
	{"unclosed each", "{{#each items}}x", "unclosed {{#each}}"},
	{"close without open", "x[/bold]", "no open block"},
	{"self-closed body tag", "[bold/]", "requires a [/bold] closing tag"},
	{"duplicate attribute", `[line char="-" char="="]`, `duplicate attribute "char"`},
	{"unquoted attribute", "[feed n=2]", "unexpected"},
	{"newline in attribute", "[line char=\"-\n\"]", "unterminated attribute value"},
	{"bad escape", `[line char="\q"]`, "unrecognized escape"},
	{"unterminated substitution", "{{name", "unclosed"},
	{"dotted each target", "{{#each a.b}}x{{/each}}", "plain name"},
	{"dot each target", "{{#each .}}x{{/each}}", "plain name"},
}

func TestParseErrors(t *testing.T) {
	for _, test := range parseErrorTests {
		var _, err = Template(test.name, test.input)
		if err == nil {
			t.Errorf("%s: expected error, got none", test.name)
			continue
		}
		var syntaxErr *errortypes.SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Errorf("%s: expected *errortypes.SyntaxError, got %T", test.name, err)
			continue
		}
		if !strings.Contains(err.Error(), test.msg) {
			t.Errorf("%s: error %q does not contain %q", test.name, err, test.msg)
		}
	}
}

func TestErrorPosition(t *testing.T) {
	var _, err = Template("pos", "line one\nline two [oops]")
	var syntaxErr *errortypes.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *errortypes.SyntaxError, got %v", err)
	}
	if syntaxErr.Line != 2 {
		t.Errorf("expected error on line 2, got line %d", syntaxErr.Line)
	}
	if syntaxErr.Name != "pos" {
		t.Errorf("expected template name in error, got %q", syntaxErr.Name)
	}
}

// TestStringRoundTrip checks that the tree prints back as equivalent
// source by reparsing the printed form.
func TestStringRoundTrip(t *testing.T) {
	for _, test := range parseTests {
		tree, err := Template(test.name, test.input)
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		reparsed, err := Template(test.name, tree.String())
		if err != nil {
			t.Errorf("%s: reparsing %q: %v", test.name, tree.String(), err)
			continue
		}
		if !eqTree(reparsed, tree) {
			t.Errorf("%s: round trip changed the tree:\n\t%v\n\t%v", test.name, tree, reparsed)
		}
	}
}

func eqTree(actual, expected ast.Node) bool {
	if reflect.TypeOf(actual) != reflect.TypeOf(expected) {
		return false
	}

	switch actual := actual.(type) {
	case *ast.ListNode:
		return eqNodes(actual.Nodes, expected.(*ast.ListNode).Nodes)
	case *ast.TextNode:
		return actual.Text == expected.(*ast.TextNode).Text
	case *ast.VariableNode:
		return actual.Path == expected.(*ast.VariableNode).Path
	case *ast.EachNode:
		return actual.Collection == expected.(*ast.EachNode).Collection &&
			eqTree(actual.Body, expected.(*ast.EachNode).Body)
	case *ast.TagNode:
		var other = expected.(*ast.TagNode)
		if actual.Kind != other.Kind || !eqAttrs(actual.Attrs, other.Attrs) {
			return false
		}
		if (actual.Body == nil) != (other.Body == nil) {
			return false
		}
		if actual.Body == nil {
			return true
		}
		return eqTree(actual.Body, other.Body)
	}

	panic(fmt.Sprintf("type not implemented: %#v", actual))
}

func eqNodes(actual, expected []ast.Node) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range actual {
		if !eqTree(actual[i], expected[i]) {
			return false
		}
	}
	return true
}

func eqAttrs(actual, expected map[string]string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for name, value := range expected {
		if actual[name] != value {
			return false
		}
	}
	return true
}
