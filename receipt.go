package receipt

import (
	"github.com/limousyf/receipt-printer/ast"
	"github.com/limousyf/receipt-printer/data"
	"github.com/limousyf/receipt-printer/escpos"
	"github.com/limousyf/receipt-printer/expand"
	"github.com/limousyf/receipt-printer/parse"
	"github.com/limousyf/receipt-printer/preview"
)

// Template is a parsed receipt template, ready to render.  It is immutable
// and safe for concurrent renders.
type Template struct {
	name string
	root *ast.ListNode
}

// Parse compiles template source.  The name is used in error messages only.
func Parse(name, src string) (*Template, error) {
	root, err := parse.Template(name, src)
	if err != nil {
		return nil, err
	}
	return &Template{name: name, root: root}, nil
}

// Name returns the name the template was parsed under.
func (t *Template) Name() string { return t.name }

// Expand resolves the template against the given data, returning a tree of
// literal text and tags.  Use it with escpos.Emit or preview.Emit directly
// when the render policy needs to differ from the defaults.
func (t *Template) Expand(vars map[string]interface{}, opts expand.Options) (*ast.ListNode, error) {
	return expand.ApplyWith(t.root, asDataMap(vars), opts)
}

// RenderBytes renders the template to an ESC/POS command stream under the
// default lenient policy for unresolved variables.
func (t *Template) RenderBytes(vars map[string]interface{}, cfg escpos.Config) ([]byte, error) {
	expanded, err := expand.Apply(t.root, asDataMap(vars))
	if err != nil {
		return nil, err
	}
	return escpos.Emit(expanded, cfg)
}

// RenderPreview renders the template to plain preview text under the
// default lenient policy for unresolved variables.
func (t *Template) RenderPreview(vars map[string]interface{}, cfg preview.Config) (string, error) {
	expanded, err := expand.Apply(t.root, asDataMap(vars))
	if err != nil {
		return "", err
	}
	return preview.Emit(expanded, cfg), nil
}

// RenderBytes parses and renders src in one step.
func RenderBytes(src string, vars map[string]interface{}, cfg escpos.Config) ([]byte, error) {
	t, err := Parse("template", src)
	if err != nil {
		return nil, err
	}
	return t.RenderBytes(vars, cfg)
}

// RenderPreview parses and renders src to preview text in one step.
func RenderPreview(src string, vars map[string]interface{}, cfg preview.Config) (string, error) {
	t, err := Parse("template", src)
	if err != nil {
		return "", err
	}
	return t.RenderPreview(vars, cfg)
}

func asDataMap(vars map[string]interface{}) data.Map {
	if vars == nil {
		return make(data.Map)
	}
	return data.New(vars).(data.Map)
}
