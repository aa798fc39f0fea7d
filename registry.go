package receipt

import (
	"fmt"
	"sort"

	"github.com/limousyf/receipt-printer/escpos"
	"github.com/limousyf/receipt-printer/preview"
)

// Registry holds compiled templates by name.
type Registry struct {
	templates map[string]*Template
}

// Add adds a template to the registry.  Adding a second template under the
// same name is an error.
func (r *Registry) Add(t *Template) error {
	if r.templates == nil {
		r.templates = make(map[string]*Template)
	}
	if _, ok := r.templates[t.Name()]; ok {
		return fmt.Errorf("template %q already registered", t.Name())
	}
	r.templates[t.Name()] = t
	return nil
}

// Template returns the named template, or nil if none is registered.
func (r *Registry) Template(name string) *Template {
	return r.templates[name]
}

// Names returns the sorted names of all registered templates.
func (r *Registry) Names() []string {
	var names = make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderBytes renders the named template to an ESC/POS command stream.
func (r *Registry) RenderBytes(name string, vars map[string]interface{}, cfg escpos.Config) ([]byte, error) {
	var t = r.Template(name)
	if t == nil {
		return nil, fmt.Errorf("template %q not found", name)
	}
	return t.RenderBytes(vars, cfg)
}

// RenderPreview renders the named template to preview text.
func (r *Registry) RenderPreview(name string, vars map[string]interface{}, cfg preview.Config) (string, error) {
	var t = r.Template(name)
	if t == nil {
		return "", fmt.Errorf("template %q not found", name)
	}
	return t.RenderPreview(vars, cfg)
}
