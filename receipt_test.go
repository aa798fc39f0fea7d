package receipt

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limousyf/receipt-printer/errortypes"
	"github.com/limousyf/receipt-printer/escpos"
	"github.com/limousyf/receipt-printer/expand"
	"github.com/limousyf/receipt-printer/preview"
)

const orderTemplate = "[center][bold]{{store}}[/bold][/center]\n" +
	"{{#each items}}{{name}} {{price}}\n{{/each}}" +
	"[right]TOTAL {{total}}[/right]\n"

var orderVars = map[string]interface{}{
	"store": "CORNER CAFE",
	"total": "7.00",
	"items": []interface{}{
		map[string]interface{}{"name": "tea", "price": "3.00"},
		map[string]interface{}{"name": "scone", "price": "4.00"},
	},
}

func TestRenderBytes(t *testing.T) {
	out, err := RenderBytes("[bold]{{x}}[/bold]", map[string]interface{}{"x": "5"}, escpos.Config{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1b, 'E', 1, '5', 0x1b, 'E', 0}, out)
}

func TestRenderPreview(t *testing.T) {
	out, err := RenderPreview(orderTemplate, orderVars, preview.Config{Width: 20})
	require.NoError(t, err)
	assert.Equal(t, ""+
		"   *CORNER CAFE*\n"+
		"tea 3.00\n"+
		"scone 4.00\n"+
		"          TOTAL 7.00\n", out)
}

func TestTemplateIsReusable(t *testing.T) {
	tmpl, err := Parse("order", orderTemplate)
	require.NoError(t, err)

	first, err := tmpl.RenderBytes(orderVars, escpos.Config{})
	require.NoError(t, err)
	second, err := tmpl.RenderBytes(orderVars, escpos.Config{})
	require.NoError(t, err)
	assert.Equal(t, first, second, "renders of the same template and data must be identical")

	// A different data set renders independently.
	other, err := tmpl.RenderBytes(map[string]interface{}{"store": "OTHER"}, escpos.Config{})
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	_, err := Parse("bad", "[center][bold]Hi[/center]")
	require.Error(t, err)
	var syntaxErr *errortypes.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Contains(t, err.Error(), "[/bold]")
	assert.Contains(t, err.Error(), "[/center]")
}

func TestStrictRender(t *testing.T) {
	tmpl, err := Parse("strict", "Hello {{name}}!")
	require.NoError(t, err)

	_, err = tmpl.Expand(nil, expand.Options{Strict: true})
	var unresolved *errortypes.UnresolvedVariableError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "name", unresolved.Path)

	expanded, err := tmpl.Expand(map[string]interface{}{"name": "Ada"}, expand.Options{Strict: true})
	require.NoError(t, err)
	out, err := escpos.Emit(expanded, escpos.Config{})
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello Ada!"), out)
}

func TestVariables(t *testing.T) {
	tmpl, err := Parse("vars", orderTemplate)
	require.NoError(t, err)
	assert.Equal(t, []string{"items", "store", "total"}, tmpl.Variables())

	tmpl, err = Parse("vars", `[image src="{{logo}}"]{{a.b}}{{a.c}}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "logo"}, tmpl.Variables())
}

func TestRegistry(t *testing.T) {
	var registry Registry
	order, err := Parse("order", orderTemplate)
	require.NoError(t, err)
	require.NoError(t, registry.Add(order))

	assert.EqualError(t, registry.Add(order), `template "order" already registered`)
	assert.Nil(t, registry.Template("missing"))
	assert.Equal(t, []string{"order"}, registry.Names())

	out, err := registry.RenderBytes("order", orderVars, escpos.Config{})
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = registry.RenderBytes("missing", nil, escpos.Config{})
	assert.EqualError(t, err, `template "missing" not found`)
}

func TestBundleCompile(t *testing.T) {
	registry, err := NewBundle().
		AddTemplateString("order", orderTemplate).
		AddTemplateString("cut", "[cut]").
		Compile()
	require.NoError(t, err)
	assert.Equal(t, []string{"cut", "order"}, registry.Names())

	_, err = NewBundle().AddTemplateString("bad", "[bold]x").Compile()
	require.Error(t, err)
}

func TestBundleTemplateDir(t *testing.T) {
	var dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "order.receipt"), []byte(orderTemplate), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	registry, err := NewBundle().AddTemplateDir(dir).Compile()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "order.receipt")}, registry.Names())
}

func TestBundleWatchRecompiles(t *testing.T) {
	var dir = t.TempDir()
	var path = filepath.Join(dir, "order.receipt")
	require.NoError(t, os.WriteFile(path, []byte("before {{x}}"), 0644))

	var recompiled = make(chan *Registry, 1)
	var bundle = NewBundle().
		WatchFiles(true).
		AddTemplateFile(path).
		SetRecompilationCallback(func(r *Registry) {
			select {
			case recompiled <- r:
			default:
			}
		})
	defer bundle.Close()

	registry, err := bundle.Compile()
	require.NoError(t, err)
	out, err := registry.RenderPreview(path, map[string]interface{}{"x": "1"}, preview.Config{})
	require.NoError(t, err)
	assert.Equal(t, "before 1\n", out)

	require.NoError(t, os.WriteFile(path, []byte("after {{x}}"), 0644))

	select {
	case updated := <-recompiled:
		out, err = updated.RenderPreview(path, map[string]interface{}{"x": "1"}, preview.Config{})
		require.NoError(t, err)
		assert.Equal(t, "after 1\n", out)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for recompilation")
	}
}
