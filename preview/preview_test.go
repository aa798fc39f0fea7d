package preview

import (
	"testing"

	"github.com/andreyvit/diff"

	"github.com/limousyf/receipt-printer/data"
	"github.com/limousyf/receipt-printer/expand"
	"github.com/limousyf/receipt-printer/parse"
)

func render(t *testing.T, src string, vars map[string]interface{}, cfg Config) string {
	t.Helper()
	tree, err := parse.Template("test", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var d data.Map
	if vars != nil {
		d = data.New(vars).(data.Map)
	}
	expanded, err := expand.Apply(tree, d)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	return Emit(expanded, cfg)
}

type previewTest struct {
	name     string
	input    string
	vars     map[string]interface{}
	expected string
}

var previewTests = []previewTest{
	{"plain text", "hello\n", nil, "hello\n"},
	{"trailing text gets its line", "hello", nil, "hello\n"},
	{"blank lines survive", "a\n\nb\n", nil, "a\n\nb\n"},

	{"centered", "[center]HI[/center]\n", nil, "    HI\n"},
	{"right aligned", "[right]R[/right]\n", nil, "         R\n"},
	{"alignment change flushes the line", "a[center]b[/center]\n", nil, "a\n    b\n"},
	{"bold markers", "[bold]B[/bold] ok\n", nil, "*B* ok\n"},
	{"underline markers", "[underline]u[/underline]\n", nil, "_u_\n"},
	{"bold underline nest", "[bold][underline]x[/underline][/bold]\n", nil, "_*x*_\n"},

	{"line", "[line]", nil, "----------\n"},
	{"line custom char", `[line char="="]`, nil, "==========\n"},
	{"line bad char falls back", `[line char="ab"]`, nil, "----------\n"},
	{"centered line", "[center][line][/center]", nil, "----------\n"},
	{"feed", `x[feed n="2"]y`, nil, "x\n\n\ny\n"},
	{"feed bad count falls back", `x[feed n="zero"]y`, nil, "x\n\ny\n"},
	{"cut", "[cut]", nil, "--- CUT ---\n"},

	{"barcode placeholder", `[barcode type="ean8"]1234567[/barcode]`, nil, "[BARCODE:ean8:1234567]\n"},
	{"barcode defaults to code128", "[barcode]123[/barcode]", nil, "[BARCODE:code128:123]\n"},
	{"qr placeholder", "[qr]https://x[/qr]", nil, "[QR:https://x]\n"},
	{"image placeholder", `[image src="logo.png"]`, nil,
		"################\n################\n################\n"},
}

func TestPreview(t *testing.T) {
	for _, test := range previewTests {
		var actual = render(t, test.input, test.vars, Config{Width: 10})
		if actual != test.expected {
			t.Errorf("%s: result differs (expected, then actual):\n%s",
				test.name, diff.LineDiff(test.expected, actual))
		}
	}
}

func TestReceiptPreview(t *testing.T) {
	var src = "[center][bold]{{store}}[/bold][/center]\n" +
		"[line]\n" +
		"{{#each items}}{{name}} {{price}}\n" +
		"{{/each}}" +
		"[line char=\"=\"]" +
		"[right]TOTAL {{total}}[/right]\n" +
		"[cut]"
	var vars = map[string]interface{}{
		"store": "CAFE",
		"total": "7.00",
		"items": []interface{}{
			map[string]interface{}{"name": "tea", "price": "3.00"},
			map[string]interface{}{"name": "scone", "price": "4.00"},
		},
	}
	// The newline after [line] is literal text, so it shows up as a blank
	// line, exactly as the binary backend would feed one.
	var expected = "" +
		"      *CAFE*\n" +
		"------------------\n" +
		"\n" +
		"tea 3.00\n" +
		"scone 4.00\n" +
		"==================\n" +
		"        TOTAL 7.00\n" +
		"--- CUT ---\n"
	var actual = render(t, src, vars, Config{Width: 18})
	if actual != expected {
		t.Errorf("result differs (expected, then actual):\n%s", diff.LineDiff(expected, actual))
	}
}

// Encoding limits are the binary backend's concern; preview must render
// oversized or unknown content as-is.
func TestPreviewNeverFails(t *testing.T) {
	var big = make([]byte, 5000)
	for i := range big {
		big[i] = 'x'
	}
	var out = render(t, "[qr]{{data}}[/qr]", map[string]interface{}{"data": string(big)}, Config{})
	if len(out) == 0 {
		t.Error("expected placeholder output for oversized QR data")
	}
	out = render(t, `[barcode type="nope"]123[/barcode]`, nil, Config{})
	if out != "[BARCODE:nope:123]\n" {
		t.Errorf("expected placeholder for unknown symbology, got %q", out)
	}
}
