/*
Package receipt renders bracket-tag receipt templates to ESC/POS command
streams for thermal printers, or to a plain-text preview.

A template is text with formatting tags and mustache substitutions:

	[center][bold]{{store}}[/bold][/center]
	[line]
	{{#each items}}{{name}}  {{price}}
	{{/each}}
	[line char="="]
	[qr]{{url}}[/qr]
	[cut]

Rendering is a three-stage pipeline: parse the source into a tree, expand
the tree against the render data (unrolling each blocks and resolving
substitutions), then walk the expanded tree with one of the two backends.
The escpos backend produces printer bytes; the preview backend produces
aligned plain text.

	t, err := receipt.Parse("order", src)
	if err != nil { ... }
	out, err := t.RenderBytes(map[string]interface{}{
		"store": "CORNER CAFE",
		"items": items,
		"url":   "https://example.com/r/123",
	}, escpos.Config{})

The transport package delivers the bytes to a printer over TCP or a serial
line.  Bundle collects template files and can watch them for changes,
recompiling on edit.
*/
package receipt
