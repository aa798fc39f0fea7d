package escpos

import (
	"fmt"
	"strings"

	"github.com/limousyf/receipt-printer/ast"
	"github.com/limousyf/receipt-printer/errortypes"
)

// symbology describes one barcode type of the GS k function-B command set.
type symbology struct {
	code    byte   // GS k m value
	numeric bool   // data restricted to ASCII digits
	dataLen int    // required data length, 0 for variable
	evenLen bool   // data length must be even
	prefix  string // code set selector prepended to the data
}

var symbologies = map[string]symbology{
	"upca":    {code: 65, numeric: true, dataLen: 11},
	"ean13":   {code: 67, numeric: true, dataLen: 12},
	"ean8":    {code: 68, numeric: true, dataLen: 7},
	"code39":  {code: 69},
	"itf":     {code: 70, numeric: true, evenLen: true},
	"codabar": {code: 71},
	"code93":  {code: 72},
	"code128": {code: 73, prefix: "{B"},
}

// maxBarcodePayload is the one-byte length limit of the function-B command.
const maxBarcodePayload = 255

func (e *emitter) barcode(node *ast.TagNode) {
	var typ, ok = node.Attrs["type"]
	if !ok {
		e.errorf(&errortypes.ValidationError{Tag: "barcode", Attr: "type"})
	}
	var sym, known = symbologies[typ]
	if !known {
		e.errorf(&errortypes.UnsupportedFormatError{Tag: "barcode", Format: typ})
	}

	var data = e.bodyText(node, "barcode")
	if data == "" {
		e.errorf(&errortypes.ValidationError{Tag: "barcode", Reason: "body must not be empty"})
	}
	e.validateBarcodeData(typ, sym, data)

	var payload = data
	if sym.prefix != "" && !strings.HasPrefix(data, "{") {
		payload = sym.prefix + data
	}
	if len(payload) > maxBarcodePayload {
		e.errorf(&errortypes.CapacityExceededError{Tag: "barcode", Size: len(payload), Limit: maxBarcodePayload})
	}

	e.reconcile()
	e.buf.Write([]byte{gs, 'h', 80}) // height in dots
	e.buf.Write([]byte{gs, 'w', 2})  // module width
	e.buf.Write([]byte{gs, 'H', 2})  // HRI text below the bars
	e.buf.Write([]byte{gs, 'k', sym.code, byte(len(payload))})
	e.buf.WriteString(payload)
	e.buf.WriteByte(lf)
}

func (e *emitter) validateBarcodeData(typ string, sym symbology, data string) {
	if sym.numeric {
		for _, r := range data {
			if r < '0' || r > '9' {
				e.errorf(&errortypes.ValidationError{Tag: "barcode", Reason: typ + " data must be numeric"})
			}
		}
	} else {
		for _, r := range data {
			if r < 32 || r > 126 {
				e.errorf(&errortypes.ValidationError{Tag: "barcode", Reason: typ + " data must be printable ASCII"})
			}
		}
	}
	if sym.dataLen != 0 && len(data) != sym.dataLen {
		e.errorf(&errortypes.ValidationError{
			Tag:    "barcode",
			Reason: fmt.Sprintf("%s data must be exactly %d digits", typ, sym.dataLen),
		})
	}
	if sym.evenLen && len(data)%2 != 0 {
		e.errorf(&errortypes.ValidationError{Tag: "barcode", Reason: typ + " data must have an even number of digits"})
	}
}
