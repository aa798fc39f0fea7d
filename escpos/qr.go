package escpos

import (
	"github.com/limousyf/receipt-printer/ast"
	"github.com/limousyf/receipt-printer/errortypes"
)

// QR parameters are fixed: model 2, a 4-dot module, error correction level
// M.  qrCapacity is the binary-mode byte capacity of the largest model 2
// symbol at that level.
const (
	qrModel      = 50 // model 2
	qrModuleSize = 4
	qrECLevel    = 49 // level M
	qrCapacity   = 2331
)

func (e *emitter) qr(node *ast.TagNode) {
	var data = e.bodyText(node, "qr")
	if data == "" {
		e.errorf(&errortypes.ValidationError{Tag: "qr", Reason: "body must not be empty"})
	}
	if len(data) > qrCapacity {
		e.errorf(&errortypes.CapacityExceededError{Tag: "qr", Size: len(data), Limit: qrCapacity})
	}

	e.reconcile()
	e.qrFn(65, qrModel, 0)    // select model
	e.qrFn(67, qrModuleSize)  // module size
	e.qrFn(69, qrECLevel)     // error correction level
	e.qrStore(data)           // store data in the symbol buffer
	e.qrFn(81, 48)            // print the buffered symbol
}

// qrFn writes one GS ( k function of the QR command group (cn = 49).
func (e *emitter) qrFn(fn byte, args ...byte) {
	var n = len(args) + 2
	e.buf.Write([]byte{gs, '(', 'k', byte(n), byte(n >> 8), 49, fn})
	e.buf.Write(args)
}

func (e *emitter) qrStore(data string) {
	var n = len(data) + 3
	e.buf.Write([]byte{gs, '(', 'k', byte(n), byte(n >> 8), 49, 80, 48})
	e.buf.WriteString(data)
}
