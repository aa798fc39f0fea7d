package escpos

import "github.com/limousyf/receipt-printer/imaging"

// raster prints a bitmap with the GS v 0 raster command.  Rows are packed
// MSB first, eight pixels per byte, with the final byte of each row
// zero-padded when the width is not a multiple of eight.
func (e *emitter) raster(bm *imaging.Bitmap) {
	e.reconcile()

	var widthBytes = (bm.Width + 7) / 8
	e.buf.Write([]byte{gs, 'v', '0', 0})
	e.buf.Write([]byte{byte(widthBytes), byte(widthBytes >> 8)})
	e.buf.Write([]byte{byte(bm.Height), byte(bm.Height >> 8)})

	var row = make([]byte, widthBytes)
	for y := 0; y < bm.Height; y++ {
		for i := range row {
			row[i] = 0
		}
		for x := 0; x < bm.Width; x++ {
			if bm.Black(x, y) {
				row[x/8] |= 0x80 >> (x % 8)
			}
		}
		e.buf.Write(row)
	}
	e.buf.WriteByte(lf)
}
