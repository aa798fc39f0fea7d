package escpos

import "golang.org/x/text/encoding/charmap"

// Codepage selects the character table used to encode text for the printer.
// The zero value is code page 437, the power-on default of most ESC/POS
// firmware.
type Codepage int

const (
	CP437 Codepage = iota // USA, standard Europe
	CP850                 // multilingual
	CP858                 // multilingual with euro sign
)

func (c Codepage) charmap() *charmap.Charmap {
	switch c {
	case CP850:
		return charmap.CodePage850
	case CP858:
		return charmap.CodePage858
	}
	return charmap.CodePage437
}

// selectCode is the argument to the ESC t character-table command.
func (c Codepage) selectCode() byte {
	switch c {
	case CP850:
		return 2
	case CP858:
		return 19
	}
	return 0
}

// encode converts text to printer bytes.  Runes with no mapping in the code
// page are replaced with '?'.
func (c Codepage) encode(s string) []byte {
	var cm = c.charmap()
	var out = make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := cm.EncodeRune(r); ok {
			out = append(out, b)
		} else {
			out = append(out, '?')
		}
	}
	return out
}
