package ast

// TagKind enumerates the closed set of recognized bracket tags.  Tag names
// are validated at parse time, so the backends may dispatch on TagKind
// exhaustively.
type TagKind int

const (
	TagInvalid TagKind = iota

	// Formatting tags.  They take a body and restore the prior formatting
	// state on exit.
	TagCenter
	TagRight
	TagBold
	TagUnderline
	TagDoubleHeight
	TagDoubleWidth

	// Leaf commands.  They do not alter formatting state.
	TagLine
	TagFeed
	TagCut
	TagBarcode
	TagQR
	TagImage
)

var tagNames = map[TagKind]string{
	TagCenter:       "center",
	TagRight:        "right",
	TagBold:         "bold",
	TagUnderline:    "underline",
	TagDoubleHeight: "double-height",
	TagDoubleWidth:  "double-width",
	TagLine:         "line",
	TagFeed:         "feed",
	TagCut:          "cut",
	TagBarcode:      "barcode",
	TagQR:           "qr",
	TagImage:        "image",
}

var tagKindsByName = make(map[string]TagKind)

func init() {
	for kind, name := range tagNames {
		tagKindsByName[name] = kind
	}
}

// TagKindByName returns the kind for a tag name, or false if the name is not
// a recognized tag.
func TagKindByName(name string) (TagKind, bool) {
	var kind, ok = tagKindsByName[name]
	return kind, ok
}

func (k TagKind) String() string {
	if name, ok := tagNames[k]; ok {
		return name
	}
	return "invalid"
}

// Formatting returns true for tags that alter the formatting state for the
// duration of their body.
func (k TagKind) Formatting() bool {
	return TagCenter <= k && k <= TagDoubleWidth
}

// HasBody returns true for tags that enclose content and require a matching
// closing tag.
func (k TagKind) HasBody() bool {
	return k.Formatting() || k == TagBarcode || k == TagQR
}
