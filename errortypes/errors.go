// Package errortypes defines the errors produced while parsing, expanding,
// and rendering receipt templates.
package errortypes

import "fmt"

// SyntaxError reports malformed template markup, with the position where the
// problem was found.
type SyntaxError struct {
	Name      string // name given to the template input, for error messages
	Line, Col int
	Msg       string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Name, e.Line, e.Col, e.Msg)
}

// NewSyntaxErrorf creates a SyntaxError at the given position.
func NewSyntaxErrorf(name string, line, col int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Name: name, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// UnresolvedVariableError reports a variable reference that could not be
// resolved against the provided data, under the strict expansion policy.
type UnresolvedVariableError struct {
	Path string // the dotted path as written in the template
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("unresolved variable {{%s}}", e.Path)
}

// TypeError reports a value whose kind does not match how the template uses
// it, e.g. a scalar used as the target of an each block.
type TypeError struct {
	Name         string // the variable name as written in the template
	ExpectedKind string // e.g. "list"
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("variable %q is not a %s", e.Name, e.ExpectedKind)
}

// ValidationError reports a tag that is structurally valid markup but cannot
// be rendered, e.g. a required attribute is missing or its value is
// unusable.
type ValidationError struct {
	Tag    string
	Attr   string // the offending attribute, if the problem is a specific one
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Attr != "" && e.Reason == "" {
		return fmt.Sprintf("[%s] requires a %q attribute", e.Tag, e.Attr)
	}
	if e.Attr != "" {
		return fmt.Sprintf("[%s] attribute %q: %s", e.Tag, e.Attr, e.Reason)
	}
	return fmt.Sprintf("[%s]: %s", e.Tag, e.Reason)
}

// UnsupportedFormatError reports a barcode symbology that the encoder does
// not support.
type UnsupportedFormatError struct {
	Tag    string
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("[%s] does not support format %q", e.Tag, e.Format)
}

// CapacityExceededError reports data too large to encode in the requested
// symbol.
type CapacityExceededError struct {
	Tag   string
	Size  int // bytes of data provided
	Limit int // maximum encodable bytes
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("[%s] data is %d bytes, exceeding the %d byte capacity", e.Tag, e.Size, e.Limit)
}
