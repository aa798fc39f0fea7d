// Package data provides the value model that templates are rendered against.
// A value is one of the enumerated types; there is no reflective attribute
// access at render time.
package data

import (
	"sort"
	"strconv"
	"strings"
)

// Value represents a render data value, which may be one of the enumerated
// types.
type Value interface {
	// String formats this value for printing on a receipt.
	String() string
}

// Value types
type (
	Undefined struct{}
	Bool      bool
	Int       int64
	Float     float64
	String    string
	List      []Value
	Map       map[string]Value
)

// Index retrieves a value from this list, or Undefined if out of bounds.
func (v List) Index(i int) Value {
	if !(0 <= i && i < len(v)) {
		return Undefined{}
	}
	return v[i]
}

// Key retrieves a value under the named key, or Undefined if it doesn't
// exist.
func (v Map) Key(k string) Value {
	var result, ok = v[k]
	if !ok {
		return Undefined{}
	}
	return result
}

// String ----------

func (v Undefined) String() string { return "" }
func (v Bool) String() string      { return strconv.FormatBool(bool(v)) }
func (v Int) String() string       { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string     { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v String) String() string    { return string(v) }

func (v List) String() string {
	var items = make([]string, len(v))
	for i, item := range v {
		items[i] = item.String()
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func (v Map) String() string {
	var keys = make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var items = make([]string, len(keys))
	for i, k := range keys {
		items[i] = k + ": " + v[k].String()
	}
	return "{" + strings.Join(items, ", ") + "}"
}
