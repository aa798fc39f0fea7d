package data

import (
	"fmt"
	"reflect"
	"time"
	"unicode"
	"unicode/utf8"
)

var timeType = reflect.TypeOf(time.Time{})

// TimeFormat is the layout used when converting time.Time values.
var TimeFormat = "2006-01-02 15:04"

// New converts the given value into render data.  Scalars become the
// corresponding scalar type, slices become Lists, maps and structs become
// Maps (struct field names are converted to lowerCamel).  It panics on types
// with no data representation, such as channels or functions.
func New(value interface{}) Value {
	// quick return if we're passed an existing data.Value
	if val, ok := value.(Value); ok {
		return val
	}

	if value == nil {
		return Undefined{}
	}

	// drill through pointers and interfaces to the underlying type
	var v = reflect.ValueOf(value)
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if !v.IsValid() {
		return Undefined{}
	}

	if v.Type() == timeType {
		return String(v.Interface().(time.Time).Format(TimeFormat))
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(v.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(v.Float())
	case reflect.Bool:
		return Bool(v.Bool())
	case reflect.String:
		return String(v.String())
	case reflect.Slice, reflect.Array:
		var list = make(List, v.Len())
		for i := 0; i < v.Len(); i++ {
			list[i] = New(v.Index(i).Interface())
		}
		return list
	case reflect.Map:
		var m = make(Map)
		for _, key := range v.MapKeys() {
			if key.Kind() != reflect.String {
				panic("map keys must be strings")
			}
			m[key.String()] = New(v.MapIndex(key).Interface())
		}
		return m
	case reflect.Struct:
		return structMap(v)
	default:
		panic(fmt.Errorf("unexpected data type: %T (%v)", value, value))
	}
}

func structMap(v reflect.Value) Map {
	var m = make(Map)
	var valType = v.Type()
	for i := 0; i < valType.NumField(); i++ {
		if !v.Field(i).CanInterface() {
			continue
		}
		var key = valType.Field(i).Name
		var firstRune, size = utf8.DecodeRuneInString(key)
		key = string(unicode.ToLower(firstRune)) + key[size:]
		m[key] = New(v.Field(i).Interface())
	}
	return m
}
