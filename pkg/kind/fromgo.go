// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kind

import (
	"fmt"
	"math"
	"reflect"
	"time"
)

// Enumerated is implemented by Go enum types that want to be exposed as an
// enumeration. Members must be callable on the zero value.
type Enumerated interface {
	Members() []string
}

var (
	timeType       = reflect.TypeFor[time.Time]()
	durationType   = reflect.TypeFor[time.Duration]()
	setType        = reflect.TypeFor[Set]()
	enumeratedType = reflect.TypeFor[Enumerated]()
)

// FromGo maps a Go type onto a declaration. Types with no command-line
// representation map to Opaque so that Resolve rejects them.
func FromGo(t reflect.Type) Type {
	if t == nil {
		return Untyped
	}
	switch t {
	case timeType:
		return DateTime
	case durationType:
		return Duration
	case setType:
		return SetType
	}
	if t.Implements(enumeratedType) {
		e := reflect.Zero(t).Interface().(Enumerated)
		return Enum(t.Name(), e.Members()...)
	}
	switch t.Kind() {
	case reflect.String:
		return String
	case reflect.Int:
		return Int
	case reflect.Uint:
		return IntOf(0, true)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntOf(t.Bits(), false)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return IntOf(t.Bits(), true)
	case reflect.Float32, reflect.Float64:
		return Float
	case reflect.Bool:
		return Bool
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return Untyped
		}
	case reflect.Slice:
		return Generic(List, FromGo(t.Elem()))
	case reflect.Array:
		return Generic(Tuple, FromGo(t.Elem()))
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return Generic(Mapping, String, FromGo(t.Elem()))
		}
	}
	return Opaque(t.String())
}

// Convert adapts a coerced value to the Go type t, for targets registered
// from plain Go functions.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if t.Implements(enumeratedType) {
		if s, ok := v.(string); ok && t.Kind() != reflect.String {
			for i, m := range reflect.Zero(t).Interface().(Enumerated).Members() {
				if m == s {
					return reflect.ValueOf(i).Convert(t), nil
				}
			}
			return reflect.Value{}, fmt.Errorf("%q is not a member of %s", s, t)
		}
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		src, ok := v.([]string)
		if !ok {
			if s, isSet := v.(Set); isSet {
				src = s
			} else {
				break
			}
		}
		var out reflect.Value
		if t.Kind() == reflect.Slice {
			out = reflect.MakeSlice(t, len(src), len(src))
		} else {
			if len(src) != t.Len() {
				return reflect.Value{}, fmt.Errorf("need %d items, got %d", t.Len(), len(src))
			}
			out = reflect.New(t).Elem()
		}
		elem := t.Elem()
		for i, s := range src {
			ev, err := convertString(s, elem)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	case reflect.Map:
		src, ok := v.(map[string]any)
		if !ok || t.Key().Kind() != reflect.String {
			break
		}
		out := reflect.MakeMapWithSize(t, len(src))
		for k, val := range src {
			ev, err := Convert(val, t.Elem())
			if err != nil {
				ev, err = convertString(fmt.Sprint(val), t.Elem())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("key %s: %w", k, err)
				}
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
		}
		return out, nil
	}
	if t.Kind() == reflect.String {
		return reflect.ValueOf(fmt.Sprint(v)).Convert(t), nil
	}
	if rv.Type().ConvertibleTo(t) && rv.Kind() != reflect.String {
		if err := checkRange(rv, t); err != nil {
			return reflect.Value{}, err
		}
		return rv.Convert(t), nil
	}
	if s, ok := v.(string); ok {
		return convertString(s, t)
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}

// convertString coerces a single element string through the declaration
// FromGo assigns to t.
func convertString(s string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.String {
		return reflect.ValueOf(s).Convert(t), nil
	}
	r, err := Resolve(FromGo(t))
	if err != nil {
		return reflect.Value{}, err
	}
	v, err := r.Coerce(s)
	if err != nil {
		return reflect.Value{}, err
	}
	return Convert(v, t)
}

// checkRange rejects integer conversions that would wrap.
func checkRange(rv reflect.Value, t reflect.Type) error {
	zero := reflect.Zero(t)
	switch {
	case rv.CanInt() && zero.CanInt():
		if zero.OverflowInt(rv.Int()) {
			return fmt.Errorf("%d overflows %s", rv.Int(), t)
		}
	case rv.CanInt() && zero.CanUint():
		if rv.Int() < 0 || zero.OverflowUint(uint64(rv.Int())) {
			return fmt.Errorf("%d overflows %s", rv.Int(), t)
		}
	case rv.CanUint() && zero.CanInt():
		if rv.Uint() > math.MaxInt64 || zero.OverflowInt(int64(rv.Uint())) {
			return fmt.Errorf("%d overflows %s", rv.Uint(), t)
		}
	case rv.CanUint() && zero.CanUint():
		if zero.OverflowUint(rv.Uint()) {
			return fmt.Errorf("%d overflows %s", rv.Uint(), t)
		}
	}
	return nil
}
