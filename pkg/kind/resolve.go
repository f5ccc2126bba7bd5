// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kind

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yeetrun/clify/pkg/naming"
)

// Scalar is the value shape a parsing backend should produce for a
// resolved type. Special values are delivered as raw strings and coerced
// afterwards.
type Scalar int

const (
	ScalarString Scalar = iota
	ScalarInt
	ScalarFloat
	ScalarBool
	ScalarSpecial
)

// Resolved is the cached classification of a declared type.
type Resolved struct {
	Kind     Kind
	Declared Type
	// Effective is the declaration after unwrapping generics.
	Effective Type
	// Parts holds the resolved constituents of a union.
	Parts []*Resolved

	coerce func(raw string) (any, error)
}

// UnsupportedError reports a declared type that cannot be represented on
// the command line.
type UnsupportedError struct {
	Type   Type
	Reason string
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported type %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("unsupported type %s", e.Type)
}

// CoercionError reports a raw value that could not be converted.
type CoercionError struct {
	Param string // set by the caller once the owning parameter is known
	Raw   string
	Type  Type
	// Constituents names every union member that was tried.
	Constituents []string
	Err          error
}

func (e *CoercionError) Error() string {
	var b strings.Builder
	if e.Param != "" {
		fmt.Fprintf(&b, "argument %s: ", e.Param)
	}
	fmt.Fprintf(&b, "invalid %s value: %q", e.Type, e.Raw)
	if len(e.Constituents) > 0 {
		fmt.Fprintf(&b, " (tried %s)", strings.Join(e.Constituents, ", "))
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *CoercionError) Unwrap() error { return e.Err }

// UnknownChoiceError reports a value that names no enumeration member.
type UnknownChoiceError struct {
	Param   string
	Raw     string
	Choices []string
}

func (e *UnknownChoiceError) Error() string {
	var b strings.Builder
	if e.Param != "" {
		fmt.Fprintf(&b, "argument %s: ", e.Param)
	}
	fmt.Fprintf(&b, "invalid choice: %q (choose from %s)", e.Raw, strings.Join(e.Choices, ", "))
	if s := naming.Suggest(e.Raw, e.Choices); s != "" {
		fmt.Fprintf(&b, "; did you mean %q?", s)
	}
	return b.String()
}

// Resolve classifies t. It never touches the filesystem or any other
// external state.
func Resolve(t Type) (*Resolved, error) {
	r := &Resolved{Declared: t, Effective: t}
	if err := r.classify(t); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Resolved) classify(t Type) error {
	switch t.tag {
	case tagUntyped, tagString:
		r.Kind = Basic
		r.coerce = func(raw string) (any, error) { return raw, nil }
	case tagInt:
		r.Kind = Basic
		r.coerce = func(raw string) (any, error) { return ParseInt(raw, t.bits, t.unsigned) }
	case tagFloat:
		r.Kind = Basic
		r.coerce = parseFloat
	case tagBool:
		r.Kind = Basic
		r.coerce = parseBool
	case tagEnum:
		if len(t.members) == 0 {
			return &UnsupportedError{Type: t, Reason: "enumeration has no members"}
		}
		r.Kind = Enumeration
		r.coerce = enumCoercer(t.members)
	case tagDate, tagDateTime, tagTime, tagDuration, tagPath, tagList, tagSet, tagTuple, tagMapping:
		r.Kind = Parseable
		r.coerce = parseableCoercer(t)
	case tagGeneric:
		if t.origin == nil {
			return &UnsupportedError{Type: t, Reason: "generic without origin"}
		}
		r.Effective = *t.origin
		if err := r.classify(*t.origin); err != nil {
			var ue *UnsupportedError
			if errors.As(err, &ue) {
				return &UnsupportedError{Type: t, Reason: ue.Error()}
			}
			return err
		}
	case tagUnion:
		if len(t.args) == 0 {
			return &UnsupportedError{Type: t, Reason: "empty union"}
		}
		r.Kind = Union
		r.Parts = make([]*Resolved, len(t.args))
		for i, a := range t.args {
			p, err := Resolve(a)
			if err != nil {
				return &UnsupportedError{Type: t, Reason: err.Error()}
			}
			r.Parts[i] = p
		}
		r.coerce = r.unionCoerce
	default:
		r.Kind = Unsupported
		return &UnsupportedError{Type: t}
	}
	return nil
}

// unionCoerce returns the first constituent that accepts raw. Earlier
// failures are dropped; they only surface if every constituent fails.
func (r *Resolved) unionCoerce(raw string) (any, error) {
	names := make([]string, len(r.Parts))
	var errs []error
	for i, p := range r.Parts {
		names[i] = p.Declared.String()
		v, err := p.Coerce(raw)
		if err == nil {
			return v, nil
		}
		errs = append(errs, err)
	}
	return nil, &CoercionError{Raw: raw, Type: r.Declared, Constituents: names, Err: errors.Join(errs...)}
}

// Coerce converts raw into the typed value for this declaration.
func (r *Resolved) Coerce(raw string) (any, error) {
	if r.coerce == nil {
		return nil, &UnsupportedError{Type: r.Declared}
	}
	v, err := r.coerce(raw)
	if err == nil {
		return v, nil
	}
	var ce *CoercionError
	var uc *UnknownChoiceError
	if errors.As(err, &ce) || errors.As(err, &uc) {
		return nil, err
	}
	return nil, &CoercionError{Raw: raw, Type: r.Declared, Err: err}
}

// CoerceAll coerces each occurrence of a repeated option on its own, so
// any of them may name a file, and concatenates the items. Set items are
// deduplicated across occurrences. Non-container types keep the last
// occurrence.
func (r *Resolved) CoerceAll(raws []string) (any, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	if !r.Container() {
		return r.Coerce(raws[len(raws)-1])
	}
	items := []string{}
	for _, raw := range raws {
		v, err := r.Coerce(raw)
		if err != nil {
			return nil, err
		}
		switch v := v.(type) {
		case []string:
			items = append(items, v...)
		case Set:
			items = append(items, v...)
		}
	}
	if r.Effective.tag == tagSet {
		return NewSet(items...), nil
	}
	return items, nil
}

// Scalar reports how a backend should deliver values of this type.
func (r *Resolved) Scalar() Scalar {
	if r.Kind != Basic {
		return ScalarSpecial
	}
	switch r.Effective.tag {
	case tagInt:
		return ScalarInt
	case tagFloat:
		return ScalarFloat
	case tagBool:
		return ScalarBool
	}
	return ScalarString
}

// Special reports whether values need the coercion step after parsing.
func (r *Resolved) Special() bool { return r.Scalar() == ScalarSpecial }

// IsBool reports whether the parameter is a plain boolean switch.
func (r *Resolved) IsBool() bool { return r.Kind == Basic && r.Effective.tag == tagBool }

// Container reports whether the value is a list, set or tuple. Backends may
// accept repeated occurrences for containers.
func (r *Resolved) Container() bool { return r.Kind == Parseable && r.Effective.container() }

// Choices returns the enumeration members, or nil.
func (r *Resolved) Choices() []string {
	if r.Kind != Enumeration {
		return nil
	}
	return r.Effective.Members()
}

// Describe returns a short human description used when a parameter has no
// documentation of its own.
func (r *Resolved) Describe() string {
	d := r.Declared
	switch {
	case r.Kind == Enumeration:
		return "one of " + strings.Join(r.Choices(), ", ")
	case r.Kind == Union:
		return d.String()
	case d.tag == tagGeneric && r.Container():
		parts := make([]string, len(d.args))
		for i, a := range d.args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s of %s", r.Effective.Name(), strings.Join(parts, ", "))
	}
	return r.Effective.Name()
}

// ParseInt parses a base 10 integer that must fit in bits (0 for the
// platform int). Unsigned sizes reject negative values. The result is an
// int unless an unsigned value is too large for one.
func ParseInt(raw string, bits int, unsigned bool) (any, error) {
	raw = strings.TrimSpace(raw)
	if unsigned {
		n, err := strconv.ParseUint(raw, 10, bits)
		if err != nil {
			return nil, err
		}
		if n > math.MaxInt {
			return n, nil
		}
		return int(n), nil
	}
	n, err := strconv.ParseInt(raw, 10, bits)
	if err != nil {
		return nil, err
	}
	return int(n), nil
}

func parseFloat(raw string) (any, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

// ParseBool accepts the strconv spellings plus yes/no and on/off.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(raw))
}

func parseBool(raw string) (any, error) {
	return ParseBool(raw)
}

func enumCoercer(members []string) func(string) (any, error) {
	return func(raw string) (any, error) {
		for _, m := range members {
			if m == raw {
				return m, nil
			}
		}
		return nil, &UnknownChoiceError{Raw: raw, Choices: append([]string(nil), members...)}
	}
}
