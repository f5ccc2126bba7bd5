// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kind classifies declared parameter types into a closed set of
// kinds and supplies the coercion from raw command-line text to typed
// values.
package kind

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the closed classification of a declared type.
type Kind int

const (
	Basic Kind = iota
	Enumeration
	Parseable
	Union
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case Basic:
		return "basic"
	case Enumeration:
		return "enumeration"
	case Parseable:
		return "parseable"
	case Union:
		return "union"
	case Unsupported:
		return "unsupported"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type tag int

const (
	tagUntyped tag = iota
	tagString
	tagInt
	tagFloat
	tagBool
	tagEnum
	tagDate
	tagDateTime
	tagTime
	tagDuration
	tagPath
	tagList
	tagSet
	tagTuple
	tagMapping
	tagGeneric
	tagUnion
	tagOpaque
)

// Type is a declared parameter type. The zero value is the untyped
// declaration, which behaves like String.
type Type struct {
	tag     tag
	name    string
	members []string // enumeration members
	args    []Type   // generic arguments or union constituents
	origin  *Type    // generic origin
	// bits and unsigned bound sized integers; bits 0 is the platform int.
	bits     int
	unsigned bool
}

// Declared basic and parseable types.
var (
	Untyped  = Type{}
	String   = Type{tag: tagString, name: "str"}
	Int      = Type{tag: tagInt, name: "int"}
	Float    = Type{tag: tagFloat, name: "float"}
	Bool     = Type{tag: tagBool, name: "bool"}
	Date     = Type{tag: tagDate, name: "date"}
	DateTime = Type{tag: tagDateTime, name: "datetime"}
	Time     = Type{tag: tagTime, name: "time"}
	Duration = Type{tag: tagDuration, name: "duration"}
	Path     = Type{tag: tagPath, name: "path"}
	List     = Type{tag: tagList, name: "list"}
	SetType  = Type{tag: tagSet, name: "set"}
	Tuple    = Type{tag: tagTuple, name: "tuple"}
	Mapping  = Type{tag: tagMapping, name: "map"}
)

// IntOf declares a sized integer such as int8 or uint. Values outside its
// range are rejected during coercion. bits 0 means the platform size.
func IntOf(bits int, unsigned bool) Type {
	name := "int"
	if unsigned {
		name = "uint"
	}
	if bits != 0 {
		name += strconv.Itoa(bits)
	}
	return Type{tag: tagInt, name: name, bits: bits, unsigned: unsigned}
}

// IntRange returns the bit size and signedness of an integer declaration.
func (t Type) IntRange() (bits int, unsigned bool) { return t.bits, t.unsigned }

// Enum declares an enumeration with the given member names. Members are
// matched exactly.
func Enum(name string, members ...string) Type {
	return Type{tag: tagEnum, name: name, members: append([]string(nil), members...)}
}

// Generic declares a parametrized type such as list[int]. Only the origin
// decides the kind; the arguments are shown in help but not enforced.
func Generic(origin Type, args ...Type) Type {
	o := origin
	return Type{tag: tagGeneric, origin: &o, args: append([]Type(nil), args...)}
}

// UnionOf declares a union. Coercion tries each constituent in order.
func UnionOf(types ...Type) Type {
	return Type{tag: tagUnion, args: append([]Type(nil), types...)}
}

// Opaque declares a type the resolver knows nothing about. It always
// resolves to Unsupported.
func Opaque(name string) Type {
	return Type{tag: tagOpaque, name: name}
}

// IsUntyped reports whether t is the missing annotation.
func (t Type) IsUntyped() bool { return t.tag == tagUntyped }

// IsBool reports whether t is the Bool basic type.
func (t Type) IsBool() bool { return t.tag == tagBool }

// Members returns the enumeration members, or nil.
func (t Type) Members() []string {
	if t.tag != tagEnum {
		return nil
	}
	return append([]string(nil), t.members...)
}

// Name returns the bare name of the type, without generic arguments.
func (t Type) Name() string {
	switch t.tag {
	case tagUntyped:
		return "str"
	case tagGeneric:
		return t.origin.Name()
	case tagUnion:
		return t.String()
	}
	return t.name
}

func (t Type) String() string {
	switch t.tag {
	case tagGeneric:
		parts := make([]string, len(t.args))
		for i, a := range t.args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s[%s]", t.origin.String(), strings.Join(parts, ", "))
	case tagUnion:
		parts := make([]string, len(t.args))
		for i, a := range t.args {
			parts[i] = a.String()
		}
		return strings.Join(parts, " | ")
	}
	return t.Name()
}

// Equal reports whether two declarations are structurally identical.
func (t Type) Equal(o Type) bool {
	if t.tag != o.tag || t.name != o.name || t.bits != o.bits || t.unsigned != o.unsigned || len(t.members) != len(o.members) || len(t.args) != len(o.args) {
		return false
	}
	for i := range t.members {
		if t.members[i] != o.members[i] {
			return false
		}
	}
	for i := range t.args {
		if !t.args[i].Equal(o.args[i]) {
			return false
		}
	}
	if (t.origin == nil) != (o.origin == nil) {
		return false
	}
	return t.origin == nil || t.origin.Equal(*o.origin)
}

func (t Type) container() bool {
	switch t.tag {
	case tagList, tagSet, tagTuple:
		return true
	}
	return false
}
