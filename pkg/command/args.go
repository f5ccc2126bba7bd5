// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package command

import (
	"fmt"
	"maps"
	"time"

	"github.com/yeetrun/clify/pkg/kind"
	"github.com/yeetrun/clify/pkg/naming"
)

// Args holds the coerced values for one command level. Lookups fall back
// to the enclosing group, so commands see shared group parameters.
type Args struct {
	values map[string]any
	parent *Args
}

// NewArgs returns Args over values keyed by declared parameter name.
func NewArgs(values map[string]any, parent *Args) *Args {
	a := &Args{values: make(map[string]any, len(values)), parent: parent}
	for k, v := range values {
		a.values[key(k)] = v
	}
	return a
}

func key(name string) string {
	return naming.Normalize(naming.Kebab(name))
}

// Parent returns the enclosing level, or nil.
func (a *Args) Parent() *Args {
	if a == nil {
		return nil
	}
	return a.parent
}

func (a *Args) lookup(name string) (any, bool) {
	k := key(name)
	for cur := a; cur != nil; cur = cur.parent {
		if v, ok := cur.values[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether name has a value at this level or above.
func (a *Args) Has(name string) bool {
	_, ok := a.lookup(name)
	return ok
}

// Get returns the value of name, or nil.
func (a *Args) Get(name string) any {
	v, _ := a.lookup(name)
	return v
}

// Values returns a copy of every visible value, inner levels winning.
func (a *Args) Values() map[string]any {
	out := make(map[string]any)
	if a == nil {
		return out
	}
	if a.parent != nil {
		out = a.parent.Values()
	}
	maps.Copy(out, a.values)
	return out
}

func (a *Args) String(name string) string {
	switch v := a.Get(name).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (a *Args) Int(name string) int {
	switch v := a.Get(name).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (a *Args) Float(name string) float64 {
	switch v := a.Get(name).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (a *Args) Bool(name string) bool {
	v, _ := a.Get(name).(bool)
	return v
}

// Strings returns list, set and tuple values.
func (a *Args) Strings(name string) []string {
	switch v := a.Get(name).(type) {
	case []string:
		return v
	case kind.Set:
		return []string(v)
	}
	return nil
}

func (a *Args) Map(name string) map[string]any {
	v, _ := a.Get(name).(map[string]any)
	return v
}

func (a *Args) Time(name string) time.Time {
	v, _ := a.Get(name).(time.Time)
	return v
}

func (a *Args) Duration(name string) time.Duration {
	v, _ := a.Get(name).(time.Duration)
	return v
}
