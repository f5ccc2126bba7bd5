// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package command

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/yeetrun/clify/pkg/kind"
)

// Target is anything Build accepts: *Func, *Class or *Group.
type Target interface {
	target()
}

// Coroutine is the body of an asynchronous target. It is driven to
// completion by the runtime; callers never see it.
type Coroutine func(ctx context.Context) (any, error)

// Param declares one parameter of a function, method or initializer.
type Param struct {
	Name string
	// Type is the declared type. The zero value is untyped (string), unless
	// the parameter belongs to a reflected function, in which case the Go
	// type is used.
	Type kind.Type
	// Default is the value used when the parameter is not given. A nil
	// Default makes the parameter required unless Optional is set.
	Default  any
	Optional bool
	Doc      string
	// Short requests a specific short alias; NoShort suppresses it.
	Short   string
	NoShort bool
}

// Required reports whether the parameter has no default.
func (p Param) Required() bool {
	return p.Default == nil && !p.Optional
}

// Func is a function or bound method.
type Func struct {
	Name    string
	Doc     string
	Aliases []string
	Params  []Param
	// Exactly one of Call and Async must be set.
	Call  func(ctx context.Context, args *Args) (any, error)
	Async func(ctx context.Context, args *Args) Coroutine

	err error
}

// Method is a class member. The receiver is the value built by the class
// initializer.
type Method struct {
	Name    string
	Doc     string
	Aliases []string
	Params  []Param
	Call    func(ctx context.Context, recv any, args *Args) (any, error)
	Async   func(ctx context.Context, recv any, args *Args) Coroutine

	err error
}

// Class is a receiver with an initializer and methods. It builds into a
// group whose shared parameters are the initializer parameters.
type Class struct {
	Name    string
	Doc     string
	Aliases []string
	Init    []Param
	New     func(ctx context.Context, args *Args) (any, error)
	Methods []Method
	// Hidden lists method names that must not become commands.
	Hidden []string

	err error
}

// Group is a pre-built collection of targets with optional shared leading
// parameters.
type Group struct {
	Name    string
	Doc     string
	Aliases []string
	Params  []Param
	Members []Target
}

func (*Func) target()  {}
func (*Class) target() {}
func (*Group) target() {}

// reservedMethods are never exposed, whatever their receiver.
var reservedMethods = []string{"String", "GoString", "Error", "Format", "Members", "MarshalText", "UnmarshalText"}

func (c *Class) hidden(name string) bool {
	if name == "" || name[0] == '_' {
		return true
	}
	return slices.Contains(reservedMethods, name) || slices.Contains(c.Hidden, name)
}

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

type reflected struct {
	fv       reflect.Value
	ft       reflect.Type
	withCtx  bool
	withRecv bool
	params   []Param
}

func reflectFunc(fn any, withRecv bool, params []Param) (*reflected, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%T is not a function", fn)
	}
	ft := fv.Type()
	r := &reflected{fv: fv, ft: ft, withRecv: withRecv}
	i := 0
	if withRecv {
		if ft.NumIn() == 0 {
			return nil, fmt.Errorf("method expression %s has no receiver", ft)
		}
		i++
	}
	if ft.NumIn() > i && ft.In(i) == contextType {
		r.withCtx = true
		i++
	}
	if n := ft.NumIn() - i; n != len(params) {
		return nil, fmt.Errorf("%s takes %d parameters, %d declared", ft, n, len(params))
	}
	switch ft.NumOut() {
	case 0, 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("%s: second result must be error", ft)
		}
	default:
		return nil, fmt.Errorf("%s returns too many values", ft)
	}
	r.params = slices.Clone(params)
	for j := range r.params {
		if r.params[j].Type.IsUntyped() {
			r.params[j].Type = kind.FromGo(ft.In(i + j))
		}
	}
	return r, nil
}

func (r *reflected) call(ctx context.Context, recv any, args *Args) (any, error) {
	var in []reflect.Value
	if r.withRecv {
		in = append(in, reflect.ValueOf(recv))
	}
	if r.withCtx {
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}
	base := len(in)
	for j, p := range r.params {
		want := r.ft.In(base + j)
		v, err := kind.Convert(args.Get(p.Name), want)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", p.Name, err)
		}
		in = append(in, v)
	}
	var out []reflect.Value
	if r.ft.IsVariadic() {
		out = r.fv.CallSlice(in)
	} else {
		out = r.fv.Call(in)
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if r.ft.Out(0) == errorType {
			err, _ := out[0].Interface().(error)
			return nil, err
		}
		return out[0].Interface(), nil
	}
	err, _ := out[1].Interface().(error)
	return out[0].Interface(), err
}

// Reflect declares a plain Go function as a command. Parameter names,
// defaults and docs come from params, in order; untyped params take the Go
// parameter type. A leading context.Context parameter and a trailing error
// result are recognized. Mismatches are reported by Build.
func Reflect(name string, fn any, params ...Param) *Func {
	f := &Func{Name: name}
	r, err := reflectFunc(fn, false, params)
	if err != nil {
		f.err = fmt.Errorf("command %q: %w", name, err)
		f.Params = params
		return f
	}
	f.Params = r.params
	f.Call = func(ctx context.Context, args *Args) (any, error) {
		return r.call(ctx, nil, args)
	}
	return f
}

// ReflectAsync is like Reflect but marks the function asynchronous: the
// runtime drives it on its executor.
func ReflectAsync(name string, fn any, params ...Param) *Func {
	f := Reflect(name, fn, params...)
	if call := f.Call; call != nil {
		f.Call = nil
		f.Async = func(_ context.Context, args *Args) Coroutine {
			return func(ctx context.Context) (any, error) { return call(ctx, args) }
		}
	}
	return f
}

// Bind declares the named method of recv as a command.
func Bind(recv any, method string, params ...Param) *Func {
	m := reflect.ValueOf(recv).MethodByName(method)
	if !m.IsValid() {
		return &Func{Name: method, err: fmt.Errorf("%T has no method %s", recv, method)}
	}
	return Reflect(method, m.Interface(), params...)
}

// ReflectMethod declares a method expression such as (*Workspace).Status as
// a class member.
func ReflectMethod(name string, fn any, params ...Param) Method {
	m := Method{Name: name}
	r, err := reflectFunc(fn, true, params)
	if err != nil {
		m.err = fmt.Errorf("method %q: %w", name, err)
		m.Params = params
		return m
	}
	m.Params = r.params
	m.Call = r.call
	return m
}

// ReflectClass declares a class from a Go constructor. The constructor's
// parameters are described by init and every exported method of its result
// becomes a command, except reserved and hidden names. Methods that take
// parameters must be described in methods.
func ReflectClass(name string, ctor any, init []Param, methods map[string][]Param, hidden ...string) *Class {
	c := &Class{Name: name, Hidden: hidden}
	r, err := reflectFunc(ctor, false, init)
	if err != nil {
		c.err = fmt.Errorf("class %q: %w", name, err)
		c.Init = init
		return c
	}
	if r.ft.NumOut() == 0 || r.ft.Out(0) == errorType {
		c.err = fmt.Errorf("class %q: constructor returns no value", name)
		return c
	}
	c.Init = r.params
	c.New = func(ctx context.Context, args *Args) (any, error) {
		return r.call(ctx, nil, args)
	}
	rt := r.ft.Out(0)
	if rt.Kind() == reflect.Interface {
		c.err = fmt.Errorf("class %q: constructor must return a concrete type, not %s", name, rt)
		return c
	}
	for i := 0; i < rt.NumMethod(); i++ {
		mt := rt.Method(i)
		if c.hidden(mt.Name) {
			continue
		}
		m := ReflectMethod(mt.Name, mt.Func.Interface(), methods[mt.Name]...)
		c.Methods = append(c.Methods, m)
	}
	return c
}
