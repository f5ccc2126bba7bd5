// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeetrun/clify/pkg/kind"
	"github.com/yeetrun/clify/pkg/naming"
)

// Options controls Build.
type Options struct {
	Style naming.Style
	Docs  DocSource
	// NoShort suppresses every generated short alias.
	NoShort bool
	// Version reserves --version in every flag namespace.
	Version bool
	// Prog overrides the root name.
	Prog string
}

// BuildError is any failure that aborts a build. Ident names the
// declaration that caused it.
type BuildError struct {
	Path  string
	Ident string
	Err   error
}

func (e *BuildError) Error() string {
	if e.Ident != "" {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Ident, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

type builder struct {
	opts Options
}

// Build turns a declared target into a command tree. Either the whole tree
// is returned or nothing is.
func Build(t Target, opts Options) (*Node, error) {
	if t == nil {
		return nil, errors.New("build: nil target")
	}
	b := &builder{opts: opts}
	name := opts.Prog
	if name == "" {
		name = targetName(t)
	}
	return b.build(t, nil, name)
}

func targetName(t Target) string {
	switch t := t.(type) {
	case *Func:
		return naming.Kebab(t.Name)
	case *Class:
		return naming.Kebab(t.Name)
	case *Group:
		return naming.Kebab(t.Name)
	}
	return ""
}

func (b *builder) build(t Target, parent *Node, name string) (*Node, error) {
	var path []string
	if parent != nil {
		path = append(path, parent.Path...)
	}
	path = append(path, name)
	where := strings.Join(path, " ")
	if name == "" {
		return nil, &BuildError{Path: where, Err: errors.New("target has no name")}
	}

	switch t := t.(type) {
	case *Func:
		if t.err != nil {
			return nil, &BuildError{Path: where, Ident: t.Name, Err: t.err}
		}
		if (t.Call == nil) == (t.Async == nil) {
			return nil, &BuildError{Path: where, Ident: t.Name, Err: errors.New("exactly one of Call and Async must be set")}
		}
		n := &Node{Name: name, Aliases: t.Aliases, Path: path, parent: parent, Async: t.Async != nil}
		if err := b.fill(n, t.Doc, t.Params); err != nil {
			return nil, err
		}
		if call := t.Call; call != nil {
			n.call = func(ctx context.Context, _ any, args *Args) (any, error) { return call(ctx, args) }
		} else {
			start := t.Async
			n.start = func(ctx context.Context, _ any, args *Args) Coroutine { return start(ctx, args) }
		}
		return n, nil

	case *Class:
		if t.err != nil {
			return nil, &BuildError{Path: where, Ident: t.Name, Err: t.err}
		}
		n := &Node{Name: name, Aliases: t.Aliases, Path: path, parent: parent, group: true, init: t.New}
		if err := b.fill(n, t.Doc, t.Init); err != nil {
			return nil, err
		}
		ns := naming.NewNamespace(where)
		for _, m := range t.Methods {
			if t.hidden(m.Name) {
				continue
			}
			c, err := b.method(n, m)
			if err != nil {
				return nil, err
			}
			if err := b.adopt(n, ns, c); err != nil {
				return nil, err
			}
		}
		if len(n.Children) == 0 {
			return nil, &BuildError{Path: where, Ident: t.Name, Err: errors.New("class exposes no methods")}
		}
		return n, nil

	case *Group:
		n := &Node{Name: name, Aliases: t.Aliases, Path: path, parent: parent, group: true}
		if err := b.fill(n, t.Doc, t.Params); err != nil {
			return nil, err
		}
		ns := naming.NewNamespace(where)
		for _, m := range t.Members {
			c, err := b.build(m, n, targetName(m))
			if err != nil {
				return nil, err
			}
			if err := b.adopt(n, ns, c); err != nil {
				return nil, err
			}
		}
		if len(n.Children) == 0 {
			return nil, &BuildError{Path: where, Ident: t.Name, Err: errors.New("group has no commands")}
		}
		return n, nil
	}
	return nil, &BuildError{Path: where, Err: fmt.Errorf("unsupported target %T", t)}
}

func (b *builder) method(parent *Node, m Method) (*Node, error) {
	name := naming.Kebab(m.Name)
	path := append(append([]string(nil), parent.Path...), name)
	where := strings.Join(path, " ")
	if m.err != nil {
		return nil, &BuildError{Path: where, Ident: m.Name, Err: m.err}
	}
	if (m.Call == nil) == (m.Async == nil) {
		return nil, &BuildError{Path: where, Ident: m.Name, Err: errors.New("exactly one of Call and Async must be set")}
	}
	n := &Node{Name: name, Aliases: m.Aliases, Path: path, parent: parent, call: m.Call, start: m.Async, Async: m.Async != nil}
	if err := b.fill(n, m.Doc, m.Params); err != nil {
		return nil, err
	}
	return n, nil
}

// adopt claims the child's name and aliases among its siblings.
func (b *builder) adopt(parent *Node, ns *naming.Namespace, c *Node) error {
	if err := ns.Claim(c.Name, c.Aliases...); err != nil {
		return &BuildError{Path: strings.Join(parent.Path, " "), Ident: c.Name, Err: err}
	}
	parent.Children = append(parent.Children, c)
	return nil
}

// fill resolves documentation and parameters for n.
func (b *builder) fill(n *Node, docText string, decl []Param) error {
	where := strings.Join(n.Path, " ")
	rel := n.Path[1:]
	doc := ParseDoc(docText)
	n.Doc = doc.Description
	if n.Doc == "" && b.opts.Docs != nil {
		n.Doc = strings.TrimSpace(b.opts.Docs.CommandDoc(rel))
	}

	ns := naming.FlagNamespace(where, b.opts.Version)
	for _, p := range decl {
		r, err := kind.Resolve(p.Type)
		if err != nil {
			return &BuildError{Path: where, Ident: p.Name, Err: err}
		}
		required := p.Required()
		positional := b.opts.Style == naming.PositionalStyle && required
		flag := r.IsBool() && !positional
		tok, err := ns.Assign(p.Name, naming.Options{
			Boolean:     flag,
			DefaultTrue: flag && p.Default == true,
			NoShort:     b.opts.NoShort || p.NoShort,
			Short:       p.Short,
			Positional:  positional,
		})
		if err != nil {
			return &BuildError{Path: where, Ident: p.Name, Err: err}
		}
		def := p.Default
		if flag && def == nil && !required {
			def = false
		}
		text := p.Doc
		if text == "" {
			text = doc.Params[p.Name]
		}
		if text == "" && b.opts.Docs != nil {
			text = b.opts.Docs.ParamDoc(rel, p.Name)
		}
		n.Params = append(n.Params, &Parameter{
			Name:       p.Name,
			Dest:       strings.Join(append(append([]string(nil), rel...), tok.Long), "."),
			Type:       p.Type,
			Resolved:   r,
			Default:    def,
			Required:   required,
			Doc:        strings.TrimSpace(text),
			Token:      tok,
			Positional: positional,
			Owner:      n,
		})
	}
	return nil
}
