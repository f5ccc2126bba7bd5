// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package command builds the immutable command tree for a declared target.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/yeetrun/clify/pkg/kind"
	"github.com/yeetrun/clify/pkg/naming"
)

// Parameter is a resolved, named parameter of a command or group.
type Parameter struct {
	Name string
	// Dest is unique across the whole tree; backends key parsed values by it.
	Dest       string
	Type       kind.Type
	Resolved   *kind.Resolved
	Default    any
	Required   bool
	Doc        string
	Token      naming.Token
	Positional bool
	Owner      *Node
}

// Flag reports whether the parameter is a boolean switch.
func (p *Parameter) Flag() bool {
	return !p.Positional && p.Resolved.IsBool()
}

// Choices returns enumeration members, or nil.
func (p *Parameter) Choices() []string {
	return p.Resolved.Choices()
}

// Metavar is the placeholder shown for the parameter's value.
func (p *Parameter) Metavar() string {
	if p.Positional {
		return p.Token.Long
	}
	return strings.ToUpper(strings.ReplaceAll(p.Token.Long, "-", "_"))
}

// Display is the spelling used in error messages, e.g. "-c/--count".
func (p *Parameter) Display() string {
	if p.Positional {
		return p.Token.Long
	}
	if p.Token.Short != "" {
		return "-" + p.Token.Short + "/--" + p.Token.Long
	}
	return "--" + p.Token.Long
}

// Node is a command (leaf) or group in the command tree.
type Node struct {
	Name    string
	Aliases []string
	Doc     string
	// Path is the full command path, starting with the program name.
	Path     []string
	Params   []*Parameter
	Children []*Node
	Async    bool

	group  bool
	parent *Node
	init   func(ctx context.Context, args *Args) (any, error)
	call   func(ctx context.Context, recv any, args *Args) (any, error)
	start  func(ctx context.Context, recv any, args *Args) Coroutine
}

// IsGroup reports whether the node dispatches to subcommands.
func (n *Node) IsGroup() bool { return n.group }

func (n *Node) Parent() *Node { return n.parent }

// Summary returns the first line of the node's description.
func (n *Node) Summary() string { return Doc{Description: n.Doc}.Summary() }

// Child returns the child named or aliased tok, or nil.
func (n *Node) Child(tok string) *Node {
	want := naming.Normalize(tok)
	for _, c := range n.Children {
		if naming.Normalize(c.Name) == want {
			return c
		}
		for _, a := range c.Aliases {
			if naming.Normalize(a) == want {
				return c
			}
		}
	}
	return nil
}

// ChildNames returns the primary names of the children, in order.
func (n *Node) ChildNames() []string {
	out := make([]string, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.Name
	}
	return out
}

// Resolve walks names from n and returns the selected nodes, n first.
func (n *Node) Resolve(names []string) ([]*Node, error) {
	path := []*Node{n}
	cur := n
	for _, name := range names {
		next := cur.Child(name)
		if next == nil {
			return nil, fmt.Errorf("%s: unknown command %q", strings.Join(cur.Path, " "), name)
		}
		path = append(path, next)
		cur = next
	}
	return path, nil
}

// Walk calls fn for n and every descendant, depth first.
func (n *Node) Walk(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Invocation is a selected leaf together with the coerced arguments of
// every level on its path.
type Invocation struct {
	Path []*Node
	Args []*Args
}

// NewInvocation pairs path with per-level args. args[i] belongs to path[i].
func NewInvocation(path []*Node, args []*Args) (*Invocation, error) {
	if len(path) == 0 || len(path) != len(args) {
		return nil, fmt.Errorf("invocation: %d nodes, %d argument sets", len(path), len(args))
	}
	if leaf := path[len(path)-1]; leaf.group {
		return nil, fmt.Errorf("%s: a command is required", strings.Join(leaf.Path, " "))
	}
	return &Invocation{Path: path, Args: args}, nil
}

// Leaf returns the selected command.
func (inv *Invocation) Leaf() *Node { return inv.Path[len(inv.Path)-1] }

// Async reports whether the leaf must be driven by an executor.
func (inv *Invocation) Async() bool { return inv.Leaf().Async }

// receiver runs every initializer on the path in order and returns the
// innermost receiver.
func (inv *Invocation) receiver(ctx context.Context) (any, error) {
	var recv any
	for i, n := range inv.Path {
		if n.init == nil {
			continue
		}
		r, err := n.init(ctx, inv.Args[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", strings.Join(n.Path, " "), err)
		}
		recv = r
	}
	return recv, nil
}

// Call invokes a synchronous leaf.
func (inv *Invocation) Call(ctx context.Context) (any, error) {
	leaf := inv.Leaf()
	if leaf.call == nil {
		return nil, fmt.Errorf("%s is asynchronous", strings.Join(leaf.Path, " "))
	}
	recv, err := inv.receiver(ctx)
	if err != nil {
		return nil, err
	}
	return leaf.call(ctx, recv, inv.Args[len(inv.Args)-1])
}

// Start builds the receiver and returns the coroutine of an asynchronous
// leaf without running it.
func (inv *Invocation) Start(ctx context.Context) (Coroutine, error) {
	leaf := inv.Leaf()
	if leaf.start == nil {
		return nil, fmt.Errorf("%s is synchronous", strings.Join(leaf.Path, " "))
	}
	recv, err := inv.receiver(ctx)
	if err != nil {
		return nil, err
	}
	co := leaf.start(ctx, recv, inv.Args[len(inv.Args)-1])
	if co == nil {
		return nil, fmt.Errorf("%s returned no coroutine", strings.Join(leaf.Path, " "))
	}
	return co, nil
}
