// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package naming

import (
	"slices"
	"strings"
)

// Token is the user-facing spelling of a parameter or command.
type Token struct {
	Long     string // kebab-cased long name, without dashes
	Short    string // optional short alias, without dashes
	Negative string // "no-<long>" for boolean options, empty otherwise
	// NegativePrimary reports whether the negative form is the one shown in
	// usage summaries (boolean defaulting to true).
	NegativePrimary bool
}

// Primary returns the flag spelling shown in usage synopses, with dashes.
func (t Token) Primary() string {
	if t.Negative != "" && t.NegativePrimary {
		return "--" + t.Negative
	}
	return "--" + t.Long
}

// Flags returns every dashed spelling of the token: short first, then long,
// then the negative form.
func (t Token) Flags() []string {
	var out []string
	if t.Short != "" {
		out = append(out, "-"+t.Short)
	}
	if t.Long != "" {
		out = append(out, "--"+t.Long)
	}
	if t.Negative != "" {
		out = append(out, "--"+t.Negative)
	}
	return out
}

// Options controls a single Assign call.
type Options struct {
	// Boolean requests a paired --x/--no-x form.
	Boolean bool
	// DefaultTrue makes the negative form primary. Only used with Boolean.
	DefaultTrue bool
	// NoShort suppresses the short alias.
	NoShort bool
	// Short requests a specific short alias. It is used if free, otherwise
	// the regular candidate list is tried.
	Short string
	// Positional claims only the long name; positionals never get aliases.
	Positional bool
}

// Namespace tracks the tokens taken among siblings: the options of one
// command, or the subcommand names of one group.
type Namespace struct {
	path     string
	taken    map[string]string // normalized token -> declared owner
	reserved map[string]bool
	order    []string
}

// NewNamespace returns an empty namespace. The path is only used in error
// messages.
func NewNamespace(path string, reserved ...string) *Namespace {
	ns := &Namespace{
		path:     path,
		taken:    make(map[string]string),
		reserved: make(map[string]bool, len(reserved)),
	}
	for _, r := range reserved {
		ns.reserved[Normalize(r)] = true
	}
	return ns
}

// FlagNamespace returns a namespace with the runtime's reserved option
// tokens pre-claimed. withVersion also reserves --version.
func FlagNamespace(path string, withVersion bool) *Namespace {
	reserved := []string{HelpLong, HelpShort, QuietLong, QuietShort}
	if withVersion {
		reserved = append(reserved, VersionLong)
	}
	return NewNamespace(path, reserved...)
}

// Taken reports whether tok is reserved or already claimed.
func (ns *Namespace) Taken(tok string) bool {
	n := Normalize(tok)
	if ns.reserved[n] {
		return true
	}
	_, ok := ns.taken[n]
	return ok
}

// Tokens returns the claimed tokens in claim order.
func (ns *Namespace) Tokens() []string {
	return slices.Clone(ns.order)
}

func (ns *Namespace) claim(owner, tok string) error {
	n := Normalize(tok)
	if ns.reserved[n] {
		return &NamingError{Namespace: ns.path, Name: owner, Token: n, Reserved: true}
	}
	if prev, ok := ns.taken[n]; ok {
		return &NamingError{Namespace: ns.path, Name: owner, Token: n, Owner: prev}
	}
	ns.taken[n] = owner
	ns.order = append(ns.order, n)
	return nil
}

// Claim registers a command or group name together with its aliases. Names
// and aliases share one namespace.
func (ns *Namespace) Claim(name string, aliases ...string) error {
	if err := ns.claim(name, name); err != nil {
		return err
	}
	for _, a := range aliases {
		if strings.TrimSpace(a) == "" {
			continue
		}
		if err := ns.claim(name, a); err != nil {
			return err
		}
	}
	return nil
}

// Assign claims the long (and, for booleans, negative) form of ident and
// picks a short alias. Running out of short candidates is not an error.
func (ns *Namespace) Assign(ident string, opts Options) (Token, error) {
	long := Kebab(ident)
	if long == "" {
		return Token{}, &NamingError{Namespace: ns.path, Name: ident, Token: ident}
	}
	tok := Token{Long: long}
	if err := ns.claim(ident, long); err != nil {
		return Token{}, err
	}
	if opts.Positional {
		return tok, nil
	}
	if opts.Boolean {
		tok.Negative = negatePrefix + long
		tok.NegativePrimary = opts.DefaultTrue
		if err := ns.claim(ident, tok.Negative); err != nil {
			return Token{}, err
		}
	}
	if opts.NoShort {
		return tok, nil
	}
	cands := ShortCandidates(long)
	if opts.Short != "" {
		cands = append([]string{Normalize(opts.Short)}, cands...)
	}
	for _, c := range cands {
		if c == long || ns.Taken(c) {
			continue
		}
		if err := ns.claim(ident, c); err != nil {
			continue
		}
		tok.Short = c
		break
	}
	return tok, nil
}
