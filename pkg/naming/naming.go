// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package naming turns declared identifiers into collision-free flag and
// command tokens.
package naming

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
)

// Style selects how parameters are exposed on the command line.
type Style int

const (
	// PositionalStyle exposes parameters without a default as positional
	// arguments and defaulted parameters as long-flag options.
	PositionalStyle Style = iota
	// KeywordStyle exposes every parameter as a long-flag option. Parameters
	// without a default become required options.
	KeywordStyle
)

func (s Style) String() string {
	switch s {
	case PositionalStyle:
		return "positional"
	case KeywordStyle:
		return "keyword"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle parses a style name as accepted in configuration files.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "positional":
		return PositionalStyle, nil
	case "keyword", "keyword-only", "kw":
		return KeywordStyle, nil
	}
	return 0, fmt.Errorf("unknown naming style %q (expected positional|keyword)", s)
}

// Reserved tokens injected by the runtime. They are never user-assignable.
const (
	HelpLong     = "help"
	HelpShort    = "h"
	QuietLong    = "quiet"
	QuietShort   = "q"
	VersionLong  = "version"
	negatePrefix = "no-"
)

// NamingError reports a reserved-token collision or a duplicate name in one
// namespace. It is fatal at build time.
type NamingError struct {
	Namespace string // owning command path, e.g. "app workspace"
	Name      string // the identifier as declared
	Token     string // the normalized token that collided
	Reserved  bool   // true if Token is reserved by the runtime
	Owner     string // previous owner of Token, if any
}

func (e *NamingError) Error() string {
	where := ""
	if e.Namespace != "" {
		where = fmt.Sprintf(" in %q", e.Namespace)
	}
	if e.Reserved {
		return fmt.Sprintf("name %q%s collides with reserved token %q", e.Name, where, e.Token)
	}
	if e.Owner != "" && e.Owner != e.Name {
		return fmt.Sprintf("name %q%s collides with %q (both normalize to %q)", e.Name, where, e.Owner, e.Token)
	}
	return fmt.Sprintf("duplicate name %q%s", e.Name, where)
}

// Kebab returns the canonical long spelling of an identifier.
func Kebab(ident string) string {
	ident = strings.TrimSpace(ident)
	ident = strings.Trim(ident, "_-")
	return strcase.ToKebab(ident)
}

// Normalize folds a token for collision checks: leading dashes are dropped,
// case is folded and underscores become dashes.
func Normalize(tok string) string {
	tok = strings.TrimLeft(tok, "-")
	tok = strings.ToLower(tok)
	return strings.ReplaceAll(tok, "_", "-")
}

func segments(long string) []string {
	var out []string
	for _, s := range strings.Split(long, "-") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ShortCandidates returns the ordered short alias attempts for a long name:
// the first character of the first segment, the initials of every segment,
// then the first two characters of the first segment.
func ShortCandidates(long string) []string {
	segs := segments(Normalize(long))
	if len(segs) == 0 {
		return nil
	}
	var initials strings.Builder
	for _, s := range segs {
		initials.WriteString(s[:1])
	}
	cands := []string{segs[0][:1], initials.String()}
	if len(segs[0]) >= 2 {
		cands = append(cands, segs[0][:2])
	}
	out := cands[:0]
	seen := make(map[string]bool, len(cands))
	for _, c := range cands {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
