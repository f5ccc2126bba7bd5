// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package help

import (
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/yeetrun/clify/pkg/tui"
	"golang.org/x/text/width"
)

const (
	fallbackWidth = 80
	minWidth      = 20
)

// TerminalWidth picks the render width: explicit, then $COLUMNS, then the
// terminal behind out, then 80.
func TerminalWidth(explicit int, out io.Writer) int {
	if explicit > 0 {
		return max(explicit, minWidth)
	}
	if c, err := strconv.Atoi(strings.TrimSpace(os.Getenv("COLUMNS"))); err == nil && c > 0 {
		return max(c, minWidth)
	}
	if c := tui.Width(out); c > 0 {
		return max(c, minWidth)
	}
	return fallbackWidth
}

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// DisplayWidth is the number of terminal columns s occupies once escape
// sequences are removed. East Asian wide runes count double.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range StripANSI(s) {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}
