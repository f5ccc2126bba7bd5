// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package naming

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns the candidate closest to input, or "" if nothing is close
// enough to be a plausible typo.
func Suggest(input string, candidates []string) string {
	in := Normalize(input)
	if in == "" {
		return ""
	}
	best, bestDist := "", -1
	for _, c := range candidates {
		n := Normalize(c)
		if strings.HasPrefix(n, in) && len(in) >= 2 {
			return c
		}
		d := levenshtein.ComputeDistance(in, n)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	limit := len(in) / 3
	if limit < 1 {
		limit = 1
	}
	if limit > 3 {
		limit = 3
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}
