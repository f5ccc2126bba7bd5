// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kind

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/araddon/dateparse"
	"github.com/yeetrun/clify/pkg/env"
	"github.com/yeetrun/clify/pkg/fileutil"
	"github.com/yeetrun/clify/pkg/ftdetect"
	"gopkg.in/yaml.v3"
)

// Set is an ordered collection of unique strings. Order is first-seen.
type Set []string

// NewSet deduplicates items keeping the first occurrence of each.
func NewSet(items ...string) Set {
	seen := make(map[string]bool, len(items))
	out := make(Set, 0, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func parseableCoercer(t Type) func(string) (any, error) {
	switch t.tag {
	case tagDate:
		return parseDate
	case tagDateTime:
		return parseDateTime
	case tagTime:
		return parseTimeOfDay
	case tagDuration:
		return parseDuration
	case tagPath:
		return parsePath
	case tagList, tagTuple:
		return func(raw string) (any, error) { return splitItems(raw) }
	case tagSet:
		return func(raw string) (any, error) {
			items, err := splitItems(raw)
			if err != nil {
				return nil, err
			}
			return NewSet(items...), nil
		}
	case tagMapping:
		return parseMapping
	}
	panic(fmt.Sprintf("kind: no parser for %s", t))
}

func parseDateTime(raw string) (any, error) {
	return dateparse.ParseAny(strings.TrimSpace(raw))
}

func parseDate(raw string) (any, error) {
	ts, err := dateparse.ParseAny(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location()), nil
}

var clockLayouts = []string{"15:04:05", "15:04", "3:04:05PM", "3:04PM", "3:04pm", "15:04:05.999999999"}

// parseTimeOfDay returns a time.Time on the zero date.
func parseTimeOfDay(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	for _, l := range clockLayouts {
		if ts, err := time.Parse(l, raw); err == nil {
			return ts, nil
		}
	}
	ts, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil, err
	}
	return time.Date(0, 1, 1, ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC), nil
}

func parseDuration(raw string) (any, error) {
	return time.ParseDuration(strings.TrimSpace(raw))
}

func parsePath(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty path")
	}
	return filepath.Clean(fileutil.ExpandHome(raw)), nil
}

// splitItems reads a newline-delimited file when raw names one, otherwise
// splits raw on commas. Items are trimmed and blanks dropped either way.
func splitItems(raw string) ([]string, error) {
	if fileutil.IsRegularFile(raw) {
		return fileutil.ReadLines(raw)
	}
	items := []string{}
	for _, it := range strings.Split(raw, ",") {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// parseMapping decodes a structured document from a file, or an inline
// YAML/JSON flow literal, or a k=v,k2=v2 list.
func parseMapping(raw string) (any, error) {
	if fileutil.IsRegularFile(raw) {
		return readMappingFile(raw)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := yaml.Unmarshal([]byte(raw), &m); err == nil && m != nil {
		return m, nil
	}
	return parsePairs(raw)
}

func parsePairs(raw string) (map[string]any, error) {
	m := make(map[string]any)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("expected a mapping, got %q", raw)
		}
		m[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return m, nil
}

func readMappingFile(path string) (map[string]any, error) {
	ft, err := ftdetect.DetectFile(path)
	if err != nil {
		return nil, err
	}
	switch ft {
	case ftdetect.Env:
		vars, err := env.ReadFile(path)
		if err != nil {
			return nil, err
		}
		m := make(map[string]any, len(vars))
		for k, v := range vars {
			m[k] = v
		}
		return m, nil
	case ftdetect.TOML:
		var m map[string]any
		if _, err := toml.DecodeFile(path, &m); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return m, nil
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(bs, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s as %s: %w", path, ft, err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}
