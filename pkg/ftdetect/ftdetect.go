// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ftdetect sniffs the document format of a file passed where a
// structured value is expected.
package ftdetect

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type FileType int

const (
	Unknown FileType = iota
	JSON
	YAML
	TOML
	Env
	Plain
)

func (ft FileType) String() string {
	switch ft {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	case Env:
		return "env"
	case Plain:
		return "plain"
	}
	return "unknown"
}

type file struct {
	f    *os.File
	path string
}

// DetectFile reports the document format of the file at path. A file that
// matches no structured format is Plain.
func DetectFile(path string) (FileType, error) {
	f, err := newFile(path)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()
	return f.detect()
}

// Detect sniffs the format of an in-memory document.
func Detect(bs []byte) FileType {
	return detectContent(bs)
}

func newFile(path string) (*file, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	return &file{f: f, path: path}, nil
}

func (f *file) Close() error {
	return f.f.Close()
}

func (f *file) detect() (FileType, error) {
	if ft, ok := f.detectByName(); ok {
		return ft, nil
	}
	if err := f.checkAndSeek0(); err != nil {
		return Unknown, err
	}
	bs, err := io.ReadAll(f.f)
	if err != nil {
		return Unknown, fmt.Errorf("failed to read file: %v", err)
	}
	return detectContent(bs), nil
}

func (f *file) detectByName() (FileType, bool) {
	if f.path == "" {
		return Unknown, false
	}

	base := strings.ToLower(filepath.Base(f.path))
	ext := strings.ToLower(filepath.Ext(base))

	switch ext {
	case ".json":
		return JSON, true
	case ".yml", ".yaml":
		return YAML, true
	case ".toml":
		return TOML, true
	case ".env":
		return Env, true
	case ".txt":
		return Plain, true
	}

	if base == ".env" || strings.HasPrefix(base, ".env.") {
		return Env, true
	}

	return Unknown, false
}

func (f *file) checkAndSeek0() error {
	if f.f == nil {
		return fmt.Errorf("file is nil")
	}
	if _, err := f.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to start of file: %w", err)
	}
	return nil
}

func detectContent(bs []byte) FileType {
	trimmed := bytes.TrimSpace(bs)
	if len(trimmed) == 0 {
		return Plain
	}
	if detectJSON(trimmed) {
		return JSON
	}
	if detectEnv(trimmed) {
		return Env
	}
	if detectTOML(trimmed) {
		return TOML
	}
	if detectYAML(trimmed) {
		return YAML
	}
	return Plain
}

func detectJSON(bs []byte) bool {
	if bs[0] != '{' && bs[0] != '[' {
		return false
	}
	return json.Valid(bs)
}

var envLineRe = regexp.MustCompile(`^(export\s+)?[A-Za-z_][A-Za-z0-9_]*=`)

// detectEnv requires every non-comment line to be a KEY=VALUE assignment
// without spaces around the equals sign.
func detectEnv(bs []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(bs))
	seen := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !envLineRe.MatchString(line) {
			return false
		}
		seen = true
	}
	return seen
}

func detectTOML(bs []byte) bool {
	var m map[string]any
	if _, err := toml.Decode(string(bs), &m); err != nil {
		return false
	}
	return len(m) > 0
}

// detectYAML accepts documents whose top level is a mapping.
func detectYAML(bs []byte) bool {
	var m map[string]any
	if err := yaml.Unmarshal(bs, &m); err != nil {
		return false
	}
	return len(m) > 0
}
