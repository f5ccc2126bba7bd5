// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/yeetrun/clify/pkg/env"
	"gopkg.in/yaml.v3"
)

// Display writes v the way a completed run prints its result. Lists print
// one element per line and mappings print as YAML unless format says
// otherwise.
func Display(w io.Writer, v any, format string) error {
	if v == nil {
		return nil
	}
	switch format {
	case "json":
		bs, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", bs)
		return err
	case "yaml":
		return writeYAML(w, v)
	case "env":
		if m, ok := stringMap(v); ok {
			return env.Write(w, m)
		}
	case "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		for i := 0; i < rv.Len(); i++ {
			if _, err := fmt.Fprintln(w, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		return writeYAML(w, v)
	}
	_, err := fmt.Fprintln(w, v)
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func stringMap(v any) (map[string]string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(map[string]string, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = fmt.Sprint(iter.Value().Interface())
	}
	return out, true
}
