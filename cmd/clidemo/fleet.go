// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yeetrun/clify/pkg/kind"
)

type service struct {
	Name     string
	Image    string
	Replicas int
	Env      map[string]string
	Tags     []string
}

// fleet is the in-memory state of one host.
type fleet struct {
	host     string
	services map[string]*service
}

func newFleet(host string) *fleet {
	f := &fleet{host: host, services: map[string]*service{}}
	for _, s := range []*service{
		{Name: "web", Image: "nginx:1.27", Replicas: 2, Tags: []string{"edge"}},
		{Name: "db", Image: "postgres:16", Replicas: 1, Env: map[string]string{"PGDATA": "/data"}},
	} {
		f.services[s.Name] = s
	}
	return f
}

func (f *fleet) names() []string {
	names := make([]string, 0, len(f.services))
	for n := range f.services {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (f *fleet) Status() []string {
	var out []string
	for _, n := range f.names() {
		s := f.services[n]
		out = append(out, fmt.Sprintf("%s/%s\t%s\t%d", f.host, s.Name, s.Image, s.Replicas))
	}
	return out
}

func (f *fleet) Info(name string) (map[string]any, error) {
	s, ok := f.services[name]
	if !ok {
		return nil, fmt.Errorf("no service %q on %s (have %s)", name, f.host, strings.Join(f.names(), ", "))
	}
	out := map[string]any{
		"host":     f.host,
		"name":     s.Name,
		"image":    s.Image,
		"replicas": s.Replicas,
	}
	if len(s.Env) > 0 {
		out["env"] = s.Env
	}
	if len(s.Tags) > 0 {
		out["tags"] = s.Tags
	}
	return out, nil
}

func (f *fleet) Deploy(name, image string, replicas int, env map[string]string, tags kind.Set, dryRun bool) (string, error) {
	if replicas < 0 {
		return "", fmt.Errorf("replicas must not be negative")
	}
	s := &service{Name: name, Image: image, Replicas: replicas, Env: env, Tags: tags}
	verb := "created"
	if _, ok := f.services[name]; ok {
		verb = "updated"
	}
	if dryRun {
		return fmt.Sprintf("would have %s %s/%s (%s x%d)", verb, f.host, name, image, replicas), nil
	}
	f.services[name] = s
	return fmt.Sprintf("%s %s/%s (%s x%d)", verb, f.host, name, image, replicas), nil
}

func (f *fleet) Remove(name string) error {
	if _, ok := f.services[name]; !ok {
		return fmt.Errorf("no service %q on %s", name, f.host)
	}
	delete(f.services, name)
	return nil
}
