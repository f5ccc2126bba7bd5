// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package naming

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKebab(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"dry_run", "dry-run"},
		{"dryRun", "dry-run"},
		{"DryRun", "dry-run"},
		{"count", "count"},
		{"_private_", "private"},
		{"output-dir", "output-dir"},
	}
	for _, tt := range tests {
		if got := Kebab(tt.in); got != tt.want {
			t.Errorf("Kebab(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"--Dry_Run", "dry-run"},
		{"-h", "h"},
		{"status", "status"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShortCandidates(t *testing.T) {
	tests := []struct {
		long string
		want []string
	}{
		{"dry-run", []string{"d", "dr"}},
		{"count", []string{"c", "co"}},
		{"x", []string{"x"}},
		{"max-line-width", []string{"m", "mlw", "ma"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ShortCandidates(tt.long)); diff != "" {
			t.Errorf("ShortCandidates(%q) mismatch (-want +got):\n%s", tt.long, diff)
		}
	}
}

func TestAssignShortAliasesAreDeterministic(t *testing.T) {
	idents := []string{"count", "color", "config", "dry_run", "debug"}
	var first []Token
	for round := 0; round < 2; round++ {
		ns := FlagNamespace("app", false)
		var toks []Token
		for _, id := range idents {
			tok, err := ns.Assign(id, Options{})
			if err != nil {
				t.Fatalf("Assign(%q): %v", id, err)
			}
			toks = append(toks, tok)
		}
		if round == 0 {
			first = toks
			continue
		}
		if diff := cmp.Diff(first, toks); diff != "" {
			t.Errorf("second run differs (-first +second):\n%s", diff)
		}
	}
	want := []string{"c", "co", "", "d", "de"}
	for i, tok := range first {
		if tok.Short != want[i] {
			t.Errorf("%s short = %q, want %q", idents[i], tok.Short, want[i])
		}
	}
}

func TestAssignSkipsReservedShorts(t *testing.T) {
	ns := FlagNamespace("app", false)
	tok, err := ns.Assign("host", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if tok.Short != "ho" {
		t.Errorf("Short = %q, want %q", tok.Short, "ho")
	}
	tok, err = ns.Assign("query", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if tok.Short != "qu" {
		t.Errorf("Short = %q, want %q", tok.Short, "qu")
	}
}

func TestAssignBoolean(t *testing.T) {
	ns := FlagNamespace("app", false)
	tok, err := ns.Assign("dry_run", Options{Boolean: true, DefaultTrue: true})
	if err != nil {
		t.Fatal(err)
	}
	want := Token{Long: "dry-run", Short: "d", Negative: "no-dry-run", NegativePrimary: true}
	if diff := cmp.Diff(want, tok); diff != "" {
		t.Errorf("token mismatch (-want +got):\n%s", diff)
	}
	if got := tok.Primary(); got != "--no-dry-run" {
		t.Errorf("Primary() = %q, want %q", got, "--no-dry-run")
	}

	tok, err = ns.Assign("verbose", Options{Boolean: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := tok.Primary(); got != "--verbose" {
		t.Errorf("Primary() = %q, want %q", got, "--verbose")
	}
	if diff := cmp.Diff([]string{"-v", "--verbose", "--no-verbose"}, tok.Flags()); diff != "" {
		t.Errorf("Flags() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignReservedCollision(t *testing.T) {
	for _, id := range []string{"help", "quiet", "Help"} {
		ns := FlagNamespace("app", false)
		_, err := ns.Assign(id, Options{})
		var ne *NamingError
		if !errors.As(err, &ne) {
			t.Fatalf("Assign(%q) err = %v, want *NamingError", id, err)
		}
		if !ne.Reserved {
			t.Errorf("Assign(%q) Reserved = false, want true", id)
		}
	}

	ns := FlagNamespace("app", true)
	if _, err := ns.Assign("version", Options{}); err == nil {
		t.Error("Assign(version) with version configured succeeded, want error")
	}
	ns = FlagNamespace("app", false)
	if _, err := ns.Assign("version", Options{}); err != nil {
		t.Errorf("Assign(version) without version configured: %v", err)
	}
}

func TestAssignDuplicate(t *testing.T) {
	ns := FlagNamespace("app", false)
	if _, err := ns.Assign("dry_run", Options{}); err != nil {
		t.Fatal(err)
	}
	_, err := ns.Assign("dryRun", Options{})
	var ne *NamingError
	if !errors.As(err, &ne) {
		t.Fatalf("err = %v, want *NamingError", err)
	}
	if ne.Token != "dry-run" || ne.Owner != "dry_run" {
		t.Errorf("NamingError = %+v", ne)
	}
}

func TestAssignExplicitShort(t *testing.T) {
	ns := FlagNamespace("app", false)
	tok, err := ns.Assign("name", Options{Short: "N"})
	if err != nil {
		t.Fatal(err)
	}
	if tok.Short != "n" {
		t.Errorf("Short = %q, want %q", tok.Short, "n")
	}
	tok, err = ns.Assign("number", Options{NoShort: true})
	if err != nil {
		t.Fatal(err)
	}
	if tok.Short != "" {
		t.Errorf("Short = %q, want none", tok.Short)
	}
}

func TestAssignPositionalGetsNoShort(t *testing.T) {
	ns := FlagNamespace("app", false)
	tok, err := ns.Assign("workspace", Options{Positional: true})
	if err != nil {
		t.Fatal(err)
	}
	if tok.Short != "" || tok.Long != "workspace" {
		t.Errorf("token = %+v", tok)
	}
}

func TestClaim(t *testing.T) {
	ns := NewNamespace("app")
	if err := ns.Claim("status", "st"); err != nil {
		t.Fatal(err)
	}
	if err := ns.Claim("start", "st"); err == nil {
		t.Error("Claim with duplicate alias succeeded, want error")
	}
	if err := ns.Claim("Status"); err == nil {
		t.Error("Claim(Status) succeeded, want error")
	}
	if diff := cmp.Diff([]string{"status", "st", "start"}, ns.Tokens()); diff != "" {
		t.Errorf("Tokens() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStyle(t *testing.T) {
	for in, want := range map[string]Style{"": PositionalStyle, "keyword": KeywordStyle, "KW": KeywordStyle} {
		got, err := ParseStyle(in)
		if err != nil || got != want {
			t.Errorf("ParseStyle(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseStyle("weird"); err == nil {
		t.Error("ParseStyle(weird) succeeded")
	}
}

func TestSuggest(t *testing.T) {
	cands := []string{"status", "start", "stop", "deploy"}
	tests := []struct {
		in, want string
	}{
		{"stauts", "status"},
		{"statu", "status"},
		{"stp", "stop"},
		{"xyz", ""},
		{"deploi", "deploy"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Suggest(tt.in, cands); got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
