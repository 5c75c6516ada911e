package bindings

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/evaljs/runtime"
	"github.com/google/go-cmp/cmp"
)

const sample = `
name: evaljs
port: 8080
ratio: 0.25
enabled: true
missing: ~
tags: [a, b]
limits:
  zeta: 1
  alpha: 2
nan: .nan
quoted: "42"
`

func TestParseScalars(t *testing.T) {
	scope, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := scope["name"]; got.Type != runtime.TypeString || got.Str != "evaljs" {
		t.Errorf("name = %v", got)
	}
	if got := scope["port"]; got.Type != runtime.TypeNumber || got.Number != 8080 {
		t.Errorf("port = %v", got)
	}
	if got := scope["ratio"]; got.Number != 0.25 {
		t.Errorf("ratio = %v", got.Number)
	}
	if got := scope["enabled"]; got.Type != runtime.TypeBoolean || !got.Bool {
		t.Errorf("enabled = %v", got)
	}
	if got := scope["missing"]; got.Type != runtime.TypeNull {
		t.Errorf("missing = %v", got)
	}
	if got := scope["nan"]; !math.IsNaN(got.Number) {
		t.Errorf("nan = %v", got.Number)
	}
	if got := scope["quoted"]; got.Type != runtime.TypeString || got.Str != "42" {
		t.Errorf("quoted = %v", got)
	}
}

func TestParseCollections(t *testing.T) {
	scope, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tags := scope["tags"]
	if tags.Type != runtime.TypeObject || tags.Object.OType != runtime.ObjTypeArray {
		t.Fatalf("tags = %v", tags)
	}
	var got []string
	for _, v := range tags.Object.ArrayData {
		got = append(got, v.Str)
	}
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}

	limits := scope["limits"]
	if limits.Type != runtime.TypeObject {
		t.Fatalf("limits = %v", limits)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha"}, limits.Object.Keys()); diff != "" {
		t.Errorf("key order (-want +got):\n%s", diff)
	}
	if n := limits.Object.Get("alpha").Number; n != 2 {
		t.Errorf("limits.alpha = %v", n)
	}
}

func TestEmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "~\n", "# nothing\n"} {
		scope, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse(%q): %v", doc, err)
		}
		if len(scope) != 0 {
			t.Errorf("Parse(%q) = %v", doc, scope)
		}
	}
}

func TestRejectsNonMapping(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	if err == nil || !strings.Contains(err.Error(), "must be a mapping") {
		t.Fatalf("err = %v", err)
	}
	if _, err := Parse([]byte("a: [1, 2")); err == nil {
		t.Fatal("expected a syntax error")
	}
}

func TestAliases(t *testing.T) {
	scope, err := Parse([]byte("base: &b {x: 1}\ncopy: *b\n"))
	if err != nil {
		t.Fatal(err)
	}
	if n := scope["copy"].Object.Get("x").Number; n != 1 {
		t.Errorf("copy.x = %v", n)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.yaml")
	if err := os.WriteFile(path, []byte("greeting: hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	scope, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if scope["greeting"].Str != "hi" {
		t.Errorf("greeting = %v", scope["greeting"])
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if _, err := Load(""); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}
