// Package bindings loads extra global bindings for an Environment from a
// YAML document. The top level must be a mapping; each key becomes a
// global name. Mappings become plain objects with their keys in document
// order, sequences become arrays and scalars keep their YAML type.
package bindings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/evaljs/builtins"
	"github.com/example/evaljs/runtime"
	"gopkg.in/yaml.v3"
)

// Load reads a bindings file from disk.
func Load(path string) (map[string]*runtime.Value, error) {
	if path == "" {
		return nil, fmt.Errorf("bindings: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("bindings: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("bindings: open %s: %w", absPath, err)
	}
	defer file.Close()

	scope, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("bindings: %s: %w", absPath, err)
	}
	return scope, nil
}

// Parse decodes bindings from an in-memory document.
func Parse(data []byte) (map[string]*runtime.Value, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads one YAML document from r. An empty document yields no
// bindings.
func Decode(r io.Reader) (map[string]*runtime.Value, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]*runtime.Value{}, nil
		}
		return nil, err
	}
	return FromNode(&doc)
}

// FromNode converts a mapping node, or a document wrapping one, into
// bindings.
func FromNode(node *yaml.Node) (map[string]*runtime.Value, error) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return map[string]*runtime.Value{}, nil
		}
		node = node.Content[0]
	}
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return map[string]*runtime.Value{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: bindings must be a mapping", node.Line)
	}
	builtins.Init()
	scope := make(map[string]*runtime.Value, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return nil, err
		}
		if name == "" {
			return nil, fmt.Errorf("line %d: empty binding name", node.Content[i].Line)
		}
		v, err := Value(node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		scope[name] = v
	}
	return scope, nil
}

// Value converts a single YAML node into a script value.
func Value(node *yaml.Node) (*runtime.Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return runtime.Undefined, nil
		}
		return Value(node.Content[0])
	case yaml.AliasNode:
		return Value(node.Alias)
	case yaml.SequenceNode:
		elems := make([]*runtime.Value, len(node.Content))
		for i, item := range node.Content {
			v, err := Value(item)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return runtime.NewArray(elems), nil
	case yaml.MappingNode:
		obj := runtime.NewPlainObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			var key string
			if err := node.Content[i].Decode(&key); err != nil {
				return nil, err
			}
			v, err := Value(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		return runtime.NewObject(obj), nil
	case yaml.ScalarNode:
		return scalar(node)
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %d", node.Line, node.Kind)
}

func scalar(node *yaml.Node) (*runtime.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return runtime.Null, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return runtime.NewBool(b), nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return nil, err
		}
		return runtime.NewNumber(float64(n)), nil
	case "!!float":
		switch strings.ToLower(node.Value) {
		case ".nan":
			return runtime.NewNumber(math.NaN()), nil
		case ".inf", "+.inf":
			return runtime.NewNumber(math.Inf(1)), nil
		case "-.inf":
			return runtime.NewNumber(math.Inf(-1)), nil
		}
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return runtime.NewNumber(f), nil
	}
	return runtime.NewString(node.Value), nil
}
