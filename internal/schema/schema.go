// Package schema models the tree that tells the restructurer how each source
// field appears in the rebuilt document, and loads it from JSON or YAML.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonshaper/internal/errors"
)

// UnnamedKey is the output key given to nodes that have neither a key nor a path.
const UnnamedKey = "unnamed"

// Node is one instruction of a schema tree.
//
// Path names the source field as a dot-joined path (empty for synthetic
// containers). Key is the output name. Children are only consulted when
// Mode is Group or Object, and their order is the output order.
type Node struct {
	Key      string  `json:"key" yaml:"key"`
	Path     string  `json:"path" yaml:"path"`
	Mode     Mode    `json:"mode" yaml:"mode"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Format selects the encoding of a schema file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromPath picks the format from a file extension; anything that is
// not .yml or .yaml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFile reads and parses a schema tree from a file
func ParseFile(path string) ([]*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewSchemaError(fmt.Sprintf("schema file '%s' not found", path), errors.ErrFileNotFound)
		}
		return nil, errors.NewSchemaError(fmt.Sprintf("failed to read schema file '%s'", path), err)
	}

	return ParseBytes(data, FormatFromPath(path))
}

// ParseString parses a schema tree from a string
func ParseString(s string, format Format) ([]*Node, error) {
	return ParseBytes([]byte(s), format)
}

// ParseBytes parses a schema tree. The document is a list of nodes, each
// `{key, path, mode, children}`. Empty input is an empty layer.
func ParseBytes(data []byte, format Format) ([]*Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var layer []*Node
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &layer); err != nil {
			return nil, errors.NewSchemaError("failed to parse YAML schema", wrapInvalid(err))
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &layer); err != nil {
			return nil, errors.NewSchemaError("failed to parse JSON schema", wrapInvalid(err))
		}
	default:
		return nil, errors.NewSchemaError(fmt.Sprintf("unknown schema format %d", format), errors.ErrInvalidSchema)
	}

	if err := normalize(layer, "$"); err != nil {
		return nil, err
	}
	return layer, nil
}

// Encode writes layer to w in the given format.
func Encode(w io.Writer, layer []*Node, format Format) error {
	if layer == nil {
		layer = []*Node{}
	}
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(layer); err != nil {
			return errors.NewFormatError("failed to encode schema as YAML", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(layer); err != nil {
			return errors.NewFormatError("failed to encode schema as JSON", err)
		}
		return nil
	default:
		return errors.NewFormatError(fmt.Sprintf("unknown schema format %d", format), nil)
	}
}

// normalize fills in default keys and rejects nil nodes.
func normalize(layer []*Node, where string) error {
	for i, n := range layer {
		at := fmt.Sprintf("%s[%d]", where, i)
		if n == nil {
			return errors.NewSchemaError(fmt.Sprintf("empty node at %s", at), errors.ErrInvalidSchema)
		}
		n.Key = strings.TrimSpace(n.Key)
		if n.Key == "" {
			n.Key = defaultKey(n.Path)
		}
		if n.Mode == Field {
			continue
		}
		if err := normalize(n.Children, at+".children"); err != nil {
			return err
		}
	}
	return nil
}

func defaultKey(path string) string {
	if path == "" {
		return UnnamedKey
	}
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		if seg := path[i+1:]; seg != "" {
			return seg
		}
	}
	return path
}

func wrapInvalid(err error) error {
	return fmt.Errorf("%w: %v", errors.ErrInvalidSchema, err)
}

// CycleError reports a node that appears among its own ancestors.
type CycleError struct {
	// Chain holds the keys from the layer root down to the repeated node.
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("schema node %q refers back to an ancestor (%s)",
		e.Chain[len(e.Chain)-1], strings.Join(e.Chain, " > "))
}

// Unwrap lets errors.Is match ErrSchemaCycle.
func (e *CycleError) Unwrap() error {
	return errors.ErrSchemaCycle
}

// CheckAcyclic returns a *CycleError if any node of layer is reachable from
// itself. Field nodes are leaves no matter what children they hold. A
// subtree shared by several parents is not a cycle.
func CheckAcyclic(layer []*Node) error {
	onPath := make(map[*Node]bool)
	done := make(map[*Node]bool)
	var chain []string

	var visit func(nodes []*Node) error
	visit = func(nodes []*Node) error {
		for _, n := range nodes {
			if n == nil || n.Mode == Field || done[n] {
				continue
			}
			chain = append(chain, n.Key)
			if onPath[n] {
				return &CycleError{Chain: append([]string(nil), chain...)}
			}
			onPath[n] = true
			if err := visit(n.Children); err != nil {
				return err
			}
			onPath[n] = false
			done[n] = true
			chain = chain[:len(chain)-1]
		}
		return nil
	}

	return visit(layer)
}

// Depth returns the number of container levels in layer, counting the
// layer itself as one. An empty layer has depth zero. Callers must check
// CheckAcyclic first.
func Depth(layer []*Node) int {
	if len(layer) == 0 {
		return 0
	}
	deepest := 0
	for _, n := range layer {
		if n == nil || n.Mode == Field {
			continue
		}
		if d := Depth(n.Children); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Count returns the number of nodes reachable from layer, treating Field
// nodes as leaves. Callers must check CheckAcyclic first.
func Count(layer []*Node) int {
	total := 0
	for _, n := range layer {
		if n == nil {
			continue
		}
		total++
		if n.Mode != Field {
			total += Count(n.Children)
		}
	}
	return total
}
