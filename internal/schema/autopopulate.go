package schema

import (
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/jsonshaper/internal/models"
)

// AutoOptions controls how AutoPopulate names the nodes it creates.
type AutoOptions struct {
	// KeyCase renames output keys: "", "snake", "camel", "lower_camel",
	// "kebab" or "screaming_snake". Paths always keep the source name.
	KeyCase string
	// KeyMappings renames specific source keys and wins over KeyCase.
	KeyMappings map[string]string
}

// AutoPopulate derives the starting schema for a document: every object key
// becomes a node, scalar values become Field nodes and objects or arrays
// become Object nodes whose children come from the value. Arrays contribute
// the shape of their first element only.
//
// Restructuring a document's records with this schema rebuilds one object
// per record.
func AutoPopulate(value models.JSONValue, opts AutoOptions) []*Node {
	return autoPopulate(value, "", opts)
}

func autoPopulate(value models.JSONValue, path string, opts AutoOptions) []*Node {
	switch v := value.(type) {
	case models.Array:
		if len(v) == 0 {
			return nil
		}
		return autoPopulate(v[0], path, opts)
	case *models.Object:
		nodes := make([]*Node, 0, v.Len())
		for _, m := range v.Members() {
			childPath := joinPath(path, m.Key)
			node := &Node{
				Key:  opts.outputKey(m.Key),
				Path: childPath,
				Mode: Field,
			}
			if models.IsContainer(m.Value) {
				node.Mode = Object
				node.Children = autoPopulate(m.Value, childPath, opts)
			}
			nodes = append(nodes, node)
		}
		return nodes
	default:
		return nil
	}
}

func (o AutoOptions) outputKey(source string) string {
	if mapped, ok := o.KeyMappings[source]; ok {
		return mapped
	}
	var key string
	switch strings.ToLower(o.KeyCase) {
	case "snake":
		key = strcase.ToSnake(source)
	case "camel":
		key = strcase.ToCamel(source)
	case "lower_camel":
		key = strcase.ToLowerCamel(source)
	case "kebab":
		key = strcase.ToKebab(source)
	case "screaming_snake":
		key = strcase.ToScreamingSnake(source)
	default:
		key = source
	}
	if strings.TrimSpace(key) == "" {
		return UnnamedKey
	}
	return key
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
