// Package flatten denormalizes a JSON document into flat records, one per
// leaf branch, in depth-first document order.
package flatten

import (
	"github.com/mcncl/jsonshaper/internal/models"
)

// RootScalarPath is the path given to a scalar that has no enclosing key,
// such as a bare scalar document.
const RootScalarPath = "value"

// Flatten turns value into flat records. Every scalar collected on the way
// from the root to a leaf branch appears in that branch's record under its
// dot-joined path. Array elements share the array's path.
//
// Flatten never fails and always returns at least one record; {} and []
// both produce a single empty record.
func Flatten(value models.JSONValue) []models.FlatRecord {
	f := &flattener{}
	f.walk(value, "")
	return f.records
}

// flattener holds the scalars collected on the current root-to-node chain as
// a stack. Every frame that pushes releases exactly what it pushed before it
// returns, so sibling branches never see each other's fields.
type flattener struct {
	context []models.Field
	records []models.FlatRecord
}

// open starts a frame and returns the function that closes it.
func (f *flattener) open() (release func()) {
	mark := len(f.context)
	return func() {
		clear(f.context[mark:])
		f.context = f.context[:mark]
	}
}

func (f *flattener) push(path string, value models.JSONValue) {
	f.context = append(f.context, models.Field{Path: path, Value: value})
}

// emit snapshots the context as a new record.
func (f *flattener) emit() {
	f.records = append(f.records, models.NewFlatRecord(f.context...))
}

func (f *flattener) walk(value models.JSONValue, path string) {
	switch v := value.(type) {
	case models.Array:
		if len(v) == 0 {
			f.emit()
			return
		}
		for _, elem := range v {
			f.walk(elem, path)
		}

	case *models.Object:
		f.walkObject(v, path)

	default:
		release := f.open()
		defer release()

		if path == "" {
			path = RootScalarPath
		}
		f.push(path, v)
		f.emit()
	}
}

func (f *flattener) walkObject(obj *models.Object, path string) {
	if obj.Len() == 0 {
		f.emit()
		return
	}

	release := f.open()
	defer release()

	members := obj.Members()
	hasNested := false
	for _, m := range members {
		if models.IsContainer(m.Value) {
			hasNested = true
			continue
		}
		f.push(join(path, m.Key), m.Value)
	}

	if !hasNested {
		f.emit()
		return
	}

	for _, m := range members {
		if models.IsContainer(m.Value) {
			f.walk(m.Value, join(path, m.Key))
		}
	}
}

func join(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// Paths returns every path that occurs in records, in first-seen order.
func Paths(records []models.FlatRecord) []string {
	seen := make(map[string]struct{})
	var paths []string
	for _, r := range records {
		for _, p := range r.Paths() {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			paths = append(paths, p)
		}
	}
	return paths
}
