package models

// Field is one path/value pair of a FlatRecord.
type Field struct {
	Path  string
	Value JSONValue
}

// FlatRecord is one denormalized row: an ordered mapping from dot-path to a
// scalar value. A FlatRecord is immutable once built.
type FlatRecord struct {
	fields []Field
	index  map[string]int
}

// NewFlatRecord builds a record from fields in order. When a path repeats,
// the later value wins and the first position is kept.
func NewFlatRecord(fields ...Field) FlatRecord {
	r := FlatRecord{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if i, ok := r.index[f.Path]; ok {
			r.fields[i].Value = f.Value
			continue
		}
		r.index[f.Path] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r
}

// Get returns the value stored at path and whether the path is present.
func (r FlatRecord) Get(path string) (JSONValue, bool) {
	i, ok := r.index[path]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Len returns the number of paths in the record.
func (r FlatRecord) Len() int {
	return len(r.fields)
}

// Paths returns the record's paths in order.
func (r FlatRecord) Paths() []string {
	paths := make([]string, len(r.fields))
	for i, f := range r.fields {
		paths[i] = f.Path
	}
	return paths
}

// Fields returns a copy of the record's fields in order.
func (r FlatRecord) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Object converts the record into an Object keyed by path.
func (r FlatRecord) Object() *Object {
	o := &Object{}
	for _, f := range r.fields {
		o.Set(f.Path, f.Value)
	}
	return o
}
