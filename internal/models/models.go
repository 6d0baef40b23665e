// Package models holds the JSON value model shared by the parser, the
// flattener, the restructurer and the formatter.
package models

import "encoding/json"

// JSONValue is a generic type to represent any JSON value.
// It is one of nil, bool, json.Number, string, Array or *Object. Values built
// by the restructurer may also be Absent, a FlatRecord or []FlatRecord.
type JSONValue interface{}

// Array is an ordered sequence of JSON values.
type Array []JSONValue

// absent is the type of Absent.
type absent struct{}

// Absent marks a field whose path was missing from a record. It is distinct
// from JSON null: the formatter drops object members holding Absent.
var Absent JSONValue = absent{}

// IsAbsent reports whether v is the Absent marker.
func IsAbsent(v JSONValue) bool {
	_, ok := v.(absent)
	return ok
}

// IsScalar reports whether v is a JSON scalar or null.
func IsScalar(v JSONValue) bool {
	switch v.(type) {
	case nil, bool, string, json.Number:
		return true
	default:
		return false
	}
}

// IsContainer reports whether v is an object or an array.
func IsContainer(v JSONValue) bool {
	switch v.(type) {
	case *Object, Array:
		return true
	default:
		return false
	}
}

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value JSONValue
}

// Object is a JSON object that remembers insertion order. The zero value is
// an empty object ready to use.
type Object struct {
	members []Member
	index   map[string]int
}

// NewObject returns an object holding members in order. A repeated key
// replaces the earlier value and keeps the earlier position.
func NewObject(members ...Member) *Object {
	o := &Object{}
	for _, m := range members {
		o.Set(m.Key, m.Value)
	}
	return o
}

// Set stores value under key. Existing keys keep their position.
func (o *Object) Set(key string, value JSONValue) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.members[i].Value = value
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: value})
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (JSONValue, bool) {
	if o == nil {
		return nil, false
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].Value, true
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Keys returns the keys in order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns a copy of the members in order.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	out := make([]Member, len(o.members))
	copy(out, o.members)
	return out
}

// IntermediateRepresentation holds a decoded document together with a few
// facts about its root the CLI reports on.
type IntermediateRepresentation struct {
	Root        JSONValue
	RootIsArray bool
}
