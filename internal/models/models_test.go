package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_SetKeepsPosition(t *testing.T) {
	o := &Object{}
	o.Set("b", json.Number("1"))
	o.Set("a", "x")
	o.Set("b", json.Number("2"))

	assert.Equal(t, []string{"b", "a"}, o.Keys())
	v, ok := o.Get("b")
	require.True(t, ok)
	assert.Equal(t, json.Number("2"), v)
	assert.Equal(t, 2, o.Len())
}

func TestObject_NilReceiver(t *testing.T) {
	var o *Object
	_, ok := o.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, o.Len())
	assert.Nil(t, o.Keys())
}

func TestObject_MembersIsCopy(t *testing.T) {
	o := NewObject(Member{Key: "a", Value: "1"})
	members := o.Members()
	members[0].Value = "changed"

	v, _ := o.Get("a")
	assert.Equal(t, "1", v)
}

func TestFlatRecord_RepeatedPath(t *testing.T) {
	r := NewFlatRecord(
		Field{Path: "a", Value: json.Number("1")},
		Field{Path: "b.c", Value: "x"},
		Field{Path: "a", Value: json.Number("3")},
	)

	assert.Equal(t, []string{"a", "b.c"}, r.Paths())
	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, json.Number("3"), v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestFlatRecord_NullIsPresent(t *testing.T) {
	r := NewFlatRecord(Field{Path: "a", Value: nil})

	v, ok := r.Get("a")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestFlatRecord_Object(t *testing.T) {
	r := NewFlatRecord(Field{Path: "x.y", Value: true}, Field{Path: "z", Value: nil})
	o := r.Object()

	assert.Equal(t, []string{"x.y", "z"}, o.Keys())
}

func TestValueKinds(t *testing.T) {
	tests := []struct {
		name      string
		value     JSONValue
		scalar    bool
		container bool
	}{
		{"null", nil, true, false},
		{"bool", false, true, false},
		{"number", json.Number("1.5"), true, false},
		{"string", "s", true, false},
		{"array", Array{}, false, true},
		{"object", &Object{}, false, true},
		{"absent", Absent, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.scalar, IsScalar(tt.value))
			assert.Equal(t, tt.container, IsContainer(tt.value))
		})
	}
	assert.True(t, IsAbsent(Absent))
	assert.False(t, IsAbsent(nil))
}
