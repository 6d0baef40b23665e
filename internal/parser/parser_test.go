package parser

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/mcncl/jsonshaper/internal/errors"
	"github.com/mcncl/jsonshaper/internal/models"
)

func obj(kv ...interface{}) *models.Object {
	o := &models.Object{}
	for i := 0; i < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1])
	}
	return o
}

func TestParse_SimpleObject(t *testing.T) {
	jsonStr := `{"name": "John Doe", "age": 30, "isStudent": false, "city": null}`
	ir, err := Parse(strings.NewReader(jsonStr))
	if err != nil {
		t.Fatalf("Parse() error = %v, wantErr nil", err)
	}

	if ir.RootIsArray {
		t.Errorf("Parse() ir.RootIsArray = true, want false for an object")
	}

	expectedRoot := obj(
		"name", "John Doe",
		"age", json.Number("30"),
		"isStudent", false,
		"city", nil,
	)
	if !reflect.DeepEqual(ir.Root, expectedRoot) {
		t.Errorf("Parse() root = %v, want %v", ir.Root, expectedRoot)
	}
}

func TestParse_KeyOrderPreserved(t *testing.T) {
	jsonStr := `{"zeta": 1, "alpha": {"y": 2, "b": 3}, "mid": [ {"k2": 1, "k1": 2} ]}`
	ir, err := Parse(strings.NewReader(jsonStr))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	root := ir.Root.(*models.Object)
	if got := root.Keys(); !reflect.DeepEqual(got, []string{"zeta", "alpha", "mid"}) {
		t.Errorf("root keys = %v", got)
	}
	alpha, _ := root.Get("alpha")
	if got := alpha.(*models.Object).Keys(); !reflect.DeepEqual(got, []string{"y", "b"}) {
		t.Errorf("alpha keys = %v", got)
	}
	mid, _ := root.Get("mid")
	elem := mid.(models.Array)[0].(*models.Object)
	if got := elem.Keys(); !reflect.DeepEqual(got, []string{"k2", "k1"}) {
		t.Errorf("array element keys = %v", got)
	}
}

func TestParse_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	ir, err := ParseString(`{"a": 1, "b": 2, "a": 3}`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	expected := obj("a", json.Number("3"), "b", json.Number("2"))
	if !reflect.DeepEqual(ir.Root, expected) {
		t.Errorf("ParseString() root = %v, want %v", ir.Root, expected)
	}
}

func TestParse_SimpleArray(t *testing.T) {
	ir, err := Parse(strings.NewReader(`[1, "test", true, null, 3.14, {}, []]`))
	if err != nil {
		t.Fatalf("Parse() error = %v, wantErr nil", err)
	}

	if !ir.RootIsArray {
		t.Errorf("Parse() ir.RootIsArray = false, want true for an array")
	}

	expectedRoot := models.Array{
		json.Number("1"),
		"test",
		true,
		nil,
		json.Number("3.14"),
		&models.Object{},
		models.Array{},
	}
	if !reflect.DeepEqual(ir.Root, expectedRoot) {
		t.Errorf("Parse() root = %#v, want %#v", ir.Root, expectedRoot)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if err == nil {
		t.Fatalf("Parse() with empty reader, err = nil, want error")
	}
	if !stderrors.Is(err, errors.ErrEmptyInput) {
		t.Errorf("Parse() with empty reader, err = %v, want ErrEmptyInput", err)
	}
}

func TestParseString_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := ParseString(input)
		if err == nil {
			t.Errorf("ParseString(%q) err = nil, want error", input)
		} else if !strings.Contains(err.Error(), "input string is empty") {
			t.Errorf("ParseString(%q) err = %v, want error containing 'input string is empty'", input, err)
		}
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing closing brace", `{"name": "John Doe", "age": 30`},
		{"missing closing bracket", `["item1", "item2",`},
		{"missing colon", `{"a" 1}`},
		{"bare word", `{"a": nope}`},
		{"trailing comma", `{"a": 1,}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			if err == nil {
				t.Fatalf("ParseString() with malformed JSON, err = nil, want error")
			}
			if !stderrors.Is(err, errors.ErrInvalidJSON) {
				t.Errorf("ParseString() err = %v, want ErrInvalidJSON", err)
			}
		})
	}
}

func TestParse_MultipleValues(t *testing.T) {
	_, err := ParseString(`{"a": 1} {"b": 2}`)
	if !stderrors.Is(err, errors.ErrMultipleJSON) {
		t.Errorf("ParseString() err = %v, want ErrMultipleJSON", err)
	}

	if _, err := ParseString("{\"a\": 1}\n\n  "); err != nil {
		t.Errorf("ParseString() with trailing whitespace err = %v, want nil", err)
	}
}

func TestParser_MaxDepth(t *testing.T) {
	p := NewParser(3)

	if _, err := p.ParseString(`[[[1]]]`); err != nil {
		t.Errorf("depth 3 err = %v, want nil", err)
	}

	_, err := p.ParseString(`[[[[1]]]]`)
	if !stderrors.Is(err, errors.ErrNestingTooDeep) {
		t.Errorf("depth 4 err = %v, want ErrNestingTooDeep", err)
	}

	_, err = p.ParseString(`{"a": {"b": {"c": {"d": 1}}}}`)
	if !stderrors.Is(err, errors.ErrNestingTooDeep) {
		t.Errorf("object depth 4 err = %v, want ErrNestingTooDeep", err)
	}
}

func TestNewParser_DefaultDepth(t *testing.T) {
	if p := NewParser(0); p.maxDepth != DefaultMaxDepth {
		t.Errorf("NewParser(0).maxDepth = %d, want %d", p.maxDepth, DefaultMaxDepth)
	}
}

func TestParseFile_SimpleObject(t *testing.T) {
	content := `{"product": "Laptop", "price": 1200.50}`
	tmpfile, err := os.CreateTemp("", "test_simple_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	ir, err := ParseFile(tmpfile.Name())
	if err != nil {
		t.Fatalf("ParseFile() error = %v, wantErr nil", err)
	}

	expectedRoot := obj("product", "Laptop", "price", json.Number("1200.50"))
	if !reflect.DeepEqual(ir.Root, expectedRoot) {
		t.Errorf("ParseFile() root = %v, want %v", ir.Root, expectedRoot)
	}
}

func TestParseFile_NonExistentFile(t *testing.T) {
	_, err := ParseFile("nonexistentfile.json")
	if err == nil {
		t.Fatalf("ParseFile() with non-existent file, err = nil, want error")
	}
	if !stderrors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("ParseFile() with non-existent file, err = %v, want ErrFileNotFound", err)
	}
}

func TestParseFile_EmptyPath(t *testing.T) {
	_, err := ParseFile("")
	if err == nil {
		t.Errorf("ParseFile() with empty path, err = nil, want error")
	} else if !strings.Contains(err.Error(), "file path is empty") {
		t.Errorf("ParseFile() with empty path, err = %v, want error containing 'file path is empty'", err)
	}
}

func TestParseFile_EmptyFileContent(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_empty_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	_, err = ParseFile(tmpfile.Name())
	if !stderrors.Is(err, errors.ErrFileEmpty) {
		t.Errorf("ParseFile() with empty file content, err = %v, want ErrFileEmpty", err)
	}
}

func TestParse_RootPrimitives(t *testing.T) {
	testCases := []struct {
		name        string
		jsonStr     string
		expectedVal interface{}
	}{
		{"RootString", `"hello world"`, "hello world"},
		{"RootNumber", `123.45`, json.Number("123.45")},
		{"RootBooleanTrue", `true`, true},
		{"RootBooleanFalse", `false`, false},
		{"RootNull", `null`, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ir, err := Parse(strings.NewReader(tc.jsonStr))
			if err != nil {
				t.Fatalf("Parse() error = %v, wantErr nil for %s", err, tc.name)
			}

			if ir.RootIsArray {
				t.Errorf("Parse() ir.RootIsArray = true, want false for %s", tc.name)
			}

			if !reflect.DeepEqual(ir.Root, tc.expectedVal) {
				t.Errorf("Parse() root = %#v (type %T), want %#v (type %T) for %s", ir.Root, ir.Root, tc.expectedVal, tc.expectedVal, tc.name)
			}
		})
	}
}
