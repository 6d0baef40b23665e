package formatter

import (
	"bufio"
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/mcncl/jsonshaper/internal/errors"
	"github.com/mcncl/jsonshaper/internal/models"
)

// Formatter serializes models values as JSON text. Object members keep
// their order, members holding models.Absent are left out and Absent array
// elements are written as null.
type Formatter struct {
	indent string
}

// NewFormatter creates a Formatter that indents nested values by indent
// spaces. An indent of zero writes compact JSON.
func NewFormatter(indent int) *Formatter {
	if indent < 0 {
		indent = 0
	}
	return &Formatter{indent: strings.Repeat(" ", indent)}
}

// Format returns value as JSON text without a trailing newline.
func (f *Formatter) Format(value models.JSONValue) (string, error) {
	var buf bytes.Buffer
	if err := f.encode(&buf, value, 0); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write serializes value to w followed by a newline.
func (f *Formatter) Write(w io.Writer, value models.JSONValue) error {
	bw := bufio.NewWriter(w)
	if err := f.encode(bw, value, 0); err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return err
		}
		return errors.NewOutputError("failed to write output", err)
	}
	if err := bw.WriteByte('\n'); err != nil {
		return errors.NewOutputError("failed to write output", err)
	}
	if err := bw.Flush(); err != nil {
		return errors.NewOutputError("failed to write output", err)
	}
	return nil
}

type writer interface {
	io.Writer
	io.ByteWriter
	io.StringWriter
}

func (f *Formatter) encode(w writer, value models.JSONValue, level int) error {
	switch v := value.(type) {
	case nil:
		_, err := w.WriteString("null")
		return err
	case bool:
		if v {
			_, err := w.WriteString("true")
			return err
		}
		_, err := w.WriteString("false")
		return err
	case json.Number:
		if !isValidNumber(v) {
			return errors.NewFormatError(fmt.Sprintf("invalid number literal %q", string(v)), nil)
		}
		_, err := w.WriteString(string(v))
		return err
	case string:
		return writeString(w, v)
	case models.Array:
		return f.encodeArray(w, len(v), func(i int) models.JSONValue { return v[i] }, level)
	case []models.FlatRecord:
		return f.encodeArray(w, len(v), func(i int) models.JSONValue { return v[i] }, level)
	case *models.Object:
		return f.encodeMembers(w, v.Members(), level)
	case models.FlatRecord:
		return f.encodeMembers(w, v.Object().Members(), level)
	default:
		if models.IsAbsent(v) {
			_, err := w.WriteString("null")
			return err
		}
		return errors.NewFormatError(fmt.Sprintf("unsupported value of type %T", v), nil)
	}
}

func (f *Formatter) encodeArray(w writer, n int, at func(int) models.JSONValue, level int) error {
	if n == 0 {
		_, err := w.WriteString("[]")
		return err
	}
	if err := w.WriteByte('['); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := f.newline(w, level+1); err != nil {
			return err
		}
		if err := f.encode(w, at(i), level+1); err != nil {
			return err
		}
	}
	if err := f.newline(w, level); err != nil {
		return err
	}
	return w.WriteByte(']')
}

func (f *Formatter) encodeMembers(w writer, members []models.Member, level int) error {
	written := 0
	for _, m := range members {
		if models.IsAbsent(m.Value) {
			continue
		}
		if written == 0 {
			if err := w.WriteByte('{'); err != nil {
				return err
			}
		} else if err := w.WriteByte(','); err != nil {
			return err
		}
		if err := f.newline(w, level+1); err != nil {
			return err
		}
		if err := writeString(w, m.Key); err != nil {
			return err
		}
		if err := w.WriteByte(':'); err != nil {
			return err
		}
		if f.indent != "" {
			if err := w.WriteByte(' '); err != nil {
				return err
			}
		}
		if err := f.encode(w, m.Value, level+1); err != nil {
			return err
		}
		written++
	}
	if written == 0 {
		_, err := w.WriteString("{}")
		return err
	}
	if err := f.newline(w, level); err != nil {
		return err
	}
	return w.WriteByte('}')
}

func (f *Formatter) newline(w writer, level int) error {
	if f.indent == "" {
		return nil
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	for i := 0; i < level; i++ {
		if _, err := w.WriteString(f.indent); err != nil {
			return err
		}
	}
	return nil
}

// writeString quotes s the way encoding/json does, minus HTML escaping.
func writeString(w writer, s string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return errors.NewFormatError("failed to encode string", err)
	}
	_, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return err
}

func isValidNumber(n json.Number) bool {
	if n == "" {
		return false
	}
	if c := n[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	return json.Valid([]byte(n))
}
