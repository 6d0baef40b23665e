package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/jsonshaper/internal/errors" // Custom errors package
	"github.com/mcncl/jsonshaper/internal/models"
)

// DefaultMaxDepth bounds object/array nesting accepted by the parser.
const DefaultMaxDepth = 10000

// Parser decodes JSON text into models values, keeping object keys in
// document order.
type Parser struct {
	maxDepth int
}

// NewParser creates a parser that rejects documents nested deeper than
// maxDepth. A non-positive maxDepth selects DefaultMaxDepth.
func NewParser(maxDepth int) *Parser {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Parser{maxDepth: maxDepth}
}

// Parse converts JSON data from an io.Reader into an IntermediateRepresentation
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	return NewParser(DefaultMaxDepth).Parse(reader)
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	return NewParser(DefaultMaxDepth).ParseString(jsonString)
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.IntermediateRepresentation, error) {
	return NewParser(DefaultMaxDepth).ParseFile(filePath)
}

// Parse converts JSON data from an io.Reader into an IntermediateRepresentation
func (p *Parser) Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // Ensure numbers are read as json.Number

	tok, err := decoder.Token()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.IntermediateRepresentation{}, decodeError(err)
	}

	rootValue, err := p.decodeValue(decoder, tok, 1)
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}

	// Anything other than EOF after the first value is either a second
	// document or garbage.
	if _, err := decoder.Token(); err == nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return models.IntermediateRepresentation{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
	}

	_, isArray := rootValue.(models.Array)
	return models.IntermediateRepresentation{
		Root:        rootValue,
		RootIsArray: isArray,
	}, nil
}

// ParseString parses JSON from a string
func (p *Parser) ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return p.Parse(strings.NewReader(jsonString))
}

// ParseFile parses JSON from a file path
func (p *Parser) ParseFile(filePath string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.IntermediateRepresentation{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return p.Parse(file)
}

// decodeValue builds the value that starts with tok. Objects are read key by
// key so their order survives.
func (p *Parser) decodeValue(dec *json.Decoder, tok json.Token, depth int) (models.JSONValue, error) {
	delim, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool or nil
		return tok, nil
	}
	if depth > p.maxDepth {
		return nil, errors.NewParsingError(
			fmt.Sprintf("nesting depth exceeds limit of %d", p.maxDepth),
			errors.ErrNestingTooDeep,
		)
	}

	switch delim {
	case '{':
		obj := &models.Object{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, decodeError(err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, errors.NewParsingError(fmt.Sprintf("unexpected object key %v", keyTok), errors.ErrInvalidJSON)
			}
			valTok, err := dec.Token()
			if err != nil {
				return nil, decodeError(err)
			}
			val, err := p.decodeValue(dec, valTok, depth+1)
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		if _, err := dec.Token(); err != nil { // closing brace
			return nil, decodeError(err)
		}
		return obj, nil
	case '[':
		arr := models.Array{}
		for dec.More() {
			elemTok, err := dec.Token()
			if err != nil {
				return nil, decodeError(err)
			}
			elem, err := p.decodeValue(dec, elemTok, depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		if _, err := dec.Token(); err != nil { // closing bracket
			return nil, decodeError(err)
		}
		return arr, nil
	default:
		return nil, errors.NewParsingError(fmt.Sprintf("unexpected delimiter %q", rune(delim)), errors.ErrInvalidJSON)
	}
}

// decodeError maps decoder failures onto parsing errors.
func decodeError(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError("failed to decode JSON", err)
}
