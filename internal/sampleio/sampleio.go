// Package sampleio reads numeric samples from text, CSV, JSON and YAML
// sources, optionally LZ4-compressed.
package sampleio

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/pierrec/lz4/v4"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Sentinel errors.
var (
	ErrEmptySample       = errors.New("sample is empty")
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrInvalidValue      = errors.New("invalid sample value")
	ErrSchemaViolation   = errors.New("input does not match sample schema")
)

// Format identifies an input encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// StdinPath is the path that selects standard input.
const StdinPath = "-"

const lz4Ext = ".lz4"

//go:embed sample.schema.json
var sampleSchema []byte

// Options control how a sample is decoded.
type Options struct {
	// Format forces the decoder. Empty means detect from the file name.
	Format Format
	// Column selects the CSV column, either a zero-based index or a header
	// name. Empty selects the first column.
	Column string
}

// Formats returns the supported format names.
func Formats() []string {
	return []string{string(FormatCSV), string(FormatJSON), string(FormatText), string(FormatYAML)}
}

// ParseFormat validates a format name. The empty string is returned unchanged
// and means "detect".
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(name))
	if f == "" || slices.Contains(Formats(), string(f)) {
		return f, nil
	}

	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, name, strings.Join(Formats(), ", "))
}

// DetectFormat infers the format from a file name, ignoring a trailing .lz4.
// Unknown extensions read as text.
func DetectFormat(path string) Format {
	name := strings.TrimSuffix(strings.ToLower(path), lz4Ext)

	switch filepath.Ext(name) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// ReadFile reads a sample from path, or from stdin when path is "-".
// Files ending in .lz4 are decompressed as LZ4 frames.
func ReadFile(path string, opts Options) ([]float64, error) {
	if opts.Format == "" {
		opts.Format = DetectFormat(path)
	}

	if path == StdinPath {
		return Read(os.Stdin, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sample: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), lz4Ext) {
		r = lz4.NewReader(f)
	}

	values, err := Read(r, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return values, nil
}

// Read decodes a sample from r. An empty opts.Format reads text.
func Read(r io.Reader, opts Options) ([]float64, error) {
	var (
		values []float64
		err    error
	)

	switch opts.Format {
	case "", FormatText:
		values, err = readText(r)
	case FormatCSV:
		values, err = readCSV(r, opts.Column)
	case FormatJSON:
		values, err = readJSON(r)
	case FormatYAML:
		values, err = readYAML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}

	if err != nil {
		return nil, err
	}

	if len(values) == 0 {
		return nil, ErrEmptySample
	}

	return values, nil
}

// readText parses numbers separated by whitespace or commas. Text after '#'
// is a comment. Lines have no length limit.
func readText(r io.Reader) ([]float64, error) {
	var values []float64

	reader := bufio.NewReader(r)
	line := 0

	for {
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("read sample: %w", readErr)
		}

		if raw == "" && readErr != nil {
			break
		}

		line++

		text, _, _ := strings.Cut(raw, "#")
		fields := strings.FieldsFunc(text, func(c rune) bool {
			return c == ',' || unicode.IsSpace(c)
		})

		for _, field := range fields {
			v, err := parseValue(field)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}

			values = append(values, v)
		}

		if readErr != nil {
			break
		}
	}

	return values, nil
}

// readCSV reads one column. A column given by name requires a header row; a
// column given by index skips a first row that does not parse as a number.
// Blank cells are skipped.
func readCSV(r io.Reader, column string) ([]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	index, byName := 0, false

	if column != "" {
		index, err = strconv.Atoi(column)
		byName = err != nil
	}

	switch {
	case byName:
		index = slices.Index(records[0], column)
		if index < 0 {
			return nil, fmt.Errorf("%w: column %q not in header %v", ErrInvalidValue, column, records[0])
		}

		records = records[1:]
	case index < 0:
		return nil, fmt.Errorf("%w: negative column index %d", ErrInvalidValue, index)
	case index < len(records[0]) && !isNumber(records[0][index]):
		records = records[1:]
	}

	values := make([]float64, 0, len(records))

	for i, record := range records {
		if index >= len(record) || strings.TrimSpace(record[index]) == "" {
			continue
		}

		v, err := parseValue(record[index])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		values = append(values, v)
	}

	return values, nil
}

// readJSON validates the document against the embedded schema before decoding.
func readJSON(r io.Reader) ([]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read sample: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(sampleSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			msgs = append(msgs, verr.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(msgs, "; "))
	}

	var doc any

	err = json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	return fromDocument(doc)
}

// readYAML accepts the same shapes as JSON: a sequence of numbers or a
// mapping with a "sample" sequence.
func readYAML(r io.Reader) ([]float64, error) {
	var doc any

	err := yaml.NewDecoder(r).Decode(&doc)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	return fromDocument(doc)
}

func fromDocument(doc any) ([]float64, error) {
	var items []any

	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		sample, ok := v["sample"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected a \"sample\" list", ErrSchemaViolation)
		}

		items = sample
	default:
		return nil, fmt.Errorf("%w: expected a list of numbers, got %T", ErrSchemaViolation, doc)
	}

	values := make([]float64, 0, len(items))

	for i, item := range items {
		var v float64

		switch n := item.(type) {
		case float64:
			v = n
		case int:
			v = float64(n)
		case int64:
			v = float64(n)
		case uint64:
			v = float64(n)
		default:
			return nil, fmt.Errorf("%w: item %d is %T, not a number", ErrSchemaViolation, i, item)
		}

		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: item %d is not finite", ErrInvalidValue, i)
		}

		values = append(values, v)
	}

	return values, nil
}

func parseValue(field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidValue, field)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidValue, field)
	}

	return v, nil
}

func isNumber(field string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(field), 64)

	return err == nil
}
