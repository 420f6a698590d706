package sampleio_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/resample/internal/sampleio"
)

func TestRead_Text(t *testing.T) {
	t.Parallel()

	input := "# heights\n1 2.5\n3,4\n\n  -5e0  # trailing\n"

	values, err := sampleio.Read(strings.NewReader(input), sampleio.Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 3, 4, -5}, values)
}

func TestRead_TextLongLine(t *testing.T) {
	t.Parallel()

	const count = 20_000

	input := strings.Repeat("12345 ", count-1) + "12345"

	values, err := sampleio.Read(strings.NewReader(input), sampleio.Options{Format: sampleio.FormatText})
	require.NoError(t, err)
	require.Len(t, values, count)
	assert.InDelta(t, 12345.0, values[count-1], 0)
}

func TestRead_TextErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "not_a_number", input: "1 two 3", wantErr: sampleio.ErrInvalidValue},
		{name: "nan", input: "1 NaN", wantErr: sampleio.ErrInvalidValue},
		{name: "inf", input: "+Inf", wantErr: sampleio.ErrInvalidValue},
		{name: "empty", input: "", wantErr: sampleio.ErrEmptySample},
		{name: "only_comments", input: "# nothing\n# here\n", wantErr: sampleio.ErrEmptySample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := sampleio.Read(strings.NewReader(tt.input), sampleio.Options{Format: sampleio.FormatText})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRead_CSV(t *testing.T) {
	t.Parallel()

	const withHeader = "name,height,weight\na,170,65\nb,182,\nc,165,58\n"

	tests := []struct {
		name     string
		input    string
		column   string
		expected []float64
	}{
		{name: "by_name", input: withHeader, column: "weight", expected: []float64{65, 58}},
		{name: "by_index_skips_header", input: withHeader, column: "1", expected: []float64{170, 182, 165}},
		{name: "default_first_column", input: "1\n2\n3\n", column: "", expected: []float64{1, 2, 3}},
		{name: "comment_rows", input: "# exported\n4,x\n5,y\n", column: "0", expected: []float64{4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			values, err := sampleio.Read(strings.NewReader(tt.input), sampleio.Options{
				Format: sampleio.FormatCSV,
				Column: tt.column,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, values)
		})
	}
}

func TestRead_CSVErrors(t *testing.T) {
	t.Parallel()

	_, err := sampleio.Read(strings.NewReader("a,b\n1,2\n"), sampleio.Options{Format: sampleio.FormatCSV, Column: "c"})
	require.ErrorIs(t, err, sampleio.ErrInvalidValue)

	_, err = sampleio.Read(strings.NewReader("1\n2\n"), sampleio.Options{Format: sampleio.FormatCSV, Column: "-1"})
	require.ErrorIs(t, err, sampleio.ErrInvalidValue)

	_, err = sampleio.Read(strings.NewReader("1\nfoo\n"), sampleio.Options{Format: sampleio.FormatCSV})
	require.ErrorIs(t, err, sampleio.ErrInvalidValue)

	_, err = sampleio.Read(strings.NewReader("h\n"), sampleio.Options{Format: sampleio.FormatCSV})
	require.ErrorIs(t, err, sampleio.ErrEmptySample)
}

func TestRead_JSON(t *testing.T) {
	t.Parallel()

	values, err := sampleio.Read(strings.NewReader("[1, 2, 3.5]"), sampleio.Options{Format: sampleio.FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3.5}, values)

	values, err = sampleio.Read(strings.NewReader(`{"name": "dice", "sample": [6, 1]}`),
		sampleio.Options{Format: sampleio.FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 1}, values)
}

func TestRead_JSONErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "string_item", input: `[1, "2"]`, wantErr: sampleio.ErrSchemaViolation},
		{name: "missing_sample_key", input: `{"values": [1]}`, wantErr: sampleio.ErrSchemaViolation},
		{name: "scalar", input: `42`, wantErr: sampleio.ErrSchemaViolation},
		{name: "malformed", input: `[1, 2`, wantErr: sampleio.ErrInvalidValue},
		{name: "empty_array", input: `[]`, wantErr: sampleio.ErrEmptySample},
		{name: "blank", input: "  \n", wantErr: sampleio.ErrEmptySample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := sampleio.Read(strings.NewReader(tt.input), sampleio.Options{Format: sampleio.FormatJSON})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRead_YAML(t *testing.T) {
	t.Parallel()

	values, err := sampleio.Read(strings.NewReader("- 1\n- 2.5\n- -3\n"), sampleio.Options{Format: sampleio.FormatYAML})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, -3}, values)

	values, err = sampleio.Read(strings.NewReader("sample: [4, 5]\n"), sampleio.Options{Format: sampleio.FormatYAML})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5}, values)

	_, err = sampleio.Read(strings.NewReader("sample: [a]\n"), sampleio.Options{Format: sampleio.FormatYAML})
	require.ErrorIs(t, err, sampleio.ErrSchemaViolation)

	_, err = sampleio.Read(strings.NewReader("- .nan\n"), sampleio.Options{Format: sampleio.FormatYAML})
	require.ErrorIs(t, err, sampleio.ErrInvalidValue)

	_, err = sampleio.Read(strings.NewReader(""), sampleio.Options{Format: sampleio.FormatYAML})
	require.ErrorIs(t, err, sampleio.ErrEmptySample)
}

func TestRead_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := sampleio.Read(strings.NewReader("1"), sampleio.Options{Format: "xml"})
	require.ErrorIs(t, err, sampleio.ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := sampleio.ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, sampleio.FormatJSON, f)

	f, err = sampleio.ParseFormat("")
	require.NoError(t, err)
	assert.Empty(t, f)

	_, err = sampleio.ParseFormat("parquet")
	require.ErrorIs(t, err, sampleio.ErrUnsupportedFormat)
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]sampleio.Format{
		"data.csv":      sampleio.FormatCSV,
		"data.CSV.lz4":  sampleio.FormatCSV,
		"data.json":     sampleio.FormatJSON,
		"data.yml":      sampleio.FormatYAML,
		"data.yaml.lz4": sampleio.FormatYAML,
		"data.txt":      sampleio.FormatText,
		"data":          sampleio.FormatText,
		"-":             sampleio.FormatText,
	}

	for path, expected := range tests {
		assert.Equal(t, expected, sampleio.DetectFormat(path), path)
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sample": [1, 2, 3]}`), 0o600))

	values, err := sampleio.ReadFile(path, sampleio.Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, values)

	_, err = sampleio.ReadFile(filepath.Join(dir, "missing.txt"), sampleio.Options{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFile_LZ4(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sample.csv.lz4")

	f, err := os.Create(path)
	require.NoError(t, err)

	w := lz4.NewWriter(f)
	_, err = w.Write([]byte("x\n1.5\n2.5\n3.5\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	values, err := sampleio.ReadFile(path, sampleio.Options{Column: "x"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5, 3.5}, values)
}
