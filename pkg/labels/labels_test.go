package labels

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Table
	}{
		{
			name:  "indexed lines",
			input: "0 cat\n1 dog\n",
			want:  Table{0: "cat", 1: "dog"},
		},
		{
			name:  "bare lines use line position",
			input: "cat\ndog\n",
			want:  Table{0: "cat", 1: "dog"},
		},
		{
			name:  "colon and whitespace separators",
			input: "3: person\n7:\tcar\n9 :  truck",
			want:  Table{3: "person", 7: "car", 9: "truck"},
		},
		{
			name:  "sparse indices",
			input: "0 person\n2 car\n",
			want:  Table{0: "person", 2: "car"},
		},
		{
			name:  "bare multi-word name",
			input: "person\ntraffic light\n",
			want:  Table{0: "person", 1: "traffic light"},
		},
		{
			name:  "indexed multi-word name",
			input: "9 traffic light",
			want:  Table{9: "traffic light"},
		},
		{
			name:  "blank lines keep position",
			input: "person\n\nbicycle\n",
			want:  Table{0: "person", 2: "bicycle"},
		},
		{
			name:  "digits without name are a bare label",
			input: "cat\n42\n",
			want:  Table{0: "cat", 1: "42"},
		},
		{
			name:  "crlf line endings",
			input: "0 cat\r\n1 dog\r\n",
			want:  Table{0: "cat", 1: "dog"},
		},
		{
			name:  "empty source",
			input: "",
			want:  Table{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tc.input))
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTableName(t *testing.T) {
	table := Table{0: "cat", 1: "dog"}

	name, err := table.Name(1)
	require.NoError(t, err)
	assert.Equal(t, "dog", name)

	_, err = table.Name(5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownClass))
}

func TestTableIDs(t *testing.T) {
	table := Table{7: "car", 0: "person", 2: "bicycle"}
	assert.Equal(t, []int{0, 2, 7}, table.IDs())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	require.NoError(t, os.WriteFile(path, []byte("0 cat\n1 dog\n"), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Table{0: "cat", 1: "dog"}, table)
}

func TestLoad_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.txt")

	_, err := Load(path)
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, path, pe.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_ReadErrorCarriesPath(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)

	var pe *ParseError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, dir, pe.Path)
	assert.Contains(t, pe.Error(), dir)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestParse_ReadError(t *testing.T) {
	_, err := Parse(failingReader{})

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Error(), "disk on fire")
}
