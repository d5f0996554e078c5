// Package labels resolves detector class ids to display names.
//
// A label file has one entry per line, either "<index> <name>" or a bare
// "<name>". Bare lines take their 0-based line position as the index.
// Any run of whitespace and colons separates index from name, so
// "3 dog", "3: dog" and "3:dog" are equivalent. Bare names keep their
// inner spaces ("traffic light"). Blank lines are skipped but still
// advance the line position.
package labels

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var separator = regexp.MustCompile(`[:\s]+`)

// Table maps class ids to names. It is read-only once loaded.
type Table map[int]string

// Name returns the name for id.
func (t Table) Name(id int) (string, error) {
	name, ok := t[id]
	if !ok {
		return "", fmt.Errorf("%w: %d (table has %d entries)", ErrUnknownClass, id, len(t))
	}
	return name, nil
}

// IDs returns the class ids in ascending order.
func (t Table) IDs() []int {
	ids := make([]int, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Load reads a label file from disk.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	return t, nil
}

// Parse reads label lines from r.
func Parse(r io.Reader) (Table, error) {
	t := make(Table)
	scanner := bufio.NewScanner(r)

	row := 0
	for scanner.Scan() {
		parseLine(t, row, scanner.Text())
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: row + 1, Err: err}
	}
	return t, nil
}

func parseLine(t Table, row int, line string) {
	content := strings.TrimSpace(line)
	if content == "" {
		return
	}

	pair := separator.Split(content, 2)
	if len(pair) == 2 && isDigits(pair[0]) {
		if id, err := strconv.Atoi(pair[0]); err == nil {
			t[id] = strings.TrimSpace(pair[1])
			return
		}
	}
	t[row] = content
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
