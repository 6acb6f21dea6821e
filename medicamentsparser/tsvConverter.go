package medicamentsparser

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/giygas/bdpm-api/logging"
)

// FileStats summarizes how a committed file was read.
type FileStats struct {
	Rows       int    `json:"rows"`
	Recovered  int    `json:"recovered"`
	EmptyLines int    `json:"empty_lines"`
	Missing    bool   `json:"missing"`
	Digest     uint64 `json:"-"`
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFile reads a tab-separated file into rows of exactly len(columns)
// fields. Rows that do not match the layout are kept in positional form and
// counted in FileStats.Recovered. A missing file yields no rows and no error.
func ParseFile(path string, columns []string) ([][]string, FileStats, error) {
	var stats FileStats

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Warn("Source file not found, table will be empty", "path", path)
			stats.Missing = true
			return [][]string{}, stats, nil
		}
		return nil, stats, fmt.Errorf("failed to read %s: %w", path, err)
	}
	stats.Digest = xxhash.Sum64(content)
	content = bytes.TrimPrefix(content, utf8BOM)

	rows := make([][]string, 0, bytes.Count(content, []byte{'\n'})+1)
	for len(content) > 0 {
		var raw []byte
		if i := bytes.IndexByte(content, '\n'); i >= 0 {
			raw, content = content[:i], content[i+1:]
		} else {
			raw, content = content, nil
		}
		line := string(bytes.TrimSuffix(raw, []byte{'\r'}))
		if strings.TrimSpace(line) == "" {
			stats.EmptyLines++
			continue
		}

		row, ok := strictRow(line, len(columns))
		if !ok {
			row = recoverRow(line, len(columns))
			stats.Recovered++
		}
		rows = append(rows, row)
	}

	stats.Rows = len(rows)
	if stats.Recovered > 0 {
		logging.Info("Rows recovered in line-by-line mode",
			"path", path,
			"recovered", stats.Recovered,
			"records_parsed", stats.Rows)
	}
	return rows, stats, nil
}

// strictRow accepts a line with exactly n fields (trailing empty fields
// tolerated) and no control characters.
func strictRow(line string, n int) ([]string, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < n {
		return nil, false
	}
	for _, extra := range fields[n:] {
		if strings.TrimSpace(extra) != "" {
			return nil, false
		}
	}

	row := make([]string, n)
	for i := 0; i < n; i++ {
		field := strings.TrimSpace(fields[i])
		if strings.IndexFunc(field, unicode.IsControl) >= 0 {
			return nil, false
		}
		row[i] = field
	}
	return row, true
}

// recoverRow assigns the first n tokens to the first n columns, leaving the
// missing ones empty. Control characters are dropped.
func recoverRow(line string, n int) []string {
	fields := strings.Split(line, "\t")
	row := make([]string, n)
	for i := 0; i < n && i < len(fields); i++ {
		row[i] = strings.TrimSpace(stripControl(fields[i]))
	}
	return row
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
