package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/clo/scenario"
)

var hundred = decimal.NewFromInt(100)

// ParseNumber parses an extract number. Thousands separators are ignored
// and a trailing % divides by 100.
func ParseNumber(s string) (float64, error) {
	v := strings.TrimSpace(s)
	v = strings.ReplaceAll(v, ",", "")
	v = strings.ReplaceAll(v, "_", "")

	percent := strings.HasSuffix(v, "%")
	v = strings.TrimSpace(strings.TrimSuffix(v, "%"))
	if v == "" {
		return 0, fmt.Errorf("empty number")
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	if percent {
		d = d.Div(hundred)
	}
	f, _ := d.Float64()
	return f, nil
}

// ParseDate accepts YYYY-MM-DD and DD/MM/YYYY.
func ParseDate(s string) (time.Time, error) {
	return scenario.ParseDate(s)
}

// table reads a CSV extract with a header row, addressing columns by
// case-insensitive name.
type table struct {
	name   string
	r      *csv.Reader
	cols   map[string]int
	row    []string
	line   int
	errors []error
}

func newTable(r io.Reader, name string, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: empty file", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[key] = i
	}

	var missing []string
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: missing column(s): %s", name, strings.Join(missing, ", "))
	}

	return &table{name: name, r: cr, cols: cols}, nil
}

// next advances to the next non-blank row.
func (t *table) next() (bool, error) {
	for {
		row, err := t.r.Read()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%s: %w", t.name, err)
		}
		if blank(row) {
			continue
		}
		t.row = row
		t.line, _ = t.r.FieldPos(0)
		return true, nil
	}
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func (t *table) has(col string) bool {
	_, ok := t.cols[col]
	return ok
}

func (t *table) str(col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(t.row) {
		return ""
	}
	return strings.TrimSpace(t.row[i])
}

func (t *table) fail(col string, err error) {
	t.errors = append(t.errors, fmt.Errorf("%s:%d: column %s: %w", t.name, t.line, col, err))
}

func (t *table) required(col string) (string, bool) {
	v := t.str(col)
	if v == "" {
		t.fail(col, fmt.Errorf("value is required"))
		return "", false
	}
	return v, true
}

func (t *table) number(col string) float64 {
	v, ok := t.required(col)
	if !ok {
		return 0
	}
	f, err := ParseNumber(v)
	if err != nil {
		t.fail(col, err)
	}
	return f
}

// optNumber returns 0 for a missing or empty column.
func (t *table) optNumber(col string) float64 {
	v := t.str(col)
	if v == "" {
		return 0
	}
	f, err := ParseNumber(v)
	if err != nil {
		t.fail(col, err)
	}
	return f
}

func (t *table) integer(col string) int {
	f := t.number(col)
	if f != float64(int(f)) {
		t.fail(col, fmt.Errorf("%v is not a whole number", f))
	}
	return int(f)
}

func (t *table) date(col string) time.Time {
	v, ok := t.required(col)
	if !ok {
		return time.Time{}
	}
	d, err := ParseDate(v)
	if err != nil {
		t.fail(col, err)
	}
	return d
}

// optDate returns the zero time for a missing or empty column.
func (t *table) optDate(col string) time.Time {
	v := t.str(col)
	if v == "" {
		return time.Time{}
	}
	d, err := ParseDate(v)
	if err != nil {
		t.fail(col, err)
	}
	return d
}
