package collection

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"databench/internal/model"
)

// Collection is an ordered, 0-indexed sequence of records with a selection
// cursor. Indices are contiguous: every removal re-indexes the records that
// follow. Records are exclusively owned by the collection while they are
// members.
type Collection struct {
	prefix   string
	records  []model.Record
	current  int // -1 when nothing is current
	selected []int

	titleRef *regexp.Regexp
}

// NewCollection creates an empty collection whose records are identified by
// the given positional prefix (e.g. "s" for signals).
func NewCollection(prefix string) *Collection {
	return &Collection{
		prefix:   prefix,
		current:  -1,
		titleRef: regexp.MustCompile(regexp.QuoteMeta(prefix) + "[0-9]{3}"),
	}
}

// Prefix returns the positional prefix.
func (c *Collection) Prefix() string {
	return c.prefix
}

// Len returns the number of records.
func (c *Collection) Len() int {
	return len(c.records)
}

// At returns the record at row.
func (c *Collection) At(row int) model.Record {
	return c.records[row]
}

// Records returns a snapshot of the record list.
func (c *Collection) Records() []model.Record {
	return append([]model.Record(nil), c.records...)
}

// Append adds a record at the end and returns its row.
func (c *Collection) Append(rec model.Record) int {
	c.records = append(c.records, rec)
	return len(c.records) - 1
}

// Insert adds a record at row, shifting subsequent records up. row may
// equal Len, which appends. Positional references embedded in titles are
// renumbered.
func (c *Collection) Insert(row int, rec model.Record) {
	c.fixTitles(row, +1)
	c.records = append(c.records, nil)
	copy(c.records[row+1:], c.records[row:])
	c.records[row] = rec
	c.shiftSelection(row, +1)
}

// Remove deletes the record at row, shifting subsequent records down and
// renumbering positional references embedded in titles.
func (c *Collection) Remove(row int) {
	c.fixTitles(row, -1)
	c.records = append(c.records[:row], c.records[row+1:]...)
	c.shiftSelection(row, -1)
}

// RemoveAll clears the collection in one bulk reset.
func (c *Collection) RemoveAll() {
	c.records = nil
	c.current = -1
	c.selected = nil
}

// CurrentRow returns the cursor row, or -1 when nothing is current.
func (c *Collection) CurrentRow() int {
	return c.current
}

// SetCurrentRow moves the cursor, replacing the multi-row selection. An
// out-of-range row clears the selection.
func (c *Collection) SetCurrentRow(row int) {
	if row < 0 || row >= len(c.records) {
		c.current = -1
		c.selected = nil
		return
	}
	c.current = row
	c.selected = []int{row}
}

// SelectedRows returns the multi-row selection in ascending order.
func (c *Collection) SelectedRows() []int {
	return append([]int(nil), c.selected...)
}

// SelectRows replaces the multi-row selection, dropping out-of-range rows.
// The cursor moves to the highest selected row.
func (c *Collection) SelectRows(rows []int) {
	var valid []int
	for _, row := range rows {
		if row >= 0 && row < len(c.records) {
			valid = append(valid, row)
		}
	}
	sort.Ints(valid)
	c.selected = valid
	if len(valid) == 0 {
		c.current = -1
		return
	}
	c.current = valid[len(valid)-1]
}

// shiftSelection keeps the selection and cursor consistent across an
// insertion (sign=+1) or removal (sign=-1) at row.
func (c *Collection) shiftSelection(row, sign int) {
	var kept []int
	for _, sel := range c.selected {
		switch {
		case sign < 0 && sel == row:
			continue // removed row leaves the selection
		case sign < 0 && sel > row:
			kept = append(kept, sel-1)
		case sign > 0 && sel >= row:
			kept = append(kept, sel+1)
		default:
			kept = append(kept, sel)
		}
	}
	c.selected = kept
	switch {
	case sign < 0 && c.current == row:
		c.current = -1
	case sign < 0 && c.current > row:
		c.current--
	case sign > 0 && c.current >= row && c.current != -1:
		c.current++
	}
	if len(c.records) == 0 {
		c.current = -1
		c.selected = nil
	}
}

// fixTitles renumbers positional references ("s003") embedded in record
// titles before adding (sign=+1) or removing (sign=-1) a record at row.
// References to a removed row become "<prefix>xxx".
func (c *Collection) fixTitles(row, sign int) {
	for _, rec := range c.records {
		title := c.titleRef.ReplaceAllStringFunc(rec.Title(), func(ref string) string {
			idx, err := strconv.Atoi(ref[len(c.prefix):])
			if err != nil {
				return ref
			}
			switch {
			case sign == -1 && idx == row:
				return c.prefix + "xxx"
			case (sign == -1 && idx > row) || (sign == 1 && idx >= row):
				return fmt.Sprintf("%s%03d", c.prefix, idx+sign)
			default:
				return ref
			}
		})
		rec.SetTitle(title)
	}
}
