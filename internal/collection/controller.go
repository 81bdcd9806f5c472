package collection

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"databench/internal/model"
)

// Variant describes one record family handled by a controller: its
// positional prefix, the container group collecting it, and how to build an
// empty record for deserialization and duplication.
type Variant struct {
	Prefix    string
	GroupName string
	New       func() model.Record
}

// Signals is the 1-D record variant.
func Signals() Variant {
	return Variant{
		Prefix:    "s",
		GroupName: "Databench_Sig",
		New:       func() model.Record { return &model.Signal{} },
	}
}

// Images is the 2-D record variant.
func Images() Variant {
	return Variant{
		Prefix:    "i",
		GroupName: "Databench_Ima",
		New:       func() model.Record { return &model.Image{} },
	}
}

// Controller orchestrates user-level operations on a collection, keeps its
// indices and selection consistent, and emits change notifications. The
// metadata clipboard is controller-owned state, overwritten by each copy.
type Controller struct {
	variant   Variant
	objs      *Collection
	clipboard model.Metadata
	listeners map[EventType][]Listener
}

// NewController creates a controller with an empty collection of the given
// variant.
func NewController(v Variant) *Controller {
	return &Controller{
		variant:   v,
		objs:      NewCollection(v.Prefix),
		listeners: make(map[EventType][]Listener),
	}
}

// Variant returns the controller's record variant.
func (c *Controller) Variant() Variant {
	return c.variant
}

// Collection returns the controlled collection. Callers must not mutate it
// directly; all mutation goes through controller operations.
func (c *Controller) Collection() *Collection {
	return c.objs
}

// Len returns the number of records.
func (c *Controller) Len() int {
	return c.objs.Len()
}

// Record returns the record at row, or nil when out of range.
func (c *Controller) Record(row int) model.Record {
	if row < 0 || row >= c.objs.Len() {
		return nil
	}
	return c.objs.At(row)
}

// On registers a listener for the given event type.
func (c *Controller) On(event EventType, listener Listener) {
	c.listeners[event] = append(c.listeners[event], listener)
}

func (c *Controller) emit(event EventType) {
	for _, listener := range c.listeners[event] {
		listener()
	}
}

// Add appends a record; the cursor moves to it.
func (c *Controller) Add(rec model.Record) {
	row := c.objs.Append(rec)
	c.objs.SetCurrentRow(row)
	c.emit(EventObjectAdded)
}

// Insert places a record at row (row may equal Len, which appends); the
// cursor moves to the inserted row.
func (c *Controller) Insert(rec model.Record, row int) {
	c.objs.Insert(row, rec)
	c.objs.SetCurrentRow(row)
	c.emit(EventObjectAdded)
}

// SelectRows updates the multi-row selection.
func (c *Controller) SelectRows(rows []int) {
	c.objs.SelectRows(rows)
	c.emit(EventSelectionChanged)
}

// Duplicate clones the given rows, inserting each clone immediately after
// its original. Rows are processed in descending order so duplicates never
// shift not-yet-processed originals. An empty row set is a no-op.
func (c *Controller) Duplicate(rows []int) error {
	if len(rows) == 0 {
		return nil
	}
	desc := descending(rows)
	for _, row := range desc {
		obj := c.Record(row)
		if obj == nil {
			continue
		}
		clone := c.variant.New()
		clone.SetTitle(obj.Title())
		if err := clone.CopyDataFrom(obj); err != nil {
			return fmt.Errorf("failed to duplicate row %d: %w", row, err)
		}
		c.objs.Insert(row+1, clone)
		c.objs.SetCurrentRow(row + 1)
		c.emit(EventObjectAdded)
	}
	c.emit(EventRefresh)
	return nil
}

// Remove deletes the given rows in descending order, so earlier indices
// stay valid during the loop. The selection resets to row 0, or to nothing
// when the collection empties. An empty row set is a no-op.
func (c *Controller) Remove(rows []int) {
	if len(rows) == 0 {
		return
	}
	for _, row := range descending(rows) {
		if row < 0 || row >= c.objs.Len() {
			continue
		}
		c.objs.Remove(row)
	}
	c.objs.SetCurrentRow(0)
	c.emit(EventRefresh)
	c.emit(EventObjectRemoved)
}

// RemoveAll clears the collection in a single bulk reset. On an empty
// collection it is a no-op and emits nothing; otherwise it emits exactly
// one removal notification.
func (c *Controller) RemoveAll() {
	if c.objs.Len() == 0 {
		return
	}
	c.objs.RemoveAll()
	c.emit(EventRefresh)
	c.emit(EventObjectRemoved)
}

// CopyMetadata snapshots the metadata of the record at row into the
// clipboard. Result-shape entries whose label does not already carry this
// collection's positional prefix are rewritten under a prefix derived from
// the source row, together with any plain entries keyed by the old label,
// so pasting onto a record holding a same-named result cannot collide.
func (c *Controller) CopyMetadata(row int) {
	obj := c.Record(row)
	if obj == nil {
		return
	}
	c.clipboard = obj.Metadata().Copy()
	newPref := model.PositionPrefix(c.variant.Prefix, row)
	for key, v := range obj.Metadata() {
		rs, ok := model.MatchResultShape(key, v)
		if !ok || rs.HasPositionPrefix(c.variant.Prefix) {
			continue
		}
		// Move additional results (e.g. "diam...") under the new label.
		for aKey := range obj.Metadata() {
			if strings.HasPrefix(aKey, rs.Label) {
				aVal := c.clipboard[aKey]
				delete(c.clipboard, aKey)
				c.clipboard[newPref+aKey] = aVal
			}
		}
		shapeVal := c.clipboard[key]
		delete(c.clipboard, key)
		rs.Label = newPref + rs.Label
		c.clipboard[rs.Key()] = shapeVal
	}
}

// Clipboard returns the current clipboard snapshot (nil when nothing was
// copied yet).
func (c *Controller) Clipboard() model.Metadata {
	return c.clipboard
}

// PasteMetadata merges the clipboard into each target row's metadata,
// overwriting same-key entries and retaining the rest.
func (c *Controller) PasteMetadata(rows []int) {
	if len(rows) == 0 || c.clipboard == nil {
		return
	}
	for _, row := range descending(rows) {
		if obj := c.Record(row); obj != nil {
			obj.Metadata().Merge(c.clipboard)
		}
	}
	c.emit(EventRefresh)
}

// DeleteMetadata replaces each target row's metadata with an empty mapping.
func (c *Controller) DeleteMetadata(rows []int) {
	if len(rows) == 0 {
		return
	}
	for _, row := range rows {
		if obj := c.Record(row); obj != nil {
			obj.SetMetadata(model.Metadata{})
		}
	}
	c.emit(EventRefresh)
}

// ExportMetadataTo writes the metadata of the record at row as JSON.
func (c *Controller) ExportMetadataTo(row int, w io.Writer) error {
	obj := c.Record(row)
	if obj == nil {
		return fmt.Errorf("no record at row %d", row)
	}
	data, err := json.MarshalIndent(obj.Metadata(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ImportMetadataFrom replaces the metadata of the record at row with the
// mapping decoded from r. On decode failure the record is unchanged.
func (c *Controller) ImportMetadataFrom(row int, r io.Reader) error {
	obj := c.Record(row)
	if obj == nil {
		return fmt.Errorf("no record at row %d", row)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	var meta model.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("failed to decode metadata: %w", err)
	}
	obj.SetMetadata(meta)
	c.emit(EventRefresh)
	return nil
}

/// ListEntries returns the display list, one "<prefix><row>: <title>" entry
// per record.
func (c *Controller) ListEntries() []string {
	entries := make([]string, c.objs.Len())
	for row := 0; row < c.objs.Len(); row++ {
		entries[row] = fmt.Sprintf("%s%03d: %s", c.variant.Prefix, row, c.objs.At(row).Title())
	}
	return entries
}

func descending(rows []int) []int {
	out := append([]int(nil), rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
