package collection

import (
	"fmt"
	"regexp"
	"strings"

	"databench/internal/container"
	"databench/internal/model"
)

// titleSanitizer strips characters that are not legal in group names.
var titleSanitizer = regexp.MustCompile(`[^-a-zA-Z0-9_.() ]+`)

// GroupName builds the container group name of the record at row:
// "<prefix><row>: <sanitized title>".
func GroupName(prefix string, row int, title string) string {
	clean := titleSanitizer.ReplaceAllString(strings.ReplaceAll(title, "/", "_"), "")
	return fmt.Sprintf("%s%03d: %s", prefix, row, clean)
}

// Serialize writes every record, in collection order, into the variant's
// top-level container group. Transient state (selection, clipboard) is
// never persisted.
func (c *Controller) Serialize(w container.Writer) error {
	return w.Group(c.variant.GroupName, func(g container.Writer) error {
		for row := 0; row < c.objs.Len(); row++ {
			obj := c.objs.At(row)
			name := GroupName(c.variant.Prefix, row, obj.Title())
			err := g.Group(name, func(og container.Writer) error {
				return obj.Serialize(og)
			})
			if err != nil {
				return fmt.Errorf("failed to serialize %s: %w", name, err)
			}
		}
		return nil
	})
}

// Deserialize reconstructs one record per child group of the variant's
// top-level group, in the order the container yields them, and appends them
// to the collection. Nothing is added if any record fails to decode.
func (c *Controller) Deserialize(r container.Reader) error {
	var loaded []model.Record
	err := r.Group(c.variant.GroupName, func(g container.Reader) error {
		names, err := g.ListGroups()
		if err != nil {
			return err
		}
		for _, name := range names {
			obj := c.variant.New()
			err := g.Group(name, func(og container.Reader) error {
				return obj.Deserialize(og)
			})
			if err != nil {
				return fmt.Errorf("failed to deserialize %s: %w", name, err)
			}
			loaded = append(loaded, obj)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, obj := range loaded {
		c.Add(obj)
	}
	return nil
}
