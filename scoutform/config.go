package scoutform

import (
	"errors"
	"fmt"
)

// FieldType enumerates the field kinds an admin can put on a scouting form.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldLongText FieldType = "longtext"
	FieldNumber   FieldType = "number"
	FieldBoolean  FieldType = "boolean"
	FieldEnum     FieldType = "enum"
	FieldRadio    FieldType = "radio"
	FieldRating   FieldType = "rating"
)

// Option is one selectable value for enum and radio fields.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Field struct {
	ID          string    `json:"id"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required"`
	Options     []Option  `json:"options,omitempty"`
}

// Category is one step of the scouting form. Insertion order of categories
// defines step order.
type Category struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}

// Config is the admin-authored schema for a season's scouting form. Entry
// values are keyed by field id as flat keys, so field ids must be unique
// across the whole config, not just within their category.
type Config struct {
	ID         string     `json:"id"`
	SeasonID   string     `json:"seasonId"`
	Name       string     `json:"name"`
	Version    int        `json:"version"`
	Categories []Category `json:"categories"`
}

var ErrNoCategories = errors.New("scouting config must have at least one category")

// Validate checks the structural invariants of a config. It is called by the
// seasons controller before a config is saved; entries already submitted
// against an older config are never touched.
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return ErrNoCategories
	}

	seen := make(map[string]bool)
	for _, cat := range c.Categories {
		if cat.ID == "" {
			return fmt.Errorf("category %q has no id", cat.Title)
		}
		for _, f := range cat.Fields {
			if f.ID == "" {
				return fmt.Errorf("field %q in category %q has no id", f.Label, cat.ID)
			}
			if reservedEntryKeys[f.ID] {
				return fmt.Errorf("field id %q collides with a reserved entry key", f.ID)
			}
			if seen[f.ID] {
				return fmt.Errorf("duplicate field id %q", f.ID)
			}
			seen[f.ID] = true

			if _, ok := fieldKinds[f.Type]; !ok {
				return fmt.Errorf("field %q has unknown type %q", f.ID, f.Type)
			}

			if f.Type == FieldEnum || f.Type == FieldRadio {
				values := make(map[string]bool)
				for _, o := range f.Options {
					if values[o.Value] {
						return fmt.Errorf("field %q has duplicate option value %q", f.ID, o.Value)
					}
					values[o.Value] = true
				}
			}
		}
	}
	return nil
}

// FieldByID looks a field up across all categories.
func (c *Config) FieldByID(id string) (Field, bool) {
	for _, cat := range c.Categories {
		for _, f := range cat.Fields {
			if f.ID == id {
				return f, true
			}
		}
	}
	return Field{}, false
}
