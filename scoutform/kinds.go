package scoutform

import (
	"fmt"
	"strconv"
	"strings"
)

// RatingMax is the upper bound of the rating scale rendered as 1..5 buttons.
const RatingMax = 5

// fieldKind is the per-type strategy for a field: how to default it and how
// to turn raw text input into a typed value. Adding a field type means adding
// one row here instead of growing switch arms in every renderer.
type fieldKind struct {
	defaultValue func(f Field) any
	parse        func(f Field, raw string) (any, error)
}

var fieldKinds = map[FieldType]fieldKind{
	FieldText:     {defaultValue: emptyString, parse: parseString},
	FieldLongText: {defaultValue: emptyString, parse: parseString},
	FieldNumber: {
		defaultValue: func(Field) any { return 0 },
		parse: func(f Field, raw string) (any, error) {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				return 0, nil
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: not a number: %q", f.ID, raw)
			}
			return n, nil
		},
	},
	FieldBoolean: {
		defaultValue: func(Field) any { return false },
		parse: func(f Field, raw string) (any, error) {
			switch strings.ToLower(strings.TrimSpace(raw)) {
			case "true", "yes", "1", "on":
				return true, nil
			case "false", "no", "0", "off", "":
				return false, nil
			}
			return nil, fmt.Errorf("%s: not a boolean: %q", f.ID, raw)
		},
	},
	FieldEnum:  {defaultValue: firstOption, parse: parseOption},
	FieldRadio: {defaultValue: firstOption, parse: parseOption},
	FieldRating: {
		defaultValue: emptyString,
		parse: func(f Field, raw string) (any, error) {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || n < 1 || n > RatingMax {
				return nil, fmt.Errorf("%s: rating must be 1-%d", f.ID, RatingMax)
			}
			return n, nil
		},
	},
}

func emptyString(Field) any { return "" }

func parseString(_ Field, raw string) (any, error) { return raw, nil }

func firstOption(f Field) any {
	if len(f.Options) > 0 {
		return f.Options[0].Value
	}
	return ""
}

func parseOption(f Field, raw string) (any, error) {
	for _, o := range f.Options {
		if o.Value == raw {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%s: %q is not one of the configured options", f.ID, raw)
}

// DefaultValue returns the initial value for a field per its declared type:
// number 0, boolean false, enum/radio the first option's value (or empty when
// the field has no options), everything else the empty string. Ratings start
// empty rather than at 0 so an untouched scale is distinguishable from a
// deliberate low score.
func DefaultValue(f Field) any {
	if kind, ok := fieldKinds[f.Type]; ok {
		return kind.defaultValue(f)
	}
	return ""
}

// ParseValue converts raw text input into the typed value for a field.
func ParseValue(f Field, raw string) (any, error) {
	if kind, ok := fieldKinds[f.Type]; ok {
		return kind.parse(f, raw)
	}
	return raw, nil
}
