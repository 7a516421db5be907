package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexInt decodes a JSON number or a string with a leading integer
// ("12", " 42kg", "-3"). Fractions are truncated. Anything else leaves
// Valid false without failing the decode.
type FlexInt struct {
	Value int64
	Valid bool
}

// Int returns a valid FlexInt holding v.
func Int(v int64) FlexInt { return FlexInt{Value: v, Valid: true} }

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = FlexInt{}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		if math.IsInf(x, 0) || x >= math.MaxInt64 || x < math.MinInt64 {
			return nil
		}
		*f = Int(int64(x))
	case string:
		if n, ok := leadingInt(x); ok {
			*f = Int(n)
		}
	}
	return nil
}

// ParseKey reads a product key, page or limit from a path segment or query
// value. Like FlexInt it accepts a leading integer and ignores the rest.
func ParseKey(s string) (int64, bool) { return leadingInt(s) }

// leadingInt parses the optionally signed run of digits at the start of s,
// after leading whitespace. A decimal point ends the run.
func leadingInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FlexBool is true for JSON true or the string "true". Valid reports
// whether the field was present and non-null.
type FlexBool struct {
	Value bool
	Valid bool
}

// Bool returns a valid FlexBool holding v.
func Bool(v bool) FlexBool { return FlexBool{Value: v, Valid: true} }

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	*f = FlexBool{}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
	case bool:
		*f = Bool(x)
	case string:
		*f = Bool(x == "true")
	default:
		*f = Bool(false)
	}
	return nil
}

// FlexStrings decodes either a single string or a list of strings.
// Non-string list elements are dropped.
type FlexStrings struct {
	Values []string
	Valid  bool
}

// Strings returns a valid FlexStrings holding vs.
func Strings(vs ...string) FlexStrings { return FlexStrings{Values: vs, Valid: true} }

func (f *FlexStrings) UnmarshalJSON(b []byte) error {
	*f = FlexStrings{}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		f.Valid = true
		if x != "" {
			f.Values = []string{x}
		}
	case []any:
		f.Valid = true
		f.Values = make([]string, 0, len(x))
		for _, e := range x {
			if s, ok := e.(string); ok {
				f.Values = append(f.Values, s)
			}
		}
	}
	return nil
}

// VariationInput is a client-supplied variation before coercion.
type VariationInput struct {
	Size  string  `json:"size,omitempty"`
	Color string  `json:"color,omitempty"`
	Price FlexInt `json:"price"`
	Stock FlexInt `json:"stock"`
	SKU   string  `json:"sku,omitempty"`
}

// ProductInput is the body of a create request.
type ProductInput struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          FlexInt          `json:"price"`
	Category       string           `json:"category"`
	Images         FlexStrings      `json:"images"`
	Specifications map[string]any   `json:"specifications"`
	Variations     []VariationInput `json:"variations"`
	Featured       FlexBool         `json:"featured"`
	Tags           FlexStrings      `json:"tags"`
}

// ProductUpdate is the body of a partial update. Identity fields (_id, id,
// createdAt) have no counterpart here and are dropped on decode.
type ProductUpdate struct {
	Name           *string           `json:"name"`
	Description    *string           `json:"description"`
	Price          FlexInt           `json:"price"`
	Category       *string           `json:"category"`
	Images         FlexStrings       `json:"images"`
	Specifications map[string]any    `json:"specifications"`
	Variations     *[]VariationInput `json:"variations"`
	Featured       FlexBool          `json:"featured"`
	Tags           FlexStrings       `json:"tags"`
}

// AdInput is the body of an ad create request.
type AdInput struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Title string `json:"title"`
}
