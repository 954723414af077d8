package convert

import (
	"regexp"
	"strings"
)

// numericRe accepts integers and decimals with an optional sign and
// exponent. Deliberately narrower than strconv.ParseFloat, which also
// admits "Inf", "NaN" and hex floats.
var numericRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

func isNumeric(s string) bool {
	return numericRe.MatchString(s)
}

// InferSchema computes the union schema of a record set and classifies
// each field. A field is numeric only when every non-empty observation
// parses as a number; a field with no non-empty observations stays
// textual. Roles are tagged by case-insensitive substring match against
// the configured patterns; the first schema-order match per role wins
// and a field never carries two roles.
func InferSchema(records []Record, opts Options) Schema {
	opts = opts.normalized()

	type stats struct {
		nonEmpty   int
		allNumeric bool
	}
	var order []string
	byName := make(map[string]*stats)

	for _, rec := range records {
		for _, name := range rec.Fields {
			st, seen := byName[name]
			if !seen {
				st = &stats{allNumeric: true}
				byName[name] = st
				order = append(order, name)
			}
			v := rec.Values[name]
			if v == "" {
				continue
			}
			st.nonEmpty++
			if !isNumeric(v) {
				st.allNumeric = false
			}
		}
	}

	schema := Schema{Fields: make([]FieldDescriptor, 0, len(order))}
	for _, name := range order {
		st := byName[name]
		kind := KindTextual
		if st.nonEmpty > 0 && st.allNumeric {
			kind = KindNumeric
		}
		schema.Fields = append(schema.Fields, FieldDescriptor{Name: name, Kind: kind, Role: RoleOther})
	}

	tagRole(&schema, RoleCategory, opts.CategoryPattern)
	tagRole(&schema, RolePeriod, opts.PeriodPattern)
	tagRole(&schema, RoleValue, opts.ValuePattern)

	return schema
}

// tagRole assigns role to the first untagged field whose name contains
// pattern, ignoring case.
func tagRole(schema *Schema, role Role, pattern string) {
	if pattern == "" {
		return
	}
	pattern = strings.ToUpper(pattern)
	for i := range schema.Fields {
		f := &schema.Fields[i]
		if f.Role != RoleOther {
			continue
		}
		if strings.Contains(strings.ToUpper(f.Name), pattern) {
			f.Role = role
			return
		}
	}
}
