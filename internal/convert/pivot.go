package convert

import (
	"fmt"
	"sort"
	"strconv"
)

// BuildPivot reshapes long-format records into a wide table following
// the plan. One pass over the records: rows appear in the order their
// category value is first encountered, columns are the distinct period
// values sorted ascending (numerically when the period field inferred
// numeric, lexically otherwise). Records whose value does not parse as
// a number, or which lack one of the plan's fields, are skipped and
// reported as data-quality notes rather than failing the build.
func BuildPivot(records []Record, plan PivotPlan, schema Schema, policy CollisionPolicy) (*PivotTable, []string) {
	if policy == "" {
		policy = CollisionLast
	}

	table := &PivotTable{
		CategoryField: plan.CategoryField,
		cells:         make(map[cellKey]float64),
	}
	var notes []string

	seenCategory := make(map[string]struct{})
	seenPeriod := make(map[string]struct{})
	counts := make(map[cellKey]int)

	for i, rec := range records {
		category, okCat := rec.Get(plan.CategoryField)
		period, okPer := rec.Get(plan.PeriodField)
		raw, okVal := rec.Get(plan.ValueField)
		if !okCat || !okPer || !okVal {
			notes = append(notes, fmt.Sprintf("record %d: missing pivot field, skipped", i+1))
			continue
		}
		// isNumeric keeps Inf/NaN spellings out of cells even though
		// ParseFloat would accept them.
		if !isNumeric(raw) {
			notes = append(notes, fmt.Sprintf("record %d: non-numeric value %q, skipped", i+1, raw))
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			notes = append(notes, fmt.Sprintf("record %d: non-numeric value %q, skipped", i+1, raw))
			continue
		}

		if _, ok := seenCategory[category]; !ok {
			seenCategory[category] = struct{}{}
			table.Categories = append(table.Categories, category)
		}
		if _, ok := seenPeriod[period]; !ok {
			seenPeriod[period] = struct{}{}
			table.Periods = append(table.Periods, period)
		}

		key := cellKey{category, period}
		counts[key]++
		switch policy {
		case CollisionFirst:
			if counts[key] == 1 {
				table.cells[key] = value
			}
		case CollisionSum, CollisionMean:
			table.cells[key] += value
		default: // CollisionLast
			table.cells[key] = value
		}
	}

	if policy == CollisionMean {
		for key, n := range counts {
			if n > 1 {
				table.cells[key] /= float64(n)
			}
		}
	}

	sortPeriods(table.Periods, periodIsNumeric(schema, plan.PeriodField))
	return table, notes
}

func periodIsNumeric(schema Schema, field string) bool {
	f, ok := schema.Field(field)
	return ok && f.Kind == KindNumeric
}

func sortPeriods(periods []string, numeric bool) {
	if numeric {
		sort.Slice(periods, func(i, j int) bool {
			a, _ := strconv.ParseFloat(periods[i], 64)
			b, _ := strconv.ParseFloat(periods[j], 64)
			return a < b
		})
		return
	}
	sort.Strings(periods)
}
