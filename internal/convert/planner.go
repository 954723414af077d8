package convert

// Planner rejection reasons, in evaluation order. The cheapest and most
// decisive checks run first; the ordering is the tie-break policy.
const (
	ReasonInsufficientRecords = "insufficient records"
	ReasonMissingRole         = "missing role"
	ReasonSinglePeriod        = "single period"
)

// PlanPivot decides whether the record set qualifies as pivotable
// time-series data. It is a pure function of the schema and the records
// and never fails: the absence of a pivot is a normal outcome carried
// in the plan's reason.
func PlanPivot(records []Record, schema Schema, minRecords int) PivotPlan {
	if minRecords <= 0 {
		minRecords = DefaultOptions().MinRecords
	}
	if len(records) < minRecords {
		return NoPivot(ReasonInsufficientRecords)
	}

	category, okCat := schema.ByRole(RoleCategory)
	period, okPer := schema.ByRole(RolePeriod)
	value, okVal := schema.ByRole(RoleValue)
	if !okCat || !okPer || !okVal {
		return NoPivot(ReasonMissingRole)
	}

	if distinctValues(records, period.Name) <= 1 {
		return NoPivot(ReasonSinglePeriod)
	}

	return PivotPlan{
		Pivot:         true,
		CategoryField: category.Name,
		PeriodField:   period.Name,
		ValueField:    value.Name,
	}
}

func distinctValues(records []Record, field string) int {
	seen := make(map[string]struct{})
	for _, rec := range records {
		if v, ok := rec.Get(field); ok {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}
