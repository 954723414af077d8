package convert

// Kind classifies the values observed for a field.
type Kind string

const (
	// KindNumeric means every non-empty observation parsed as a number
	KindNumeric Kind = "numeric"
	// KindTextual is the fallback classification
	KindTextual Kind = "textual"
)

// Role identifies the recognized purpose of a field in a time-series record set.
type Role string

const (
	// RoleCategory is the row dimension of a pivot
	RoleCategory Role = "category"
	// RolePeriod is the column dimension of a pivot
	RolePeriod Role = "period"
	// RoleValue is the measure written into pivot cells
	RoleValue Role = "value"
	// RoleOther is any field without a recognized role
	RoleOther Role = "other"
)

// Record is one flat data element extracted from the XML document.
// Fields preserves the order child elements appeared in; Values maps
// field name to the raw trimmed text. Records are never mutated after
// extraction.
type Record struct {
	Fields []string
	Values map[string]string
}

// Get returns the raw value for a field and whether the field is present.
// An empty child element is present with value "".
func (r Record) Get(name string) (string, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// Has reports whether the record carries the named field.
func (r Record) Has(name string) bool {
	_, ok := r.Values[name]
	return ok
}

// FieldDescriptor is the inferred classification of a single field.
type FieldDescriptor struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	Role Role   `json:"role"`
}

// Schema is the union of all field names across a record set, in the
// order fields were first seen. It is derived once per conversion and
// never mutated afterwards.
type Schema struct {
	Fields []FieldDescriptor
}

// Field returns the descriptor for the named field.
func (s Schema) Field(name string) (FieldDescriptor, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// ByRole returns the field tagged with the given role, if any.
func (s Schema) ByRole(role Role) (FieldDescriptor, bool) {
	for _, f := range s.Fields {
		if f.Role == role {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// PivotPlan is the planner's decision. When Pivot is false, Reason holds
// the rejection ("insufficient records", "missing role", "single period")
// and the field names are empty.
type PivotPlan struct {
	Pivot         bool   `json:"pivot"`
	Reason        string `json:"reason,omitempty"`
	CategoryField string `json:"category_field,omitempty"`
	PeriodField   string `json:"period_field,omitempty"`
	ValueField    string `json:"value_field,omitempty"`
}

// NoPivot builds a negative plan with the given reason.
func NoPivot(reason string) PivotPlan {
	return PivotPlan{Pivot: false, Reason: reason}
}

type cellKey struct {
	category string
	period   string
}

// PivotTable is the wide reshape of a long record set: one row per
// category (first-seen order), one column per distinct period (sorted),
// a numeric-or-absent cell per pair. Absent and zero are distinct.
type PivotTable struct {
	CategoryField string
	Categories    []string
	Periods       []string
	cells         map[cellKey]float64
}

// Cell returns the value at (category, period) and whether one exists.
func (t *PivotTable) Cell(category, period string) (float64, bool) {
	v, ok := t.cells[cellKey{category, period}]
	return v, ok
}

// Result is the envelope handed to the transport layer. Workbook is the
// serialized xlsx bytes, nil when Success is false.
type Result struct {
	Success         bool
	Message         string
	ProcessingNotes string
	RecordCount     int
	Workbook        []byte
}
