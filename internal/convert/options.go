package convert

import "fmt"

// CollisionPolicy decides which value survives when two records land on
// the same (category, period) cell. Collisions never fail a conversion.
type CollisionPolicy string

const (
	// CollisionLast keeps the last-seen value. Default, matches the
	// behavior consumers of this service historically relied on.
	CollisionLast CollisionPolicy = "last"
	// CollisionFirst keeps the first-seen value
	CollisionFirst CollisionPolicy = "first"
	// CollisionSum accumulates colliding values
	CollisionSum CollisionPolicy = "sum"
	// CollisionMean averages colliding values
	CollisionMean CollisionPolicy = "mean"
)

// ParseCollisionPolicy validates a policy string from configuration.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(s) {
	case CollisionLast, CollisionFirst, CollisionSum, CollisionMean:
		return CollisionPolicy(s), nil
	case "":
		return CollisionLast, nil
	default:
		return "", fmt.Errorf("unknown collision policy %q", s)
	}
}

// Options holds the immutable per-process settings of the pipeline.
// Construct once from configuration and pass explicitly; the pipeline
// reads no ambient state.
type Options struct {
	// RecordElement is the local name of the repeating data element.
	// Matching ignores any namespace prefix or URI.
	RecordElement string

	// Role patterns, matched case-insensitively as substrings of field
	// names. The first schema-order match per role wins; later matches
	// keep RoleOther.
	CategoryPattern string
	PeriodPattern   string
	ValuePattern    string

	// MinRecords is the smallest record count worth pivoting.
	MinRecords int

	// Collision selects the duplicate (category, period) policy.
	Collision CollisionPolicy

	// Sheet bounds. Exceeding either fails assembly atomically.
	MaxRows    int
	MaxColumns int
}

// Default sheet bounds follow the xlsx format limits.
const (
	defaultMaxRows    = 1048576
	defaultMaxColumns = 16384
)

// DefaultOptions returns the settings used when configuration supplies
// nothing. The patterns cover the statistics-service schema this
// converter was built for (TN_DT records with CODE, Period and DTVAL_CO
// fields) while still matching any schema that names its fields the
// same way.
func DefaultOptions() Options {
	return Options{
		RecordElement:   "TN_DT",
		CategoryPattern: "CODE",
		PeriodPattern:   "PERIOD",
		ValuePattern:    "DTVAL",
		MinRecords:      2,
		Collision:       CollisionLast,
		MaxRows:         defaultMaxRows,
		MaxColumns:      defaultMaxColumns,
	}
}

// normalized fills zero values with defaults so a partially populated
// Options from config cannot disable the bounds checks.
func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.RecordElement == "" {
		o.RecordElement = def.RecordElement
	}
	if o.CategoryPattern == "" {
		o.CategoryPattern = def.CategoryPattern
	}
	if o.PeriodPattern == "" {
		o.PeriodPattern = def.PeriodPattern
	}
	if o.ValuePattern == "" {
		o.ValuePattern = def.ValuePattern
	}
	if o.MinRecords <= 0 {
		o.MinRecords = def.MinRecords
	}
	if o.Collision == "" {
		o.Collision = def.Collision
	}
	if o.MaxRows <= 0 {
		o.MaxRows = def.MaxRows
	}
	if o.MaxColumns <= 0 {
		o.MaxColumns = def.MaxColumns
	}
	return o
}
