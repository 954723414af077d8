package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(pairs ...string) Record {
	r := Record{Values: make(map[string]string)}
	for i := 0; i+1 < len(pairs); i += 2 {
		name, value := pairs[i], pairs[i+1]
		if _, seen := r.Values[name]; !seen {
			r.Fields = append(r.Fields, name)
		}
		r.Values[name] = value
	}
	return r
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"10", true},
		{"-3.5", true},
		{"+0.25", true},
		{"1e6", true},
		{"2.5E-3", true},
		{".5", true},
		{"7.", true},
		{"", false},
		{"abc", false},
		{"10a", false},
		{"NaN", false},
		{"Inf", false},
		{"0x1p2", false},
		{"1,000", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, isNumeric(tt.value))
		})
	}
}

func TestInferSchema(t *testing.T) {
	opts := DefaultOptions()

	t.Run("kinds", func(t *testing.T) {
		records := []Record{
			rec("CODE", "A", "Period", "2023", "DTVAL_CO", "10", "SCR_ENG", "Mining"),
			rec("CODE", "B", "Period", "2024", "DTVAL_CO", "", "SCR_ENG", "Farming"),
		}
		schema := InferSchema(records, opts)

		period, ok := schema.Field("Period")
		require.True(t, ok)
		assert.Equal(t, KindNumeric, period.Kind)

		// Empty observations do not break numeric classification.
		value, _ := schema.Field("DTVAL_CO")
		assert.Equal(t, KindNumeric, value.Kind)

		scr, _ := schema.Field("SCR_ENG")
		assert.Equal(t, KindTextual, scr.Kind)
	})

	t.Run("one textual observation forces textual", func(t *testing.T) {
		records := []Record{
			rec("Period", "2023"),
			rec("Period", "Q1-2023"),
		}
		schema := InferSchema(records, opts)
		period, _ := schema.Field("Period")
		assert.Equal(t, KindTextual, period.Kind)
	})

	t.Run("field with only empty values is textual", func(t *testing.T) {
		records := []Record{rec("SCR_MN", ""), rec("SCR_MN", "")}
		schema := InferSchema(records, opts)
		f, _ := schema.Field("SCR_MN")
		assert.Equal(t, KindTextual, f.Kind)
	})

	t.Run("union schema keeps first-seen order", func(t *testing.T) {
		records := []Record{
			rec("CODE", "A", "Period", "2023"),
			rec("Period", "2024", "EXTRA", "x"),
		}
		schema := InferSchema(records, opts)
		assert.Equal(t, []string{"CODE", "Period", "EXTRA"}, schema.Names())
	})

	t.Run("roles are case-insensitive patterns", func(t *testing.T) {
		records := []Record{rec("code", "A", "period", "2023", "dtval_co", "1")}
		schema := InferSchema(records, opts)

		category, ok := schema.ByRole(RoleCategory)
		require.True(t, ok)
		assert.Equal(t, "code", category.Name)

		period, _ := schema.ByRole(RolePeriod)
		assert.Equal(t, "period", period.Name)

		value, _ := schema.ByRole(RoleValue)
		assert.Equal(t, "dtval_co", value.Name)
	})

	t.Run("first schema-order match wins, rest stay other", func(t *testing.T) {
		records := []Record{rec("CODE1", "A", "CODE2", "B", "Period", "2023", "DTVAL_CO", "1")}
		schema := InferSchema(records, opts)

		category, _ := schema.ByRole(RoleCategory)
		assert.Equal(t, "CODE1", category.Name)

		second, _ := schema.Field("CODE2")
		assert.Equal(t, RoleOther, second.Role)
	})

	t.Run("a field never carries two roles", func(t *testing.T) {
		// PERIOD_CODE matches the category pattern first and must not
		// also be claimed as the period field.
		records := []Record{rec("PERIOD_CODE", "A", "Period", "2023", "DTVAL_CO", "1")}
		schema := InferSchema(records, opts)

		category, _ := schema.ByRole(RoleCategory)
		assert.Equal(t, "PERIOD_CODE", category.Name)

		period, ok := schema.ByRole(RolePeriod)
		require.True(t, ok)
		assert.Equal(t, "Period", period.Name)
	})

	t.Run("no records yields empty schema", func(t *testing.T) {
		schema := InferSchema(nil, opts)
		assert.Empty(t, schema.Fields)
	})
}
