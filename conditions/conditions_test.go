package conditions_test

import (
	"testing"

	"slowctl/conditions"

	"github.com/stretchr/testify/assert"
)

func TestComparisonClauses(t *testing.T) {
	tests := []struct {
		name   string
		cond   conditions.Condition
		clause string
		args   []interface{}
	}{
		{"equals", conditions.EQ(7), "id = ?", []interface{}{7}},
		{"not equals", conditions.NEQ("x"), "id <> ?", []interface{}{"x"}},
		{"less than", conditions.LT(3.5), "id < ?", []interface{}{3.5}},
		{"less or equal", conditions.LE(4), "id <= ?", []interface{}{4}},
		{"greater than", conditions.GT(1), "id > ?", []interface{}{1}},
		{"greater or equal", conditions.GE(0), "id >= ?", []interface{}{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := tt.cond.Clause("id")
			assert.Equal(t, tt.clause, clause)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestInRangeClause(t *testing.T) {
	clause, args := conditions.InRange(10, 20).Clause("recorded_at")
	assert.Equal(t, "recorded_at BETWEEN ? AND ?", clause)
	assert.Equal(t, []interface{}{10, 20}, args)
}

func TestInRangeInvertedBoundsPassThrough(t *testing.T) {
	// Inverted bounds are not validated here; the store decides what an
	// inverted BETWEEN means (normally an empty result).
	clause, args := conditions.InRange(20, 10).Clause("recorded_at")
	assert.Equal(t, "recorded_at BETWEEN ? AND ?", clause)
	assert.Equal(t, []interface{}{20, 10}, args)
}
