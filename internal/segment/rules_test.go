package segment_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenolabs/engage-backend/internal/segment"
)

func TestCompileEmptyRuleSetMatchesAll(t *testing.T) {
	pred := segment.Compile(segment.RuleSet{})

	assert.True(t, pred.MatchAll())

	query, args := pred.CountQuery()
	assert.Equal(t, "SELECT COUNT(*) FROM customers", query)
	assert.Empty(t, args)
}

func TestCompileDropsRulesWithMissingValue(t *testing.T) {
	// Every rule's value is unset, so the whole set compiles to match-all.
	rules := segment.RuleSet{
		{Field: segment.FieldTotalSpend, Condition: segment.CondGreaterThan},
		{Field: segment.FieldVisitCount, Condition: segment.CondLessThan},
	}

	pred := segment.Compile(rules)
	assert.True(t, pred.MatchAll())
}

func TestCompileIgnoresUnrecognizedFieldAndCondition(t *testing.T) {
	rules := segment.RuleSet{
		{Field: "favorite_color", Condition: segment.CondEquals, Value: segment.NumberValue(1)},
		{Field: segment.FieldVisitCount, Condition: "like", Value: segment.NumberValue(3)},
		{Field: segment.FieldTotalSpend, Condition: segment.CondGreaterThan, Value: segment.NumberValue(5000)},
	}

	pred := segment.Compile(rules)
	query, args := pred.CountQuery()

	assert.Equal(t, "SELECT COUNT(*) FROM customers WHERE total_spend > $1", query)
	assert.Equal(t, []any{float64(5000)}, args)
}

func TestCompileConjunction(t *testing.T) {
	rules := segment.RuleSet{
		{Field: segment.FieldTotalSpend, Condition: segment.CondGreaterThan, Value: segment.NumberValue(5000)},
		{Field: segment.FieldVisitCount, Condition: segment.CondEquals, Value: segment.NumberValue(3)},
	}

	query, args := segment.Compile(rules).CountQuery()

	assert.Equal(t, "SELECT COUNT(*) FROM customers WHERE total_spend > $1 AND visit_count = $2", query)
	assert.Equal(t, []any{float64(5000), float64(3)}, args)
}

func TestCompileRecencyIsDerivedExpression(t *testing.T) {
	rules := segment.RuleSet{
		{Field: segment.FieldDaysSinceLastVisit, Condition: segment.CondLessThan, Value: segment.NumberValue(30)},
	}

	query, _ := segment.Compile(rules).CountQuery()
	assert.Contains(t, query, "EXTRACT(DAY FROM NOW() - last_visit_at) < $1")
}

func TestCountAndSelectShareClauses(t *testing.T) {
	rules := segment.RuleSet{
		{Field: segment.FieldTotalSpend, Condition: segment.CondGreaterThan, Value: segment.NumberValue(5000)},
		{Field: segment.FieldDaysSinceLastVisit, Condition: segment.CondLessThan, Value: segment.NumberValue(30)},
	}
	pred := segment.Compile(rules)

	countQuery, countArgs := pred.CountQuery()
	selectQuery, selectArgs := pred.SelectQuery()

	countWhere := countQuery[strings.Index(countQuery, "WHERE"):]
	selectWhere := selectQuery[strings.Index(selectQuery, "WHERE"):]
	selectWhere = strings.TrimSuffix(selectWhere, " ORDER BY id")

	assert.Equal(t, countWhere, selectWhere)
	assert.Equal(t, countArgs, selectArgs)
}

func TestValueUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		json string
		set  bool
	}{
		{"number", `{"value": 42}`, true},
		{"numeric string", `{"value": "42"}`, true},
		{"empty string", `{"value": ""}`, false},
		{"null", `{"value": null}`, false},
		{"absent", `{}`, false},
		{"garbage string", `{"value": "plenty"}`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rule segment.Rule
			require.NoError(t, json.Unmarshal([]byte(tc.json), &rule))
			assert.Equal(t, tc.set, rule.Value.Set())
		})
	}
}

func TestRuleSetRoundTrip(t *testing.T) {
	rules := segment.RuleSet{
		{Field: segment.FieldTotalSpend, Condition: segment.CondGreaterThan, Value: segment.NumberValue(5000)},
	}

	raw, err := json.Marshal(rules)
	require.NoError(t, err)

	var decoded segment.RuleSet
	require.NoError(t, json.Unmarshal(raw, &decoded))

	q1, a1 := segment.Compile(rules).CountQuery()
	q2, a2 := segment.Compile(decoded).CountQuery()
	assert.Equal(t, q1, q2)
	assert.Equal(t, a1, a2)
}
