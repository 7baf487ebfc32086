// Package segment compiles user-supplied audience rules into a parameterized
// SQL predicate over the customers table. Compilation is pure: no I/O, and
// nothing taken from the input ever reaches the query text — only recognized
// enumerants map to column expressions and operators.
package segment

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field is the closed set of customer attributes a rule may filter on.
type Field string

const (
	FieldTotalSpend         Field = "total_spend"
	FieldVisitCount         Field = "visit_count"
	FieldDaysSinceLastVisit Field = "days_since_last_visit"
)

// columnExpr returns the SQL expression a field compiles to. Recency is a
// derived expression (days between now and the last visit); every other
// field is a direct column comparison.
func (f Field) columnExpr() (string, bool) {
	switch f {
	case FieldTotalSpend:
		return "total_spend", true
	case FieldVisitCount:
		return "visit_count", true
	case FieldDaysSinceLastVisit:
		return "EXTRACT(DAY FROM NOW() - last_visit_at)", true
	}
	return "", false
}

// Condition is the closed set of comparison operators.
type Condition string

const (
	CondGreaterThan Condition = "gt"
	CondLessThan    Condition = "lt"
	CondEquals      Condition = "eq"
)

func (c Condition) operator() (string, bool) {
	switch c {
	case CondGreaterThan:
		return ">", true
	case CondLessThan:
		return "<", true
	case CondEquals:
		return "=", true
	}
	return "", false
}

// Value is a rule's numeric comparison operand. Clients send it as a JSON
// number, a numeric string, an empty string, or omit it entirely; anything
// that does not parse to a number leaves the value unset, and unset values
// drop the rule from compilation rather than failing it.
type Value struct {
	num float64
	set bool
}

// NumberValue builds a set Value, mainly for constructing rule sets in code.
func NumberValue(f float64) Value {
	return Value{num: f, set: true}
}

func (v Value) Set() bool { return v.set }

func (v *Value) UnmarshalJSON(b []byte) error {
	// json invokes this for literal null too, and unmarshalling null into a
	// float64 is a silent no-op; rule it out before the number probe.
	if string(b) == "null" {
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		v.num = f
		v.set = true
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		v.num = f
		v.set = true
		return nil
	}

	// null, objects, arrays: unset
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.num)
}

// Rule is one conjunctive filter term.
type Rule struct {
	Field     Field     `json:"field"`
	Condition Condition `json:"condition"`
	Value     Value     `json:"value"`
}

// RuleSet combines its rules with logical AND.
type RuleSet []Rule

// Predicate is a compiled rule set. One clause list backs both the count and
// the selection query, so a preview and the commit that follows it can never
// disagree on what the rules mean.
type Predicate struct {
	clauses []string
	args    []any
}

// Compile turns a rule set into a predicate. Rules with an unset value, an
// unrecognized field, or an unrecognized condition are skipped. An empty
// result matches every customer.
func Compile(rules RuleSet) Predicate {
	var p Predicate
	for _, r := range rules {
		if !r.Value.Set() {
			continue
		}
		expr, ok := r.Field.columnExpr()
		if !ok {
			continue
		}
		op, ok := r.Condition.operator()
		if !ok {
			continue
		}
		p.args = append(p.args, r.Value.num)
		p.clauses = append(p.clauses, fmt.Sprintf("%s %s $%d", expr, op, len(p.args)))
	}
	return p
}

// MatchAll reports whether the predicate places no restriction on customers.
func (p Predicate) MatchAll() bool { return len(p.clauses) == 0 }

// Args returns the bind parameters shared by both query forms.
func (p Predicate) Args() []any { return p.args }

// CountQuery returns the audience-size form of the predicate.
func (p Predicate) CountQuery() (string, []any) {
	return "SELECT COUNT(*) FROM customers" + p.where(), p.args
}

// SelectQuery returns the row-selection form. Ordered by id so iteration is
// stable within one execution.
func (p Predicate) SelectQuery() (string, []any) {
	const cols = "SELECT id, name, email, total_spend, visit_count, last_visit_at FROM customers"
	return cols + p.where() + " ORDER BY id", p.args
}

func (p Predicate) where() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.clauses, " AND ")
}
