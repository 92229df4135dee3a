// Package conditions builds typed comparison predicates for repository
// queries. A Condition carries an operator and its operands but no column
// name; the repository binds it to a column when rendering the query.
package conditions

// Operator identifies a comparison operator
type Operator string

// Supported comparison operators
const (
	OpEQ      Operator = "="
	OpNEQ     Operator = "<>"
	OpLT      Operator = "<"
	OpLE      Operator = "<="
	OpGT      Operator = ">"
	OpGE      Operator = ">="
	OpBetween Operator = "BETWEEN"
)

// Condition is a single comparison predicate
type Condition struct {
	Op   Operator
	Args []interface{}
}

// EQ matches values equal to val
func EQ(val interface{}) Condition {
	return Condition{Op: OpEQ, Args: []interface{}{val}}
}

// NEQ matches values not equal to val
func NEQ(val interface{}) Condition {
	return Condition{Op: OpNEQ, Args: []interface{}{val}}
}

// LT matches values less than val
func LT(val interface{}) Condition {
	return Condition{Op: OpLT, Args: []interface{}{val}}
}

// LE matches values less than or equal to val
func LE(val interface{}) Condition {
	return Condition{Op: OpLE, Args: []interface{}{val}}
}

// GT matches values greater than val
func GT(val interface{}) Condition {
	return Condition{Op: OpGT, Args: []interface{}{val}}
}

// GE matches values greater than or equal to val
func GE(val interface{}) Condition {
	return Condition{Op: OpGE, Args: []interface{}{val}}
}

// InRange matches values in the inclusive range [low, high]. The bounds are
// passed through verbatim: low > high is not rejected here and simply yields
// whatever the store returns for an inverted range, normally an empty result.
func InRange(low, high interface{}) Condition {
	return Condition{Op: OpBetween, Args: []interface{}{low, high}}
}

// Clause renders the condition against a column as a parameterized SQL
// fragment plus its bind arguments
func (c Condition) Clause(column string) (string, []interface{}) {
	if c.Op == OpBetween {
		return column + " BETWEEN ? AND ?", c.Args
	}
	return column + " " + string(c.Op) + " ?", c.Args
}
