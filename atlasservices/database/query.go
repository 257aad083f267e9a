package database

import (
	"strings"
	"time"
)

// query accumulates the clause fragments of the statement being built.
type query struct {
	Select      string
	From        string
	Joins       []string
	Where       string
	GroupBy     string
	Having      string
	OrderBy     string
	Limit       *int
	Offset      *int
	raw         string
	cacheTTL    time.Duration
	err         error
	groupDepth  int
	groupJoiner string

	// openGroups counts group parentheses still waiting for their first condition.
	openGroups int
}

func (q *query) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

func (q *query) selectFields() string {
	if q.Select == "" {
		return "*"
	}

	return q.Select
}

// addSelect appends to the field list, replacing it while still at the default.
func (q *query) addSelect(fields string) {
	if q.Select == "" || q.Select == "*" {
		q.Select = fields
		return
	}

	q.Select += ", " + fields
}

// addCondition appends a rendered condition to the WHERE text, opening the
// parentheses of any group still waiting for its first condition.
func (q *query) addCondition(condition string, joiner string) {
	if condition == "" {
		return
	}

	if q.openGroups > 0 {
		condition = strings.Repeat("(", q.openGroups) + condition
		joiner = q.groupJoiner
		q.openGroups = 0
		q.groupJoiner = ""
	}

	if q.Where == "" {
		q.Where = condition
		return
	}

	q.Where += " " + joiner + " " + condition
}

func intPointer(i int) *int {
	return &i
}
