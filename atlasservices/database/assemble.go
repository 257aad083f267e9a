package database

import (
	"slices"
	"strconv"
	"strings"

	"github.com/lunagic/atlas/atlastools"
)

// selectStatement renders SELECT ... FROM ... followed by the clauses in their
// fixed order, whatever order the builder calls came in.
func (q query) selectStatement() (string, error) {
	if q.From == "" {
		return "", ErrNoTable
	}

	builder := strings.Builder{}
	builder.WriteString("SELECT " + q.selectFields() + " FROM " + q.From)
	builder.WriteString(strings.Join(q.Joins, ""))
	q.writeWhere(&builder)
	if q.GroupBy != "" {
		builder.WriteString(" GROUP BY " + q.GroupBy)
	}
	if q.Having != "" {
		builder.WriteString(" HAVING " + q.Having)
	}
	q.writeOrderAndLimit(&builder)
	if q.Offset != nil {
		builder.WriteString(" OFFSET " + strconv.Itoa(*q.Offset))
	}

	return builder.String(), nil
}

// countStatement renders the row count of the current selection. A grouped
// selection is counted as a derived table so every group counts once.
func (q query) countStatement() (string, error) {
	if q.From == "" {
		return "", ErrNoTable
	}

	if q.GroupBy != "" {
		q.OrderBy = ""
		q.Limit = nil
		q.Offset = nil
		inner, err := q.selectStatement()
		if err != nil {
			return "", err
		}

		return "SELECT COUNT(*) AS aggregate FROM (" + inner + ") AS counted", nil
	}

	builder := strings.Builder{}
	builder.WriteString("SELECT COUNT(*) AS aggregate FROM " + q.From)
	builder.WriteString(strings.Join(q.Joins, ""))
	q.writeWhere(&builder)
	if q.Having != "" {
		builder.WriteString(" HAVING " + q.Having)
	}

	return builder.String(), nil
}

// insertStatement renders one VALUES group per row. The column list comes from
// the first row, columns missing from a later row are written as NULL.
func (q query) insertStatement(driver Driver, rows []Values) (string, error) {
	if q.From == "" {
		return "", ErrNoTable
	}

	if len(rows) == 0 || len(rows[0]) == 0 {
		return "", ErrNoValues
	}

	columns := sortedColumns(rows[0])

	groups := atlastools.Map(rows, func(row Values) string {
		return "(" + strings.Join(atlastools.Map(columns, func(column string) string {
			return escape(driver, row[column])
		}), ", ") + ")"
	})

	return "INSERT INTO " + q.From + " (" + strings.Join(columns, ", ") + ") VALUES " + strings.Join(groups, ", "), nil
}

func (q query) updateStatement(driver Driver, values Values) (string, error) {
	if q.From == "" {
		return "", ErrNoTable
	}

	if len(values) == 0 {
		return "", ErrNoValues
	}

	assignments := atlastools.Map(sortedColumns(values), func(column string) string {
		return column + " = " + escape(driver, values[column])
	})

	builder := strings.Builder{}
	builder.WriteString("UPDATE " + q.From + " SET " + strings.Join(assignments, ", "))
	q.writeWhere(&builder)
	q.writeOrderAndLimit(&builder)

	return builder.String(), nil
}

// deleteStatement renders DELETE FROM with its clauses. With no clause at all
// the statement becomes the engine's table truncate, or ErrUnconditionalDelete
// when safe is set.
func (q query) deleteStatement(driver Driver, safe bool) (string, error) {
	if q.From == "" {
		return "", ErrNoTable
	}

	bare := "DELETE FROM " + q.From

	builder := strings.Builder{}
	builder.WriteString(bare)
	q.writeWhere(&builder)
	q.writeOrderAndLimit(&builder)

	statement := builder.String()
	if statement != bare {
		return statement, nil
	}

	if safe {
		return "", ErrUnconditionalDelete
	}

	return driver.truncate(q.From), nil
}

func (q query) writeWhere(builder *strings.Builder) {
	if q.Where != "" {
		builder.WriteString(" WHERE " + q.Where)
	}
}

func (q query) writeOrderAndLimit(builder *strings.Builder) {
	if q.OrderBy != "" {
		builder.WriteString(" ORDER BY " + q.OrderBy)
	}
	if q.Limit != nil {
		builder.WriteString(" LIMIT " + strconv.Itoa(*q.Limit))
	}
}

func sortedColumns(values Values) []string {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	slices.Sort(columns)

	return columns
}
