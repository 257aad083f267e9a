package database

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/lunagic/atlas/atlastools"
)

const (
	joinerAnd = "AND"
	joinerOr  = "OR"
)

// Table sets the FROM list. Each name may itself be a comma separated list and
// gets the configured table prefix.
func (service *Service) Table(names ...string) Database {
	tables := []string{}
	for _, name := range names {
		tables = append(tables, strings.Split(name, ",")...)
	}

	tables = atlastools.Filter(atlastools.Map(tables, strings.TrimSpace), func(table string) bool {
		return table != ""
	})

	service.query.From = strings.Join(atlastools.Map(tables, func(table string) string {
		return service.tablePrefix + table
	}), ", ")

	return service
}

func (service *Service) Select(fields ...string) Database {
	if len(fields) == 0 {
		return service
	}

	service.query.addSelect(strings.Join(fields, ", "))

	return service
}

// SelectCount adds COUNT(field) to the field list, aliased when alias is set.
func (service *Service) SelectCount(field string, alias string) Database {
	column := "COUNT(" + field + ")"
	if alias != "" {
		column += " AS " + alias
	}

	service.query.addSelect(column)

	return service
}

// Join adds "[TYPE ]JOIN table ON field1 operator field2". An empty operator
// takes field1 as the whole ON expression.
func (service *Service) Join(table string, field1 string, operator string, field2 string, joinType ...string) Database {
	on := field1
	if operator != "" {
		if isComparator(operator) {
			on = field1 + " " + operator + " " + field2
		} else {
			on = field1 + " = " + operator
			if field2 != "" {
				on += " " + field2
			}
		}
	}

	prefix := ""
	if len(joinType) > 0 && joinType[0] != "" {
		prefix = strings.ToUpper(joinType[0]) + " "
	}

	service.query.Joins = append(service.query.Joins, " "+prefix+"JOIN "+service.tablePrefix+table+" ON "+on)

	return service
}

func (service *Service) InnerJoin(table string, field1 string, operator string, field2 string) Database {
	return service.Join(table, field1, operator, field2, "INNER")
}

func (service *Service) LeftJoin(table string, field1 string, operator string, field2 string) Database {
	return service.Join(table, field1, operator, field2, "LEFT")
}

func (service *Service) RightJoin(table string, field1 string, operator string, field2 string) Database {
	return service.Join(table, field1, operator, field2, "RIGHT")
}

// Where accepts three shapes:
//
//	Where("id", 5)                  id = 5
//	Where("age", ">", 18)           age > 18
//	Where("a = ? OR b = ?", []any{1, 2})
func (service *Service) Where(field string, comparator any, value ...any) Database {
	return service.where(field, comparator, value, joinerAnd)
}

func (service *Service) OrWhere(field string, comparator any, value ...any) Database {
	return service.where(field, comparator, value, joinerOr)
}

func (service *Service) WhereCondition(condition Condition) Database {
	return service.addCondition(condition, joinerAnd)
}

func (service *Service) OrWhereCondition(condition Condition) Database {
	return service.addCondition(condition, joinerOr)
}

func (service *Service) WhereNull(field string) Database {
	service.query.addCondition(field+" IS NULL", joinerAnd)
	return service
}

func (service *Service) WhereNotNull(field string) Database {
	service.query.addCondition(field+" IS NOT NULL", joinerAnd)
	return service
}

func (service *Service) OrWhereNull(field string) Database {
	service.query.addCondition(field+" IS NULL", joinerOr)
	return service
}

func (service *Service) OrWhereNotNull(field string) Database {
	service.query.addCondition(field+" IS NOT NULL", joinerOr)
	return service
}

// Grouped wraps the conditions added by the callback in parentheses, joined to
// the existing conditions with AND.
func (service *Service) Grouped(callback func(db Database)) Database {
	return service.group(callback, joinerAnd)
}

func (service *Service) OrGrouped(callback func(db Database)) Database {
	return service.group(callback, joinerOr)
}

func (service *Service) group(callback func(db Database), joiner string) Database {
	if service.query.openGroups == 0 {
		service.query.groupJoiner = joiner
	}
	service.query.openGroups++
	service.query.groupDepth++

	callback(service)

	// A terminal inside the callback already cleared the builder.
	if service.query.groupDepth == 0 {
		return service
	}
	service.query.groupDepth--

	if service.query.openGroups > 0 {
		// The group stayed empty, nothing was opened.
		service.query.openGroups--
		if service.query.openGroups == 0 {
			service.query.groupJoiner = ""
		}

		return service
	}

	service.query.Where += ")"

	return service
}

func (service *Service) In(field string, values ...any) Database {
	return service.in(field, values, false, joinerAnd)
}

func (service *Service) NotIn(field string, values ...any) Database {
	return service.in(field, values, true, joinerAnd)
}

func (service *Service) OrIn(field string, values ...any) Database {
	return service.in(field, values, false, joinerOr)
}

func (service *Service) OrNotIn(field string, values ...any) Database {
	return service.in(field, values, true, joinerOr)
}

func (service *Service) Between(field string, value1 any, value2 any) Database {
	return service.between(field, value1, value2, false, joinerAnd)
}

func (service *Service) NotBetween(field string, value1 any, value2 any) Database {
	return service.between(field, value1, value2, true, joinerAnd)
}

func (service *Service) OrBetween(field string, value1 any, value2 any) Database {
	return service.between(field, value1, value2, false, joinerOr)
}

func (service *Service) OrNotBetween(field string, value1 any, value2 any) Database {
	return service.between(field, value1, value2, true, joinerOr)
}

func (service *Service) Like(field string, pattern string) Database {
	return service.like(field, pattern, false, joinerAnd)
}

func (service *Service) OrLike(field string, pattern string) Database {
	return service.like(field, pattern, false, joinerOr)
}

func (service *Service) NotLike(field string, pattern string) Database {
	return service.like(field, pattern, true, joinerAnd)
}

func (service *Service) OrNotLike(field string, pattern string) Database {
	return service.like(field, pattern, true, joinerOr)
}

// OrderBy replaces the ordering. Without a direction ASC is appended, unless the
// expression already carries one or is rand().
func (service *Service) OrderBy(field string, direction ...string) Database {
	switch {
	case len(direction) > 0 && direction[0] != "":
		service.query.OrderBy = field + " " + strings.ToUpper(direction[0])
	case strings.Contains(field, " ") || strings.EqualFold(field, "rand()"):
		service.query.OrderBy = field
	default:
		service.query.OrderBy = field + " ASC"
	}

	return service
}

func (service *Service) GroupBy(fields ...string) Database {
	service.query.GroupBy = strings.Join(fields, ", ")
	return service
}

// Having replaces the HAVING text. It takes a template with a value slice, a
// field operator value triple, or a field and a value which renders "field > value".
func (service *Service) Having(field string, comparator any, value ...any) Database {
	values, isTemplate := comparator.([]any)
	operator, _ := comparator.(string)

	var condition Condition
	switch {
	case isTemplate:
		condition = Template{Text: field, Values: values}
	case len(value) > 0 && isComparator(operator):
		condition = Compare(field, operator, value[0])
	case len(value) > 0 && service.strict:
		service.query.fail(fmt.Errorf("%w: %v", ErrInvalidComparator, comparator))
		return service
	default:
		service.query.Having = field + " > " + escape(service.driver, comparator)
		return service
	}

	text, err := condition.render(service.driver, service.strict)
	if err != nil {
		service.query.fail(err)
		return service
	}
	service.query.Having = text

	return service
}

func (service *Service) Limit(limit int) Database {
	service.query.Limit = intPointer(limit)
	return service
}

func (service *Service) Offset(offset int) Database {
	service.query.Offset = intPointer(offset)
	return service
}

// Cache serves the next read from the result cache, storing it for ttl on a miss.
func (service *Service) Cache(ttl time.Duration) Database {
	if service.resultCache == nil {
		service.query.fail(ErrCacheNotConfigured)
		return service
	}

	service.query.cacheTTL = ttl

	return service
}

// Raw sets a hand written statement, "?" placeholders filled with escaped
// values, for Exec or FetchAll.
func (service *Service) Raw(template string, values ...any) Database {
	text, err := Template{Text: template, Values: values}.render(service.driver, service.strict)
	if err != nil {
		service.query.fail(err)
		return service
	}

	service.query.raw = text

	return service
}

func (service *Service) where(field string, comparator any, value []any, joiner string) Database {
	condition, err := conditionFromArguments(field, comparator, value, service.strict)
	if err != nil {
		service.query.fail(err)
		return service
	}

	return service.addCondition(condition, joiner)
}

func (service *Service) addCondition(condition Condition, joiner string) Database {
	text, err := condition.render(service.driver, service.strict)
	if err != nil {
		service.query.fail(err)
		return service
	}

	service.query.addCondition(text, joiner)

	return service
}

func (service *Service) in(field string, values []any, not bool, joiner string) Database {
	values = flatten(values)
	if len(values) == 0 {
		service.query.fail(ErrEmptyIn)
		return service
	}

	keyword := " IN ("
	if not {
		keyword = " NOT IN ("
	}

	escaped := atlastools.Map(values, func(value any) string {
		return escape(service.driver, value)
	})

	service.query.addCondition(field+keyword+strings.Join(escaped, ", ")+")", joiner)

	return service
}

func (service *Service) between(field string, value1 any, value2 any, not bool, joiner string) Database {
	keyword := " BETWEEN "
	if not {
		keyword = " NOT BETWEEN "
	}

	service.query.addCondition(
		"("+field+keyword+escape(service.driver, value1)+" AND "+escape(service.driver, value2)+")",
		joiner,
	)

	return service
}

func (service *Service) like(field string, pattern string, not bool, joiner string) Database {
	keyword := " LIKE "
	if not {
		keyword = " NOT LIKE "
	}

	service.query.addCondition(field+keyword+escape(service.driver, pattern), joiner)

	return service
}

// flatten expands a single slice argument so In("id", ids) works like In("id", 1, 2, 3).
func flatten(values []any) []any {
	if len(values) != 1 || values[0] == nil {
		return values
	}

	v := reflect.ValueOf(values[0])
	if v.Kind() != reflect.Slice || v.Type().Elem().Kind() == reflect.Uint8 {
		return values
	}

	flattened := make([]any, 0, v.Len())
	for i := range v.Len() {
		flattened = append(flattened, v.Index(i).Interface())
	}

	return flattened
}
