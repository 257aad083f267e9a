package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/lunagic/atlas/atlasservices/database/internal/utils"
)

var ErrInvalidTarget = errors.New("target must be a pointer to a slice of structs")

// fetchInto runs a reading statement and appends one struct per row to the slice
// targetPointer points at. Columns map to fields through their db tag.
func (service *Service) fetchInto(ctx context.Context, statement string, targetPointer any) error {
	target := reflect.ValueOf(targetPointer)
	if target.Kind() != reflect.Pointer || target.Elem().Kind() != reflect.Slice {
		return ErrInvalidTarget
	}
	target = target.Elem()
	targetType := target.Type().Elem()

	rowMap, err := utils.FieldIndexByColumn(targetType)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}

	service.lastStatement = statement

	return service.execute(ctx, statement, func(r runner) error {
		rows, err := r.QueryContext(ctx, statement)
		if err != nil {
			return err
		}
		defer func() {
			_ = rows.Close()
		}()

		fieldIndexesToUse, err := fieldIndexes(rows, rowMap)
		if err != nil {
			return err
		}

		count := int64(0)
		for rows.Next() {
			row := reflect.New(targetType).Elem()

			scanFields := []any{}
			jsonMapping := map[int]*sql.NullString{}
			for _, fieldIndexToUse := range fieldIndexesToUse {
				if shouldBeJson(targetType.Field(fieldIndexToUse)) {
					// Scan JSON columns as text and decode them once the row is read
					jsonString := &sql.NullString{}
					jsonMapping[fieldIndexToUse] = jsonString
					scanFields = append(scanFields, jsonString)
				} else {
					scanFields = append(scanFields, row.Field(fieldIndexToUse).Addr().Interface())
				}
			}

			if err := rows.Scan(scanFields...); err != nil {
				return err
			}

			for fieldIndexToUse, jsonString := range jsonMapping {
				if !jsonString.Valid || jsonString.String == "" {
					continue
				}

				if err := json.Unmarshal([]byte(jsonString.String), row.Field(fieldIndexToUse).Addr().Interface()); err != nil {
					return err
				}
			}

			target.Set(reflect.Append(target, row))
			count++
		}

		service.rowCount = count

		return rows.Err()
	})
}

func fieldIndexes(rows *sql.Rows, rowMap map[string]int) ([]int, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldIndexesToUse := []int{}
	for _, column := range columns {
		fieldIndex, found := rowMap[column]
		if !found {
			return nil, fmt.Errorf("column %s not found in target", column)
		}

		fieldIndexesToUse = append(fieldIndexesToUse, fieldIndex)
	}

	return fieldIndexesToUse, nil
}

func shouldBeJson(fieldDefinition reflect.StructField) bool {
	// Types that scan themselves, sql.NullString and friends
	if reflect.PointerTo(fieldDefinition.Type).Implements(reflect.TypeFor[sql.Scanner]()) {
		return false
	}

	// JSON encode slices
	if fieldDefinition.Type.Kind() == reflect.Slice && fieldDefinition.Type.Elem().Kind() != reflect.Uint8 {
		return true
	}

	// JSON encode structs
	if fieldDefinition.Type.Kind() == reflect.Struct {
		// Don't JSON encode time.Time
		if reflect.TypeFor[time.Time]() == fieldDefinition.Type {
			return false
		}

		return true
	}

	return false
}
