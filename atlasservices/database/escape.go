package database

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Escape renders a value as a SQL literal: NULL for nil, bare digits for numbers
// and a quoted string for everything else.
func (service *Service) Escape(value any) string {
	return escape(service.driver, value)
}

func escape(driver Driver, value any) string {
	if value == nil {
		return "NULL"
	}

	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "NULL"
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		bitSize := 64
		if v.Kind() == reflect.Float32 {
			bitSize = 32
		}
		text := strconv.FormatFloat(f, 'f', -1, bitSize)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return driver.quote(text)
		}

		return text
	case reflect.Bool:
		if v.Bool() {
			return driver.quote("1")
		}

		return driver.quote("0")
	}

	switch typed := v.Interface().(type) {
	case string:
		return driver.quote(typed)
	case time.Time:
		return driver.quote(typed.Format(timeLayout))
	case []byte:
		return driver.quote(string(typed))
	case fmt.Stringer:
		return driver.quote(typed.String())
	}

	return driver.quote(fmt.Sprint(v.Interface()))
}
