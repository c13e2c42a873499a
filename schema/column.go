package schema

import (
	"database/sql/driver"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/jinzhu/now"
)

var (
	int64ReflectType   = reflect.TypeOf(int64(0))
	float64ReflectType = reflect.TypeOf(float64(0))
	stringReflectType  = reflect.TypeOf("")
	bytesReflectType   = reflect.TypeOf([]byte{})
)

// Column column type descriptor, used both for table columns and table function rows and arguments
type Column struct {
	Name     string
	CastType reflect.Type
	DataType string
	Table    string
}

// NewColumn creates a column descriptor, the cast type is derived from the declared data type when nil
func NewColumn(name string, castType reflect.Type, dataType, table string) *Column {
	if castType == nil {
		castType = CastTypeOf(dataType)
	}
	return &Column{Name: name, CastType: castType, DataType: dataType, Table: table}
}

// CastTypeOf returns the Go type values of an Oracle data type are cast to
func CastTypeOf(dataType string) reflect.Type {
	dataType = strings.ToUpper(dataType)
	switch {
	case dataType == "NUMBER", dataType == "INTEGER", dataType == "PLS_INTEGER", dataType == "BINARY_INTEGER":
		return int64ReflectType
	case dataType == "FLOAT", dataType == "BINARY_FLOAT", dataType == "BINARY_DOUBLE":
		return float64ReflectType
	case dataType == "DATE", strings.HasPrefix(dataType, "TIMESTAMP"):
		return TimeReflectType
	case dataType == "RAW", dataType == "BLOB", dataType == "LONG RAW":
		return bytesReflectType
	case dataType == "":
		return nil
	}
	return stringReflectType
}

// Cast converts v to the column's cast type when v is a textual representation of it,
// other values are returned untouched and left to the driver
func (column *Column) Cast(v interface{}) (interface{}, error) {
	if v == nil || column.CastType == nil {
		return v, nil
	}

	if _, ok := v.(driver.Valuer); ok {
		return v, nil
	}

	var str string
	switch value := v.(type) {
	case string:
		str = value
	case []byte:
		if column.CastType == bytesReflectType {
			return v, nil
		}
		str = string(value)
	default:
		return v, nil
	}

	switch column.CastType {
	case int64ReflectType:
		if i, err := strconv.ParseInt(str, 10, 64); err == nil {
			return i, nil
		}
		return strconv.ParseFloat(str, 64)
	case float64ReflectType:
		return strconv.ParseFloat(str, 64)
	case TimeReflectType:
		return now.Parse(str)
	case stringReflectType:
		return str, nil
	}
	return v, nil
}

// ColumnCache schema cache of column descriptors keyed by table identifier
type ColumnCache struct {
	columns sync.Map
}

func cacheKey(table string) string {
	return strings.ToUpper(table)
}

// Load returns the cached columns of table
func (cache *ColumnCache) Load(table string) ([]*Column, bool) {
	if v, ok := cache.columns.Load(cacheKey(table)); ok {
		return v.([]*Column), true
	}
	return nil, false
}

// Store caches the columns of table
func (cache *ColumnCache) Store(table string, columns []*Column) {
	cache.columns.Store(cacheKey(table), columns)
}

// Delete forgets the columns of table
func (cache *ColumnCache) Delete(table string) {
	cache.columns.Delete(cacheKey(table))
}

// Clear forgets all cached columns
func (cache *ColumnCache) Clear() {
	cache.columns.Range(func(key, _ interface{}) bool {
		cache.columns.Delete(key)
		return true
	})
}
