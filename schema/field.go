package schema

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/jinzhu/now"
)

var (
	TimeReflectType    = reflect.TypeOf(time.Time{})
	scannerReflectType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	valuerReflectType  = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
)

type Field struct {
	Name              string
	DBName            string
	PrimaryKey        bool
	Readable          bool
	Creatable         bool
	Updatable         bool
	FieldType         reflect.Type
	IndirectFieldType reflect.Type
	StructField       reflect.StructField
	TagSettings       map[string]string
	Schema            *Schema
	index             []int
}

// ParseField parse a struct field
func (schema *Schema) ParseField(fieldStruct reflect.StructField, tagSetting map[string]string, index []int) *Field {
	field := &Field{
		Name:              fieldStruct.Name,
		DBName:            tagSetting["COLUMN"],
		FieldType:         fieldStruct.Type,
		IndirectFieldType: fieldStruct.Type,
		StructField:       fieldStruct,
		TagSettings:       tagSetting,
		Schema:            schema,
		Readable:          true,
		Creatable:         true,
		Updatable:         true,
		index:             index,
	}

	for field.IndirectFieldType.Kind() == reflect.Ptr {
		field.IndirectFieldType = field.IndirectFieldType.Elem()
	}

	switch field.IndirectFieldType.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		if field.IndirectFieldType.Elem().Kind() != reflect.Uint8 && !isValueType(field.IndirectFieldType) {
			// associations are loaded explicitly, they are never columns
			return nil
		}
	case reflect.Struct:
		if !isValueType(field.IndirectFieldType) {
			return nil
		}
	}

	if val, ok := tagSetting["PRIMARYKEY"]; ok && checkTruth(val) {
		field.PrimaryKey = true
	} else if val, ok := tagSetting["PRIMARY_KEY"]; ok && checkTruth(val) {
		field.PrimaryKey = true
	}

	if v, ok := tagSetting["<-"]; ok {
		field.Creatable = v == "<-" || v == "create" || v == ""
		field.Updatable = v == "<-" || v == "update" || v == ""
	}

	if _, ok := tagSetting["->"]; ok {
		field.Creatable = false
		field.Updatable = false
	}

	return field
}

func isValueType(t reflect.Type) bool {
	if t == TimeReflectType {
		return true
	}
	ptr := reflect.PointerTo(t)
	return t.Implements(scannerReflectType) || ptr.Implements(scannerReflectType) || t.Implements(valuerReflectType)
}

// ReflectValueOf returns the field value of struct value, the value must be an addressable struct
func (field *Field) ReflectValueOf(value reflect.Value) reflect.Value {
	value = reflect.Indirect(value)
	return value.FieldByIndex(field.index)
}

// ValueOf returns field's value and whether it is zero
func (field *Field) ValueOf(value reflect.Value) (interface{}, bool) {
	fieldValue := field.ReflectValueOf(value)
	return fieldValue.Interface(), fieldValue.IsZero()
}

// Set assigns v to the field of struct value, converting between driver and field types
func (field *Field) Set(value reflect.Value, v interface{}) error {
	if err := assign(field.ReflectValueOf(value), v); err != nil {
		return fmt.Errorf("failed to set value %#v to field %s: %w", v, field.Name, err)
	}
	return nil
}

func assign(fieldValue reflect.Value, v interface{}) error {
	if v == nil {
		fieldValue.Set(reflect.Zero(fieldValue.Type()))
		return nil
	}

	if fieldValue.CanAddr() {
		if scanner, ok := fieldValue.Addr().Interface().(sql.Scanner); ok {
			return scanner.Scan(v)
		}
	}

	reflectV := reflect.ValueOf(v)
	for reflectV.Kind() == reflect.Ptr {
		if reflectV.IsNil() {
			fieldValue.Set(reflect.Zero(fieldValue.Type()))
			return nil
		}
		reflectV = reflectV.Elem()
	}

	if fieldValue.Kind() == reflect.Ptr {
		ptr := reflect.New(fieldValue.Type().Elem())
		if err := assign(ptr.Elem(), reflectV.Interface()); err != nil {
			return err
		}
		fieldValue.Set(ptr)
		return nil
	}

	if reflectV.Type().AssignableTo(fieldValue.Type()) {
		fieldValue.Set(reflectV)
		return nil
	}

	switch fieldValue.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := toInt64(reflectV)
		if err != nil {
			return err
		}
		fieldValue.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := toInt64(reflectV)
		if err != nil {
			return err
		}
		fieldValue.SetUint(uint64(i))
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(reflectV)
		if err != nil {
			return err
		}
		fieldValue.SetFloat(f)
		return nil
	case reflect.String:
		if b, ok := reflectV.Interface().([]byte); ok {
			fieldValue.SetString(string(b))
		} else {
			fieldValue.SetString(fmt.Sprint(reflectV.Interface()))
		}
		return nil
	case reflect.Bool:
		switch reflectV.Kind() {
		case reflect.String:
			b, err := strconv.ParseBool(reflectV.String())
			if err != nil {
				return err
			}
			fieldValue.SetBool(b)
			return nil
		default:
			i, err := toInt64(reflectV)
			if err != nil {
				return err
			}
			fieldValue.SetBool(i != 0)
			return nil
		}
	case reflect.Struct:
		if fieldValue.Type() == TimeReflectType {
			var str string
			switch reflectV.Kind() {
			case reflect.String:
				str = reflectV.String()
			case reflect.Slice:
				str = string(reflectV.Bytes())
			}
			if str != "" {
				t, err := now.Parse(str)
				if err != nil {
					return err
				}
				fieldValue.Set(reflect.ValueOf(t))
				return nil
			}
		}
	}

	if reflectV.Type().ConvertibleTo(fieldValue.Type()) {
		fieldValue.Set(reflectV.Convert(fieldValue.Type()))
		return nil
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedDataType, reflectV.Type())
}

func toInt64(v reflect.Value) (int64, error) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		if f := v.Float(); f == math.Trunc(f) {
			return int64(f), nil
		}
		return 0, fmt.Errorf("%v is not an integer", v.Float())
	case reflect.String:
		return parseInt(v.String())
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return parseInt(string(v.Bytes()))
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedDataType, v.Type())
}

func parseInt(s string) (int64, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%s is not an integer", s)
	}
	return int64(f), nil
}

func toFloat64(v reflect.Value) (float64, error) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.String:
		return strconv.ParseFloat(v.String(), 64)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return strconv.ParseFloat(string(v.Bytes()), 64)
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedDataType, v.Type())
}
