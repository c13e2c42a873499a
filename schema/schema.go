package schema

import (
	"errors"
	"fmt"
	"go/ast"
	"reflect"
	"strings"
	"sync"
)

// ErrUnsupportedDataType unsupported data type
var ErrUnsupportedDataType = errors.New("unsupported data type")

// Tabler can be implemented by models to override the table name
type Tabler interface {
	TableName() string
}

type Schema struct {
	Name                    string
	ModelType               reflect.Type
	Table                   string
	PrioritizedPrimaryField *Field
	PrimaryFields           []*Field
	DBNames                 []string
	Fields                  []*Field
	FieldsByName            map[string]*Field
	FieldsByDBName          map[string]*Field
	namer                   Namer
}

func (schema Schema) String() string {
	if schema.ModelType.Name() == "" {
		return fmt.Sprintf("%s(%s)", schema.Name, schema.Table)
	}
	return fmt.Sprintf("%s.%s", schema.ModelType.PkgPath(), schema.ModelType.Name())
}

// LookUpField finds a field by db name or struct field name, db names are matched case-insensitively
// as Oracle reports unquoted identifiers in upper case
func (schema Schema) LookUpField(name string) *Field {
	if field, ok := schema.FieldsByDBName[name]; ok {
		return field
	}
	if field, ok := schema.FieldsByName[name]; ok {
		return field
	}
	if field, ok := schema.FieldsByDBName[strings.ToLower(name)]; ok {
		return field
	}
	return nil
}

// Parse get data type from dialector
func Parse(dest interface{}, cacheStore *sync.Map, namer Namer) (*Schema, error) {
	if dest == nil {
		return nil, fmt.Errorf("%w: %+v", ErrUnsupportedDataType, dest)
	}

	modelType := reflect.Indirect(reflect.ValueOf(dest)).Type()
	if modelType.Kind() == reflect.Interface {
		modelType = reflect.Indirect(reflect.ValueOf(dest)).Elem().Type()
	}

	for modelType.Kind() == reflect.Slice || modelType.Kind() == reflect.Array || modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	if modelType.Kind() != reflect.Struct {
		if modelType.PkgPath() == "" {
			return nil, fmt.Errorf("%w: %+v", ErrUnsupportedDataType, dest)
		}
		return nil, fmt.Errorf("%w: %s.%s", ErrUnsupportedDataType, modelType.PkgPath(), modelType.Name())
	}

	if v, ok := cacheStore.Load(modelType); ok {
		return v.(*Schema), nil
	}

	modelValue := reflect.New(modelType)
	tableName := namer.TableName(modelType.Name())
	if tabler, ok := modelValue.Interface().(Tabler); ok {
		tableName = tabler.TableName()
	}

	schema := &Schema{
		Name:           modelType.Name(),
		ModelType:      modelType,
		Table:          tableName,
		FieldsByName:   map[string]*Field{},
		FieldsByDBName: map[string]*Field{},
		namer:          namer,
	}

	schema.parseFields(modelType, nil)

	for _, field := range schema.Fields {
		if field.DBName == "" {
			field.DBName = namer.ColumnName(schema.Table, field.Name)
		}

		if _, ok := schema.FieldsByDBName[field.DBName]; !ok {
			schema.DBNames = append(schema.DBNames, field.DBName)
			schema.FieldsByDBName[field.DBName] = field
			schema.FieldsByName[field.Name] = field

			if field.PrimaryKey {
				schema.PrimaryFields = append(schema.PrimaryFields, field)
			}
		}
	}

	if field := schema.LookUpField("id"); field != nil && len(schema.PrimaryFields) == 0 {
		field.PrimaryKey = true
		schema.PrimaryFields = append(schema.PrimaryFields, field)
	}

	if len(schema.PrimaryFields) > 0 {
		schema.PrioritizedPrimaryField = schema.PrimaryFields[0]
	}

	if v, loaded := cacheStore.LoadOrStore(modelType, schema); loaded {
		return v.(*Schema), nil
	}
	return schema, nil
}

func (schema *Schema) parseFields(modelType reflect.Type, index []int) {
	for i := 0; i < modelType.NumField(); i++ {
		fieldStruct := modelType.Field(i)
		if !ast.IsExported(fieldStruct.Name) {
			continue
		}

		tagSetting := parseTagSetting(fieldStruct.Tag)
		if _, ok := tagSetting["-"]; ok {
			continue
		}

		fieldIndex := make([]int, len(index)+1)
		copy(fieldIndex, index)
		fieldIndex[len(index)] = i

		if fieldStruct.Anonymous && fieldStruct.Type.Kind() == reflect.Struct && !isValueType(fieldStruct.Type) {
			schema.parseFields(fieldStruct.Type, fieldIndex)
			continue
		}

		if field := schema.ParseField(fieldStruct, tagSetting, fieldIndex); field != nil {
			schema.Fields = append(schema.Fields, field)
		}
	}
}
