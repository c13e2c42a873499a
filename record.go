package plsql

import (
	"database/sql"
	"reflect"
)

// Record persistence state embedded into models
//
//	type User struct {
//		plsql.Record
//		ID   int64
//		Name string
//	}
type Record struct {
	foundByArguments []sql.NamedArg
	persisted        bool
	destroyed        bool
}

// recorder is implemented by models embedding Record
type recorder interface {
	plsqlRecord() *Record
}

func (r *Record) plsqlRecord() *Record {
	return r
}

// FoundByArguments returns the pipelined function arguments the record was loaded with, in
// argument order
func (r *Record) FoundByArguments() []sql.NamedArg {
	if r.foundByArguments == nil {
		return nil
	}

	args := make([]sql.NamedArg, len(r.foundByArguments))
	copy(args, r.foundByArguments)
	return args
}

// IsPersisted reports whether the record was loaded from or saved to the database and not destroyed
func (r *Record) IsPersisted() bool {
	return r.persisted && !r.destroyed
}

// IsDestroyed reports whether the record was destroyed
func (r *Record) IsDestroyed() bool {
	return r.destroyed
}

// IsNewRecord reports whether the record was never saved
func (r *Record) IsNewRecord() bool {
	return !r.persisted && !r.destroyed
}

func (r *Record) markPersisted(args []sql.NamedArg) {
	r.persisted = true
	r.destroyed = false
	r.foundByArguments = args
}

func (r *Record) markDestroyed() {
	r.destroyed = true
}

// recordOf returns the Record embedded into value, nil when the model doesn't embed one
func recordOf(value interface{}) *Record {
	if r, ok := value.(recorder); ok {
		return r.plsqlRecord()
	}

	reflectValue := reflect.ValueOf(value)
	for reflectValue.Kind() == reflect.Ptr || reflectValue.Kind() == reflect.Interface {
		if reflectValue.IsNil() {
			return nil
		}
		reflectValue = reflectValue.Elem()
	}

	if reflectValue.CanAddr() {
		if r, ok := reflectValue.Addr().Interface().(recorder); ok {
			return r.plsqlRecord()
		}
	}
	return nil
}

func markPersisted(reflectValue reflect.Value, args []sql.NamedArg) {
	if reflectValue.CanAddr() {
		if r := recordOf(reflectValue.Addr().Interface()); r != nil {
			r.markPersisted(args)
		}
	}
}

// MarkPersisted marks records embedding Record as saved, value is a pointer to a model or a slice of models
func MarkPersisted(value interface{}) {
	eachRecord(value, func(r *Record) { r.markPersisted(r.foundByArguments) })
}

// MarkDestroyed marks records embedding Record as destroyed
func MarkDestroyed(value interface{}) {
	eachRecord(value, (*Record).markDestroyed)
}

func eachRecord(value interface{}, fc func(*Record)) {
	reflectValue := reflect.Indirect(reflect.ValueOf(value))
	switch reflectValue.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < reflectValue.Len(); i++ {
			if elem := reflect.Indirect(reflectValue.Index(i)); elem.CanAddr() {
				if r := recordOf(elem.Addr().Interface()); r != nil {
					fc(r)
				}
			}
		}
	case reflect.Struct:
		if reflectValue.CanAddr() {
			if r := recordOf(reflectValue.Addr().Interface()); r != nil {
				fc(r)
			}
		}
	}
}
