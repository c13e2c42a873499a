package plsql

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"gorm.io/plsql/catalog"
	"gorm.io/plsql/clause"
	"gorm.io/plsql/schema"
)

// Class model registered for pipelined functions and procedure methods, a model embedding another
// registered model inherits its procedure methods
//
// Rebinding the pipelined function of a class is not atomic and must not run concurrently with
// queries of the same class
type Class struct {
	db        *DB
	modelType reflect.Type
	parent    *Class
	pkg       string
	pipelined *catalog.Callable
	alias     string

	methods sync.Map // action => *ProcedureMethod registered on this class
	lookups sync.Map // action => *ProcedureMethod found walking up the parents
}

// Class returns the class of model, registering it on first use
//
//	db.Class(&User{}).SetPipelinedFunction("users_pkg.find_users_by_name")
func (db *DB) Class(model interface{}) *Class {
	return db.classOf(reflect.TypeOf(model))
}

func (db *DB) classOf(modelType reflect.Type) *Class {
	modelType = indirectType(modelType)
	if v, ok := db.classes.Load(modelType); ok {
		return v.(*Class)
	}

	v, _ := db.classes.LoadOrStore(modelType, &Class{db: db, modelType: modelType})
	return v.(*Class)
}

func (db *DB) lookupClass(modelType reflect.Type) *Class {
	if modelType == nil || db.classes == nil {
		return nil
	}
	if v, ok := db.classes.Load(indirectType(modelType)); ok {
		return v.(*Class)
	}
	return nil
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && (t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice || t.Kind() == reflect.Array) {
		t = t.Elem()
	}
	return t
}

// ModelType returns the struct type of the class
func (c *Class) ModelType() reflect.Type {
	return c.modelType
}

// SetParent sets the class procedure methods are inherited from
func (c *Class) SetParent(parent *Class) *Class {
	c.parent = parent
	c.clearLookups()
	return c
}

func (c *Class) clearLookups() {
	c.lookups.Range(func(key, _ interface{}) bool {
		c.lookups.Delete(key)
		return true
	})
}

// Parent returns the explicit parent, or the class of the first embedded registered model
func (c *Class) Parent() *Class {
	if c.parent != nil {
		return c.parent
	}

	if c.modelType.Kind() != reflect.Struct {
		return nil
	}

	for i := 0; i < c.modelType.NumField(); i++ {
		if field := c.modelType.Field(i); field.Anonymous {
			if parent := c.db.lookupClass(field.Type); parent != nil && parent != c {
				return parent
			}
		}
	}
	return nil
}

// SetPackage sets the package bare procedure names are looked up in before standalone procedures
func (c *Class) SetPackage(pkg string) *Class {
	c.pkg = pkg
	return c
}

// Package returns the default package of the class, inherited from parents
func (c *Class) Package() string {
	for class := c; class != nil; class = class.Parent() {
		if class.pkg != "" {
			return class.pkg
		}
	}
	return ""
}

func (c *Class) context() context.Context {
	if c.db.Statement != nil && c.db.Statement.Context != nil {
		return c.db.Statement.Context
	}
	return context.Background()
}

func (c *Class) resolve(name string) (*catalog.Callable, error) {
	if c.db.resolver == nil {
		return nil, &catalog.NotFoundError{Name: name, Err: fmt.Errorf("no catalog configured")}
	}
	return c.db.resolver.ResolveIn(c.context(), c.Package(), name)
}

// SetPipelinedFunction binds the class to a pipelined function given by name or as a resolved
// callable, nil unbinds it
//
// Overloaded callables are rejected with ErrUnsupported, leaving the previous binding in place
func (c *Class) SetPipelinedFunction(function interface{}) error {
	var callable *catalog.Callable

	switch v := function.(type) {
	case nil:
		c.Unbind()
		return nil
	case string:
		if v == "" {
			c.Unbind()
			return nil
		}

		resolved, err := c.resolve(v)
		if err != nil {
			return err
		}
		callable = resolved
	case *catalog.Callable:
		if v == nil {
			c.Unbind()
			return nil
		}
		callable = v
	default:
		return fmt.Errorf("%w: pipelined function %#v", ErrInvalidData, function)
	}

	if callable.Overloaded() {
		return fmt.Errorf("%w: %s has %d signatures", catalog.ErrOverloaded, callable, callable.Overloads)
	}

	if !callable.Pipelined() {
		return fmt.Errorf("%w: %s is not a pipelined function", ErrUnsupported, callable)
	}

	c.Unbind()
	callable.Sort()
	c.pipelined = callable
	c.db.columns.Store(callable.QualifiedName(), virtualColumns(callable))
	return nil
}

// Unbind removes the pipelined function binding, the class is backed by its table again. The
// virtual columns of the function stay cached while another class is bound to it
func (c *Class) Unbind() {
	if c.pipelined != nil {
		name := c.pipelined.QualifiedName()
		shared := false
		c.db.classes.Range(func(_, v interface{}) bool {
			if other := v.(*Class); other != c && other.pipelined != nil && other.pipelined.QualifiedName() == name {
				shared = true
			}
			return !shared
		})
		if !shared {
			c.db.columns.Delete(name)
		}
	}
	c.pipelined = nil
	c.alias = ""
}

// IsPipelined reports whether the class is bound to a pipelined function
func (c *Class) IsPipelined() bool {
	return c.pipelined != nil
}

// PipelinedFunction returns the bound function, nil if none
func (c *Class) PipelinedFunction() *catalog.Callable {
	return c.pipelined
}

// PipelinedArguments returns the arguments of the bound function in declared order
func (c *Class) PipelinedArguments() ([]catalog.Argument, error) {
	if c.pipelined == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnboundAccess, c.modelType)
	}
	return c.pipelined.Arguments, nil
}

// PipelinedArgumentNames returns the argument names of the bound function in declared order
func (c *Class) PipelinedArgumentNames() ([]string, error) {
	if c.pipelined == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnboundAccess, c.modelType)
	}
	return c.pipelined.ArgumentNames(), nil
}

// TableName returns PACKAGE.FUNCTION for pipelined classes, the model's table otherwise
func (c *Class) TableName() string {
	if c.pipelined != nil {
		return c.pipelined.QualifiedName()
	}

	s, err := schema.Parse(reflect.New(c.modelType).Interface(), c.db.cacheStore, c.db.NamingStrategy)
	if err != nil {
		return ""
	}
	return s.Table
}

// Alias returns the table alias of the bound function, the initials of its words
//
//	get_user_by_name => GUBN
func (c *Class) Alias() string {
	if c.pipelined == nil {
		return ""
	}

	if c.alias == "" {
		c.alias = FunctionAlias(c.pipelined.Name)
	}
	return c.alias
}

// FunctionAlias takes the first character and each character following an underscore
func FunctionAlias(name string) string {
	var alias strings.Builder
	next := true
	for _, r := range name {
		if r == '_' {
			next = true
			continue
		}

		if next {
			alias.WriteRune(r)
			next = false
		}
	}
	return strings.ToUpper(alias.String())
}

// TableNameWithArguments returns the table function invocation with a placeholder per argument
//
//	TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name))
func (c *Class) TableNameWithArguments() (string, error) {
	if c.pipelined == nil {
		return "", fmt.Errorf("%w: %s", ErrUnboundAccess, c.modelType)
	}
	return clause.CallText(c.pipelined.QualifiedName(), c.pipelined.ArgumentNames()), nil
}

// Columns returns the virtual table columns, return fields followed by arguments
func (c *Class) Columns() ([]*schema.Column, error) {
	if c.pipelined == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnboundAccess, c.modelType)
	}

	if columns, ok := c.db.columns.Load(c.pipelined.QualifiedName()); ok {
		return columns, nil
	}

	columns := virtualColumns(c.pipelined)
	c.db.columns.Store(c.pipelined.QualifiedName(), columns)
	return columns, nil
}

func virtualColumns(callable *catalog.Callable) []*schema.Column {
	table := callable.QualifiedName()

	columns := make([]*schema.Column, 0, len(callable.Arguments)+len(callable.Return.Fields))
	for _, field := range callable.Return.Fields {
		columns = append(columns, schema.NewColumn(field.Name, nil, field.DataType, table))
	}

	for _, arg := range callable.Arguments {
		columns = append(columns, schema.NewColumn(arg.Name, nil, arg.DataType, table))
	}
	return columns
}
