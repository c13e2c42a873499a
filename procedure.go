package plsql

import (
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"gorm.io/plsql/catalog"
	"gorm.io/plsql/schema"
	"gorm.io/plsql/utils"
)

// persistence actions redirected to procedures
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDestroy = "destroy"
)

// ProcedureOptions arguments and reload rule of a procedure method
type ProcedureOptions struct {
	// Arguments static named arguments, merged with a map passed at call time. Positional call time
	// arguments replace them along with ArgumentsFunc
	Arguments map[string]interface{}
	// ArgumentsFunc computes named arguments from the record, they override static and call time arguments
	ArgumentsFunc func(tx *DB, value interface{}) (map[string]interface{}, error)
	// Reload replaces the default reload after create
	Reload func(tx *DB, value interface{}) error
}

// ResultFunc interprets the result of a named procedure method
type ResultFunc func(tx *DB, value, result interface{}) (interface{}, error)

// ProcedureMethod procedure registered for an action of a class
type ProcedureMethod struct {
	Action   string
	Callable *catalog.Callable
	Options  ProcedureOptions
	Result   ResultFunc
}

// SetCreateProcedure creates records calling procedure, its result is the new primary key
//
//	db.Class(&User{}).SetCreateProcedure("users_pkg.create_user", plsql.ProcedureOptions{
//		ArgumentsFunc: func(tx *plsql.DB, value interface{}) (map[string]interface{}, error) {
//			user := value.(*User)
//			return map[string]interface{}{"p_name": user.Name, "p_surname": user.Surname}, nil
//		},
//	})
func (c *Class) SetCreateProcedure(procedure interface{}, opts ProcedureOptions) error {
	return c.ProcedureMethod(ActionCreate, procedure, opts)
}

// SetUpdateProcedure updates records calling procedure, records are reloaded afterwards
func (c *Class) SetUpdateProcedure(procedure interface{}, opts ProcedureOptions) error {
	return c.ProcedureMethod(ActionUpdate, procedure, opts)
}

// SetDestroyProcedure deletes records calling procedure
func (c *Class) SetDestroyProcedure(procedure interface{}, opts ProcedureOptions) error {
	return c.ProcedureMethod(ActionDestroy, procedure, opts)
}

// ProcedureMethod registers procedure, a name or a resolved callable, for action, the procedure
// is resolved right away
func (c *Class) ProcedureMethod(action string, procedure interface{}, opts ProcedureOptions, result ...ResultFunc) error {
	var callable *catalog.Callable

	switch v := procedure.(type) {
	case string:
		if v == "" {
			v = action
		}

		resolved, err := c.resolve(v)
		if err != nil {
			return fmt.Errorf("procedure %s for method %s: %w", v, action, err)
		}
		callable = resolved
	case *catalog.Callable:
		if v == nil {
			return fmt.Errorf("%w: procedure for method %s", ErrInvalidData, action)
		}
		callable = v
	default:
		return fmt.Errorf("%w: procedure %#v for method %s", ErrInvalidData, procedure, action)
	}

	if callable.Overloaded() {
		return fmt.Errorf("%w: %s has %d signatures", catalog.ErrOverloaded, callable, callable.Overloads)
	}
	callable.Sort()

	method := &ProcedureMethod{Action: action, Callable: callable, Options: opts}
	if len(result) > 0 {
		method.Result = result[0]
	}

	c.methods.Store(action, method)
	c.db.classes.Range(func(_, v interface{}) bool {
		v.(*Class).clearLookups()
		return true
	})
	return nil
}

// LookupProcedureMethod returns the procedure registered for action on the class or its nearest parent
func (c *Class) LookupProcedureMethod(action string) (*ProcedureMethod, bool) {
	if v, ok := c.methods.Load(action); ok {
		return v.(*ProcedureMethod), true
	}

	if v, ok := c.lookups.Load(action); ok {
		return v.(*ProcedureMethod), true
	}

	for parent := c.Parent(); parent != nil; parent = parent.Parent() {
		if v, ok := parent.methods.Load(action); ok {
			c.lookups.Store(action, v)
			return v.(*ProcedureMethod), true
		}
	}
	return nil, false
}

// ProcedureMethods returns the actions with a procedure, inherited ones included, sorted
func (c *Class) ProcedureMethods() []string {
	seen := map[string]bool{}
	for class := c; class != nil; class = class.Parent() {
		class.methods.Range(func(k, _ interface{}) bool {
			seen[k.(string)] = true
			return true
		})
	}

	actions := make([]string, 0, len(seen))
	for action := range seen {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

// Call invokes action on value, a method of value named after the action in camel case with
// signature func(*plsql.DB, ...interface{}) (interface{}, error) takes precedence over the
// registered procedure, it can call CallProcedure itself
//
//	func (u *User) Salute(tx *plsql.DB, args ...interface{}) (interface{}, error) {
//		greeting, err := tx.CallProcedure(u, "salute", args...)
//		return fmt.Sprintf("%v!", greeting), err
//	}
func (db *DB) Call(value interface{}, action string, args ...interface{}) (interface{}, error) {
	if method := reflect.ValueOf(value).MethodByName(utils.ToCamel(action)); method.IsValid() {
		if fn, ok := method.Interface().(func(*DB, ...interface{}) (interface{}, error)); ok {
			return fn(db, args...)
		}
	}
	return db.CallProcedure(value, action, args...)
}

// CallProcedure invokes the procedure registered for action on value, a single map argument
// supplies named arguments, other arguments are passed by position
func (db *DB) CallProcedure(value interface{}, action string, args ...interface{}) (interface{}, error) {
	tx := db.getInstance()

	class := tx.classOf(reflect.TypeOf(value))
	method, ok := class.LookupProcedureMethod(action)
	if !ok {
		return nil, fmt.Errorf("%w: %s for %v", ErrUnknownProcedureMethod, action, class.ModelType())
	}

	callArgs, err := method.arguments(tx, value, args)
	if err != nil {
		return nil, err
	}

	result, err := tx.callProcedure(method.Callable, callArgs)
	if err != nil {
		return nil, err
	}

	switch action {
	case ActionCreate:
		return tx.afterCreateProcedure(method, value, callArgs, result)
	case ActionUpdate:
		if err := tx.Reload(value).Error; err != nil {
			return nil, err
		}
		return primaryKeyOf(tx, value), nil
	case ActionDestroy:
		if record := recordOf(value); record != nil {
			record.markDestroyed()
		}
		return result, nil
	}

	if method.Result != nil {
		return method.Result(tx, value, result)
	}
	return result, nil
}

// arguments merges static, call time and computed arguments, named arguments the procedure
// doesn't declare are dropped
func (method *ProcedureMethod) arguments(tx *DB, value interface{}, args []interface{}) (CallArguments, error) {
	named := map[string]interface{}{}
	for k, v := range method.Options.Arguments {
		named[k] = v
	}

	switch {
	case len(args) == 1 && isArgumentMap(args[0]):
		for k, v := range args[0].(map[string]interface{}) {
			named[k] = v
		}
	case len(args) > 0:
		return CallArguments{Positional: args}, nil
	}

	if method.Options.ArgumentsFunc != nil {
		computed, err := method.Options.ArgumentsFunc(tx, value)
		if err != nil {
			return CallArguments{}, err
		}
		for k, v := range computed {
			named[k] = v
		}
	}

	var callArgs CallArguments
	for _, arg := range method.Callable.Arguments {
		for k, v := range named {
			if strings.EqualFold(k, arg.Name) {
				callArgs.Named = append(callArgs.Named, sql.Named(arg.Name, v))
				break
			}
		}
	}
	return callArgs, nil
}

// Exec calls the procedure or function named name outside of any class, string values are
// cast to the declared argument types
//
//	db.Exec("users_pkg.create_user", map[string]interface{}{"p_name": "Albert"})
func (db *DB) Exec(name string, args map[string]interface{}) (interface{}, error) {
	tx := db.getInstance()

	if tx.resolver == nil {
		return nil, &catalog.NotFoundError{Name: name, Err: fmt.Errorf("no catalog configured")}
	}

	callable, err := tx.resolver.Resolve(tx.Statement.Context, name)
	if err != nil {
		return nil, err
	}

	for k := range args {
		if _, ok := callable.Argument(k); !ok {
			return nil, fmt.Errorf("%w: %s doesn't declare argument %s", ErrInvalidData, callable, k)
		}
	}

	var callArgs CallArguments
	for _, arg := range callable.Arguments {
		for k, v := range args {
			if strings.EqualFold(k, arg.Name) {
				if casted, err := schema.NewColumn(arg.Name, nil, arg.DataType, "").Cast(v); err == nil {
					v = casted
				}
				callArgs.Named = append(callArgs.Named, sql.Named(arg.Name, v))
				break
			}
		}
	}
	return tx.callProcedure(callable, callArgs)
}

func isArgumentMap(v interface{}) bool {
	_, ok := v.(map[string]interface{})
	return ok
}

func (db *DB) callProcedure(callable *catalog.Callable, args CallArguments) (result interface{}, err error) {
	begin := time.Now()
	stmt := db.Statement

	if !db.DryRun {
		if db.Caller == nil {
			return nil, fmt.Errorf("%w: no procedure caller configured", ErrNotImplemented)
		}

		result, err = db.Caller.CallProcedure(stmt.Context, stmt.ConnPool, callable, args)
		err = db.translateCallError(callable.QualifiedName(), err)
	}

	db.Logger.TraceCall(stmt.Context, begin, func() (string, interface{}) {
		return db.Dialector.Explain(callText(callable, args), args.Values()...), result
	}, err)
	return result, err
}

// callText returns the invocation logged for a call, USERS_PKG.CREATE_USER(p_name => :p_name)
func callText(callable *catalog.Callable, args CallArguments) string {
	var text strings.Builder
	text.WriteString(callable.QualifiedName())
	text.WriteByte('(')
	if len(args.Named) > 0 {
		for idx, arg := range args.Named {
			if idx > 0 {
				text.WriteString(", ")
			}
			text.WriteString(arg.Name)
			text.WriteString(" => :")
			text.WriteString(arg.Name)
		}
	} else {
		for idx := range args.Positional {
			if idx > 0 {
				text.WriteString(", ")
			}
			fmt.Fprintf(&text, ":%d", idx+1)
		}
	}
	text.WriteByte(')')
	return text.String()
}

func (db *DB) afterCreateProcedure(method *ProcedureMethod, value interface{}, args CallArguments, result interface{}) (interface{}, error) {
	id, ok := identifierOf(result)
	if !ok {
		return nil, &CannotFetchIDError{Procedure: method.Callable.QualifiedName(), Result: result}
	}

	s, err := schema.Parse(value, db.cacheStore, db.NamingStrategy)
	if err != nil {
		return nil, err
	}
	if s.PrioritizedPrimaryField == nil {
		return nil, ErrPrimaryKeyRequired
	}

	reflectValue := reflect.Indirect(reflect.ValueOf(value))
	if !reflectValue.CanAddr() {
		return nil, ErrInvalidValue
	}
	if err := s.PrioritizedPrimaryField.Set(reflectValue, id); err != nil {
		return nil, err
	}

	if method.Options.Reload != nil {
		err = method.Options.Reload(db, value)
	} else {
		err = db.Reload(value, reloadArguments(db.classOf(reflectValue.Type()), method.Callable, args)).Error
	}
	if err != nil {
		return nil, err
	}

	if record := recordOf(value); record != nil {
		record.markPersisted(record.foundByArguments)
	}
	return primaryKeyOf(db, value), nil
}

// reloadArguments returns the create call arguments also declared by the pipelined function of
// class, the new record is looked up with them
func reloadArguments(class *Class, procedure *catalog.Callable, args CallArguments) map[string]interface{} {
	arguments := map[string]interface{}{}
	if !class.IsPipelined() {
		return arguments
	}

	fn := class.PipelinedFunction()
	for _, arg := range args.Named {
		if declared, ok := fn.Argument(arg.Name); ok {
			arguments[declared.Name] = arg.Value
		}
	}
	for idx, value := range args.Positional {
		if idx >= len(procedure.Arguments) {
			break
		}
		if declared, ok := fn.Argument(procedure.Arguments[idx].Name); ok {
			arguments[declared.Name] = value
		}
	}
	return arguments
}

// identifierOf interprets a create procedure result, a number or a map holding a single number
func identifierOf(result interface{}) (interface{}, bool) {
	if m, ok := result.(map[string]interface{}); ok && len(m) == 1 {
		for _, v := range m {
			return identifierOf(v)
		}
	}

	switch v := result.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v, true
	case float32:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
		return v, true
	}
	return nil, false
}

func primaryKeyOf(db *DB, value interface{}) interface{} {
	s, err := schema.Parse(value, db.cacheStore, db.NamingStrategy)
	if err != nil || s.PrioritizedPrimaryField == nil {
		return nil
	}
	pk, _ := s.PrioritizedPrimaryField.ValueOf(reflect.ValueOf(value))
	return pk
}
