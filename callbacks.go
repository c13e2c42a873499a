package plsql

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"gorm.io/plsql/schema"
	"gorm.io/plsql/utils"
)

func initializeCallbacks(db *DB) *callbacks {
	return &callbacks{
		processors: map[string]*processor{
			"create": {db: db},
			"query":  {db: db},
			"update": {db: db},
			"delete": {db: db},
		},
	}
}

// callbacks plsql callbacks manager
type callbacks struct {
	processors map[string]*processor
}

// processor runs the named callbacks of an operation in their registered order
type processor struct {
	db        *DB
	callbacks []*callback
}

type callback struct {
	name      string
	before    string
	after     string
	match     func(*DB) bool
	handler   func(*DB)
	processor *processor
}

func (cs *callbacks) Create() *processor {
	return cs.processors["create"]
}

func (cs *callbacks) Query() *processor {
	return cs.processors["query"]
}

func (cs *callbacks) Update() *processor {
	return cs.processors["update"]
}

func (cs *callbacks) Delete() *processor {
	return cs.processors["delete"]
}

// Execute prepares the statement of db, runs the callbacks and traces the executed SQL
func (p *processor) Execute(db *DB) *DB {
	var (
		curTime = time.Now()
		stmt    = db.Statement
	)

	if stmt.Model == nil {
		stmt.Model = stmt.Dest
	} else if stmt.Dest == nil {
		stmt.Dest = stmt.Model
	}

	if stmt.Model != nil {
		if err := stmt.Parse(stmt.Model); err != nil {
			switch {
			case !errors.Is(err, schema.ErrUnsupportedDataType):
				db.AddError(err)
			case stmt.Table == "":
				db.AddError(fmt.Errorf("%w: table not set, use db.Model(&user) or db.Table(\"users\")", err))
			}
		}
	}

	if stmt.Dest != nil {
		stmt.ReflectValue = reflect.ValueOf(stmt.Dest)
		for stmt.ReflectValue.Kind() == reflect.Ptr {
			if stmt.ReflectValue.IsNil() && stmt.ReflectValue.CanAddr() {
				stmt.ReflectValue.Set(reflect.New(stmt.ReflectValue.Type().Elem()))
			}
			stmt.ReflectValue = stmt.ReflectValue.Elem()
		}

		if !stmt.ReflectValue.IsValid() {
			db.AddError(ErrInvalidValue)
		}
	}

	for _, c := range p.callbacks {
		c.handler(db)
	}

	if stmt.SQL.Len() > 0 {
		db.Logger.Trace(stmt.Context, curTime, func() (string, int64) {
			sql, vars := stmt.SQL.String(), stmt.Vars
			if filter, ok := db.Logger.(ParamsFilter); ok {
				sql, vars = filter.ParamsFilter(stmt.Context, sql, vars...)
			}
			return db.Dialector.Explain(sql, vars...), db.RowsAffected
		}, db.Error)
	}

	if !stmt.DB.DryRun {
		stmt.SQL.Reset()
		stmt.Vars = nil
	}

	return db
}

// ParamsFilter filter params before logging
type ParamsFilter interface {
	ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{})
}

func (p *processor) index(name string) int {
	for idx, c := range p.callbacks {
		if c.name == name {
			return idx
		}
	}
	return -1
}

// Get returns the handler registered as name
func (p *processor) Get(name string) func(*DB) {
	if idx := p.index(name); idx != -1 {
		return p.callbacks[idx].handler
	}
	return nil
}

func (p *processor) Before(name string) *callback {
	return &callback{before: name, processor: p}
}

func (p *processor) After(name string) *callback {
	return &callback{after: name, processor: p}
}

// Match registers the callback only when fc accepts the db
func (p *processor) Match(fc func(*DB) bool) *callback {
	return &callback{match: fc, processor: p}
}

func (p *processor) Register(name string, fn func(*DB)) error {
	return (&callback{processor: p}).Register(name, fn)
}

func (p *processor) Remove(name string) error {
	return (&callback{processor: p}).Remove(name)
}

func (p *processor) Replace(name string, fn func(*DB)) error {
	return (&callback{processor: p}).Replace(name, fn)
}

func (c *callback) Before(name string) *callback {
	c.before = name
	return c
}

func (c *callback) After(name string) *callback {
	c.after = name
	return c
}

// Register adds the callback, before "*" runs it first and after "*" last, a missing
// before or after target appends it
func (c *callback) Register(name string, fn func(*DB)) error {
	p := c.processor
	if c.match != nil && !c.match(p.db) {
		return nil
	}

	if p.index(name) != -1 {
		return fmt.Errorf("callback %v already registered, replace it instead", name)
	}

	c.name = name
	c.handler = fn

	pos := len(p.callbacks)
	switch {
	case c.before == "*":
		pos = 0
	case c.before != "":
		if idx := p.index(c.before); idx != -1 {
			pos = idx
		} else {
			p.db.Logger.Warn(context.Background(), "callback `%v` registered before unknown `%v` from %v\n", name, c.before, utils.FileWithLineNum())
		}
	case c.after != "" && c.after != "*":
		if idx := p.index(c.after); idx != -1 {
			pos = idx + 1
		} else {
			p.db.Logger.Warn(context.Background(), "callback `%v` registered after unknown `%v` from %v\n", name, c.after, utils.FileWithLineNum())
		}
	}

	p.callbacks = append(p.callbacks, nil)
	copy(p.callbacks[pos+1:], p.callbacks[pos:])
	p.callbacks[pos] = c
	return nil
}

// Remove drops the callback registered as name
func (c *callback) Remove(name string) error {
	p := c.processor
	idx := p.index(name)
	if idx == -1 {
		return fmt.Errorf("callback %v not found", name)
	}

	p.db.Logger.Warn(context.Background(), "removing callback `%v` from %v\n", name, utils.FileWithLineNum())
	p.callbacks = append(p.callbacks[:idx], p.callbacks[idx+1:]...)
	return nil
}

// Replace swaps the handler of name keeping its position, unknown names are registered
func (c *callback) Replace(name string, fn func(*DB)) error {
	p := c.processor
	idx := p.index(name)
	if idx == -1 {
		return c.Register(name, fn)
	}

	p.db.Logger.Info(context.Background(), "replacing callback `%v` from %v\n", name, utils.FileWithLineNum())
	p.callbacks[idx].handler = fn
	return nil
}
