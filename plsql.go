package plsql

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/plsql/catalog"
	"gorm.io/plsql/clause"
	"gorm.io/plsql/logger"
	"gorm.io/plsql/schema"
)

// Config plsql config
type Config struct {
	// NamingStrategy tables, columns naming strategy
	NamingStrategy schema.Namer
	// Logger
	Logger logger.Interface
	// NowFunc the function to be used when creating a new timestamp
	NowFunc func() time.Time
	// DryRun generate sql without execute
	DryRun bool
	// TranslateError enabling error translation
	TranslateError bool

	// Catalog finds callables in the database catalog, defaults to the dialector's catalog
	Catalog catalog.Finder
	// Caller calls stored procedures, defaults to the dialector
	Caller ProcedureCaller
	// CatalogCacheSize number of resolved callables kept in memory
	CatalogCacheSize int

	// ClauseBuilders clause builder
	ClauseBuilders map[string]clause.ClauseBuilder
	// ConnPool db conn pool
	ConnPool ConnPool
	// Dialector database dialector
	Dialector

	callbacks  *callbacks
	cacheStore *sync.Map
	classes    *sync.Map
	columns    *schema.ColumnCache
	resolver   *catalog.Resolver
}

// Apply update config to new config
func (c *Config) Apply(config *Config) error {
	if config != c {
		*config = *c
	}
	return nil
}

// Option option used when opening a database
type Option interface {
	Apply(*Config) error
}

type optionFunc func(*Config) error

func (fn optionFunc) Apply(config *Config) error {
	return fn(config)
}

// WithLogger sets the logger
func WithLogger(l logger.Interface) Option {
	return optionFunc(func(config *Config) error {
		config.Logger = l
		return nil
	})
}

// WithNamingStrategy sets the naming strategy of ordinary tables
func WithNamingStrategy(namer schema.Namer) Option {
	return optionFunc(func(config *Config) error {
		config.NamingStrategy = namer
		return nil
	})
}

// WithDryRun generates statements without executing them
func WithDryRun() Option {
	return optionFunc(func(config *Config) error {
		config.DryRun = true
		return nil
	})
}

// WithTranslateError translates database errors with the dialector's translator
func WithTranslateError() Option {
	return optionFunc(func(config *Config) error {
		config.TranslateError = true
		return nil
	})
}

// WithCatalog sets the callable finder
func WithCatalog(finder catalog.Finder) Option {
	return optionFunc(func(config *Config) error {
		config.Catalog = finder
		return nil
	})
}

// WithCaller sets the stored procedure caller
func WithCaller(caller ProcedureCaller) Option {
	return optionFunc(func(config *Config) error {
		config.Caller = caller
		return nil
	})
}

// WithCatalogCacheSize sets how many resolved callables are cached
func WithCatalogCacheSize(size int) Option {
	return optionFunc(func(config *Config) error {
		if size < 0 {
			return fmt.Errorf("%w: negative catalog cache size %d", ErrInvalidValue, size)
		}
		config.CatalogCacheSize = size
		return nil
	})
}

// WithNowFunc sets the clock
func WithNowFunc(fn func() time.Time) Option {
	return optionFunc(func(config *Config) error {
		config.NowFunc = fn
		return nil
	})
}

// DB plsql DB definition
type DB struct {
	*Config
	Error        error
	RowsAffected int64
	Statement    *Statement
	clone        int
}

// Session session config when create session with Session() method
type Session struct {
	DryRun    bool
	NewDB     bool
	SkipHooks bool
	Context   context.Context
	Logger    logger.Interface
	NowFunc   func() time.Time
}

// Open initialize db session based on dialector
func Open(dialector Dialector, opts ...Option) (db *DB, err error) {
	config := &Config{}

	for _, opt := range opts {
		if opt != nil {
			if err := opt.Apply(config); err != nil {
				return nil, err
			}
		}
	}

	if config.NamingStrategy == nil {
		config.NamingStrategy = schema.NamingStrategy{}
	}

	if config.Logger == nil {
		config.Logger = logger.Default
	}

	if config.NowFunc == nil {
		config.NowFunc = func() time.Time { return time.Now().Local() }
	}

	if dialector != nil {
		config.Dialector = dialector
	}

	if config.ClauseBuilders == nil {
		config.ClauseBuilders = map[string]clause.ClauseBuilder{}
	}

	config.cacheStore = &sync.Map{}
	config.classes = &sync.Map{}
	config.columns = &schema.ColumnCache{}

	db = &DB{Config: config, clone: 1}
	db.callbacks = initializeCallbacks(db)

	if config.Dialector != nil {
		if err = config.Dialector.Initialize(db); err != nil {
			return db, err
		}
	}

	if config.Catalog == nil {
		if provider, ok := config.Dialector.(CatalogProvider); ok {
			config.Catalog = provider.Catalog(db)
		}
	}

	if config.Caller == nil {
		if caller, ok := config.Dialector.(ProcedureCaller); ok {
			config.Caller = caller
		}
	}

	if config.Catalog != nil {
		config.resolver = catalog.NewResolver(config.Catalog, config.CatalogCacheSize)
	}

	db.Statement = &Statement{
		DB:       db,
		ConnPool: db.ConnPool,
		Context:  context.Background(),
		Clauses:  map[string]clause.Clause{},
	}
	return
}

// Session create new db session
func (db *DB) Session(config *Session) *DB {
	var (
		txConfig = *db.Config
		tx       = &DB{
			Config:    &txConfig,
			Statement: db.Statement,
			Error:     db.Error,
			clone:     1,
		}
	)

	if config.Context != nil || config.SkipHooks {
		tx.Statement = tx.Statement.clone()
		tx.Statement.DB = tx
	}

	if config.Context != nil {
		tx.Statement.Context = config.Context
	}

	if config.SkipHooks {
		tx.Statement.SkipHooks = true
	}

	if !config.NewDB {
		tx.clone = 2
	}

	if config.DryRun {
		tx.Config.DryRun = true
	}

	if config.Logger != nil {
		tx.Config.Logger = config.Logger
	}

	if config.NowFunc != nil {
		tx.Config.NowFunc = config.NowFunc
	}

	return tx
}

// WithContext change current instance db's context to ctx
func (db *DB) WithContext(ctx context.Context) *DB {
	return db.Session(&Session{Context: ctx})
}

// Debug start debug mode
func (db *DB) Debug() (tx *DB) {
	return db.Session(&Session{
		Logger: db.Logger.LogMode(logger.Info),
	})
}

// Callback returns callback manager
func (db *DB) Callback() *callbacks {
	return db.callbacks
}

// Resolver returns the callable resolver, nil when no catalog is configured
func (db *DB) Resolver() *catalog.Resolver {
	return db.resolver
}

// ColumnCache returns the schema cache consulted by column introspection
func (db *DB) ColumnCache() *schema.ColumnCache {
	return db.columns
}

// AddError add error to db
func (db *DB) AddError(err error) error {
	if err != nil {
		if db.Config.TranslateError {
			if errTranslator, ok := db.Dialector.(ErrorTranslator); ok {
				err = errTranslator.Translate(err)
			}
		}

		if db.Error == nil {
			db.Error = err
		} else {
			db.Error = fmt.Errorf("%v; %w", db.Error, err)
		}
	}
	return db.Error
}

// ToSQL for generate SQL string.
//
//	db.ToSQL(func(tx *plsql.DB) *plsql.DB {
//			return tx.Model(&User{}).Where(map[string]interface{}{"p_name": "Albert"}).Limit(10).Find(&[]User{})
//	})
func (db *DB) ToSQL(queryFn func(tx *DB) *DB) string {
	tx := queryFn(db.Session(&Session{DryRun: true, SkipHooks: true}))
	stmt := tx.Statement

	return db.Dialector.Explain(stmt.SQL.String(), stmt.Vars...)
}

func (db *DB) getInstance() *DB {
	if db.clone > 0 {
		tx := &DB{Config: db.Config, Error: db.Error}

		if db.clone == 1 {
			// clone with new statement
			tx.Statement = &Statement{
				DB:        tx,
				ConnPool:  db.Statement.ConnPool,
				Context:   db.Statement.Context,
				Clauses:   map[string]clause.Clause{},
				SkipHooks: db.Statement.SkipHooks,
			}
		} else {
			// with clone statement
			tx.Statement = db.Statement.clone()
			tx.Statement.DB = tx
		}

		return tx
	}

	return db
}

// Expr returns clause.Expr, which can be used to pass SQL expression as params
func Expr(expr string, args ...interface{}) clause.Expr {
	return clause.Expr{SQL: expr, Vars: args}
}
