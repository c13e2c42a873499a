package plsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/plsql/logger"
)

func newProcessor() *processor {
	return &processor{db: &DB{Config: &Config{Logger: logger.Discard}}}
}

func callbackNames(p *processor) []string {
	result := make([]string, 0, len(p.callbacks))
	for _, c := range p.callbacks {
		result = append(result, c.name)
	}
	return result
}

func noop(*DB) {}

func TestCallbackOrder(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Register("bind", noop))
	require.NoError(t, p.Register("query", noop))
	require.NoError(t, p.After("query").Register("scan", noop))
	require.NoError(t, p.Before("query").Register("prepare", noop))
	require.NoError(t, p.Before("*").Register("first", noop))
	require.NoError(t, p.After("*").Register("last", noop))
	require.NoError(t, p.After("bind").Register("validate", noop))

	assert.Equal(t, []string{"first", "bind", "validate", "prepare", "query", "scan", "last"}, callbackNames(p))
}

func TestCallbackUnknownTarget(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Register("query", noop))
	require.NoError(t, p.Before("missing").Register("prepare", noop))

	assert.Equal(t, []string{"query", "prepare"}, callbackNames(p))
}

func TestCallbackDuplicate(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Register("query", noop))
	assert.Error(t, p.Register("query", noop))
}

func TestCallbackReplaceAndRemove(t *testing.T) {
	p := newProcessor()

	var called []string
	require.NoError(t, p.Register("bind", noop))
	require.NoError(t, p.Register("query", noop))
	require.NoError(t, p.Replace("bind", func(*DB) { called = append(called, "replaced") }))

	assert.Equal(t, []string{"bind", "query"}, callbackNames(p))
	p.Get("bind")(nil)
	assert.Equal(t, []string{"replaced"}, called)

	require.NoError(t, p.Remove("bind"))
	assert.Equal(t, []string{"query"}, callbackNames(p))
	assert.Nil(t, p.Get("bind"))
	assert.Error(t, p.Remove("bind"))

	require.NoError(t, p.Replace("scan", noop))
	assert.Equal(t, []string{"query", "scan"}, callbackNames(p))
}

func TestCallbackMatch(t *testing.T) {
	p := newProcessor()

	require.NoError(t, p.Match(func(db *DB) bool { return db.DryRun }).Register("dry", noop))
	require.NoError(t, p.Match(func(db *DB) bool { return !db.DryRun }).Register("live", noop))

	assert.Equal(t, []string{"live"}, callbackNames(p))
}
