package schema

import (
	"strings"
	"sync"
	"unicode"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Namer names the tables and columns of ordinary models, table functions name themselves
type Namer interface {
	TableName(table string) string
	ColumnName(table, column string) string
}

// NamingStrategy snake case names, tables are pluralized unless SingularTable is set
type NamingStrategy struct {
	TablePrefix   string
	SingularTable bool
}

func (ns NamingStrategy) TableName(str string) string {
	name := ToDBName(str)
	if !ns.SingularTable {
		name = inflection.Plural(name)
	}
	return ns.TablePrefix + name
}

func (ns NamingStrategy) ColumnName(_, column string) string {
	return ToDBName(column)
}

var (
	dbNames sync.Map

	// initialisms are lowered as one word, so HomepageURL becomes homepage_url
	initialisms = strings.NewReplacer(titled(
		"API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS", "ID", "IP", "JSON",
		"LHS", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SQL", "SSH", "TLS", "TTL", "UID", "UI", "UUID",
		"URI", "URL", "UTF8", "VM", "XML", "XSRF", "XSS",
	)...)
)

func titled(words ...string) []string {
	title := cases.Title(language.Und)
	pairs := make([]string, 0, len(words)*2)
	for _, word := range words {
		pairs = append(pairs, word, title.String(word))
	}
	return pairs
}

// ToDBName converts a Go identifier to its snake case name
func ToDBName(name string) string {
	if name == "" {
		return ""
	}
	if v, ok := dbNames.Load(name); ok {
		return v.(string)
	}

	runes := []rune(initialisms.Replace(name))
	var buf strings.Builder
	buf.Grow(len(runes) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && runes[i-1] != '_' {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				buf.WriteByte('_')
			}
		}
		buf.WriteRune(unicode.ToLower(r))
	}

	result := buf.String()
	dbNames.Store(name, result)
	return result
}
