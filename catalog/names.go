package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// TABLE(USERS_PKG.FIND_USERS_BY_NAME(:p_name))
	tableFunctionRegexp = regexp.MustCompile(`(?i)^\s*TABLE\(\s*([\w$#]+(?:\.[\w$#]+){0,2})\s*\(.*\)\s*\)`)
)

// Name name of a callable split into its parts, parts are upper case as stored in the data dictionary
type Name struct {
	Schema  string
	Package string
	Object  string
}

func (name Name) String() string {
	return strings.Join(nonEmpty(name.Schema, name.Package, name.Object), ".")
}

// Qualified returns PACKAGE.OBJECT without the schema
func (name Name) Qualified() string {
	return strings.Join(nonEmpty(name.Package, name.Object), ".")
}

// ParseName parses `function`, `package.function` or `schema.package.function`,
// the last part is always the callable itself
func ParseName(qualifiedName string) (Name, error) {
	qualifiedName = strings.TrimSpace(qualifiedName)
	if matches := tableFunctionRegexp.FindStringSubmatch(qualifiedName); len(matches) == 2 {
		qualifiedName = matches[1]
	}

	parts := strings.Split(qualifiedName, ".")
	for _, part := range parts {
		if part == "" {
			return Name{}, fmt.Errorf("%w: %q", ErrInvalidName, qualifiedName)
		}
	}

	switch len(parts) {
	case 1:
		return Name{Object: upper(parts[0])}, nil
	case 2:
		return Name{Package: upper(parts[0]), Object: upper(parts[1])}, nil
	case 3:
		return Name{Schema: upper(parts[0]), Package: upper(parts[1]), Object: upper(parts[2])}, nil
	}
	return Name{}, fmt.Errorf("%w: %q", ErrInvalidName, qualifiedName)
}

// IsTableFunctionCall reports whether name uses the TABLE(...) call syntax
func IsTableFunctionCall(name string) bool {
	return tableFunctionRegexp.MatchString(name)
}

func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func nonEmpty(parts ...string) []string {
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			results = append(results, part)
		}
	}
	return results
}
