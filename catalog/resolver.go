package catalog

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize default number of callables kept by a Resolver
const DefaultCacheSize = 512

// Finder looks up callables in the database catalog, it returns nil without error when the
// callable doesn't exist
type Finder interface {
	Find(ctx context.Context, name Name) (*Callable, error)
}

// Resolver resolves callable names through a Finder, caching resolved descriptors
type Resolver struct {
	finder Finder
	cache  *lru.Cache[Name, *Callable]
}

// NewResolver creates a resolver, size <= 0 uses DefaultCacheSize
func NewResolver(finder Finder, size int) *Resolver {
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New[Name, *Callable](size)
	if err != nil {
		panic(err)
	}
	return &Resolver{finder: finder, cache: cache}
}

// Resolve resolves `function`, `package.function` or `schema.package.function`
func (r *Resolver) Resolve(ctx context.Context, qualifiedName string) (*Callable, error) {
	name, err := ParseName(qualifiedName)
	if err != nil {
		return nil, &NotFoundError{Name: qualifiedName, Err: err}
	}
	return r.ResolveName(ctx, name)
}

// ResolveIn resolves a bare name inside pkg first, falling back to a standalone callable,
// qualified names are resolved as they are
func (r *Resolver) ResolveIn(ctx context.Context, pkg, qualifiedName string) (*Callable, error) {
	name, err := ParseName(qualifiedName)
	if err != nil {
		return nil, &NotFoundError{Name: qualifiedName, Err: err}
	}

	if name.Package == "" && pkg != "" {
		packageName, err := ParseName(pkg + "." + name.Object)
		if err != nil {
			return nil, &NotFoundError{Name: qualifiedName, Err: err}
		}

		callable, err := r.ResolveName(ctx, packageName)
		if err == nil || !isNotFound(err) {
			return callable, err
		}
	}

	return r.ResolveName(ctx, name)
}

// ResolveName resolves a parsed name
func (r *Resolver) ResolveName(ctx context.Context, name Name) (*Callable, error) {
	if callable, ok := r.cache.Get(name); ok {
		return callable, nil
	}

	callable, err := r.finder.Find(ctx, name)
	if err != nil {
		return nil, &NotFoundError{Name: name.String(), Err: err}
	}

	if callable == nil {
		return nil, &NotFoundError{Name: name.String()}
	}

	if callable.Overloaded() {
		return nil, fmt.Errorf("%w: %s has %d signatures", ErrOverloaded, callable, callable.Overloads)
	}

	callable.Sort()
	r.cache.Add(name, callable)
	return callable, nil
}

// Invalidate forgets the cached descriptor of qualifiedName
func (r *Resolver) Invalidate(qualifiedName string) {
	if name, err := ParseName(qualifiedName); err == nil {
		r.cache.Remove(name)
	}
}

// Purge forgets all cached descriptors
func (r *Resolver) Purge() {
	r.cache.Purge()
}

// isNotFound reports a clean miss, lookup failures are not retried elsewhere
func isNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound) && notFound.Err == nil
}
