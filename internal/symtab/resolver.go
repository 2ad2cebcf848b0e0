// Package symtab builds indexes over a set of loaded modules and resolves
// a short or aliased identifier referenced from inside one module to its
// fully qualified target, following the four-step algorithm: local
// declaration, import alias, import short-name, otherwise unchanged.
package symtab

import (
	"strings"

	"github.com/cappallo/aura/internal/ast"
)

// Resolver holds the per-module import tables needed to qualify a
// reference. It is built once from the full set of loaded modules and can
// answer Resolve calls for any of them.
type Resolver struct {
	// locals[moduleName][bareName] is set for every declaration owned by
	// moduleName (types, functions and actors share one namespace here,
	// matching the source language).
	locals map[string]map[string]bool

	// aliases[moduleName][alias] -> full imported module name.
	aliases map[string]map[string]string

	// shortImports[moduleName][lastSegment] -> full imported module name,
	// for "import std.list" referenced later as "list.foo".
	shortImports map[string]map[string]string

	cache map[cacheKey]string
}

type cacheKey struct{ module, name string }

// NewResolver builds a Resolver over every declaration and import found in
// modules.
func NewResolver(modules []*ast.Module) *Resolver {
	r := &Resolver{
		locals:       make(map[string]map[string]bool),
		aliases:      make(map[string]map[string]string),
		shortImports: make(map[string]map[string]string),
		cache:        make(map[cacheKey]string),
	}
	for _, m := range modules {
		name := m.Name.String()
		localSet := make(map[string]bool, len(m.Decls))
		for _, d := range m.Decls {
			localSet[d.DeclName()] = true
		}
		r.locals[name] = localSet

		aliasTbl := make(map[string]string)
		shortTbl := make(map[string]string)
		for _, imp := range m.Imports {
			target := imp.Path.String()
			if imp.Alias != "" {
				aliasTbl[imp.Alias] = target
			}
			shortTbl[imp.Path.Last()] = target
		}
		r.aliases[name] = aliasTbl
		r.shortImports[name] = shortTbl
	}
	return r
}

// Resolve qualifies name as referenced from inside fromModule, following
// §4.2's four steps. The result is cached per (fromModule, name) pair —
// caching is legitimate per the design notes since the algorithm's result
// cannot change once the module set is fixed.
func (r *Resolver) Resolve(fromModule, name string) string {
	key := cacheKey{fromModule, name}
	if v, ok := r.cache[key]; ok {
		return v
	}
	result := r.resolve(fromModule, name)
	r.cache[key] = result
	return result
}

func (r *Resolver) resolve(fromModule, name string) string {
	if !strings.Contains(name, ".") {
		if locals, ok := r.locals[fromModule]; ok && locals[name] {
			return fromModule + "." + name
		}
		return name
	}

	first, rest, _ := strings.Cut(name, ".")

	if aliasTbl, ok := r.aliases[fromModule]; ok {
		if target, ok := aliasTbl[first]; ok {
			return target + "." + rest
		}
	}

	if shortTbl, ok := r.shortImports[fromModule]; ok {
		if target, ok := shortTbl[first]; ok {
			return target + "." + rest
		}
	}

	return name
}
