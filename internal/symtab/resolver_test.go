package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cappallo/aura/internal/ast"
)

func moduleWith(name string, imports []ast.Import, declNames ...string) *ast.Module {
	decls := make([]ast.Decl, len(declNames))
	for i, n := range declNames {
		decls[i] = &ast.FuncDecl{Name: n}
	}
	return &ast.Module{
		Name:    ast.QualifiedName{name},
		Imports: imports,
		Decls:   decls,
	}
}

func TestResolve_LocalDeclarationWins(t *testing.T) {
	modules := []*ast.Module{
		moduleWith("main", nil, "helper"),
	}
	r := NewResolver(modules)
	assert.Equal(t, "main.helper", r.Resolve("main", "helper"))
}

func TestResolve_UnknownBareNameIsUnchanged(t *testing.T) {
	modules := []*ast.Module{moduleWith("main", nil)}
	r := NewResolver(modules)
	assert.Equal(t, "mystery", r.Resolve("main", "mystery"))
}

func TestResolve_ImportAlias(t *testing.T) {
	modules := []*ast.Module{
		moduleWith("main", []ast.Import{{Path: ast.QualifiedName{"std", "list"}, Alias: "L"}}),
		moduleWith("std.list", nil, "map"),
	}
	r := NewResolver(modules)
	assert.Equal(t, "std.list.map", r.Resolve("main", "L.map"))
}

func TestResolve_ImportShortName(t *testing.T) {
	modules := []*ast.Module{
		moduleWith("main", []ast.Import{{Path: ast.QualifiedName{"std", "list"}}}),
		moduleWith("std.list", nil, "map"),
	}
	r := NewResolver(modules)
	assert.Equal(t, "std.list.map", r.Resolve("main", "list.map"))
}

func TestResolve_AliasTakesPrecedenceOverUnrelatedShortName(t *testing.T) {
	modules := []*ast.Module{
		moduleWith("main", []ast.Import{{Path: ast.QualifiedName{"std", "list"}, Alias: "list"}}),
		moduleWith("std.list", nil, "map"),
		moduleWith("other.list", nil, "map"),
	}
	r := NewResolver(modules)
	assert.Equal(t, "std.list.map", r.Resolve("main", "list.map"))
}

func TestResolve_DottedNameWithNoMatchingImportIsUnchanged(t *testing.T) {
	modules := []*ast.Module{moduleWith("main", nil)}
	r := NewResolver(modules)
	assert.Equal(t, "unknown.thing", r.Resolve("main", "unknown.thing"))
}

func TestResolve_CachesAcrossCalls(t *testing.T) {
	modules := []*ast.Module{moduleWith("main", nil, "helper")}
	r := NewResolver(modules)
	first := r.Resolve("main", "helper")
	second := r.Resolve("main", "helper")
	assert.Equal(t, first, second)
	assert.Equal(t, "main.helper", second)
}
