// Package runtime assembles a set of loaded modules into one mutable
// Runtime and implements the tree-walking Evaluator that drives it. The
// Evaluator lives here rather than in internal/eval because it is
// mutually recursive with actor spawn/send/supervision and with contract
// enforcement — both need to call back into expression evaluation, and
// eval itself must stay a leaf package with no knowledge of actors or
// contracts. internal/actor similarly holds only the passive Instance and
// SupervisionNode data types; the scheduler that drains a mailbox lives
// here as methods on Evaluator, for the same reason.
package runtime

import (
	"fmt"

	"github.com/cappallo/aura/internal/actor"
	"github.com/cappallo/aura/internal/ast"
	"github.com/cappallo/aura/internal/contract"
	"github.com/cappallo/aura/internal/eval"
	"github.com/cappallo/aura/internal/property"
	"github.com/cappallo/aura/internal/symtab"
)

// SchedulerMode selects how actor mailbox delivery is driven.
type SchedulerMode int

const (
	Immediate SchedulerMode = iota
	Deterministic
)

// OutputMode selects how logs/results/errors are rendered.
type OutputMode int

const (
	TextOutput OutputMode = iota
	JSONOutput
)

// LogEntry is one Log.debug/Log.trace event, buffered in JSON mode.
type LogEntry struct {
	Level   string
	Label   string
	Payload eval.Value
}

// TraceEntry is one step record emitted when tracing is enabled (the
// `explain` command).
type TraceEntry struct {
	StepType    string // call, return, let, expr, match
	Description string
	Value       eval.Value
	Depth       int
}

// funcEntry pairs a function declaration with the module that owns it —
// needed so a call into it resolves further identifiers against the
// right module, not the caller's.
type funcEntry struct {
	Module    string
	Qualified string
	Decl      *ast.FuncDecl
}

type actorEntry struct {
	Module    string
	Qualified string
	Decl      *ast.ActorDecl
}

// Runtime holds every piece of mutable and immutable state enumerated in
// §3: the declaration indexes (immutable after Assemble), the live actor
// population and supervision tree, the scheduler queue and mode, and the
// instrumentation sinks.
type Runtime struct {
	Functions map[string]*funcEntry
	Contracts *contract.Enforcer
	Tests     []*ast.TestDecl
	Properties []*ast.PropertyDecl
	TypeDecls map[string]ast.Decl
	// ConstructorFields maps a constructor tag (record type name or
	// sum-type variant name) to its declared, ordered field names, so
	// record-expression construction uses canonical order instead of
	// call-site order.
	ConstructorFields map[string][]string
	Actors            map[string]*actorEntry

	ActorInstances    map[int64]*actor.Instance
	Supervision       map[int64]*actor.SupervisionNode
	PendingDeliveries []int64
	SchedulerMode     SchedulerMode
	IsProcessing      bool
	CurrentActorStack []int64
	NextActorID       int64

	PropertyConfig property.Config

	Tracing bool
	Traces  []TraceEntry
	Logs    []LogEntry
	OutputMode OutputMode

	Resolver      *symtab.Resolver
	PrimaryModule string
	// CurrentModule is the module whose code is presently executing; it
	// drives identifier resolution for calls and type lookups made from
	// inside a function or handler body, and is saved/restored around
	// each call per §4.2's "resolution from inside some module."
	CurrentModule string
}

// Assemble builds a Runtime from every declaration in every loaded
// module, indexing each by fully-qualified name and, for the primary
// module only, additionally by bare name. modules may be given in any
// order; primary names the module CLI callers address unqualified.
func Assemble(modules []*ast.Module, primary string) (*Runtime, error) {
	rt := &Runtime{
		Functions:         map[string]*funcEntry{},
		Contracts:         contract.New(),
		TypeDecls:         map[string]ast.Decl{},
		ConstructorFields: map[string][]string{},
		Actors:            map[string]*actorEntry{},
		ActorInstances:    map[int64]*actor.Instance{},
		Supervision:       map[int64]*actor.SupervisionNode{},
		NextActorID:       1,
		Resolver:          symtab.NewResolver(modules),
		PrimaryModule:     primary,
		CurrentModule:     primary,
		PropertyConfig:    property.DefaultConfig(1),
	}

	found := false
	for _, m := range modules {
		modName := m.Name.String()
		isPrimary := modName == primary
		if isPrimary {
			found = true
		}
		for _, d := range m.Decls {
			qualified := modName + "." + d.DeclName()
			switch decl := d.(type) {
			case *ast.FuncDecl:
				fe := &funcEntry{Module: modName, Qualified: qualified, Decl: decl}
				rt.Functions[qualified] = fe
				if isPrimary {
					rt.Functions[decl.Name] = fe
				}
			case *ast.ContractDecl:
				rt.Contracts.Contracts[qualified] = decl
				if isPrimary {
					rt.Contracts.Contracts[decl.Name] = decl
				}
			case *ast.TestDecl:
				if isPrimary {
					rt.Tests = append(rt.Tests, decl)
				}
			case *ast.PropertyDecl:
				if isPrimary {
					rt.Properties = append(rt.Properties, decl)
				}
			case *ast.ActorDecl:
				ae := &actorEntry{Module: modName, Qualified: qualified, Decl: decl}
				rt.Actors[qualified] = ae
				if isPrimary {
					rt.Actors[decl.Name] = ae
				}
			case *ast.RecordTypeDecl:
				rt.TypeDecls[qualified] = d
				if isPrimary {
					rt.TypeDecls[decl.Name] = d
				}
				rt.ConstructorFields[decl.Name] = eval.FieldNames(decl.Fields)
			case *ast.SumTypeDecl:
				rt.TypeDecls[qualified] = d
				if isPrimary {
					rt.TypeDecls[decl.Name] = d
				}
				for _, v := range decl.Variants {
					rt.ConstructorFields[v.CtorName] = eval.FieldNames(v.Fields)
				}
			case *ast.SchemaDecl:
				rt.TypeDecls[qualified] = d
				if isPrimary {
					rt.TypeDecls[decl.Name] = d
				}
				names := make([]string, len(decl.Fields))
				for i, f := range decl.Fields {
					names[i] = f.Name
				}
				rt.ConstructorFields[decl.Name] = names
			case *ast.TypeAliasDecl, *ast.EffectDecl:
				rt.TypeDecls[qualified] = d
				if isPrimary {
					rt.TypeDecls[decl.DeclName()] = d
				}
			}
		}
	}

	if !found {
		return nil, fmt.Errorf("primary module %q not found among loaded modules", primary)
	}
	return rt, nil
}

// LookupType implements eval.TypeIndex and property.Generate's type
// lookup, resolving name from the runtime's CurrentModule before falling
// back to a raw lookup.
func (rt *Runtime) LookupType(name string) (ast.Decl, bool) {
	if d, ok := rt.TypeDecls[name]; ok {
		return d, true
	}
	qualified := rt.Resolver.Resolve(rt.CurrentModule, name)
	if d, ok := rt.TypeDecls[qualified]; ok {
		return d, true
	}
	return nil, false
}
