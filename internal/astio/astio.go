// Package astio reads an already-built module AST from JSON. It performs
// encoding/json unmarshalling only: no lexing, no parsing, no validation.
// The "real" surface parser and the full AST-JSON loader's semantic
// passes remain external collaborators (spec §1); this package exists
// only so the CLI in this module can be driven end to end without one.
//
// The JSON shape mirrors internal/ast's node kinds with one discriminator
// field per sum type ("kind" for declarations/statements/expressions/
// patterns and type expressions alike), grounded on the teacher's
// internal/loader.ModuleLoader reading a module's on-disk representation
// into in-memory AST types.
package astio

import (
	"encoding/json"
	"fmt"

	"github.com/cappallo/aura/internal/ast"
)

// DecodeModule reads a single module from JSON bytes.
func DecodeModule(data []byte) (*ast.Module, error) {
	var jm jsonModule
	if err := json.Unmarshal(data, &jm); err != nil {
		return nil, fmt.Errorf("astio: invalid module JSON: %w", err)
	}
	return jm.toAST()
}

// ---------------------------------------------------------------------
// Wire shapes
// ---------------------------------------------------------------------

type jsonPos struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (p jsonPos) toAST() ast.Pos { return ast.Pos{File: p.File, Line: p.Line, Column: p.Column} }

type jsonImport struct {
	Path  []string `json:"path"`
	Alias string   `json:"alias"`
	Pos   jsonPos  `json:"pos"`
}

type jsonModule struct {
	Name    []string         `json:"name"`
	Imports []jsonImport     `json:"imports"`
	Decls   []json.RawMessage `json:"decls"`
	Pos     jsonPos          `json:"pos"`
}

func (jm jsonModule) toAST() (*ast.Module, error) {
	m := &ast.Module{
		Name: ast.QualifiedName(jm.Name),
		Pos:  jm.Pos.toAST(),
	}
	for _, imp := range jm.Imports {
		m.Imports = append(m.Imports, ast.Import{
			Path:  ast.QualifiedName(imp.Path),
			Alias: imp.Alias,
			Pos:   imp.Pos.toAST(),
		})
	}
	for _, raw := range jm.Decls {
		d, err := decodeDecl(raw)
		if err != nil {
			return nil, err
		}
		m.Decls = append(m.Decls, d)
	}
	return m, nil
}

type jsonField struct {
	Name    string          `json:"name"`
	Type    json.RawMessage `json:"type"`
	Default json.RawMessage `json:"default,omitempty"`
}

func decodeField(jf jsonField) (ast.Field, error) {
	t, err := decodeType(jf.Type)
	if err != nil {
		return ast.Field{}, err
	}
	f := ast.Field{Name: jf.Name, Type: t}
	if len(jf.Default) > 0 {
		d, err := decodeExpr(jf.Default)
		if err != nil {
			return ast.Field{}, err
		}
		f.Default = d
	}
	return f, nil
}

func decodeFields(in []jsonField) ([]ast.Field, error) {
	out := make([]ast.Field, len(in))
	for i, jf := range in {
		f, err := decodeField(jf)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------
// Type expressions
// ---------------------------------------------------------------------

type jsonType struct {
	Kind  string          `json:"kind"` // "named" | "option"
	Name  string          `json:"name,omitempty"`
	Args  []json.RawMessage `json:"args,omitempty"`
	Inner json.RawMessage `json:"inner,omitempty"`
}

func decodeType(raw json.RawMessage) (ast.TypeExpr, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var jt jsonType
	if err := json.Unmarshal(raw, &jt); err != nil {
		return nil, fmt.Errorf("astio: invalid type expr: %w", err)
	}
	switch jt.Kind {
	case "option":
		inner, err := decodeType(jt.Inner)
		if err != nil {
			return nil, err
		}
		return &ast.OptionType{Inner: inner}, nil
	case "named", "":
		args := make([]ast.TypeExpr, len(jt.Args))
		for i, a := range jt.Args {
			at, err := decodeType(a)
			if err != nil {
				return nil, err
			}
			args[i] = at
		}
		return &ast.NamedType{Name: jt.Name, Args: args}, nil
	default:
		return nil, fmt.Errorf("astio: unknown type expr kind %q", jt.Kind)
	}
}

// ---------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------

type jsonVariant struct {
	Ctor   string      `json:"ctorName"`
	Fields []jsonField `json:"fields"`
}

type jsonSchemaField struct {
	Name     string          `json:"name"`
	Type     json.RawMessage `json:"type"`
	Optional bool            `json:"optional"`
}

type jsonHandler struct {
	Tag        string      `json:"messageTag"`
	Params     []jsonField `json:"params"`
	Sync       bool        `json:"sync"`
	Whole      bool        `json:"whole"`
	WholeParam string      `json:"wholeParam"`
	Body       jsonBlock   `json:"body"`
}

type jsonPropertyParam struct {
	Name      string          `json:"name"`
	Type      json.RawMessage `json:"type"`
	Predicate json.RawMessage `json:"predicate,omitempty"`
}

type jsonDecl struct {
	Kind string  `json:"kind"`
	Name string  `json:"name"`
	Pos  jsonPos `json:"pos"`

	// type alias / record / sum
	Params   []string          `json:"params,omitempty"`
	Target   json.RawMessage   `json:"target,omitempty"`
	Fields   []jsonField       `json:"fields,omitempty"`
	Variants []jsonVariant     `json:"variants,omitempty"`

	// schema
	SchemaFields []jsonSchemaField `json:"schemaFields,omitempty"`

	// function
	ReturnType json.RawMessage `json:"returnType,omitempty"`
	Effects    []string        `json:"effects,omitempty"`
	Body       *jsonBlock      `json:"body,omitempty"`

	// contract
	Requires []json.RawMessage `json:"requires,omitempty"`
	Ensures  []json.RawMessage `json:"ensures,omitempty"`

	// property
	PropertyParams []jsonPropertyParam `json:"propertyParams,omitempty"`
	Iterations     int                 `json:"iterations,omitempty"`

	// actor
	ActorParams []jsonField   `json:"actorParams,omitempty"`
	StateField  []jsonField   `json:"stateFields,omitempty"`
	Handlers    []jsonHandler `json:"handlers,omitempty"`
}

func decodeDecl(raw json.RawMessage) (ast.Decl, error) {
	var jd jsonDecl
	if err := json.Unmarshal(raw, &jd); err != nil {
		return nil, fmt.Errorf("astio: invalid decl: %w", err)
	}
	pos := jd.Pos.toAST()

	switch jd.Kind {
	case "effect":
		return &ast.EffectDecl{Name: jd.Name, Pos: pos}, nil

	case "typeAlias":
		t, err := decodeType(jd.Target)
		if err != nil {
			return nil, err
		}
		return &ast.TypeAliasDecl{Name: jd.Name, Params: jd.Params, Target: t, Pos: pos}, nil

	case "recordType":
		fields, err := decodeFields(jd.Fields)
		if err != nil {
			return nil, err
		}
		return &ast.RecordTypeDecl{Name: jd.Name, Params: jd.Params, Fields: fields, Pos: pos}, nil

	case "sumType":
		variants := make([]ast.Variant, len(jd.Variants))
		for i, v := range jd.Variants {
			fields, err := decodeFields(v.Fields)
			if err != nil {
				return nil, err
			}
			variants[i] = ast.Variant{CtorName: v.Ctor, Fields: fields}
		}
		return &ast.SumTypeDecl{Name: jd.Name, Params: jd.Params, Variants: variants, Pos: pos}, nil

	case "schema":
		fields := make([]ast.SchemaField, len(jd.SchemaFields))
		for i, f := range jd.SchemaFields {
			t, err := decodeType(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.SchemaField{Name: f.Name, Type: t, Optional: f.Optional}
		}
		return &ast.SchemaDecl{Name: jd.Name, Fields: fields, Pos: pos}, nil

	case "func":
		params, err := decodeFields(jd.Fields)
		if err != nil {
			return nil, err
		}
		var ret ast.TypeExpr
		if len(jd.ReturnType) > 0 {
			ret, err = decodeType(jd.ReturnType)
			if err != nil {
				return nil, err
			}
		}
		var body *ast.Block
		if jd.Body != nil {
			body, err = decodeBlock(*jd.Body)
			if err != nil {
				return nil, err
			}
		}
		return &ast.FuncDecl{Name: jd.Name, Params: params, ReturnType: ret, Effects: jd.Effects, Body: body, Pos: pos}, nil

	case "contract":
		requires, err := decodeExprs(jd.Requires)
		if err != nil {
			return nil, err
		}
		ensures, err := decodeExprs(jd.Ensures)
		if err != nil {
			return nil, err
		}
		return &ast.ContractDecl{Name: jd.Name, Requires: requires, Ensures: ensures, Pos: pos}, nil

	case "test":
		var body *ast.Block
		var err error
		if jd.Body != nil {
			body, err = decodeBlock(*jd.Body)
			if err != nil {
				return nil, err
			}
		}
		return &ast.TestDecl{Name: jd.Name, Body: body, Pos: pos}, nil

	case "property":
		params := make([]ast.PropertyParam, len(jd.PropertyParams))
		for i, p := range jd.PropertyParams {
			t, err := decodeType(p.Type)
			if err != nil {
				return nil, err
			}
			var pred ast.Expr
			if len(p.Predicate) > 0 {
				pred, err = decodeExpr(p.Predicate)
				if err != nil {
					return nil, err
				}
			}
			params[i] = ast.PropertyParam{Name: p.Name, Type: t, Predicate: pred}
		}
		var body *ast.Block
		var err error
		if jd.Body != nil {
			body, err = decodeBlock(*jd.Body)
			if err != nil {
				return nil, err
			}
		}
		return &ast.PropertyDecl{Name: jd.Name, Params: params, Iterations: jd.Iterations, Body: body, Pos: pos}, nil

	case "actor":
		params, err := decodeFields(jd.ActorParams)
		if err != nil {
			return nil, err
		}
		state, err := decodeFields(jd.StateField)
		if err != nil {
			return nil, err
		}
		handlers := make([]ast.HandlerDecl, len(jd.Handlers))
		for i, h := range jd.Handlers {
			hparams, err := decodeFields(h.Params)
			if err != nil {
				return nil, err
			}
			hbody, err := decodeBlock(h.Body)
			if err != nil {
				return nil, err
			}
			handlers[i] = ast.HandlerDecl{
				MessageTag: h.Tag, Params: hparams, Sync: h.Sync,
				Whole: h.Whole, WholeParam: h.WholeParam, Body: hbody,
			}
		}
		return &ast.ActorDecl{Name: jd.Name, Params: params, StateField: state, Handlers: handlers, Pos: pos}, nil

	default:
		return nil, fmt.Errorf("astio: unknown declaration kind %q", jd.Kind)
	}
}

// ---------------------------------------------------------------------
// Statements / blocks
// ---------------------------------------------------------------------

type jsonBlock struct {
	Stmts []json.RawMessage `json:"stmts"`
	Pos   jsonPos           `json:"pos"`
}

func decodeBlock(jb jsonBlock) (*ast.Block, error) {
	b := &ast.Block{Pos: jb.Pos.toAST()}
	for _, raw := range jb.Stmts {
		s, err := decodeStmt(raw)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

type jsonMatchCase struct {
	Pattern json.RawMessage `json:"pattern"`
	Guard   json.RawMessage `json:"guard,omitempty"`
	Body    jsonBlock       `json:"body"`
}

func decodeMatchCases(in []jsonMatchCase) ([]ast.MatchCase, error) {
	out := make([]ast.MatchCase, len(in))
	for i, c := range in {
		p, err := decodePattern(c.Pattern)
		if err != nil {
			return nil, err
		}
		var guard ast.Expr
		if len(c.Guard) > 0 {
			guard, err = decodeExpr(c.Guard)
			if err != nil {
				return nil, err
			}
		}
		body, err := decodeBlock(c.Body)
		if err != nil {
			return nil, err
		}
		out[i] = ast.MatchCase{Pattern: p, Guard: guard, Body: body}
	}
	return out, nil
}

type jsonStmt struct {
	Kind      string          `json:"kind"`
	Pos       jsonPos         `json:"pos"`
	Name      string          `json:"name,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	Scrutinee json.RawMessage `json:"scrutinee,omitempty"`
	Cases     []jsonMatchCase `json:"cases,omitempty"`
	Tasks     []jsonBlock     `json:"tasks,omitempty"`
	Body      *jsonBlock      `json:"body,omitempty"`
}

func decodeStmt(raw json.RawMessage) (ast.Stmt, error) {
	var js jsonStmt
	if err := json.Unmarshal(raw, &js); err != nil {
		return nil, fmt.Errorf("astio: invalid statement: %w", err)
	}
	pos := js.Pos.toAST()
	switch js.Kind {
	case "let":
		v, err := decodeExpr(js.Value)
		if err != nil {
			return nil, err
		}
		return &ast.LetStmt{Name: js.Name, Value: v, Pos: pos}, nil
	case "return":
		v, err := decodeExpr(js.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Value: v, Pos: pos}, nil
	case "expr":
		v, err := decodeExpr(js.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Value: v, Pos: pos}, nil
	case "match":
		scrutinee, err := decodeExpr(js.Scrutinee)
		if err != nil {
			return nil, err
		}
		cases, err := decodeMatchCases(js.Cases)
		if err != nil {
			return nil, err
		}
		return &ast.MatchStmt{Scrutinee: scrutinee, Cases: cases, Pos: pos}, nil
	case "asyncGroup":
		tasks := make([]*ast.AsyncStmt, len(js.Tasks))
		for i, t := range js.Tasks {
			b, err := decodeBlock(t)
			if err != nil {
				return nil, err
			}
			tasks[i] = &ast.AsyncStmt{Body: b, Pos: t.Pos.toAST()}
		}
		var body *ast.Block
		var err error
		if js.Body != nil {
			body, err = decodeBlock(*js.Body)
			if err != nil {
				return nil, err
			}
		}
		return &ast.AsyncGroupStmt{Tasks: tasks, Body: body, Pos: pos}, nil
	default:
		return nil, fmt.Errorf("astio: unknown statement kind %q", js.Kind)
	}
}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

type jsonArg struct {
	Name  string          `json:"name,omitempty"`
	Value json.RawMessage `json:"value"`
}

type jsonExpr struct {
	Kind string  `json:"kind"`
	Pos  jsonPos `json:"pos"`

	IntValue    int             `json:"intValue,omitempty"`
	BoolValue   bool            `json:"boolValue,omitempty"`
	StringValue string          `json:"stringValue,omitempty"`
	Elements    []json.RawMessage `json:"elements,omitempty"`
	Name        string          `json:"name,omitempty"`
	Op          string          `json:"op,omitempty"`
	Left        json.RawMessage `json:"left,omitempty"`
	Right       json.RawMessage `json:"right,omitempty"`
	Cond        json.RawMessage `json:"cond,omitempty"`
	Then        *jsonBlock      `json:"then,omitempty"`
	Else        *jsonBlock      `json:"else,omitempty"`
	Scrutinee   json.RawMessage `json:"scrutinee,omitempty"`
	Cases       []jsonMatchCase `json:"cases,omitempty"`
	Callee      json.RawMessage `json:"callee,omitempty"`
	Args        []jsonArg       `json:"args,omitempty"`
	Tag         string          `json:"tag,omitempty"`
	Fields      []jsonArg       `json:"fields,omitempty"`
	Target      json.RawMessage `json:"target,omitempty"`
	Field       string          `json:"field,omitempty"`
	Index       json.RawMessage `json:"index,omitempty"`
}

func decodeArgs(in []jsonArg) ([]ast.Arg, error) {
	out := make([]ast.Arg, len(in))
	for i, a := range in {
		v, err := decodeExpr(a.Value)
		if err != nil {
			return nil, err
		}
		out[i] = ast.Arg{Name: a.Name, Value: v}
	}
	return out, nil
}

func decodeExprs(in []json.RawMessage) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(in))
	for i, raw := range in {
		e, err := decodeExpr(raw)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeExpr(raw json.RawMessage) (ast.Expr, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var je jsonExpr
	if err := json.Unmarshal(raw, &je); err != nil {
		return nil, fmt.Errorf("astio: invalid expression: %w", err)
	}
	pos := je.Pos.toAST()

	switch je.Kind {
	case "int":
		return &ast.IntLit{Value: je.IntValue, Pos: pos}, nil
	case "bool":
		return &ast.BoolLit{Value: je.BoolValue, Pos: pos}, nil
	case "string":
		return &ast.StringLit{Value: je.StringValue, Pos: pos}, nil
	case "unit":
		return &ast.UnitLit{Pos: pos}, nil
	case "list":
		elems, err := decodeExprs(je.Elements)
		if err != nil {
			return nil, err
		}
		return &ast.ListLit{Elements: elems, Pos: pos}, nil
	case "var":
		return &ast.Var{Name: je.Name, Pos: pos}, nil
	case "binary":
		l, err := decodeExpr(je.Left)
		if err != nil {
			return nil, err
		}
		r, err := decodeExpr(je.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Op: je.Op, Left: l, Right: r, Pos: pos}, nil
	case "if":
		cond, err := decodeExpr(je.Cond)
		if err != nil {
			return nil, err
		}
		var thenB, elseB *ast.Block
		if je.Then != nil {
			thenB, err = decodeBlock(*je.Then)
			if err != nil {
				return nil, err
			}
		}
		if je.Else != nil {
			elseB, err = decodeBlock(*je.Else)
			if err != nil {
				return nil, err
			}
		}
		return &ast.If{Cond: cond, Then: thenB, Else: elseB, Pos: pos}, nil
	case "match":
		scrutinee, err := decodeExpr(je.Scrutinee)
		if err != nil {
			return nil, err
		}
		cases, err := decodeMatchCases(je.Cases)
		if err != nil {
			return nil, err
		}
		return &ast.Match{Scrutinee: scrutinee, Cases: cases, Pos: pos}, nil
	case "call":
		callee, err := decodeExpr(je.Callee)
		if err != nil {
			return nil, err
		}
		args, err := decodeArgs(je.Args)
		if err != nil {
			return nil, err
		}
		return &ast.Call{Callee: callee, Args: args, Pos: pos}, nil
	case "record":
		fields, err := decodeArgs(je.Fields)
		if err != nil {
			return nil, err
		}
		return &ast.RecordExpr{Tag: je.Tag, Fields: fields, Pos: pos}, nil
	case "field":
		target, err := decodeExpr(je.Target)
		if err != nil {
			return nil, err
		}
		return &ast.FieldAccess{Target: target, Field: je.Field, Pos: pos}, nil
	case "index":
		target, err := decodeExpr(je.Target)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(je.Index)
		if err != nil {
			return nil, err
		}
		return &ast.Index{Target: target, Index: idx, Pos: pos}, nil
	case "hole":
		return &ast.Hole{Pos: pos}, nil
	default:
		return nil, fmt.Errorf("astio: unknown expression kind %q", je.Kind)
	}
}

// ---------------------------------------------------------------------
// Patterns
// ---------------------------------------------------------------------

type jsonFieldPattern struct {
	Name    string          `json:"name"`
	Pattern json.RawMessage `json:"pattern"`
}

type jsonPattern struct {
	Kind   string             `json:"kind"`
	Pos    jsonPos            `json:"pos"`
	Name   string             `json:"name,omitempty"`
	Value  interface{}        `json:"value,omitempty"`
	Tag    string             `json:"tag,omitempty"`
	Fields []jsonFieldPattern `json:"fields,omitempty"`
}

func decodePattern(raw json.RawMessage) (ast.Pattern, error) {
	var jp jsonPattern
	if err := json.Unmarshal(raw, &jp); err != nil {
		return nil, fmt.Errorf("astio: invalid pattern: %w", err)
	}
	pos := jp.Pos.toAST()
	switch jp.Kind {
	case "wildcard":
		return &ast.WildcardPattern{Pos: pos}, nil
	case "var":
		return &ast.VarPattern{Name: jp.Name, Pos: pos}, nil
	case "lit":
		// JSON numbers decode as float64; normalize whole-valued floats
		// back to int so LitPattern's int case matches.
		v := jp.Value
		if f, ok := v.(float64); ok {
			v = int(f)
		}
		return &ast.LitPattern{Value: v, Pos: pos}, nil
	case "constructor":
		fields := make([]ast.FieldPattern, len(jp.Fields))
		for i, f := range jp.Fields {
			sub, err := decodePattern(f.Pattern)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.FieldPattern{Name: f.Name, Pattern: sub}
		}
		return &ast.ConstructorPattern{Tag: jp.Tag, Fields: fields, Pos: pos}, nil
	default:
		return nil, fmt.Errorf("astio: unknown pattern kind %q", jp.Kind)
	}
}
