// Package ast defines the in-memory representation of a loaded module:
// declarations, type expressions, statements, expressions and patterns.
// It is data only — no parsing, no validation, no evaluation. Producing a
// Module (from surface syntax or from an AST-JSON file) is the job of
// external collaborators; this package only has to hold what they produce.
package ast

import "fmt"

// Pos is a source-relative location. Every declaration (and every
// expression/statement/pattern worth diagnosing) carries one.
type Pos struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// QualifiedName is an ordered sequence of identifier segments, e.g.
// ["std", "list"] for "std.list".
type QualifiedName []string

func (q QualifiedName) String() string {
	s := ""
	for i, seg := range q {
		if i > 0 {
			s += "."
		}
		s += seg
	}
	return s
}

// Last returns the final segment, or "" for an empty name.
func (q QualifiedName) Last() string {
	if len(q) == 0 {
		return ""
	}
	return q[len(q)-1]
}

// Import names another module, with an optional local alias
// ("import std.list as L").
type Import struct {
	Path  QualifiedName
	Alias string // "" when no alias was given
	Pos   Pos
}

// Module is a single loaded compilation unit: its own qualified name, its
// imports, and an ordered list of top-level declarations. Declaration
// names are unique within a module within each namespace (types,
// functions and actors share one namespace for the resolver) — the type
// checker has already rejected collisions, so this package does not
// re-check them.
type Module struct {
	Name    QualifiedName
	Imports []Import
	Decls   []Decl
	Pos     Pos
}

// Decl is any top-level declaration kind.
type Decl interface {
	declNode()
	Position() Pos
	DeclName() string
}

// Field is a named, typed slot — used for record fields, function
// parameters, actor constructor parameters and state fields.
type Field struct {
	Name    string
	Type    TypeExpr
	Default Expr // optional; nil when absent
}

// ---------------------------------------------------------------------
// Type expressions
// ---------------------------------------------------------------------

// TypeExpr is either a named reference (with optional type arguments) or
// an option wrapper. Option is distinguished from field-level nullability:
// "Int?" is a type, while a schema field's own optional-ness is a separate
// bit on SchemaField.
type TypeExpr interface {
	typeExprNode()
	String() string
}

// NamedType is "Name" or "Name<T1, ..., Tn>".
type NamedType struct {
	Name string
	Args []TypeExpr
}

func (*NamedType) typeExprNode() {}
func (n *NamedType) String() string {
	if len(n.Args) == 0 {
		return n.Name
	}
	s := n.Name + "<"
	for i, a := range n.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ">"
}

// OptionType is "Inner?".
type OptionType struct {
	Inner TypeExpr
}

func (*OptionType) typeExprNode() {}
func (o *OptionType) String() string {
	return o.Inner.String() + "?"
}

// ---------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------

// EffectDecl declares a named side-effect that functions may attach to
// their signature.
type EffectDecl struct {
	Name string
	Pos  Pos
}

func (*EffectDecl) declNode()          {}
func (d *EffectDecl) Position() Pos    { return d.Pos }
func (d *EffectDecl) DeclName() string { return d.Name }

// TypeAliasDecl declares "type Name<...> = Target".
type TypeAliasDecl struct {
	Name    string
	Params  []string
	Target  TypeExpr
	Pos     Pos
}

func (*TypeAliasDecl) declNode()          {}
func (d *TypeAliasDecl) Position() Pos    { return d.Pos }
func (d *TypeAliasDecl) DeclName() string { return d.Name }

// RecordTypeDecl declares a record type with an ordered field list. Field
// order is the declaration order and is authoritative for default-value
// synthesis, pretty-printing and JSON encoding of values of this type.
type RecordTypeDecl struct {
	Name   string
	Params []string
	Fields []Field
	Pos    Pos
}

func (*RecordTypeDecl) declNode()          {}
func (d *RecordTypeDecl) Position() Pos    { return d.Pos }
func (d *RecordTypeDecl) DeclName() string { return d.Name }

// Variant is one arm of a sum type: a constructor name plus its ordered
// fields (zero fields for a nullary constructor).
type Variant struct {
	CtorName string
	Fields   []Field
}

// SumTypeDecl declares a tagged union: "type Name = Ctor1{...} | Ctor2{...}".
type SumTypeDecl struct {
	Name     string
	Params   []string
	Variants []Variant
	Pos      Pos
}

func (*SumTypeDecl) declNode()          {}
func (d *SumTypeDecl) Position() Pos    { return d.Pos }
func (d *SumTypeDecl) DeclName() string { return d.Name }

// SchemaField is a record-like field that additionally tracks whether it
// is optional (property-testing and JSON decoding treat that bit
// specially — it is orthogonal to the field's TypeExpr being an
// OptionType).
type SchemaField struct {
	Name     string
	Type     TypeExpr
	Optional bool
}

// SchemaDecl declares a structured-data shape used primarily by the JSON
// bridge and the property engine's generator.
type SchemaDecl struct {
	Name   string
	Fields []SchemaField
	Pos    Pos
}

func (*SchemaDecl) declNode()          {}
func (d *SchemaDecl) Position() Pos    { return d.Pos }
func (d *SchemaDecl) DeclName() string { return d.Name }

// FuncDecl declares a named function: parameters (ordered, each with a
// type), an optional declared return type, the set of effect names it
// attaches to its signature, and a body block.
type FuncDecl struct {
	Name       string
	Params     []Field
	ReturnType TypeExpr // nil when not annotated
	Effects    []string // empty means pure — gates parallel_* builtins
	Body       *Block
	Pos        Pos
}

func (*FuncDecl) declNode()          {}
func (d *FuncDecl) Position() Pos    { return d.Pos }
func (d *FuncDecl) DeclName() string { return d.Name }

// IsPure reports whether the function declares zero effects.
func (d *FuncDecl) IsPure() bool { return len(d.Effects) == 0 }

// ContractDecl attaches requires/ensures clauses to a function of the same
// name. A function may have at most one accompanying ContractDecl.
type ContractDecl struct {
	Name     string
	Requires []Expr
	Ensures  []Expr
	Pos      Pos
}

func (*ContractDecl) declNode()          {}
func (d *ContractDecl) Position() Pos    { return d.Pos }
func (d *ContractDecl) DeclName() string { return d.Name }

// TestDecl declares a test block run unconditionally by the `test`
// command; it is caught-and-reported, never allowed to abort the suite.
type TestDecl struct {
	Name string
	Body *Block
	Pos  Pos
}

func (*TestDecl) declNode()          {}
func (d *TestDecl) Position() Pos    { return d.Pos }
func (d *TestDecl) DeclName() string { return d.Name }

// PropertyParam is one universally-quantified parameter of a property:
// its name, its generated type, and an optional predicate constraining
// which generated values are accepted.
type PropertyParam struct {
	Name      string
	Type      TypeExpr
	Predicate Expr // nil when unconstrained
}

// PropertyDecl declares a property test: N random trials of Body with
// Params bound to generated values, shrinking any counterexample found.
// Iterations is 0 when not declared (meaning "use the default").
type PropertyDecl struct {
	Name       string
	Params     []PropertyParam
	Iterations int
	Body       *Block
	Pos        Pos
}

func (*PropertyDecl) declNode()          {}
func (d *PropertyDecl) Position() Pos    { return d.Pos }
func (d *PropertyDecl) DeclName() string { return d.Name }

// HandlerDecl is one `on Tag { ... }` clause of an actor. Sync is true
// when the first parameter is `actor: ActorRef`, in which case the
// handler can additionally be invoked synchronously via `Actor.Handler`
// call syntax and bypasses the mailbox entirely for that call form.
// Whole reports whether the handler takes the whole message constructor
// as a single parameter instead of decomposing it into named fields.
type HandlerDecl struct {
	MessageTag string
	Params     []Field
	Sync       bool
	Whole      bool
	WholeParam string
	Body       *Block
	Pos        Pos
}

// ActorDecl declares an actor type: immutable constructor parameters,
// mutable state fields (each with a default-value expression), and a set
// of message handlers keyed by tag.
type ActorDecl struct {
	Name       string
	Params     []Field
	StateField []Field
	Handlers   []HandlerDecl
	Pos        Pos
}

func (*ActorDecl) declNode()          {}
func (d *ActorDecl) Position() Pos    { return d.Pos }
func (d *ActorDecl) DeclName() string { return d.Name }

// HandlerFor returns the handler declared for a message tag, if any.
func (d *ActorDecl) HandlerFor(tag string) (*HandlerDecl, bool) {
	for i := range d.Handlers {
		if d.Handlers[i].MessageTag == tag {
			return &d.Handlers[i], true
		}
	}
	return nil, false
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// Block is an ordered sequence of statements. Its value is the value of
// its last expression statement, or Unit if empty or the last statement
// is not an expression statement.
type Block struct {
	Stmts []Stmt
	Pos   Pos
}

// Stmt is any statement kind.
type Stmt interface {
	stmtNode()
	Position() Pos
}

// LetStmt extends the environment: "let Name = Value".
type LetStmt struct {
	Name  string
	Value Expr
	Pos   Pos
}

func (*LetStmt) stmtNode()       {}
func (s *LetStmt) Position() Pos { return s.Pos }

// ReturnStmt produces an early-return result.
type ReturnStmt struct {
	Value Expr
	Pos   Pos
}

func (*ReturnStmt) stmtNode()       {}
func (s *ReturnStmt) Position() Pos { return s.Pos }

// ExprStmt yields its expression's value as the block's running value.
type ExprStmt struct {
	Value Expr
	Pos   Pos
}

func (*ExprStmt) stmtNode()       {}
func (s *ExprStmt) Position() Pos { return s.Pos }

// MatchCase is one arm of a match statement or expression.
type MatchCase struct {
	Pattern Pattern
	Guard   Expr // nil when absent
	Body    *Block
}

// MatchStmt evaluates Scrutinee then tries Cases in source order, failing
// with a non-exhaustive-match error if none matches.
type MatchStmt struct {
	Scrutinee Expr
	Cases     []MatchCase
	Pos       Pos
}

func (*MatchStmt) stmtNode()       {}
func (s *MatchStmt) Position() Pos { return s.Pos }

// AsyncStmt is one `async { ... }` task nested inside an AsyncGroupStmt.
// A `return` statement is not permitted inside its Body.
type AsyncStmt struct {
	Body *Block
	Pos  Pos
}

func (*AsyncStmt) stmtNode()       {}
func (s *AsyncStmt) Position() Pos { return s.Pos }

// AsyncGroupStmt schedules each Tasks entry as a cooperative, round-robin
// interleaved task; Body runs at the outer group level after all tasks
// have drained. If any task raises, its siblings are cancelled, the error
// propagates out of the group and Body does not run.
type AsyncGroupStmt struct {
	Tasks []*AsyncStmt
	Body  *Block
	Pos   Pos
}

func (*AsyncGroupStmt) stmtNode()       {}
func (s *AsyncGroupStmt) Position() Pos { return s.Pos }

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// Expr is any expression kind.
type Expr interface {
	exprNode()
	Position() Pos
}

// IntLit is an integer literal.
type IntLit struct {
	Value int
	Pos   Pos
}

func (*IntLit) exprNode()       {}
func (e *IntLit) Position() Pos { return e.Pos }

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
	Pos   Pos
}

func (*BoolLit) exprNode()       {}
func (e *BoolLit) Position() Pos { return e.Pos }

// StringLit is a string literal.
type StringLit struct {
	Value string
	Pos   Pos
}

func (*StringLit) exprNode()       {}
func (e *StringLit) Position() Pos { return e.Pos }

// UnitLit is the unit literal "()".
type UnitLit struct {
	Pos Pos
}

func (*UnitLit) exprNode()       {}
func (e *UnitLit) Position() Pos { return e.Pos }

// ListLit is a list literal "[e1, e2, ...]".
type ListLit struct {
	Elements []Expr
	Pos      Pos
}

func (*ListLit) exprNode()       {}
func (e *ListLit) Position() Pos { return e.Pos }

// Var references an identifier, possibly dotted (e.g. "mod.name" or
// "target.send"); resolution of what it denotes happens at call/eval time.
type Var struct {
	Name string
	Pos  Pos
}

func (*Var) exprNode()       {}
func (e *Var) Position() Pos { return e.Pos }

// BinaryOp is a binary operator application.
type BinaryOp struct {
	Op    string
	Left  Expr
	Right Expr
	Pos   Pos
}

func (*BinaryOp) exprNode()       {}
func (e *BinaryOp) Position() Pos { return e.Pos }

// If is a conditional expression. Else is nil when absent, in which case
// the value is Unit when Cond is false.
type If struct {
	Cond Expr
	Then *Block
	Else *Block
	Pos  Pos
}

func (*If) exprNode()       {}
func (e *If) Position() Pos { return e.Pos }

// Match is the expression form of pattern matching (statement form is
// MatchStmt; both share MatchCase).
type Match struct {
	Scrutinee Expr
	Cases     []MatchCase
	Pos       Pos
}

func (*Match) exprNode()       {}
func (e *Match) Position() Pos { return e.Pos }

// Arg is one actual argument to a Call: either positional (Name == "") or
// named.
type Arg struct {
	Name  string
	Value Expr
}

// Call invokes Callee with Args. Callee is evaluated as an expression,
// but dispatch inspects its syntactic shape first (built-in name,
// "x.send", "Type.spawn", "Type.Handler") before falling back to a plain
// function-name resolution.
type Call struct {
	Callee Expr
	Args   []Arg
	Pos    Pos
}

func (*Call) exprNode()       {}
func (e *Call) Position() Pos { return e.Pos }

// RecordExpr builds a constructor value: "Name { field: expr, ... }".
// Field expressions are evaluated in source order.
type RecordExpr struct {
	Tag    string
	Fields []Arg // Arg.Name is always set here
	Pos    Pos
}

func (*RecordExpr) exprNode()       {}
func (e *RecordExpr) Position() Pos { return e.Pos }

// FieldAccess reads a named field off a constructor value.
type FieldAccess struct {
	Target Expr
	Field  string
	Pos    Pos
}

func (*FieldAccess) exprNode()       {}
func (e *FieldAccess) Position() Pos { return e.Pos }

// Index reads an element of a list by integer position.
type Index struct {
	Target Expr
	Index  Expr
	Pos    Pos
}

func (*Index) exprNode()       {}
func (e *Index) Position() Pos { return e.Pos }

// Hole is a placeholder expression that always fails when evaluated.
type Hole struct {
	Pos Pos
}

func (*Hole) exprNode()       {}
func (e *Hole) Position() Pos { return e.Pos }

// ---------------------------------------------------------------------
// Patterns
// ---------------------------------------------------------------------

// Pattern is any pattern kind used in match arms.
type Pattern interface {
	patternNode()
	Position() Pos
}

// WildcardPattern ("_") always matches without binding.
type WildcardPattern struct {
	Pos Pos
}

func (*WildcardPattern) patternNode()     {}
func (p *WildcardPattern) Position() Pos  { return p.Pos }

// VarPattern always matches and binds the scrutinee to Name.
type VarPattern struct {
	Name string
	Pos  Pos
}

func (*VarPattern) patternNode()     {}
func (p *VarPattern) Position() Pos  { return p.Pos }

// LitPattern matches a literal value exactly. Value holds an int, bool or
// string (matching the corresponding literal kind).
type LitPattern struct {
	Value interface{}
	Pos   Pos
}

func (*LitPattern) patternNode()     {}
func (p *LitPattern) Position() Pos  { return p.Pos }

// FieldPattern is one named sub-pattern inside a ConstructorPattern.
type FieldPattern struct {
	Name    string
	Pattern Pattern
}

// ConstructorPattern matches a constructor value by tag, binding each
// named field's sub-pattern against the corresponding field value.
type ConstructorPattern struct {
	Tag    string
	Fields []FieldPattern
	Pos    Pos
}

func (*ConstructorPattern) patternNode()     {}
func (p *ConstructorPattern) Position() Pos  { return p.Pos }
