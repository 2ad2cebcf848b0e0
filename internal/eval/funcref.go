package eval

// FuncRef is not one of the seven value kinds the language exposes. It is
// an internal carrier the evaluator uses to thread a bare function name
// (e.g. the "fn" parameter of list.map) through the ordinary argument
// binder, since functions are referenced by name rather than being
// first-class values. Built-ins that expect a function reference unwrap
// this type themselves; nothing else should ever see one.
type FuncRef struct{ Name string }

func (*FuncRef) Kind() string     { return "$FuncRef" }
func (f *FuncRef) String() string { return "<fn " + f.Name + ">" }
