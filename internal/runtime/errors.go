package runtime

import (
	"fmt"

	"github.com/cappallo/aura/internal/aerr"
	"github.com/cappallo/aura/internal/ast"
)

// posLoc converts an AST position into an aerr.Location, with module as
// the Location's module name. Every caller in this package passes an
// empty module, so error records built here carry no module name.
func posLoc(pos ast.Pos, module string) *aerr.Location {
	return &aerr.Location{File: pos.File, Module: module, Line: pos.Line, Column: pos.Column}
}

func errorMessage(err error) string {
	if rep, ok := aerr.AsReport(err); ok {
		return rep.Message
	}
	return err.Error()
}

func unknownVariable(name string, pos ast.Pos) error {
	return aerr.Wrap(aerr.New(aerr.EVA001, aerr.KindUnknownVariable,
		fmt.Sprintf("unbound variable %q", name), posLoc(pos, "")))
}

func unknownFunction(name string, pos ast.Pos) error {
	return aerr.Wrap(aerr.New(aerr.EVA002, aerr.KindUnknownFunction,
		fmt.Sprintf("unbound function %q", name), posLoc(pos, "")))
}

func wrongArity(msg string) error {
	return aerr.Wrap(aerr.New(aerr.EVA003, aerr.KindWrongArity, msg, nil))
}

func wrongType(msg string) error {
	return aerr.Wrap(aerr.New(aerr.EVA004, aerr.KindWrongOperandType, msg, nil))
}

func nonExhaustiveMatch(pos ast.Pos) error {
	return aerr.Wrap(aerr.New(aerr.EVA005, aerr.KindNonExhaustiveMatch,
		"no match case applies to the scrutinee value", posLoc(pos, "")))
}

func unfilledHole(pos ast.Pos) error {
	return aerr.Wrap(aerr.New(aerr.EVA006, aerr.KindUnfilledHole,
		"evaluation reached an unfilled hole", posLoc(pos, "")))
}

func nonBoolean(context string, pos ast.Pos) error {
	return aerr.Wrap(aerr.New(aerr.EVA008, aerr.KindNonBoolean,
		fmt.Sprintf("%s did not evaluate to a boolean", context), posLoc(pos, "")))
}

func divisionByZero(pos ast.Pos) error {
	return aerr.Wrap(aerr.New(aerr.RT001, aerr.KindDivisionByZero,
		"division by zero", posLoc(pos, "")))
}

func indexOutOfBounds(index, length int, pos ast.Pos) error {
	return aerr.Wrap(aerr.New(aerr.RT002, aerr.KindIndexOutOfBounds,
		fmt.Sprintf("index %d out of bounds for list of length %d", index, length), posLoc(pos, "")))
}

func fieldAccessFailed(field string, pos ast.Pos) error {
	return aerr.Wrap(aerr.New(aerr.RT003, aerr.KindWrongOperandType,
		fmt.Sprintf("no such field %q", field), posLoc(pos, "")))
}

func noHandler(actorName, tag string) error {
	return aerr.Wrap(aerr.New(aerr.ACT001, aerr.KindNoHandler,
		fmt.Sprintf("actor %q has no handler for message %q", actorName, tag), nil))
}

func actorNotRunning(id int64) error {
	return aerr.Wrap(aerr.New(aerr.ACT002, aerr.KindActorNotRunning,
		fmt.Sprintf("actor #%d is not running", id), nil))
}

func unhandledSupervision(reason string) error {
	return aerr.Wrap(aerr.New(aerr.ACT003, aerr.KindNoHandler,
		"unhandled supervision failure: "+reason, nil).WithHint(
		"no ancestor actor declares a ChildFailed handler"))
}
