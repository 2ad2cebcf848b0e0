// Package actor defines the data types owned by a live actor: its
// immutable constructor bindings, its mutable state fields, its FIFO
// mailbox, and the supervision-tree node tracking its parent and
// children. The scheduler that drives delivery (internal/runtime) owns
// the orchestration around these types, since draining a mailbox must
// call back into the evaluator to run a handler body — keeping that
// callback out of this package avoids a needless import cycle between
// the actor runtime and the evaluator the spec otherwise treats as one
// shared control flow.
package actor

import "github.com/cappallo/aura/internal/eval"

// Instance is one live (or since-terminated) actor.
type Instance struct {
	ID         int64
	ActorName  string
	Params     map[string]eval.Value // immutable constructor-argument bindings
	State      map[string]eval.Value // mutable state fields
	Mailbox    []*eval.ConstructorValue
	Terminated bool
	Supervisor int64 // -1 when spawned outside any handler
}

// NoSupervisor marks an instance spawned with no current actor on the
// stack.
const NoSupervisor int64 = -1

// Enqueue appends a message to the back of the mailbox.
func (i *Instance) Enqueue(msg *eval.ConstructorValue) {
	i.Mailbox = append(i.Mailbox, msg)
}

// Dequeue removes and returns the oldest pending message, if any.
func (i *Instance) Dequeue() (*eval.ConstructorValue, bool) {
	if len(i.Mailbox) == 0 {
		return nil, false
	}
	msg := i.Mailbox[0]
	i.Mailbox = i.Mailbox[1:]
	return msg, true
}

// SupervisionNode records one actor's place in the supervision tree.
type SupervisionNode struct {
	Parent   int64 // NoSupervisor when this actor has no supervisor
	Children map[int64]bool
}

// NewSupervisionNode builds a node with the given parent and no children.
func NewSupervisionNode(parent int64) *SupervisionNode {
	return &SupervisionNode{Parent: parent, Children: make(map[int64]bool)}
}

// ChildFailedMessage builds the {child, reason, message, actor} constructor
// the nearest ChildFailed-handling ancestor receives when a descendant's
// handler raises.
func ChildFailedMessage(child eval.Value, reason, failingTag, actorDeclName string) *eval.ConstructorValue {
	names := []string{"child", "reason", "message", "actor"}
	fields := map[string]eval.Value{
		"child":   child,
		"reason":  &eval.StringValue{V: reason},
		"message": &eval.StringValue{V: failingTag},
		"actor":   &eval.StringValue{V: actorDeclName},
	}
	return eval.NewConstructor("ChildFailed", names, fields)
}
