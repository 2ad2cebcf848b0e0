package runtime

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/cappallo/aura/internal/actor"
	"github.com/cappallo/aura/internal/ast"
	"github.com/cappallo/aura/internal/eval"
)

var (
	logCyan   = color.New(color.FgCyan).SprintFunc()
	logYellow = color.New(color.FgYellow).SprintFunc()
	logFaint  = color.New(color.Faint).SprintFunc()
)

// evalSpawn implements §4.3 step 3: "ActorName.spawn" creates a fresh
// instance, constructor params bound from the call arguments, state
// fields defaulted from their declared expression (or their type's
// zero value when none is given), supervised by whichever actor is
// currently executing (or none).
func (e *Evaluator) evalSpawn(env *eval.Environment, ae *actorEntry, args []ast.Arg) (eval.Value, error) {
	params := eval.FieldNames(ae.Decl.Params)
	bound, err := eval.BindArguments(params, args, func(_ string, expr ast.Expr) (eval.Value, error) {
		return e.EvalExpr(env, expr)
	})
	if err != nil {
		return nil, err
	}

	state := make(map[string]eval.Value, len(ae.Decl.StateField))
	for _, f := range ae.Decl.StateField {
		if f.Default != nil {
			v, err := e.EvalExpr(env, f.Default)
			if err != nil {
				return nil, err
			}
			state[f.Name] = v
			continue
		}
		state[f.Name] = eval.DefaultValue(f.Type, e.RT)
	}

	id := e.RT.NextActorID
	e.RT.NextActorID++

	supervisor := actor.NoSupervisor
	if n := len(e.RT.CurrentActorStack); n > 0 {
		supervisor = e.RT.CurrentActorStack[n-1]
	}

	inst := &actor.Instance{
		ID:         id,
		ActorName:  ae.Qualified,
		Params:     bound,
		State:      state,
		Supervisor: supervisor,
	}
	e.RT.ActorInstances[id] = inst
	e.RT.Supervision[id] = actor.NewSupervisionNode(supervisor)
	if supervisor != actor.NoSupervisor {
		if pnode, ok := e.RT.Supervision[supervisor]; ok {
			pnode.Children[id] = true
		}
	}

	return &eval.ActorRefValue{ID: id, ActorName: ae.Qualified}, nil
}

// evalSend implements §4.3 step 2: the lone argument must evaluate to a
// constructor value, enqueued as a message to the target actor.
func (e *Evaluator) evalSend(env *eval.Environment, ref *eval.ActorRefValue, args []ast.Arg) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wrongArity("send takes exactly one argument")
	}
	v, err := e.EvalExpr(env, args[0].Value)
	if err != nil {
		return nil, err
	}
	msg, ok := v.(*eval.ConstructorValue)
	if !ok {
		return nil, wrongType("send argument must be a constructor value")
	}
	if err := e.send(ref.ID, msg); err != nil {
		return nil, err
	}
	return eval.Unit(), nil
}

// evalSyncHandlerCall implements §4.3 step 4: a call of the form
// "ActorName.HandlerName" whose handler's first parameter is the
// synchronous `actor: ActorRef` binding delivers the message immediately,
// bypassing the mailbox, and returns the handler's value. Unlike a
// mailbox delivery, a raised error here escapes to the caller unchanged —
// supervision recovery is not triggered, though descendants are still
// destroyed.
func (e *Evaluator) evalSyncHandlerCall(env *eval.Environment, hd *ast.HandlerDecl, args []ast.Arg) (eval.Value, error) {
	params := eval.FieldNames(hd.Params)
	bound, err := eval.BindArguments(params, args, func(_ string, expr ast.Expr) (eval.Value, error) {
		return e.EvalExpr(env, expr)
	})
	if err != nil {
		return nil, err
	}

	actorVal, ok := bound["actor"]
	if !ok {
		return nil, wrongType("synchronous handler '" + hd.MessageTag + "' has no 'actor' parameter")
	}
	ref, ok := actorVal.(*eval.ActorRefValue)
	if !ok {
		return nil, wrongType("'actor' parameter must be an ActorRef")
	}
	inst, ok := e.RT.ActorInstances[ref.ID]
	if !ok || inst.Terminated {
		return nil, actorNotRunning(ref.ID)
	}

	names := make([]string, 0, len(hd.Params))
	fields := make(map[string]eval.Value, len(hd.Params))
	for _, p := range hd.Params {
		if p.Name == "actor" {
			continue
		}
		names = append(names, p.Name)
		fields[p.Name] = bound[p.Name]
	}
	msg := eval.NewConstructor(hd.MessageTag, names, fields)

	result, err := e.runHandler(inst, hd, msg)
	if err != nil {
		e.destroyInstance(inst.ID)
		return nil, err
	}
	return result, nil
}

// send enqueues msg on the target actor's mailbox (silently dropped if
// the actor is unknown or terminated) and, in immediate mode, drains the
// delivery queue before returning — so a send may run an arbitrary amount
// of code, guarded against re-entrant nested drains by IsProcessing.
func (e *Evaluator) send(id int64, msg *eval.ConstructorValue) error {
	inst, ok := e.RT.ActorInstances[id]
	if !ok || inst.Terminated {
		return nil
	}
	inst.Enqueue(msg)
	e.RT.PendingDeliveries = append(e.RT.PendingDeliveries, id)

	if e.RT.SchedulerMode == Immediate && !e.RT.IsProcessing {
		return e.drain()
	}
	return nil
}

// drain runs the delivery loop until the queue is empty, guarded against
// re-entrance: a handler that sends back into the queue while this loop
// is already draining just appends to the same queue, which the outer
// call keeps consuming.
func (e *Evaluator) drain() error {
	e.RT.IsProcessing = true
	defer func() { e.RT.IsProcessing = false }()
	for len(e.RT.PendingDeliveries) > 0 {
		id := e.RT.PendingDeliveries[0]
		e.RT.PendingDeliveries = e.RT.PendingDeliveries[1:]
		if err := e.deliverOne(id); err != nil {
			return err
		}
	}
	return nil
}

// deliverOne processes at most one pending message from id's mailbox. A
// delivery record for an already-destroyed actor, or one whose mailbox
// was already drained by a prior record, is silently dropped.
func (e *Evaluator) deliverOne(id int64) error {
	inst, ok := e.RT.ActorInstances[id]
	if !ok || inst.Terminated {
		return nil
	}
	msg, ok := inst.Dequeue()
	if !ok {
		return nil
	}

	ae, ok := e.RT.Actors[inst.ActorName]
	if !ok {
		return wrongType("internal: unknown actor declaration '" + inst.ActorName + "'")
	}

	hd, ok := ae.Decl.HandlerFor(msg.Tag)
	if !ok {
		return e.handleFailure(inst, msg.Tag, noHandler(inst.ActorName, msg.Tag))
	}

	if _, err := e.runHandler(inst, hd, msg); err != nil {
		return e.handleFailure(inst, msg.Tag, err)
	}
	return nil
}

// runHandler runs hd's body in a fresh environment seeded with the
// instance's constructor params, its current state, and the message's
// fields (or, for a Whole handler, the message itself bound to
// WholeParam). On success, each state field is written back only if its
// live value still equals the snapshot taken at entry — guarding against
// a concurrent overwrite from a re-entrant nested delivery.
func (e *Evaluator) runHandler(inst *actor.Instance, hd *ast.HandlerDecl, msg *eval.ConstructorValue) (eval.Value, error) {
	handlerEnv := eval.NewEnvironment()
	for k, v := range inst.Params {
		handlerEnv.Set(k, v)
	}
	preState := make(map[string]eval.Value, len(inst.State))
	for k, v := range inst.State {
		handlerEnv.Set(k, v)
		preState[k] = v
	}

	if hd.Whole {
		handlerEnv.Set(hd.WholeParam, msg)
	} else {
		for _, p := range hd.Params {
			if v, ok := msg.Fields[p.Name]; ok {
				handlerEnv.Set(p.Name, v)
			}
		}
	}

	savedModule := e.RT.CurrentModule
	e.RT.CurrentModule = e.actorModule(inst.ActorName)
	e.RT.CurrentActorStack = append(e.RT.CurrentActorStack, inst.ID)

	result, finalEnv, err := e.runBlockAsBodyWithEnv(handlerEnv, hd.Body)

	e.RT.CurrentActorStack = e.RT.CurrentActorStack[:len(e.RT.CurrentActorStack)-1]
	e.RT.CurrentModule = savedModule

	if err != nil {
		return nil, err
	}

	for field := range inst.State {
		newVal, ok := finalEnv.Get(field)
		if !ok {
			continue
		}
		if eval.Equals(inst.State[field], preState[field]) {
			inst.State[field] = newVal
		}
	}
	return result, nil
}

func (e *Evaluator) actorModule(qualifiedActorName string) string {
	if ae, ok := e.RT.Actors[qualifiedActorName]; ok {
		return ae.Module
	}
	return e.RT.CurrentModule
}

// handleFailure destroys inst and its descendants, then searches up the
// supervision tree for the nearest ancestor with a ChildFailed handler.
func (e *Evaluator) handleFailure(inst *actor.Instance, failingTag string, cause error) error {
	reason := errorMessage(cause)
	child := &eval.ActorRefValue{ID: inst.ID, ActorName: inst.ActorName}
	actorDeclName := inst.ActorName
	supervisor := inst.Supervisor

	e.destroyInstance(inst.ID)
	return e.propagateChildFailed(supervisor, child, reason, failingTag, actorDeclName)
}

// destroyInstance recursively destroys id's descendants before removing
// id itself, matching the invariant that a terminated instance's children
// are gone before control returns to the scheduler.
func (e *Evaluator) destroyInstance(id int64) {
	if node, ok := e.RT.Supervision[id]; ok {
		for childID := range node.Children {
			e.destroyInstance(childID)
		}
		if node.Parent != actor.NoSupervisor {
			if pnode, ok := e.RT.Supervision[node.Parent]; ok {
				delete(pnode.Children, id)
			}
		}
	}
	if inst, ok := e.RT.ActorInstances[id]; ok {
		inst.Terminated = true
		inst.Mailbox = nil
	}
	delete(e.RT.ActorInstances, id)
	delete(e.RT.Supervision, id)
}

// propagateChildFailed walks the supervision chain from supervisorID
// upward, delivering ChildFailed to the first live ancestor that
// declares a handler for it. If the chain is exhausted with no handler
// found, the failure surfaces as a runtime error.
func (e *Evaluator) propagateChildFailed(supervisorID int64, child eval.Value, reason, failingTag, actorDeclName string) error {
	current := supervisorID
	for current != actor.NoSupervisor {
		inst, ok := e.RT.ActorInstances[current]
		if !ok {
			break
		}
		if ae, ok := e.RT.Actors[inst.ActorName]; ok {
			if _, handles := ae.Decl.HandlerFor("ChildFailed"); handles {
				msg := actor.ChildFailedMessage(child, reason, failingTag, actorDeclName)
				return e.send(current, msg)
			}
		}
		node, ok := e.RT.Supervision[current]
		if !ok {
			break
		}
		current = node.Parent
	}
	return unhandledSupervision(reason)
}

// ---------------------------------------------------------------------
// builtins.Context scheduler controls
// ---------------------------------------------------------------------

// Flush implements builtins.Context: drains every pending delivery,
// returning how many were processed.
func (e *Evaluator) Flush() (int, error) {
	count := 0
	for len(e.RT.PendingDeliveries) > 0 {
		id := e.RT.PendingDeliveries[0]
		e.RT.PendingDeliveries = e.RT.PendingDeliveries[1:]
		if err := e.deliverOne(id); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Step implements builtins.Context: delivers at most one pending message.
func (e *Evaluator) Step() (bool, error) {
	if len(e.RT.PendingDeliveries) == 0 {
		return false, nil
	}
	id := e.RT.PendingDeliveries[0]
	e.RT.PendingDeliveries = e.RT.PendingDeliveries[1:]
	if err := e.deliverOne(id); err != nil {
		return true, err
	}
	return true, nil
}

// Stop implements builtins.Context: terminates an actor subtree.
func (e *Evaluator) Stop(actorRef eval.Value) error {
	ref, ok := actorRef.(*eval.ActorRefValue)
	if !ok {
		return wrongType("Concurrent.stop requires an ActorRef")
	}
	e.destroyInstance(ref.ID)
	return nil
}

// LogEvent implements builtins.Context: Log.debug/Log.trace either
// buffer a structured entry (JSON mode) or write through the text sink.
func (e *Evaluator) LogEvent(level, label string, payload eval.Value) {
	entry := LogEntry{Level: level, Label: label, Payload: payload}
	if e.RT.OutputMode == JSONOutput {
		e.RT.Logs = append(e.RT.Logs, entry)
		return
	}
	writeLogText(entry)
}

// writeLogText writes one log event to stderr in the same colored,
// human-scannable style the CLI uses for its own status lines: a colored
// level tag, the label, then the payload's display form dimmed.
func writeLogText(entry LogEntry) {
	tag := logCyan("[debug]")
	if entry.Level == "trace" {
		tag = logYellow("[trace]")
	}
	payload := "()"
	if entry.Payload != nil {
		payload = entry.Payload.String()
	}
	fmt.Fprintf(os.Stderr, "%s %s %s\n", tag, entry.Label, logFaint(payload))
}
