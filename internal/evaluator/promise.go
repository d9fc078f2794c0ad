package evaluator

import (
	"fmt"
)

type PromiseState int

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

func (s PromiseState) String() string {
	switch s {
	case PromiseFulfilled:
		return "fulfilled"
	case PromiseRejected:
		return "rejected"
	default:
		return "pending"
	}
}

// promiseReaction links a registered handler to the derived promise its
// outcome settles.
type promiseReaction struct {
	handler Object // callable or nil for pass-through
	next    *Promise
}

// Promise is the one-shot settlement cell shared by both engines.
// Transitions happen at most once; reactions run as microtasks in
// registration order.
type Promise struct {
	State   PromiseState
	Result  Object
	Handled bool

	fulfillReactions []*promiseReaction
	rejectReactions  []*promiseReaction
}

func NewPromise() *Promise {
	return &Promise{}
}

func (p *Promise) Type() ObjectType { return PROMISE_OBJ }
func (p *Promise) Inspect() string {
	switch p.State {
	case PromiseFulfilled:
		return "Promise { " + inspectNested(p.Result) + " }"
	case PromiseRejected:
		return "Promise { <rejected> " + inspectNested(p.Result) + " }"
	default:
		return "Promise { <pending> }"
	}
}

// ResolvePromise fulfills p with value. Resolving with another promise
// adopts its eventual state instead of fulfilling with the promise
// itself. Settled promises ignore further transitions.
func (e *Evaluator) ResolvePromise(p *Promise, value Object) {
	if p.State != PromisePending {
		return
	}
	if inner, ok := value.(*Promise); ok {
		inner.Handled = true
		e.registerReactions(inner,
			&promiseReaction{next: p},
			&promiseReaction{next: p})
		return
	}
	p.State = PromiseFulfilled
	p.Result = value
	for _, r := range p.fulfillReactions {
		e.scheduleReaction(r, value, false)
	}
	p.fulfillReactions = nil
	p.rejectReactions = nil
}

// RejectPromise rejects p with reason. Rejections with no handler at
// drain time are reported as unhandled.
func (e *Evaluator) RejectPromise(p *Promise, reason Object) {
	if p.State != PromisePending {
		return
	}
	p.State = PromiseRejected
	p.Result = reason
	if len(p.rejectReactions) == 0 && !p.Handled {
		e.pendingRejections = append(e.pendingRejections, p)
	}
	for _, r := range p.rejectReactions {
		e.scheduleReaction(r, reason, true)
	}
	p.fulfillReactions = nil
	p.rejectReactions = nil
}

// registerReactions attaches a fulfill and a reject reaction, running
// them immediately as microtasks when p is already settled.
func (e *Evaluator) registerReactions(p *Promise, onFulfill, onReject *promiseReaction) {
	switch p.State {
	case PromiseFulfilled:
		e.scheduleReaction(onFulfill, p.Result, false)
	case PromiseRejected:
		p.Handled = true
		e.scheduleReaction(onReject, p.Result, true)
	default:
		p.fulfillReactions = append(p.fulfillReactions, onFulfill)
		if onReject != nil {
			p.rejectReactions = append(p.rejectReactions, onReject)
			if onReject.handler != nil || onReject.next != nil {
				p.Handled = true
			}
		}
	}
}

// scheduleReaction queues one reaction as a microtask. A nil handler
// passes the settlement straight through to the derived promise.
func (e *Evaluator) scheduleReaction(r *promiseReaction, value Object, rejected bool) {
	e.Loop.ScheduleMicrotask(func() {
		if r.handler == nil {
			if r.next == nil {
				return
			}
			if rejected {
				e.RejectPromise(r.next, value)
			} else {
				e.ResolvePromise(r.next, value)
			}
			return
		}
		result := e.CallValue(r.handler, UNDEFINED, []Object{value}, tokenless())
		if r.next == nil {
			return
		}
		if ex, ok := result.(*Exception); ok {
			e.RejectPromise(r.next, ex.ThrownValue())
			return
		}
		e.ResolvePromise(r.next, result)
	})
}

// Then registers fulfillment and rejection handlers and returns the
// derived promise, the primitive behind then, catch and finally.
func (e *Evaluator) Then(p *Promise, onFulfilled, onRejected Object) *Promise {
	derived := NewPromise()
	fulfill := &promiseReaction{next: derived}
	if isCallable(onFulfilled) {
		fulfill.handler = onFulfilled
	}
	reject := &promiseReaction{next: derived}
	if isCallable(onRejected) {
		reject.handler = onRejected
		p.Handled = true
	}
	e.registerReactions(p, fulfill, reject)
	return derived
}

func isCallable(obj Object) bool {
	switch obj.(type) {
	case *Function, *Builtin:
		return true
	}
	return false
}

// ReportUnhandledRejections writes a line for every rejected promise that
// never gained a handler. Called by the host after the loop drains.
func (e *Evaluator) ReportUnhandledRejections() {
	for _, p := range e.pendingRejections {
		if p.State == PromiseRejected && !p.Handled {
			fmt.Fprintf(e.Out, "Uncaught (in promise) %s\n", p.Result.Inspect())
		}
	}
	e.pendingRejections = nil
}

var promiseMethods map[string]BuiltinFn

func init() {
	promiseMethods = map[string]BuiltinFn{
		"then": func(e *Evaluator, this Object, args []Object) Object {
			p, ok := this.(*Promise)
			if !ok {
				return NewTypeError("then called on a non-promise")
			}
			var onFulfilled, onRejected Object = UNDEFINED, UNDEFINED
			if len(args) > 0 {
				onFulfilled = args[0]
			}
			if len(args) > 1 {
				onRejected = args[1]
			}
			return e.Then(p, onFulfilled, onRejected)
		},
		"catch": func(e *Evaluator, this Object, args []Object) Object {
			p, ok := this.(*Promise)
			if !ok {
				return NewTypeError("catch called on a non-promise")
			}
			var onRejected Object = UNDEFINED
			if len(args) > 0 {
				onRejected = args[0]
			}
			return e.Then(p, UNDEFINED, onRejected)
		},
		"finally": func(e *Evaluator, this Object, args []Object) Object {
			p, ok := this.(*Promise)
			if !ok {
				return NewTypeError("finally called on a non-promise")
			}
			var handler Object = UNDEFINED
			if len(args) > 0 {
				handler = args[0]
			}
			if !isCallable(handler) {
				return e.Then(p, UNDEFINED, UNDEFINED)
			}
			// The callback observes nothing and alters nothing: the original
			// settlement passes through.
			onFulfilled := &Builtin{Name: "finally", Fn: func(e *Evaluator, _ Object, args []Object) Object {
				if r := e.CallValue(handler, UNDEFINED, nil, tokenless()); IsException(r) {
					return r
				}
				if len(args) > 0 {
					return args[0]
				}
				return UNDEFINED
			}}
			onRejected := &Builtin{Name: "finally", Fn: func(e *Evaluator, _ Object, args []Object) Object {
				if r := e.CallValue(handler, UNDEFINED, nil, tokenless()); IsException(r) {
					return r
				}
				var reason Object = UNDEFINED
				if len(args) > 0 {
					reason = args[0]
				}
				return NewThrow(reason)
			}}
			return e.Then(p, onFulfilled, onRejected)
		},
	}
}
