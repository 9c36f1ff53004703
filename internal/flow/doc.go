// Package flow is the expression tree a workflow composes its task calls into.
//
// A workflow body returns an Expr built from Invoke, NewOr, NewAnd and NewNot. The tree is
// data: the resolver walks it to find invocations and the engine evaluates it with
// short-circuit semantics as invocation results arrive.
//
// An argument whose value is a *Call binds the return value of that call:
//
//	fetch := flow.Invoke("fetch", task.Args{"url": url})
//	expr := flow.NewOr(flow.Invoke("parse", task.Args{"body": fetch}), flow.Invoke("fallback", nil))
package flow
