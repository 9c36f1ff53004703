package flow

import "reflect"

// State is how far an expression has been decided
type State int

const (
	// Undecided means a call the expression depends on has no result yet
	Undecided State = iota
	// Decided means the expression produced a value
	Decided
	// Failed means the expression cannot produce a value
	Failed
)

// String returns a string representation of the State
func (s State) String() string {
	switch s {
	case Undecided:
		return "undecided"
	case Decided:
		return "decided"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the partial result of evaluating an expression
type Outcome struct {
	State State
	Value interface{}
	Err   error
	// Call is the invocation the value or failure came from
	Call *Call
}

// Lookup returns the settled outcome of a single call, or Undecided
type Lookup func(c *Call) Outcome

// Evaluate computes e as far as the settled calls allow.
//
//	Or:  truthy left wins; falsy or failed left defers to right
//	And: failed or falsy left wins; truthy left defers to right
//	Not: failure propagates; values are negated by truthiness
func Evaluate(e Expr, lookup Lookup) Outcome {
	switch n := e.(type) {
	case *Call:
		return lookup(n)
	case *Or:
		left := Evaluate(n.Left, lookup)
		switch left.State {
		case Undecided:
			return left
		case Decided:
			if Truthy(left.Value) {
				return left
			}
		}
		return Evaluate(n.Right, lookup)
	case *And:
		left := Evaluate(n.Left, lookup)
		if left.State != Decided || !Truthy(left.Value) {
			return left
		}
		return Evaluate(n.Right, lookup)
	case *Not:
		inner := Evaluate(n.Operand, lookup)
		if inner.State != Decided {
			return inner
		}
		return Outcome{State: Decided, Value: !Truthy(inner.Value), Call: inner.Call}
	default:
		return Outcome{State: Undecided}
	}
}

// Live returns the top-level calls of e whose results may still matter.
// A call drops out once an enclosing combinator is decided without it.
func Live(e Expr, lookup Lookup) []*Call {
	var out []*Call
	collectLive(e, lookup, &out)
	return out
}

func collectLive(e Expr, lookup Lookup, out *[]*Call) {
	switch n := e.(type) {
	case *Call:
		*out = append(*out, n)
	case *Or:
		collectLive(n.Left, lookup, out)
		left := Evaluate(n.Left, lookup)
		if left.State == Decided && Truthy(left.Value) {
			return
		}
		collectLive(n.Right, lookup, out)
	case *And:
		collectLive(n.Left, lookup, out)
		left := Evaluate(n.Left, lookup)
		if left.State == Failed || (left.State == Decided && !Truthy(left.Value)) {
			return
		}
		collectLive(n.Right, lookup, out)
	case *Not:
		collectLive(n.Operand, lookup, out)
	}
}

// Masked returns the calls whose failure a short-circuit absorbed: every call
// reachable from the left operand of an OR whose left side failed, since the
// OR then takes its result from the right side.
func Masked(e Expr, lookup Lookup) map[*Call]bool {
	out := make(map[*Call]bool)
	collectMasked(e, lookup, out)
	return out
}

func collectMasked(e Expr, lookup Lookup, out map[*Call]bool) {
	switch n := e.(type) {
	case *Or:
		if Evaluate(n.Left, lookup).State == Failed {
			for _, c := range Calls(n.Left) {
				out[c] = true
			}
		} else {
			collectMasked(n.Left, lookup, out)
		}
		collectMasked(n.Right, lookup, out)
	case *And:
		collectMasked(n.Left, lookup, out)
		collectMasked(n.Right, lookup, out)
	case *Not:
		collectMasked(n.Operand, lookup, out)
	}
}

// Truthy reports whether v counts as true in a boolean combinator.
// nil, false, numeric zero and empty strings, slices and maps are falsy.
func Truthy(v interface{}) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String, reflect.Chan:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface, reflect.Func:
		return !rv.IsNil()
	}
	return true
}
