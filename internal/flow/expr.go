package flow

import (
	"fmt"
	"strings"

	"github.com/maxkimambo/taskflow/internal/task"
)

// Expr is a node of a workflow composition
type Expr interface {
	fmt.Stringer
	isExpr()
}

// Call invokes a registered task. Each *Call is one invocation; the same task
// called twice yields two invocations.
type Call struct {
	Task string
	Args task.Args
	// After adds ordering-only edges from these calls. c runs whatever their
	// result, but a failure among them still fails the run unless an OR absorbs it.
	After []*Call
}

// Or is a short-circuit disjunction
type Or struct {
	Left, Right Expr
}

// And is a short-circuit conjunction
type And struct {
	Left, Right Expr
}

// Not negates the truthiness of its operand
type Not struct {
	Operand Expr
}

func (*Call) isExpr() {}
func (*Or) isExpr()   {}
func (*And) isExpr()  {}
func (*Not) isExpr()  {}

// Invoke creates a call of the named task
func Invoke(taskName string, args task.Args) *Call {
	if args == nil {
		args = task.Args{}
	}
	return &Call{Task: taskName, Args: args}
}

// Then makes c wait for the given calls without binding their values
func (c *Call) Then(after ...*Call) *Call {
	c.After = append(c.After, after...)
	return c
}

// NewOr combines two operands with short-circuit OR
func NewOr(left, right Expr) Expr {
	return &Or{Left: left, Right: right}
}

// NewAnd combines two operands with short-circuit AND
func NewAnd(left, right Expr) Expr {
	return &And{Left: left, Right: right}
}

// NewNot negates an operand
func NewNot(operand Expr) Expr {
	return &Not{Operand: operand}
}

// AnyOf folds operands left to right into nested Or nodes
func AnyOf(operands ...Expr) Expr {
	return fold(operands, NewOr)
}

// AllOf folds operands left to right into nested And nodes
func AllOf(operands ...Expr) Expr {
	return fold(operands, NewAnd)
}

func fold(operands []Expr, combine func(l, r Expr) Expr) Expr {
	if len(operands) == 0 {
		return nil
	}
	acc := operands[0]
	for _, op := range operands[1:] {
		acc = combine(acc, op)
	}
	return acc
}

func (c *Call) String() string {
	parts := make([]string, 0, len(c.Args))
	for _, name := range c.Args.Names() {
		v := c.Args[name]
		if ref, ok := v.(*Call); ok {
			parts = append(parts, fmt.Sprintf("%s=%s", name, ref.String()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", name, v))
	}
	return fmt.Sprintf("%s(%s)", c.Task, strings.Join(parts, ", "))
}

func (o *Or) String() string {
	return fmt.Sprintf("(%s OR %s)", o.Left, o.Right)
}

func (a *And) String() string {
	return fmt.Sprintf("(%s AND %s)", a.Left, a.Right)
}

func (n *Not) String() string {
	return fmt.Sprintf("NOT %s", n.Operand)
}

// ArgRefs returns the calls bound into c's arguments, ordered by argument name
func (c *Call) ArgRefs() []*Call {
	var refs []*Call
	for _, name := range c.Args.Names() {
		if ref, ok := c.Args[name].(*Call); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Calls returns every call reachable from e, including calls bound as
// arguments and ordering-only predecessors. A call appears after the calls its
// arguments reference, so the order is the order in which Go evaluated the
// Invoke expressions. Shared *Call values appear once.
func Calls(e Expr) []*Call {
	var out []*Call
	seen := make(map[*Call]bool)
	var visitCall func(c *Call)
	visitCall = func(c *Call) {
		if c == nil || seen[c] {
			return
		}
		seen[c] = true
		for _, ref := range c.After {
			visitCall(ref)
		}
		for _, ref := range c.ArgRefs() {
			visitCall(ref)
		}
		out = append(out, c)
	}
	walk(e, visitCall)
	return out
}

// Leaves returns the calls that appear directly in the tree of e, left to
// right, without the calls bound as their arguments
func Leaves(e Expr) []*Call {
	var out []*Call
	walk(e, func(c *Call) { out = append(out, c) })
	return out
}

// walk visits the top-level calls of e left to right
func walk(e Expr, fn func(*Call)) {
	switch n := e.(type) {
	case *Call:
		fn(n)
	case *Or:
		walk(n.Left, fn)
		walk(n.Right, fn)
	case *And:
		walk(n.Left, fn)
		walk(n.Right, fn)
	case *Not:
		walk(n.Operand, fn)
	}
}

// Validate reports a nil operand anywhere in e
func Validate(e Expr) error {
	switch n := e.(type) {
	case nil:
		return fmt.Errorf("workflow expression is empty")
	case *Call:
		if n == nil {
			return fmt.Errorf("nil call in workflow expression")
		}
		if n.Task == "" {
			return fmt.Errorf("call without task name in workflow expression")
		}
		return nil
	case *Or:
		if n == nil {
			return fmt.Errorf("nil OR in workflow expression")
		}
		if err := Validate(n.Left); err != nil {
			return err
		}
		return Validate(n.Right)
	case *And:
		if n == nil {
			return fmt.Errorf("nil AND in workflow expression")
		}
		if err := Validate(n.Left); err != nil {
			return err
		}
		return Validate(n.Right)
	case *Not:
		if n == nil {
			return fmt.Errorf("nil NOT in workflow expression")
		}
		return Validate(n.Operand)
	default:
		return fmt.Errorf("unsupported expression node %T", e)
	}
}
