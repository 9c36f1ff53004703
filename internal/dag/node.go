package dag

import "strings"

// EdgeKind records why an edge exists. An edge may have several kinds.
type EdgeKind uint8

const (
	// EdgeDeclared comes from a task's declared dependencies
	EdgeDeclared EdgeKind = 1 << iota
	// EdgeData comes from an argument bound to another invocation's return value
	EdgeData
	// EdgeOrder is an explicit ordering-only edge requested by the workflow
	EdgeOrder
	// EdgeControl sequences the right operand of a short-circuit combinator
	// after its left operand
	EdgeControl
)

// Blocking are the edge kinds whose failure prevents the successor from running
const Blocking = EdgeDeclared | EdgeData

// All matches every edge kind
const All = EdgeDeclared | EdgeData | EdgeOrder | EdgeControl

// String returns a string representation of the EdgeKind
func (k EdgeKind) String() string {
	if k == 0 {
		return "none"
	}
	var parts []string
	if k&EdgeDeclared != 0 {
		parts = append(parts, "declared")
	}
	if k&EdgeData != 0 {
		parts = append(parts, "data")
	}
	if k&EdgeOrder != 0 {
		parts = append(parts, "order")
	}
	if k&EdgeControl != 0 {
		parts = append(parts, "control")
	}
	return strings.Join(parts, "|")
}
