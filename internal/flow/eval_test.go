package flow

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

// settled builds a Lookup from fixed outcomes; calls not in the map are undecided
func settled(outcomes map[*Call]Outcome) Lookup {
	return func(c *Call) Outcome {
		if o, ok := outcomes[c]; ok {
			o.Call = c
			return o
		}
		return Outcome{State: Undecided}
	}
}

func value(v interface{}) Outcome { return Outcome{State: Decided, Value: v} }

func failure(msg string) Outcome { return Outcome{State: Failed, Err: errors.New(msg)} }

func TestEvaluateOr(t *testing.T) {
	left, right := Invoke("l", nil), Invoke("r", nil)
	expr := NewOr(left, right)

	tests := []struct {
		name      string
		outcomes  map[*Call]Outcome
		wantState State
		wantValue interface{}
		wantFrom  *Call
		wantLive  []*Call
	}{
		{"nothing settled", nil, Undecided, nil, nil, []*Call{left, right}},
		{"truthy left", map[*Call]Outcome{left: value(true)}, Decided, true, left, []*Call{left}},
		{"falsy left pending right", map[*Call]Outcome{left: value(false)}, Undecided, nil, nil, []*Call{left, right}},
		{"falsy left", map[*Call]Outcome{left: value(0), right: value("ok")}, Decided, "ok", right, []*Call{left, right}},
		{"failed left rescued", map[*Call]Outcome{left: failure("boom"), right: value(true)}, Decided, true, right, []*Call{left, right}},
		{"both failed", map[*Call]Outcome{left: failure("a"), right: failure("b")}, Failed, nil, right, []*Call{left, right}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := settled(tt.outcomes)
			got := Evaluate(expr, lookup)

			assert.Equal(t, tt.wantState, got.State)
			assert.Equal(t, tt.wantValue, got.Value)
			if tt.wantFrom != nil {
				assert.Same(t, tt.wantFrom, got.Call)
			}
			assert.Equal(t, tt.wantLive, Live(expr, lookup))
		})
	}
}

func TestEvaluateAnd(t *testing.T) {
	left, right := Invoke("l", nil), Invoke("r", nil)
	expr := NewAnd(left, right)

	got := Evaluate(expr, settled(map[*Call]Outcome{left: failure("boom")}))
	assert.Equal(t, Failed, got.State)
	assert.EqualError(t, got.Err, "boom")
	assert.Equal(t, []*Call{left}, Live(expr, settled(map[*Call]Outcome{left: failure("boom")})))

	got = Evaluate(expr, settled(map[*Call]Outcome{left: value("")}))
	assert.Equal(t, Decided, got.State)
	assert.Equal(t, "", got.Value)

	got = Evaluate(expr, settled(map[*Call]Outcome{left: value(1), right: value(2)}))
	assert.Equal(t, 2, got.Value)
}

func TestEvaluateNot(t *testing.T) {
	c := Invoke("c", nil)

	got := Evaluate(NewNot(c), settled(map[*Call]Outcome{c: value([]string{})}))
	assert.Equal(t, true, got.Value)

	got = Evaluate(NewNot(c), settled(map[*Call]Outcome{c: failure("x")}))
	assert.Equal(t, Failed, got.State)
}

func TestMasked(t *testing.T) {
	audit := Invoke("audit", nil)
	primary := Invoke("primary", nil).Then(audit)
	fallback := Invoke("fallback", nil)
	guard := Invoke("guard", nil)
	expr := NewAnd(guard, NewOr(primary, fallback))

	tests := []struct {
		name     string
		outcomes map[*Call]Outcome
		want     map[*Call]bool
	}{
		{
			name:     "failed left operand and its ordering predecessors",
			outcomes: map[*Call]Outcome{guard: value(true), primary: failure("down"), fallback: value(1)},
			want:     map[*Call]bool{primary: true, audit: true},
		},
		{
			name:     "successful left operand masks nothing",
			outcomes: map[*Call]Outcome{guard: value(true), primary: value(true), audit: failure("late")},
			want:     map[*Call]bool{},
		},
		{
			name:     "undecided",
			outcomes: nil,
			want:     map[*Call]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Masked(expr, settled(tt.outcomes)))
		})
	}
}

func TestTruthy(t *testing.T) {
	var nilPtr *int
	one := 1

	tests := []struct {
		value interface{}
		want  bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0, false},
		{int64(3), true},
		{uint8(0), false},
		{0.0, false},
		{0.5, true},
		{"", false},
		{"x", true},
		{[]int{}, false},
		{[]int{1}, true},
		{map[string]int{}, false},
		{nilPtr, false},
		{&one, true},
		{struct{}{}, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Truthy(tt.value), "Truthy(%#v)", tt.value)
	}
}

// Short-circuit laws over arbitrary settled operands
func TestShortCircuitProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	outcomeOf := func(ok bool, v int) Outcome {
		if !ok {
			return failure("failed")
		}
		return value(v)
	}

	properties.Property("OR returns the left value when it is truthy", prop.ForAll(
		func(l, r int, rightOK bool) bool {
			left, right := Invoke("l", nil), Invoke("r", nil)
			lookup := settled(map[*Call]Outcome{left: value(l), right: outcomeOf(rightOK, r)})
			got := Evaluate(NewOr(left, right), lookup)
			if l != 0 {
				return got.State == Decided && got.Value == l && len(Live(NewOr(left, right), lookup)) == 1
			}
			return got.Call == right
		},
		gen.IntRange(-3, 3), gen.IntRange(-3, 3), gen.Bool(),
	))

	properties.Property("AND never reaches the right operand after a falsy or failed left", prop.ForAll(
		func(leftOK bool, l int) bool {
			left, right := Invoke("l", nil), Invoke("r", nil)
			lookup := settled(map[*Call]Outcome{left: outcomeOf(leftOK, l)})
			got := Evaluate(NewAnd(left, right), lookup)
			if !leftOK || l == 0 {
				return got.State != Undecided && got.Call == left
			}
			return got.State == Undecided
		},
		gen.Bool(), gen.IntRange(-3, 3),
	))

	properties.Property("NOT NOT preserves truthiness", prop.ForAll(
		func(v int) bool {
			c := Invoke("c", nil)
			got := Evaluate(NewNot(NewNot(c)), settled(map[*Call]Outcome{c: value(v)}))
			return got.Value == (v != 0)
		},
		gen.IntRange(-5, 5),
	))

	properties.TestingRun(t)
}
