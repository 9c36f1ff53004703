package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxkimambo/taskflow/internal/errors"
	"github.com/maxkimambo/taskflow/internal/flow"
	"github.com/maxkimambo/taskflow/internal/task"
)

func TestDefine(t *testing.T) {
	_, err := Define(WorkflowSpec{}, func(args task.Args) flow.Expr { return nil })
	assert.ErrorIs(t, err, errors.ErrInvalidWorkflow)

	_, err = Define(WorkflowSpec{Name: "wf"}, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidWorkflow)

	wf, err := Define(WorkflowSpec{Name: "wf", Description: "demo"}, func(args task.Args) flow.Expr {
		return flow.Invoke("a", nil)
	})
	require.NoError(t, err)
	assert.Equal(t, "wf", wf.Name())
	assert.Equal(t, "demo", wf.Spec().Description)
}

func TestWorkflow_Compose(t *testing.T) {
	wf := MustDefine(WorkflowSpec{Name: "wf", Params: []string{"a", "b"}}, func(args task.Args) flow.Expr {
		return flow.Invoke("hello_world", task.Args{"a": args["a"], "b": args["b"]})
	})

	expr, err := wf.Compose(task.Args{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, "hello_world(a=1, b=2)", expr.String())

	_, err = wf.Compose(task.Args{"a": 1})
	assert.ErrorIs(t, err, errors.ErrInvalidArguments)

	_, err = wf.Compose(task.Args{"a": 1, "b": 2, "c": 3})
	assert.ErrorIs(t, err, errors.ErrInvalidArguments)
}

func TestWorkflow_ComposeFailures(t *testing.T) {
	empty := MustDefine(WorkflowSpec{Name: "empty"}, func(args task.Args) flow.Expr { return nil })
	_, err := empty.Compose(nil)
	assert.ErrorIs(t, err, errors.ErrInvalidWorkflow)

	panics := MustDefine(WorkflowSpec{Name: "panics"}, func(args task.Args) flow.Expr { panic("bad composition") })
	_, err = panics.Compose(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidWorkflow)
	assert.Contains(t, err.Error(), "bad composition")
}

func TestMustDefinePanics(t *testing.T) {
	assert.Panics(t, func() {
		MustDefine(WorkflowSpec{}, nil)
	})
}
