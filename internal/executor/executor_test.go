package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	flowerrors "github.com/maxkimambo/taskflow/internal/errors"
	"github.com/maxkimambo/taskflow/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLauncher implements the Launcher interface for testing
type MockLauncher struct {
	mock.Mock
}

func (m *MockLauncher) Launch(ctx context.Context, spec LaunchSpec) (*LaunchResult, error) {
	args := m.Called(ctx, spec)
	if r := args.Get(0); r != nil {
		return r.(*LaunchResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func nativeTask(t *testing.T, name string, body task.Body) *task.Task {
	t.Helper()
	tk, err := task.NewRegistry().Register(task.Spec{Name: name, Type: task.TypeNative}, body)
	require.NoError(t, err)
	return tk
}

func containerTask(t *testing.T, spec task.Spec) *task.Task {
	t.Helper()
	spec.Type = task.TypeContainer
	tk, err := task.NewRegistry().Register(spec, nil)
	require.NoError(t, err)
	return tk
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
		terminal bool
	}{
		{StatusPending, "PENDING", false},
		{StatusReady, "READY", false},
		{StatusRunning, "RUNNING", false},
		{StatusSucceeded, "SUCCEEDED", true},
		{StatusFailed, "FAILED", true},
		{StatusSkipped, "SKIPPED", true},
		{StatusCancelled, "CANCELLED", true},
		{Status(99), "UNKNOWN", false},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
			assert.Equal(t, tt.terminal, tt.status.Terminal())
		})
	}
}

func TestNativeExecutor_Execute(t *testing.T) {
	exec := NewNativeExecutor()

	t.Run("returns value", func(t *testing.T) {
		tk := nativeTask(t, "add", func(ctx context.Context, args task.Args) (interface{}, error) {
			a, _ := args.Int("a")
			b, _ := args.Int("b")
			return a + b, nil
		})

		result := exec.Execute(context.Background(), tk, task.Args{"a": 1, "b": 2})
		assert.Equal(t, StatusSucceeded, result.Status)
		assert.Equal(t, 3, result.Value)
		assert.NoError(t, result.Err)
		assert.False(t, result.StartTime.IsZero())
		assert.True(t, result.Duration() >= 0)
	})

	t.Run("error becomes failed", func(t *testing.T) {
		boom := errors.New("boom")
		tk := nativeTask(t, "fail", func(ctx context.Context, args task.Args) (interface{}, error) {
			return nil, boom
		})

		result := exec.Execute(context.Background(), tk, nil)
		assert.Equal(t, StatusFailed, result.Status)
		assert.ErrorIs(t, result.Err, boom)
	})

	t.Run("panic becomes failed", func(t *testing.T) {
		tk := nativeTask(t, "panics", func(ctx context.Context, args task.Args) (interface{}, error) {
			panic("kaboom")
		})

		result := exec.Execute(context.Background(), tk, nil)
		require.NotNil(t, result)
		assert.Equal(t, StatusFailed, result.Status)
		assert.Contains(t, result.Err.Error(), "kaboom")
	})

	t.Run("cancelled context", func(t *testing.T) {
		tk := nativeTask(t, "slow", func(ctx context.Context, args task.Args) (interface{}, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
				return true, nil
			}
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		result := exec.Execute(ctx, tk, nil)
		assert.Equal(t, StatusFailed, result.Status)
		assert.ErrorIs(t, result.Err, context.DeadlineExceeded)
	})
}

func TestContainerExecutor_Execute(t *testing.T) {
	spec := task.Spec{
		Name:       "python_exit",
		BaseImage:  "python:3.12",
		Entrypoint: "python",
		Args:       []string{"-c", "exit(1)"},
		Env:        map[string]string{"MODE": "test"},
	}

	t.Run("non-zero exit fails with exit code", func(t *testing.T) {
		launcher := &MockLauncher{}
		launcher.On("Launch", mock.Anything, LaunchSpec{
			Image:      "python:3.12",
			Entrypoint: "python",
			Args:       []string{"-c", "exit(1)"},
			Env:        map[string]string{"MODE": "test"},
		}).Return(&LaunchResult{ExitCode: 1, Stderr: "Traceback\n"}, nil)

		result := NewContainerExecutor(launcher).Execute(context.Background(), containerTask(t, spec), nil)

		assert.Equal(t, StatusFailed, result.Status)
		assert.Equal(t, 1, result.ExitCode)
		require.Error(t, result.Err)
		assert.Contains(t, result.Err.Error(), "exit code 1")
		assert.Contains(t, result.Err.Error(), "Traceback")

		var exitErr *ExitError
		require.True(t, errors.As(result.Err, &exitErr))
		assert.Equal(t, 1, exitErr.Code)
		launcher.AssertExpectations(t)
	})

	t.Run("zero exit returns trimmed stdout", func(t *testing.T) {
		launcher := &MockLauncher{}
		launcher.On("Launch", mock.Anything, mock.AnythingOfType("executor.LaunchSpec")).
			Return(&LaunchResult{ExitCode: 0, Stdout: "hello\n"}, nil)

		result := NewContainerExecutor(launcher).Execute(context.Background(), containerTask(t, spec), nil)

		assert.Equal(t, StatusSucceeded, result.Status)
		assert.Equal(t, "hello", result.Value)
		assert.Equal(t, "hello\n", result.Stdout)
		launcher.AssertExpectations(t)
	})

	t.Run("launch error fails", func(t *testing.T) {
		launcher := &MockLauncher{}
		launcher.On("Launch", mock.Anything, mock.Anything).
			Return(nil, errors.New("docker: command not found"))

		result := NewContainerExecutor(launcher).Execute(context.Background(), containerTask(t, spec), nil)

		assert.Equal(t, StatusFailed, result.Status)
		assert.Contains(t, result.Err.Error(), "command not found")
	})

	t.Run("bound args reach the launcher", func(t *testing.T) {
		withArgs := spec
		withArgs.Name = "greet"
		withArgs.Args = []string{"-c", "print('{{name}}')"}

		launcher := &MockLauncher{}
		launcher.On("Launch", mock.Anything, mock.MatchedBy(func(s LaunchSpec) bool {
			return assert.ObjectsAreEqual([]string{"-c", "print('ada')", "--times=2"}, s.Args)
		})).Return(&LaunchResult{Stdout: "ada"}, nil)

		result := NewContainerExecutor(launcher).Execute(context.Background(), containerTask(t, withArgs), task.Args{"name": "ada", "times": 2})

		assert.Equal(t, StatusSucceeded, result.Status)
		launcher.AssertExpectations(t)
	})
}

func TestBindArgs(t *testing.T) {
	tests := []struct {
		name     string
		declared []string
		args     task.Args
		expected []string
	}{
		{name: "no args", declared: []string{"-c", "exit(1)"}, expected: []string{"-c", "exit(1)"}},
		{name: "placeholder", declared: []string{"--in={{a}}"}, args: task.Args{"a": 1}, expected: []string{"--in=1"}},
		{name: "repeated placeholder", declared: []string{"{{a}}-{{a}}"}, args: task.Args{"a": "x"}, expected: []string{"x-x"}},
		{name: "bound value is not expanded again", declared: []string{"{{a}} {{b}}"}, args: task.Args{"a": "{{b}}", "b": "x"}, expected: []string{"{{b}} x"}},
		{name: "unreferenced sorted", declared: nil, args: task.Args{"b": true, "a": "1"}, expected: []string{"--a=1", "--b=true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BindArgs(tt.declared, tt.args))
		})
	}
}

func TestCLILauncher_Command(t *testing.T) {
	l := NewCLILauncher("")
	l.Pull = "missing"
	l.ExtraArgs = []string{"--network=none"}

	argv := l.Command(LaunchSpec{
		Image:      "python:3.12",
		Entrypoint: "python",
		Args:       []string{"-c", "exit(1)"},
		Env:        map[string]string{"B": "2", "A": "1"},
	})

	assert.Equal(t, []string{
		"docker", "run", "--rm", "--pull=missing", "--network=none",
		"--entrypoint", "python",
		"-e", "A=1", "-e", "B=2",
		"python:3.12", "-c", "exit(1)",
	}, argv)
}

func TestCLILauncher_MissingRuntime(t *testing.T) {
	l := NewCLILauncher("taskflow-no-such-runtime")

	_, err := l.Launch(context.Background(), LaunchSpec{Image: "python:3.12"})
	assert.Error(t, err)

	_, err = l.Launch(context.Background(), LaunchSpec{})
	assert.Error(t, err)
}

func TestTable(t *testing.T) {
	table := DefaultTable(&MockLauncher{})
	assert.Equal(t, []task.Type{task.TypeContainer, task.TypeNative, task.TypePython}, table.Types())

	native := nativeTask(t, "a", func(ctx context.Context, args task.Args) (interface{}, error) { return nil, nil })
	exec, err := table.For(native)
	require.NoError(t, err)
	assert.IsType(t, &NativeExecutor{}, exec)

	err = table.Register(task.TypeNative, NewNativeExecutor())
	assert.Error(t, err)

	empty := NewTable()
	_, err = empty.For(native)
	assert.ErrorIs(t, err, flowerrors.ErrUnsupportedTaskType)
	assert.Error(t, empty.Register(task.TypeNative, nil))
}
