package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxilabs/proxi/internal/plan"
)

type fakeConnector struct {
	result any
	err    error
	calls  int
}

func (f *fakeConnector) CallTool(_ context.Context, name string, params map[string]any) (any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeDelegate struct {
	result *TaskResult
}

func (f *fakeDelegate) ExecuteTask(_ context.Context, task string) *TaskResult {
	if f.result != nil {
		return f.result
	}
	return &TaskResult{Task: task, Result: "done", Status: TaskStatusCompleted}
}

func delegateFactory(d Delegate) DelegateFactory {
	return func() Delegate { return d }
}

func TestExecute_EmptyPlan(t *testing.T) {
	e := NewExecutor(nil)
	report := e.Execute(context.Background(), &plan.Plan{Goal: "nothing"}, nil, nil)

	require.NotNil(t, report)
	assert.Empty(t, report.Results)
	assert.True(t, report.Success, "empty plan is vacuously successful")
}

func TestExecute_DirectSteps(t *testing.T) {
	p := &plan.Plan{
		Goal: "g",
		Steps: []plan.Step{
			plan.DirectStep{Name: "one"},
			plan.DirectStep{Name: "two"},
			plan.DirectStep{Name: "three"},
		},
	}

	report := NewExecutor(nil).Execute(context.Background(), p, nil, nil)

	require.Len(t, report.Results, 3)
	assert.True(t, report.Success)
	for i, r := range report.Results {
		assert.Equal(t, i+1, r.Index)
		assert.Equal(t, plan.StatusSuccess, r.Status)
	}
	assert.Equal(t, "Direct action: two", report.Results[1].Result)
}

func TestExecute_ToolCall(t *testing.T) {
	conn := &fakeConnector{result: map[string]any{"content": "hello"}}
	p := &plan.Plan{Steps: []plan.Step{
		plan.ToolCallStep{Name: "read_file", Server: "fs", Parameters: map[string]any{"path": "/tmp/x"}},
	}}

	report := NewExecutor(nil).Execute(context.Background(), p, map[string]ToolCaller{"fs": conn}, nil)

	require.Len(t, report.Results, 1)
	assert.True(t, report.Success)
	assert.Equal(t, 1, conn.calls)
	assert.Equal(t, map[string]any{"content": "hello"}, report.Results[0].Result)
}

func TestExecute_ToolCallError(t *testing.T) {
	conn := &fakeConnector{err: errors.New("tool error 1: boom")}
	p := &plan.Plan{Steps: []plan.Step{
		plan.ToolCallStep{Name: "read_file", Server: "fs"},
	}}

	report := NewExecutor(nil).Execute(context.Background(), p, map[string]ToolCaller{"fs": conn}, nil)

	require.Len(t, report.Results, 1)
	assert.False(t, report.Success)
	assert.Equal(t, plan.StatusError, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Error, "boom")
}

func TestExecute_UnconnectedServer(t *testing.T) {
	p := &plan.Plan{
		Goal: "g",
		Steps: []plan.Step{
			plan.DirectStep{Name: "a1"},
			plan.ToolCallStep{Name: "a2", Server: "x", Parameters: map[string]any{}},
		},
	}

	report := NewExecutor(nil).Execute(context.Background(), p, map[string]ToolCaller{}, nil)

	require.Len(t, report.Results, 2)
	assert.False(t, report.Success)
	assert.Equal(t, plan.StatusSuccess, report.Results[0].Status)
	assert.Equal(t, plan.StatusError, report.Results[1].Status)
	assert.Contains(t, report.Results[1].Error, "x")
	assert.Contains(t, report.Results[1].Error, "not connected")
}

func TestExecute_UnknownKindDoesNotShortCircuit(t *testing.T) {
	p := &plan.Plan{Steps: []plan.Step{
		plan.DirectStep{Name: "first"},
		plan.UnknownStep{RawKind: "teleport", Name: "weird"},
		plan.DirectStep{Name: "last"},
	}}

	report := NewExecutor(nil).Execute(context.Background(), p, nil, nil)

	require.Len(t, report.Results, 3)
	assert.False(t, report.Success)
	assert.Equal(t, plan.StatusSuccess, report.Results[0].Status)
	assert.Equal(t, plan.StatusError, report.Results[1].Status)
	assert.Contains(t, report.Results[1].Error, "teleport")
	assert.Equal(t, plan.StatusSuccess, report.Results[2].Status)
}

func TestExecute_DelegateSuccess(t *testing.T) {
	d := &fakeDelegate{result: &TaskResult{Task: "t", Result: "", Status: TaskStatusCompleted}}
	p := &plan.Plan{Steps: []plan.Step{
		plan.DelegateStep{Name: "summarize", Task: "t"},
	}}

	report := NewExecutor(nil).Execute(context.Background(), p, nil, delegateFactory(d))

	require.Len(t, report.Results, 1)
	assert.True(t, report.Success, "an empty delegate result is still a completed task")

	// The success payload is the full delegate result, not just the text.
	res, ok := report.Results[0].Result.(*TaskResult)
	require.True(t, ok)
	assert.Equal(t, TaskStatusCompleted, res.Status)
	assert.Equal(t, "", res.Result)
}

func TestExecute_DelegateError(t *testing.T) {
	d := &fakeDelegate{result: &TaskResult{Task: "t", Status: TaskStatusError, Error: "rate limited"}}
	p := &plan.Plan{Steps: []plan.Step{
		plan.DelegateStep{Name: "summarize", Task: "t"},
	}}

	report := NewExecutor(nil).Execute(context.Background(), p, nil, delegateFactory(d))

	require.Len(t, report.Results, 1)
	assert.False(t, report.Success)
	assert.Equal(t, "rate limited", report.Results[0].Error)
}

func TestExecute_Deterministic(t *testing.T) {
	conn := &fakeConnector{result: "v"}
	p := &plan.Plan{Steps: []plan.Step{
		plan.ToolCallStep{Name: "t", Server: "s"},
		plan.DirectStep{Name: "d"},
	}}
	connectors := map[string]ToolCaller{"s": conn}

	e := NewExecutor(nil)
	first := e.Execute(context.Background(), p, connectors, nil)
	second := e.Execute(context.Background(), p, connectors, nil)

	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.Success, second.Success)
}

func TestExecute_ResultCountMatchesSteps(t *testing.T) {
	p := &plan.Plan{Steps: []plan.Step{
		plan.DirectStep{Name: "a"},
		plan.UnknownStep{RawKind: "??"},
		plan.ToolCallStep{Name: "b", Server: "missing"},
		plan.DirectStep{Name: "c"},
	}}

	report := NewExecutor(nil).Execute(context.Background(), p, nil, nil)

	require.Len(t, report.Results, len(p.Steps))
	for i, r := range report.Results {
		assert.Equal(t, i+1, r.Index, "indices are 1-based and dense")
	}
	assert.False(t, report.Success)
	assert.Same(t, p, report.Plan, "the report carries the input plan unmodified")
}
