package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/proxilabs/proxi/internal/observability"
	"github.com/proxilabs/proxi/internal/plan"
)

// ToolCaller is the slice of an MCP connector the executor needs.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, params map[string]any) (any, error)
}

// Delegate performs a single free-text task and reports its own
// success or failure; it never returns a Go error.
type Delegate interface {
	ExecuteTask(ctx context.Context, task string) *TaskResult
}

// DelegateFactory produces a fresh Delegate for each delegated step.
type DelegateFactory func() Delegate

// Executor carries a plan out step by step. It holds no state between
// invocations; every failure is folded into the report, so Execute
// itself never fails.
type Executor struct {
	Log *observability.Logger
}

func NewExecutor(logger *observability.Logger) *Executor {
	return &Executor{Log: logger}
}

// Execute runs every step of the plan in order. A failed step never
// aborts the remaining sequence: each step yields exactly one result,
// and the report's success flag is the AND of all step statuses.
// The connectors map is read-only to the executor.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan, connectors map[string]ToolCaller, newDelegate DelegateFactory) *plan.ExecutionReport {
	log.Printf("Executing plan with %d steps", len(p.Steps))

	results := make([]plan.StepResult, 0, len(p.Steps))
	for i, step := range p.Steps {
		index := i + 1
		log.Printf("Step %d/%d: %s", index, len(p.Steps), step.Action())

		res := e.runStep(ctx, index, step, connectors, newDelegate)
		if e.Log != nil {
			e.Log.LogStep(index, res.Action, string(res.Status))
		}
		results = append(results, res)
	}

	return plan.NewReport(p, results)
}

func (e *Executor) runStep(ctx context.Context, index int, step plan.Step, connectors map[string]ToolCaller, newDelegate DelegateFactory) plan.StepResult {
	switch s := step.(type) {
	case plan.ToolCallStep:
		caller, ok := connectors[s.Server]
		if !ok {
			return errorResult(index, s.Name, fmt.Sprintf("MCP server '%s' not connected", s.Server))
		}
		if e.Log != nil {
			e.Log.LogToolCall(index, s.Server, s.Name, s.Parameters)
		}
		out, err := caller.CallTool(ctx, s.Name, s.Parameters)
		if err != nil {
			return errorResult(index, s.Name, err.Error())
		}
		return successResult(index, s.Name, out)

	case plan.DelegateStep:
		res := newDelegate().ExecuteTask(ctx, s.Task)
		if res.Status == TaskStatusError {
			return errorResult(index, s.Name, res.Error)
		}
		return successResult(index, s.Name, res)

	case plan.DirectStep:
		return successResult(index, s.Name, fmt.Sprintf("Direct action: %s", s.Name))

	default:
		return errorResult(index, step.Action(), fmt.Sprintf("unknown action type: %s", step.Kind()))
	}
}

func successResult(index int, action string, result any) plan.StepResult {
	return plan.StepResult{
		Index:  index,
		Action: action,
		Status: plan.StatusSuccess,
		Result: result,
	}
}

func errorResult(index int, action, message string) plan.StepResult {
	return plan.StepResult{
		Index:  index,
		Action: action,
		Status: plan.StatusError,
		Error:  message,
	}
}
