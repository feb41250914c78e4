package plan

// Status is the outcome of one executed step.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// StepResult records the outcome of a single step. Indices are 1-based
// and dense, matching presentation order. A StepResult is never mutated
// after the step that produced it completes.
type StepResult struct {
	Index  int    `json:"step"`
	Action string `json:"action"`
	Status Status `json:"status"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ExecutionReport is the complete, ordered outcome of running a plan.
// Success is derived: the AND of every step's status, vacuously true
// for an empty plan.
type ExecutionReport struct {
	Plan    *Plan        `json:"plan"`
	Results []StepResult `json:"results"`
	Success bool         `json:"success"`
}

// NewReport assembles a report from the input plan and its per-step
// results, computing the aggregate success flag.
func NewReport(p *Plan, results []StepResult) *ExecutionReport {
	success := true
	for _, r := range results {
		if r.Status != StatusSuccess {
			success = false
			break
		}
	}
	return &ExecutionReport{Plan: p, Results: results, Success: success}
}
