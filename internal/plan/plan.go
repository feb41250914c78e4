package plan

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the step variants a planner may emit.
type Kind string

const (
	KindToolCall Kind = "mcp_tool"
	KindDelegate Kind = "sub_agent"
	KindDirect   Kind = "direct"
)

// Step is one unit of planned work, tagged by kind.
type Step interface {
	Kind() Kind
	// Action returns the human-readable label of the step. May be empty.
	Action() string
}

// ToolCallStep invokes a named tool on one of the connected MCP servers.
type ToolCallStep struct {
	Name        string
	Server      string
	Parameters  map[string]any
	Description string
}

func (s ToolCallStep) Kind() Kind     { return KindToolCall }
func (s ToolCallStep) Action() string { return s.Name }

// DelegateStep hands a free-text task to a sub-agent.
type DelegateStep struct {
	Name        string
	Task        string
	Description string
}

func (s DelegateStep) Kind() Kind     { return KindDelegate }
func (s DelegateStep) Action() string { return s.Name }

// DirectStep is a bookkeeping no-op.
type DirectStep struct {
	Name        string
	Description string
}

func (s DirectStep) Kind() Kind     { return KindDirect }
func (s DirectStep) Action() string { return s.Name }

// UnknownStep preserves a step whose kind is not recognized, so the
// executor can fail it as data instead of aborting the whole plan.
type UnknownStep struct {
	RawKind     string
	Name        string
	Description string
}

func (s UnknownStep) Kind() Kind     { return Kind(s.RawKind) }
func (s UnknownStep) Action() string { return s.Name }

// Plan is a sequence of steps toward a goal. Step order is significant
// and preserved exactly as given.
type Plan struct {
	Goal  string
	Steps []Step
}

// stepEnvelope is the flat wire form the planner LLM emits.
type stepEnvelope struct {
	StepNumber      int            `json:"step_number,omitempty"`
	Type            string         `json:"type"`
	Action          string         `json:"action,omitempty"`
	MCPServer       string         `json:"mcp_server,omitempty"`
	Parameters      map[string]any `json:"parameters,omitempty"`
	TaskDescription string         `json:"task_description,omitempty"`
	Description     string         `json:"description,omitempty"`
}

type planEnvelope struct {
	Goal  string         `json:"goal"`
	Steps []stepEnvelope `json:"steps"`
}

func fromEnvelope(env stepEnvelope) Step {
	switch Kind(env.Type) {
	case KindToolCall:
		return ToolCallStep{
			Name:        env.Action,
			Server:      env.MCPServer,
			Parameters:  env.Parameters,
			Description: env.Description,
		}
	case KindDelegate:
		return DelegateStep{
			Name:        env.Action,
			Task:        env.TaskDescription,
			Description: env.Description,
		}
	case KindDirect:
		return DirectStep{
			Name:        env.Action,
			Description: env.Description,
		}
	default:
		return UnknownStep{
			RawKind:     env.Type,
			Name:        env.Action,
			Description: env.Description,
		}
	}
}

func toEnvelope(i int, s Step) stepEnvelope {
	env := stepEnvelope{
		StepNumber: i + 1,
		Type:       string(s.Kind()),
		Action:     s.Action(),
	}
	switch v := s.(type) {
	case ToolCallStep:
		env.MCPServer = v.Server
		env.Parameters = v.Parameters
		env.Description = v.Description
	case DelegateStep:
		env.TaskDescription = v.Task
		env.Description = v.Description
	case DirectStep:
		env.Description = v.Description
	case UnknownStep:
		env.Description = v.Description
	}
	return env
}

func (p *Plan) UnmarshalJSON(data []byte) error {
	var env planEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decoding plan: %w", err)
	}
	p.Goal = env.Goal
	p.Steps = make([]Step, 0, len(env.Steps))
	for _, se := range env.Steps {
		p.Steps = append(p.Steps, fromEnvelope(se))
	}
	return nil
}

func (p Plan) MarshalJSON() ([]byte, error) {
	env := planEnvelope{Goal: p.Goal, Steps: make([]stepEnvelope, 0, len(p.Steps))}
	for i, s := range p.Steps {
		env.Steps = append(env.Steps, toEnvelope(i, s))
	}
	return json.Marshal(env)
}
