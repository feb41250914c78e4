package agent

import (
	"context"
	"errors"

	"github.com/proxilabs/proxi/internal/observability"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// TaskStatus is the delegate's own success/failure verdict.
type TaskStatus string

const (
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusError     TaskStatus = "error"
)

// TaskResult is the structured outcome of a delegated task. A completed
// task with an empty result string is valid and distinct from an error.
type TaskResult struct {
	Task   string     `json:"task"`
	Result string     `json:"result"`
	Status TaskStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// SubAgent handles a single delegated task via an LLM call. It never
// returns a Go error: every failure is reported through TaskResult.
type SubAgent struct {
	model   llms.Model
	prompts *PromptManager
	log     *observability.Logger
}

func NewSubAgent(model llms.Model, prompts *PromptManager, logger *observability.Logger) *SubAgent {
	return &SubAgent{model: model, prompts: prompts, log: logger}
}

func (s *SubAgent) ExecuteTask(ctx context.Context, task string) *TaskResult {
	systemPrompt, err := s.prompts.GetSubAgentPrompt()
	if err != nil {
		return &TaskResult{Task: task, Status: TaskStatusError, Error: err.Error()}
	}

	userPrompt := "Task: " + task + "\n\nPlease execute this task and provide a clear result or explanation."
	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userPrompt)},
		},
	}

	resp, err := s.model.GenerateContent(ctx, messages, llms.WithTemperature(0.3))
	if err != nil {
		return &TaskResult{Task: task, Status: TaskStatusError, Error: err.Error()}
	}
	if len(resp.Choices) == 0 {
		err = errors.New("empty response from model")
		return &TaskResult{Task: task, Status: TaskStatusError, Error: err.Error()}
	}

	content := resp.Choices[0].Content
	if s.log != nil {
		s.log.LogLLM("", task, content)
	}

	return &TaskResult{Task: task, Result: content, Status: TaskStatusCompleted}
}
