package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/proxilabs/proxi/internal/mcp"
	"github.com/proxilabs/proxi/internal/observability"
	"github.com/proxilabs/proxi/internal/plan"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// Planner turns a task prompt plus the available tool catalog into a
// structured plan by asking an LLM for JSON output.
type Planner struct {
	model   llms.Model
	prompts *PromptManager
	log     *observability.Logger
}

func NewPlanner(model llms.Model, prompts *PromptManager, logger *observability.Logger) *Planner {
	return &Planner{model: model, prompts: prompts, log: logger}
}

// CreatePlan asks the model for a plan. Malformed model output falls
// back to a single direct step naming the prompt; transport errors
// still propagate to the caller.
func (p *Planner) CreatePlan(ctx context.Context, prompt string, tools []mcp.Tool) (*plan.Plan, error) {
	systemPrompt, err := p.prompts.GetPlannerPrompt()
	if err != nil {
		return nil, fmt.Errorf("failed to load planner prompt: %v", err)
	}

	toolsDescription := formatTools(tools)
	if toolsDescription == "" {
		toolsDescription = "No tools currently available. You may need to use sub-agents or direct actions."
	}
	userPrompt := fmt.Sprintf("Task: %s\n\nAvailable Tools:\n%s\n\nCreate a plan to complete this task.", prompt, toolsDescription)

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

	resp, err := p.model.GenerateContent(ctx, messages,
		llms.WithTemperature(0.3),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating plan: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("error creating plan: empty response from model")
	}

	content := resp.Choices[0].Content
	if p.log != nil {
		p.log.LogLLM("", userPrompt, content)
	}

	var pl plan.Plan
	if err := json.Unmarshal([]byte(stripFences(content)), &pl); err != nil {
		log.Printf("Warning: Failed to parse plan JSON: %v", err)
		return fallbackPlan(prompt), nil
	}

	// Normalize: goal defaults to the prompt, steps to an empty sequence.
	if pl.Goal == "" {
		pl.Goal = prompt
	}
	if pl.Steps == nil {
		pl.Steps = []plan.Step{}
	}

	return &pl, nil
}

// fallbackPlan is the deterministic substitute for malformed planner
// output: one direct step summarizing the original prompt.
func fallbackPlan(prompt string) *plan.Plan {
	return &plan.Plan{
		Goal: prompt,
		Steps: []plan.Step{
			plan.DirectStep{
				Name:        "process_task",
				Description: fmt.Sprintf("Process the task: %s", prompt),
			},
		},
	}
}

func formatTools(tools []mcp.Tool) string {
	if len(tools) == 0 {
		return ""
	}

	formatted := make([]string, 0, len(tools))
	for _, t := range tools {
		info := "- " + t.Name
		if t.Description != "" {
			info += ": " + t.Description
		}
		if t.Server != "" {
			info += fmt.Sprintf(" (from %s)", t.Server)
		}
		formatted = append(formatted, info)
	}

	return strings.Join(formatted, "\n")
}

// stripFences removes a markdown code fence if the model wrapped its
// JSON in one despite the JSON-mode request.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
