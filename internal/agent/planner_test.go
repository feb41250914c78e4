package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/proxilabs/proxi/internal/mcp"
	"github.com/proxilabs/proxi/internal/plan"
)

type fakeModel struct {
	content  string
	err      error
	calls    int
	messages []llms.MessageContent
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	m.messages = messages
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.content}},
	}, nil
}

func (m *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return m.content, m.err
}

func testPrompts(t *testing.T) *PromptManager {
	t.Helper()
	// Nonexistent directory: the built-in defaults apply.
	return NewPromptManager(t.TempDir() + "/missing")
}

func TestCreatePlan(t *testing.T) {
	model := &fakeModel{content: `{
		"goal": "read and summarize",
		"steps": [
			{"step_number": 1, "type": "mcp_tool", "action": "read_file", "mcp_server": "fs", "parameters": {"path": "a.txt"}},
			{"step_number": 2, "type": "sub_agent", "action": "summarize", "task_description": "Summarize the file"},
			{"step_number": 3, "type": "direct", "action": "report"}
		]
	}`}

	p := NewPlanner(model, testPrompts(t), nil)
	pl, err := p.CreatePlan(context.Background(), "summarize a.txt", nil)
	require.NoError(t, err)

	assert.Equal(t, "read and summarize", pl.Goal)
	require.Len(t, pl.Steps, 3)

	tool, ok := pl.Steps[0].(plan.ToolCallStep)
	require.True(t, ok)
	assert.Equal(t, "read_file", tool.Name)
	assert.Equal(t, "fs", tool.Server)
	assert.Equal(t, map[string]any{"path": "a.txt"}, tool.Parameters)

	sub, ok := pl.Steps[1].(plan.DelegateStep)
	require.True(t, ok)
	assert.Equal(t, "Summarize the file", sub.Task)

	_, ok = pl.Steps[2].(plan.DirectStep)
	assert.True(t, ok)
}

func TestCreatePlan_GoalDefaultsToPrompt(t *testing.T) {
	model := &fakeModel{content: `{"steps": []}`}

	pl, err := NewPlanner(model, testPrompts(t), nil).CreatePlan(context.Background(), "do the thing", nil)
	require.NoError(t, err)

	assert.Equal(t, "do the thing", pl.Goal)
	assert.NotNil(t, pl.Steps)
	assert.Empty(t, pl.Steps)
}

func TestCreatePlan_FallbackOnMalformedJSON(t *testing.T) {
	model := &fakeModel{content: "sorry, I cannot produce JSON today"}

	pl, err := NewPlanner(model, testPrompts(t), nil).CreatePlan(context.Background(), "organize my files", nil)
	require.NoError(t, err)

	assert.Equal(t, "organize my files", pl.Goal)
	require.Len(t, pl.Steps, 1)

	direct, ok := pl.Steps[0].(plan.DirectStep)
	require.True(t, ok)
	assert.Equal(t, "process_task", direct.Name)
	assert.Contains(t, direct.Description, "organize my files")
}

func TestCreatePlan_FencedJSON(t *testing.T) {
	model := &fakeModel{content: "```json\n{\"goal\": \"g\", \"steps\": []}\n```"}

	pl, err := NewPlanner(model, testPrompts(t), nil).CreatePlan(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Equal(t, "g", pl.Goal)
}

func TestCreatePlan_ModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("api unreachable")}

	_, err := NewPlanner(model, testPrompts(t), nil).CreatePlan(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api unreachable")
}

func TestCreatePlan_ToolCatalogInPrompt(t *testing.T) {
	model := &fakeModel{content: `{"goal": "g", "steps": []}`}
	tools := []mcp.Tool{
		{Name: "read_file", Description: "Read a file", Server: "fs"},
		{Name: "search", Server: "web"},
	}

	_, err := NewPlanner(model, testPrompts(t), nil).CreatePlan(context.Background(), "x", tools)
	require.NoError(t, err)

	require.Len(t, model.messages, 2)
	user := model.messages[1].Parts[0].(llms.TextContent).Text
	assert.Contains(t, user, "read_file: Read a file (from fs)")
	assert.Contains(t, user, "- search (from web)")
}

func TestFormatTools_Empty(t *testing.T) {
	assert.Equal(t, "", formatTools(nil))
}
