// Package agent coordinates planning and plan execution: it owns the
// MCP connectors, asks the planner for a plan, and runs it step by step.
package agent

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/proxilabs/proxi/internal/mcp"
	"github.com/proxilabs/proxi/internal/observability"
	"github.com/proxilabs/proxi/internal/plan"
	"github.com/proxilabs/proxi/internal/policy"
	"github.com/proxilabs/proxi/internal/store"
	"github.com/tmc/langchaingo/llms"
)

// Connector is a live handle to an MCP server.
type Connector interface {
	ToolCaller
	ListTools(ctx context.Context) []mcp.Tool
	Disconnect() error
}

// Agent wires the planner, the executor, and the connected MCP servers
// together for one caller thread.
type Agent struct {
	model    llms.Model
	prompts  *PromptManager
	planner  *Planner
	executor *Executor
	policy   policy.Engine
	log      *observability.Logger
	journal  *store.RunStore

	connectors map[string]Connector
	subAgents  []*SubAgent
}

// New builds an Agent. The policy engine and the run journal are
// optional; pass nil to disable them.
func New(model llms.Model, prompts *PromptManager, pol policy.Engine, logger *observability.Logger, journal *store.RunStore) *Agent {
	return &Agent{
		model:      model,
		prompts:    prompts,
		planner:    NewPlanner(model, prompts, logger),
		executor:   NewExecutor(logger),
		policy:     pol,
		log:        logger,
		journal:    journal,
		connectors: make(map[string]Connector),
	}
}

// ConnectMCP starts an MCP server process and registers it under the
// given name.
func (a *Agent) ConnectMCP(ctx context.Context, name, command string, args ...string) error {
	client := mcp.NewClient(command, args...)
	if err := client.Connect(ctx); err != nil {
		return err
	}
	a.connectors[name] = client
	log.Printf("Connected to MCP server: %s", name)
	return nil
}

// RegisterConnector adds an already-connected handle, mainly for tests
// and embedders that manage connections themselves.
func (a *Agent) RegisterConnector(name string, c Connector) {
	a.connectors[name] = c
}

// SubAgents returns the delegate instances retained from executed
// plans, in creation order.
func (a *Agent) SubAgents() []*SubAgent {
	return a.subAgents
}

// AvailableTools aggregates the catalogs of all connected MCP servers,
// tagging each tool with the name of the server that provides it.
// Policy-denied tools are never offered to the planner.
func (a *Agent) AvailableTools(ctx context.Context) []mcp.Tool {
	var tools []mcp.Tool
	for name, conn := range a.connectors {
		for _, t := range conn.ListTools(ctx) {
			t.Server = name
			if a.policy != nil {
				res, err := a.policy.Evaluate(ctx, policy.Request{
					Tool:        t.Name,
					Server:      name,
					Description: t.Description,
				})
				if err != nil {
					log.Printf("Warning: policy evaluation failed for %s: %v", t.Name, err)
					continue
				}
				if res.Effect == policy.EffectDeny {
					log.Printf("Policy: tool %s hidden (%s)", t.Name, res.Reason)
					continue
				}
			}
			tools = append(tools, t)
		}
	}
	return tools
}

// ExecutePlan hands the plan to the executor with the current
// connector handles. Each delegated step gets a fresh sub-agent, which
// the Agent retains for later inspection.
func (a *Agent) ExecutePlan(ctx context.Context, p *plan.Plan) *plan.ExecutionReport {
	connectors := make(map[string]ToolCaller, len(a.connectors))
	for name, c := range a.connectors {
		connectors[name] = c
	}

	factory := func() Delegate {
		sub := NewSubAgent(a.model, a.prompts, a.log)
		a.subAgents = append(a.subAgents, sub)
		return sub
	}

	return a.executor.Execute(ctx, p, connectors, factory)
}

// CreatePlan asks the planner for a plan over the currently available
// tool catalog.
func (a *Agent) CreatePlan(ctx context.Context, prompt string) (*plan.Plan, error) {
	return a.planner.CreatePlan(ctx, prompt, a.AvailableTools(ctx))
}

// Run is the main entry point: create a plan for the prompt and
// execute it.
func (a *Agent) Run(ctx context.Context, prompt string) (*plan.ExecutionReport, error) {
	pl, err := a.CreatePlan(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return a.RunPlan(ctx, prompt, pl), nil
}

// RunPlan executes an already-built plan and journals the outcome.
func (a *Agent) RunPlan(ctx context.Context, prompt string, pl *plan.Plan) *plan.ExecutionReport {
	runID := uuid.NewString()
	if a.log != nil {
		a.log.LogPlan(runID, pl.Goal, len(pl.Steps))
	}

	report := a.ExecutePlan(ctx, pl)

	if a.log != nil {
		a.log.LogReport(runID, report.Success, len(report.Results))
	}
	if a.journal != nil {
		if err := a.journal.SaveRun(runID, prompt, report); err != nil {
			log.Printf("Warning: failed to journal run %s: %v", runID, err)
		}
	}
	return report
}

// Cleanup disconnects every MCP server, best effort.
func (a *Agent) Cleanup() {
	for name, conn := range a.connectors {
		if err := conn.Disconnect(); err != nil {
			log.Printf("Warning: failed to disconnect %s: %v", name, err)
		}
	}
	log.Printf("Cleaned up connections")
}
