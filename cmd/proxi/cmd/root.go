package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/proxilabs/proxi/internal/agent"
	"github.com/proxilabs/proxi/internal/observability"
	"github.com/proxilabs/proxi/internal/plan"
	"github.com/proxilabs/proxi/internal/policy"
	"github.com/proxilabs/proxi/internal/store"
	"github.com/proxilabs/proxi/pkg/config"
)

var (
	cfgFile  string
	planFile string
	noBanner bool
)

var rootCmd = &cobra.Command{
	Use:   `proxi "<prompt>"`,
	Short: "proxi - a proof-of-concept plan-and-execute agent",
	Long: `proxi takes a natural-language task, asks an LLM planner for a
step-by-step plan, and executes it: MCP tool calls, delegated
sub-agent tasks, and direct bookkeeping steps.`,
	SilenceUsage: true,
	RunE:         runAgent,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.json", "path to the config file")
	rootCmd.Flags().StringVar(&planFile, "plan", "", "execute a plan from a JSON or YAML file instead of asking the planner")
	rootCmd.Flags().BoolVar(&noBanner, "no-banner", false, "suppress the startup banner")
}

func runAgent(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && planFile == "" {
		return errors.New(`usage: proxi "<your prompt>" or proxi --plan plan.yaml`)
	}
	prompt := strings.Join(args, " ")

	if !noBanner {
		observability.PrintBanner()
	}

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, journal, err := buildAgent(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Cleanup()
	if journal != nil {
		defer journal.Close()
	}

	var report *plan.ExecutionReport
	if planFile != "" {
		pl, err := plan.LoadFile(planFile)
		if err != nil {
			return err
		}
		if prompt == "" {
			prompt = pl.Goal
		}
		observability.PrintPlan(pl)
		report = a.RunPlan(ctx, prompt, pl)
	} else {
		fmt.Printf("\nTask: %s\n", prompt)
		pl, err := a.CreatePlan(ctx, prompt)
		if err != nil {
			return err
		}
		observability.PrintPlan(pl)
		report = a.RunPlan(ctx, prompt, pl)
	}

	observability.PrintReport(report)
	return nil
}

// buildAgent wires model, policy, logger, journal, and connectors from
// the config.
func buildAgent(ctx context.Context, cfg *config.Config) (*agent.Agent, *store.RunStore, error) {
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		return nil, nil, errors.New("no enabled provider found in config")
	}

	apiKey := pCfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, nil, errors.New("API key required: set providers." + pName + ".api_key or the OPENAI_API_KEY env var")
	}

	var model llms.Model
	var err error
	switch pName {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(apiKey),
			openai.WithModel(pCfg.Model),
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		model, err = openai.New(opts...)
	default:
		return nil, nil, fmt.Errorf("provider %s not supported", pName)
	}
	if err != nil {
		return nil, nil, err
	}

	pol := policy.NewDefaultEngine()
	for _, name := range cfg.Policy.DeniedTools {
		pol.DenyTool(name)
	}
	for _, pattern := range cfg.Policy.DeniedPatterns {
		if err := pol.DenyPattern(pattern); err != nil {
			return nil, nil, fmt.Errorf("invalid policy pattern %q: %v", pattern, err)
		}
	}

	logger := observability.NewLogger()

	var journal *store.RunStore
	if cfg.Memory.Path != "" {
		journal, err = store.NewRunStore(cfg.Memory.Path)
		if err != nil {
			return nil, nil, err
		}
	}

	promptsDir := cfg.App.PromptsDir
	if promptsDir == "" {
		promptsDir = "./prompts"
	}
	prompts := agent.NewPromptManager(promptsDir)

	a := agent.New(model, prompts, pol, logger, journal)

	for name, cc := range cfg.Connectors {
		if !cc.Enabled {
			continue
		}
		if err := a.ConnectMCP(ctx, name, cc.Command, cc.Args...); err != nil {
			log.Printf("Warning: failed to connect to MCP server %s: %v", name, err)
		}
	}

	return a, journal, nil
}
