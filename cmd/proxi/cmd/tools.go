package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/proxilabs/proxi/internal/mcp"
	"github.com/proxilabs/proxi/pkg/config"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools offered by the configured MCP servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		total := 0
		for name, cc := range cfg.Connectors {
			if !cc.Enabled {
				continue
			}
			client := mcp.NewClient(cc.Command, cc.Args...)
			if err := client.Connect(ctx); err != nil {
				log.Printf("Warning: failed to connect to MCP server %s: %v", name, err)
				continue
			}
			for _, t := range client.ListTools(ctx) {
				desc := t.Description
				if desc == "" {
					desc = "(no description)"
				}
				fmt.Printf("%s/%s\t%s\n", name, t.Name, desc)
				total++
			}
			_ = client.Disconnect()
		}

		if total == 0 {
			fmt.Println("No tools available.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
