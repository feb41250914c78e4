package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proxilabs/proxi/internal/plan"
	"github.com/proxilabs/proxi/internal/store"
	"github.com/proxilabs/proxi/pkg/config"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show journaled runs, or the step results of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if cfg.Memory.Path == "" {
			return errors.New("run journaling is disabled: set memory.path in the config")
		}

		journal, err := store.NewRunStore(cfg.Memory.Path)
		if err != nil {
			return err
		}
		defer journal.Close()

		if len(args) == 1 {
			results, err := journal.GetStepResults(args[0])
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No such run.")
				return nil
			}
			for _, r := range results {
				if r.Status == plan.StatusSuccess {
					fmt.Printf("%d\t%s\t%s\n", r.Index, r.Status, r.Action)
				} else {
					fmt.Printf("%d\t%s\t%s\t%s\n", r.Index, r.Status, r.Action, r.Error)
				}
			}
			return nil
		}

		runs, err := journal.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs journaled yet.")
			return nil
		}
		for _, r := range runs {
			verdict := "FAILED"
			if r.Success {
				verdict = "OK"
			}
			fmt.Printf("%s\t%s\t%d steps\t%s\t%s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Steps, verdict, r.Prompt)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(historyCmd)
}
