package observability

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/proxilabs/proxi/internal/plan"
)

const (
	colorReset    = "\033[0m"
	colorBold     = "\033[1m"
	colorNeonCyan = "\033[96m"
	colorNeonMag  = "\033[95m"
)

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

func PrintBanner() {
	banner := `
    ____  _________  _  __ ____
   / __ \/ ___/ __ \| |/ //  _/
  / /_/ / /  / / / /|   / / /
 / ____/ /  / /_/ //   |_/ /
/_/   /_/   \____//_/|_/___/

   >> PLAN. DISPATCH. REPORT. <<
`

	width := termWidth()
	lines := strings.Split(banner, "\n")

	for _, l := range lines {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Printf("%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan+l, colorReset)
	}
}

func divider() string {
	w := termWidth()
	if w > 60 {
		w = 60
	}
	return strings.Repeat("=", w)
}

// PrintPlan renders the generated plan as indented JSON, the way the
// operator sees it before execution starts.
func PrintPlan(p *plan.Plan) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		fmt.Printf("Plan: %v\n", p)
		return
	}
	fmt.Printf("\nPlan created:\n%s\n\n", data)
}

// PrintReport renders the per-step outcomes and the aggregate verdict.
func PrintReport(report *plan.ExecutionReport) {
	fmt.Println(divider())
	for _, r := range report.Results {
		if r.Status == plan.StatusSuccess {
			fmt.Printf("  %s✓%s Step %d: %s\n", colorNeonCyan, colorReset, r.Index, r.Action)
		} else {
			fmt.Printf("  %s✗%s Step %d: %s — %s\n", colorNeonMag, colorReset, r.Index, r.Action, r.Error)
		}
	}
	verdict := "completed with errors"
	if report.Success {
		verdict = "succeeded"
	}
	fmt.Printf("%sExecution %s%s\n", colorBold, verdict, colorReset)
	fmt.Println(divider())
}
