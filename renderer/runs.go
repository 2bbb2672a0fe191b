package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/treasury/store"
)

// RunsMarkdown lists archived simulation runs.
func RunsMarkdown(runs []store.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Simulation Runs\n\n")
	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintln(w, "| Run | Created | Scenario | Horizon | Paths | Seed | Prices of |")
		fmt.Fprintln(w, "|:---|:---|:---|---:|---:|---:|:---|")
		for _, r := range runs {
			fmt.Fprintf(w, "| %s | %s | %s | %d | %d | %d | %s |\n",
				r.ID,
				r.CreatedAt.Format("2006-01-02 15:04:05"),
				r.Scenario,
				r.HorizonDays,
				r.NumPaths,
				r.Seed,
				r.SnapshotDate,
			)
		}
		return len(runs) > 0
	})
	if len(runs) == 0 {
		fmt.Fprintln(&b, "No run archived yet.")
	}
	return b.String()
}
