package app

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"menu-planner/internal/metrics"
	"menu-planner/internal/planner"
	"menu-planner/internal/shopping"
	"menu-planner/internal/storage"
)

// RenderArchive prints both menus and the realistic shopping list.
func RenderArchive(w io.Writer, a *storage.Archive) {
	fmt.Fprintf(w, "Run %s, week of %s\n", a.RunID, a.WeekOf.Format("Monday 02/01/2006"))

	fmt.Fprintln(w, "\n=== REALISTIC MENU ===")
	renderMenu(w, a.Realistic)

	fmt.Fprintln(w, "\n=== ALTERNATIVE MENU ===")
	renderMenu(w, a.Alternative)

	fmt.Fprintln(w, "\n=== SHOPPING LIST ===")
	renderShopping(w, a.Realistic.Shopping)

	if a.Persisted != nil {
		fmt.Fprintf(w, "\nSink: %d meals saved, %d failed\n", a.Persisted.Succeeded, a.Persisted.Failed)
	}
	if a.Diagnostics > 0 {
		fmt.Fprintf(w, "%d input values could not be read, see the log\n", a.Diagnostics)
	}
}

func renderMenu(w io.Writer, res planner.Result) {
	for _, m := range res.Meals {
		fmt.Fprintf(w, "%-16s %-28s %s", m.At.Format("Mon 02/01 15:04"), m.Name, m.Participants)
		if m.PrepMinutes != nil {
			fmt.Fprintf(w, " (%d mins)", *m.PrepMinutes)
		}
		fmt.Fprintln(w)
		if m.Availability != "" {
			fmt.Fprintf(w, "                 %s\n", m.Availability)
		}
		if len(m.Remarks) > 0 {
			fmt.Fprintf(w, "                 Note: %s\n", m.RemarksText())
		}
	}
	s := res.Stats
	fmt.Fprintf(w, "%d/%d slots filled, %d relaxed, %d leftovers\n", s.Resolved, s.Slots, s.Relaxed, s.Leftovers)
}

func renderShopping(w io.Writer, lines []shopping.Line) {
	missing := shopping.Missing(lines)
	if len(missing) == 0 {
		fmt.Fprintln(w, "Nothing to buy.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, l := range missing {
		fmt.Fprintf(tw, "- %s\t%s %s\t(need %s, have %s)\n", l.Name, amount(l.ToBuy), l.Unit, amount(l.Required), amount(l.Initial))
	}
	tw.Flush()
}

// RenderRuns prints run metrics followed by the host footprint.
func RenderRuns(w io.Writer, runs []metrics.RunMetric, health metrics.SysHealth) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tMODE\tDATE\tFILLED\tRELAXED\tLEFTOVERS\tDIAGNOSTICS\tLATENCY")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%d\t%dms\n",
				r.RunID, r.Mode, r.Timestamp.Local().Format("2006-01-02 15:04"),
				r.Resolved, r.Slots, r.Relaxed, r.Leftovers, r.Diagnostics, r.LatencyMS)
		}
		tw.Flush()
	}

	fmt.Fprintln(w, "\nSystem health")
	fmt.Fprintf(w, "  RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(w, "  Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(w, "  Database: %s\n", health.DatabaseSize)
	fmt.Fprintf(w, "  Archive: %s in %d files\n", health.ArchiveSize, health.ArchiveFiles)
}

func amount(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
