package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/arcanaland/proxymancer/internal/proxy"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	okColor      = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
)

// renderSummary prints what was printed and what was skipped
func renderSummary(w io.Writer, summary *proxy.Summary, written bool) {
	if len(summary.Printed) > 0 {
		rows := make([][]string, 0, len(summary.Printed))
		for _, p := range summary.Printed {
			rows = append(rows, []string{p.Name, strconv.Itoa(p.Copies), string(p.Source)})
		}
		headingColor.Fprintln(w, "Printed")
		fmt.Fprintln(w, renderTable([]string{"Card", "Copies", "Source"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
	}

	if len(summary.Skipped) > 0 {
		rows := make([][]string, 0, len(summary.Skipped))
		for _, s := range summary.Skipped {
			rows = append(rows, []string{s.Name, strconv.Itoa(s.Quantity), s.Reason})
		}
		warnColor.Fprintln(w, "Skipped")
		fmt.Fprintln(w, renderTable([]string{"Card", "Copies", "Reason"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
	}

	if !written {
		return
	}

	okColor.Fprintf(w, "Wrote %d %s on %d %s to %s\n",
		summary.Slots, plural(summary.Slots, "card", "cards"),
		summary.Pages, plural(summary.Pages, "page", "pages"),
		summary.Output)
	fmt.Fprintln(w, "Print at 100% scale (disable \"fit to page\") so cards come out at 2.5in × 3.5in.")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
