package sheets

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"tournament-stats/internal/stats"
)

// ConsoleWriter prints rows instead of appending them. Used for -dry-run.
type ConsoleWriter struct {
	out        io.Writer
	headerDone bool
	rows       int
}

func NewConsoleWriter(out io.Writer) *ConsoleWriter {
	return &ConsoleWriter{out: out}
}

func (c *ConsoleWriter) AppendRows(ctx context.Context, rows []stats.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	if !c.headerDone {
		fmt.Fprintln(tw, strings.Join(stats.Headers, "\t"))
		c.headerDone = true
	}
	for _, r := range rows {
		cells := r.Values()
		parts := make([]string, len(cells))
		for i, v := range cells {
			parts[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(tw, strings.Join(parts, "\t"))
	}
	c.rows += len(rows)
	return tw.Flush()
}

// Rows returns how many rows have been printed.
func (c *ConsoleWriter) Rows() int {
	return c.rows
}
