package main

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"sermoncast/internal/ledger"
)

// renderHistoryTable formats publish attempts for the history command. The
// writer decides whether outcome cells get color: terminals do, pipes and
// test buffers do not.
func renderHistoryTable(writer io.Writer, attempts []*ledger.Attempt) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Started", "Video", "Outcome", "Duration", "Reason"})

	colorize := shouldColorize(writer)
	for _, attempt := range attempts {
		tw.AppendRow(table.Row{
			attempt.StartedAt.Local().Format("2006-01-02 15:04"),
			attempt.VideoID,
			outcomeCell(attempt, colorize),
			attemptDuration(attempt),
			attempt.Reason,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})
	return tw.Render()
}

func outcomeCell(attempt *ledger.Attempt, colorize bool) string {
	label := outcomeLabel(attempt)
	if !colorize {
		return label
	}
	switch attempt.Outcome {
	case ledger.StatusPublished:
		return text.Colors{text.FgGreen}.Sprint(label)
	case ledger.StatusFailed:
		return text.Colors{text.FgRed}.Sprint(label)
	default:
		return text.Colors{text.FgYellow}.Sprint(label)
	}
}

func outcomeLabel(attempt *ledger.Attempt) string {
	if attempt.FinishedAt == nil {
		return "in progress"
	}
	return string(attempt.Outcome)
}

func attemptDuration(attempt *ledger.Attempt) string {
	if attempt.FinishedAt == nil {
		return "-"
	}
	elapsed := attempt.FinishedAt.Sub(attempt.StartedAt).Round(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	return strconv.Itoa(int(elapsed.Seconds())) + "s"
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
