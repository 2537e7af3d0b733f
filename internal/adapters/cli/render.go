// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting and delegate
// business logic to services.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/strata/internal/core/consultation"
	"github.com/example/strata/internal/core/threshold"
)

const rule = "────────────────────────────────────────────────────────────────"

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	gray   = color.New(color.FgHiBlack)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
)

// statusLabel colours a KPI status. no_data renders gray.
func statusLabel(s threshold.Status) string {
	label := fmt.Sprintf("%-9s", strings.ToUpper(string(s)))
	switch s {
	case threshold.StatusGreen:
		return green.Sprint(label)
	case threshold.StatusYellow:
		return yellow.Sprint(label)
	case threshold.StatusRed:
		return red.Sprint(label)
	case threshold.StatusException:
		return cyan.Sprint(label)
	default:
		return gray.Sprint(label)
	}
}

func assigneeLabel(s consultation.Status) string {
	label := fmt.Sprintf("%-11s", s)
	switch s {
	case consultation.StatusCompleted:
		return green.Sprint(label)
	case consultation.StatusInProgress:
		return yellow.Sprint(label)
	case consultation.StatusOverdue:
		return red.Sprint(label)
	default:
		return gray.Sprint(label)
	}
}

func warn(out io.Writer, msg string) {
	fmt.Fprintf(out, "%s %s\n", yellow.Sprint("⚠"), msg)
}

func fmtFloat(f *float64, unit string) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%s", *f, unit)
}

func progressBar(pct float64) string {
	const width = 20
	filled := int(pct / 100 * width)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
