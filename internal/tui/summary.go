package tui

import (
	"fmt"
	"strings"
)

// SummaryRow represents a key-value pair in a summary box.
type SummaryRow struct {
	Key   string
	Value string
}

// RenderSummary renders a titled key/value grid inside the bordered box
// style.
func RenderSummary(styles *StyleSet, title string, rows []SummaryRow) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %s\n", styles.SummaryKey.Render(row.Key), styles.SummaryValue.Render(row.Value))
	}
	return styles.BorderedBox.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

// RenderSuccess formats a completion line.
func RenderSuccess(styles *StyleSet, msg string) string {
	return styles.SuccessTxt.Render("✓") + " " + msg + "\n"
}

// RenderError formats a fatal error line.
func RenderError(styles *StyleSet, err error) string {
	return styles.ErrorTxt.Render("ERROR:") + " " + err.Error() + "\n"
}

// RenderWarning formats a warning line.
func RenderWarning(styles *StyleSet, msg string) string {
	return styles.WarningTxt.Render("WARNING:") + " " + msg + "\n"
}
