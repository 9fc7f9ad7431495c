// Package tui renders styled terminal output and the interactive init
// wizard.
package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TermTheme holds all color values for a theme.
type TermTheme struct {
	Name string

	Accent lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Dim       lipgloss.Color

	Border       lipgloss.Color
	ActiveBorder lipgloss.Color
}

// DarkTheme is the default dark terminal theme.
var DarkTheme = TermTheme{
	Name:         "dark",
	Accent:       lipgloss.Color("#0ea5e9"),
	Success:      lipgloss.Color("#22c55e"),
	Warning:      lipgloss.Color("#eab308"),
	Error:        lipgloss.Color("#ef4444"),
	Primary:      lipgloss.Color("#e0e0e8"),
	Secondary:    lipgloss.Color("#888888"),
	Dim:          lipgloss.Color("#5a5a70"),
	Border:       lipgloss.Color("#2a2a3a"),
	ActiveBorder: lipgloss.Color("#0ea5e9"),
}

// LightTheme is the light terminal theme.
var LightTheme = TermTheme{
	Name:         "light",
	Accent:       lipgloss.Color("#0369a1"),
	Success:      lipgloss.Color("#15803d"),
	Warning:      lipgloss.Color("#a16207"),
	Error:        lipgloss.Color("#b91c1c"),
	Primary:      lipgloss.Color("#0f172a"),
	Secondary:    lipgloss.Color("#374151"),
	Dim:          lipgloss.Color("#4b5563"),
	Border:       lipgloss.Color("#d1d5db"),
	ActiveBorder: lipgloss.Color("#0369a1"),
}

// DetectTheme returns the theme named by the flag, the CONFIGURA_THEME
// environment variable, or the COLORFGBG heuristic, in that order.
func DetectTheme(flagVal string) TermTheme {
	if t, ok := themeByName(flagVal); ok {
		return t
	}
	if t, ok := themeByName(os.Getenv("CONFIGURA_THEME")); ok {
		return t
	}

	// COLORFGBG has the format "fg;bg"; 7 and 15 are light backgrounds.
	if colorfgbg := os.Getenv("COLORFGBG"); colorfgbg != "" {
		parts := strings.Split(colorfgbg, ";")
		if len(parts) >= 2 {
			bg := parts[len(parts)-1]
			if bg == "15" || bg == "7" {
				return LightTheme
			}
		}
	}
	return DarkTheme
}

func themeByName(name string) (TermTheme, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dark":
		return DarkTheme, true
	case "light":
		return LightTheme, true
	}
	return TermTheme{}, false
}

// StyleSet contains pre-computed lipgloss styles derived from a theme.
type StyleSet struct {
	Theme TermTheme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	DimTxt     lipgloss.Style
	SuccessTxt lipgloss.Style
	WarningTxt lipgloss.Style
	ErrorTxt   lipgloss.Style
	PrimaryTxt lipgloss.Style

	ActiveBorder   lipgloss.Style
	InactiveBorder lipgloss.Style
	Cursor         lipgloss.Style

	KbdKey  lipgloss.Style
	KbdDesc lipgloss.Style

	SummaryKey   lipgloss.Style
	SummaryValue lipgloss.Style
	BorderedBox  lipgloss.Style
}

// NewStyleSet creates a StyleSet from a theme.
func NewStyleSet(theme TermTheme) *StyleSet {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	boxed := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c)
	}

	return &StyleSet{
		Theme: theme,

		Title:      fg(theme.Accent).Bold(true),
		Subtitle:   fg(theme.Secondary),
		DimTxt:     fg(theme.Dim),
		SuccessTxt: fg(theme.Success),
		WarningTxt: fg(theme.Warning).Bold(true),
		ErrorTxt:   fg(theme.Error).Bold(true),
		PrimaryTxt: fg(theme.Primary),

		ActiveBorder:   boxed(theme.ActiveBorder),
		InactiveBorder: boxed(theme.Border),
		Cursor:         fg(theme.Accent),

		KbdKey:  fg(theme.Primary).Background(theme.Dim).Padding(0, 1),
		KbdDesc: fg(theme.Dim),

		SummaryKey:   fg(theme.Secondary).Width(12),
		SummaryValue: fg(theme.Primary).Bold(true),
		BorderedBox:  boxed(theme.Border).Padding(0, 1),
	}
}

// PlainStyleSet returns styles that render text unchanged, for output that
// is not a terminal.
func PlainStyleSet() *StyleSet {
	plain := lipgloss.NewStyle()
	return &StyleSet{
		Title: plain, Subtitle: plain, DimTxt: plain, SuccessTxt: plain,
		WarningTxt: plain, ErrorTxt: plain, PrimaryTxt: plain,
		ActiveBorder: plain, InactiveBorder: plain, Cursor: plain,
		KbdKey: plain, KbdDesc: plain,
		SummaryKey: plain.Width(12), SummaryValue: plain, BorderedBox: plain,
	}
}
