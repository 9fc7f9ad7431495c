package tui

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func send(m tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testChoices() ([]Choice, []Choice) {
	transforms := []Choice{
		{Label: "Filter", Value: "FilterByField"},
		{Label: "Rename", Value: "RenameFields"},
		{Label: "Limit", Value: "Limit"},
	}
	formats := []Choice{{Label: "JSON", Value: "json"}, {Label: "CSV", Value: "csv"}}
	return transforms, formats
}

func TestWizard_HappyPath(t *testing.T) {
	tr, fm := testChoices()
	var m tea.Model = NewWizardModel(PlainStyleSet(), tr, fm)

	m = send(m,
		runes("in.csv"),
		tea.KeyMsg{Type: tea.KeyEnter},
		tea.KeyMsg{Type: tea.KeySpace},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeySpace},
		tea.KeyMsg{Type: tea.KeyEnter},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	res, err := m.(WizardModel).Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	want := &WizardResult{InputPath: "in.csv", Transforms: []string{"FilterByField", "Limit"}, OutputFormat: "csv"}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("got %+v, want %+v", res, want)
	}
}

func TestWizard_ShowsChosenInputInLaterPhases(t *testing.T) {
	tr, fm := testChoices()
	var m tea.Model = NewWizardModel(PlainStyleSet(), tr, fm)
	if !strings.Contains(m.View(), "file extension") {
		t.Errorf("expected input hint, got %q", m.View())
	}
	m = send(m, runes("data/in.jsonl"), tea.KeyMsg{Type: tea.KeyEnter})

	view := m.View()
	if !strings.Contains(view, "data/in.jsonl") || !strings.Contains(view, "Transforms") {
		t.Errorf("expected chosen input above transforms, got %q", view)
	}
}

func TestRenderSuccess(t *testing.T) {
	if got := RenderSuccess(PlainStyleSet(), "done"); got != "✓ done\n" {
		t.Errorf("RenderSuccess = %q", got)
	}
}

func TestWizard_RequiresInput(t *testing.T) {
	tr, fm := testChoices()
	var m tea.Model = NewWizardModel(PlainStyleSet(), tr, fm)
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	if !strings.Contains(m.View(), "input path is required") {
		t.Errorf("expected validation message, got %q", m.View())
	}
	if _, err := m.(WizardModel).Result(); err == nil {
		t.Error("expected unfinished wizard to have no result")
	}
}

func TestWizard_Cancel(t *testing.T) {
	tr, fm := testChoices()
	var m tea.Model = NewWizardModel(PlainStyleSet(), tr, fm)
	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if _, err := m.(WizardModel).Result(); !errors.Is(err, ErrWizardCancelled) {
		t.Errorf("expected ErrWizardCancelled, got %v", err)
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(PlainStyleSet(), "Pipeline finished", []SummaryRow{{Key: "Run", Value: "abc"}})
	if !strings.Contains(out, "Pipeline finished") || !strings.Contains(out, "abc") {
		t.Errorf("unexpected summary %q", out)
	}
}

func TestDetectTheme(t *testing.T) {
	t.Setenv("CONFIGURA_THEME", "")
	t.Setenv("COLORFGBG", "")
	if DetectTheme("light").Name != "light" {
		t.Error("flag should select light theme")
	}
	t.Setenv("CONFIGURA_THEME", "light")
	if DetectTheme("").Name != "light" {
		t.Error("env should select light theme")
	}
	t.Setenv("CONFIGURA_THEME", "")
	t.Setenv("COLORFGBG", "0;15")
	if DetectTheme("").Name != "light" {
		t.Error("COLORFGBG should select light theme")
	}
	t.Setenv("COLORFGBG", "")
	if DetectTheme("").Name != "dark" {
		t.Error("expected dark default")
	}
}
