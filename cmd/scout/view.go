package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ssnnd0/Saxon-Scout/scoutform"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#8BC34A"))
	stepStyle    = lipgloss.NewStyle().Faint(true)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	offlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFC107"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

func (m *model) View() string {
	switch m.phase {
	case phaseLogin:
		return m.viewLogin()
	case phaseLoading:
		return titleStyle.Render("Saxon Scout") + "\n\nLoading season...\n"
	case phaseForm:
		return m.viewForm()
	}
	return ""
}

func (m *model) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Saxon Scout"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Username") + "\n" + m.username.View() + "\n")
	b.WriteString(labelStyle.Render("Password") + "\n" + m.password.View() + "\n\n")
	if m.loginErr != "" {
		b.WriteString(errorStyle.Render(m.loginErr) + "\n")
	}
	if m.loadErr != "" {
		b.WriteString(errorStyle.Render(m.loadErr) + "\n")
	}
	b.WriteString(helpStyle.Render("enter: sign in · ctrl+c: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *model) viewForm() string {
	var b strings.Builder

	header := "Saxon Scout"
	if m.season != nil {
		header = fmt.Sprintf("Saxon Scout · %s", m.season.Name)
	}
	b.WriteString(titleStyle.Render(header))
	if m.offline {
		b.WriteString("  " + offlineStyle.Render("[OFFLINE]"))
	}
	b.WriteString("\n")

	stepTitle := "Match Info"
	if cat := m.form.Category(); cat != nil {
		stepTitle = cat.Title
	}
	b.WriteString(stepStyle.Render(fmt.Sprintf("Step %d/%d · %s",
		m.form.Step()+1, m.form.LastStep()+1, stepTitle)))
	b.WriteString("\n\n")

	if m.form.Status() == scoutform.StatusSubmitted && m.banner != "" {
		b.WriteString(bannerStyle.Render(m.banner) + "\n")
		return b.String()
	}
	if m.form.Status() == scoutform.StatusSubmitting {
		b.WriteString("Submitting...\n")
		return b.String()
	}

	refs := m.stepFields()
	errs := m.form.Errors()
	for i, ref := range refs {
		b.WriteString(m.renderField(ref, i == m.fieldIdx))
		if msg, ok := errs[ref.id]; ok {
			b.WriteString("  " + errorStyle.Render(msg) + "\n")
		}
	}

	if err := m.form.SubmitError(); err != nil {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Submit failed: %v", err)) + "\n")
	}
	if m.syncLine != "" {
		b.WriteString("\n" + m.syncLine + "\n")
	}

	b.WriteString("\n")
	help := "tab: next field · ctrl+n/ctrl+p: step · ctrl+y: sync · ctrl+c: quit"
	if m.form.OnLastStep() {
		help = "ctrl+s: submit · " + help
	}
	b.WriteString(helpStyle.Render(help))
	b.WriteString("\n")
	return b.String()
}

func (m *model) renderField(ref fieldRef, focused bool) string {
	marker := "  "
	if focused {
		marker = focusStyle.Render("> ")
	}

	label := labelStyle.Render(ref.label)
	var value string
	switch {
	case isTextual(ref.ftype) && focused:
		value = m.input.View()
	case len(ref.options) > 0:
		value = m.renderOptions(ref)
	case ref.ftype == scoutform.FieldBoolean:
		if v, _ := m.currentValue(ref).(bool); v {
			value = "[x] yes"
		} else {
			value = "[ ] no"
		}
	case ref.ftype == scoutform.FieldRating:
		n, _ := m.currentValue(ref).(int)
		value = strings.Repeat("★", n) + strings.Repeat("☆", scoutform.RatingMax-n)
	default:
		value = valueText(m.currentValue(ref))
	}

	return fmt.Sprintf("%s%s: %s\n", marker, label, value)
}

func (m *model) renderOptions(ref fieldRef) string {
	current := valueText(m.currentValue(ref))
	parts := make([]string, 0, len(ref.options))
	for _, o := range ref.options {
		label := o.Label
		if label == "" {
			label = o.Value
		}
		if o.Value == current {
			parts = append(parts, focusStyle.Render("("+label+")"))
		} else {
			parts = append(parts, " "+label+" ")
		}
	}
	return strings.Join(parts, " ")
}
