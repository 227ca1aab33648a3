package phasedapp

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/BrianJOC/env-bootstrap/phases"
)

const (
	narrowLayoutWidth = 80
	minPanelWidth     = 30
	visiblePhaseLogs  = 5
)

var titleCase = cases.Title(language.English)

func (m *model) View() string {
	sections := []string{
		m.renderHeader(),
		m.renderBody(),
	}
	if m.cfg.Summary != nil {
		sections = append(sections, m.renderSummaryPanel())
	}
	sections = append(sections, m.renderPromptPanel(), statusBarStyle.Render(m.statusMsg))
	if m.helpVisible {
		sections = append(sections, renderHelp())
	} else {
		sections = append(sections, footerStyle.Render("↑/↓ or j/k move • Enter submit • Tab switch focus • c copy summary • r restart • ? help • q quit"))
	}

	view := lipgloss.JoinVertical(lipgloss.Left, sections...)
	width := m.width
	if width <= 0 {
		width = lipgloss.Width(view)
	}
	height := max(lipgloss.Height(view), m.height)
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, view)
}

func (m *model) renderHeader() string {
	title := titleStyle.Render(m.cfg.Title)
	progress := subtitleStyle.Render(fmt.Sprintf("Progress: %d/%d complete", completedCount(m.phases), len(m.order)))
	if m.pipelineActive {
		progress = m.spinner.View() + " " + progress
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", progress)
}

func (m *model) renderBody() string {
	width := m.viewportWidth()
	if width < narrowLayoutWidth {
		return lipgloss.JoinVertical(lipgloss.Left, m.renderPhaseList(width), m.renderPhaseDetails(width))
	}
	left := max(width/2-1, minPanelWidth)
	right := max(width-left-2, minPanelWidth)
	gap := lipgloss.NewStyle().Width(2).Render(" ")
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderPhaseList(left), gap, m.renderPhaseDetails(right))
}

func (m *model) renderPhaseList(width int) string {
	focused := m.focus == focusPhases
	items := make([]string, 0, len(m.order))
	for idx, id := range m.order {
		if state := m.phases[id]; state != nil {
			items = append(items, phaseItemView(state, idx == m.selectedPhase, focused))
		}
	}
	style := styleForWidth(listPanelStyle, width)
	if focused {
		style = style.Copy().BorderForeground(activeBorderColor)
	}
	return style.Render(strings.Join(items, "\n"))
}

func (m *model) renderPhaseDetails(width int) string {
	style := styleForWidth(detailPanelStyle, width)
	state := m.currentPhaseState()
	if state == nil {
		return style.Render("No phases registered")
	}

	body := []string{
		detailTitleStyle.Render(state.meta.Title),
		infoTextStyle.Render(state.meta.Description),
		infoTextStyle.Render("Status: " + titleCase.String(state.status.String())),
	}
	if state.err != nil {
		body = append(body, errorTextStyle.Render(fmt.Sprintf("Error: %v", state.err)))
	}
	if len(state.logs) > 0 {
		entries := state.logs
		if len(entries) > visiblePhaseLogs {
			entries = entries[len(entries)-visiblePhaseLogs:]
		}
		logs := logSectionStyle.Render("Recent events:")
		for _, line := range entries {
			logs += "\n" + logTextStyle.Render("• "+line)
		}
		body = append(body, logs)
	}
	return style.Render(strings.Join(body, "\n"))
}

func (m *model) renderSummaryPanel() string {
	style := styleForWidth(summaryPanelStyle, m.viewportWidth())
	lines := m.summaryLines()
	if len(lines) == 0 {
		return style.Render(summaryTitleStyle.Render("Summary") + "\n" + disabledTextStyle.Render("No environments yet"))
	}
	var b strings.Builder
	b.WriteString(summaryTitleStyle.Render(fmt.Sprintf("Summary (%d)", len(lines))))
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(infoTextStyle.Render("• " + line))
	}
	return style.Render(b.String())
}

func (m *model) renderPromptPanel() string {
	style := styleForWidth(promptPanelStyle, m.viewportWidth())
	if !m.prompting() {
		content := "No input requested"
		if m.pipelineActive {
			content = "Working…"
		}
		return style.Render("Prompt\n" + content)
	}
	if m.focus == focusPrompt {
		style = style.Copy().BorderForeground(activeBorderColor)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s • %s\n", m.active.meta.Title, m.active.input.Label)
	if desc := m.active.input.Description; desc != "" {
		b.WriteString(infoTextStyle.Render(desc))
		b.WriteString("\n")
	}
	if m.active.reason != "" {
		b.WriteString(errorTextStyle.Render(m.active.reason))
		b.WriteString("\n")
	}

	if m.isChoicePrompt() {
		hint := "Use ↑/↓, j/k or number keys. Enter to confirm."
		if m.active.input.Kind == phases.InputKindConfirm {
			hint = "y/n or ↑/↓. Enter to confirm."
		}
		b.WriteString(subtitleStyle.Render(hint))
		b.WriteString("\n\n")
		b.WriteString(m.renderSelectOptions())
	} else {
		b.WriteString("> ")
		b.WriteString(m.prompt.View())
	}
	return style.Render(b.String())
}

func (m *model) renderSelectOptions() string {
	options := m.active.input.Options
	if len(options) == 0 {
		return "No options available"
	}
	lines := make([]string, 0, len(options))
	for idx, opt := range options {
		cursor := " "
		if idx == m.selectIndex {
			cursor = ">"
		}
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		line := fmt.Sprintf("%s %d. %s", cursor, idx+1, label)
		if opt.Description != "" {
			line += ": " + opt.Description
		}
		if idx == m.selectIndex {
			line = selectedOptionStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderHelp() string {
	help := []string{
		"Key Bindings:",
		"  ↑/↓ or j/k   Move selection",
		"  Enter        Submit the current answer",
		"  Tab          Switch focus between phases and prompt",
		"  Esc          Cancel the prompt or hide help",
		"  c            Copy the summary to the clipboard",
		"  r / Ctrl+R   Restart once the pipeline has stopped",
		"  ?            Toggle this help",
		"  q / Ctrl+C   Quit",
	}
	return helpStyle.Render(strings.Join(help, "\n"))
}

func (m *model) viewportWidth() int {
	if m.width > 0 {
		return max(m.width, 40)
	}
	return 100
}

func styleForWidth(base lipgloss.Style, totalWidth int) lipgloss.Style {
	style := base.Copy()
	if totalWidth <= 0 {
		return style.Width(0)
	}
	frameWidth, _ := base.GetFrameSize()
	return style.Width(max(totalWidth-frameWidth, 0))
}

var (
	titleStyle          = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E0AAFF"))
	subtitleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	listPanelStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4C566A")).Padding(0, 1)
	detailPanelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4C566A")).Padding(0, 1)
	summaryPanelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#0EA5E9")).Padding(0, 1).MarginTop(1)
	promptPanelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4C566A")).Padding(0, 1).MarginTop(1)
	statusBarStyle      = lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("#312E81")).Foreground(lipgloss.Color("#E0E7FF"))
	footerStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8")).Padding(0, 1).MarginTop(1)
	helpStyle           = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7C3AED")).Padding(1, 2).MarginTop(1)
	detailTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FDE047"))
	summaryTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7DD3FC"))
	infoTextStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#CBD5F5"))
	errorTextStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	disabledTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#475569"))
	selectedOptionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA"))
	logSectionStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A5B4FC")).Bold(true)
	logTextStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E7FF"))
	activeBorderColor   = lipgloss.Color("#A78BFA")
)

var statusStyles = map[phaseStatus]lipgloss.Style{
	statusPending: lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8")),
	statusRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F97316")).Bold(true),
	statusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399")),
	statusFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")),
}

var statusIcons = map[phaseStatus]string{
	statusPending: "•",
	statusRunning: "⟳",
	statusSuccess: "✔",
	statusFailed:  "✖",
}

func phaseItemView(state *phaseState, selected, focused bool) string {
	label := fmt.Sprintf("%s %s", statusIcons[state.status], state.meta.Title)
	style := statusStyles[state.status]
	if selected {
		style = style.Copy().Bold(true)
		if focused {
			style = style.Copy().Underline(true).Foreground(activeBorderColor)
		}
	}
	return style.Render(label)
}
