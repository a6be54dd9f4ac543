package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpOverlayModel shows keyboard shortcuts help
type HelpOverlayModel struct {
	visible bool
	keys    keyMap
	theme   Theme
}

// NewHelpOverlayModel creates a new help overlay
func NewHelpOverlayModel(keys keyMap, theme Theme) HelpOverlayModel {
	return HelpOverlayModel{keys: keys, theme: theme}
}

// Toggle toggles visibility
func (m *HelpOverlayModel) Toggle() {
	m.visible = !m.visible
}

// IsVisible returns true if overlay is showing
func (m HelpOverlayModel) IsVisible() bool {
	return m.visible
}

// Update handles input. Any key closes the overlay.
func (m HelpOverlayModel) Update(msg tea.Msg) (HelpOverlayModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	if _, ok := msg.(tea.KeyMsg); ok {
		m.visible = false
	}
	return m, nil
}

// View renders the help overlay
func (m HelpOverlayModel) View() string {
	if !m.visible {
		return ""
	}

	var b strings.Builder
	r := m.theme.Renderer

	titleStyle := r.NewStyle().Bold(true).Foreground(m.theme.Primary)
	b.WriteString(titleStyle.Render("Reviews Copilot Help"))
	b.WriteString("\n\n")

	sectionStyle := r.NewStyle().Bold(true).Foreground(m.theme.Secondary)
	keyStyle := r.NewStyle().Foreground(m.theme.Primary).Width(12)
	descStyle := r.NewStyle().Foreground(m.theme.Subtext)

	sections := []string{"NAVIGATION", "FILTERS", "GENERAL", "REVIEW DETAIL"}
	for i, group := range m.keys.FullHelp() {
		b.WriteString(sectionStyle.Render(sections[i]) + "\n")
		for _, binding := range group {
			writeBinding(&b, binding, keyStyle, descStyle)
		}
		b.WriteString("\n")
	}

	hintStyle := r.NewStyle().Faint(true).Italic(true)
	b.WriteString(hintStyle.Render("[Press any key to close]"))

	boxStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(1, 2)

	return boxStyle.Render(b.String())
}

func writeBinding(b *strings.Builder, k key.Binding, keyStyle, descStyle lipgloss.Style) {
	h := k.Help()
	b.WriteString("  " + keyStyle.Render(h.Key) + descStyle.Render(h.Desc) + "\n")
}
