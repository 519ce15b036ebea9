package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/linksphere/internal/client/models"
)

type palette struct {
	prompt  lipgloss.Style
	title   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
}

// paletteFor picks ANSI colours that read well on the given background.
func paletteFor(t models.Theme) palette {
	if t == models.ThemeDark {
		return palette{
			prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
			title:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
			muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			warning: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		}
	}
	return palette{
		prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		title:   lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
}
