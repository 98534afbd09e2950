package progressui

import "github.com/charmbracelet/lipgloss"

// Same lime-green accent palette the teacher's dashboard uses.
const (
	colorLime     = "154"
	colorDarkGray = "238"
	colorGray     = "245"
	colorRed      = "196"
)

type styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
	Active  lipgloss.Style
	Label   lipgloss.Style
	Border  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorLime)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(colorLime)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorDarkGray)),
		Active:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorLime)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		Border:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorDarkGray)),
	}
}

func noColorStyles() styles {
	return styles{}
}
