package tui

import "github.com/charmbracelet/lipgloss"

var (
	blue  = lipgloss.Color("75")
	green = lipgloss.Color("76")
	red   = lipgloss.Color("204")
	dim   = lipgloss.Color("243")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(dim)
	barStyle      = lipgloss.NewStyle().Foreground(blue)
	trackStyle    = lipgloss.NewStyle().Foreground(dim)
	doneStyle     = lipgloss.NewStyle().Foreground(green)
	faultStyle    = lipgloss.NewStyle().Foreground(red)
	activeStyle   = lipgloss.NewStyle().Foreground(blue).Bold(true)
	pendingStyle  = lipgloss.NewStyle().Foreground(dim)
	bannerStyle   = lipgloss.NewStyle().Foreground(red).Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(red)
)
