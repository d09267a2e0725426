package tui

import (
	"figview/internal/core/domain"
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	quotaStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// RenderQuota formats a quota readout for the terminal.
func RenderQuota(status domain.QuotaStatus) string {
	if status.Unlimited {
		return quotaStyle.Render(titleStyle.Render("Usage") + "  " + mutedStyle.Render("untracked, no limit"))
	}

	remaining := status.Remaining()
	count := fmt.Sprintf("%d / %d used today", status.Used, status.Limit)

	left := okStyle.Render(fmt.Sprintf("%d left", remaining))
	if remaining == 0 {
		left = errorStyle.Render("limit reached")
	}

	return quotaStyle.Render(fmt.Sprintf("%s  %s  %s\n%s",
		titleStyle.Render("Usage"), count, left, mutedStyle.Render(status.UserID+" · "+status.Date)))
}

// RenderResult is the single line printed once a generation finished.
func RenderResult(path string) string {
	return okStyle.Render("✓") + " saved result to " + titleStyle.Render(path)
}

func RenderError(err error) string {
	return errorStyle.Render("✗ " + err.Error())
}
