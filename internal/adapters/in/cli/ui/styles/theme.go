package styles

import "github.com/charmbracelet/lipgloss"

// Theme contains the composed styles for CLI output.
var Theme = struct {
	Muted lipgloss.Style
	Bold  lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	BadgeSecure  lipgloss.Style
	BadgePlain   lipgloss.Style
	BadgeUnknown lipgloss.Style

	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
	TableBorder lipgloss.Style
}{
	Muted: lipgloss.NewStyle().Foreground(ColorTextMuted),
	Bold:  lipgloss.NewStyle().Bold(true).Foreground(ColorText),

	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Info:    lipgloss.NewStyle().Foreground(ColorInfo),

	BadgeSecure: lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorSuccess).
		Padding(0, 1),
	BadgePlain: lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorWarning).
		Padding(0, 1),
	BadgeUnknown: lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorTextMuted).
		Padding(0, 1),

	TableHeader: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		Padding(0, 1),
	TableCell: lipgloss.NewStyle().
		Foreground(ColorText).
		Padding(0, 1),
	TableBorder: lipgloss.NewStyle().Foreground(ColorBorder),
}

// RenderModeBadge returns a badge for a site's TLS mode.
func RenderModeBadge(mode string) string {
	switch mode {
	case "auto", "custom":
		return Theme.BadgeSecure.Render(IconLock + " " + mode)
	case "http":
		return Theme.BadgePlain.Render(IconOpen + " " + mode)
	default:
		return Theme.BadgeUnknown.Render(mode)
	}
}

// RenderSuccess returns a styled success message.
func RenderSuccess(msg string) string {
	return Theme.Success.Render(IconSuccess + " " + msg)
}

// RenderWarning returns a styled warning message.
func RenderWarning(msg string) string {
	return Theme.Warning.Render(IconWarning + " " + msg)
}

// RenderInfo returns a styled info message.
func RenderInfo(msg string) string {
	return Theme.Info.Render(IconInfo + " " + msg)
}
