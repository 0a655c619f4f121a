// Package tui renders the portfolio CLI's terminal output.
package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const AppName = "portfolio"

// LogoLines spell "zero" in block characters.
var LogoLines = []string{
	"▀▀█ █▀▀ █▀█ █▀█",
	" ▄▀ █▀▀ █▀▄ █ █",
	"▀▀▀ ▀▀▀ ▀ ▀ ▀▀▀",
}

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#3B82F6"),
	lipgloss.Color("#38BDF8"),
	lipgloss.Color("#FACC15"),
	lipgloss.Color("#F97316"),
}

var (
	PrimaryColor   = lipgloss.Color("#3B82F6")
	SecondaryColor = lipgloss.Color("#38BDF8")
	AccentColor    = lipgloss.Color("#FACC15")

	TextColor  = lipgloss.Color("#EAEAEA")
	MutedColor = lipgloss.Color("#94A3B8")

	ErrorColor   = lipgloss.Color("#EF4444")
	WarnColor    = lipgloss.Color("#FFE66D")
	SuccessColor = lipgloss.Color("#10B981")
)

var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	TimeStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Faint(true)

	TagStyle = lipgloss.NewStyle().
			Foreground(AccentColor)

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
				Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
			Foreground(WarnColor)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)
)

// ShowBanner prints the startup banner with version and listen address.
func ShowBanner(w io.Writer, version, addr string) {
	lines := make([]string, 0, len(LogoLines)+3)
	lines = append(lines, LogoLines...)
	lines = append(lines, "")

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("portfolio API %s", versionTag))
	} else {
		lines = append(lines, "portfolio API")
	}
	if addr != "" {
		lines = append(lines, "listening on "+addr)
	}

	var colored []string
	for i, line := range lines {
		if line == "" {
			colored = append(colored, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		colored = append(colored, style.Render(line))
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(SecondaryColor).
		Padding(1, 3)

	fmt.Fprintln(w, borderStyle.Render(lipgloss.JoinVertical(lipgloss.Center, colored...)))
	fmt.Fprintln(w, SeparatorStyle.Render("◆ ◇ ◆ ◇ ◆"))
}
