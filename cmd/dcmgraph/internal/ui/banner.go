package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	figure "github.com/common-nighthawk/go-figure"
)

// BannerStyle styles the startup ASCII banner.
var BannerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#2fa8a0")).
	Bold(true)

// SubtleStyle is used for separators and de-emphasized output.
var SubtleStyle = lipgloss.NewStyle().Faint(true)

// PrintBanner prints the "dcmgraph" ASCII art banner to stderr.
func PrintBanner() {
	banner := figure.NewFigure("dcmgraph", "banner3", true)
	fmt.Fprintln(os.Stderr, BannerStyle.Render(banner.String()))
	fmt.Fprintln(os.Stderr)
}
