package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Terminal colors, ANSI 256.
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorCmd    = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorAccent)
	styleOK      = lipgloss.NewStyle().Foreground(colorOK)
	styleWarn    = lipgloss.NewStyle().Foreground(colorWarn)
	styleFail    = lipgloss.NewStyle().Foreground(colorFail)
	styleMuted   = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader  = styleMuted.Bold(true)
	styleCommand = lipgloss.NewStyle().Foreground(colorCmd)
	styleKey     = styleMuted.Width(12)
)

const iconArrow = "→"

// status prints one line led by a colored icon.
func status(icon string, iconStyle lipgloss.Style, msg string) {
	fmt.Println(iconStyle.Render(icon) + " " + msg)
}

func printSuccess(format string, args ...any) {
	status("✓", styleOK, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	status("✗", styleFail, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	status("!", styleWarn, styleWarn.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	status("›", styleMuted, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + styleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path or render range.
func printFile(path string) {
	fmt.Println("  " + styleDim.Render(iconArrow) + " " + styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + styleValue.Render(value))
}

// printSetStats prints size, combination space and coverage of a DNA set.
func printSetStats(size int, capacity uint64, coverage float64) {
	fmt.Println("  " +
		styleNumber.Render(fmt.Sprint(size)) + styleDim.Render(" vectors · ") +
		styleNumber.Render(fmt.Sprint(capacity)) + styleDim.Render(" combinations · ") +
		styleNumber.Render(fmt.Sprintf("%.2f%%", coverage*100)) + styleDim.Render(" used"))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Println(styleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// swatch renders a "#rrggbb" color as a colored block followed by its value.
func swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██") + " " + styleDim.Render(hex)
}

// newTable builds the rounded table used by inspect, with the first column
// as row labels.
func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader.Padding(0, 1)
			case col == 0:
				return styleMuted.Padding(0, 1)
			}
			return styleValue.Padding(0, 1)
		})
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
