// Package utils holds the terminal output helpers used by the CLI commands.
package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// Gruvbox-inspired palette
var (
	gruvboxFgDark      = text.Colors{text.FgHiBlack}
	gruvboxFgLight     = text.Colors{text.FgWhite}
	gruvboxRed         = text.Colors{text.FgRed}
	gruvboxGreen       = text.Colors{text.FgGreen}
	gruvboxYellow      = text.Colors{text.FgYellow}
	gruvboxBlue        = text.Colors{text.FgBlue}
	gruvboxAqua        = text.Colors{text.FgCyan}
	gruvboxBlueBright  = text.Colors{text.FgHiBlue}
	gruvboxAquaBright  = text.Colors{text.FgHiCyan}
	gruvboxGreenBright = text.Colors{text.FgHiGreen}
	gruvboxBold        = text.Colors{text.Bold}
)

// Theme - exported theme colors for consistent UI
var Theme = struct {
	Success     text.Colors
	Info        text.Colors
	Warning     text.Colors
	Error       text.Colors
	Heading     text.Colors
	Subtle      text.Colors
	Accent      text.Colors
	Title       text.Colors
	Divider     text.Colors
	TableHeader text.Colors
	TableBorder text.Colors
	TableRow    text.Colors
	TableAltRow text.Colors
	Code        text.Colors
}{
	Success:     gruvboxGreen,
	Info:        gruvboxBlue,
	Warning:     gruvboxYellow,
	Error:       gruvboxRed,
	Heading:     append(gruvboxAquaBright, text.Bold),
	Subtle:      gruvboxFgDark,
	Accent:      gruvboxAqua,
	Title:       append(gruvboxAquaBright, text.Bold),
	Divider:     gruvboxFgDark,
	TableHeader: append(gruvboxBlueBright, text.Bold),
	TableBorder: gruvboxBlue,
	TableRow:    gruvboxFgLight,
	TableAltRow: text.Colors{text.FgWhite, text.Faint},
	Code:        gruvboxGreenBright,
}

// Output is where the Print helpers write. Tests swap it for a buffer.
var Output io.Writer = os.Stdout

// PrintHeading prints a formatted heading
func PrintHeading(title string) {
	fmt.Fprintln(Output, Theme.Heading.Sprint(title))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintln(Output, Theme.Success.Sprint("✓ ")+message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Fprintln(Output, Theme.Info.Sprint("ℹ ")+message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintln(Output, Theme.Warning.Sprint("⚠ ")+message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintln(Output, Theme.Error.Sprint("✗ ")+message)
}

// PrintKeyValue prints a key-value pair
func PrintKeyValue(key, value string) {
	fmt.Fprintf(Output, "%s: %s\n", gruvboxBold.Sprint(key), value)
}

// PrintDivider prints a horizontal divider
func PrintDivider() {
	fmt.Fprintln(Output, Theme.Divider.Sprint(strings.Repeat("-", 51)))
}

// PrintCode prints a code block indented and colored
func PrintCode(code string) {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	fmt.Fprintln(Output, Theme.Code.Sprint(strings.Join(lines, "\n")))
}

// Preview collapses whitespace in s and truncates it to width cells
func Preview(s string, width int) string {
	flat := strings.Join(strings.Fields(s), " ")
	return truncate.StringWithTail(flat, uint(width), "…")
}

// Wrap word-wraps s at width
func Wrap(s string, width int) string {
	return wordwrap.String(s, width)
}

// NewTable creates a table writer with the default styling
func NewTable(title string) table.Writer {
	t := table.NewWriter()

	if title != "" {
		t.SetTitle(title)
	}

	style := table.StyleLight
	style.Color.Header = Theme.TableHeader
	style.Color.Border = Theme.TableBorder
	style.Color.Row = Theme.TableRow
	style.Color.RowAlternate = Theme.TableAltRow
	style.Title.Colors = Theme.Title
	style.Title.Align = text.AlignCenter
	style.Options.SeparateRows = false
	style.Box.PaddingLeft = " "
	style.Box.PaddingRight = " "
	t.SetStyle(style)

	return t
}

// RenderTable renders headers and rows as a table string
func RenderTable(title string, headers []string, rows [][]string) string {
	t := NewTable(title)

	headerRow := table.Row{}
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tableRow := table.Row{}
		for _, cell := range row {
			tableRow = append(tableRow, cell)
		}
		t.AppendRow(tableRow)
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignCenter,
		})
	}
	t.SetColumnConfigs(configs)

	return t.Render()
}

// PrintTable prints a table with headers and rows
func PrintTable(title string, headers []string, rows [][]string) {
	fmt.Fprintln(Output, RenderTable(title, headers, rows))
}

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#83a598")).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#504945")).
	Padding(0, 1)

// RenderHeader renders a bordered header block of title and lines
func RenderHeader(title string, lines ...string) string {
	parts := append([]string{lipgloss.NewStyle().Bold(true).Render(title)}, lines...)
	return headerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// RenderMarkdown renders markdown for the terminal, wrapping at width.
// It falls back to word-wrapped plain text if the renderer fails.
func RenderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return Wrap(md, width)
	}

	out, err := r.Render(md)
	if err != nil {
		return Wrap(md, width)
	}
	return out
}
