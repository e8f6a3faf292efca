package render

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	sectionHeaderStyle = color.New(color.Bold, color.FgHiWhite)
	nameStyle          = color.New(color.FgCyan, color.Bold)
	addressStyle       = color.New(color.FgWhite)
	faintStyle         = color.New(color.Faint)
	successStyle       = color.New(color.FgGreen)
	failureStyle       = color.New(color.FgRed)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	// Capitalize first letter
	if len(message) > 0 {
		message = strings.ToUpper(message[:1]) + message[1:]
	}
	return color.New(color.FgRed).Sprintf("❌ %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// shortHash abbreviates a transaction hash for tables
func shortHash(h common.Hash) string {
	if h == (common.Hash{}) {
		return "-"
	}
	s := h.Hex()
	return s[:10] + "…" + s[len(s)-8:]
}

// newTable returns a borderless table in the style used by every listing
func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.Style().Box.PaddingRight = "   "
	t.Style().Box.PaddingLeft = "  "
	if header != nil {
		t.AppendHeader(header)
	}
	return t
}

// styled applies c when colors are enabled
func styled(enabled bool, c *color.Color, s string) string {
	if !enabled {
		return s
	}
	return c.Sprint(s)
}
