package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/smfinstall/pkg/installer"
	"github.com/matzehuels/smfinstall/pkg/observability"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Installer Output
// =============================================================================

// printBanner prints the title shown before the first question.
func printBanner() {
	fmt.Println(StyleTitle.Render("Command line installer for SMF"))
	fmt.Println(StyleDim.Render("Open Source under the BSD License"))
	fmt.Println()
	fmt.Println("Please be aware that the requirements for this installer differ from the requirements of the SMF software")
	fmt.Println()
}

// printResult summarizes a finished run.
func printResult(r *installer.Result, events observability.TallySnapshot) {
	fmt.Println()

	mode := "install"
	if r.Decision.Upgrade {
		mode = "upgrade"
	}
	printKeyValue("Version", r.Decision.Version.Label)
	printKeyValue("Mode", mode)
	printKeyValue("Packages", fmt.Sprintf("%d", len(r.Packages)))

	var bytes int64
	for _, d := range r.Downloads.OK() {
		bytes += d.Bytes
	}
	printKeyValue("Downloaded", fmt.Sprintf("%d files, %s", len(r.Downloads.OK()), humanize.Bytes(uint64(bytes))))
	if n := len(r.Downloads.Skipped()); n > 0 {
		printKeyValue("Reused", fmt.Sprintf("%d files already present", n))
	}
	if events.MirrorAttempts > 0 {
		printKeyValue("Mirrors", fmt.Sprintf("%d tries, %d failed", events.MirrorAttempts, events.MirrorFailures))
	}
	if events.StepsCached > 0 {
		printKeyValue("Resumed", fmt.Sprintf("%d remembered answers", events.StepsCached))
	}
	fmt.Println()

	warnings := r.Warnings()
	for _, w := range warnings {
		printWarning("%s", w)
	}
	if len(warnings) == 0 {
		printSuccess("Installed %s", r.Decision.Version.Label)
		return
	}
	printInfo("Finished with %d warnings", len(warnings))
	printDetail("Run again to retry packages that failed; finished downloads are kept")
}
