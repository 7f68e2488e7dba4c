package cmd

import (
	"strings"

	"github.com/fatih/color"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

func formatStatusWithColor(status string) string {
	switch strings.ToUpper(status) {
	case "OK":
		return colorSuccess(status)
	case "ERROR":
		return colorError(status)
	case "NO_BASELINE", "SKIPPED":
		return colorWarn(status)
	default:
		return status
	}
}

func formatScoreWithColor(score int) string {
	switch {
	case score >= 80:
		return colorSuccess(score)
	case score >= 50:
		return colorWarn(score)
	default:
		return colorError(score)
	}
}

func formatSeverityWithColor(severity string) string {
	switch strings.ToUpper(severity) {
	case "HIGH":
		return colorError(severity)
	case "MEDIUM":
		return colorWarn(severity)
	default:
		return colorInfo(severity)
	}
}
