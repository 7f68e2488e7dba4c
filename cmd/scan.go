package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigia-scan/vigia/internal/auditlog"
	"github.com/vigia-scan/vigia/internal/probe"
)

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Run a security scan against a single target",
	Long: `Scan a target URL for TLS problems, missing security headers, exposed
sensitive data and accessible administrative paths, then write markdown and
JSON reports. Only scan targets you are authorized to test.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		full, _ := cmd.Flags().GetBool("full")
		quick, _ := cmd.Flags().GetBool("quick")
		if full && quick {
			return fmt.Errorf("--full and --quick are mutually exclusive")
		}

		scanType := probe.ScanBasic
		if full {
			scanType = probe.ScanFull
		}
		if quick {
			scanType = probe.ScanQuick
		}

		target := args[0]
		_ = auditLogger.Record(auditlog.ActionScanInitiated, fmt.Sprintf("target %s type %s", target, scanType))

		scanner := probe.NewScanner(time.Duration(cliConfig.Scan.TimeoutSecs)*time.Second, logger)

		result, err := scanner.Scan(context.Background(), target, scanType)
		if err != nil {
			_ = auditLogger.Record(auditlog.ActionScanError, fmt.Sprintf("target %s: %v", target, err))
			fmt.Printf("%s %v\n", colorError("Scan failed:"), err)
			return nil
		}

		printScanSummary(result)

		saved, err := reportWriter.Save(result)
		if err != nil {
			_ = auditLogger.Record(auditlog.ActionScanError, fmt.Sprintf("target %s: %v", target, err))
			return fmt.Errorf("save report: %w", err)
		}

		fmt.Printf("\nReport saved: %s\n", saved.MarkdownPath)
		_ = auditLogger.Record(auditlog.ActionScanCompleted, fmt.Sprintf("target %s score %d report %s", target, result.Score, saved.ID))

		return nil
	},
}

func printScanSummary(r *probe.ScanResult) {
	fmt.Printf("\n%s %s\n", colorInfo("Target:"), r.URL)
	fmt.Printf("%s %s\n", colorInfo("Scan type:"), r.ScanType)
	fmt.Printf("%s %s/100\n", colorInfo("Score:"), formatScoreWithColor(r.Score))

	if r.TLS != nil {
		fmt.Printf("%s %s\n", colorInfo("TLS:"), formatStatusWithColor(string(r.TLS.Status)))
	}
	if r.Headers != nil && len(r.Headers.MissingHeaders) > 0 {
		fmt.Printf("%s %s\n", colorWarn("Missing headers:"), strings.Join(r.Headers.MissingHeaders, ", "))
	}

	if len(r.Vulnerabilities) == 0 {
		fmt.Println(colorSuccess("No vulnerabilities identified."))
		return
	}

	fmt.Printf("\n%s\n", colorInfo(fmt.Sprintf("Vulnerabilities (%d):", len(r.Vulnerabilities))))
	for _, v := range r.Vulnerabilities {
		fmt.Printf("  [%s] %s: %s\n", formatSeverityWithColor(v.Severity), v.Type, v.Description)
	}
}

func init() {
	scanCmd.Flags().Bool("full", false, "Run the full probe set (paths, forms, DNS, whois)")
	scanCmd.Flags().Bool("quick", false, "Run only the TLS and header probes")
}
