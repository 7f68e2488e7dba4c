package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigia-scan/vigia/internal/auditlog"
	"github.com/vigia-scan/vigia/internal/monitor"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor <url1,url2,...>",
	Short: "Watch targets for content and security changes",
	Long: `Establish a content fingerprint baseline for each target and re-check
them on a fixed interval, reporting classified change events. Stop with
Ctrl-C; the current sweep finishes before the loop exits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		intervalSecs, _ := cmd.Flags().GetInt("interval")
		concurrent, _ := cmd.Flags().GetBool("concurrent")

		if intervalSecs <= 0 {
			intervalSecs = cliConfig.Monitor.IntervalSecs
		}

		targets := splitTargets(args[0])

		opts := monitor.Options{
			Interval: time.Duration(intervalSecs) * time.Second,
			Timeout:  time.Duration(cliConfig.Scan.TimeoutSecs) * time.Second,
			Logger:   logger,
		}
		if concurrent {
			opts.Concurrency = cliConfig.Monitor.Concurrency
			opts.RateLimit = cliConfig.Monitor.RateLimit
		}

		poller, err := monitor.NewPoller(targets, opts)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		_ = auditLogger.Record(auditlog.ActionMonitoringStarted,
			fmt.Sprintf("%d target(s) interval %ds", len(targets), intervalSecs))
		fmt.Printf("%s %d target(s), interval %ds. Press Ctrl-C to stop.\n",
			colorInfo("Monitoring"), len(targets), intervalSecs)

		err = poller.Run(ctx, printCheckStatus)
		if err != nil && !errors.Is(err, context.Canceled) {
			_ = auditLogger.Record(auditlog.ActionMonitoringError, err.Error())
			return err
		}

		_ = auditLogger.Record(auditlog.ActionMonitoringStopped,
			fmt.Sprintf("%d target(s)", len(targets)))
		fmt.Println(colorInfo("Monitoring stopped."))

		return nil
	},
}

func splitTargets(arg string) []string {
	var targets []string
	for _, t := range strings.Split(arg, ",") {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	return targets
}

// printCheckStatus renders one per-target check line and, when a change was
// detected, its classified event.
func printCheckStatus(target string, status monitor.CheckStatus) {
	switch {
	case status.Status == monitor.StatusError:
		fmt.Printf("[%s] %s %s: %s\n", status.Timestamp, formatStatusWithColor(status.Status), target, status.Error)
	case status.Status == monitor.StatusNoBaseline:
		fmt.Printf("[%s] %s %s: baseline established\n", status.Timestamp, formatStatusWithColor(status.Status), target)
	case status.Changed && status.Event != nil:
		fmt.Printf("[%s] %s %s: %s [%s]\n", status.Timestamp, colorWarn("CHANGED"), target,
			status.Event.Type, formatSeverityWithColor(status.Event.Severity.String()))
		for _, detail := range status.Event.Details {
			fmt.Printf("    - %s\n", detail)
		}
	default:
		fmt.Printf("[%s] %s %s: unchanged\n", status.Timestamp, formatStatusWithColor(status.Status), target)
	}
}

func init() {
	monitorCmd.Flags().Int("interval", 0, "Seconds between checks (default 300, or monitor.interval_secs from config)")
	monitorCmd.Flags().Bool("concurrent", false, "Check targets concurrently with rate limiting")
}
