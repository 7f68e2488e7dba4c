package cmd

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultReportsDir          = "./reports"
	defaultLogsDir             = "./logs"
	defaultScanTimeoutSecs     = 10
	defaultMonitorIntervalSecs = 300
	defaultMonitorConcurrency  = 5
	defaultMonitorRateLimit    = 5
)

// CLIConfig captures runtime configuration shared across commands. Values
// come from built-in defaults, then the config file, then explicit flags.
type CLIConfig struct {
	ReportsDir string
	LogsDir    string
	Scan       ScanRuntimeConfig
	Monitor    MonitorRuntimeConfig
}

// ScanRuntimeConfig consolidates settings for the scan command.
type ScanRuntimeConfig struct {
	TimeoutSecs int
}

// MonitorRuntimeConfig consolidates settings for the monitor command.
type MonitorRuntimeConfig struct {
	IntervalSecs int
	Concurrency  int
	RateLimit    int
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		ReportsDir: defaultReportsDir,
		LogsDir:    defaultLogsDir,
		Scan: ScanRuntimeConfig{
			TimeoutSecs: defaultScanTimeoutSecs,
		},
		Monitor: MonitorRuntimeConfig{
			IntervalSecs: defaultMonitorIntervalSecs,
			Concurrency:  defaultMonitorConcurrency,
			RateLimit:    defaultMonitorRateLimit,
		},
	}
}

// applyConfigDefaults merges config file values into the runtime config when
// the user did not explicitly override the corresponding flag.
func applyConfigDefaults() {
	if viper.IsSet("reports_dir") {
		cliConfig.ReportsDir = viper.GetString("reports_dir")
	}
	if viper.IsSet("logs_dir") {
		cliConfig.LogsDir = viper.GetString("logs_dir")
	}
	if viper.IsSet("scan.timeout_secs") {
		cliConfig.Scan.TimeoutSecs = viper.GetInt("scan.timeout_secs")
	}
	if viper.IsSet("monitor.interval_secs") {
		applyIntDefault(monitorCmd.Flags(), "interval", viper.GetInt("monitor.interval_secs"), func(v int) {
			cliConfig.Monitor.IntervalSecs = v
		})
	}
	if viper.IsSet("monitor.concurrency") {
		cliConfig.Monitor.Concurrency = viper.GetInt("monitor.concurrency")
	}
	if viper.IsSet("monitor.rate_limit") {
		cliConfig.Monitor.RateLimit = viper.GetInt("monitor.rate_limit")
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}
