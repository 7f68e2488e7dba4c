package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vigia-scan/vigia/internal/auditlog"
	"github.com/vigia-scan/vigia/internal/report"
)

var cfgFile string
var logger *zap.SugaredLogger

var reportWriter *report.Writer
var auditLogger *auditlog.Logger

var rootCmd = &cobra.Command{
	Use:   "vigia",
	Short: "Opportunistic web security scanner and change monitor (for lawful testing only)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".vigia")
			viper.SetConfigType("yaml")
		}

		_ = viper.ReadInConfig()
		applyConfigDefaults()

		if abs, err := filepath.Abs(cliConfig.ReportsDir); err == nil {
			cliConfig.ReportsDir = abs
		}
		if abs, err := filepath.Abs(cliConfig.LogsDir); err == nil {
			cliConfig.LogsDir = abs
		}

		l, _ := zap.NewProduction()
		logger = l.Sugar()

		reportWriter = report.NewWriter(cliConfig.ReportsDir, Version)
		auditLogger = auditlog.New(filepath.Join(cliConfig.LogsDir, "vigia.log"))

		logger.Infow("initialized", "reports_dir", cliConfig.ReportsDir, "logs_dir", cliConfig.LogsDir)

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vigia.yaml)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}
