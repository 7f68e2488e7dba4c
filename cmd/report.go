package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List, view or export stored scan reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, _ := cmd.Flags().GetBool("list")
		viewID, _ := cmd.Flags().GetString("view")
		pdfID, _ := cmd.Flags().GetString("pdf")

		switch {
		case viewID != "":
			md, err := reportWriter.View(viewID)
			if err != nil {
				return err
			}
			fmt.Print(md)
			return nil

		case pdfID != "":
			path, err := reportWriter.WritePDF(pdfID)
			if err != nil {
				return err
			}
			fmt.Printf("PDF written: %s\n", path)
			return nil

		case list:
			return printReportList()

		default:
			return cmd.Help()
		}
	},
}

func printReportList() error {
	entries, err := reportWriter.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println(colorWarn("No reports found."))
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTARGET\tSCORE\tGENERATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.ID, e.Target, formatScoreWithColor(e.Score), e.GeneratedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func init() {
	reportCmd.Flags().Bool("list", false, "List stored reports, newest first")
	reportCmd.Flags().String("view", "", "Print the markdown report with the given ID")
	reportCmd.Flags().String("pdf", "", "Export the report with the given ID as PDF")
}
