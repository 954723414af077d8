package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"xmlsheet/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "xmlsheet",
	Short: "Convert XML documents to Excel workbooks",
	Long: `xmlsheet converts XML documents into XLSX workbooks, pivoting
time-series data into a category-by-period table when the document
shape allows it.

Run "xmlsheet serve" to start the HTTP API, or "xmlsheet convert" to
process a directory of XML files from the command line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("xmlsheet %s (%s)\n", app.Version, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
