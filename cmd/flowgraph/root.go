package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flowgraph",
	Short: "flowgraph builds control-flow graphs and derives metrics from a Go project",
	Long: `flowgraph is a thin example binary over the flowgraph library:
it loads a directory of Go source, builds one control-flow graph per
function, and can render DOT graphs, cyclomatic-complexity reports, and
coverage instrumentation scaffolds from the result.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		cobra.CheckErr(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("dir", "d", ".", "root directory of the Go project to analyze")
}
