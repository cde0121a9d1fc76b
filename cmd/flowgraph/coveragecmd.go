package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/godoctor/flowgraph/aggregate"
	"github.com/godoctor/flowgraph/coverage"
	"github.com/godoctor/flowgraph/loader"
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "enumerate branches and statements, and emit an instrumentation scaffold",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		emitScaffold, _ := cmd.Flags().GetBool("scaffold")

		prog, err := loader.Load(dir)
		if err != nil {
			return fmt.Errorf("flowgraph coverage: %w", err)
		}

		proj, err := aggregate.Build(context.Background(), prog)
		if err != nil {
			return fmt.Errorf("flowgraph coverage: %w", err)
		}

		if emitScaffold {
			pkg := "main"
			if len(prog.Files) > 0 {
				pkg = prog.Files[0].Package
			}
			hasMain := false
			for _, name := range proj.SortedNames() {
				if name == "main" {
					hasMain = true
				}
			}
			out, err := coverage.Scaffold(pkg, proj.ByName, hasMain)
			if err != nil {
				return fmt.Errorf("flowgraph coverage: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}

		for _, name := range proj.SortedNames() {
			c := proj.ByName[name]
			for _, b := range coverage.EnumerateBranches(c) {
				fmt.Fprintf(cmd.OutOrStdout(), "branch\t%s\t%s\n", b.ID, b.Type)
			}
			for _, s := range coverage.EnumerateStatements(c) {
				fmt.Fprintf(cmd.OutOrStdout(), "stmt\t%s\n", s.ID)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(coverageCmd)
	coverageCmd.Flags().Bool("scaffold", false, "emit a generated instrumentation scaffold instead of the raw enumeration")
}
