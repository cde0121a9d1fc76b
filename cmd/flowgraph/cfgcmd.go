package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/godoctor/flowgraph/aggregate"
	"github.com/godoctor/flowgraph/cfg"
	"github.com/godoctor/flowgraph/loader"
)

var cfgCmd = &cobra.Command{
	Use:   "cfg",
	Short: "print DOT graphs for every function in the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")

		prog, err := loader.Load(dir)
		if err != nil {
			return fmt.Errorf("flowgraph cfg: %w", err)
		}

		proj, err := aggregate.Build(context.Background(), prog)
		if err != nil {
			return fmt.Errorf("flowgraph cfg: %w", err)
		}

		for _, name := range proj.SortedNames() {
			fmt.Println(cfg.DOT(proj.ByName[name], name))
		}
		for _, w := range proj.Warnings {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cfgCmd)
}
