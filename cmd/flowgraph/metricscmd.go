package main

import (
	"fmt"
	"go/ast"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/godoctor/flowgraph/loader"
	"github.com/godoctor/flowgraph/metrics"
)

// sortMode is a pflag.Value so `--sort` gets the same validated-enum
// handling cobra/pflag give any other typed flag, rather than a bare
// string compared ad hoc after parsing.
type sortMode string

const (
	sortByName       sortMode = "name"
	sortByComplexity sortMode = "complexity"
)

func (m *sortMode) String() string { return string(*m) }

func (m *sortMode) Set(v string) error {
	switch sortMode(v) {
	case sortByName, sortByComplexity:
		*m = sortMode(v)
		return nil
	default:
		return fmt.Errorf("invalid --sort value %q (want %q or %q)", v, sortByName, sortByComplexity)
	}
}

func (m *sortMode) Type() string { return "sortMode" }

var _ pflag.Value = (*sortMode)(nil)

var metricsSort = sortByName

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "print cyclomatic-complexity figures for every function in the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")

		prog, err := loader.Load(dir)
		if err != nil {
			return fmt.Errorf("flowgraph metrics: %w", err)
		}

		figures := computeAll(prog)
		sortFigures(figures, metricsSort)

		for _, c := range figures {
			printComplexity(cmd, c)
		}

		dist := metrics.Aggregate(figures)
		fmt.Fprintf(cmd.OutOrStdout(), "\nproject mean complexity: %.2f, max: %d (%s)\n", dist.Mean, dist.Max, dist.MaxFunc)
		return nil
	},
}

func computeAll(prog *loader.Program) []metrics.Complexity {
	// aggregate.Build already disambiguates names the same way; reuse it
	// purely for its name assignment rather than building the CFG twice
	// would be cleaner, but metrics operates on the raw AST body per
	// spec §4.6, independent of the CFG shape, so it is computed here
	// directly off prog.Functions().
	decls := prog.Functions()
	names := disambiguateLocal(decls)

	figures := make([]metrics.Complexity, len(decls))
	for i, fd := range decls {
		figures[i] = metrics.Compute(names[i], fd.Decl.Body)
	}
	return figures
}

// disambiguateLocal mirrors aggregate's unexported name-disambiguation
// policy so the metrics command's function names line up with the cfg
// command's, without exporting aggregate's internal helper for a single
// caller.
func disambiguateLocal(decls []loader.FuncDecl) []string {
	seen := make(map[string]int, len(decls))
	names := make([]string, len(decls))
	for i, fd := range decls {
		base := fd.Decl.Name.Name
		if fd.Decl.Recv != nil && len(fd.Decl.Recv.List) == 1 {
			if recv := receiverName(fd.Decl.Recv.List[0].Type); recv != "" {
				base = recv + "." + base
			}
		}
		count := seen[base]
		seen[base] = count + 1
		if count == 0 {
			names[i] = base
		} else {
			names[i] = fmt.Sprintf("%s#%d", base, count)
		}
	}
	return names
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	default:
		return ""
	}
}

func sortFigures(figures []metrics.Complexity, mode sortMode) {
	sort.Slice(figures, func(i, j int) bool {
		if mode == sortByComplexity {
			return figures[i].Value < figures[j].Value
		}
		return figures[i].FuncName < figures[j].FuncName
	})
}

func printComplexity(cmd *cobra.Command, c metrics.Complexity) {
	var paint func(format string, a ...interface{}) string
	switch c.Level {
	case metrics.Low:
		paint = color.New(color.FgGreen).SprintfFunc()
	case metrics.Medium:
		paint = color.New(color.FgYellow).SprintfFunc()
	case metrics.High:
		paint = color.New(color.FgRed).SprintfFunc()
	default:
		paint = color.New(color.FgMagenta).SprintfFunc()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", c.FuncName, paint("%-9s C=%d", c.Level.String(), c.Value))
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.Flags().VarP(&metricsSort, "sort", "s", "sort order: name|complexity")
}
