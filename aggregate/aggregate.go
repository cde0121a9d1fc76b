// Package aggregate builds one ControlFlowGraph per function declaration
// across a loaded project and assembles them into file- and project-level
// results, per spec §4.4.
package aggregate

import (
	"context"
	"fmt"
	"go/ast"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/godoctor/flowgraph/cfg"
	"github.com/godoctor/flowgraph/loader"
)

// Entry is one named CFG in a project, together with the file it came from.
// Name disambiguation (spec §4.4: "duplicate function names ...
// disambiguated by suffixing with a monotonically increasing counter") has
// already been applied by the time an Entry exists.
type Entry struct {
	Name string
	File string
	CFG  *cfg.ControlFlowGraph
}

// Project is the aggregated result for an entire loaded tree: every
// function's CFG, keyed by its disambiguated name, plus the order they were
// discovered in so downstream consumers (metrics, coverage, DOT export of a
// whole project) can iterate deterministically.
type Project struct {
	Entries []Entry
	ByName  map[string]*cfg.ControlFlowGraph

	Warnings []string
}

// Build runs the CFG Builder and Optimizer over every function declaration
// in prog, building independent functions concurrently (spec §5: "trivially
// parallelizable across functions"). The overall call only fails if ctx is
// canceled; a single function's warnings never abort the rest of the walk,
// matching spec §7's "graph-level issues are warnings and never abort
// analysis of other functions."
func Build(ctx context.Context, prog *loader.Program) (*Project, error) {
	decls := prog.Functions()
	names := disambiguate(decls)
	resolve := prog.PosResolver()

	results := make([]Entry, len(decls))

	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	var warnings []string

	for i, fd := range decls {
		i, fd := i, fd
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var stmts []ast.Stmt
			if fd.Decl.Body != nil {
				stmts = fd.Decl.Body.List
			}

			built := cfg.Build(names[i], stmts, resolve)
			optimized := cfg.Optimize(built)
			cfg.Validate(optimized)

			results[i] = Entry{Name: names[i], File: fd.File.Path, CFG: optimized}

			if len(optimized.Warnings) > 0 {
				mu.Lock()
				warnings = append(warnings, optimized.Warnings...)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregate: build: %w", err)
	}

	proj := &Project{
		Entries:  results,
		ByName:   make(map[string]*cfg.ControlFlowGraph, len(results)),
		Warnings: warnings,
	}
	for _, e := range results {
		proj.ByName[e.Name] = e.CFG
	}
	return proj, nil
}

// disambiguate assigns each function declaration a project-unique name.
// Overloaded-by-receiver methods (two types each with a Close method, say)
// share a bare name and get a deterministic numeric suffix in declaration
// order, per spec §4.4.
func disambiguate(decls []loader.FuncDecl) []string {
	seen := make(map[string]int, len(decls))
	names := make([]string, len(decls))
	for i, fd := range decls {
		base := qualifiedName(fd.Decl)
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

func qualifiedName(fd *ast.FuncDecl) string {
	name := fd.Name.Name
	if fd.Recv == nil || len(fd.Recv.List) != 1 {
		return name
	}
	if recv := receiverTypeName(fd.Recv.List[0].Type); recv != "" {
		return recv + "." + name
	}
	return name
}

// receiverTypeName extracts the bare type name off a method receiver
// expression, unwrapping the pointer and any generic type parameters so
// `func (s *Server[T]) Close()` and `func (s Server) Close()` disambiguate
// against the same base name "Server.Close".
func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	case *ast.IndexListExpr:
		return receiverTypeName(t.X)
	default:
		return ""
	}
}

// SortedNames returns every project entry's name in ascending order, for
// deterministic report rendering.
func (p *Project) SortedNames() []string {
	names := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}
