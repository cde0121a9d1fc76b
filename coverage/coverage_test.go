package coverage

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godoctor/flowgraph/cfg"
)

func build(t *testing.T, src string) *cfg.ControlFlowGraph {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", "package p\n"+src, 0)
	require.NoError(t, err)

	var fn *ast.FuncDecl
	for _, d := range f.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok {
			fn = fd
		}
	}
	require.NotNil(t, fn)

	resolve := func(n ast.Node) (int, int) {
		return fset.Position(n.Pos()).Line, fset.Position(n.End()).Line
	}
	c := cfg.Build(fn.Name.Name, fn.Body.List, resolve)
	cfg.Optimize(c)
	cfg.Validate(c)
	return c
}

func TestEnumerateBranchesIfThenElse(t *testing.T) {
	c := build(t, `func A(x int) { if x > 0 { y() } else { z() } }`)
	branches := EnumerateBranches(c)
	require.Len(t, branches, 2)
	assert.Equal(t, "if-then", branches[0].Type)
	assert.Equal(t, "if-else", branches[1].Type)
	assert.Equal(t, fmt.Sprintf("A:%d:0", branches[0].BlockID), branches[0].ID)
}

func TestEnumerateBranchesSwitchWithDefault(t *testing.T) {
	c := build(t, `
		func B(n int) {
			switch n {
			case 1:
				a()
			default:
				b()
			}
		}`)
	branches := EnumerateBranches(c)
	require.Len(t, branches, 2)
	assert.Equal(t, "switch-case", branches[0].Type)
	assert.Equal(t, "switch-default", branches[1].Type)
}

func TestEnumerateBranchesSwitchWithoutDefault(t *testing.T) {
	c := build(t, `
		func C(n int) {
			switch n {
			case 1:
				a()
			case 2:
				b()
			}
		}`)
	branches := EnumerateBranches(c)
	require.Len(t, branches, 3)
	assert.Equal(t, "switch-case", branches[0].Type)
	assert.Equal(t, "switch-case", branches[1].Type)
	assert.Equal(t, "switch-case", branches[2].Type, "trailing no-match edge still reports as switch-case")
}

func TestEnumerateStatementsSkipsEntryAndExit(t *testing.T) {
	c := build(t, `func D() { x := 1; _ = x; return }`)
	stmts := EnumerateStatements(c)
	for _, s := range stmts {
		assert.NotEqual(t, c.EntryID, s.BlockID)
		assert.NotEqual(t, c.ExitID, s.BlockID)
	}
	assert.NotEmpty(t, stmts)
}

func TestScaffoldProducesCompilableStructure(t *testing.T) {
	c := build(t, `func E() { x := 1; _ = x }`)
	src, err := Scaffold("p", map[string]*cfg.ControlFlowGraph{"E": c}, false)
	require.NoError(t, err)
	assert.Contains(t, src, "package p")
	assert.Contains(t, src, "func flowgraphTraceE()")
	assert.Contains(t, src, "func main() {}")
}

func TestScaffoldSkipsStubMainWhenProjectHasOne(t *testing.T) {
	c := build(t, `func F() {}`)
	src, err := Scaffold("p", map[string]*cfg.ControlFlowGraph{"F": c}, true)
	require.NoError(t, err)
	assert.NotContains(t, src, "func main() {}")
}
