package metrics

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFuncBody(t *testing.T, src string) *ast.BlockStmt {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", "package p\n"+src, 0)
	require.NoError(t, err)
	for _, d := range f.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok {
			return fd.Body
		}
	}
	t.Fatal("no function found")
	return nil
}

func TestComputeStraightLineIsOne(t *testing.T) {
	body := parseFuncBody(t, `func A() { x := 1; _ = x }`)
	c := Compute("A", body)
	assert.Equal(t, 0, c.Decisions)
	assert.Equal(t, 1, c.Value)
	assert.Equal(t, Low, c.Level)
}

func TestComputeIfAddsOne(t *testing.T) {
	body := parseFuncBody(t, `func B(x int) { if x > 0 { y() } }`)
	c := Compute("B", body)
	assert.Equal(t, 1, c.Decisions)
	assert.Equal(t, 2, c.Value)
}

func TestComputeShortCircuitOperatorsCount(t *testing.T) {
	body := parseFuncBody(t, `func C(a, b bool) { if a && b || a { y() } }`)
	c := Compute("C", body)
	// 1 for the if, 2 for the && and ||.
	assert.Equal(t, 3, c.Decisions)
}

func TestComputeSwitchExcludesDefault(t *testing.T) {
	body := parseFuncBody(t, `
		func D(n int) {
			switch n {
			case 1:
				a()
			case 2:
				b()
			default:
				c()
			}
		}`)
	c := Compute("D", body)
	assert.Equal(t, 2, c.Decisions, "default arm must not count as a decision point")
}

func TestComputeSelectCountsDefaultToo(t *testing.T) {
	body := parseFuncBody(t, `
		func E(ch chan int) {
			select {
			case <-ch:
				a()
			default:
				b()
			}
		}`)
	c := Compute("E", body)
	assert.Equal(t, 2, c.Decisions, "every CommClause counts, including default")
}

func TestComputeFuncLitDoesNotLeakIntoEnclosing(t *testing.T) {
	body := parseFuncBody(t, `
		func F() {
			g := func(x int) {
				if x > 0 {
					y()
				}
			}
			g(1)
		}`)
	c := Compute("F", body)
	assert.Equal(t, 0, c.Decisions, "a closure's branches are not the enclosing function's")
}

func TestClassifyBands(t *testing.T) {
	assert.Equal(t, Low, Classify(5))
	assert.Equal(t, Medium, Classify(6))
	assert.Equal(t, Medium, Classify(10))
	assert.Equal(t, High, Classify(11))
	assert.Equal(t, High, Classify(20))
	assert.Equal(t, VeryHigh, Classify(21))
}

func TestAggregateComputesMeanMaxAndHistogram(t *testing.T) {
	all := []Complexity{
		{FuncName: "A", Value: 1, Level: Low},
		{FuncName: "B", Value: 9, Level: Medium},
		{FuncName: "C", Value: 25, Level: VeryHigh},
	}
	dist := Aggregate(all)
	assert.InDelta(t, 35.0/3.0, dist.Mean, 0.0001)
	assert.Equal(t, 25, dist.Max)
	assert.Equal(t, "C", dist.MaxFunc)
	assert.Equal(t, 1, dist.Histogram[Low])
	assert.Equal(t, 1, dist.Histogram[Medium])
	assert.Equal(t, 0, dist.Histogram[High])
	assert.Equal(t, 1, dist.Histogram[VeryHigh])
}
