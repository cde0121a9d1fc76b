// Package metrics derives cyclomatic-complexity figures from a function's
// AST, per spec §4.6.
package metrics

import (
	"go/ast"
	"go/token"
)

// Level classifies a Complexity score into one of four bands.
type Level int

const (
	Low Level = iota
	Medium
	High
	VeryHigh
)

func (l Level) String() string {
	switch l {
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	default:
		return "VeryHigh"
	}
}

// Classify buckets a complexity score per spec §4.6's bands.
func Classify(c int) Level {
	switch {
	case c <= 5:
		return Low
	case c <= 10:
		return Medium
	case c <= 20:
		return High
	default:
		return VeryHigh
	}
}

// Complexity is one function's cyclomatic-complexity figure.
type Complexity struct {
	FuncName  string
	Decisions int
	Value     int // C = D + 1
	Level     Level
	Cognitive int // optional nesting-weighted variant
}

// counter accumulates decision points while walking one function body. Kept
// as a struct rather than closures-over-locals so the logical-operator and
// statement walks can share state without threading extra return values.
type counter struct {
	decisions int
	cognitive int
}

// Compute walks fn's body counting decision points: every If, For, Range,
// non-default CaseClause, CommClause (including its default arm — spec
// §4.6 only excludes default from the CaseClause count, not CommClause),
// and short-circuit logical operator. Nested function literals are their
// own unit and do not contribute to the enclosing function's count. See
// DESIGN.md for the reading of the spec's CaseClause parenthetical.
func Compute(funcName string, body *ast.BlockStmt) Complexity {
	c := &counter{}
	if body != nil {
		c.walkStmts(body.List, 0)
	}

	return Complexity{
		FuncName:  funcName,
		Decisions: c.decisions,
		Value:     c.decisions + 1,
		Level:     Classify(c.decisions + 1),
		Cognitive: c.cognitive,
	}
}

func (c *counter) walkStmts(stmts []ast.Stmt, depth int) {
	for _, s := range stmts {
		c.walkStmt(s, depth)
	}
}

func (c *counter) walkStmt(s ast.Stmt, depth int) {
	switch st := s.(type) {
	case nil:
		return
	case *ast.BlockStmt:
		c.walkStmts(st.List, depth)
	case *ast.LabeledStmt:
		c.walkStmt(st.Stmt, depth)
	case *ast.IfStmt:
		c.decisions++
		c.cognitive += 1 + depth
		c.walkExpr(st.Cond)
		c.walkStmt(st.Body, depth+1)
		if st.Else != nil {
			c.walkStmt(st.Else, depth+1)
		}
	case *ast.ForStmt:
		c.decisions++
		c.cognitive += 1 + depth
		if st.Cond != nil {
			c.walkExpr(st.Cond)
		}
		c.walkStmt(st.Body, depth+1)
	case *ast.RangeStmt:
		c.decisions++
		c.cognitive += 1 + depth
		c.walkStmt(st.Body, depth+1)
	case *ast.SwitchStmt:
		if st.Tag != nil {
			c.walkExpr(st.Tag)
		}
		c.walkCaseClauses(st.Body, depth)
	case *ast.TypeSwitchStmt:
		c.walkCaseClauses(st.Body, depth)
	case *ast.SelectStmt:
		for _, clause := range st.Body.List {
			cc := clause.(*ast.CommClause)
			c.decisions++
			c.cognitive += 1 + depth
			c.walkStmts(cc.Body, depth+1)
		}
	case *ast.ExprStmt:
		c.walkExpr(st.X)
	case *ast.AssignStmt:
		for _, rhs := range st.Rhs {
			c.walkExpr(rhs)
		}
	case *ast.GoStmt:
		c.walkCallArgs(st.Call)
	case *ast.DeferStmt:
		c.walkCallArgs(st.Call)
	case *ast.ReturnStmt:
		for _, r := range st.Results {
			c.walkExpr(r)
		}
	}
}

func (c *counter) walkCaseClauses(body *ast.BlockStmt, depth int) {
	for _, clause := range body.List {
		cc := clause.(*ast.CaseClause)
		if cc.List != nil {
			// Non-default clause: spec §4.6 excludes the default arm from
			// the decision count.
			c.decisions++
			c.cognitive += 1 + depth
		}
		for _, e := range cc.List {
			c.walkExpr(e)
		}
		c.walkStmts(cc.Body, depth+1)
	}
}

// walkExpr finds short-circuit logical operators nested in a condition or
// expression statement. It does not descend into function literals: a
// closure's complexity belongs to the closure, not its enclosing function.
func (c *counter) walkExpr(e ast.Expr) {
	switch ex := e.(type) {
	case nil, *ast.FuncLit:
		return
	case *ast.BinaryExpr:
		if ex.Op == token.LAND || ex.Op == token.LOR {
			c.decisions++
			c.cognitive++
		}
		c.walkExpr(ex.X)
		c.walkExpr(ex.Y)
	case *ast.ParenExpr:
		c.walkExpr(ex.X)
	case *ast.UnaryExpr:
		c.walkExpr(ex.X)
	case *ast.CallExpr:
		c.walkCallArgs(ex)
	}
}

func (c *counter) walkCallArgs(call *ast.CallExpr) {
	if call == nil {
		return
	}
	for _, a := range call.Args {
		c.walkExpr(a)
	}
}

// Distribution aggregates Complexity figures across a project: mean,
// maximum (and its owner), and a histogram keyed by Level, per spec §4.6's
// "Project aggregation" paragraph.
type Distribution struct {
	Mean      float64
	Max       int
	MaxFunc   string
	Histogram map[Level]int
}

// Aggregate folds a slice of per-function Complexity figures into a
// Distribution, per spec §4.6's "project aggregation" paragraph. Every
// Level band is present in the histogram, including ones with a zero
// count, so a caller can render a complete distribution without checking
// for missing keys.
func Aggregate(all []Complexity) Distribution {
	hist := map[Level]int{Low: 0, Medium: 0, High: 0, VeryHigh: 0}

	var sum int
	dist := Distribution{Histogram: hist}
	for _, c := range all {
		sum += c.Value
		hist[c.Level]++
		if c.Value > dist.Max {
			dist.Max = c.Value
			dist.MaxFunc = c.FuncName
		}
	}
	if len(all) > 0 {
		dist.Mean = float64(sum) / float64(len(all))
	}
	return dist
}
