// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfg

import (
	"go/ast"
	"go/token"
)

func (b *builder) buildSwitch(s *ast.SwitchStmt, ctx loopContext) (int, int) {
	return b.buildSwitchImpl(s, ctx, "")
}

func (b *builder) buildSwitchLabeled(s *ast.SwitchStmt, ctx loopContext, label string) (int, int) {
	return b.buildSwitchImpl(s, ctx, label)
}

// buildSwitchImpl implements spec §4.1.2's expression-switch row.
func (b *builder) buildSwitchImpl(s *ast.SwitchStmt, ctx loopContext, label string) (first, last int) {
	head := b.allocHeader(s)
	entry := head.ID
	if s.Init != nil {
		initBlk := b.alloc(simpleList(s.Init))
		b.addSucc(initBlk.ID, head.ID)
		entry = initBlk.ID
	}

	after := b.allocEmpty(s)
	if label != "" {
		b.breakTargets[label] = after.ID
	}

	clauses := clauseBodies(s.Body)
	b.buildClauses(head.ID, clauses, after.ID, ctx, "switch-case")

	return entry, after.ID
}

func (b *builder) buildTypeSwitch(s *ast.TypeSwitchStmt, ctx loopContext) (int, int) {
	return b.buildTypeSwitchImpl(s, ctx, "")
}

func (b *builder) buildTypeSwitchLabeled(s *ast.TypeSwitchStmt, ctx loopContext, label string) (int, int) {
	return b.buildTypeSwitchImpl(s, ctx, label)
}

func (b *builder) buildTypeSwitchImpl(s *ast.TypeSwitchStmt, ctx loopContext, label string) (first, last int) {
	head := b.allocHeader(s)
	entry := head.ID

	if s.Init != nil {
		initBlk := b.alloc(simpleList(s.Init))
		b.addSucc(initBlk.ID, head.ID)
		entry = initBlk.ID
	}

	after := b.allocEmpty(s)
	if label != "" {
		b.breakTargets[label] = after.ID
	}

	clauses := clauseBodies(s.Body)
	b.buildClauses(head.ID, clauses, after.ID, ctx, "switch-case")

	return entry, after.ID
}

func (b *builder) buildSelect(s *ast.SelectStmt, ctx loopContext) (int, int) {
	return b.buildSelectImpl(s, ctx, "")
}

func (b *builder) buildSelectLabeled(s *ast.SelectStmt, ctx loopContext, label string) (int, int) {
	return b.buildSelectImpl(s, ctx, label)
}

// buildSelectImpl implements spec §4.1.2's Select row: same shape as
// expression-switch, no fallthrough semantics between CommClauses.
func (b *builder) buildSelectImpl(s *ast.SelectStmt, ctx loopContext, label string) (first, last int) {
	head := b.allocHeader(s)
	after := b.allocEmpty(s)
	if label != "" {
		b.breakTargets[label] = after.ID
	}

	var clauses []clause
	for _, c := range s.Body.List {
		cc := c.(*ast.CommClause)
		clauses = append(clauses, clause{
			node:       cc,
			isDefault:  cc.Comm == nil,
			body:       cc.Body,
			commOrCase: cc.Comm,
		})
	}
	b.buildClauses(head.ID, clauses, after.ID, ctx, "select-case")

	return head.ID, after.ID
}

// clause normalizes *ast.CaseClause and *ast.CommClause into one shape the
// shared clause-chain builder can walk uniformly.
type clause struct {
	node       ast.Stmt
	isDefault  bool
	body       []ast.Stmt
	commOrCase ast.Stmt // CommClause.Comm, nil for CaseClause or default
}

func clauseBodies(block *ast.BlockStmt) []clause {
	var out []clause
	for _, c := range block.List {
		cc := c.(*ast.CaseClause)
		out = append(out, clause{node: cc, isDefault: cc.List == nil, body: cc.Body})
	}
	return out
}

// buildClauses wires a source-ordered list of switch/select clauses off of
// headID, per spec §4.1.2: each clause's body-chain builds with
// break_target=after; a clause ending in fallthrough flows into the next
// clause's head instead of after; an unterminated, non-falling-through
// clause flows to after. The trailing head->after edge is added only when
// no default clause is present (spec's "no clause matched" path).
func (b *builder) buildClauses(headID int, clauses []clause, afterID int, ctx loopContext, branchKind string) {
	hasDefault := false
	clauseFirst := make([]int, len(clauses))
	clauseLast := make([]int, len(clauses))

	bodyCtx := loopContext{breakTarget: afterID, continueTarget: ctx.continueTarget, hasContinue: ctx.hasContinue}

	for i, cl := range clauses {
		if cl.isDefault {
			hasDefault = true
		}

		entry := headID
		if cl.commOrCase != nil {
			commBlk := b.alloc(simpleList(cl.commOrCase))
			b.addSucc(headID, commBlk.ID)
			entry = commBlk.ID
		}

		bodyFirst, bodyLast := b.buildChain(cl.body, bodyCtx)
		if cl.commOrCase == nil {
			b.addSucc(headID, bodyFirst)
		} else {
			b.addSucc(entry, bodyFirst)
		}

		clauseFirst[i] = bodyFirst
		clauseLast[i] = bodyLast
	}

	if !hasDefault {
		b.addSucc(headID, afterID)
	}

	for i, cl := range clauses {
		last := clauseLast[i]
		if fallsThrough(cl.body) && i+1 < len(clauses) {
			b.addSucc(last, clauseFirst[i+1])
			continue
		}
		if b.terminal[last] {
			continue
		}
		b.addSucc(last, afterID)
	}
}

// fallsThrough reports whether a clause body's final statement is an
// unlabeled fallthrough, unwrapping labels the way go/parser permits
// ("fallthrough can only be the final statement, possibly labeled").
func fallsThrough(body []ast.Stmt) bool {
	if len(body) == 0 {
		return false
	}
	last := body[len(body)-1]
	for {
		switch s := last.(type) {
		case *ast.LabeledStmt:
			last = s.Stmt
			continue
		case *ast.BranchStmt:
			return s.Tok == token.FALLTHROUGH
		default:
			return false
		}
	}
}
