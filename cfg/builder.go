// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfg

import (
	"fmt"
	"go/ast"
	"go/token"
)

// PosResolver resolves an AST node to the start and end source lines it
// spans. The Builder treats this as the parser facade's contract (spec §6):
// it never inspects token.Pos values itself.
type PosResolver func(ast.Node) (startLine, endLine int)

// loopContext is the triple carried down the recursion into structured
// statements, per spec §4.1's LoopContext: break and continue resolve by
// value, never through a back-channel. Switch/Select override BreakTarget
// for their own body but leave ContinueTarget untouched, so a `continue`
// inside a switch nested in a for loop still reaches the loop.
type loopContext struct {
	breakTarget    int
	continueTarget int
	hasContinue    bool
}

type pendingGoto struct {
	from  int
	label string
}

// builder constructs one ControlFlowGraph from one function body. It is not
// reused across functions.
type builder struct {
	funcName string
	resolve  PosResolver

	blocks   map[int]*BasicBlock
	nextID   int
	labelMap map[string]int
	pending  []pendingGoto
	terminal map[int]bool
	warnings []string

	// breakTargets/continueTargets resolve `break Label`/`continue Label`
	// to the named construct's target, even when the break/continue is
	// nested inside other constructs between it and the label. Populated
	// by buildFor/buildRange/buildSwitch/buildTypeSwitch/buildSelect
	// before they build their own body, since Go requires the label to
	// lexically enclose any branch that names it.
	breakTargets    map[string]int
	continueTargets map[string]int
}

func newBuilder(funcName string, resolve PosResolver) *builder {
	return &builder{
		funcName: funcName,
		resolve:  resolve,
		blocks: map[int]*BasicBlock{
			Entry: {ID: Entry},
			Exit:  {ID: Exit},
		},
		nextID:          2,
		labelMap:        make(map[string]int),
		terminal:        make(map[int]bool),
		breakTargets:    make(map[string]int),
		continueTargets: make(map[string]int),
	}
}

// Build constructs the CFG for fn's body. An empty or missing body yields
// entry -> one empty block -> exit; Optimize collapses that block, leaving
// the boundary CFG blocks={entry,exit}, entry.succs=[exit] (spec §8).
func Build(funcName string, body []ast.Stmt, resolve PosResolver) *ControlFlowGraph {
	b := newBuilder(funcName, resolve)

	first, last := b.buildChain(body, loopContext{breakTarget: Exit})
	b.addSucc(Entry, first)
	if !b.terminal[last] && len(b.blocks[last].Succs) == 0 {
		b.addSucc(last, Exit)
	}

	b.resolvePendingGotos()

	return &ControlFlowGraph{
		FuncName:    funcName,
		Blocks:      b.blocks,
		EntryID:     Entry,
		ExitID:      Exit,
		LabelBlocks: b.labelMap,
		Warnings:    b.warnings,
	}
}

func (b *builder) resolvePendingGotos() {
	for _, pg := range b.pending {
		if target, ok := b.labelMap[pg.label]; ok {
			b.addSucc(pg.from, target)
		} else {
			b.addSucc(pg.from, Exit)
			b.warnings = append(b.warnings,
				fmt.Sprintf("%s: unresolved label %q, goto rewired to exit", b.funcName, pg.label))
		}
	}
}

func (b *builder) alloc(stmts []ast.Stmt) *BasicBlock {
	id := b.nextID
	b.nextID++
	blk := &BasicBlock{ID: id, Stmts: stmts}
	if len(stmts) > 0 && b.resolve != nil {
		start, _ := b.resolve(stmts[0])
		_, end := b.resolve(stmts[len(stmts)-1])
		blk.StartLine, blk.EndLine = start, end
		if blk.EndLine < blk.StartLine {
			blk.EndLine = blk.StartLine
		}
	}
	b.blocks[id] = blk
	return blk
}

func (b *builder) allocHeader(header ast.Stmt) *BasicBlock {
	blk := b.alloc([]ast.Stmt{header})
	return blk
}

func (b *builder) allocEmpty(around ast.Node) *BasicBlock {
	blk := b.alloc(nil)
	if around != nil && b.resolve != nil {
		blk.StartLine, blk.EndLine = b.resolve(around)
	}
	return blk
}

func (b *builder) addSucc(from, to int) {
	blk := b.blocks[from]
	for _, s := range blk.Succs {
		if s == to {
			return
		}
	}
	blk.Succs = append(blk.Succs, to)
}

// buildChain is the chain builder of spec §4.1.1: it threads a list of
// statements into one linear run, connecting each non-terminal tail to the
// next statement's head. An empty list still yields a single empty block,
// so constructs with empty bodies (`for {}`, `if x {}`) have somewhere to
// attach their own edges.
func (b *builder) buildChain(stmts []ast.Stmt, ctx loopContext) (first, last int) {
	if len(stmts) == 0 {
		blk := b.allocEmpty(nil)
		return blk.ID, blk.ID
	}

	prev := -1
	for _, s := range stmts {
		subFirst, subLast := b.buildStmt(s, ctx)
		if prev == -1 {
			first = subFirst
		} else if !b.terminal[prev] {
			b.addSucc(prev, subFirst)
		}
		prev = subLast
	}
	return first, prev
}

func (b *builder) buildStmt(s ast.Stmt, ctx loopContext) (first, last int) {
	switch st := s.(type) {
	case nil, *ast.EmptyStmt:
		blk := b.alloc(simpleList(s))
		return blk.ID, blk.ID

	case *ast.BlockStmt:
		return b.buildChain(st.List, ctx)

	case *ast.LabeledStmt:
		return b.buildLabeled(st, ctx)

	case *ast.BranchStmt:
		return b.buildBranch(st, ctx)

	case *ast.IfStmt:
		return b.buildIf(st, ctx)

	case *ast.ForStmt:
		return b.buildFor(st, ctx)

	case *ast.RangeStmt:
		return b.buildRange(st, ctx)

	case *ast.SwitchStmt:
		return b.buildSwitch(st, ctx)

	case *ast.TypeSwitchStmt:
		return b.buildTypeSwitch(st, ctx)

	case *ast.SelectStmt:
		return b.buildSelect(st, ctx)

	case *ast.ReturnStmt:
		blk := b.alloc(simpleList(s))
		b.addSucc(blk.ID, Exit)
		b.terminal[blk.ID] = true
		return blk.ID, blk.ID

	default:
		// Assign, IncDec, Decl, Expr, Send, Go, Defer and anything else
		// the facade hands us unmodeled: ordinary straight-line block.
		blk := b.alloc(simpleList(s))
		return blk.ID, blk.ID
	}
}

func simpleList(s ast.Stmt) []ast.Stmt {
	if s == nil {
		return nil
	}
	return []ast.Stmt{s}
}

func (b *builder) buildLabeled(s *ast.LabeledStmt, ctx loopContext) (first, last int) {
	lbl := b.allocEmpty(s)
	b.labelMap[s.Label.Name] = lbl.ID

	var bodyFirst, bodyLast int
	switch inner := s.Stmt.(type) {
	case *ast.ForStmt:
		bodyFirst, bodyLast = b.buildForLabeled(inner, ctx, s.Label.Name)
	case *ast.RangeStmt:
		bodyFirst, bodyLast = b.buildRangeLabeled(inner, ctx, s.Label.Name)
	case *ast.SwitchStmt:
		bodyFirst, bodyLast = b.buildSwitchLabeled(inner, ctx, s.Label.Name)
	case *ast.TypeSwitchStmt:
		bodyFirst, bodyLast = b.buildTypeSwitchLabeled(inner, ctx, s.Label.Name)
	case *ast.SelectStmt:
		bodyFirst, bodyLast = b.buildSelectLabeled(inner, ctx, s.Label.Name)
	default:
		bodyFirst, bodyLast = b.buildStmt(s.Stmt, ctx)
	}
	b.addSucc(lbl.ID, bodyFirst)
	return lbl.ID, bodyLast
}

func (b *builder) buildBranch(s *ast.BranchStmt, ctx loopContext) (first, last int) {
	blk := b.allocEmpty(s)
	switch s.Tok {
	case token.GOTO:
		b.pending = append(b.pending, pendingGoto{from: blk.ID, label: s.Label.Name})
		b.terminal[blk.ID] = true
	case token.CONTINUE:
		target := ctx.continueTarget
		if s.Label != nil {
			if t, ok := b.continueTargets[s.Label.Name]; ok {
				target = t
			}
		}
		b.addSucc(blk.ID, target)
		b.terminal[blk.ID] = true
	case token.BREAK:
		target := ctx.breakTarget
		if s.Label != nil {
			if t, ok := b.breakTargets[s.Label.Name]; ok {
				target = t
			}
		}
		b.addSucc(blk.ID, target)
		b.terminal[blk.ID] = true
	case token.FALLTHROUGH:
		// Left edge-less here: buildClauses inspects the clause body
		// directly and wires this block to the next clause's head once
		// the whole clause chain is known.
	}
	return blk.ID, blk.ID
}
