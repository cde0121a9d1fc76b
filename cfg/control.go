// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfg

import "go/ast"

// buildIf implements spec §4.1.2's If row: head H holds the statement;
// succs[0] is the then-branch, succs[1] the else-branch (or the after-block
// A when there is no Else). Both arms' dangling tails rejoin at A.
func (b *builder) buildIf(s *ast.IfStmt, ctx loopContext) (first, last int) {
	head := b.allocHeader(s)
	entry := head.ID
	if s.Init != nil {
		initBlk := b.alloc(simpleList(s.Init))
		b.addSucc(initBlk.ID, head.ID)
		entry = initBlk.ID
	}
	after := b.allocEmpty(s)

	thenFirst, thenLast := b.buildStmt(s.Body, ctx)
	b.addSucc(head.ID, thenFirst)
	if !b.terminal[thenLast] {
		b.addSucc(thenLast, after.ID)
	}

	switch e := s.Else.(type) {
	case nil:
		b.addSucc(head.ID, after.ID)
	default:
		elseFirst, elseLast := b.buildStmt(e, ctx)
		b.addSucc(head.ID, elseFirst)
		if !b.terminal[elseLast] {
			b.addSucc(elseLast, after.ID)
		}
	}

	return entry, after.ID
}

func (b *builder) buildFor(s *ast.ForStmt, ctx loopContext) (int, int) {
	return b.buildForImpl(s, ctx, "")
}

func (b *builder) buildForLabeled(s *ast.ForStmt, ctx loopContext, label string) (int, int) {
	return b.buildForImpl(s, ctx, label)
}

// buildForImpl implements spec §4.1.2's three-clause For row. The init
// block I (if present) flows into the condition block C; C forks into the
// body and the after-block A; the body's fall-through (if any) flows into
// the post-block P when one exists, else back to C directly; P (if present)
// flows back to C. continue targets P when a post-clause exists, C
// otherwise — spec §9's resolved open question.
func (b *builder) buildForImpl(s *ast.ForStmt, ctx loopContext, label string) (first, last int) {
	var initID = -1
	if s.Init != nil {
		initBlk := b.alloc(simpleList(s.Init))
		initID = initBlk.ID
	}

	cond := b.allocHeader(s)
	after := b.allocEmpty(s)

	continueTarget := cond.ID
	var postID = -1
	if s.Post != nil {
		postBlk := b.alloc(simpleList(s.Post))
		postID = postBlk.ID
		continueTarget = postID
	}

	if label != "" {
		b.breakTargets[label] = after.ID
		b.continueTargets[label] = continueTarget
	}

	bodyCtx := loopContext{breakTarget: after.ID, continueTarget: continueTarget, hasContinue: true}
	bodyFirst, bodyLast := b.buildStmt(s.Body, bodyCtx)

	if initID != -1 {
		b.addSucc(initID, cond.ID)
	}

	if s.Cond != nil {
		b.addSucc(cond.ID, bodyFirst)
		b.addSucc(cond.ID, after.ID)
	} else {
		// Infinite loop: no condition edge out to A. A remains reachable
		// only via break/return inside the body.
		b.addSucc(cond.ID, bodyFirst)
	}

	if !b.terminal[bodyLast] {
		b.addSucc(bodyLast, continueTarget)
	}
	if postID != -1 {
		b.addSucc(postID, cond.ID)
	}

	if initID != -1 {
		return initID, after.ID
	}
	return cond.ID, after.ID
}

func (b *builder) buildRange(s *ast.RangeStmt, ctx loopContext) (int, int) {
	return b.buildRangeImpl(s, ctx, "")
}

func (b *builder) buildRangeLabeled(s *ast.RangeStmt, ctx loopContext, label string) (int, int) {
	return b.buildRangeImpl(s, ctx, label)
}

// buildRangeImpl mirrors buildForImpl with no init and no post clause: the
// range header itself is both the advance and the test (spec §4.1.2's Range
// row), so continue always targets the header.
func (b *builder) buildRangeImpl(s *ast.RangeStmt, ctx loopContext, label string) (first, last int) {
	head := b.allocHeader(s)
	after := b.allocEmpty(s)

	if label != "" {
		b.breakTargets[label] = after.ID
		b.continueTargets[label] = head.ID
	}

	bodyCtx := loopContext{breakTarget: after.ID, continueTarget: head.ID, hasContinue: true}
	bodyFirst, bodyLast := b.buildStmt(s.Body, bodyCtx)

	b.addSucc(head.ID, bodyFirst)
	b.addSucc(head.ID, after.ID)
	if !b.terminal[bodyLast] {
		b.addSucc(bodyLast, head.ID)
	}

	return head.ID, after.ID
}
