// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfg

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
)

const maxCollapseRounds = 10

// Optimize runs the two passes of spec §4.2 in order: reachability prune,
// then bounded empty-block collapse. It mutates c in place and returns it
// for chaining.
func Optimize(c *ControlFlowGraph) *ControlFlowGraph {
	prune(c)
	collapseEmptyBlocks(c)
	return c
}

// prune computes the set of blocks reachable from entry by mirroring the
// CFG onto an lvlath graph and running its DFS, then deletes everything
// else. Mirroring onto a general-purpose graph library (rather than a
// hand-rolled visited-set walk) keeps the traversal itself — and its
// correctness — shared with the rest of the pack's graph tooling.
func prune(c *ControlFlowGraph) {
	g := core.NewGraph(core.WithDirected(true))
	for id := range c.Blocks {
		_ = g.AddVertex(vertexID(id))
	}
	for id, blk := range c.Blocks {
		for _, s := range blk.Succs {
			_, _ = g.AddEdge(vertexID(id), vertexID(s), 0)
		}
	}

	result, err := dfs.DFS(g, vertexID(c.EntryID))
	if err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s: reachability walk failed: %v", c.FuncName, err))
		return
	}

	for id := range c.Blocks {
		if !result.Visited[vertexID(id)] {
			delete(c.Blocks, id)
		}
	}
}

func vertexID(id int) string {
	return fmt.Sprintf("b%d", id)
}

// collapseEmptyBlocks implements spec §4.2 step 2. A bitset tracks which
// blocks changed predecessors in the current round so the loop can detect a
// fixed point without re-scanning every block's statement content twice.
func collapseEmptyBlocks(c *ControlFlowGraph) {
	for round := 0; round < maxCollapseRounds; round++ {
		changed := bitset.New(uint(maxBlockID(c) + 1))

		for _, id := range c.SortedIDs() {
			blk := c.Blocks[id]
			if !collapsible(c, blk) {
				continue
			}

			target := blk.Succs[0]
			preds := predecessorsOf(c, id)
			if len(preds) == 0 {
				continue
			}

			for _, p := range preds {
				redirectSucc(c.Blocks[p], id, target)
				changed.Set(uint(p))
			}
			changed.Set(uint(id))
			delete(c.Blocks, id)
		}

		if changed.None() {
			return
		}
	}
	c.Warnings = append(c.Warnings, fmt.Sprintf("%s: empty-block collapse hit the %d-round cap", c.FuncName, maxCollapseRounds))
}

func maxBlockID(c *ControlFlowGraph) int {
	max := 0
	for id := range c.Blocks {
		if id > max {
			max = id
		}
	}
	return max
}

// collapsible implements spec §4.2(1)(a-d): candidate blocks are non-entry,
// non-exit, hold no statements, have exactly one
// successor distinct from themselves, and are not a goto/label target.
func collapsible(c *ControlFlowGraph, b *BasicBlock) bool {
	if b.ID == c.EntryID || b.ID == c.ExitID {
		return false
	}
	if len(b.Stmts) != 0 {
		return false
	}
	if len(b.Succs) != 1 || b.Succs[0] == b.ID {
		return false
	}
	for _, lbl := range c.LabelBlocks {
		if lbl == b.ID {
			return false
		}
	}
	return true
}

func predecessorsOf(c *ControlFlowGraph, id int) []int {
	var preds []int
	for pid, blk := range c.Blocks {
		for _, s := range blk.Succs {
			if s == id {
				preds = append(preds, pid)
				break
			}
		}
	}
	return preds
}

// redirectSucc replaces every occurrence of "from" in blk.Succs with "to",
// deduplicating afterward (spec §4.2: "after each round, deduplicate
// successor lists").
func redirectSucc(blk *BasicBlock, from, to int) {
	seen := make(map[int]bool, len(blk.Succs))
	out := blk.Succs[:0]
	for _, s := range blk.Succs {
		if s == from {
			s = to
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	blk.Succs = out
}
