// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfg

import "fmt"

// Validate runs the structural checks of spec §4.3 and appends any warning
// strings to c.Warnings. It never mutates the graph and never fails: every
// finding here is advisory, per spec §7.
func Validate(c *ControlFlowGraph) []string {
	var warnings []string

	if len(c.Blocks[c.ExitID].Succs) != 0 {
		warnings = append(warnings, fmt.Sprintf("%s: exit block has outgoing successors", c.FuncName))
	}

	reachable := reachableFrom(c, c.EntryID)

	for _, id := range c.SortedIDs() {
		blk := c.Blocks[id]

		if !reachable[id] {
			warnings = append(warnings, fmt.Sprintf("%s: block %d is unreachable from entry", c.FuncName, id))
		}

		if id != c.ExitID && len(blk.Succs) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s: block %d has no successors", c.FuncName, id))
		}

		seen := make(map[int]bool, len(blk.Succs))
		for _, s := range blk.Succs {
			if _, ok := c.Blocks[s]; !ok {
				warnings = append(warnings, fmt.Sprintf("%s: block %d has a dangling successor %d", c.FuncName, id, s))
				continue
			}
			if s == id {
				warnings = append(warnings, fmt.Sprintf("%s: block %d has a self-loop", c.FuncName, id))
			}
			if seen[s] {
				warnings = append(warnings, fmt.Sprintf("%s: block %d has a duplicate successor %d", c.FuncName, id, s))
			}
			seen[s] = true
		}
	}

	c.Warnings = append(c.Warnings, warnings...)
	return warnings
}

func reachableFrom(c *ControlFlowGraph, start int) map[int]bool {
	visited := make(map[int]bool)
	stack := []int{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		if blk, ok := c.Blocks[id]; ok {
			for _, s := range blk.Succs {
				if !visited[s] {
					stack = append(stack, s)
				}
			}
		}
	}
	return visited
}
