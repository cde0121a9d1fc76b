// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfg

import (
	"fmt"
	"strings"
)

// DOT renders c as a Graphviz DOT digraph, per spec §4.5. Output is
// byte-identical across runs for the same graph: blocks are iterated by
// ascending ID and every label is escaped.
func DOT(c *ControlFlowGraph, graphName string) string {
	var sb strings.Builder
	sb.WriteString("digraph ")
	sb.WriteString(sanitizeName(graphName))
	sb.WriteString(" {\n")

	for _, id := range c.SortedIDs() {
		blk := c.Blocks[id]
		sb.WriteString(fmt.Sprintf("  b%d [label=\"%s\"];\n", id, escapeLabel(nodeLabel(c, blk))))
	}
	for _, id := range c.SortedIDs() {
		blk := c.Blocks[id]
		for _, s := range blk.Succs {
			sb.WriteString(fmt.Sprintf("  b%d -> b%d;\n", id, s))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func nodeLabel(c *ControlFlowGraph, b *BasicBlock) string {
	switch b.ID {
	case c.EntryID:
		return "entry"
	case c.ExitID:
		return "exit"
	}
	return b.Kind().String()
}

// sanitizeName implements spec §4.5's header rule: only [A-Za-z0-9_]
// survive, everything else becomes '_'.
func sanitizeName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
