package renderer

import (
	"fmt"
	"slices"

	"deferred-renderer/core"
)

// Pass declares the named resources a render pass reads and writes.
type Pass struct {
	Name   string
	Reads  []string
	Writes []string
}

// PassGraph is an ordered list of passes. Passes run in the order they
// were added; the graph only checks that the order is consistent.
type PassGraph struct {
	passes    []Pass
	externals map[string]bool
}

// NewPassGraph declares resources that come from outside the frame, such as
// textures loaded from disk.
func NewPassGraph(externals ...string) *PassGraph {
	g := &PassGraph{externals: make(map[string]bool, len(externals))}
	for _, e := range externals {
		g.externals[e] = true
	}
	return g
}

// Add appends a pass. Passes run in the order they are added.
func (g *PassGraph) Add(p Pass) {
	g.passes = append(g.passes, p)
}

// Passes returns the passes in execution order.
func (g *PassGraph) Passes() []Pass {
	return g.passes
}

// Pass returns the pass with the given name.
func (g *PassGraph) Pass(name string) (Pass, bool) {
	i := slices.IndexFunc(g.passes, func(p Pass) bool { return p.Name == name })
	if i < 0 {
		return Pass{}, false
	}
	return g.passes[i], true
}

// Validate fails with ErrPassOrder when a pass reads a resource that no
// earlier pass wrote and that is not external, or reads what it writes.
func (g *PassGraph) Validate() error {
	written := make(map[string]string)
	for _, p := range g.passes {
		for _, r := range p.Reads {
			if slices.Contains(p.Writes, r) {
				return fmt.Errorf("pass %q reads and writes %q: %w", p.Name, r, core.ErrPassOrder)
			}
			if _, ok := written[r]; !ok && !g.externals[r] {
				return fmt.Errorf("pass %q reads %q before any pass writes it: %w", p.Name, r, core.ErrPassOrder)
			}
		}
		for _, w := range p.Writes {
			written[w] = p.Name
		}
	}
	return nil
}
