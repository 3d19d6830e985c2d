package normalize

import "github.com/ava12/gramatch/ir"

// FuseByteStrings is normalizer pass 3 (spec.md §4.5): concatenates runs of
// adjacent ByteString leaves within a Sequence into one. Must run after
// Normalize, so every Sequence it sees holds only atomic children.
func FuseByteStrings(g *ir.Grammar) *ir.Grammar {
	rb := newRebuilder(g)
	var fuse func(id int32) int32
	fuse = func(id int32) int32 {
		switch g.Kind(id) {
		case ir.Sequence:
			children := g.Children(id)
			var out []int32
			var pending []byte
			flush := func() {
				if pending != nil {
					out = append(out, rb.b.ByteString(pending))
					pending = nil
				}
			}
			for _, c := range children {
				if g.Kind(c) == ir.ByteString {
					pending = append(pending, g.ByteStringBytes(c)...)
					continue
				}
				flush()
				out = append(out, fuse(c))
			}
			flush()
			if len(out) == 1 {
				return out[0]
			}
			return rb.b.Sequence(out...)
		case ir.Choice:
			children := g.Children(id)
			out := make([]int32, len(children))
			for i, c := range children {
				out[i] = fuse(c)
			}
			return rb.b.Choice(out...)
		case ir.TagDispatch:
			return rb.copyTagDispatch(id)
		default:
			return rb.copyLeaf(id)
		}
	}

	return rb.finish(func(_ int32, bodyID int32) int32 {
		return fuse(bodyID)
	})
}
