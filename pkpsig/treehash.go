package pkpsig

import (
	"errors"
	"slices"
)

// Tree hashing.
//
// Leaves are (optionally) hashed into nodes, then groups of up to
// degree consecutive nodes are hashed together, level after level, until
// a single node remains. Every hash invocation gets its own index from a
// counter which runs across the whole tree (it is not reset at each
// level), so that no node can be replaced by a node from another level
// or position.

// Hash one level. Returns the next unused index and the parent nodes.
func tree_hash_level(h hashContext, first_index uint32, params []byte,
	nodes [][]byte, nodebytes int, degree int) (uint32, [][]byte) {

	dest := make([][]byte, 0, (len(nodes)+degree-1)/degree)
	hash_index := first_index
	buf := make([]byte, 0, len(params)+degree*nodebytes)
	for i := 0; i < len(nodes); i += degree {
		buf = append(buf[:0], params...)
		for j := i; j < i+degree && j < len(nodes); j++ {
			buf = append(buf, nodes[j]...)
		}
		dest = append(dest, h.digest_index_suffix(hash_index, buf, nodebytes))
		hash_index++
	}
	return hash_index, dest
}

// Reduce an ordered list of leaves into a single outbytes-byte digest.
// If prehash_leaves is false, every leaf must already be nodebytes long.
// outbytes must not exceed nodebytes, and degree must be at least 2.
func tree_hash(context uint8, prefix []byte, params []byte, leaves [][]byte,
	prehash_leaves bool, nodebytes int, degree int, outbytes int) []byte {

	h := hash_init(context, prefix)
	var nodes [][]byte
	next_index := uint32(0)
	if prehash_leaves {
		nodes = make([][]byte, len(leaves))
		buf := make([]byte, 0, len(params))
		for i := range leaves {
			buf = append(append(buf[:0], params...), leaves[i]...)
			nodes[i] = h.digest_index_suffix(uint32(i), buf, nodebytes)
		}
		next_index = uint32(len(leaves))
	} else {
		nodes = leaves
	}
	if len(nodes) == 0 {
		nodes = [][]byte{h.digest_index_suffix(next_index, params, nodebytes)}
	}
	for len(nodes) > 1 {
		next_index, nodes = tree_hash_level(h, next_index, params, nodes, nodebytes, degree)
	}
	out := make([]byte, outbytes)
	copy(out, nodes[0][:outbytes])
	return out
}

// A leaf with its position in the tree.
type indexedLeaf struct {
	index int
	leaf  []byte
}

var errTreeIndices = errors.New("pkpsig: tree hash leaf indices are not 0..n-1")

// Same as tree_hash(), with leaves provided in any order along with their
// index. Indices must be exactly 0..len(leaves)-1.
func tree_hash_sorting(context uint8, prefix []byte, params []byte,
	indexed_leaves []indexedLeaf, prehash_leaves bool,
	nodebytes int, degree int, outbytes int) ([]byte, error) {

	sorted := slices.Clone(indexed_leaves)
	slices.SortFunc(sorted, func(a, b indexedLeaf) int {
		return a.index - b.index
	})
	leaves := make([][]byte, len(sorted))
	for i := range sorted {
		if sorted[i].index != i {
			return nil, errTreeIndices
		}
		leaves[i] = sorted[i].leaf
	}
	return tree_hash(context, prefix, params, leaves, prehash_leaves,
		nodebytes, degree, outbytes), nil
}
