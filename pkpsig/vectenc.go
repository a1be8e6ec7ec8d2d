package pkpsig

// Mixed-radix vector encoding.
//
// A vector x[] with bounds M[] (0 <= x[i] < M[i]) is an integer in a
// range of size prod(M[i]). The encoder merges adjacent symbols pairwise
// (r = x[i] + M[i]*x[i+1], bound M[i]*M[i+1]), emits the low bytes of
// each merged value while its bound is at least vectenc_limit, and
// repeats over the merged vector until a single value remains. That last
// value is the "root"; it is smaller than its bound, which is itself
// smaller than vectenc_limit. The root is either written inline with
// encode_root(), or returned to the caller ("spilled") to be encoded
// later along with other roots.
//
// The total output is within a fraction of a bit per merge level of
// log2(prod(M[i])), and depends only on M[], so that fixed-size
// structures can be decoded without length prefixes.

// Merged bounds are kept below this value (2^14), so that the product of
// two of them fits in 28 bits.
const vectenc_limit = 16384

// Sizes of an encoded vector, as a pure function of the bounds.
type VectorLayout struct {
	// Number of bytes produced by vect_encode().
	PackedLen int

	// Exclusive upper bound on the root.
	RootBound uint32

	// Number of bytes used by encode_root() for this root bound.
	RootBytes int
}

// Compute the layout of vectors with the provided bounds. All bounds
// must be non-zero.
func vect_size(M []uint32) VectorLayout {
	nbytes := 0
	cur := make([]uint64, len(M))
	for i := range M {
		cur[i] = uint64(M[i])
	}
	for len(cur) > 1 {
		next := make([]uint64, 0, (len(cur)+1)>>1)
		for i := 0; i+1 < len(cur); i += 2 {
			m := cur[i] * cur[i+1]
			for m >= vectenc_limit {
				nbytes++
				m = (m + 255) >> 8
			}
			next = append(next, m)
		}
		if (len(cur) & 1) != 0 {
			next = append(next, cur[len(cur)-1])
		}
		cur = next
	}
	root_bound := uint64(1)
	if len(cur) == 1 {
		root_bound = cur[0]
		for root_bound >= vectenc_limit {
			nbytes++
			root_bound = (root_bound + 255) >> 8
		}
	}
	return VectorLayout{
		PackedLen: nbytes,
		RootBound: uint32(root_bound),
		RootBytes: root_bound_to_bytes(uint32(root_bound)),
	}
}

// Encode vector x[] with bounds M[] (0 <= x[i] < M[i] is assumed). The
// packed bytes are appended to dst; the extended slice, the root and the
// root bound are returned.
func vect_encode(dst []byte, x []uint32, M []uint32) ([]byte, uint32, uint32) {
	R := make([]uint64, len(x))
	cur := make([]uint64, len(M))
	for i := range M {
		R[i] = uint64(x[i])
		cur[i] = uint64(M[i])
	}
	for len(cur) > 1 {
		nR := make([]uint64, 0, (len(cur)+1)>>1)
		nM := make([]uint64, 0, (len(cur)+1)>>1)
		for i := 0; i+1 < len(cur); i += 2 {
			r := R[i] + cur[i]*R[i+1]
			m := cur[i] * cur[i+1]
			for m >= vectenc_limit {
				dst = append(dst, uint8(r))
				r >>= 8
				m = (m + 255) >> 8
			}
			nR = append(nR, r)
			nM = append(nM, m)
		}
		if (len(cur) & 1) != 0 {
			nR = append(nR, R[len(cur)-1])
			nM = append(nM, cur[len(cur)-1])
		}
		R, cur = nR, nM
	}
	if len(cur) == 0 {
		return dst, 0, 1
	}
	r, m := R[0], cur[0]
	for m >= vectenc_limit {
		dst = append(dst, uint8(r))
		r >>= 8
		m = (m + 255) >> 8
	}
	return dst, uint32(r), uint32(m)
}

// A merge step of the decoder: the pair (or carried singleton) at
// position i of the current level, its bound, and the low bytes that
// were emitted for it.
type vectenc_node struct {
	m     uint64
	low   uint64
	shift uint
	pair  bool
}

// Decode a vector with bounds M[] from its packed bytes and its root.
// The source must have exactly the length given by vect_size(M). An
// error is returned if the length is wrong, if the root is not lower
// than its bound, or if any intermediate value is not lower than its
// bound; the latter makes the encoding canonical (each vector has a
// single valid encoding).
func vect_decode(src []byte, M []uint32, root uint32) ([]uint32, error) {
	if len(M) == 0 {
		if len(src) != 0 || root != 0 {
			return nil, ErrDecodingMismatch
		}
		return []uint32{}, nil
	}

	// Top-down reconstruction needs the bounds of every level, and the
	// byte positions of each level (levels are written bottom-up).
	levels := make([][]vectenc_node, 0, 8)
	cur := make([]uint64, len(M))
	for i := range M {
		cur[i] = uint64(M[i])
	}
	off := 0
	for len(cur) > 1 {
		lev := make([]vectenc_node, 0, (len(cur)+1)>>1)
		next := make([]uint64, 0, (len(cur)+1)>>1)
		for i := 0; i+1 < len(cur); i += 2 {
			m := cur[i] * cur[i+1]
			nd := vectenc_node{m: m, pair: true}
			for m >= vectenc_limit {
				if off >= len(src) {
					return nil, ErrDecodingMismatch
				}
				nd.low |= uint64(src[off]) << nd.shift
				nd.shift += 8
				off++
				m = (m + 255) >> 8
			}
			lev = append(lev, nd)
			next = append(next, m)
		}
		if (len(cur) & 1) != 0 {
			lev = append(lev, vectenc_node{m: cur[len(cur)-1]})
			next = append(next, cur[len(cur)-1])
		}
		levels = append(levels, lev)
		cur = next
	}

	// Top value: root with its own low bytes.
	m := cur[0]
	top := vectenc_node{m: m}
	for m >= vectenc_limit {
		if off >= len(src) {
			return nil, ErrDecodingMismatch
		}
		top.low |= uint64(src[off]) << top.shift
		top.shift += 8
		off++
		m = (m + 255) >> 8
	}
	if off != len(src) || uint64(root) >= m {
		return nil, ErrDecodingMismatch
	}
	r := (uint64(root) << top.shift) | top.low
	if r >= top.m {
		return nil, ErrDecodingMismatch
	}

	// Split values level by level, from the top down.
	R := []uint64{r}
	for k := len(levels) - 1; k >= 0; k-- {
		lev := levels[k]
		below := make([]uint64, 0, 2*len(lev))
		for i, nd := range lev {
			if !nd.pair {
				below = append(below, R[i])
				continue
			}
			v := (R[i] << nd.shift) | nd.low
			if v >= nd.m {
				return nil, ErrDecodingMismatch
			}
			m0 := level_bound(levels, M, k, 2*i)
			below = append(below, v%m0, v/m0)
		}
		R = below
	}

	x := make([]uint32, len(M))
	for i := range x {
		x[i] = uint32(R[i])
	}
	return x, nil
}

// Get the bound of element j at level k (level 0 is the source vector;
// levels[k] describes the merge of level k into level k+1).
func level_bound(levels [][]vectenc_node, M []uint32, k int, j int) uint64 {
	if k == 0 {
		return uint64(M[j])
	}
	nd := levels[k-1][j]
	m := nd.m
	for m >= vectenc_limit && nd.pair {
		m = (m + 255) >> 8
	}
	return m
}

// Get the number of bytes needed to store a root lower than root_bound.
func root_bound_to_bytes(root_bound uint32) int {
	n := 0
	for b := uint64(root_bound) - 1; b > 0; b >>= 8 {
		n++
	}
	return n
}

// Append the inline encoding of a root (little-endian, fixed size).
func encode_root(dst []byte, root uint32, root_bound uint32) []byte {
	n := root_bound_to_bytes(root_bound)
	for i := 0; i < n; i++ {
		dst = append(dst, uint8(root>>(8*i)))
	}
	return dst
}

// Decode an inline root. An error is returned if the source length does
// not match the bound, or if the decoded value is not below the bound.
func decode_root(src []byte, root_bound uint32) (uint32, error) {
	if len(src) != root_bound_to_bytes(root_bound) {
		return 0, ErrDecodingMismatch
	}
	r := uint64(0)
	for i := len(src) - 1; i >= 0; i-- {
		r = (r << 8) | uint64(src[i])
	}
	if r >= uint64(root_bound) {
		return 0, ErrDecodingMismatch
	}
	return uint32(r), nil
}
