package pkpsig

import (
	"encoding/binary"
	"slices"

	sha3 "golang.org/x/crypto/sha3"
)

// Domain separation contexts (first byte of every hash input).
const (
	hashctx_pubparams          = 0
	hashctx_seckeyseedexpand   = 1
	hashctx_seckeychecksum     = 2
	hashctx_messagehash        = 3
	hashctx_expandblindingseed = 4
	hashctx_commitment         = 5
	hashctx_challenge1hash     = 6
	hashctx_challenge1expand   = 7
	hashctx_challenge2hash     = 8
	hashctx_challenge2expand   = 9

	// Contexts used only by the signer; their outputs are never checked
	// by a verifier.
	hashctx_internal_genmsghashsalt         = 0x80
	hashctx_internal_genblindingseedgenseed = 0x81
	hashctx_internal_genblindingseed        = 0x82
	hashctx_internal_keygenseedexpand       = 0x83
)

// Indices within the contexts above.
const (
	hashidx_pubparams_v = 0
	hashidx_pubparams_a = 1 // row i uses index hashidx_pubparams_a + i

	hashidx_seckeyseedexpand_pi_inv = 0

	hashidx_expandblindingseed_run_index_factor = 4
	hashidx_expandblindingseed_pi_sigma_inv     = 0
	hashidx_expandblindingseed_r_sigma          = 1
	hashidx_expandblindingseed_commitment       = 2
)

// A hashContext is a SHAKE256 state which has absorbed a context byte
// and an optional prefix. It is used as an immutable value: every
// derivation works on a clone, so that any number of derivations
// (including concurrent ones) can start from the same context.
type hashContext struct {
	sh sha3.ShakeHash
}

func hash_init(context uint8, prefix []byte) hashContext {
	sh := sha3.NewShake256()
	sh.Write([]byte{context})
	sh.Write(prefix)
	return hashContext{sh: sh}
}

// Hash context || prefix || index || seed into len(out) bytes.
func (h hashContext) expand(index uint32, seed []byte, out []byte) {
	var ib [4]byte
	binary.LittleEndian.PutUint32(ib[:], index)
	sh := h.sh.Clone()
	sh.Write(ib[:])
	sh.Write(seed)
	sh.Read(out)
}

// Hash context || prefix || suffix into len(out) bytes.
func (h hashContext) digest(suffix []byte, out []byte) {
	sh := h.sh.Clone()
	sh.Write(suffix)
	sh.Read(out)
}

// Convenience wrapper around digest() returning a new slice.
func (h hashContext) digest_bytes(suffix []byte, outlen int) []byte {
	out := make([]byte, outlen)
	h.digest(suffix, out)
	return out
}

// Hash context || prefix || index || suffix into outlen bytes.
func (h hashContext) digest_index_suffix(index uint32, suffix []byte, outlen int) []byte {
	out := make([]byte, outlen)
	h.expand(index, suffix, out)
	return out
}

// Hash context || prefix || index || perm || fqvec into outlen bytes.
func (h hashContext) digest_index_perm_fqvec(index uint32, p perm, v []uint16, outlen int) []byte {
	buf := make([]byte, 0, len(p)+2*len(v))
	buf = append(buf, p...)
	buf = fqvec_to_hash_input(buf, v)
	return h.digest_index_suffix(index, buf, outlen)
}

// Get n little-endian 32-bit words from expand().
func (h hashContext) expand_words(index uint32, seed []byte, n int) []uint32 {
	buf := make([]byte, 4*n)
	h.expand(index, seed, buf)
	return bytes_to_words(buf)
}

func bytes_to_words(buf []byte) []uint32 {
	w := make([]uint32, len(buf)>>2)
	for i := range w {
		w[i] = binary.LittleEndian.Uint32(buf[4*i:])
	}
	return w
}

// Expand into a permutation of n elements (n <= 128). See
// words_to_perm() for the rejection rule.
func (h hashContext) expand_to_perm(index uint32, seed []byte, n int, check_uniform bool) (perm, bool) {
	return words_to_perm(h.expand_words(index, seed, n), check_uniform)
}

// Turn len(buf) words (at most 128) into a permutation. Each word gets
// its position in its low 7 bits, the words are sorted, and the positions
// are read back in sorted order. If check_uniform is set and two words
// have identical high 25 bits, the ordering between them was decided by
// the position tags rather than by the hash output, so the result would
// not be uniform; false is returned in that case. buf is modified.
func words_to_perm(buf []uint32, check_uniform bool) (perm, bool) {
	n := len(buf)
	for i := range buf {
		buf[i] = (buf[i] &^ 0x7F) | uint32(i)
	}
	slices.Sort(buf)
	if check_uniform {
		for i := 0; i+1 < n; i++ {
			if (buf[i] &^ 0x7F) == (buf[i+1] &^ 0x7F) {
				return nil, false
			}
		}
	}
	p := make(perm, n)
	for i := range buf {
		p[i] = uint8(buf[i] & 0x7F)
	}
	return p, true
}

// Largest multiple of q that fits in 2^32; words at or above it would
// bias the reduction.
const fq_ceiling = 0x100000000 - (0x100000000 % PKP_Q)

func words_to_fqvec(buf []uint32, check_uniform bool) ([]uint16, bool) {
	v := make([]uint16, len(buf))
	for i, w := range buf {
		if check_uniform && uint64(w) >= fq_ceiling {
			return nil, false
		}
		v[i] = fq_reduce(uint64(w))
	}
	return v, true
}

// Expand into a vector of n elements modulo q. With check_uniform, false
// is returned if any drawn word would make the output biased.
func (h hashContext) expand_to_fqvec(index uint32, seed []byte, n int, check_uniform bool) ([]uint16, bool) {
	return words_to_fqvec(h.expand_words(index, seed, n), check_uniform)
}

// Expand into a 0/1 vector of n elements with exactly weight ones. The
// distribution is not exactly uniform over all such vectors (ties between
// words are broken by the tag bit); this is acceptable where the output
// only needs to be unpredictable.
func (h hashContext) expand_suffix_to_fwv_nonuniform(suffix []byte, n int, weight int) []uint8 {
	buf := make([]byte, 4*n)
	h.digest(suffix, buf)
	w := bytes_to_words(buf)
	for i := range w {
		w[i] &^= 1
		if i < weight {
			w[i] |= 1
		}
	}
	slices.Sort(w)
	out := make([]uint8, n)
	for i := range w {
		out[i] = uint8(w[i] & 1)
	}
	return out
}

// Append a field vector as hash input (16-bit little-endian words).
func fqvec_to_hash_input(dst []byte, v []uint16) []byte {
	for _, x := range v {
		dst = append(dst, uint8(x), uint8(x>>8))
	}
	return dst
}
