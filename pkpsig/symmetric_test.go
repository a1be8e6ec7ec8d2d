package pkpsig

import (
	"bytes"
	"testing"

	sha3 "golang.org/x/crypto/sha3"
)

func TestHashContextFraming(t *testing.T) {
	// expand() hashes context || prefix || index (LE32) || seed.
	h := hash_init(hashctx_commitment, []byte("prefix"))
	out := make([]byte, 40)
	h.expand(0x01020304, []byte("seed"), out)

	ref := make([]byte, 40)
	sh := sha3.NewShake256()
	sh.Write([]byte{hashctx_commitment})
	sh.Write([]byte("prefix"))
	sh.Write([]byte{0x04, 0x03, 0x02, 0x01})
	sh.Write([]byte("seed"))
	sh.Read(ref)
	if !bytes.Equal(out, ref) {
		t.Fatalf("wrong expand() framing")
	}

	// The context is never modified by derivations.
	h.expand(0x01020304, []byte("seed"), out)
	if !bytes.Equal(out, ref) {
		t.Fatalf("context modified by a previous derivation")
	}

	d1 := h.digest_bytes([]byte("abc"), 32)
	d2 := hash_init(hashctx_commitment, []byte("prefixabc")).digest_bytes(nil, 32)
	if !bytes.Equal(d1, d2) {
		t.Fatalf("digest() is not a plain continuation of the prefix")
	}
	d3 := hash_init(hashctx_challenge1hash, []byte("prefixabc")).digest_bytes(nil, 32)
	if bytes.Equal(d1, d3) {
		t.Fatalf("contexts are not separated")
	}
}

func TestExpandToPerm(t *testing.T) {
	h := hash_init(hashctx_expandblindingseed, []byte("perm"))
	rejected := 0
	for i := uint32(0); i < 500; i++ {
		p, ok := h.expand_to_perm(i, nil, PKP_N, true)
		q, _ := h.expand_to_perm(i, nil, PKP_N, false)
		if !check_perm(q) {
			t.Fatalf("non-uniform expansion is not a permutation")
		}
		if !ok {
			rejected++
			continue
		}
		if !check_perm(p) || string(p) != string(q) {
			t.Fatalf("uniform and non-uniform expansions differ")
		}
	}
	// Rejection has probability about n^2/2^26 per draw.
	if rejected > 5 {
		t.Fatalf("too many rejected permutations: %d", rejected)
	}

	// Find a rejected draw; its non-uniform expansion is still a
	// permutation.
	for i := uint32(500); i < 1<<20; i++ {
		if _, ok := h.expand_to_perm(i, nil, PKP_N, true); ok {
			continue
		}
		q, ok := h.expand_to_perm(i, nil, PKP_N, false)
		if !ok || !check_perm(q) {
			t.Fatalf("non-uniform expansion failed after a rejection")
		}
		return
	}
	t.Fatalf("no rejected permutation found")
}

func TestWordsToPerm(t *testing.T) {
	// Tags: 0x300|0, 0x100|1, 0x200|2, sorted as positions 1, 2, 0.
	p, ok := words_to_perm([]uint32{0x300, 0x100, 0x200}, true)
	if !ok || string(p) != string(perm{1, 2, 0}) {
		t.Fatalf("wrong permutation: %v", p)
	}

	// Words 0 and 1 share their high 25 bits; only the position tags
	// order them.
	w := []uint32{0x180, 0x1FF, 0x80}
	if _, ok := words_to_perm(append([]uint32(nil), w...), true); ok {
		t.Fatalf("colliding words accepted")
	}
	p, ok = words_to_perm(w, false)
	if !ok || string(p) != string(perm{2, 0, 1}) {
		t.Fatalf("wrong non-uniform permutation: %v", p)
	}

	// Low 7 bits never matter.
	p, ok = words_to_perm([]uint32{0x37F, 0x155, 0x201}, true)
	if !ok || string(p) != string(perm{1, 2, 0}) {
		t.Fatalf("low bits changed the permutation: %v", p)
	}
}

func TestExpandToFqvec(t *testing.T) {
	h := hash_init(hashctx_pubparams, []byte("fqvec"))
	for i := uint32(0); i < 200; i++ {
		v, ok := h.expand_to_fqvec(i, []byte{1, 2, 3}, PKP_N, true)
		w, _ := h.expand_to_fqvec(i, []byte{1, 2, 3}, PKP_N, false)
		for _, x := range w {
			if x >= PKP_Q {
				t.Fatalf("element out of range: %d", x)
			}
		}
		if ok && !equal_fqvec(v, w) {
			t.Fatalf("uniform and non-uniform expansions differ")
		}
	}

	if _, ok := words_to_fqvec([]uint32{0, fq_ceiling - 1}, true); !ok {
		t.Fatalf("word below the ceiling rejected")
	}
	if _, ok := words_to_fqvec([]uint32{0, fq_ceiling}, true); ok {
		t.Fatalf("word at the ceiling accepted")
	}
	v, ok := words_to_fqvec([]uint32{fq_ceiling, 0xFFFFFFFF}, false)
	if !ok || v[0] != uint16(fq_ceiling%PKP_Q) || v[1] != uint16(0xFFFFFFFF%PKP_Q) {
		t.Fatalf("non-uniform reduction is wrong")
	}
}

func TestExpandFixedWeight(t *testing.T) {
	h := hash_init(hashctx_challenge2expand, []byte("fwv"))
	counts := make([]int, 163)
	for i := 0; i < 200; i++ {
		suffix := []byte{byte(i), byte(i >> 8)}
		w := h.expand_suffix_to_fwv_nonuniform(suffix, 163, 55)
		ones := 0
		for j, x := range w {
			if x > 1 {
				t.Fatalf("non-binary output")
			}
			ones += int(x)
			counts[j] += int(x)
		}
		if ones != 55 {
			t.Fatalf("weight %d (exp: 55)", ones)
		}
		if !bytes.Equal(w, h.expand_suffix_to_fwv_nonuniform(suffix, 163, 55)) {
			t.Fatalf("expansion is not deterministic")
		}
	}
	// Every position should be selected at some point.
	for j, c := range counts {
		if c == 0 {
			t.Fatalf("position %d never selected", j)
		}
	}
}
