package pkpsig

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func test_prover_context(t *testing.T, ps *ParameterSet) *proverContext {
	skey, _ := keygen_inner(ps, []byte("zkp test key seed, 32 bytes long"))
	sk, err := decode_secret_key(ps, skey)
	if err != nil {
		t.Fatal(err)
	}
	salt_and_hash := make([]byte, ps.bytes_msghashsalt()+ps.bytes_messagehash())
	for i := range salt_and_hash {
		salt_and_hash[i] = byte(i)
	}
	return new_prover_context(ps, sk, salt_and_hash)
}

func TestCommitmentSlots(t *testing.T) {
	seen := make(map[int]bool)
	for run := 0; run < 10; run++ {
		for bit := uint8(0); bit <= 1; bit++ {
			s := commitment_slot(run, bit)
			if s < 0 || s >= 20 || seen[s] {
				t.Fatalf("bad slot %d for run %d, bit %d", s, run, bit)
			}
			seen[s] = true
		}
		if commitment_slot(run, 1) != 2*run {
			t.Fatalf("com1 not in the even slot")
		}
	}
}

func TestBlindingSeed(t *testing.T) {
	ctx := test_prover_context(t, ParamsQ977N61M28C1S)
	seed, bv := ctx.generate_blindingseed(3)
	if len(seed) != ctx.ps.bytes_blindingseed() {
		t.Fatalf("wrong blinding seed length: %d", len(seed))
	}
	seed2, _ := ctx.generate_blindingseed(3)
	if !bytes.Equal(seed, seed2) {
		t.Fatalf("blinding seed is not deterministic")
	}
	seed3, _ := ctx.generate_blindingseed(4)
	if bytes.Equal(seed, seed3) {
		t.Fatalf("blinding seeds of different runs are equal")
	}

	// The verifier's expansion of the seed is the prover's.
	bv2, ok := ctx.verifierContext.expand_blindingseed(3, seed, false)
	if !ok {
		t.Fatalf("expansion failed")
	}
	if string(bv.pi_sigma_inv) != string(bv2.pi_sigma_inv) ||
		!equal_fqvec(bv.r_sigma, bv2.r_sigma) ||
		!bytes.Equal(bv.commitment, bv2.commitment) {
		t.Fatalf("blinding values differ")
	}

	// The run index is bound into the expansion.
	bv3, _ := ctx.verifierContext.expand_blindingseed(4, seed, false)
	if bytes.Equal(bv.commitment, bv3.commitment) {
		t.Fatalf("expansion does not depend on the run index")
	}
}

// When the first candidate of a run does not expand uniformly, the
// blinding seed comes from a new chain keyed with the generator seed
// drawn along with that candidate.
func TestBlindingSeedRatchet(t *testing.T) {
	ps := ParamsQ977N61M28C1S
	skey, _ := keygen_inner(ps, []byte("zkp test key seed, 32 bytes long"))
	sk, err := decode_secret_key(ps, skey)
	if err != nil {
		t.Fatal(err)
	}
	nseed := bytes_internal_blindingseedgenseed
	first := make([]byte, nseed+ps.bytes_blindingseed())
	second := make([]byte, len(first))
	salt_and_hash := make([]byte, ps.bytes_msghashsalt()+ps.bytes_messagehash())
	for attempt := uint32(0); attempt < 10000; attempt++ {
		binary.LittleEndian.PutUint32(salt_and_hash, attempt)
		ctx := new_prover_context(ps, sk, salt_and_hash)
		for run := 0; run < ps.nruns_total(); run++ {
			ctx.h_gbs.expand(uint32(run), nil, first)
			if _, ok := ctx.expand_blindingseed(run, first[nseed:], true); ok {
				continue
			}
			h := hash_init(hashctx_internal_genblindingseed, first[:nseed])
			h.expand(uint32(run), nil, second)
			if _, ok := ctx.expand_blindingseed(run, second[nseed:], true); !ok {
				// Two rejections in a row; look for a simpler case.
				continue
			}
			seed, bv := ctx.generate_blindingseed(run)
			if bytes.Equal(seed, first[nseed:]) {
				t.Fatalf("rejected candidate returned (attempt=%d, run=%d)", attempt, run)
			}
			if !bytes.Equal(seed, second[nseed:]) {
				t.Fatalf("blinding seed not taken from the second chain (attempt=%d, run=%d)",
					attempt, run)
			}
			if !check_perm(bv.pi_sigma_inv) {
				t.Fatalf("invalid blinding permutation")
			}
			return
		}
	}
	t.Fatalf("no rejected blinding seed candidate found")
}

func TestChallengeContract(t *testing.T) {
	ctx := test_prover_context(t, ParamsQ977N61M28C1S)
	s, _ := new_prover_run(ctx, 0).setup().commit1()
	if _, err := s.challenge1(PKP_Q); err != nil {
		t.Fatalf("challenge q rejected: %v", err)
	}
	if _, err := s.challenge1(PKP_Q + 1); !errors.Is(err, ErrContractViolation) {
		t.Fatalf("challenge q+1 accepted")
	}
	c1, _ := s.challenge1(5)
	c2, _ := c1.commit2()
	if _, err := c2.challenge2(2); !errors.Is(err, ErrContractViolation) {
		t.Fatalf("second challenge 2 accepted")
	}

	v := new_verifier_run(&ctx.verifierContext, 0)
	if _, err := v.challenge1(PKP_Q + 1); !errors.Is(err, ErrContractViolation) {
		t.Fatalf("verifier accepted challenge q+1")
	}
	vc, err := v.challenge1(PKP_Q)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := vc.challenge2(7); !errors.Is(err, ErrContractViolation) {
		t.Fatalf("verifier accepted second challenge 7")
	}
}

// Drive one run on both sides and check that the verifier recomputes
// the prover's commitments and z vector.
func TestProverVerifierRun(t *testing.T) {
	for _, ps := range ParameterSets() {
		ctx := test_prover_context(t, ps)
		vctx := &ctx.verifierContext
		for run := 0; run < 4; run++ {
			for _, c := range []uint32{0, 1, 500, PKP_Q - 1, PKP_Q} {
				for _, omb := range []uint8{0, 1} {
					test_run(t, ctx, vctx, run, c, omb)
				}
			}
		}
	}
}

func test_run(t *testing.T, ctx *proverContext, vctx *verifierContext, run int, c uint32, omb uint8) {
	ps := ctx.ps
	s1, coms := new_prover_run(ctx, run).setup().commit1()
	s2, err := s1.challenge1(c)
	if err != nil {
		t.Fatal(err)
	}
	s3, z := s2.commit2()
	resp, err := s3.challenge2(omb)
	if err != nil {
		t.Fatal(err)
	}
	common := resp.encode_common()
	bdep := resp.encode_b_dep()

	v1, err := new_verifier_run(vctx, run).challenge1(c)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := v1.challenge2(omb)
	if err != nil {
		t.Fatal(err)
	}
	if len(common.bulk) != vctx.proof_size_common() {
		t.Fatalf("common part length %d", len(common.bulk))
	}
	nbytes, spill_bounds := v2.proof_size_b_dep()
	if len(bdep.bulk) != nbytes {
		t.Fatalf("b-dependent part length %d (exp: %d)", len(bdep.bulk), nbytes)
	}
	if len(bdep.spills) != len(spill_bounds) {
		t.Fatalf("%d spills (exp: %d)", len(bdep.spills), len(spill_bounds))
	}
	for i := range spill_bounds {
		if bdep.spill_bounds[i] != spill_bounds[i] || bdep.spills[i] >= spill_bounds[i] {
			t.Fatalf("bad spill %d", i)
		}
	}

	unopened, err := v2.decode_common(common.bulk)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := v2.decode_b_dep(bdep.bulk, bdep.spills)
	if err != nil {
		t.Fatal(err)
	}
	opened := dec.commit1()
	for _, com := range []commitment{unopened, opened} {
		found := false
		for _, pc := range coms {
			if pc.slot == com.slot {
				found = true
				if !bytes.Equal(pc.value, com.value) {
					t.Fatalf("%s: commitment mismatch (run=%d, c=%d, 1-b=%d, slot=%d)",
						ps.Name, run, c, omb, com.slot)
				}
			}
		}
		if !found {
			t.Fatalf("slot %d not produced by the prover", com.slot)
		}
	}
	if unopened.slot == opened.slot {
		t.Fatalf("both commitments in the same slot")
	}
	if !bytes.Equal(dec.commit2(), z) {
		t.Fatalf("%s: z mismatch (run=%d, c=%d, 1-b=%d)", ps.Name, run, c, omb)
	}

	// A response checked against another challenge must not yield the
	// same z (b = 0 carries z itself, so only b = 1 is checked).
	if omb == 0 && c < PKP_Q-1 {
		w1, _ := new_verifier_run(vctx, run).challenge1(c + 1)
		w2, _ := w1.challenge2(omb)
		dec2, err := w2.decode_b_dep(bdep.bulk, bdep.spills)
		if err != nil {
			t.Fatal(err)
		}
		if bytes.Equal(dec2.commit2(), z) {
			t.Fatalf("z does not depend on the challenge")
		}
	}
}

func TestDecodeBDepRejects(t *testing.T) {
	for _, ps := range ParameterSets() {
		ctx := test_prover_context(t, ps)
		s1, _ := new_prover_run(ctx, 0).setup().commit1()
		s2, _ := s1.challenge1(17)
		s3, _ := s2.commit2()
		resp, _ := s3.challenge2(1)
		bdep := resp.encode_b_dep()

		v1, _ := new_verifier_run(&ctx.verifierContext, 0).challenge1(17)
		v2, _ := v1.challenge2(1)
		if _, err := v2.decode_b_dep(bdep.bulk[1:], bdep.spills); err != ErrDecodingMismatch {
			t.Fatalf("%s: short proof accepted", ps.Name)
		}
		if _, err := v2.decode_common(nil); err != ErrDecodingMismatch {
			t.Fatalf("%s: empty commitment accepted", ps.Name)
		}
		if ps.MergeVectorRoots {
			if _, err := v2.decode_b_dep(bdep.bulk, nil); err != ErrDecodingMismatch {
				t.Fatalf("%s: missing spills accepted", ps.Name)
			}
			bad := []uint32{bdep.spills[0], ps.layout_perm.RootBound}
			if _, err := v2.decode_b_dep(bdep.bulk, bad); err != ErrDecodingMismatch {
				t.Fatalf("%s: out-of-range spill accepted", ps.Name)
			}
		} else {
			bad := bytes.Clone(bdep.bulk)
			bad[ps.layout_z.PackedLen] = 0xFF
			if _, err := v2.decode_b_dep(bad, nil); err != ErrDecodingMismatch {
				t.Fatalf("%s: out-of-range z root accepted", ps.Name)
			}
		}
	}
}
