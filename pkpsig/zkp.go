package pkpsig

import (
	"fmt"
)

// One protocol run, as seen by the prover and by the verifier.
//
// The prover goes through the passes in a fixed order; each pass is a
// method on the state produced by the previous one and returns the next
// state, which carries exactly the values known at that point. A value
// cannot be read before the pass that produces it, since it does not
// exist in the earlier state types.
//
//	proverRun --setup--> proverSetup --commit1--> proverCommit1
//	  --challenge1--> proverChallenge1 --commit2--> proverCommit2
//	  --challenge2--> proverResponse (encode_common, encode_b_dep)
//
// The verifier receives both challenges first and then decodes the proof:
//
//	verifierRun --challenge1--> verifierChallenge1 --challenge2-->
//	  verifierChallenge2 --decode_b_dep--> verifierDecoded (commit1, commit2)

// A commitment and its slot in the first challenge hash.
type commitment struct {
	slot  int
	value []byte
}

// Slot of com_bit for a run: com1 goes to 2*run_index, com0 to
// 2*run_index+1, whatever the challenge bit b turns out to be. The
// commitment left unopened by the response (com_(1-b)) is thus always
// found at commitment_slot(run_index, 1-b).
func commitment_slot(run_index int, bit uint8) int {
	return 2*run_index + 1 - int(bit)
}

// Encoded proof data: fixed-size bytes, plus vector roots whose encoding
// is deferred (only with the merged-roots format).
type proofPart struct {
	bulk         []byte
	spills       []uint32
	spill_bounds []uint32
}

func check_challenge1(c uint32) error {
	// q itself is accepted (and acts as zero).
	if c > PKP_Q {
		return fmt.Errorf("%w: first challenge %d not in [0, %d]", ErrContractViolation, c, PKP_Q)
	}
	return nil
}

func check_challenge2(one_minus_b uint8) error {
	if one_minus_b > 1 {
		return fmt.Errorf("%w: second challenge %d not in {0, 1}", ErrContractViolation, one_minus_b)
	}
	return nil
}

// ---------------------------------------------------------------------
// Prover

type proverRun struct {
	ctx       *proverContext
	run_index int
}

func new_prover_run(ctx *proverContext, run_index int) proverRun {
	return proverRun{ctx: ctx, run_index: run_index}
}

type proverSetup struct {
	proverRun
	blindingseed []byte
	pi_sigma_inv perm
	r_sigma      []uint16
	com1         []byte
}

// Generate the blinding seed and derived values. com1 commits to
// (pi sigma, r_sigma).
func (r proverRun) setup() proverSetup {
	seed, bv := r.ctx.generate_blindingseed(r.run_index)
	return proverSetup{
		proverRun:    r,
		blindingseed: seed,
		pi_sigma_inv: bv.pi_sigma_inv,
		r_sigma:      bv.r_sigma,
		com1:         bv.commitment,
	}
}

type proverCommit1 struct {
	proverSetup
	sigma      perm
	v_pi_sigma []uint16
	com0       []byte
}

// First commitment pass. com0 commits to (sigma, A*r).
func (s proverSetup) commit1() (proverCommit1, [2]commitment) {
	ctx := s.ctx
	v_pi_sigma, sigma := apply_and_compose_inv(ctx.pk.v, ctx.sk.pi_inv, s.pi_sigma_inv)
	r := apply_inv(s.r_sigma, sigma)
	Ar := ctx.pk.A.mult_vec(r)
	com0 := ctx.h_com0.digest_index_perm_fqvec(uint32(s.run_index), sigma, Ar,
		ctx.ps.bytes_commithash())
	next := proverCommit1{
		proverSetup: s,
		sigma:       sigma,
		v_pi_sigma:  v_pi_sigma,
		com0:        com0,
	}
	return next, [2]commitment{
		{slot: commitment_slot(s.run_index, 1), value: s.com1},
		{slot: commitment_slot(s.run_index, 0), value: com0},
	}
}

type proverChallenge1 struct {
	proverCommit1
	c uint16
}

// Set the first challenge (in GF(q), with q itself accepted).
func (s proverCommit1) challenge1(c uint32) (proverChallenge1, error) {
	if err := check_challenge1(c); err != nil {
		return proverChallenge1{}, err
	}
	return proverChallenge1{proverCommit1: s, c: uint16(c)}, nil
}

type proverCommit2 struct {
	proverChallenge1
	z []uint16
}

// Second commitment pass: z = r_sigma + c*v_(pi sigma). The returned
// bytes are the hash input for the second challenge.
func (s proverChallenge1) commit2() (proverCommit2, []byte) {
	z := fq_vec_add_scaled(s.r_sigma, s.c, s.v_pi_sigma)
	return proverCommit2{proverChallenge1: s, z: z}, fqvec_to_hash_input(nil, z)
}

type proverResponse struct {
	proverCommit2
	b uint8
}

// Set the second challenge. The caller provides 1-b: a value of 1
// selects b = 0, the longer (z, sigma) response.
func (s proverCommit2) challenge2(one_minus_b uint8) (proverResponse, error) {
	if err := check_challenge2(one_minus_b); err != nil {
		return proverResponse{}, err
	}
	return proverResponse{proverCommit2: s, b: 1 - one_minus_b}, nil
}

// ---------------------------------------------------------------------
// Verifier

type verifierRun struct {
	ctx       *verifierContext
	run_index int
}

func new_verifier_run(ctx *verifierContext, run_index int) verifierRun {
	return verifierRun{ctx: ctx, run_index: run_index}
}

type verifierChallenge1 struct {
	verifierRun
	c uint16
}

func (r verifierRun) challenge1(c uint32) (verifierChallenge1, error) {
	if err := check_challenge1(c); err != nil {
		return verifierChallenge1{}, err
	}
	return verifierChallenge1{verifierRun: r, c: uint16(c)}, nil
}

type verifierChallenge2 struct {
	verifierChallenge1
	b uint8
}

func (s verifierChallenge1) challenge2(one_minus_b uint8) (verifierChallenge2, error) {
	if err := check_challenge2(one_minus_b); err != nil {
		return verifierChallenge2{}, err
	}
	return verifierChallenge2{verifierChallenge1: s, b: 1 - one_minus_b}, nil
}

type verifierDecoded struct {
	verifierChallenge2
	com_b []byte
	z     []uint16
}

// Commitment recovered from the b-dependent proof, in the slot the
// prover used for it.
func (s verifierDecoded) commit1() commitment {
	return commitment{slot: commitment_slot(s.run_index, s.b), value: s.com_b}
}

// Hash input for the second challenge, as returned by the prover's
// commit2().
func (s verifierDecoded) commit2() []byte {
	return fqvec_to_hash_input(nil, s.z)
}
