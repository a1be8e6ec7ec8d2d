package pkpsig

import (
	"context"
	"crypto/subtle"
	"errors"
)

// Verify a signature. Returned value is true if the signature is valid,
// false otherwise. A malformed verifying key or signature is reported as
// an invalid signature; this function never fails otherwise.
func Verify(ps *ParameterSet, vkey []byte, data []byte, sig []byte) bool {
	ok, _ := VerifyContext(context.Background(), ps, vkey, data, sig)
	return ok
}

// Same as Verify, but stops early if ctx is cancelled. The returned error
// is non-nil only in that case (and the signature is then reported as
// invalid).
func VerifyContext(ctx context.Context, ps *ParameterSet, vkey []byte, data []byte, sig []byte) (bool, error) {
	if len(sig) != SignatureSize(ps) {
		return false, nil
	}
	pk, err := decode_public_key(ps, vkey)
	if err != nil {
		return false, nil
	}
	err = verify_inner(ctx, ps, pk, data, sig)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false, err
	default:
		return false, nil
	}
}

var errSignatureMismatch = errors.New("pkpsig: signature does not match")

// Encoded responses of one run, cut out of the signature.
type runProof struct {
	common []byte
	b_dep  []byte
	spills []uint32
}

// Verify a signature of the correct length. A nil result means the
// signature is valid.
func verify_inner(ctx context.Context, ps *ParameterSet, pk *publicKey, data []byte, sig []byte) error {
	nsalt := ps.bytes_msghashsalt()
	nseed := ps.bytes_challengeseed()
	salt := sig[:nsalt]
	ch1seed := sig[nsalt : nsalt+nseed]
	ch2seed := sig[nsalt+nseed : nsalt+2*nseed]
	off := nsalt + 2*nseed

	salt_and_hash := message_salt_and_hash(ps, pk.encoded, salt, data)
	vctx := new_verifier_context(ps, pk, salt_and_hash)
	nruns := ps.nruns_total()
	c := expand_challenge1(ps, salt_and_hash, ch1seed)
	one_minus_b := expand_challenge2(ps, salt_and_hash, ch2seed)

	// Cut the signature into per-run responses. All sizes are known from
	// the challenges alone.
	runs := make([]verifierChallenge2, nruns)
	proofs := make([]runProof, nruns)
	var spill_owners []int
	ncommon := vctx.proof_size_common()
	for _, i := range run_order(one_minus_b) {
		ch, err := new_verifier_run(vctx, i).challenge1(uint32(c[i]))
		if err != nil {
			return err
		}
		runs[i], err = ch.challenge2(one_minus_b[i])
		if err != nil {
			return err
		}
		nbdep, spill_bounds := runs[i].proof_size_b_dep()
		proofs[i].common = sig[off : off+ncommon]
		off += ncommon
		proofs[i].b_dep = sig[off : off+nbdep]
		off += nbdep
		for range spill_bounds {
			spill_owners = append(spill_owners, i)
		}
	}
	if ps.MergeVectorRoots {
		lay := ps.layout_spills
		packed := sig[off : off+lay.PackedLen]
		off += lay.PackedLen
		root, err := decode_root(sig[off:off+lay.RootBytes], lay.RootBound)
		if err != nil {
			return err
		}
		off += lay.RootBytes
		spills, err := vect_decode(packed, ps.spill_bounds, root)
		if err != nil {
			return err
		}
		if len(spills) != len(spill_owners) {
			return ErrDecodingMismatch
		}
		for k, i := range spill_owners {
			proofs[i].spills = append(proofs[i].spills, spills[k])
		}
	}
	if off != len(sig) {
		return ErrDecodingMismatch
	}

	// Recompute the commitments and z vectors of every run.
	coms := make([]indexedLeaf, 2*nruns)
	zs := make([]indexedLeaf, nruns)
	err := for_each_run(ctx, nruns, func(i int) error {
		com_unopened, err := runs[i].decode_common(proofs[i].common)
		if err != nil {
			return err
		}
		dec, err := runs[i].decode_b_dep(proofs[i].b_dep, proofs[i].spills)
		if err != nil {
			return err
		}
		com_opened := dec.commit1()
		coms[com_unopened.slot] = indexedLeaf{index: com_unopened.slot, leaf: com_unopened.value}
		coms[com_opened.slot] = indexedLeaf{index: com_opened.slot, leaf: com_opened.value}
		zs[i] = indexedLeaf{index: i, leaf: dec.commit2()}
		return nil
	})
	if err != nil {
		return err
	}

	ch1seed_check, err := challenge1_seed(ps, salt_and_hash, coms)
	if err != nil {
		return err
	}
	ch2seed_check, err := challenge2_seed(ps, salt_and_hash, ch1seed, zs)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(ch1seed, ch1seed_check)&
		subtle.ConstantTimeCompare(ch2seed, ch2seed_check) != 1 {
		return errSignatureMismatch
	}
	return nil
}
