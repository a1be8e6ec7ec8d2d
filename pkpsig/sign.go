package pkpsig

import (
	"context"
	"errors"
)

// Sign a message.
//
//	- ps is the parameter set.
//	- skey is the encoded signing key.
//	- data is the message to sign.
//
// Signing is deterministic: the salt and all blinding values are derived
// from the signing key and the message, so signing the same message twice
// yields the same signature. The protocol runs are computed concurrently.
// An error is returned if the signing key cannot be decoded.
func Sign(ps *ParameterSet, skey []byte, data []byte) ([]byte, error) {
	return SignContext(context.Background(), ps, skey, data)
}

// Same as Sign, but stops early (returning ctx.Err()) if ctx is
// cancelled.
func SignContext(ctx context.Context, ps *ParameterSet, skey []byte, data []byte) ([]byte, error) {
	sk, err := decode_secret_key(ps, skey)
	if err != nil {
		return nil, err
	}
	return sign_inner(ctx, ps, sk, data)
}

func sign_inner(ctx context.Context, ps *ParameterSet, sk *secretKey, data []byte) ([]byte, error) {
	salt := message_salt(ps, sk, data)
	salt_and_hash := message_salt_and_hash(ps, sk.pub.encoded, salt, data)
	pctx := new_prover_context(ps, sk, salt_and_hash)
	nruns := ps.nruns_total()

	// Setup and first commitment pass.
	runs1 := make([]proverCommit1, nruns)
	coms := make([]indexedLeaf, 2*nruns)
	err := for_each_run(ctx, nruns, func(i int) error {
		next, c := new_prover_run(pctx, i).setup().commit1()
		runs1[i] = next
		for _, com := range c {
			coms[com.slot] = indexedLeaf{index: com.slot, leaf: com.value}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ch1seed, err := challenge1_seed(ps, salt_and_hash, coms)
	if err != nil {
		return nil, err
	}
	c := expand_challenge1(ps, salt_and_hash, ch1seed)

	// First challenge and second commitment pass.
	runs2 := make([]proverCommit2, nruns)
	zs := make([]indexedLeaf, nruns)
	err = for_each_run(ctx, nruns, func(i int) error {
		ch, err := runs1[i].challenge1(uint32(c[i]))
		if err != nil {
			return err
		}
		next, z := ch.commit2()
		runs2[i] = next
		zs[i] = indexedLeaf{index: i, leaf: z}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ch2seed, err := challenge2_seed(ps, salt_and_hash, ch1seed, zs)
	if err != nil {
		return nil, err
	}
	one_minus_b := expand_challenge2(ps, salt_and_hash, ch2seed)

	// Responses.
	sig := make([]byte, 0, SignatureSize(ps))
	sig = append(sig, salt...)
	sig = append(sig, ch1seed...)
	sig = append(sig, ch2seed...)
	var spills []uint32
	for _, i := range run_order(one_minus_b) {
		resp, err := runs2[i].challenge2(one_minus_b[i])
		if err != nil {
			return nil, err
		}
		sig = append(sig, resp.encode_common().bulk...)
		bdep := resp.encode_b_dep()
		sig = append(sig, bdep.bulk...)
		spills = append(spills, bdep.spills...)
	}
	if ps.MergeVectorRoots {
		var root, root_bound uint32
		sig, root, root_bound = vect_encode(sig, spills, ps.spill_bounds)
		sig = encode_root(sig, root, root_bound)
	}

	if len(sig) != SignatureSize(ps) {
		return nil, errors.New("pkpsig: internal error: wrong signature length")
	}
	return sig, nil
}
