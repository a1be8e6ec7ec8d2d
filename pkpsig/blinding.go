package pkpsig

// Blinding values of one run, all derived from its blinding seed.
type blindingValues struct {
	pi_sigma_inv perm
	r_sigma      []uint16
	commitment   []byte
}

// State shared by all verifier runs of one signature: the public key and
// the hash contexts keyed with the message salt and hash.
type verifierContext struct {
	ps            *ParameterSet
	pk            *publicKey
	salt_and_hash []byte
	h_ebs         hashContext
	h_com0        hashContext
}

func new_verifier_context(ps *ParameterSet, pk *publicKey, salt_and_hash []byte) *verifierContext {
	return &verifierContext{
		ps:            ps,
		pk:            pk,
		salt_and_hash: salt_and_hash,
		h_ebs:         hash_init(hashctx_expandblindingseed, salt_and_hash),
		h_com0:        hash_init(hashctx_commitment, salt_and_hash),
	}
}

// Expand a blinding seed into the run's blinding permutation, blinding
// vector, and commitment com1. With check_uniform, false is returned if
// either the permutation or the vector would not be uniformly
// distributed; without it, the expansion always succeeds (and produces
// the same values when the uniform expansion would have succeeded).
func (ctx *verifierContext) expand_blindingseed(run_index int, blindingseed []byte, check_uniform bool) (blindingValues, bool) {
	idx := uint32(run_index * hashidx_expandblindingseed_run_index_factor)
	pi_sigma_inv, ok := ctx.h_ebs.expand_to_perm(idx+hashidx_expandblindingseed_pi_sigma_inv,
		blindingseed, PKP_N, check_uniform)
	if !ok {
		return blindingValues{}, false
	}
	r_sigma, ok := ctx.h_ebs.expand_to_fqvec(idx+hashidx_expandblindingseed_r_sigma,
		blindingseed, PKP_N, check_uniform)
	if !ok {
		return blindingValues{}, false
	}
	commitment := make([]byte, ctx.ps.bytes_commithash())
	ctx.h_ebs.expand(idx+hashidx_expandblindingseed_commitment, blindingseed, commitment)
	return blindingValues{
		pi_sigma_inv: pi_sigma_inv,
		r_sigma:      r_sigma,
		commitment:   commitment,
	}, true
}

// Signer-side state: the verifier context plus the secret key and the
// blinding seed generator.
type proverContext struct {
	verifierContext
	sk    *secretKey
	h_gbs hashContext
}

func new_prover_context(ps *ParameterSet, sk *secretKey, salt_and_hash []byte) *proverContext {
	ctx := &proverContext{
		verifierContext: *new_verifier_context(ps, sk.pub, salt_and_hash),
		sk:              sk,
	}
	seedkey := make([]byte, 0, len(sk.pub.pubseed)+len(sk.secseed))
	seedkey = append(seedkey, sk.pub.pubseed...)
	seedkey = append(seedkey, sk.secseed...)
	h_gbsgs := hash_init(hashctx_internal_genblindingseedgenseed, seedkey)
	blindingseedgenseed := h_gbsgs.digest_bytes(salt_and_hash, bytes_internal_blindingseedgenseed)
	ctx.h_gbs = hash_init(hashctx_internal_genblindingseed, blindingseedgenseed)
	return ctx
}

// Get the blinding seed of a run, and its expansion. Each attempt draws
// a fresh generator seed along with the candidate blinding seed; when
// the candidate does not expand uniformly, the next attempt starts from
// the drawn generator seed, so retries never reuse hash output. The loop
// ends with overwhelming probability after one attempt.
func (ctx *proverContext) generate_blindingseed(run_index int) ([]byte, blindingValues) {
	nseed := bytes_internal_blindingseedgenseed
	buf := make([]byte, nseed+ctx.ps.bytes_blindingseed())
	for h := ctx.h_gbs; ; {
		h.expand(uint32(run_index), nil, buf)
		nextseed, blindingseed := buf[:nseed], buf[nseed:]
		bv, ok := ctx.expand_blindingseed(run_index, blindingseed, true)
		if ok {
			return append([]byte(nil), blindingseed...), bv
		}
		h = hash_init(hashctx_internal_genblindingseed, nextseed)
	}
}
